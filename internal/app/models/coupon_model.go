package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
)

var hundred = decimal.NewFromInt(100)

type Coupon struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code          string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Title         string          `gorm:"type:varchar(255);not null" json:"title"`
	Description   *string         `gorm:"type:text" json:"description,omitempty"`
	DiscountType  DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"discount_value"`
	MinimumOrder  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"minimum_order"`
	MaxUses       *int            `json:"max_uses,omitempty"`
	UsedCount     int             `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	IsActive      bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *Coupon) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsExpired reports whether the coupon expired strictly before now. A coupon
// expiring exactly at now is still usable.
func (c *Coupon) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// IsFullyRedeemed reports whether the global usage cap has been reached.
func (c *Coupon) IsFullyRedeemed() bool {
	return c.MaxUses != nil && c.UsedCount >= *c.MaxUses
}

func (c *Coupon) MeetsMinimumOrder(orderAmount decimal.Decimal) bool {
	return !orderAmount.LessThan(c.MinimumOrder)
}

// CalculateDiscount returns the discount for orderAmount, rounded to cents and
// clamped to [0, orderAmount].
func (c *Coupon) CalculateDiscount(orderAmount decimal.Decimal) decimal.Decimal {
	if !orderAmount.IsPositive() {
		return decimal.Zero
	}

	var discount decimal.Decimal
	switch c.DiscountType {
	case DiscountTypePercentage:
		discount = orderAmount.Mul(c.DiscountValue).Div(hundred).Round(2)
	case DiscountTypeFixedAmount:
		discount = c.DiscountValue
	default:
		return decimal.Zero
	}

	if discount.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(discount, orderAmount)
}

type CouponCreateRequest struct {
	Code          *string         `json:"code,omitempty" validate:"omitempty,min=3,max=50"`
	Title         string          `json:"title" validate:"required,max=255"`
	Description   *string         `json:"description,omitempty" validate:"omitempty,max=1000"`
	DiscountType  DiscountType    `json:"discount_type" validate:"required,oneof=percentage fixed_amount"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"gt=0"`
	MinimumOrder  decimal.Decimal `json:"minimum_order" validate:"min=0"`
	MaxUses       *int            `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	CreatedBy     *string         `json:"-"`
}

type CouponUpdateRequest struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,max=255"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	DiscountType  *DiscountType    `json:"discount_type,omitempty" validate:"omitempty,oneof=percentage fixed_amount"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty" validate:"omitempty,gt=0"`
	MinimumOrder  *decimal.Decimal `json:"minimum_order,omitempty" validate:"omitempty,min=0"`
	MaxUses       *int             `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	IsActive      *bool            `json:"is_active,omitempty"`
}

type CouponApplyRequest struct {
	Code        string          `json:"code" validate:"required,max=50"`
	OrderAmount decimal.Decimal `json:"order_amount" validate:"min=0"`
}

// CouponApplyResult is the outcome of a coupon preview. Rejections are
// reported through Success and Message rather than as errors.
type CouponApplyResult struct {
	Success  bool            `json:"success"`
	Discount decimal.Decimal `json:"discount"`
	Coupon   *Coupon         `json:"coupon,omitempty"`
	Message  string          `json:"message,omitempty"`
}

type CouponUseRequest struct {
	CouponID       string          `json:"coupon_id" validate:"required,uuid"`
	OrderID        string          `json:"order_id" validate:"required,max=100"`
	OrderAmount    decimal.Decimal `json:"order_amount" validate:"gt=0"`
	DiscountAmount decimal.Decimal `json:"discount_amount" validate:"min=0"`
}

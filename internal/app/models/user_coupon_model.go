package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UserCoupon is a coupon claimed into a user's wallet. UsedAt stays nil
// until the coupon is redeemed against an order.
type UserCoupon struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupons_user_coupon" json:"user_id"`
	CouponID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_user_coupons_user_coupon" json:"coupon_id"`
	OrderID   *string    `gorm:"type:varchar(100)" json:"order_id,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	ClaimedAt time.Time  `gorm:"autoCreateTime" json:"claimed_at"`
	Coupon    *Coupon    `gorm:"foreignKey:CouponID" json:"coupon,omitempty"`
}

func (u *UserCoupon) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (u *UserCoupon) IsUsed() bool {
	return u.UsedAt != nil
}

// CouponUsage is the append-only audit trail of redemptions.
type CouponUsage struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CouponID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"coupon_id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID        string          `gorm:"type:varchar(100);not null" json:"order_id"`
	OrderAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"order_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"discount_amount"`
	UsedAt         time.Time       `gorm:"autoCreateTime" json:"used_at"`
}

func (u *CouponUsage) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

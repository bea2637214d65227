package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/feastly-core/pkg/loyalty"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PointSource string

const (
	PointSourceOrder            PointSource = "order"
	PointSourceRewardRedemption PointSource = "reward_redemption"
	PointSourceAdminAdjustment  PointSource = "admin_adjustment"
	PointSourceSignupBonus      PointSource = "signup_bonus"
)

// UserPoints holds a user's spendable balance and lifetime accounting. The
// tier is never stored; it is derived from Total on every read.
type UserPoints struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Total     int64     `gorm:"not null;default:0" json:"total"`
	Lifetime  int64     `gorm:"not null;default:0" json:"lifetime"`
	Redeemed  int64     `gorm:"not null;default:0" json:"redeemed"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// PointTransaction is an append-only history entry. Amount is positive for
// earned points and negative for redeemed or debited ones.
//
// OrderRef is set only on order awards. Its unique index makes a second award
// for the same order fail at insert time; NULLs never collide.
type PointTransaction struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_point_transactions_order_award" json:"user_id"`
	Amount      int64       `gorm:"not null" json:"amount"`
	Source      PointSource `gorm:"type:varchar(30);not null" json:"source"`
	Description *string     `gorm:"type:text" json:"description,omitempty"`
	ReferenceID *string     `gorm:"type:varchar(100)" json:"reference_id,omitempty"`
	OrderRef    *string     `gorm:"type:varchar(100);uniqueIndex:idx_point_transactions_order_award" json:"-"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func (p *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type PointsSummary struct {
	UserID             uuid.UUID     `json:"user_id"`
	Total              int64         `json:"total"`
	Lifetime           int64         `json:"lifetime"`
	Redeemed           int64         `json:"redeemed"`
	Tier               loyalty.Tier  `json:"tier"`
	NextTier           *loyalty.Tier `json:"next_tier"`
	PointsToNextTier   int64         `json:"points_to_next_tier"`
	ProgressPercentage int           `json:"progress_percentage"`
}

type PointsAwardRequest struct {
	UserID      string          `json:"user_id" validate:"required,uuid"`
	OrderID     string          `json:"order_id" validate:"required,max=100"`
	OrderAmount decimal.Decimal `json:"order_amount" validate:"min=0"`
}

type PointsAdjustRequest struct {
	UserID      string  `json:"user_id" validate:"required,uuid"`
	Amount      int64   `json:"amount" validate:"required,ne=0"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

type PointsRedeemResult struct {
	Success  bool  `json:"success"`
	NewTotal int64 `json:"new_total"`
}

package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/infrastructures"
	"github.com/safatanc/feastly-core/pkg/loyalty"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointsService is the points ledger. Balances only move through atomic
// increments and preconditioned decrements, each paired with a history row
// in the same transaction.
type PointsService struct {
	db            *gorm.DB
	validator     *infrastructures.Validator
	ladder        *loyalty.Ladder
	metrics       *infrastructures.Metrics
	pointsPerUnit int64
}

func NewPointsService(db *gorm.DB, validator *infrastructures.Validator, ladder *loyalty.Ladder, metrics *infrastructures.Metrics) *PointsService {
	pointsPerUnit := int64(1)
	if infrastructures.Config != nil && infrastructures.Config.POINTS_PER_UNIT > 0 {
		pointsPerUnit = infrastructures.Config.POINTS_PER_UNIT
	}

	return &PointsService{
		db:            db,
		validator:     validator,
		ladder:        ladder,
		metrics:       metrics,
		pointsPerUnit: pointsPerUnit,
	}
}

// Tiers returns the configured tier ladder, lowest first.
func (s *PointsService) Tiers() []loyalty.Tier {
	return s.ladder.Tiers()
}

// CalculateProgress reports progress from points toward the next tier.
func (s *PointsService) CalculateProgress(points int64) loyalty.Progress {
	return s.ladder.Progress(points)
}

func (s *PointsService) getBalance(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*models.UserPoints, error) {
	var balance models.UserPoints
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&balance).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserPoints{UserID: userID}, nil
		}
		return nil, errors.NewInternalServerError(err, "Failed to get user points")
	}
	return &balance, nil
}

// GetUserPoints returns the balance with its tier and progress derived from
// the current total.
func (s *PointsService) GetUserPoints(ctx context.Context, userId string) (*models.PointsSummary, error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}

	balance, err := s.getBalance(ctx, s.db, userUUID)
	if err != nil {
		return nil, err
	}

	progress := s.ladder.Progress(balance.Total)

	return &models.PointsSummary{
		UserID:             balance.UserID,
		Total:              balance.Total,
		Lifetime:           balance.Lifetime,
		Redeemed:           balance.Redeemed,
		Tier:               progress.CurrentTier,
		NextTier:           progress.NextTier,
		PointsToNextTier:   progress.PointsToNextTier,
		ProgressPercentage: progress.ProgressPercentage,
	}, nil
}

// EarnPoints credits amount to the user's balance and lifetime total.
func (s *PointsService) EarnPoints(ctx context.Context, userId string, amount int64, source models.PointSource, description, referenceID *string) (*models.UserPoints, error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}
	if amount <= 0 {
		return nil, errors.NewBadRequestError("Points amount must be positive")
	}

	entry := &models.PointTransaction{
		UserID:      userUUID,
		Amount:      amount,
		Source:      source,
		Description: description,
		ReferenceID: referenceID,
	}
	if source == models.PointSourceOrder {
		entry.OrderRef = referenceID
	}

	var balance *models.UserPoints
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// History goes first so a duplicate order award fails before any credit.
		if err := tx.Create(entry).Error; err != nil {
			if isDuplicateKeyError(err) {
				return errors.Wrap(http.StatusConflict, errors.ErrDuplicateAward, "Points already awarded for this order")
			}
			return errors.NewInternalServerError(err, "Failed to record points history")
		}

		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserPoints{UserID: userUUID}).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to open points balance")
		}

		if err := tx.Model(&models.UserPoints{}).
			Where("user_id = ?", userUUID).
			Updates(map[string]interface{}{
				"total":    gorm.Expr("total + ?", amount),
				"lifetime": gorm.Expr("lifetime + ?", amount),
			}).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to credit points")
		}

		balance, err = s.getBalance(ctx, tx, userUUID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PointsEarned.Add(float64(amount))

	return balance, nil
}

// AwardOrderPoints grants points for a completed order, once per order.
func (s *PointsService) AwardOrderPoints(ctx context.Context, req *models.PointsAwardRequest) (*models.UserPoints, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	points := req.OrderAmount.Floor().IntPart() * s.pointsPerUnit
	if points <= 0 {
		return nil, errors.NewBadRequestError("Order amount too small to earn points")
	}

	description := fmt.Sprintf("Points for order %s", req.OrderID)
	return s.EarnPoints(ctx, req.UserID, points, models.PointSourceOrder, &description, &req.OrderID)
}

// AdjustPoints applies a signed manual correction from the admin dashboard.
// Credits count toward lifetime; debits only lower the spendable total and
// never take it below zero.
func (s *PointsService) AdjustPoints(ctx context.Context, req *models.PointsAdjustRequest) (*models.UserPoints, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Amount > 0 {
		return s.EarnPoints(ctx, req.UserID, req.Amount, models.PointSourceAdminAdjustment, req.Description, nil)
	}

	userUUID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}

	debit := -req.Amount
	balance, err := s.debitPoints(ctx, userUUID, debit, false, &models.PointTransaction{
		UserID:      userUUID,
		Amount:      req.Amount,
		Source:      models.PointSourceAdminAdjustment,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":   req.UserID,
		"debit":     debit,
		"new_total": balance.Total,
	}).Info("points debited by adjustment")

	return balance, nil
}

// debitPoints lowers total by amount only when the balance covers it and
// writes entry in the same transaction. Reward redemptions also count toward
// redeemed.
func (s *PointsService) debitPoints(ctx context.Context, userID uuid.UUID, amount int64, countRedeemed bool, entry *models.PointTransaction) (*models.UserPoints, error) {
	updates := map[string]interface{}{
		"total": gorm.Expr("total - ?", amount),
	}
	if countRedeemed {
		updates["redeemed"] = gorm.Expr("redeemed + ?", amount)
	}

	var balance *models.UserPoints
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.UserPoints{}).
			Where("user_id = ? AND total >= ?", userID, amount).
			Updates(updates)
		if result.Error != nil {
			return errors.NewInternalServerError(result.Error, "Failed to debit points")
		}
		if result.RowsAffected == 0 {
			return errors.Wrap(http.StatusBadRequest, errors.ErrInsufficientPoints, "Insufficient points")
		}

		if err := tx.Create(entry).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to record points history")
		}

		var err error
		balance, err = s.getBalance(ctx, tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// RedeemPoints spends pointsCost on a reward. The decrement only applies when
// the balance covers the cost, so the total never goes negative. The history
// row is written in the same transaction and a failure there fails the
// redemption.
func (s *PointsService) RedeemPoints(ctx context.Context, userId string, pointsCost int64, rewardId, rewardName string) (*models.PointsRedeemResult, error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}
	if pointsCost <= 0 {
		return nil, errors.NewBadRequestError("Points cost must be positive")
	}

	description := "Redeemed reward: " + rewardName
	balance, err := s.debitPoints(ctx, userUUID, pointsCost, true, &models.PointTransaction{
		UserID:      userUUID,
		Amount:      -pointsCost,
		Source:      models.PointSourceRewardRedemption,
		Description: &description,
		ReferenceID: &rewardId,
	})
	if err != nil {
		return nil, err
	}
	newTotal := balance.Total

	s.metrics.PointsRedeemed.Add(float64(pointsCost))
	logrus.WithFields(logrus.Fields{
		"user_id":   userId,
		"reward_id": rewardId,
		"cost":      pointsCost,
		"new_total": newTotal,
	}).Info("points redeemed")

	return &models.PointsRedeemResult{Success: true, NewTotal: newTotal}, nil
}

// GetPointHistory lists the user's ledger entries, newest first.
func (s *PointsService) GetPointHistory(ctx context.Context, userId string, pagination *models.PaginationRequest) (*models.Pagination[[]models.PointTransaction], error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}

	query := s.db.WithContext(ctx).Where("user_id = ?", userUUID)
	return paginate[models.PointTransaction](query, pagination, "created_at DESC", "points history")
}

// PointsForOrder previews the points an order of orderAmount would earn.
func (s *PointsService) PointsForOrder(orderAmount decimal.Decimal) int64 {
	if !orderAmount.IsPositive() {
		return 0
	}
	return orderAmount.Floor().IntPart() * s.pointsPerUnit
}

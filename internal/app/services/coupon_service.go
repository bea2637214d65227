package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/infrastructures"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	couponCodePrefix = "FEAST"
	couponCodeLength = 8
	couponsTable     = "coupons"
)

// Rejection messages returned by ApplyCoupon.
const (
	MsgCouponInvalid       = "Invalid or expired coupon"
	MsgCouponExpired       = "Coupon has expired"
	MsgCouponFullyRedeemed = "Coupon has been fully redeemed"
	MsgCouponAlreadyUsed   = "You have already used this coupon"
)

type CouponService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	auditService *AuditService
	metrics      *infrastructures.Metrics
	clock        func() time.Time
}

func NewCouponService(db *gorm.DB, validator *infrastructures.Validator, auditService *AuditService, metrics *infrastructures.Metrics) *CouponService {
	return &CouponService{
		db:           db,
		validator:    validator,
		auditService: auditService,
		metrics:      metrics,
		clock:        time.Now,
	}
}

func (s *CouponService) CreateCoupon(ctx context.Context, req *models.CouponCreateRequest) (*models.Coupon, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if err := validateDiscountValue(req.DiscountType, req.DiscountValue); err != nil {
		return nil, err
	}

	code := pkg.RandomCouponCode(couponCodePrefix, couponCodeLength)
	if req.Code != nil {
		code = strings.TrimSpace(*req.Code)
	}

	// Check if coupon code already exists
	var existing int64
	if err := s.db.WithContext(ctx).Model(&models.Coupon{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to check coupon code")
	}
	if existing > 0 {
		return nil, errors.NewConflictError("Coupon code already exists")
	}

	coupon := &models.Coupon{
		Code:          code,
		Title:         req.Title,
		Description:   req.Description,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		MinimumOrder:  req.MinimumOrder,
		MaxUses:       req.MaxUses,
		UsedCount:     0,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      true,
	}

	// Parse created by UUID if provided
	if req.CreatedBy != nil {
		createdBy, err := uuid.Parse(*req.CreatedBy)
		if err != nil {
			return nil, errors.NewBadRequestError("Invalid created by ID format")
		}
		coupon.CreatedBy = &createdBy
	}

	if err := s.db.WithContext(ctx).Create(coupon).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.NewConflictError("Coupon code already exists")
		}
		return nil, errors.NewInternalServerError(err, "Failed to create coupon")
	}

	s.auditService.record(ctx, couponsTable, coupon.ID, models.AuditActionCreate, nil, coupon, coupon.CreatedBy)

	return coupon, nil
}

func (s *CouponService) GetCoupon(ctx context.Context, couponId string) (*models.Coupon, error) {
	couponUUID, err := uuid.Parse(couponId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid coupon ID format")
	}

	var coupon models.Coupon
	err = s.db.WithContext(ctx).Where("id = ?", couponUUID).First(&coupon).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Coupon not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get coupon")
	}

	return &coupon, nil
}

// GetCouponByCode looks up an active coupon by exact, case-sensitive code.
func (s *CouponService) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.WithContext(ctx).Where("code = ? AND is_active = ?", code, true).First(&coupon).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Coupon not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get coupon")
	}

	return &coupon, nil
}

// GetCoupons lists every coupon for the admin screens.
func (s *CouponService) GetCoupons(ctx context.Context, pagination *models.PaginationRequest, isActive *bool) (*models.Pagination[[]models.Coupon], error) {
	query := s.db.WithContext(ctx)
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	return paginate[models.Coupon](query, pagination, "created_at DESC", "coupons")
}

// GetAvailableCoupons lists coupons a customer could still claim or apply.
func (s *CouponService) GetAvailableCoupons(ctx context.Context, pagination *models.PaginationRequest) (*models.Pagination[[]models.Coupon], error) {
	query := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("expires_at IS NULL OR expires_at >= ?", s.clock()).
		Where("max_uses IS NULL OR used_count < max_uses")

	return paginate[models.Coupon](query, pagination, "created_at DESC", "coupons")
}

func (s *CouponService) UpdateCoupon(ctx context.Context, couponId string, req *models.CouponUpdateRequest, changedBy *uuid.UUID) (*models.Coupon, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	coupon, err := s.GetCoupon(ctx, couponId)
	if err != nil {
		return nil, err
	}
	before := *coupon

	// Update fields if provided
	if req.Title != nil {
		coupon.Title = *req.Title
	}
	if req.Description != nil {
		coupon.Description = req.Description
	}
	if req.DiscountType != nil {
		coupon.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MinimumOrder != nil {
		coupon.MinimumOrder = *req.MinimumOrder
	}
	if req.MaxUses != nil {
		if *req.MaxUses < coupon.UsedCount {
			return nil, errors.NewBadRequestError(fmt.Sprintf("Max uses cannot be lower than current usage (%d)", coupon.UsedCount))
		}
		coupon.MaxUses = req.MaxUses
	}
	if req.ExpiresAt != nil {
		coupon.ExpiresAt = req.ExpiresAt
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := validateDiscountValue(coupon.DiscountType, coupon.DiscountValue); err != nil {
		return nil, err
	}

	// used_count is owned by UseCoupon; never write it back from here.
	if err := s.db.WithContext(ctx).Model(coupon).Select(
		"title", "description", "discount_type", "discount_value", "minimum_order",
		"max_uses", "expires_at", "is_active", "updated_at",
	).Updates(coupon).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update coupon")
	}

	s.auditService.record(ctx, couponsTable, coupon.ID, models.AuditActionUpdate, before, coupon, changedBy)

	return coupon, nil
}

// DeactivateCoupon soft-disables a coupon. Claims and usage history stay intact.
func (s *CouponService) DeactivateCoupon(ctx context.Context, couponId string, changedBy *uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.GetCoupon(ctx, couponId)
	if err != nil {
		return nil, err
	}

	if !coupon.IsActive {
		return coupon, nil
	}

	if err := s.db.WithContext(ctx).Model(coupon).Update("is_active", false).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to deactivate coupon")
	}
	coupon.IsActive = false

	s.auditService.record(ctx, couponsTable, coupon.ID, models.AuditActionStatusChange, map[string]bool{"is_active": true}, map[string]bool{"is_active": false}, changedBy)

	return coupon, nil
}

// DeleteCoupon removes a coupon that was never claimed or used. Coupons
// referenced by history can only be deactivated.
func (s *CouponService) DeleteCoupon(ctx context.Context, couponId string, changedBy *uuid.UUID) error {
	coupon, err := s.GetCoupon(ctx, couponId)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var references int64
		if err := tx.Model(&models.UserCoupon{}).Where("coupon_id = ?", coupon.ID).Count(&references).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to check coupon claims")
		}
		if references == 0 {
			if err := tx.Model(&models.CouponUsage{}).Where("coupon_id = ?", coupon.ID).Count(&references).Error; err != nil {
				return errors.NewInternalServerError(err, "Failed to check coupon usage")
			}
		}
		if references > 0 {
			return errors.NewConflictError("Coupon is referenced by user history; deactivate it instead")
		}

		if err := tx.Delete(coupon).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to delete coupon")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditService.record(ctx, couponsTable, coupon.ID, models.AuditActionDelete, coupon, nil, changedBy)

	return nil
}

// ApplyCoupon previews a coupon against an order without changing any state.
// Eligibility rejections come back as an unsuccessful result; the error is
// reserved for malformed input and storage failures.
func (s *CouponService) ApplyCoupon(ctx context.Context, code string, orderAmount decimal.Decimal, userId string) (*models.CouponApplyResult, error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}
	if orderAmount.IsNegative() {
		return nil, errors.NewBadRequestError("Order amount cannot be negative")
	}

	result, err := s.evaluateCoupon(ctx, code, orderAmount, userUUID)
	if err != nil {
		return nil, err
	}

	outcome := "accepted"
	if !result.Success {
		outcome = "rejected"
	}
	s.metrics.CouponApplications.WithLabelValues(outcome).Inc()

	return result, nil
}

func (s *CouponService) evaluateCoupon(ctx context.Context, code string, orderAmount decimal.Decimal, userID uuid.UUID) (*models.CouponApplyResult, error) {
	reject := func(message string) *models.CouponApplyResult {
		return &models.CouponApplyResult{Success: false, Discount: decimal.Zero, Message: message}
	}

	if code == "" {
		return reject(MsgCouponInvalid), nil
	}

	coupon, err := s.GetCouponByCode(ctx, code)
	if err != nil {
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) && appErr.StatusCode == http.StatusNotFound {
			return reject(MsgCouponInvalid), nil
		}
		return nil, err
	}

	if coupon.IsExpired(s.clock()) {
		return reject(MsgCouponExpired), nil
	}

	if !coupon.MeetsMinimumOrder(orderAmount) {
		return reject(fmt.Sprintf("Minimum order amount for this coupon is %s", coupon.MinimumOrder.StringFixed(2))), nil
	}

	if coupon.IsFullyRedeemed() {
		return reject(MsgCouponFullyRedeemed), nil
	}

	// Only finalized claims block; an unused claim can still be redeemed once.
	var usedClaims int64
	err = s.db.WithContext(ctx).Model(&models.UserCoupon{}).
		Where("coupon_id = ? AND user_id = ? AND used_at IS NOT NULL", coupon.ID, userID).
		Count(&usedClaims).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to check coupon usage")
	}
	if usedClaims > 0 {
		return reject(MsgCouponAlreadyUsed), nil
	}

	return &models.CouponApplyResult{
		Success:  true,
		Discount: coupon.CalculateDiscount(orderAmount),
		Coupon:   coupon,
	}, nil
}

// UseCoupon records a redemption. Marking the claim used, appending the usage
// row and bumping used_count happen in one transaction; the counter only
// moves while it is below max_uses, so concurrent redemptions cannot exceed
// the cap. The recorded discount may not exceed what the coupon grants on
// orderAmount.
func (s *CouponService) UseCoupon(ctx context.Context, couponId, userId, orderId string, orderAmount, discountAmount decimal.Decimal) (*models.CouponUsage, error) {
	couponUUID, err := uuid.Parse(couponId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid coupon ID format")
	}
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}
	if orderId == "" {
		return nil, errors.NewBadRequestError("Order ID is required")
	}
	if !orderAmount.IsPositive() {
		return nil, errors.NewBadRequestError("Order amount must be greater than zero")
	}
	if discountAmount.IsNegative() {
		return nil, errors.NewBadRequestError("Discount amount cannot be negative")
	}

	now := s.clock()
	var usage *models.CouponUsage

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon models.Coupon
		if err := tx.Where("id = ?", couponUUID).First(&coupon).Error; err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NewNotFoundError("Coupon not found")
			}
			return errors.NewInternalServerError(err, "Failed to get coupon")
		}
		if !coupon.IsActive {
			return errors.Wrap(http.StatusBadRequest, errors.ErrCouponNotActive, "Coupon is not active")
		}
		if coupon.IsExpired(now) {
			return errors.Wrap(http.StatusBadRequest, errors.ErrCouponExpired, MsgCouponExpired)
		}
		if !coupon.MeetsMinimumOrder(orderAmount) {
			return errors.NewBadRequestError(fmt.Sprintf("Minimum order amount for this coupon is %s", coupon.MinimumOrder.StringFixed(2)))
		}
		if allowed := coupon.CalculateDiscount(orderAmount); discountAmount.GreaterThan(allowed) {
			return errors.Wrap(http.StatusBadRequest, errors.ErrDiscountTooLarge,
				fmt.Sprintf("Discount cannot exceed %s for this order", allowed.StringFixed(2)))
		}

		if err := s.markClaimUsed(tx, coupon.ID, userUUID, orderId, now); err != nil {
			return err
		}

		usage = &models.CouponUsage{
			CouponID:       coupon.ID,
			UserID:         userUUID,
			OrderID:        orderId,
			OrderAmount:    orderAmount,
			DiscountAmount: discountAmount,
			UsedAt:         now,
		}
		if err := tx.Create(usage).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to record coupon usage")
		}

		result := tx.Model(&models.Coupon{}).
			Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", coupon.ID).
			UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
		if result.Error != nil {
			return errors.NewInternalServerError(result.Error, "Failed to update coupon usage count")
		}
		if result.RowsAffected == 0 {
			return errors.Wrap(http.StatusConflict, errors.ErrCouponFullyRedeemed, MsgCouponFullyRedeemed)
		}

		return nil
	})
	if err != nil {
		s.metrics.CouponRedemptions.WithLabelValues("failed").Inc()
		logrus.WithFields(logrus.Fields{
			"coupon_id": couponId,
			"user_id":   userId,
			"order_id":  orderId,
		}).WithError(err).Warn("coupon redemption failed")
		return nil, err
	}

	s.metrics.CouponRedemptions.WithLabelValues("succeeded").Inc()
	logrus.WithFields(logrus.Fields{
		"coupon_id": couponId,
		"user_id":   userId,
		"order_id":  orderId,
		"discount":  discountAmount.String(),
	}).Info("coupon redeemed")

	return usage, nil
}

// markClaimUsed finalizes the user's open claim, or creates an already-used
// claim when the coupon was applied without being claimed first.
func (s *CouponService) markClaimUsed(tx *gorm.DB, couponID, userID uuid.UUID, orderID string, now time.Time) error {
	result := tx.Model(&models.UserCoupon{}).
		Where("coupon_id = ? AND user_id = ? AND used_at IS NULL", couponID, userID).
		Updates(map[string]interface{}{
			"used_at":  now,
			"order_id": orderID,
		})
	if result.Error != nil {
		return errors.NewInternalServerError(result.Error, "Failed to update coupon claim")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// No open claim: either it was already used, or there was none.
	claim := &models.UserCoupon{
		UserID:   userID,
		CouponID: couponID,
		OrderID:  &orderID,
		UsedAt:   &now,
	}
	if err := tx.Create(claim).Error; err != nil {
		if isDuplicateKeyError(err) {
			return errors.Wrap(http.StatusConflict, errors.ErrCouponAlreadyUsed, MsgCouponAlreadyUsed)
		}
		return errors.NewInternalServerError(err, "Failed to create coupon claim")
	}
	return nil
}

// AddCouponToUser claims a coupon into the user's wallet. Duplicate claims
// are rejected by the unique (user_id, coupon_id) index.
func (s *CouponService) AddCouponToUser(ctx context.Context, userId, couponId string) (*models.UserCoupon, error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}

	coupon, err := s.GetCoupon(ctx, couponId)
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, errors.Wrap(http.StatusBadRequest, errors.ErrCouponNotActive, "Coupon is not active")
	}
	if coupon.IsExpired(s.clock()) {
		return nil, errors.Wrap(http.StatusBadRequest, errors.ErrCouponExpired, MsgCouponExpired)
	}

	claim := &models.UserCoupon{
		UserID:   userUUID,
		CouponID: coupon.ID,
	}
	if err := s.db.WithContext(ctx).Create(claim).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil, errors.Wrap(http.StatusConflict, errors.ErrDuplicateClaim, "Coupon already in your wallet")
		}
		return nil, errors.NewInternalServerError(err, "Failed to claim coupon")
	}

	s.metrics.CouponClaims.Inc()
	claim.Coupon = coupon

	return claim, nil
}

// GetUserCoupons returns the user's wallet, newest claim first.
func (s *CouponService) GetUserCoupons(ctx context.Context, userId string, unusedOnly bool) ([]models.UserCoupon, error) {
	userUUID, err := uuid.Parse(userId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid user ID format")
	}

	query := s.db.WithContext(ctx).Preload("Coupon").Where("user_id = ?", userUUID)
	if unusedOnly {
		query = query.Where("used_at IS NULL")
	}

	claims := make([]models.UserCoupon, 0)
	if err := query.Order("claimed_at DESC").Find(&claims).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get user coupons")
	}

	return claims, nil
}

// GetCouponUsages returns the redemption audit trail of a coupon.
func (s *CouponService) GetCouponUsages(ctx context.Context, couponId string, pagination *models.PaginationRequest) (*models.Pagination[[]models.CouponUsage], error) {
	couponUUID, err := uuid.Parse(couponId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid coupon ID format")
	}

	query := s.db.WithContext(ctx).Where("coupon_id = ?", couponUUID)
	return paginate[models.CouponUsage](query, pagination, "used_at DESC", "coupon usages")
}

func validateDiscountValue(discountType models.DiscountType, value decimal.Decimal) error {
	if !value.IsPositive() {
		return errors.NewBadRequestError("Discount value must be positive")
	}
	if discountType == models.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return errors.NewBadRequestError("Percentage discount cannot exceed 100")
	}
	return nil
}

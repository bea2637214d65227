package services

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/infrastructures"
	"gorm.io/gorm"
)

const rewardsTable = "rewards"

type RewardService struct {
	db            *gorm.DB
	validator     *infrastructures.Validator
	auditService  *AuditService
	pointsService *PointsService
}

func NewRewardService(db *gorm.DB, validator *infrastructures.Validator, auditService *AuditService, pointsService *PointsService) *RewardService {
	return &RewardService{
		db:            db,
		validator:     validator,
		auditService:  auditService,
		pointsService: pointsService,
	}
}

func (s *RewardService) CreateReward(ctx context.Context, req *models.RewardCreateRequest, changedBy *uuid.UUID) (*models.Reward, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reward := &models.Reward{
		Name:        req.Name,
		Description: req.Description,
		PointsCost:  req.PointsCost,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(reward).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create reward")
	}

	s.auditService.record(ctx, rewardsTable, reward.ID, models.AuditActionCreate, nil, reward, changedBy)

	return reward, nil
}

func (s *RewardService) GetReward(ctx context.Context, rewardId string) (*models.Reward, error) {
	rewardUUID, err := uuid.Parse(rewardId)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid reward ID format")
	}

	var reward models.Reward
	err = s.db.WithContext(ctx).Where("id = ?", rewardUUID).First(&reward).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Reward not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get reward")
	}

	return &reward, nil
}

// GetRewards lists the catalog, cheapest first.
func (s *RewardService) GetRewards(ctx context.Context, pagination *models.PaginationRequest, activeOnly bool) (*models.Pagination[[]models.Reward], error) {
	query := s.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	return paginate[models.Reward](query, pagination, "points_cost ASC", "rewards")
}

func (s *RewardService) UpdateReward(ctx context.Context, rewardId string, req *models.RewardUpdateRequest, changedBy *uuid.UUID) (*models.Reward, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	reward, err := s.GetReward(ctx, rewardId)
	if err != nil {
		return nil, err
	}
	oldReward := *reward

	if req.Name != nil {
		reward.Name = *req.Name
	}
	if req.Description != nil {
		reward.Description = req.Description
	}
	if req.PointsCost != nil {
		reward.PointsCost = *req.PointsCost
	}
	if req.IsActive != nil {
		reward.IsActive = *req.IsActive
	}

	err = s.db.WithContext(ctx).Model(reward).
		Select("name", "description", "points_cost", "is_active").
		Updates(reward).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update reward")
	}

	s.auditService.record(ctx, rewardsTable, reward.ID, models.AuditActionUpdate, oldReward, reward, changedBy)

	return reward, nil
}

// RedeemReward spends the reward's point cost from the user's balance.
func (s *RewardService) RedeemReward(ctx context.Context, userId, rewardId string) (*models.PointsRedeemResult, error) {
	reward, err := s.GetReward(ctx, rewardId)
	if err != nil {
		return nil, err
	}
	if !reward.IsActive {
		return nil, errors.NewBadRequestError("Reward is not available")
	}

	return s.pointsService.RedeemPoints(ctx, userId, reward.PointsCost, reward.ID.String(), reward.Name)
}

package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/app/services"
)

type RewardHandler struct {
	rewardService  *services.RewardService
	authMiddleware *middlewares.AuthMiddleware
}

func NewRewardHandler(rewardService *services.RewardService, authMiddleware *middlewares.AuthMiddleware) *RewardHandler {
	return &RewardHandler{rewardService: rewardService, authMiddleware: authMiddleware}
}

func (h *RewardHandler) RegisterRoutes(router fiber.Router) {
	rewardGroup := router.Group("/rewards")

	requireAdmin := h.authMiddleware.RequireRole(models.AccountRoleAdmin)

	rewardGroup.Get("/", h.GetRewards)
	rewardGroup.Post("/:id/redeem", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, h.RedeemReward)
	rewardGroup.Post("/", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.CreateReward)
	rewardGroup.Patch("/:id", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.UpdateReward)
}

func (h *RewardHandler) GetRewards(c *fiber.Ctx) error {
	rewards, err := h.rewardService.GetRewards(c.UserContext(), pkg.ParsePagination(c), true)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, rewards)
}

func (h *RewardHandler) RedeemReward(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	result, err := h.rewardService.RedeemReward(c.UserContext(), account.ConnectID.String(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, result)
}

func (h *RewardHandler) CreateReward(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	var req models.RewardCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	reward, err := h.rewardService.CreateReward(c.UserContext(), &req, &account.ConnectID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	c.Status(fiber.StatusCreated)
	return pkg.SuccessResponse(c, reward)
}

func (h *RewardHandler) UpdateReward(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	var req models.RewardUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	reward, err := h.rewardService.UpdateReward(c.UserContext(), c.Params("id"), &req, &account.ConnectID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, reward)
}

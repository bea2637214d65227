package deliveries

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/app/services"
	"github.com/shopspring/decimal"
)

type PointsHandler struct {
	pointsService  *services.PointsService
	authMiddleware *middlewares.AuthMiddleware
}

func NewPointsHandler(pointsService *services.PointsService, authMiddleware *middlewares.AuthMiddleware) *PointsHandler {
	return &PointsHandler{pointsService: pointsService, authMiddleware: authMiddleware}
}

func (h *PointsHandler) RegisterRoutes(router fiber.Router) {
	pointsGroup := router.Group("/points")

	pointsGroup.Get("/tiers", h.GetTiers)
	pointsGroup.Get("/progress", h.GetProgress)
	pointsGroup.Get("/preview", h.PreviewOrderPoints)
	pointsGroup.Get("/me", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, h.GetMyPoints)
	pointsGroup.Get("/me/history", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, h.GetMyHistory)
	pointsGroup.Post("/award", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount,
		h.authMiddleware.RequireRole(models.AccountRoleAdmin, models.AccountRoleRestaurantOwner), h.AwardOrderPoints)
	pointsGroup.Post("/adjust", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount,
		h.authMiddleware.RequireRole(models.AccountRoleAdmin), h.AdjustPoints)
}

func (h *PointsHandler) GetTiers(c *fiber.Ctx) error {
	return pkg.SuccessResponse(c, h.pointsService.Tiers())
}

// GetProgress reports the tier and progress for an arbitrary ?points value.
func (h *PointsHandler) GetProgress(c *fiber.Ctx) error {
	points, err := strconv.ParseInt(c.Query("points", "0"), 10, 64)
	if err != nil || points < 0 {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid points value"))
	}

	return pkg.SuccessResponse(c, h.pointsService.CalculateProgress(points))
}

func (h *PointsHandler) PreviewOrderPoints(c *fiber.Ctx) error {
	orderAmount, err := decimal.NewFromString(c.Query("order_amount"))
	if err != nil || orderAmount.IsNegative() {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid order amount"))
	}

	return pkg.SuccessResponse(c, fiber.Map{"points": h.pointsService.PointsForOrder(orderAmount)})
}

func (h *PointsHandler) GetMyPoints(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	summary, err := h.pointsService.GetUserPoints(c.UserContext(), account.ConnectID.String())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, summary)
}

func (h *PointsHandler) GetMyHistory(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	history, err := h.pointsService.GetPointHistory(c.UserContext(), account.ConnectID.String(), pkg.ParsePagination(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, history)
}

func (h *PointsHandler) AwardOrderPoints(c *fiber.Ctx) error {
	var req models.PointsAwardRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	balance, err := h.pointsService.AwardOrderPoints(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, balance)
}

func (h *PointsHandler) AdjustPoints(c *fiber.Ctx) error {
	var req models.PointsAdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	balance, err := h.pointsService.AdjustPoints(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, balance)
}

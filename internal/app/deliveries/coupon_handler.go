package deliveries

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/app/services"
	"github.com/safatanc/feastly-core/pkg/ratelimit"
)

type CouponHandler struct {
	couponService       *services.CouponService
	authMiddleware      *middlewares.AuthMiddleware
	rateLimitMiddleware *middlewares.RateLimitMiddleware
}

func NewCouponHandler(couponService *services.CouponService, authMiddleware *middlewares.AuthMiddleware, rateLimitMiddleware *middlewares.RateLimitMiddleware) *CouponHandler {
	return &CouponHandler{
		couponService:       couponService,
		authMiddleware:      authMiddleware,
		rateLimitMiddleware: rateLimitMiddleware,
	}
}

func (h *CouponHandler) RegisterRoutes(router fiber.Router) {
	couponGroup := router.Group("/coupons")

	authConnect, authAccount := h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount
	manager := h.authMiddleware.RequireRole(models.AccountRoleAdmin, models.AccountRoleRestaurantOwner)

	// Public
	couponGroup.Get("/", h.GetAvailableCoupons)

	// Customer
	couponGroup.Get("/me", authConnect, authAccount, h.GetMyCoupons)
	couponGroup.Get("/code/:code", authConnect, authAccount, h.GetCouponByCode)
	couponGroup.Post("/apply", authConnect, authAccount, h.rateLimitMiddleware.LimitCouponApply(), h.ApplyCoupon)
	perUser := h.rateLimitMiddleware.LimitByUser(ratelimit.AuthenticatedAPILimit)
	couponGroup.Post("/use", authConnect, authAccount, perUser, h.UseCoupon)
	couponGroup.Post("/:id/claim", authConnect, authAccount, perUser, h.ClaimCoupon)

	// Management
	couponGroup.Get("/admin", authConnect, authAccount, manager, h.GetCoupons)
	couponGroup.Post("/", authConnect, authAccount, manager, h.CreateCoupon)
	couponGroup.Get("/:id", authConnect, authAccount, manager, h.GetCoupon)
	couponGroup.Patch("/:id", authConnect, authAccount, manager, h.UpdateCoupon)
	couponGroup.Post("/:id/deactivate", authConnect, authAccount, manager, h.DeactivateCoupon)
	couponGroup.Delete("/:id", authConnect, authAccount, manager, h.DeleteCoupon)
	couponGroup.Get("/:id/usages", authConnect, authAccount, manager, h.GetCouponUsages)
}

func (h *CouponHandler) GetAvailableCoupons(c *fiber.Ctx) error {
	coupons, err := h.couponService.GetAvailableCoupons(c.UserContext(), pkg.ParsePagination(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, coupons)
}

func (h *CouponHandler) GetMyCoupons(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)
	unusedOnly := c.QueryBool("unused", false)

	claims, err := h.couponService.GetUserCoupons(c.UserContext(), account.ConnectID.String(), unusedOnly)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, claims)
}

func (h *CouponHandler) GetCouponByCode(c *fiber.Ctx) error {
	coupon, err := h.couponService.GetCouponByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, coupon)
}

// ApplyCoupon previews a coupon. A rejected coupon is still a 200; the
// envelope carries success=false and the reason.
func (h *CouponHandler) ApplyCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	var req models.CouponApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	result, err := h.couponService.ApplyCoupon(c.UserContext(), req.Code, req.OrderAmount, account.ConnectID.String())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return c.JSON(models.WebResponse[*models.CouponApplyResult]{
		Success: result.Success,
		Message: result.Message,
		Data:    result,
	})
}

func (h *CouponHandler) UseCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	var req models.CouponUseRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	usage, err := h.couponService.UseCoupon(c.UserContext(), req.CouponID, account.ConnectID.String(), req.OrderID, req.OrderAmount, req.DiscountAmount)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, usage)
}

func (h *CouponHandler) ClaimCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	claim, err := h.couponService.AddCouponToUser(c.UserContext(), account.ConnectID.String(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	c.Status(fiber.StatusCreated)
	return pkg.SuccessResponse(c, claim)
}

func (h *CouponHandler) GetCoupons(c *fiber.Ctx) error {
	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid is_active filter"))
		}
		isActive = &parsed
	}

	coupons, err := h.couponService.GetCoupons(c.UserContext(), pkg.ParsePagination(c), isActive)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, coupons)
}

func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	var req models.CouponCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	createdBy := account.ConnectID.String()
	req.CreatedBy = &createdBy

	coupon, err := h.couponService.CreateCoupon(c.UserContext(), &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	c.Status(fiber.StatusCreated)
	return pkg.SuccessResponse(c, coupon)
}

func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	coupon, err := h.couponService.GetCoupon(c.UserContext(), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, coupon)
}

func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	var req models.CouponUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	coupon, err := h.couponService.UpdateCoupon(c.UserContext(), c.Params("id"), &req, &account.ConnectID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, coupon)
}

func (h *CouponHandler) DeactivateCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	coupon, err := h.couponService.DeactivateCoupon(c.UserContext(), c.Params("id"), &account.ConnectID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, coupon)
}

func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	if err := h.couponService.DeleteCoupon(c.UserContext(), c.Params("id"), &account.ConnectID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

func (h *CouponHandler) GetCouponUsages(c *fiber.Ctx) error {
	usages, err := h.couponService.GetCouponUsages(c.UserContext(), c.Params("id"), pkg.ParsePagination(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, usages)
}

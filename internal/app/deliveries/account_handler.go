package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/app/services"
)

type AccountHandler struct {
	accountService *services.AccountService
	authMiddleware *middlewares.AuthMiddleware
}

func NewAccountHandler(accountService *services.AccountService, authMiddleware *middlewares.AuthMiddleware) *AccountHandler {
	return &AccountHandler{accountService: accountService, authMiddleware: authMiddleware}
}

func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	accountGroup := router.Group("/accounts")

	accountGroup.Post("/", h.CreateAccount)
	accountGroup.Get("/me", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, h.GetMe)
	accountGroup.Delete("/me", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, h.DeleteMe)

	// Admin
	requireAdmin := h.authMiddleware.RequireRole(models.AccountRoleAdmin)
	accountGroup.Get("/", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.GetAccounts)
	accountGroup.Get("/:id", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.GetAccountByID)
	accountGroup.Patch("/:id/role", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.UpdateRole)
	accountGroup.Patch("/:id/status", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.UpdateStatus)
}

func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	accessToken := c.Get("Authorization")

	account, err := h.accountService.CreateAccount(c.UserContext(), accessToken)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	c.Status(fiber.StatusCreated)
	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) GetMe(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)
	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) GetAccounts(c *fiber.Ctx) error {
	pagination := pkg.ParsePagination(c)

	accounts, err := h.accountService.GetAccounts(c.UserContext(), pagination, models.AccountRole(c.Query("role")))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, accounts)
}

func (h *AccountHandler) GetAccountByID(c *fiber.Ctx) error {
	id := c.Params("id")

	account, err := h.accountService.GetAccount(c.UserContext(), id)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) UpdateRole(c *fiber.Ctx) error {
	admin := c.Locals("account").(*models.Account)

	var req models.AccountRoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	account, err := h.accountService.UpdateRole(c.UserContext(), c.Params("id"), &req, &admin.ConnectID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) UpdateStatus(c *fiber.Ctx) error {
	admin := c.Locals("account").(*models.Account)

	var req models.AccountStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid request body"))
	}

	if c.Params("id") == admin.ConnectID.String() {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("You cannot change your own status"))
	}

	account, err := h.accountService.UpdateStatus(c.UserContext(), c.Params("id"), &req, &admin.ConnectID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) DeleteMe(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)

	err := h.accountService.DeleteAccount(c.UserContext(), account.ConnectID.String())
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

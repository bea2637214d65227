package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/app/services"
)

type AuditHandler struct {
	auditService   *services.AuditService
	authMiddleware *middlewares.AuthMiddleware
}

func NewAuditHandler(auditService *services.AuditService, authMiddleware *middlewares.AuthMiddleware) *AuditHandler {
	return &AuditHandler{auditService: auditService, authMiddleware: authMiddleware}
}

func (h *AuditHandler) RegisterRoutes(router fiber.Router) {
	auditGroup := router.Group("/audit-logs")

	requireAdmin := h.authMiddleware.RequireRole(models.AccountRoleAdmin)
	auditGroup.Get("/", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.GetAuditLogs)
	auditGroup.Get("/:table/:id", h.authMiddleware.AuthConnect, h.authMiddleware.AuthAccount, requireAdmin, h.GetRecordHistory)
}

func (h *AuditHandler) GetAuditLogs(c *fiber.Ctx) error {
	logs, err := h.auditService.GetAuditLogs(c.UserContext(), pkg.ParsePagination(c), c.Query("table"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, logs)
}

func (h *AuditHandler) GetRecordHistory(c *fiber.Ctx) error {
	history, err := h.auditService.GetRecordHistory(c.UserContext(), c.Params("table"), c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, history)
}

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/deliveries"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/pkg/ratelimit"
)

// Application represents the main application container for feastly-core
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	AccountHandler      *deliveries.AccountHandler
	CouponHandler       *deliveries.CouponHandler
	PointsHandler       *deliveries.PointsHandler
	RewardHandler       *deliveries.RewardHandler
	AuditHandler        *deliveries.AuditHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	// Probes and scrapes stay outside the rate limit
	app.HealthHandler.RegisterRoutes(router)

	router.Use(app.RateLimitMiddleware.LimitByIP(ratelimit.PublicAPILimit))

	app.AccountHandler.RegisterRoutes(router)
	app.CouponHandler.RegisterRoutes(router)
	app.PointsHandler.RegisterRoutes(router)
	app.RewardHandler.RegisterRoutes(router)
	app.AuditHandler.RegisterRoutes(router)
}

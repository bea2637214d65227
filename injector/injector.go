//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/google/wire"
	"github.com/safatanc/feastly-core/internal/app/deliveries"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/services"
	"github.com/safatanc/feastly-core/internal/infrastructures"
)

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewValidator,
	infrastructures.NewRateLimiter,
	infrastructures.NewMetrics,
	infrastructures.NewRewardLadder,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewConnectService,
	services.NewAuditService,
	services.NewAccountService,
	services.NewCouponService,
	services.NewPointsService,
	services.NewRewardService,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewAccountHandler,
	deliveries.NewCouponHandler,
	deliveries.NewPointsHandler,
	deliveries.NewRewardHandler,
	deliveries.NewAuditHandler,
	wire.Struct(new(Application), "*"),
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil
}

package middlewares

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/pkg"
	"github.com/safatanc/feastly-core/internal/app/services"
)

type AuthMiddleware struct {
	connectService *services.ConnectService
	accountService *services.AccountService
}

func NewAuthMiddleware(connectService *services.ConnectService, accountService *services.AccountService) *AuthMiddleware {
	return &AuthMiddleware{connectService: connectService, accountService: accountService}
}

func (m *AuthMiddleware) AuthConnect(c *fiber.Ctx) error {
	token := c.Get("Authorization")
	if token == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}

	token = strings.TrimPrefix(token, "Bearer ")

	connectUser, err := m.connectService.GetCurrentUser(c.UserContext(), token)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError(err.Error()))
	}

	c.Locals("connect_user", connectUser)

	return c.Next()
}

func (m *AuthMiddleware) AuthAccount(c *fiber.Ctx) error {
	connectUser, ok := c.Locals("connect_user").(*models.ConnectUser)
	if !ok || connectUser == nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("User is not authenticated"))
	}

	account, err := m.accountService.GetAccount(c.UserContext(), connectUser.ID.String())
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError(fmt.Sprintf("User with connect username %s is not registered on Feastly. Please register first.", connectUser.Username)))
	}

	if !account.IsActive {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("Account is suspended"))
	}

	c.Locals("account", account)

	return c.Next()
}

// RequireRole lets the request through only for accounts holding one of
// roles. It must run after AuthAccount.
func (m *AuthMiddleware) RequireRole(roles ...models.AccountRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := c.Locals("account").(*models.Account)
		if !ok || account == nil {
			return pkg.ErrorResponse(c, errors.NewUnauthorizedError("User is not authenticated"))
		}

		if !account.HasRole(roles...) {
			return pkg.ErrorResponse(c, errors.NewForbiddenError("You do not have access to this resource"))
		}

		return c.Next()
	}
}

package deliveries

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/safatanc/feastly-core/internal/app/middlewares"
	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/internal/app/services"
	"github.com/safatanc/feastly-core/internal/infrastructures"
	"github.com/safatanc/feastly-core/pkg/loyalty"
	"github.com/safatanc/feastly-core/pkg/ratelimit"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type handlerTestEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// newConnectStub answers /users/me for tokens of the form "token-<uuid>".
func newConnectStub(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer token-")
		id, err := uuid.Parse(token)
		if r.URL.Path != "/users/me" || err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(models.WebResponse[any]{Success: false, Message: "invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(models.WebResponse[models.ConnectUser]{
			Success: true,
			Data:    models.ConnectUser{ID: id, Username: "user-" + id.String()[:8]},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func setupHandlerTest(t *testing.T) *handlerTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := infrastructures.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	validator := infrastructures.NewValidator()
	metrics := infrastructures.NewMetricsWithRegisterer(prometheus.NewRegistry())
	connectService := services.NewConnectServiceWithBaseURL(newConnectStub(t).URL)
	auditService := services.NewAuditService(db)
	accountService := services.NewAccountService(db, validator, connectService, auditService)
	couponService := services.NewCouponService(db, validator, auditService, metrics)
	pointsService := services.NewPointsService(db, validator, loyalty.DefaultLadder(), metrics)

	authMiddleware := middlewares.NewAuthMiddleware(connectService, accountService)
	rateLimitMiddleware := middlewares.NewRateLimitMiddleware(ratelimit.NewMemoryRateLimiter())

	app := fiber.New()
	NewAccountHandler(accountService, authMiddleware).RegisterRoutes(app)
	NewCouponHandler(couponService, authMiddleware, rateLimitMiddleware).RegisterRoutes(app)
	NewPointsHandler(pointsService, authMiddleware).RegisterRoutes(app)

	return &handlerTestEnv{app: app, db: db}
}

func (e *handlerTestEnv) createAccount(t *testing.T, role models.AccountRole) string {
	t.Helper()
	account := &models.Account{ConnectID: uuid.New(), Role: role, IsActive: true}
	if err := e.db.Create(account).Error; err != nil {
		t.Fatalf("create account: %v", err)
	}
	return "token-" + account.ConnectID.String()
}

func (e *handlerTestEnv) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, raw
}

func TestCouponRoutesRequireAuthentication(t *testing.T) {
	env := setupHandlerTest(t)

	status, _ := env.do(t, http.MethodPost, "/coupons/apply", "", map[string]any{"code": "X", "order_amount": 10})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}

	status, _ = env.do(t, http.MethodPost, "/coupons/apply", "token-"+uuid.NewString(), map[string]any{"code": "X", "order_amount": 10})
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unregistered user, got %d", status)
	}
}

func TestCouponManagementRequiresRole(t *testing.T) {
	env := setupHandlerTest(t)
	customer := env.createAccount(t, models.AccountRoleCustomer)
	admin := env.createAccount(t, models.AccountRoleAdmin)

	create := map[string]any{
		"code":           "LUNCH20",
		"title":          "Lunch deal",
		"discount_type":  "percentage",
		"discount_value": 20,
		"minimum_order":  50,
	}

	status, _ := env.do(t, http.MethodPost, "/coupons", customer, create)
	if status != http.StatusForbidden {
		t.Fatalf("customer must not create coupons, got %d", status)
	}

	status, raw := env.do(t, http.MethodPost, "/coupons", admin, create)
	if status != http.StatusCreated {
		t.Fatalf("admin create: status %d body %s", status, raw)
	}
}

func TestApplyCouponEnvelope(t *testing.T) {
	env := setupHandlerTest(t)
	admin := env.createAccount(t, models.AccountRoleAdmin)
	customer := env.createAccount(t, models.AccountRoleCustomer)

	status, raw := env.do(t, http.MethodPost, "/coupons", admin, map[string]any{
		"code":           "LUNCH20",
		"title":          "Lunch deal",
		"discount_type":  "percentage",
		"discount_value": 20,
		"minimum_order":  50,
	})
	if status != http.StatusCreated {
		t.Fatalf("create: status %d body %s", status, raw)
	}

	var accepted models.WebResponse[models.CouponApplyResult]
	status, raw = env.do(t, http.MethodPost, "/coupons/apply", customer, map[string]any{"code": "LUNCH20", "order_amount": 100})
	if status != http.StatusOK {
		t.Fatalf("apply: status %d body %s", status, raw)
	}
	if err := json.Unmarshal(raw, &accepted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !accepted.Success || !accepted.Data.Discount.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected discount 20, got %s", raw)
	}

	var rejected models.WebResponse[models.CouponApplyResult]
	status, raw = env.do(t, http.MethodPost, "/coupons/apply", customer, map[string]any{"code": "LUNCH20", "order_amount": 40})
	if status != http.StatusOK {
		t.Fatalf("rejection is not an error: status %d", status)
	}
	if err := json.Unmarshal(raw, &rejected); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rejected.Success || !strings.Contains(rejected.Message, "50") {
		t.Fatalf("expected rejection mentioning 50, got %s", raw)
	}
}

func TestApplyCouponRateLimited(t *testing.T) {
	env := setupHandlerTest(t)
	customer := env.createAccount(t, models.AccountRoleCustomer)

	body := map[string]any{"code": "GUESS", "order_amount": 10}
	for i := 0; i < ratelimit.CouponApplyLimit.Requests; i++ {
		if status, raw := env.do(t, http.MethodPost, "/coupons/apply", customer, body); status != http.StatusOK {
			t.Fatalf("request %d: status %d body %s", i, status, raw)
		}
	}

	if status, _ := env.do(t, http.MethodPost, "/coupons/apply", customer, body); status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after %d checks, got %d", ratelimit.CouponApplyLimit.Requests, status)
	}
}

func TestSuspendedAccountIsForbidden(t *testing.T) {
	env := setupHandlerTest(t)
	token := env.createAccount(t, models.AccountRoleCustomer)
	connectID := strings.TrimPrefix(token, "token-")

	if err := env.db.Model(&models.Account{}).Where("connect_id = ?", connectID).Update("is_active", false).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}

	status, _ := env.do(t, http.MethodGet, "/points/me", token, nil)
	if status != http.StatusForbidden {
		t.Fatalf("expected 403 for suspended account, got %d", status)
	}
}

func TestClaimCouponConflict(t *testing.T) {
	env := setupHandlerTest(t)
	admin := env.createAccount(t, models.AccountRoleAdmin)
	customer := env.createAccount(t, models.AccountRoleCustomer)

	var created models.WebResponse[models.Coupon]
	_, raw := env.do(t, http.MethodPost, "/coupons", admin, map[string]any{
		"title":          "Wallet deal",
		"discount_type":  "fixed_amount",
		"discount_value": 5,
	})
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	path := "/coupons/" + created.Data.ID.String() + "/claim"
	if status, raw := env.do(t, http.MethodPost, path, customer, nil); status != http.StatusCreated {
		t.Fatalf("claim: status %d body %s", status, raw)
	}
	if status, _ := env.do(t, http.MethodPost, path, customer, nil); status != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate claim, got %d", status)
	}

	var wallet models.WebResponse[[]models.UserCoupon]
	status, raw := env.do(t, http.MethodGet, "/coupons/me", customer, nil)
	if status != http.StatusOK {
		t.Fatalf("wallet: status %d", status)
	}
	if err := json.Unmarshal(raw, &wallet); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wallet.Data) != 1 {
		t.Fatalf("expected one claim in wallet, got %d", len(wallet.Data))
	}
}

package deliveries

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/safatanc/feastly-core/internal/app/models"
	"github.com/safatanc/feastly-core/pkg/loyalty"
)

func decodeEnvelope[T any](t *testing.T, raw []byte) models.WebResponse[T] {
	t.Helper()
	var envelope models.WebResponse[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return envelope
}

func TestPointsProgressQuery(t *testing.T) {
	env := setupHandlerTest(t)

	status, raw := env.do(t, http.MethodGet, "/points/progress?points=1000", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", status, raw)
	}
	progress := decodeEnvelope[loyalty.Progress](t, raw).Data
	if progress.CurrentTier.Name != "Silver" || progress.PointsToNextTier != 500 || progress.ProgressPercentage != 50 {
		t.Fatalf("unexpected progress %+v", progress)
	}

	status, raw = env.do(t, http.MethodGet, "/points/progress?points=9000", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if top := decodeEnvelope[loyalty.Progress](t, raw).Data; top.NextTier != nil || top.ProgressPercentage != 100 {
		t.Fatalf("top tier should have no next tier, got %+v", top)
	}

	for _, query := range []string{"abc", "-5", "1.5"} {
		status, raw = env.do(t, http.MethodGet, "/points/progress?points="+query, "", nil)
		if status != http.StatusBadRequest {
			t.Fatalf("points=%s: expected 400, got %d", query, status)
		}
		if envelope := decodeEnvelope[any](t, raw); envelope.Success {
			t.Fatalf("points=%s: error envelope must not report success", query)
		}
	}
}

func TestPointsPreviewAndTiers(t *testing.T) {
	env := setupHandlerTest(t)

	status, raw := env.do(t, http.MethodGet, "/points/preview?order_amount=57.90", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if points := decodeEnvelope[map[string]int64](t, raw).Data["points"]; points != 57 {
		t.Fatalf("expected 57 points, got %d", points)
	}

	status, _ = env.do(t, http.MethodGet, "/points/preview?order_amount=lots", "", nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed amount, got %d", status)
	}

	status, raw = env.do(t, http.MethodGet, "/points/tiers", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if tiers := decodeEnvelope[[]loyalty.Tier](t, raw).Data; len(tiers) != 4 || tiers[0].PointsRequired != 0 {
		t.Fatalf("unexpected tiers %+v", tiers)
	}
}

func TestPointsAdjustAndAward(t *testing.T) {
	env := setupHandlerTest(t)
	customer := env.createAccount(t, models.AccountRoleCustomer)
	owner := env.createAccount(t, models.AccountRoleRestaurantOwner)
	admin := env.createAccount(t, models.AccountRoleAdmin)
	customerID := strings.TrimPrefix(customer, "token-")

	credit := map[string]any{"user_id": customerID, "amount": 100}
	if status, _ := env.do(t, http.MethodPost, "/points/adjust", customer, credit); status != http.StatusForbidden {
		t.Fatalf("customer must not adjust points, got %d", status)
	}
	if status, _ := env.do(t, http.MethodPost, "/points/adjust", owner, credit); status != http.StatusForbidden {
		t.Fatalf("owner must not adjust points, got %d", status)
	}
	if status, raw := env.do(t, http.MethodPost, "/points/adjust", admin, credit); status != http.StatusOK {
		t.Fatalf("admin credit: %d %s", status, raw)
	}

	status, raw := env.do(t, http.MethodPost, "/points/adjust", admin, map[string]any{"user_id": customerID, "amount": -40})
	if status != http.StatusOK {
		t.Fatalf("admin debit: %d %s", status, raw)
	}
	if balance := decodeEnvelope[models.UserPoints](t, raw).Data; balance.Total != 60 || balance.Lifetime != 100 {
		t.Fatalf("unexpected balance after debit %+v", balance)
	}
	if status, _ := env.do(t, http.MethodPost, "/points/adjust", admin, map[string]any{"user_id": customerID, "amount": -61}); status != http.StatusBadRequest {
		t.Fatalf("overdraft debit must be rejected, got %d", status)
	}

	award := map[string]any{"user_id": customerID, "order_id": "order-1", "order_amount": "25.50"}
	if status, raw := env.do(t, http.MethodPost, "/points/award", owner, award); status != http.StatusOK {
		t.Fatalf("owner award: %d %s", status, raw)
	}
	if status, _ := env.do(t, http.MethodPost, "/points/award", owner, award); status != http.StatusConflict {
		t.Fatalf("second award for the order must conflict, got %d", status)
	}

	status, raw = env.do(t, http.MethodGet, "/points/me", customer, nil)
	if status != http.StatusOK {
		t.Fatalf("points me: %d", status)
	}
	summary := decodeEnvelope[models.PointsSummary](t, raw).Data
	if summary.Total != 85 || summary.Tier.Name != "Bronze" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	status, raw = env.do(t, http.MethodGet, "/points/me/history", customer, nil)
	if status != http.StatusOK {
		t.Fatalf("history: %d", status)
	}
	if history := decodeEnvelope[models.Pagination[[]models.PointTransaction]](t, raw).Data; history.TotalItems != 3 {
		t.Fatalf("expected 3 history entries, got %d", history.TotalItems)
	}
}

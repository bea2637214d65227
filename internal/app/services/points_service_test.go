package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/safatanc/feastly-core/internal/app/errors"
	"github.com/safatanc/feastly-core/internal/app/models"
)

func TestGetUserPointsWithoutBalance(t *testing.T) {
	env := setupTestEnv(t)

	summary, err := env.points.GetUserPoints(context.Background(), newUserID())
	if err != nil {
		t.Fatalf("get points: %v", err)
	}
	if summary.Total != 0 || summary.Tier.Name != "Bronze" {
		t.Fatalf("expected empty Bronze balance, got %+v", summary)
	}
	if summary.NextTier == nil || summary.NextTier.Name != "Silver" || summary.PointsToNextTier != 500 {
		t.Fatalf("unexpected progress %+v", summary)
	}
}

func TestEarnPointsDerivesTier(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := newUserID()

	if _, err := env.points.EarnPoints(ctx, userID, 600, models.PointSourceSignupBonus, nil, nil); err != nil {
		t.Fatalf("earn: %v", err)
	}
	balance, err := env.points.EarnPoints(ctx, userID, 400, models.PointSourceAdminAdjustment, strPtr("goodwill"), nil)
	if err != nil {
		t.Fatalf("earn: %v", err)
	}
	if balance.Total != 1000 || balance.Lifetime != 1000 {
		t.Fatalf("expected 1000 total and lifetime, got %+v", balance)
	}

	summary, err := env.points.GetUserPoints(ctx, userID)
	if err != nil {
		t.Fatalf("get points: %v", err)
	}
	if summary.Tier.Name != "Silver" || summary.NextTier == nil || summary.NextTier.Name != "Gold" {
		t.Fatalf("expected Silver heading to Gold, got %+v", summary)
	}
	if summary.PointsToNextTier != 500 || summary.ProgressPercentage != 50 {
		t.Fatalf("expected 500 to go at 50%%, got %d at %d%%", summary.PointsToNextTier, summary.ProgressPercentage)
	}

	if _, err := env.points.EarnPoints(ctx, userID, 0, models.PointSourceOrder, nil, nil); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("zero points must be rejected, got %v", err)
	}
}

func TestRedeemPoints(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := newUserID()

	if _, err := env.points.EarnPoints(ctx, userID, 300, models.PointSourceOrder, nil, strPtr("order-1")); err != nil {
		t.Fatalf("earn: %v", err)
	}

	result, err := env.points.RedeemPoints(ctx, userID, 120, "reward-1", "Free drink")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if !result.Success || result.NewTotal != 180 {
		t.Fatalf("expected new total 180, got %+v", result)
	}

	_, err = env.points.RedeemPoints(ctx, userID, 181, "reward-2", "Free meal")
	if !stderrors.Is(err, errors.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	// Exactly the remaining balance is allowed.
	result, err = env.points.RedeemPoints(ctx, userID, 180, "reward-3", "Dessert")
	if err != nil || result.NewTotal != 0 {
		t.Fatalf("redeem full balance: err=%v result=%+v", err, result)
	}

	summary, _ := env.points.GetUserPoints(ctx, userID)
	if summary.Total != 0 || summary.Lifetime != 300 || summary.Redeemed != 300 {
		t.Fatalf("unexpected balance %+v", summary)
	}

	history, err := env.points.GetPointHistory(ctx, userID, &models.PaginationRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.TotalItems != 3 {
		t.Fatalf("expected 3 history entries, got %d", history.TotalItems)
	}
	var sum int64
	for _, entry := range history.Items {
		sum += entry.Amount
		if entry.Source == models.PointSourceRewardRedemption && entry.Amount >= 0 {
			t.Fatalf("redemption entries must be negative, got %d", entry.Amount)
		}
	}
	if sum != summary.Total {
		t.Fatalf("history sums to %d, balance is %d", sum, summary.Total)
	}
}

func TestRedeemPointsWithoutBalance(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.points.RedeemPoints(context.Background(), newUserID(), 10, "reward-1", "Free drink")
	if !stderrors.Is(err, errors.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	var entries int64
	env.db.Model(&models.PointTransaction{}).Count(&entries)
	if entries != 0 {
		t.Fatalf("failed redemption must not write history, got %d entries", entries)
	}
}

func TestAwardOrderPoints(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := newUserID()

	balance, err := env.points.AwardOrderPoints(ctx, &models.PointsAwardRequest{
		UserID:      userID,
		OrderID:     "order-42",
		OrderAmount: dec("57.90"),
	})
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if balance.Total != 57 {
		t.Fatalf("expected one point per whole unit (57), got %d", balance.Total)
	}

	_, err = env.points.AwardOrderPoints(ctx, &models.PointsAwardRequest{
		UserID:      userID,
		OrderID:     "order-42",
		OrderAmount: dec("57.90"),
	})
	if !stderrors.Is(err, errors.ErrDuplicateAward) || statusOf(err) != http.StatusConflict {
		t.Fatalf("expected ErrDuplicateAward with 409, got %v", err)
	}
	summary, _ := env.points.GetUserPoints(ctx, userID)
	if summary.Total != 57 || summary.Lifetime != 57 {
		t.Fatalf("duplicate award must not credit, got %+v", summary)
	}

	_, err = env.points.AwardOrderPoints(ctx, &models.PointsAwardRequest{
		UserID:      userID,
		OrderID:     "order-43",
		OrderAmount: dec("0.99"),
	})
	if statusOf(err) != http.StatusBadRequest {
		t.Fatalf("order too small to earn must be rejected, got %v", err)
	}
}

func TestRedeemReward(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := newUserID()

	reward, err := env.rewards.CreateReward(ctx, &models.RewardCreateRequest{Name: "Free delivery", PointsCost: 200}, nil)
	if err != nil {
		t.Fatalf("create reward: %v", err)
	}

	if _, err := env.rewards.RedeemReward(ctx, userID, reward.ID.String()); !stderrors.Is(err, errors.ErrInsufficientPoints) {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}

	if _, err := env.points.EarnPoints(ctx, userID, 250, models.PointSourceSignupBonus, nil, nil); err != nil {
		t.Fatalf("earn: %v", err)
	}
	result, err := env.rewards.RedeemReward(ctx, userID, reward.ID.String())
	if err != nil {
		t.Fatalf("redeem reward: %v", err)
	}
	if result.NewTotal != 50 {
		t.Fatalf("expected 50 left, got %d", result.NewTotal)
	}

	inactive := false
	if _, err := env.rewards.UpdateReward(ctx, reward.ID.String(), &models.RewardUpdateRequest{IsActive: &inactive}, nil); err != nil {
		t.Fatalf("update reward: %v", err)
	}
	if _, err := env.rewards.RedeemReward(ctx, userID, reward.ID.String()); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("inactive reward must not be redeemable, got %v", err)
	}

	catalog, err := env.rewards.GetRewards(ctx, &models.PaginationRequest{Page: 1, Limit: 10}, true)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	if catalog.TotalItems != 0 {
		t.Fatalf("inactive rewards must be hidden, got %d", catalog.TotalItems)
	}
}

func TestOrderAwardIsUniqueInLedger(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := newUserID()
	if _, err := env.points.AwardOrderPoints(ctx, &models.PointsAwardRequest{UserID: userID, OrderID: "order-7", OrderAmount: dec("10")}); err != nil {
		t.Fatalf("award: %v", err)
	}
	first, _ := env.points.GetPointHistory(ctx, userID, &models.PaginationRequest{Page: 1, Limit: 10})

	// A writer that skips the service still hits the index.
	orderID := "order-7"
	dup := &models.PointTransaction{
		UserID:      first.Items[0].UserID,
		Amount:      10,
		Source:      models.PointSourceOrder,
		ReferenceID: &orderID,
		OrderRef:    &orderID,
	}
	if err := env.db.Create(dup).Error; !isDuplicateKeyError(err) {
		t.Fatalf("expected unique violation on second order award, got %v", err)
	}

	// Only order awards are constrained; repeated reward redemptions share a reference.
	if _, err := env.points.EarnPoints(ctx, userID, 100, models.PointSourceSignupBonus, nil, nil); err != nil {
		t.Fatalf("earn: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.points.RedeemPoints(ctx, userID, 20, "reward-1", "Free drink"); err != nil {
			t.Fatalf("redeem %d: %v", i, err)
		}
	}

	summary, _ := env.points.GetUserPoints(ctx, userID)
	if summary.Total != 70 {
		t.Fatalf("expected 70 points, got %d", summary.Total)
	}
}

func TestAdjustPoints(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	userID := newUserID()
	note := "goodwill"

	balance, err := env.points.AdjustPoints(ctx, &models.PointsAdjustRequest{UserID: userID, Amount: 100, Description: &note})
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance.Total != 100 || balance.Lifetime != 100 {
		t.Fatalf("credit should raise total and lifetime, got %+v", balance)
	}

	balance, err = env.points.AdjustPoints(ctx, &models.PointsAdjustRequest{UserID: userID, Amount: -40})
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if balance.Total != 60 || balance.Lifetime != 100 || balance.Redeemed != 0 {
		t.Fatalf("debit should only lower total, got %+v", balance)
	}

	_, err = env.points.AdjustPoints(ctx, &models.PointsAdjustRequest{UserID: userID, Amount: -61})
	if !stderrors.Is(err, errors.ErrInsufficientPoints) || statusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected ErrInsufficientPoints, got %v", err)
	}
	if _, err := env.points.AdjustPoints(ctx, &models.PointsAdjustRequest{UserID: userID, Amount: 0}); statusOf(err) != http.StatusBadRequest {
		t.Fatalf("zero adjustment must be rejected, got %v", err)
	}
	if _, err := env.points.AdjustPoints(ctx, &models.PointsAdjustRequest{UserID: newUserID(), Amount: -1}); !stderrors.Is(err, errors.ErrInsufficientPoints) {
		t.Fatalf("debit without a balance must fail, got %v", err)
	}

	history, err := env.points.GetPointHistory(ctx, userID, &models.PaginationRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if history.TotalItems != 2 {
		t.Fatalf("expected credit and debit entries, got %d", history.TotalItems)
	}
	var sum int64
	for _, entry := range history.Items {
		if entry.Source != models.PointSourceAdminAdjustment {
			t.Fatalf("unexpected source %q", entry.Source)
		}
		sum += entry.Amount
	}
	if sum != balance.Total {
		t.Fatalf("history sums to %d, balance is %d", sum, balance.Total)
	}
}

package infrastructures

import (
	"testing"

	"github.com/shopspring/decimal"
)

type moneyRequest struct {
	Amount decimal.Decimal `validate:"gt=0"`
	Floor  decimal.Decimal `validate:"min=0"`
}

func TestValidatorComparesDecimals(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(&moneyRequest{Amount: decimal.RequireFromString("0.01")}); err != nil {
		t.Fatalf("positive amount rejected: %v", err)
	}
	if err := v.Validate(&moneyRequest{Amount: decimal.Zero}); err == nil {
		t.Fatalf("zero amount must fail gt=0")
	}
	if err := v.Validate(&moneyRequest{Amount: decimal.NewFromInt(1), Floor: decimal.NewFromInt(-1)}); err == nil {
		t.Fatalf("negative floor must fail min=0")
	}
}

func TestNewRewardLadder(t *testing.T) {
	Config = &AppConfig{}
	ladder, err := NewRewardLadder()
	if err != nil {
		t.Fatalf("default ladder: %v", err)
	}
	if got := ladder.TierFor(1500).Name; got != "Gold" {
		t.Fatalf("default ladder tier for 1500 = %s", got)
	}

	Config = &AppConfig{REWARD_TIERS: "Member:0,VIP:100"}
	ladder, err = NewRewardLadder()
	if err != nil {
		t.Fatalf("configured ladder: %v", err)
	}
	if got := ladder.TierFor(150).Name; got != "VIP" {
		t.Fatalf("configured ladder tier for 150 = %s", got)
	}

	Config = &AppConfig{REWARD_TIERS: "VIP:100,Member:0"}
	if _, err := NewRewardLadder(); err == nil {
		t.Fatalf("unsorted ladder must be rejected")
	}
}

package infrastructures

import (
	"github.com/safatanc/feastly-core/pkg/loyalty"
)

// NewRewardLadder builds the tier ladder from REWARD_TIERS, falling back to
// the built-in ladder when the variable is unset.
func NewRewardLadder() (*loyalty.Ladder, error) {
	if Config.REWARD_TIERS == "" {
		return loyalty.DefaultLadder(), nil
	}
	return loyalty.ParseLadder(Config.REWARD_TIERS)
}

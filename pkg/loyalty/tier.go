// Package loyalty maps point balances to reward tiers.
package loyalty

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmptyLadder         = errors.New("loyalty: ladder has no tiers")
	ErrBaselineNotZero     = errors.New("loyalty: first tier must require 0 points")
	ErrThresholdsNotSorted = errors.New("loyalty: tier thresholds must be strictly increasing")
)

// Tier is a named loyalty level unlocked at PointsRequired.
type Tier struct {
	Name           string `json:"name"`
	PointsRequired int64  `json:"points_required"`
}

// Progress describes where a balance sits relative to the next tier.
type Progress struct {
	CurrentTier        Tier  `json:"current_tier"`
	NextTier           *Tier `json:"next_tier"`
	PointsToNextTier   int64 `json:"points_to_next_tier"`
	ProgressPercentage int   `json:"progress_percentage"`
}

// Ladder is an immutable list of tiers ordered by strictly increasing
// threshold, starting at 0.
type Ladder struct {
	tiers []Tier
}

func NewLadder(tiers []Tier) (*Ladder, error) {
	if len(tiers) == 0 {
		return nil, ErrEmptyLadder
	}
	if tiers[0].PointsRequired != 0 {
		return nil, ErrBaselineNotZero
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i].PointsRequired <= tiers[i-1].PointsRequired {
			return nil, fmt.Errorf("%w: %s (%d) after %s (%d)", ErrThresholdsNotSorted,
				tiers[i].Name, tiers[i].PointsRequired, tiers[i-1].Name, tiers[i-1].PointsRequired)
		}
	}

	copied := make([]Tier, len(tiers))
	copy(copied, tiers)
	return &Ladder{tiers: copied}, nil
}

// DefaultLadder is Bronze 0, Silver 500, Gold 1500, Platinum 5000.
func DefaultLadder() *Ladder {
	return &Ladder{tiers: []Tier{
		{Name: "Bronze", PointsRequired: 0},
		{Name: "Silver", PointsRequired: 500},
		{Name: "Gold", PointsRequired: 1500},
		{Name: "Platinum", PointsRequired: 5000},
	}}
}

// ParseLadder reads "Name:points,Name:points,...".
func ParseLadder(raw string) (*Ladder, error) {
	var tiers []Tier
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, points, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("loyalty: malformed tier %q", part)
		}
		required, err := strconv.ParseInt(strings.TrimSpace(points), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("loyalty: malformed threshold in %q: %w", part, err)
		}
		tiers = append(tiers, Tier{Name: strings.TrimSpace(name), PointsRequired: required})
	}
	return NewLadder(tiers)
}

// Tiers returns a copy of the ladder, lowest tier first.
func (l *Ladder) Tiers() []Tier {
	copied := make([]Tier, len(l.tiers))
	copy(copied, l.tiers)
	return copied
}

func (l *Ladder) indexFor(points int64) int {
	for i := len(l.tiers) - 1; i >= 0; i-- {
		if l.tiers[i].PointsRequired <= points {
			return i
		}
	}
	return 0
}

// TierFor returns the highest tier whose threshold is at most points.
// Balances below every threshold map to the baseline tier.
func (l *Ladder) TierFor(points int64) Tier {
	return l.tiers[l.indexFor(points)]
}

// Progress computes the distance to the next tier. At the top tier NextTier
// is nil and the percentage is 100.
func (l *Ladder) Progress(points int64) Progress {
	idx := l.indexFor(points)
	current := l.tiers[idx]

	if idx == len(l.tiers)-1 {
		return Progress{
			CurrentTier:        current,
			NextTier:           nil,
			PointsToNextTier:   0,
			ProgressPercentage: 100,
		}
	}

	next := l.tiers[idx+1]
	span := next.PointsRequired - current.PointsRequired
	earned := points - current.PointsRequired
	if earned < 0 {
		earned = 0
	}

	percentage := int(math.Round(100 * float64(earned) / float64(span)))
	if percentage > 100 {
		percentage = 100
	}

	return Progress{
		CurrentTier:        current,
		NextTier:           &next,
		PointsToNextTier:   next.PointsRequired - points,
		ProgressPercentage: percentage,
	}
}

// Package probability holds the closed-form prop probability rules.
package probability

import (
	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// DefaultKThreshold is the strikeout line priced for probable starters
const DefaultKThreshold = 6

const (
	baseHRRate     = 0.03
	barrelHRWeight = 0.2
	tb2Share       = 0.3
	tb3Share       = 0.1
	kOverBase      = 0.6
	kOverSlope     = 0.1
	kUnderBase     = 0.2
	kUnderSlope    = 0.4
)

// Hit returns the probability of at least one hit
func Hit(f models.HitterFeatures) float64 {
	xba := models.ValueOr(f.XBA, models.DefaultXBA)
	park := models.ValueOr(f.ParkMulti, models.DefaultParkMulti)
	platoon := models.ValueOr(f.PlatoonAdv, 0)
	return clamp01(xba*park + platoon)
}

// HomeRun returns the probability of at least one home run
func HomeRun(f models.HitterFeatures) float64 {
	barrel := models.ValueOr(f.BarrelRate, models.DefaultBarrelRate)
	park := models.ValueOr(f.ParkMulti, models.DefaultParkMulti)
	platoon := models.ValueOr(f.PlatoonAdv, 0)
	return clamp01((baseHRRate+barrel*barrelHRWeight)*park + platoon)
}

// TotalBases returns the probability of reaching n total bases.
// Only thresholds 1 through 3 are priced; anything else is 0.
func TotalBases(f models.HitterFeatures, n int) float64 {
	switch n {
	case 1:
		return Hit(f)
	case 2:
		return Hit(f) * tb2Share
	case 3:
		return Hit(f) * tb3Share
	}
	return 0
}

// PitcherKAtLeast returns the probability that a pitcher records k or more strikeouts
func PitcherKAtLeast(f models.StrikeoutFeatures, k int) float64 {
	if !f.Starter || k <= 0 {
		return 0
	}

	kpa := models.ValueOr(f.KPerPA, models.DefaultKPerPA)
	pa := models.ValueOr(f.PAPerGame, models.DefaultPAPerGame)
	parkK := models.ValueOr(f.ParkKMulti, models.DefaultParkMulti)

	expected := kpa * pa * parkK
	threshold := float64(k)

	var p float64
	if expected >= threshold {
		p = kOverBase + (expected-threshold)*kOverSlope
	} else {
		p = kUnderBase + (expected/threshold)*kUnderSlope
	}
	return clamp01(p)
}

// DefaultStrikeoutFeatures returns starter features with every input at its default
func DefaultStrikeoutFeatures() models.StrikeoutFeatures {
	return models.StrikeoutFeatures{
		KPerPA:     models.DefaultKPerPA,
		PAPerGame:  models.DefaultPAPerGame,
		ParkKMulti: models.DefaultParkMulti,
		OppKVsHand: models.DefaultOppKVsHand,
		Starter:    true,
	}
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Package features derives rolling summary features from Statcast event windows.
package features

import (
	"math"
	"sort"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// Platoon adjustments applied to hitter probabilities
const (
	PlatoonAdvantageBonus = 0.02
	PlatoonSameHandMalus  = -0.01
)

// BatterRollingFeatures summarises a batter's window.
// An empty window yields NaN for every feature.
func BatterRollingFeatures(events []models.StatcastEvent) models.BatterFeatures {
	if len(events) == 0 {
		return models.BatterFeatures{XBA: math.NaN(), XWOBA: math.NaN(), BarrelRate: math.NaN()}
	}

	var (
		xbaSum, xwobaSum float64
		xbaN, xwobaN     int
		battedBalls      int
		barrels          int
	)
	for _, e := range events {
		if models.IsFinite(e.EstimatedBA) {
			xbaSum += e.EstimatedBA
			xbaN++
		}
		if models.IsFinite(e.EstimatedWOBA) {
			xwobaSum += e.EstimatedWOBA
			xwobaN++
		}
		if e.IsBattedBall() {
			battedBalls++
			if e.LaunchSpeedAngle == models.LaunchSpeedAngleBarrel {
				barrels++
			}
		}
	}

	f := models.BatterFeatures{
		XBA:        models.DefaultXBA,
		XWOBA:      models.DefaultXWOBA,
		BarrelRate: models.DefaultBarrelRate,
	}
	if xbaN > 0 {
		f.XBA = xbaSum / float64(xbaN)
	}
	if xwobaN > 0 {
		f.XWOBA = xwobaSum / float64(xwobaN)
	}
	if battedBalls > 0 {
		f.BarrelRate = float64(barrels) / float64(battedBalls)
	}
	return f
}

// PitcherRollingFeatures summarises a pitcher's window.
// An empty window yields a NaN strikeout rate and the default workload.
func PitcherRollingFeatures(events []models.StatcastEvent) models.PitcherFeatures {
	if len(events) == 0 {
		return models.PitcherFeatures{KPerPA: math.NaN(), PAPerGame: models.DefaultPAPerGame}
	}

	var pa, strikeouts int
	games := make(map[int64]struct{})
	hands := make(map[string]int)
	for _, e := range events {
		if e.PThrows != "" {
			hands[e.PThrows]++
		}
		if !e.EndsPlateAppearance() {
			continue
		}
		pa++
		if e.IsStrikeout() {
			strikeouts++
		}
		games[e.GamePK] = struct{}{}
	}

	f := models.PitcherFeatures{
		KPerPA:    models.DefaultKPerPA,
		PAPerGame: models.DefaultPAPerGame,
		Throws:    modalHand(hands),
	}
	if pa > 0 {
		f.KPerPA = float64(strikeouts) / float64(pa)
		f.PAPerGame = float64(pa) / float64(len(games))
	}
	return f
}

// PlatoonAdvantage returns the additive adjustment for a batter facing a pitcher's hand
func PlatoonAdvantage(batSide, pThrows string) float64 {
	if batSide == "" || pThrows == "" {
		return 0
	}
	if (batSide == "R" && pThrows == "L") || (batSide == "L" && pThrows == "R") {
		return PlatoonAdvantageBonus
	}
	if batSide == pThrows {
		return PlatoonSameHandMalus
	}
	return 0
}

// modalHand returns the most frequent hand, taking the alphabetically first on a tie
func modalHand(counts map[string]int) string {
	hands := make([]string, 0, len(counts))
	for hand := range counts {
		hands = append(hands, hand)
	}
	sort.Strings(hands)

	best, bestN := "", 0
	for _, hand := range hands {
		if counts[hand] > bestN {
			best, bestN = hand, counts[hand]
		}
	}
	return best
}

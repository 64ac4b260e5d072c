package bvp

import (
	"math"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

const (
	fullWeightAtBats = 12
	fullWeight       = 0.5
	paWeightDivisor  = 10.0
	hrBoostMinHR     = 2
	hrBoostPerHR     = 0.003
	hrBoostCap       = 0.03
)

// BlendOptions controls how matchup history is mixed into rolling features
type BlendOptions struct {
	MaxWeight     float64
	HRBarrelBoost bool
}

// DefaultBlendOptions returns the standard blend settings
func DefaultBlendOptions() BlendOptions {
	return BlendOptions{MaxWeight: 0.4, HRBarrelBoost: true}
}

// Weight returns the share given to matchup history for the given sample
func Weight(stats models.BvPStats, maxWeight float64) float64 {
	if stats.PA <= 0 {
		return 0
	}
	if stats.AB >= fullWeightAtBats {
		return fullWeight
	}
	return math.Min(maxWeight, float64(stats.PA)/paWeightDivisor)
}

// Blend moves batter features toward the matchup's observed AVG and wOBA.
// Features or stats that are not finite are left alone.
func Blend(f models.BatterFeatures, stats models.BvPStats, opts BlendOptions) models.BatterFeatures {
	if stats.PA <= 0 {
		return f
	}

	w := Weight(stats, opts.MaxWeight)
	if models.IsFinite(stats.AVG) && models.IsFinite(f.XBA) {
		f.XBA = (1-w)*f.XBA + w*stats.AVG
	}
	if models.IsFinite(stats.WOBA) && models.IsFinite(f.XWOBA) {
		f.XWOBA = (1-w)*f.XWOBA + w*stats.WOBA
	}

	if opts.HRBarrelBoost && stats.HR >= hrBoostMinHR && models.IsFinite(f.BarrelRate) {
		f.BarrelRate += math.Min(hrBoostCap, float64(stats.HR)*hrBoostPerHR)
	}
	return f
}

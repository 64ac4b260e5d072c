package models

import "math"

// League-average fallbacks used when a rolling window lacks samples
const (
	DefaultXBA        = 0.250
	DefaultXWOBA      = 0.320
	DefaultBarrelRate = 0.08
	DefaultKPerPA     = 0.22
	DefaultPAPerGame  = 24.0
	DefaultParkMulti  = 1.0
	DefaultOppKVsHand = 0.22
)

// BatterFeatures summarises a batter's recent Statcast window.
// NaN marks a value that could not be computed.
type BatterFeatures struct {
	XBA        float64 `json:"b_xba"`
	XWOBA      float64 `json:"b_xwoba"`
	BarrelRate float64 `json:"b_barrel"`
}

// PitcherFeatures summarises a pitcher's recent Statcast window
type PitcherFeatures struct {
	KPerPA    float64 `json:"p_k_per_pa"`
	PAPerGame float64 `json:"p_pa_per_game"`
	Throws    string  `json:"p_throws,omitempty"`
}

// HitterFeatures is the input to the hitter probability rules
type HitterFeatures struct {
	XBA        float64 `json:"b_xba"`
	XWOBA      float64 `json:"b_xwoba"`
	BarrelRate float64 `json:"b_barrel"`
	ParkMulti  float64 `json:"park_multi"`
	PlatoonAdv float64 `json:"platoon_adv"`
}

// NewHitterFeatures combines batter features with matchup context
func NewHitterFeatures(b BatterFeatures, parkMulti, platoonAdv float64) HitterFeatures {
	return HitterFeatures{
		XBA:        b.XBA,
		XWOBA:      b.XWOBA,
		BarrelRate: b.BarrelRate,
		ParkMulti:  parkMulti,
		PlatoonAdv: platoonAdv,
	}
}

// StrikeoutFeatures is the input to the pitcher strikeout rule
type StrikeoutFeatures struct {
	KPerPA     float64 `json:"p_k_per_pa"`
	PAPerGame  float64 `json:"p_pa_per_game"`
	ParkKMulti float64 `json:"park_k_multi"`
	OppKVsHand float64 `json:"opp_k_vs_hand"`
	Starter    bool    `json:"role_starter"`
}

// ValueOr returns v unless it is NaN, in which case fallback is returned
func ValueOr(v, fallback float64) float64 {
	if math.IsNaN(v) {
		return fallback
	}
	return v
}

// IsFinite reports whether v is neither NaN nor infinite
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

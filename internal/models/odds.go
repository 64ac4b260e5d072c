package models

import (
	"github.com/shopspring/decimal"
)

// FairOdds is the vig-free price implied by a model probability
type FairOdds struct {
	Probability decimal.Decimal `json:"probability"`
	Decimal     decimal.Decimal `json:"decimal"`
	American    decimal.Decimal `json:"american"`
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	half    = decimal.NewFromFloat(0.5)
)

// NewFairOdds converts a probability into fair decimal and American odds.
// Probabilities at or outside the [0, 1] bounds have no finite price.
func NewFairOdds(p float64) (FairOdds, error) {
	if !IsFinite(p) || p <= 0 || p >= 1 {
		return FairOdds{}, ErrInvalidProbability
	}

	prob := decimal.NewFromFloat(p)
	against := one.Sub(prob)

	var american decimal.Decimal
	if prob.GreaterThanOrEqual(half) {
		american = hundred.Mul(prob).Div(against).Neg()
	} else {
		american = hundred.Mul(against).Div(prob)
	}

	return FairOdds{
		Probability: prob.Round(4),
		Decimal:     one.Div(prob).Round(2),
		American:    american.Round(0),
	}, nil
}

// AmericanString renders American odds with an explicit sign
func (o FairOdds) AmericanString() string {
	if o.American.IsPositive() {
		return "+" + o.American.String()
	}
	return o.American.String()
}

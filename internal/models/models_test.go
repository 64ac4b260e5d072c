package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFairOdds(t *testing.T) {
	tests := []struct {
		name     string
		prob     float64
		decimal  string
		american string
	}{
		{"even money", 0.5, "2.00", "-100"},
		{"underdog", 0.25, "4.00", "+300"},
		{"favourite", 0.6, "1.67", "-150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			odds, err := NewFairOdds(tt.prob)
			require.NoError(t, err)
			assert.Equal(t, tt.decimal, odds.Decimal.StringFixed(2))
			assert.Equal(t, tt.american, odds.AmericanString())
		})
	}
}

func TestNewFairOddsRejectsBounds(t *testing.T) {
	for _, p := range []float64{0, 1, -0.1, 1.5, math.NaN()} {
		_, err := NewFairOdds(p)
		assert.ErrorIs(t, err, ErrInvalidProbability)
	}
}

func TestRankHittersStableTopN(t *testing.T) {
	rows := []HitterRow{
		{BatterID: 1, PHit: 0.20, PHR: 0.05},
		{BatterID: 2, PHit: 0.30, PHR: 0.05},
		{BatterID: 3, PHit: 0.30, PHR: 0.09},
		{BatterID: 4, PHit: 0.10, PHR: 0.01},
	}

	hit := RankHitters(rows, MarketHit, 3)
	require.Len(t, hit, 3)
	assert.Equal(t, []int64{2, 3, 1}, []int64{hit[0].PlayerID, hit[1].PlayerID, hit[2].PlayerID})
	assert.Equal(t, 1, hit[0].Rank)
	assert.Equal(t, 3, hit[2].Rank)
	assert.Equal(t, MarketHit, hit[0].Market)

	hr := RankHitters(rows, MarketHR, 0)
	require.Len(t, hr, 4)
	assert.Equal(t, int64(3), hr[0].PlayerID)
	assert.InDelta(t, 0.09, hr[0].Probability, 1e-9)

	// input order untouched
	assert.Equal(t, int64(1), rows[0].BatterID)
}

func TestRankPitchers(t *testing.T) {
	rows := []PitcherRow{
		{PitcherID: 10, P6PlusK: 0.4},
		{PitcherID: 11, P6PlusK: 0.7},
	}
	entries := RankPitchers(rows, 10)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(11), entries[0].PlayerID)
	assert.Equal(t, MarketK6, entries[1].Market)
}

func TestBoardRunMarketNames(t *testing.T) {
	run := NewBoardRun(time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC), 30)
	run.Markets[MarketK6] = nil
	run.Markets[MarketHit] = []BoardEntry{{Market: MarketHit, Rank: 1}}

	assert.Equal(t, []Market{MarketHit, MarketK6}, run.MarketNames())
	assert.Len(t, run.AllEntries(), 1)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), run.Date)
}

func TestCalendarDaysBetween(t *testing.T) {
	asof := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)
	now := time.Date(2025, 6, 4, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 3, CalendarDaysBetween(asof, now))
	assert.Equal(t, 0, CalendarDaysBetween(now, now))

	rec := BvPRecord{AsOf: asof}
	assert.Equal(t, 3, rec.AgeDays(now))
}

func TestStatcastEventClassification(t *testing.T) {
	assert.True(t, StatcastEvent{Event: EventDouble}.IsHit())
	assert.True(t, StatcastEvent{Event: EventWalk}.ReducesAtBats())
	assert.True(t, StatcastEvent{Event: EventSacFly}.ReducesAtBats())
	assert.False(t, StatcastEvent{Event: "intent_walk"}.ReducesAtBats())
	assert.False(t, StatcastEvent{Event: "field_out"}.ReducesAtBats())
	assert.False(t, StatcastEvent{}.ReducesAtBats())
	assert.False(t, StatcastEvent{}.EndsPlateAppearance())
	assert.True(t, StatcastEvent{Event: EventStrikeoutDP}.IsStrikeout())
	assert.False(t, StatcastEvent{EstimatedBA: 0.4}.IsBattedBall())
	assert.True(t, StatcastEvent{LaunchSpeedAngle: 4, EstimatedBA: math.NaN()}.IsBattedBall())
}

func TestRosterEntryIsPitcher(t *testing.T) {
	assert.True(t, RosterEntry{PositionType: "P"}.IsPitcher())
	assert.True(t, RosterEntry{PositionType: "Pitcher"}.IsPitcher())
	assert.False(t, RosterEntry{PositionType: "Outfielder"}.IsPitcher())
	assert.False(t, RosterEntry{}.IsPitcher())
}

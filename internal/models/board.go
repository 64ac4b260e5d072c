package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Market identifies a ranked prop market on the daily board
type Market string

// Supported markets
const (
	MarketHit Market = "hit"
	MarketHR  Market = "hr"
	MarketTB1 Market = "tb1"
	MarketTB2 Market = "tb2"
	MarketTB3 Market = "tb3"
	MarketK6  Market = "k6"
)

// HitterMarkets lists the markets ranked from the hitters board
var HitterMarkets = []Market{MarketHit, MarketHR, MarketTB1, MarketTB2, MarketTB3}

// PitcherMarkets lists the markets ranked from the pitchers board
var PitcherMarkets = []Market{MarketK6}

// HitterRow holds the probabilities computed for one hitter
type HitterRow struct {
	BatterID     int64   `json:"batter_id"`
	BatterName   string  `json:"batter_name"`
	TeamID       int64   `json:"team_id"`
	OppPitcherID int64   `json:"opp_pitcher_id,omitempty"`
	PHit         float64 `json:"p_hit"`
	PHR          float64 `json:"p_hr"`
	PTB1         float64 `json:"p_tb1"`
	PTB2         float64 `json:"p_tb2"`
	PTB3         float64 `json:"p_tb3"`
}

// Probability returns the row's probability for a hitter market
func (r HitterRow) Probability(m Market) float64 {
	switch m {
	case MarketHit:
		return r.PHit
	case MarketHR:
		return r.PHR
	case MarketTB1:
		return r.PTB1
	case MarketTB2:
		return r.PTB2
	case MarketTB3:
		return r.PTB3
	}
	return 0
}

// PitcherRow holds the probabilities computed for one probable starter
type PitcherRow struct {
	PitcherID   int64   `json:"pitcher_id"`
	PitcherName string  `json:"pitcher_name"`
	TeamID      int64   `json:"team_id"`
	P6PlusK     float64 `json:"p_6plusK"`
}

// BoardEntry is one ranked line of a market
type BoardEntry struct {
	Market      Market  `db:"market" json:"market"`
	Rank        int     `db:"rank" json:"rank"`
	PlayerID    int64   `db:"player_id" json:"player_id"`
	PlayerName  string  `db:"player_name" json:"player_name"`
	TeamID      int64   `db:"team_id" json:"team_id"`
	Probability float64 `db:"probability" json:"probability"`
}

// BoardRun is the result of one daily board computation
type BoardRun struct {
	ID              uuid.UUID               `db:"id" json:"id"`
	Date            time.Time               `db:"board_date" json:"date"`
	GeneratedAt     time.Time               `db:"generated_at" json:"generated_at"`
	LookbackDays    int                     `db:"lookback_days" json:"lookback_days"`
	HitterCount     int                     `db:"hitter_count" json:"hitter_count"`
	PitcherCount    int                     `db:"pitcher_count" json:"pitcher_count"`
	SkippedHitters  int                     `db:"skipped_hitters" json:"skipped_hitters"`
	SkippedPitchers int                     `db:"skipped_pitchers" json:"skipped_pitchers"`
	Markets         map[Market][]BoardEntry `db:"-" json:"markets"`
}

// NewBoardRun creates an empty board for the given date
func NewBoardRun(date time.Time, lookbackDays int) *BoardRun {
	return &BoardRun{
		ID:           uuid.New(),
		Date:         DateOnly(date),
		GeneratedAt:  time.Now().UTC(),
		LookbackDays: lookbackDays,
		Markets:      make(map[Market][]BoardEntry),
	}
}

// MarketNames returns the markets present on the board in display order
func (b *BoardRun) MarketNames() []Market {
	order := append(append([]Market{}, HitterMarkets...), PitcherMarkets...)
	names := make([]Market, 0, len(b.Markets))
	for _, m := range order {
		if _, ok := b.Markets[m]; ok {
			names = append(names, m)
		}
	}
	return names
}

// AllEntries returns every entry on the board, market by market
func (b *BoardRun) AllEntries() []BoardEntry {
	var entries []BoardEntry
	for _, m := range b.MarketNames() {
		entries = append(entries, b.Markets[m]...)
	}
	return entries
}

// RankHitters orders hitter rows by a market's probability, highest first,
// and keeps at most topN entries. Ties keep their input order.
func RankHitters(rows []HitterRow, m Market, topN int) []BoardEntry {
	sorted := make([]HitterRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Probability(m) > sorted[j].Probability(m)
	})
	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}

	entries := make([]BoardEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = BoardEntry{
			Market:      m,
			Rank:        i + 1,
			PlayerID:    r.BatterID,
			PlayerName:  r.BatterName,
			TeamID:      r.TeamID,
			Probability: r.Probability(m),
		}
	}
	return entries
}

// RankPitchers orders pitcher rows by strikeout probability, highest first
func RankPitchers(rows []PitcherRow, topN int) []BoardEntry {
	sorted := make([]PitcherRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].P6PlusK > sorted[j].P6PlusK
	})
	if topN > 0 && len(sorted) > topN {
		sorted = sorted[:topN]
	}

	entries := make([]BoardEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = BoardEntry{
			Market:      MarketK6,
			Rank:        i + 1,
			PlayerID:    r.PitcherID,
			PlayerName:  r.PitcherName,
			TeamID:      r.TeamID,
			Probability: r.P6PlusK,
		}
	}
	return entries
}

// Package report renders daily boards as tables, JSON or CSV.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

// Output formats
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

var marketTitles = map[models.Market]string{
	models.MarketHit: "1+ Hit",
	models.MarketHR:  "Home Run",
	models.MarketTB1: "1+ Total Bases",
	models.MarketTB2: "2+ Total Bases",
	models.MarketTB3: "3+ Total Bases",
	models.MarketK6:  "6+ Strikeouts",
}

// Line is one rendered board entry with its fair price
type Line struct {
	Market       models.Market `json:"market"`
	Rank         int           `json:"rank"`
	PlayerID     int64         `json:"player_id"`
	PlayerName   string        `json:"player_name"`
	TeamID       int64         `json:"team_id"`
	Probability  float64       `json:"probability"`
	FairDecimal  string        `json:"fair_decimal,omitempty"`
	FairAmerican string        `json:"fair_american,omitempty"`
}

// Document is the JSON shape of a rendered board
type Document struct {
	RunID           uuid.UUID                `json:"run_id"`
	Date            string                   `json:"date"`
	GeneratedAt     time.Time                `json:"generated_at"`
	LookbackDays    int                      `json:"lookback_days"`
	HitterCount     int                      `json:"hitter_count"`
	PitcherCount    int                      `json:"pitcher_count"`
	SkippedHitters  int                      `json:"skipped_hitters"`
	SkippedPitchers int                      `json:"skipped_pitchers"`
	Markets         map[models.Market][]Line `json:"markets"`
}

// ValidFormat reports whether format is supported
func ValidFormat(format string) bool {
	switch format {
	case FormatTable, FormatJSON, FormatCSV:
		return true
	}
	return false
}

// MarketTitle returns the display name of a market
func MarketTitle(m models.Market) string {
	if t, ok := marketTitles[m]; ok {
		return t
	}
	return string(m)
}

// Write renders run to w in the requested format
func Write(w io.Writer, run *models.BoardRun, format string) error {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return writeTable(w, run)
	case FormatJSON:
		return writeJSON(w, run)
	case FormatCSV:
		return writeCSV(w, run)
	}
	return fmt.Errorf("unsupported output format %q", format)
}

// Lines converts a market's entries into priced lines
func Lines(entries []models.BoardEntry) []Line {
	lines := make([]Line, len(entries))
	for i, e := range entries {
		lines[i] = Line{
			Market:      e.Market,
			Rank:        e.Rank,
			PlayerID:    e.PlayerID,
			PlayerName:  e.PlayerName,
			TeamID:      e.TeamID,
			Probability: e.Probability,
		}
		if odds, err := models.NewFairOdds(e.Probability); err == nil {
			lines[i].FairDecimal = odds.Decimal.StringFixed(2)
			lines[i].FairAmerican = odds.AmericanString()
		}
	}
	return lines
}

func writeTable(w io.Writer, run *models.BoardRun) error {
	if _, err := fmt.Fprintf(w, "Daily board %s (lookback %dd, %d hitters, %d pitchers, %d skipped)\n",
		run.Date.Format("2006-01-02"), run.LookbackDays, run.HitterCount, run.PitcherCount,
		run.SkippedHitters+run.SkippedPitchers); err != nil {
		return err
	}

	markets := run.MarketNames()
	if len(markets) == 0 {
		_, err := fmt.Fprintln(w, "No board rows were produced.")
		return err
	}

	for _, m := range markets {
		if _, err := fmt.Fprintf(w, "\n%s\n", MarketTitle(m)); err != nil {
			return err
		}

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Rank", "Player", "Team", "Prob", "Fair Dec", "Fair US"})
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		for _, l := range Lines(run.Markets[m]) {
			table.Append([]string{
				strconv.Itoa(l.Rank),
				l.PlayerName,
				strconv.FormatInt(l.TeamID, 10),
				formatPercent(l.Probability),
				dash(l.FairDecimal),
				dash(l.FairAmerican),
			})
		}
		table.Render()
	}
	return nil
}

func writeJSON(w io.Writer, run *models.BoardRun) error {
	doc := Document{
		RunID:           run.ID,
		Date:            run.Date.Format("2006-01-02"),
		GeneratedAt:     run.GeneratedAt,
		LookbackDays:    run.LookbackDays,
		HitterCount:     run.HitterCount,
		PitcherCount:    run.PitcherCount,
		SkippedHitters:  run.SkippedHitters,
		SkippedPitchers: run.SkippedPitchers,
		Markets:         make(map[models.Market][]Line, len(run.Markets)),
	}
	for _, m := range run.MarketNames() {
		doc.Markets[m] = Lines(run.Markets[m])
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeCSV(w io.Writer, run *models.BoardRun) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"run_id", "date", "market", "rank", "player_id", "player_name", "team_id", "probability", "fair_decimal", "fair_american"}); err != nil {
		return err
	}

	date := run.Date.Format("2006-01-02")
	for _, m := range run.MarketNames() {
		for _, l := range Lines(run.Markets[m]) {
			if err := cw.Write([]string{
				run.ID.String(),
				date,
				string(l.Market),
				strconv.Itoa(l.Rank),
				strconv.FormatInt(l.PlayerID, 10),
				l.PlayerName,
				strconv.FormatInt(l.TeamID, 10),
				strconv.FormatFloat(l.Probability, 'f', 4, 64),
				l.FairDecimal,
				l.FairAmerican,
			}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatPercent(p float64) string {
	return strconv.FormatFloat(p*100, 'f', 1, 64) + "%"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

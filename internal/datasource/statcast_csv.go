package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

const utf8BOM = "\ufeff"

// Statcast CSV column names read by the pipeline
const (
	colGameDate         = "game_date"
	colGamePK           = "game_pk"
	colBatter           = "batter"
	colPitcher          = "pitcher"
	colEvents           = "events"
	colDescription      = "description"
	colStand            = "stand"
	colPThrows          = "p_throws"
	colLaunchSpeedAngle = "launch_speed_angle"
	colEstimatedBA      = "estimated_ba_using_speedangle"
	colEstimatedWOBA    = "estimated_woba_using_speedangle"
)

// ParseStatcastCSV decodes a Statcast search CSV into events.
// Missing columns and empty numeric cells are tolerated; numeric gaps decode as NaN
// for the expected stats and zero for launch_speed_angle.
func ParseStatcastCSV(r io.Reader) ([]models.StatcastEvent, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, utf8BOM))
		name = strings.Trim(name, `"`)
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}

	var events []models.StatcastEvent
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		row := csvRow{cols: cols, record: record}
		ev := models.StatcastEvent{
			GamePK:           row.int64(colGamePK),
			Batter:           row.int64(colBatter),
			Pitcher:          row.int64(colPitcher),
			Event:            row.str(colEvents),
			Description:      row.str(colDescription),
			Stand:            row.str(colStand),
			PThrows:          row.str(colPThrows),
			LaunchSpeedAngle: int(row.int64(colLaunchSpeedAngle)),
			EstimatedBA:      row.float(colEstimatedBA),
			EstimatedWOBA:    row.float(colEstimatedWOBA),
		}
		if d := row.str(colGameDate); d != "" {
			if t, err := time.Parse("2006-01-02", d); err == nil {
				ev.GameDate = t
			}
		}
		events = append(events, ev)
	}

	return events, nil
}

type csvRow struct {
	cols   map[string]int
	record []string
}

func (r csvRow) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.record) {
		return ""
	}
	return trimCell(r.record[i])
}

func (r csvRow) float(name string) float64 {
	s := r.str(name)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (r csvRow) int64(name string) int64 {
	s := r.str(name)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	v := r.float(name)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int64(v)
}

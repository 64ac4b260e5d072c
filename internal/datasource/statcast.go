package datasource

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jasemartin/mlb-top10-probability/internal/metrics"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

const (
	statcastSource         = "statcast"
	DefaultStatcastBaseURL = "https://baseballsavant.mlb.com/statcast_search/csv"
)

// Statcast search player types
const (
	PlayerTypeBatter  = "batter"
	PlayerTypePitcher = "pitcher"
)

// StatcastClient implements EventSource against the Baseball Savant CSV search
type StatcastClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     *logrus.Logger
}

// NewStatcastClient creates a new Statcast search client
func NewStatcastClient(httpClient *RateLimitedHTTPClient, baseURL string, logger *logrus.Logger) *StatcastClient {
	if baseURL == "" {
		baseURL = DefaultStatcastBaseURL
	}
	return &StatcastClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// BatterEvents returns every pitch seen by the batter between start and end inclusive
func (c *StatcastClient) BatterEvents(ctx context.Context, batterID int64, start, end time.Time) ([]models.StatcastEvent, error) {
	return c.search(ctx, PlayerTypeBatter, batterID, start, end)
}

// PitcherEvents returns every pitch thrown by the pitcher between start and end inclusive
func (c *StatcastClient) PitcherEvents(ctx context.Context, pitcherID int64, start, end time.Time) ([]models.StatcastEvent, error) {
	return c.search(ctx, PlayerTypePitcher, pitcherID, start, end)
}

func (c *StatcastClient) search(ctx context.Context, playerType string, playerID int64, start, end time.Time) ([]models.StatcastEvent, error) {
	if end.Before(start) {
		return nil, NewDataSourceError(statcastSource, ErrCodeInvalidData,
			fmt.Sprintf("window end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02")), ErrInvalidData)
	}

	reqURL := c.baseURL + "?" + searchQuery(playerType, playerID, start, end).Encode()
	began := time.Now()

	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		metrics.RecordUpstreamRequest(statcastSource, false, time.Since(began).Seconds())
		return nil, NewDataSourceError(statcastSource, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamRequest(statcastSource, false, time.Since(began).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, statusError(statcastSource, resp.StatusCode, string(body))
	}

	events, err := ParseStatcastCSV(resp.Body)
	if err != nil {
		metrics.RecordUpstreamRequest(statcastSource, false, time.Since(began).Seconds())
		return nil, NewDataSourceError(statcastSource, ErrCodeInvalidData, "failed to parse csv", err)
	}
	metrics.RecordUpstreamRequest(statcastSource, true, time.Since(began).Seconds())

	c.logger.WithFields(logrus.Fields{
		"player_type": playerType,
		"player_id":   playerID,
		"start":       start.Format("2006-01-02"),
		"end":         end.Format("2006-01-02"),
		"rows":        len(events),
	}).Debug("Fetched statcast events")

	return events, nil
}

func searchQuery(playerType string, playerID int64, start, end time.Time) url.Values {
	id := strconv.FormatInt(playerID, 10)
	q := url.Values{}
	q.Set("all", "true")
	q.Set("hfGT", "R|PO|S|")
	q.Set("player_type", playerType)
	q.Set("game_date_gt", start.Format("2006-01-02"))
	q.Set("game_date_lt", end.Format("2006-01-02"))
	if playerType == PlayerTypePitcher {
		q.Set("pitchers_lookup[]", id)
	} else {
		q.Set("batters_lookup[]", id)
	}
	q.Set("min_pitches", "0")
	q.Set("min_results", "0")
	q.Set("group_by", "name")
	q.Set("sort_col", "pitches")
	q.Set("sort_order", "desc")
	q.Set("min_abs", "0")
	q.Set("type", "details")
	return q
}

func trimCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "null") || s == "NA" {
		return ""
	}
	return s
}

var _ EventSource = (*StatcastClient)(nil)

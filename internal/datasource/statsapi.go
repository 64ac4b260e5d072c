package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jasemartin/mlb-top10-probability/internal/metrics"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

const (
	statsAPISource         = "statsapi"
	DefaultStatsAPIBaseURL = "https://statsapi.mlb.com/api/v1"
	scheduleHydrate        = "probablePitcher,team,person"
)

// StatsAPIClient implements ScheduleSource against the MLB stats API
type StatsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	logger     *logrus.Logger
}

type statsAPICode struct {
	Code string `json:"code"`
}

type statsAPIPerson struct {
	ID        int64        `json:"id"`
	FullName  string       `json:"fullName"`
	BatSide   statsAPICode `json:"batSide"`
	PitchHand statsAPICode `json:"pitchHand"`
}

type statsAPITeamSide struct {
	Team struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	ProbablePitcher *statsAPIPerson `json:"probablePitcher"`
}

type statsAPIGame struct {
	GamePK   int64  `json:"gamePk"`
	GameDate string `json:"gameDate"`
	Venue    struct {
		Name string `json:"name"`
	} `json:"venue"`
	Teams struct {
		Away statsAPITeamSide `json:"away"`
		Home statsAPITeamSide `json:"home"`
	} `json:"teams"`
}

type statsAPIScheduleResponse struct {
	Dates []struct {
		Date  string         `json:"date"`
		Games []statsAPIGame `json:"games"`
	} `json:"dates"`
}

type statsAPIRosterResponse struct {
	Roster []struct {
		Person   statsAPIPerson `json:"person"`
		Position struct {
			Code         string `json:"code"`
			Type         string `json:"type"`
			Abbreviation string `json:"abbreviation"`
		} `json:"position"`
	} `json:"roster"`
}

// NewStatsAPIClient creates a new stats API client
func NewStatsAPIClient(httpClient *RateLimitedHTTPClient, baseURL string, logger *logrus.Logger) *StatsAPIClient {
	if baseURL == "" {
		baseURL = DefaultStatsAPIBaseURL
	}
	return &StatsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// Schedule returns the games on the given date with probable starters hydrated
func (c *StatsAPIClient) Schedule(ctx context.Context, date time.Time) ([]models.Game, error) {
	q := url.Values{}
	q.Set("sportId", "1")
	q.Set("date", date.Format("2006-01-02"))
	q.Set("hydrate", scheduleHydrate)

	var body statsAPIScheduleResponse
	if err := c.getJSON(ctx, "/schedule?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	var games []models.Game
	for _, d := range body.Dates {
		for _, g := range d.Games {
			games = append(games, convertGame(g))
		}
	}

	c.logger.WithFields(logrus.Fields{
		"date":  date.Format("2006-01-02"),
		"games": len(games),
	}).Debug("Fetched schedule")

	return games, nil
}

// ActiveRoster returns the active roster for a team
func (c *StatsAPIClient) ActiveRoster(ctx context.Context, teamID int64) ([]models.RosterEntry, error) {
	q := url.Values{}
	q.Set("rosterType", "active")
	q.Set("hydrate", "person")

	var body statsAPIRosterResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/teams/%d/roster?%s", teamID, q.Encode()), &body); err != nil {
		return nil, err
	}

	roster := make([]models.RosterEntry, 0, len(body.Roster))
	for _, r := range body.Roster {
		posType := r.Position.Type
		if r.Position.Abbreviation == models.PositionTypePitcher && posType == "" {
			posType = models.PositionTypePitcher
		}
		roster = append(roster, models.RosterEntry{
			Person:       convertPerson(r.Person),
			PositionCode: r.Position.Code,
			PositionType: posType,
		})
	}
	return roster, nil
}

func (c *StatsAPIClient) getJSON(ctx context.Context, path string, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Get(ctx, c.baseURL+path)
	if err != nil {
		metrics.RecordUpstreamRequest(statsAPISource, false, time.Since(start).Seconds())
		return NewDataSourceError(statsAPISource, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordUpstreamRequest(statsAPISource, false, time.Since(start).Seconds())
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return statusError(statsAPISource, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordUpstreamRequest(statsAPISource, false, time.Since(start).Seconds())
		return NewDataSourceError(statsAPISource, ErrCodeInvalidData, "failed to parse response", err)
	}

	metrics.RecordUpstreamRequest(statsAPISource, true, time.Since(start).Seconds())
	return nil
}

func convertGame(g statsAPIGame) models.Game {
	gameDate, err := time.Parse(time.RFC3339, g.GameDate)
	if err != nil {
		gameDate = time.Time{}
	}
	return models.Game{
		GamePK:   g.GamePK,
		GameDate: gameDate,
		Venue:    g.Venue.Name,
		Home:     convertTeamSide(g.Teams.Home),
		Away:     convertTeamSide(g.Teams.Away),
	}
}

func convertTeamSide(s statsAPITeamSide) models.TeamSide {
	side := models.TeamSide{
		TeamID:   s.Team.ID,
		TeamName: s.Team.Name,
	}
	if s.ProbablePitcher != nil && s.ProbablePitcher.ID != 0 {
		p := convertPerson(*s.ProbablePitcher)
		side.ProbablePitcher = &p
	}
	return side
}

func convertPerson(p statsAPIPerson) models.Person {
	return models.Person{
		ID:        p.ID,
		FullName:  p.FullName,
		BatSide:   p.BatSide.Code,
		PitchHand: p.PitchHand.Code,
	}
}

var _ ScheduleSource = (*StatsAPIClient)(nil)


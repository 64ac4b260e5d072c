package datasource

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
)

const scheduleJSON = `{
  "dates": [{
    "date": "2024-06-01",
    "games": [{
      "gamePk": 745001,
      "gameDate": "2024-06-01T17:05:00Z",
      "venue": {"name": "Yankee Stadium"},
      "teams": {
        "away": {"team": {"id": 111, "name": "Boston Red Sox"},
                 "probablePitcher": {"id": 900, "fullName": "Away Starter", "pitchHand": {"code": "L"}}},
        "home": {"team": {"id": 147, "name": "New York Yankees"}}
      }
    }]
  }]
}`

const rosterJSON = `{
  "roster": [
    {"person": {"id": 1, "fullName": "Lefty Bat", "batSide": {"code": "L"}}, "position": {"code": "8", "type": "Outfielder", "abbreviation": "CF"}},
    {"person": {"id": 2, "fullName": "Some Arm", "pitchHand": {"code": "R"}}, "position": {"code": "1", "type": "Pitcher", "abbreviation": "P"}}
  ]
}`

const statcastCSV = "\ufeffpitch_type,game_date,game_pk,batter,pitcher,events,description,stand,p_throws,launch_speed_angle,estimated_ba_using_speedangle,estimated_woba_using_speedangle\n" +
	"FF,2024-05-30,745000,10,900,single,hit_into_play,L,R,6,.710,.950\n" +
	"SL,2024-05-30,745000,10,900,,ball,L,R,,,\n" +
	"CH,2024-05-29,744990,10,901,strikeout,swinging_strike,L,L,null,null,null\n"

func testHTTPClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, nil)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func TestStatsAPISchedule(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleJSON))
	}))
	defer srv.Close()

	client := NewStatsAPIClient(testHTTPClient(), srv.URL, quietLogger())
	games, err := client.Schedule(context.Background(), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, games, 1)

	assert.Contains(t, gotQuery, "date=2024-06-01")
	assert.Contains(t, gotQuery, "sportId=1")
	assert.Contains(t, gotQuery, "hydrate=probablePitcher%2Cteam%2Cperson")

	g := games[0]
	assert.Equal(t, int64(745001), g.GamePK)
	assert.Equal(t, "Yankee Stadium", g.Venue)
	assert.Equal(t, int64(111), g.Away.TeamID)
	require.NotNil(t, g.Away.ProbablePitcher)
	assert.Equal(t, int64(900), g.Away.ProbablePitcher.ID)
	assert.Equal(t, "L", g.Away.ProbablePitcher.PitchHand)
	assert.Nil(t, g.Home.ProbablePitcher)
}

func TestStatsAPIActiveRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/147/roster", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("rosterType"))
		_, _ = w.Write([]byte(rosterJSON))
	}))
	defer srv.Close()

	client := NewStatsAPIClient(testHTTPClient(), srv.URL, quietLogger())
	roster, err := client.ActiveRoster(context.Background(), 147)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	assert.Equal(t, "L", roster[0].Person.BatSide)
	assert.False(t, roster[0].IsPitcher())
	assert.True(t, roster[1].IsPitcher())
}

func TestStatsAPIEmptyRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewStatsAPIClient(testHTTPClient(), srv.URL, quietLogger())
	roster, err := client.ActiveRoster(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, roster)
}

func TestStatsAPIStatusErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"not found", http.StatusNotFound, ErrCodeNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrCodeRateLimitExceeded},
		{"server error", http.StatusBadGateway, ErrCodeServerError},
		{"bad request", http.StatusBadRequest, ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewStatsAPIClient(testHTTPClient(), srv.URL, quietLogger())
			_, err := client.Schedule(context.Background(), time.Now())
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestStatsAPIInvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dates": [`))
	}))
	defer srv.Close()

	client := NewStatsAPIClient(testHTTPClient(), srv.URL, quietLogger())
	_, err := client.Schedule(context.Background(), time.Now())
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidData, ErrorCode(err))
}

func TestParseStatcastCSV(t *testing.T) {
	events, err := ParseStatcastCSV(strings.NewReader(statcastCSV))
	require.NoError(t, err)
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), first.GameDate)
	assert.Equal(t, int64(745000), first.GamePK)
	assert.Equal(t, int64(10), first.Batter)
	assert.Equal(t, int64(900), first.Pitcher)
	assert.Equal(t, models.EventSingle, first.Event)
	assert.Equal(t, 6, first.LaunchSpeedAngle)
	assert.InDelta(t, 0.71, first.EstimatedBA, 1e-9)
	assert.InDelta(t, 0.95, first.EstimatedWOBA, 1e-9)

	second := events[1]
	assert.Empty(t, second.Event)
	assert.True(t, math.IsNaN(second.EstimatedBA))
	assert.Equal(t, 0, second.LaunchSpeedAngle)

	third := events[2]
	assert.True(t, third.IsStrikeout())
	assert.True(t, math.IsNaN(third.EstimatedWOBA))
}

func TestParseStatcastCSVMissingColumns(t *testing.T) {
	events, err := ParseStatcastCSV(strings.NewReader("game_pk,batter,events\n1,2,walk\n"))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, models.EventWalk, events[0].Event)
	assert.True(t, math.IsNaN(events[0].EstimatedBA))
	assert.Empty(t, events[0].PThrows)
	assert.True(t, events[0].GameDate.IsZero())
}

func TestParseStatcastCSVEmpty(t *testing.T) {
	events, err := ParseStatcastCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestStatcastClientQuery(t *testing.T) {
	var query map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		_, _ = w.Write([]byte(statcastCSV))
	}))
	defer srv.Close()

	client := NewStatcastClient(testHTTPClient(), srv.URL, quietLogger())
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	events, err := client.PitcherEvents(context.Background(), 900, start, end)
	require.NoError(t, err)
	assert.Len(t, events, 3)

	assert.Equal(t, []string{"pitcher"}, query["player_type"])
	assert.Equal(t, []string{"900"}, query["pitchers_lookup[]"])
	assert.Equal(t, []string{"2024-05-01"}, query["game_date_gt"])
	assert.Equal(t, []string{"2024-05-31"}, query["game_date_lt"])
	assert.Equal(t, []string{"details"}, query["type"])

	_, err = client.BatterEvents(context.Background(), 10, start, end)
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, query["batters_lookup[]"])
}

func TestStatcastClientRejectsInvertedWindow(t *testing.T) {
	client := NewStatcastClient(testHTTPClient(), "http://127.0.0.1:0", quietLogger())
	start := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)

	_, err := client.BatterEvents(context.Background(), 1, start, start.AddDate(0, 0, -1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidData))
}

type countingSource struct {
	calls int32
	err   error
}

func (s *countingSource) BatterEvents(ctx context.Context, id int64, start, end time.Time) ([]models.StatcastEvent, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return []models.StatcastEvent{{Batter: id}}, nil
}

func (s *countingSource) PitcherEvents(ctx context.Context, id int64, start, end time.Time) ([]models.StatcastEvent, error) {
	atomic.AddInt32(&s.calls, 1)
	return []models.StatcastEvent{{Pitcher: id}}, nil
}

func TestCachedEventSource(t *testing.T) {
	src := &countingSource{}
	cached := NewCachedEventSource(src, time.Minute)
	ctx := context.Background()
	start, end := Window(time.Date(2024, 6, 1, 15, 0, 0, 0, time.UTC), 30)

	_, err := cached.BatterEvents(ctx, 10, start, end)
	require.NoError(t, err)
	events, err := cached.BatterEvents(ctx, 10, start, end)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&src.calls))

	// same id as a pitcher is a different window
	_, err = cached.PitcherEvents(ctx, 10, start, end)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.calls))

	stats := cached.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, 2, stats.ItemCount)

	cached.Clear()
	assert.Equal(t, 0, cached.Stats().ItemCount)
}

func TestCachedEventSourceDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{err: errors.New("boom")}
	cached := NewCachedEventSource(src, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := cached.BatterEvents(context.Background(), 1, time.Time{}, time.Time{})
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&src.calls))
}

func TestWindow(t *testing.T) {
	start, end := Window(time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC), 30)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), start)
}

func TestRateLimitedHTTPClientRetries(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := testHTTPClient()
	resp, err := client.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestRateLimitedHTTPClientCircuitBreaker(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	cfg.Timeout = 500 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)

	// nothing listens on port 1
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), "http://127.0.0.1:1")
		require.Error(t, err)
	}
	assert.True(t, client.IsOpen())

	_, err := client.Get(context.Background(), "http://127.0.0.1:1")
	assert.ErrorIs(t, err, ErrCircuitOpen)

	client.Reset()
	assert.False(t, client.IsOpen())
}

func TestRateLimitedHTTPClientIgnoresCallerContextErrors(t *testing.T) {
	var slow atomic.Bool
	slow.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slow.Load() {
			time.Sleep(100 * time.Millisecond)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := client.Get(ctx, server.URL)
		cancel()
		require.Error(t, err)
	}
	assert.False(t, client.IsOpen())

	slow.Store(false)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRateLimitedHTTPClientHalfOpensAfterResetTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	cfg.CircuitResetTimeout = time.Minute
	cfg.Timeout = 500 * time.Millisecond
	client := NewRateLimitedHTTPClient(cfg, nil)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return now }

	// nothing listens on port 1
	for i := 0; i < 2; i++ {
		_, err := client.Get(context.Background(), "http://127.0.0.1:1")
		require.Error(t, err)
	}
	require.True(t, client.IsOpen())

	_, err := client.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	// a failed trial reopens the breaker for another full timeout
	now = now.Add(time.Minute)
	_, err = client.Get(context.Background(), "http://127.0.0.1:1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
	_, err = client.Get(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrCircuitOpen)

	now = now.Add(time.Minute)
	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, client.IsOpen())
}

func TestDataSourceError(t *testing.T) {
	err := NewDataSourceError("statsapi", ErrCodeNotFound, "missing", ErrNotFound)

	assert.Equal(t, "statsapi: not_found: missing (data not found)", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, ErrCodeNotFound, ErrorCode(err))
	assert.Equal(t, ErrCodeUnknown, ErrorCode(errors.New("plain")))
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jasemartin/mlb-top10-probability/internal/bvp"
	"github.com/jasemartin/mlb-top10-probability/internal/config"
	"github.com/jasemartin/mlb-top10-probability/internal/datasource"
	"github.com/jasemartin/mlb-top10-probability/internal/features"
	"github.com/jasemartin/mlb-top10-probability/internal/logger"
	"github.com/jasemartin/mlb-top10-probability/internal/metrics"
	"github.com/jasemartin/mlb-top10-probability/internal/models"
	"github.com/jasemartin/mlb-top10-probability/internal/probability"
	"github.com/jasemartin/mlb-top10-probability/internal/repository"
)

const dateLayout = "2006-01-02"

// Board names used in logs and metrics
const (
	boardHitters  = "hitters"
	boardPitchers = "pitchers"
)

// BoardOptions holds the parameters of a board computation
type BoardOptions struct {
	LookbackDays int
	ParkMulti    float64
	ParkKMulti   float64
	OppKVsHand   float64
	TopN         int
	KThreshold   int
	Blend        bvp.BlendOptions
	Concurrency  int
	Persist      bool
}

// DefaultBoardOptions returns a 30-day lookback, neutral parks and a top 10
func DefaultBoardOptions() BoardOptions {
	return BoardOptions{
		LookbackDays: 30,
		ParkMulti:    models.DefaultParkMulti,
		ParkKMulti:   models.DefaultParkMulti,
		OppKVsHand:   models.DefaultOppKVsHand,
		TopN:         10,
		KThreshold:   probability.DefaultKThreshold,
		Blend:        bvp.DefaultBlendOptions(),
		Concurrency:  4,
	}
}

// BoardOptionsFromConfig builds board options from configuration
func BoardOptionsFromConfig(cfg *config.Config) BoardOptions {
	opts := DefaultBoardOptions()
	opts.LookbackDays = cfg.Board.LookbackDays
	opts.ParkMulti = cfg.Board.ParkMulti
	opts.ParkKMulti = cfg.Board.ParkKMulti
	opts.OppKVsHand = cfg.Board.OppKVsHand
	opts.TopN = cfg.Board.TopN
	opts.KThreshold = cfg.Board.KThreshold
	opts.Persist = cfg.Board.Persist
	if cfg.Board.Concurrency > 0 {
		opts.Concurrency = cfg.Board.Concurrency
	}
	opts.Blend = bvp.BlendOptions{
		MaxWeight:     cfg.BvP.MaxWeight,
		HRBarrelBoost: cfg.BvP.HRBarrelBoost,
	}
	return opts
}

// PairStatsProvider returns a batter's history against a pitcher
type PairStatsProvider interface {
	ForPair(ctx context.Context, batterID, pitcherID int64) (models.BvPStats, error)
}

// Candidates is the player pool for one board date
type Candidates struct {
	Games    int
	Hitters  []models.HitterCandidate
	Pitchers []models.PitcherCandidate
}

// BoardService computes, ranks and publishes daily probability boards
type BoardService struct {
	schedule datasource.ScheduleSource
	events   datasource.EventSource
	matchups PairStatsProvider
	boards   repository.BoardRepository
	log      *logger.BoardLogger
}

// NewBoardService creates a new board service. boards may be nil when runs are not persisted.
func NewBoardService(
	schedule datasource.ScheduleSource,
	events datasource.EventSource,
	matchups PairStatsProvider,
	boards repository.BoardRepository,
	log *logrus.Logger,
) *BoardService {
	return &BoardService{
		schedule: schedule,
		events:   events,
		matchups: matchups,
		boards:   boards,
		log:      logger.NewBoardLogger(log),
	}
}

// CollectCandidates gathers probable starters and the non-pitchers on each
// active roster for the date. Players are deduplicated on id, first seen wins.
func (s *BoardService) CollectCandidates(ctx context.Context, date time.Time) (*Candidates, error) {
	games, err := s.schedule.Schedule(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %s: %w", date.Format(dateLayout), err)
	}

	out := &Candidates{Games: len(games)}
	seenHitters := make(map[int64]struct{})
	seenPitchers := make(map[int64]struct{})
	rosters := make(map[int64][]models.RosterEntry)

	addPitcher := func(p *models.Person, team, opponent int64) {
		if p == nil || p.ID == 0 {
			return
		}
		if _, ok := seenPitchers[p.ID]; ok {
			return
		}
		seenPitchers[p.ID] = struct{}{}
		out.Pitchers = append(out.Pitchers, models.PitcherCandidate{
			PitcherID:      p.ID,
			PitcherName:    p.FullName,
			TeamID:         team,
			OpponentTeamID: opponent,
		})
	}

	for _, g := range games {
		addPitcher(g.Home.ProbablePitcher, g.Home.TeamID, g.Away.TeamID)
		addPitcher(g.Away.ProbablePitcher, g.Away.TeamID, g.Home.TeamID)

		sides := []struct {
			team, opp models.TeamSide
		}{
			{g.Home, g.Away},
			{g.Away, g.Home},
		}
		for _, side := range sides {
			roster, ok := rosters[side.team.TeamID]
			if !ok {
				roster, err = s.schedule.ActiveRoster(ctx, side.team.TeamID)
				if err != nil {
					return nil, fmt.Errorf("failed to fetch roster for team %d: %w", side.team.TeamID, err)
				}
				rosters[side.team.TeamID] = roster
			}

			var oppID int64
			var oppHand string
			if side.opp.ProbablePitcher != nil {
				oppID = side.opp.ProbablePitcher.ID
				oppHand = side.opp.ProbablePitcher.PitchHand
			}

			for _, r := range roster {
				if r.IsPitcher() || r.Person.ID == 0 {
					continue
				}
				if _, ok := seenHitters[r.Person.ID]; ok {
					continue
				}
				seenHitters[r.Person.ID] = struct{}{}
				out.Hitters = append(out.Hitters, models.HitterCandidate{
					BatterID:             r.Person.ID,
					BatterName:           r.Person.FullName,
					BatSide:              r.Person.BatSide,
					TeamID:               side.team.TeamID,
					OpponentTeamID:       side.opp.TeamID,
					OppProbablePitcherID: oppID,
					OppPitcherHand:       oppHand,
				})
			}
		}
	}

	s.log.LogCandidatesCollected(date.Format(dateLayout), out.Games, len(out.Hitters), len(out.Pitchers))
	metrics.RecordCandidates(len(out.Hitters), len(out.Pitchers))
	return out, nil
}

// HittersBoard computes hit, home run and total-base probabilities per hitter.
// Rows whose inputs fail are logged and dropped; the returned count is the number skipped.
func (s *BoardService) HittersBoard(ctx context.Context, asOf time.Time, hitters []models.HitterCandidate, opts BoardOptions) ([]models.HitterRow, int, error) {
	start, end := datasource.Window(asOf, opts.LookbackDays)

	results := make([]*models.HitterRow, len(hitters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency(opts))

	for i, h := range hitters {
		i, h := i, h
		g.Go(func() error {
			row, err := s.hitterRow(gctx, h, start, end, opts)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.LogRowSkipped(boardHitters, h.BatterID, err)
				metrics.RecordRowSkipped(boardHitters)
				return nil
			}
			results[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	rows, skipped := collectRows(results)
	return rows, skipped, nil
}

func (s *BoardService) hitterRow(ctx context.Context, h models.HitterCandidate, start, end time.Time, opts BoardOptions) (*models.HitterRow, error) {
	batterEvents, err := s.events.BatterEvents(ctx, h.BatterID, start, end)
	if err != nil {
		return nil, fmt.Errorf("batter window: %w", err)
	}
	bf := features.BatterRollingFeatures(batterEvents)

	throws := h.OppPitcherHand
	if h.HasOpposingStarter() {
		pitcherEvents, err := s.events.PitcherEvents(ctx, h.OppProbablePitcherID, start, end)
		if err != nil {
			return nil, fmt.Errorf("opposing pitcher window: %w", err)
		}
		if pf := features.PitcherRollingFeatures(pitcherEvents); pf.Throws != "" {
			throws = pf.Throws
		}

		stats, err := s.matchups.ForPair(ctx, h.BatterID, h.OppProbablePitcherID)
		if err != nil {
			return nil, fmt.Errorf("matchup history: %w", err)
		}
		bf = bvp.Blend(bf, stats, opts.Blend)
	}

	hf := models.NewHitterFeatures(bf, opts.ParkMulti, features.PlatoonAdvantage(h.BatSide, throws))
	return &models.HitterRow{
		BatterID:     h.BatterID,
		BatterName:   h.BatterName,
		TeamID:       h.TeamID,
		OppPitcherID: h.OppProbablePitcherID,
		PHit:         probability.Hit(hf),
		PHR:          probability.HomeRun(hf),
		PTB1:         probability.TotalBases(hf, 1),
		PTB2:         probability.TotalBases(hf, 2),
		PTB3:         probability.TotalBases(hf, 3),
	}, nil
}

// PitchersBoard computes the strikeout-line probability for each probable starter
func (s *BoardService) PitchersBoard(ctx context.Context, asOf time.Time, pitchers []models.PitcherCandidate, opts BoardOptions) ([]models.PitcherRow, int, error) {
	start, end := datasource.Window(asOf, opts.LookbackDays)
	k := opts.KThreshold
	if k <= 0 {
		k = probability.DefaultKThreshold
	}

	results := make([]*models.PitcherRow, len(pitchers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency(opts))

	for i, p := range pitchers {
		i, p := i, p
		g.Go(func() error {
			events, err := s.events.PitcherEvents(gctx, p.PitcherID, start, end)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.LogRowSkipped(boardPitchers, p.PitcherID, fmt.Errorf("pitcher window: %w", err))
				metrics.RecordRowSkipped(boardPitchers)
				return nil
			}

			pf := features.PitcherRollingFeatures(events)
			kf := models.StrikeoutFeatures{
				KPerPA:     pf.KPerPA,
				PAPerGame:  pf.PAPerGame,
				ParkKMulti: opts.ParkKMulti,
				OppKVsHand: opts.OppKVsHand,
				Starter:    true,
			}
			results[i] = &models.PitcherRow{
				PitcherID:   p.PitcherID,
				PitcherName: p.PitcherName,
				TeamID:      p.TeamID,
				P6PlusK:     probability.PitcherKAtLeast(kf, k),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	rows, skipped := collectRows(results)
	return rows, skipped, nil
}

// DailyTop computes both boards for a date and keeps the top N of each market.
// Hitter markets appear only when at least one hitter row survived, and the
// strikeout market only when at least one pitcher row did.
func (s *BoardService) DailyTop(ctx context.Context, date time.Time, opts BoardOptions) (*models.BoardRun, error) {
	candidates, err := s.CollectCandidates(ctx, date)
	if err != nil {
		return nil, err
	}

	hitterRows, skippedHitters, err := s.HittersBoard(ctx, date, candidates.Hitters, opts)
	if err != nil {
		return nil, fmt.Errorf("hitters board: %w", err)
	}
	pitcherRows, skippedPitchers, err := s.PitchersBoard(ctx, date, candidates.Pitchers, opts)
	if err != nil {
		return nil, fmt.Errorf("pitchers board: %w", err)
	}

	run := models.NewBoardRun(date, opts.LookbackDays)
	run.HitterCount = len(hitterRows)
	run.PitcherCount = len(pitcherRows)
	run.SkippedHitters = skippedHitters
	run.SkippedPitchers = skippedPitchers

	if len(hitterRows) > 0 {
		for _, m := range models.HitterMarkets {
			run.Markets[m] = models.RankHitters(hitterRows, m, opts.TopN)
		}
	}
	if len(pitcherRows) > 0 {
		run.Markets[models.MarketK6] = models.RankPitchers(pitcherRows, opts.TopN)
	}
	return run, nil
}

// Run computes the daily board, records metrics and persists it when requested
func (s *BoardService) Run(ctx context.Context, date time.Time, opts BoardOptions) (*models.BoardRun, error) {
	started := time.Now()

	run, err := s.DailyTop(ctx, date, opts)
	if err != nil {
		metrics.RecordBoardRun(false, time.Since(started).Seconds(), 0)
		return nil, err
	}

	if opts.Persist {
		if err := s.Publish(ctx, run); err != nil {
			metrics.RecordBoardRun(false, time.Since(started).Seconds(), 0)
			return run, err
		}
	}

	elapsed := time.Since(started)
	metrics.RecordBoardRun(true, elapsed.Seconds(), float64(time.Now().Unix()))
	s.log.LogBoardCompleted(run.ID.String(), run.Date.Format(dateLayout), run.HitterCount, run.PitcherCount,
		run.SkippedHitters+run.SkippedPitchers, elapsed)
	return run, nil
}

// Publish stores a computed board run
func (s *BoardService) Publish(ctx context.Context, run *models.BoardRun) error {
	if s.boards == nil {
		return fmt.Errorf("board persistence is not configured")
	}
	if err := s.boards.SaveRun(ctx, run); err != nil {
		return fmt.Errorf("failed to save board run %s: %w", run.ID, err)
	}
	return nil
}

func concurrency(opts BoardOptions) int {
	if opts.Concurrency <= 0 {
		return 1
	}
	return opts.Concurrency
}

// collectRows drops skipped slots while keeping candidate order
func collectRows[T any](results []*T) ([]T, int) {
	rows := make([]T, 0, len(results))
	skipped := 0
	for _, r := range results {
		if r == nil {
			skipped++
			continue
		}
		rows = append(rows, *r)
	}
	return rows, skipped
}

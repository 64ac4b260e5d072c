package main

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jasemartin/mlb-top10-probability/internal/datasource"
	"github.com/jasemartin/mlb-top10-probability/internal/features"
)

func newCandidatesCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "List the hitters and probable starters for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := boardDate(date)
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := a.Board.CollectCandidates(cmd.Context(), d)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d games, %d hitters, %d probable starters\n\n",
				d.Format(dateLayout), c.Games, len(c.Hitters), len(c.Pitchers))

			pt := newTable(out, "Pitcher", "ID", "Team", "Opponent")
			for _, p := range c.Pitchers {
				pt.Append([]string{p.PitcherName, id(p.PitcherID), id(p.TeamID), id(p.OpponentTeamID)})
			}
			pt.Render()

			ht := newTable(out, "Hitter", "ID", "Bats", "Team", "Opp Starter", "Throws")
			for _, h := range c.Hitters {
				ht.Append([]string{h.BatterName, id(h.BatterID), dash(h.BatSide), id(h.TeamID), id(h.OppProbablePitcherID), dash(h.OppPitcherHand)})
			}
			ht.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Board date (YYYY-MM-DD), defaults to today")
	return cmd
}

func newBvPCmd() *cobra.Command {
	var batterID, pitcherID int64

	cmd := &cobra.Command{
		Use:   "bvp",
		Short: "Show a batter's cached history against a pitcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			if batterID <= 0 || pitcherID <= 0 {
				return fmt.Errorf("--batter and --pitcher are required")
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Matchups.ForPair(cmd.Context(), batterID, pitcherID)
			if err != nil {
				return err
			}

			t := newTable(cmd.OutOrStdout(), "Batter", "Pitcher", "PA", "AB", "AVG", "wOBA", "HR")
			t.Append([]string{
				id(batterID), id(pitcherID),
				strconv.Itoa(stats.PA), strconv.Itoa(stats.AB),
				rate(stats.AVG), rate(stats.WOBA),
				strconv.Itoa(stats.HR),
			})
			t.Render()
			return nil
		},
	}

	cmd.Flags().Int64Var(&batterID, "batter", 0, "Batter MLBAM id")
	cmd.Flags().Int64Var(&pitcherID, "pitcher", 0, "Pitcher MLBAM id")
	return cmd
}

func newFeaturesCmd() *cobra.Command {
	var (
		batterID  int64
		pitcherID int64
		lookback  int
	)

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Show rolling Statcast features for a batter or pitcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (batterID > 0) == (pitcherID > 0) {
				return fmt.Errorf("exactly one of --batter or --pitcher is required")
			}
			if lookback <= 0 {
				return fmt.Errorf("lookback must be positive")
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if batterID > 0 {
				events, err := datasource.BatterWindow(cmd.Context(), a.Events, batterID, lookback)
				if err != nil {
					return err
				}
				f := features.BatterRollingFeatures(events)
				t := newTable(out, "Batter", "Pitches", "xBA", "xwOBA", "Barrel%")
				t.Append([]string{id(batterID), strconv.Itoa(len(events)), rate(f.XBA), rate(f.XWOBA), rate(f.BarrelRate)})
				t.Render()
				return nil
			}

			events, err := datasource.PitcherWindow(cmd.Context(), a.Events, pitcherID, lookback)
			if err != nil {
				return err
			}
			f := features.PitcherRollingFeatures(events)
			appLog.WithFields(logrus.Fields{"pitcher_id": pitcherID, "rows": len(events)}).Debug("Pitcher window loaded")
			t := newTable(out, "Pitcher", "Pitches", "K/PA", "PA/G", "Throws")
			t.Append([]string{id(pitcherID), strconv.Itoa(len(events)), rate(f.KPerPA), strconv.FormatFloat(f.PAPerGame, 'f', 1, 64), dash(f.Throws)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().Int64Var(&batterID, "batter", 0, "Batter MLBAM id")
	cmd.Flags().Int64Var(&pitcherID, "pitcher", 0, "Pitcher MLBAM id")
	cmd.Flags().IntVar(&lookback, "lookback", 30, "Lookback window in days")
	return cmd
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func id(v int64) string {
	if v == 0 {
		return "-"
	}
	return strconv.FormatInt(v, 10)
}

func rate(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

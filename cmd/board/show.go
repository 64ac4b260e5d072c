package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jasemartin/mlb-top10-probability/internal/models"
	"github.com/jasemartin/mlb-top10-probability/internal/report"
	"github.com/jasemartin/mlb-top10-probability/internal/repository"
)

var errNoRunStore = errors.New("stored runs require the database (database.enabled)")

func newShowCmd() *cobra.Command {
	var (
		runID  string
		date   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored board run by id or the latest run for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !report.ValidFormat(format) {
				return fmt.Errorf("unknown output format %q", format)
			}
			if (runID == "") == (date == "") {
				return fmt.Errorf("exactly one of --id or --date is required")
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := loadRun(cmd.Context(), a.Repos.Board, runID, date)
			if err != nil {
				return err
			}
			return report.Write(cmd.OutOrStdout(), run, format)
		},
	}

	cmd.Flags().StringVar(&runID, "id", "", "Run id")
	cmd.Flags().StringVar(&date, "date", "", "Board date (YYYY-MM-DD); shows the latest run for it")
	cmd.Flags().StringVarP(&format, "format", "o", report.FormatTable, "Output format: table, json or csv")
	return cmd
}

// loadRun fetches a run by id when one is given, otherwise the latest run for date
func loadRun(ctx context.Context, repo repository.BoardRepository, runID, date string) (*models.BoardRun, error) {
	if repo == nil {
		return nil, errNoRunStore
	}

	if runID != "" {
		id, err := uuid.Parse(runID)
		if err != nil {
			return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
		}
		run, err := repo.GetRun(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("no board run with id %s: %w", id, err)
		}
		return run, err
	}

	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", date, err)
	}
	run, err := repo.GetLatestRunForDate(ctx, d)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("no board run stored for %s: %w", date, err)
	}
	return run, err
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jasemartin/mlb-top10-probability/internal/report"
)

func newRunCmd() *cobra.Command {
	var (
		date       string
		lookback   int
		top        int
		format     string
		persist    bool
		park       float64
		parkK      float64
		oppKVsHand float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute and print the daily top boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !report.ValidFormat(format) {
				return fmt.Errorf("unknown output format %q", format)
			}
			d, err := boardDate(date)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("persist") {
				cfg.Board.Persist = persist
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			opts := a.BoardOptions()
			if flags.Changed("lookback") {
				opts.LookbackDays = lookback
			}
			if flags.Changed("top") {
				opts.TopN = top
			}
			if flags.Changed("park") {
				opts.ParkMulti = park
			}
			if flags.Changed("park-k") {
				opts.ParkKMulti = parkK
			}
			if flags.Changed("opp-k-vs-hand") {
				opts.OppKVsHand = oppKVsHand
			}
			if opts.LookbackDays <= 0 || opts.TopN <= 0 {
				return fmt.Errorf("lookback and top must be positive")
			}

			run, err := a.Board.Run(cmd.Context(), d, opts)
			if run == nil {
				return err
			}
			if err != nil {
				// the board was computed; only persistence failed
				appLog.WithError(err).Warn("Board computed but not persisted")
			}
			return report.Write(cmd.OutOrStdout(), run, format)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Board date (YYYY-MM-DD), defaults to today")
	cmd.Flags().IntVar(&lookback, "lookback", 30, "Statcast lookback window in days")
	cmd.Flags().IntVar(&top, "top", 10, "Rows kept per market")
	cmd.Flags().StringVarP(&format, "format", "o", report.FormatTable, "Output format: table, json or csv")
	cmd.Flags().BoolVar(&persist, "persist", false, "Store the run in PostgreSQL")
	cmd.Flags().Float64Var(&park, "park", 1.0, "Park factor applied to hitter markets")
	cmd.Flags().Float64Var(&parkK, "park-k", 1.0, "Park factor applied to strikeouts")
	cmd.Flags().Float64Var(&oppKVsHand, "opp-k-vs-hand", 0.22, "Opponent strikeout rate against the pitcher's hand")

	return cmd
}

// Package main provides the command line interface for computing daily MLB prop boards.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jasemartin/mlb-top10-probability/internal/app"
	"github.com/jasemartin/mlb-top10-probability/internal/config"
	"github.com/jasemartin/mlb-top10-probability/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const dateLayout = "2006-01-02"

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newCandidatesCmd())
	rootCmd.AddCommand(newBvPCmd())
	rootCmd.AddCommand(newFeaturesCmd())
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "board",
	Short: "Compute daily MLB prop probability boards",
	Long: `Builds ranked probability boards for hit, home run, total bases and
pitcher strikeout markets from recent Statcast windows and batter-vs-pitcher history.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "board %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	enabled, region, secretName, err := config.SecretsFromEnv()
	if err != nil {
		return err
	}
	if enabled {
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Board output goes to stdout, so logs go to stderr
	appLog = logger.New(os.Stderr, cfg.App.LogLevel, cfg.App.Environment)
	return nil
}

func buildApp(ctx context.Context) (*app.App, error) {
	a, err := app.Build(ctx, cfg, appLog)
	if err != nil {
		return nil, fmt.Errorf("failed to setup dependencies: %w", err)
	}
	return a, nil
}

// boardDate parses a YYYY-MM-DD flag, defaulting to today in the scheduler timezone
func boardDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now().In(cfg.Scheduler.Location()), nil
	}
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", value, err)
	}
	return date, nil
}

// Package main provides the long-running service that publishes the daily board on a schedule.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jasemartin/mlb-top10-probability/internal/app"
	"github.com/jasemartin/mlb-top10-probability/internal/config"
	"github.com/jasemartin/mlb-top10-probability/internal/health"
	"github.com/jasemartin/mlb-top10-probability/internal/logger"
	"github.com/jasemartin/mlb-top10-probability/internal/metrics"
	"github.com/jasemartin/mlb-top10-probability/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultConfigPath, "Path to config file")
		runNow     = flag.Bool("run-now", false, "Compute today's board immediately on startup")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	enabled, region, secretName, err := config.SecretsFromEnv()
	if err != nil {
		log.Fatalf("Invalid secrets configuration: %v", err)
	}
	if enabled {
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"cron":        cfg.Scheduler.Cron,
		"timezone":    cfg.Scheduler.Timezone,
	}).Info("Board scheduler starting")

	metrics.InitRegistry()

	a, err := app.Build(ctx, cfg, appLog)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build board pipeline")
	}
	defer a.Close()

	jobTimeout := time.Duration(cfg.Scheduler.TimeoutMinutes) * time.Minute
	sched := scheduler.NewScheduler(a.Board, cfg.Scheduler.Location(), jobTimeout, appLog)
	opts := a.BoardOptions()
	if err := sched.ScheduleDailyBoard(cfg.Scheduler.Cron, opts); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule daily board")
	}

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Health.Port),
		Logger:      appLog,
		Scheduler:   sched,
		Upstreams: map[string]health.CircuitBreaker{
			"statsapi": a.StatsAPIHTTP,
			"statcast": a.StatcastHTTP,
		},
	}
	if a.DB != nil {
		healthCfg.DB = a.DB
	}
	if cfg.Metrics.Enabled {
		healthCfg.Metrics = metrics.Handler()
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	appLog.WithField("next_run", sched.GetNextRun().Format(time.RFC3339)).Info("Board scheduler running")

	if *runNow {
		go func() {
			if _, err := sched.RunNow(ctx, opts); err != nil {
				appLog.WithError(err).Warn("Startup board run failed")
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()
	sched.Stop()
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Warn("Health server shutdown error")
	}

	appLog.Info("Board scheduler shut down successfully")
}

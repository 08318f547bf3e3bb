package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"oddsline/internal/collector"
	"oddsline/internal/matcher"
	"oddsline/internal/notify"
	pkgconfig "oddsline/internal/pkg/config"
	"oddsline/internal/pkg/logging"
	"oddsline/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

type config struct {
	configPath  string
	daysBack    int
	daysForward int
	window      int
}

func main() {
	if err := run(); err != nil {
		slog.Error("Collector failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Secrets may come from a local .env; missing file is fine.
	_ = godotenv.Load()

	cfg := parseFlags()

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetupLogger(&appConfig.Logging, "collector")
	slog.Info("Config loaded", "path", cfg.configPath)

	if cfg.daysBack >= 0 {
		appConfig.FixtureProvider.DaysBack = cfg.daysBack
	}
	if cfg.daysForward >= 0 {
		appConfig.FixtureProvider.DaysForward = cfg.daysForward
	}
	if cfg.window >= 0 {
		appConfig.Matcher.WindowMinutes = cfg.window
	}

	db, err := storage.OpenPostgres(&appConfig.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	fixtureStore, err := storage.NewPostgresFixtureStorageWithDB(db)
	if err != nil {
		return err
	}
	snapshotStore, err := storage.NewPostgresSnapshotStorageWithDB(db)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	fixtureClient := collector.NewFixtureClient(&appConfig.FixtureProvider)
	fixtures, err := fixtureClient.FetchFixtures(ctx, appConfig.FixtureProvider.DaysBack, appConfig.FixtureProvider.DaysForward, time.Now())
	if err != nil {
		return fmt.Errorf("fixture provider failed: %w", err)
	}

	oddsClient := collector.NewOddsClient(&appConfig.OddsProvider)
	events, err := oddsClient.FetchEvents(ctx, &appConfig.OddsProvider)
	if err != nil {
		return fmt.Errorf("odds provider failed: %w", err)
	}

	m := matcher.New(fixtureStore, matcher.Config{
		WindowMinutes: appConfig.Matcher.WindowMinutes,
		MinNameScore:  appConfig.Matcher.MinNameScore,
	})
	var notifier collector.Notifier
	if tn := notify.NewTelegramNotifier(appConfig.Telegram.BotToken, appConfig.Telegram.ChatID); tn != nil {
		notifier = tn
	}

	runner := collector.NewRunner(fixtureStore, snapshotStore, m, notifier, appConfig.Snapshots.MaxRows)
	stats, err := runner.Run(ctx, fixtures, events)
	if err != nil {
		return err
	}

	fmt.Println(stats.Summary())
	return nil
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "path to config file")
	flag.IntVar(&cfg.daysBack, "days-back", -1, "override fixture range start offset in days")
	flag.IntVar(&cfg.daysForward, "days-forward", -1, "override fixture range end offset in days")
	flag.IntVar(&cfg.window, "window", -1, "override matcher window in minutes")
	flag.Parse()

	return cfg
}

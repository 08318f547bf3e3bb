package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"oddsline/internal/export"
	pkgconfig "oddsline/internal/pkg/config"
	"oddsline/internal/pkg/logging"
	"oddsline/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	configPath := flag.String("config", defaultConfig, "path to config file")
	outPath := flag.String("out", "site/public/odds.json", "output file path")
	limit := flag.Int("limit", 5000, "maximum exported rows")
	flag.Parse()

	appConfig, err := pkgconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetupLogger(&appConfig.Logging, "export")

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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	doc, err := export.BuildDocument(ctx, snapshotStore, fixtureStore, *limit, time.Now())
	if err != nil {
		return err
	}
	if err := export.WriteFile(doc, *outPath); err != nil {
		return err
	}

	slog.Info("Export finished", "rows", doc.Count, "out", *outPath)
	return nil
}

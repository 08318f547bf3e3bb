package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "oddsline/internal/pkg/config"
	"oddsline/internal/pkg/implied"
	"oddsline/internal/pkg/logging"
	"oddsline/internal/pkg/storage"
)

const defaultConfigPath = "configs/production.yaml"

func main() {
	if err := run(); err != nil {
		slog.Error("Implied model failed", "error", err)
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
	line := flag.Float64("line", 2.5, "totals line to estimate")
	flag.Parse()

	appConfig, err := pkgconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.SetupLogger(&appConfig.Logging, "implied")

	db, err := storage.OpenPostgres(&appConfig.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()

	fixtureStore, err := storage.NewPostgresFixtureStorageWithDB(db)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	finished, err := fixtureStore.FinishedFixtures(ctx)
	if err != nil {
		return err
	}

	p, ok := implied.LeagueOverProbability(finished, *line)
	if !ok {
		fmt.Println("No finished matches yet")
		return nil
	}

	fmt.Printf("League implied P(Over %.1f): %.3f\n", *line, p)
	return nil
}

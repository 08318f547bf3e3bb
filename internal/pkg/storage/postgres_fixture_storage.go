package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"oddsline/internal/pkg/config"
	"oddsline/internal/pkg/models"
)

// Ensure PostgresFixtureStorage implements FixtureStore
var _ FixtureStore = (*PostgresFixtureStorage)(nil)

// PostgresFixtureStorage stores canonical fixtures in PostgreSQL.
type PostgresFixtureStorage struct {
	db *sql.DB
}

// NewPostgresFixtureStorage creates a new PostgreSQL storage for fixtures.
func NewPostgresFixtureStorage(cfg *config.PostgresConfig) (*PostgresFixtureStorage, error) {
	db, err := openPostgres(cfg)
	if err != nil {
		return nil, err
	}

	s := &PostgresFixtureStorage{db: db}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize fixtures schema: %w", err)
	}

	slog.Info("PostgreSQL fixture storage initialized successfully")
	return s, nil
}

// NewPostgresFixtureStorageWithDB wraps an existing connection (shared with
// the snapshot storage so one run holds one pool).
func NewPostgresFixtureStorageWithDB(db *sql.DB) (*PostgresFixtureStorage, error) {
	s := &PostgresFixtureStorage{db: db}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize fixtures schema: %w", err)
	}
	return s, nil
}

func (s *PostgresFixtureStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS fixtures (
		fixture_id VARCHAR(64) PRIMARY KEY,
		commence_time_utc TIMESTAMPTZ NOT NULL,
		matchweek INT,
		status VARCHAR(50) NOT NULL,
		home_team VARCHAR(200) NOT NULL,
		away_team VARCHAR(200) NOT NULL,
		home_goals INT,
		away_goals INT,
		last_updated_utc TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_fixtures_commence_time ON fixtures(commence_time_utc);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// UpsertFixtures inserts or updates fixtures by fixture_id, last writer wins.
func (s *PostgresFixtureStorage) UpsertFixtures(ctx context.Context, fixtures []models.Fixture) (int, error) {
	if len(fixtures) == 0 {
		return 0, nil
	}

	query := `
	INSERT INTO fixtures (
		fixture_id, commence_time_utc, matchweek, status,
		home_team, away_team, home_goals, away_goals, last_updated_utc
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (fixture_id) DO UPDATE SET
		commence_time_utc = EXCLUDED.commence_time_utc,
		matchweek = EXCLUDED.matchweek,
		status = EXCLUDED.status,
		home_team = EXCLUDED.home_team,
		away_team = EXCLUDED.away_team,
		home_goals = EXCLUDED.home_goals,
		away_goals = EXCLUDED.away_goals,
		last_updated_utc = EXCLUDED.last_updated_utc
	`

	count := 0
	for _, f := range fixtures {
		_, err := s.db.ExecContext(ctx, query,
			f.FixtureID, f.CommenceTime.UTC(), nullableInt(f.Matchweek), f.Status,
			f.HomeTeam, f.AwayTeam, nullableInt(f.HomeGoals), nullableInt(f.AwayGoals), f.LastUpdated.UTC(),
		)
		if err != nil {
			return count, fmt.Errorf("failed to upsert fixture %s: %w", f.FixtureID, err)
		}
		count++
	}
	return count, nil
}

// FixturesInWindow returns fixtures with commence_time_utc within ±window
// of center, ordered by fixture_id ascending.
func (s *PostgresFixtureStorage) FixturesInWindow(ctx context.Context, center time.Time, window time.Duration) ([]models.Fixture, error) {
	query := `
	SELECT fixture_id, commence_time_utc, matchweek, status,
	       home_team, away_team, home_goals, away_goals, last_updated_utc
	FROM fixtures
	WHERE commence_time_utc >= $1 AND commence_time_utc <= $2
	ORDER BY fixture_id ASC
	`
	from := center.Add(-window).UTC()
	to := center.Add(window).UTC()

	rows, err := s.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures in window: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

// GetFixture returns the fixture for id, or nil if absent.
func (s *PostgresFixtureStorage) GetFixture(ctx context.Context, fixtureID string) (*models.Fixture, error) {
	query := `
	SELECT fixture_id, commence_time_utc, matchweek, status,
	       home_team, away_team, home_goals, away_goals, last_updated_utc
	FROM fixtures
	WHERE fixture_id = $1
	`
	row := s.db.QueryRowContext(ctx, query, fixtureID)

	f, err := scanFixture(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture %s: %w", fixtureID, err)
	}
	return f, nil
}

// FinishedFixtures returns fixtures with both final goals recorded.
func (s *PostgresFixtureStorage) FinishedFixtures(ctx context.Context) ([]models.Fixture, error) {
	query := `
	SELECT fixture_id, commence_time_utc, matchweek, status,
	       home_team, away_team, home_goals, away_goals, last_updated_utc
	FROM fixtures
	WHERE home_goals IS NOT NULL AND away_goals IS NOT NULL
	ORDER BY fixture_id ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished fixtures: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

// Close closes the database connection.
func (s *PostgresFixtureStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFixture(r rowScanner) (*models.Fixture, error) {
	var f models.Fixture
	var matchweek, homeGoals, awayGoals sql.NullInt64
	err := r.Scan(
		&f.FixtureID, &f.CommenceTime, &matchweek, &f.Status,
		&f.HomeTeam, &f.AwayTeam, &homeGoals, &awayGoals, &f.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	f.CommenceTime = f.CommenceTime.UTC()
	f.LastUpdated = f.LastUpdated.UTC()
	f.Matchweek = intPointer(matchweek)
	f.HomeGoals = intPointer(homeGoals)
	f.AwayGoals = intPointer(awayGoals)
	return &f, nil
}

func scanFixtures(rows *sql.Rows) ([]models.Fixture, error) {
	var fixtures []models.Fixture
	for rows.Next() {
		f, err := scanFixture(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture row: %w", err)
		}
		fixtures = append(fixtures, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fixture rows iteration failed: %w", err)
	}
	return fixtures, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func intPointer(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

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

// Ensure PostgresSnapshotStorage implements SnapshotStore
var _ SnapshotStore = (*PostgresSnapshotStorage)(nil)

// PostgresSnapshotStorage is the append-only PostgreSQL store of odds
// snapshots. The line_key column carries the nil-safe line grouping key so
// a missing line never collides with a numeric 0 in the unique constraint.
type PostgresSnapshotStorage struct {
	db *sql.DB
}

// NewPostgresSnapshotStorage creates a new PostgreSQL storage for odds snapshots.
func NewPostgresSnapshotStorage(cfg *config.PostgresConfig) (*PostgresSnapshotStorage, error) {
	db, err := openPostgres(cfg)
	if err != nil {
		return nil, err
	}

	s := &PostgresSnapshotStorage{db: db}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshots schema: %w", err)
	}

	slog.Info("PostgreSQL snapshot storage initialized successfully")
	return s, nil
}

// NewPostgresSnapshotStorageWithDB wraps an existing connection.
func NewPostgresSnapshotStorageWithDB(db *sql.DB) (*PostgresSnapshotStorage, error) {
	s := &PostgresSnapshotStorage{db: db}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize snapshots schema: %w", err)
	}
	return s, nil
}

func (s *PostgresSnapshotStorage) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS odds_snapshots (
		snapshot_id BIGSERIAL PRIMARY KEY,
		captured_at_utc TIMESTAMPTZ NOT NULL,
		fixture_id VARCHAR(64) NOT NULL REFERENCES fixtures(fixture_id),
		bookmaker VARCHAR(200) NOT NULL,
		market VARCHAR(50) NOT NULL,
		line DOUBLE PRECISION,
		line_key VARCHAR(32) NOT NULL,
		side_a_price DECIMAL(10, 4) NOT NULL,
		side_b_price DECIMAL(10, 4) NOT NULL,
		UNIQUE (captured_at_utc, fixture_id, bookmaker, market, line_key)
	);

	CREATE INDEX IF NOT EXISTS idx_odds_snapshots_latest
	ON odds_snapshots(fixture_id, bookmaker, market, line_key, captured_at_utc DESC);

	CREATE INDEX IF NOT EXISTS idx_odds_snapshots_captured_at
	ON odds_snapshots(captured_at_utc);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// AppendSnapshots writes rows. A duplicate (captured_at, fixture_id,
// bookmaker, market, line) key overwrites the prices of the existing row,
// so re-ingesting the same capture never duplicates.
func (s *PostgresSnapshotStorage) AppendSnapshots(ctx context.Context, rows []models.Snapshot) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `
	INSERT INTO odds_snapshots (
		captured_at_utc, fixture_id, bookmaker, market, line, line_key,
		side_a_price, side_b_price
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (captured_at_utc, fixture_id, bookmaker, market, line_key) DO UPDATE SET
		side_a_price = EXCLUDED.side_a_price,
		side_b_price = EXCLUDED.side_b_price
	`

	count := 0
	for _, r := range rows {
		_, err := s.db.ExecContext(ctx, query,
			r.CapturedAt.UTC(), r.FixtureID, r.Bookmaker, r.Market,
			nullableFloat(r.Line), LineKey(r.Line), r.SideAPrice, r.SideBPrice,
		)
		if err != nil {
			return count, fmt.Errorf("failed to append snapshot for fixture %s: %w", r.FixtureID, err)
		}
		count++
	}
	return count, nil
}

// LatestSnapshots returns one row per (fixture_id, bookmaker, market, line)
// key: maximum captured_at, ties broken by highest snapshot_id.
func (s *PostgresSnapshotStorage) LatestSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	query := `
	SELECT DISTINCT ON (fixture_id, bookmaker, market, line_key)
		captured_at_utc, fixture_id, bookmaker, market, line, side_a_price, side_b_price
	FROM odds_snapshots
	ORDER BY fixture_id, bookmaker, market, line_key, captured_at_utc DESC, snapshot_id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		var line sql.NullFloat64
		err := rows.Scan(
			&snap.CapturedAt, &snap.FixtureID, &snap.Bookmaker, &snap.Market,
			&line, &snap.SideAPrice, &snap.SideBPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snap.CapturedAt = snap.CapturedAt.UTC()
		if line.Valid {
			v := line.Float64
			snap.Line = &v
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot rows iteration failed: %w", err)
	}
	return snapshots, nil
}

// TrimSnapshots keeps the newest maxRows rows, evicting oldest captured_at
// first. Fixtures are never deleted here, so no reference can dangle.
func (s *PostgresSnapshotStorage) TrimSnapshots(ctx context.Context, maxRows int) (int, error) {
	if maxRows <= 0 {
		return 0, nil
	}

	query := `
	DELETE FROM odds_snapshots WHERE snapshot_id IN (
		SELECT snapshot_id FROM odds_snapshots
		ORDER BY captured_at_utc DESC, snapshot_id DESC
		OFFSET $1
	)
	`
	res, err := s.db.ExecContext(ctx, query, maxRows)
	if err != nil {
		return 0, fmt.Errorf("failed to trim odds_snapshots: %w", err)
	}
	removed, _ := res.RowsAffected()
	if removed > 0 {
		slog.Info("Trimmed odds_snapshots", "rows_deleted", removed, "max_rows", maxRows)
	}
	return int(removed), nil
}

// Close closes the database connection.
func (s *PostgresSnapshotStorage) Close() error {
	return s.db.Close()
}

func nullableFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

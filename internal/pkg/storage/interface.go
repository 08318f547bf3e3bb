package storage

import (
	"context"
	"time"

	"oddsline/internal/pkg/models"
)

// FixtureStore persists canonical fixtures keyed by provider fixture id.
type FixtureStore interface {
	// UpsertFixtures inserts or updates fixtures by fixture_id.
	// Last writer wins for mutable fields (status, score, commence time).
	// Returns the number of rows processed.
	UpsertFixtures(ctx context.Context, fixtures []models.Fixture) (int, error)

	// FixturesInWindow returns fixtures whose commence time lies within
	// ±window of center, ordered ascending by fixture_id so matching is
	// deterministic. A zero window means exact equality.
	FixturesInWindow(ctx context.Context, center time.Time, window time.Duration) ([]models.Fixture, error)

	// GetFixture returns the fixture for id, or nil if absent.
	GetFixture(ctx context.Context, fixtureID string) (*models.Fixture, error)

	// FinishedFixtures returns fixtures with a recorded final score.
	FinishedFixtures(ctx context.Context) ([]models.Fixture, error)

	// Close closes the underlying connection.
	Close() error
}

// SnapshotStore is the append-only store of odds observations.
type SnapshotStore interface {
	// AppendSnapshots writes rows and returns the number written.
	// A second write with an identical (captured_at, fixture_id, bookmaker,
	// market, line) key overwrites the prices of the first: the store keeps
	// exactly one row per key per capture instant.
	AppendSnapshots(ctx context.Context, rows []models.Snapshot) (int, error)

	// LatestSnapshots returns one row per distinct (fixture_id, bookmaker,
	// market, line) key: the one with the maximum captured_at, ties broken
	// by the highest insertion sequence.
	LatestSnapshots(ctx context.Context) ([]models.Snapshot, error)

	// TrimSnapshots keeps at most maxRows rows, evicting the oldest
	// captured_at first. Returns the number of rows removed.
	TrimSnapshots(ctx context.Context, maxRows int) (int, error)

	// Close closes the underlying connection.
	Close() error
}

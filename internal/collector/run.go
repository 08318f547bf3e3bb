// Package collector orchestrates one ingestion run: fixture upsert, odds
// event matching, market extraction and snapshot persistence.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"oddsline/internal/markets"
	"oddsline/internal/matcher"
	"oddsline/internal/pkg/models"
	"oddsline/internal/pkg/storage"
)

// Notifier receives a human-readable run summary. Optional.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// RunStats summarizes one ingestion run.
type RunStats struct {
	RunID            string
	CapturedAt       time.Time
	FixturesUpserted int
	EventsSeen       int
	EventsMatched    int
	EventsSkipped    int
	SnapshotsWritten int
	SnapshotsTrimmed int
}

// Summary renders the stats for logs and notifications.
func (s *RunStats) Summary() string {
	return fmt.Sprintf(
		"run %s: fixtures upserted %d, odds events %d (matched %d, skipped %d), snapshots written %d, trimmed %d",
		s.RunID, s.FixturesUpserted, s.EventsSeen, s.EventsMatched, s.EventsSkipped,
		s.SnapshotsWritten, s.SnapshotsTrimmed,
	)
}

// Runner wires the matcher and the stores for batch ingestion. One run
// processes one fixture payload and one odds payload to completion; the
// idempotent append contract of the snapshot store makes re-runs safe.
type Runner struct {
	fixtures        storage.FixtureStore
	snapshots       storage.SnapshotStore
	matcher         *matcher.Matcher
	notifier        Notifier
	maxSnapshotRows int
}

// NewRunner creates a Runner. notifier may be nil; maxSnapshotRows of 0
// disables trimming.
func NewRunner(fixtures storage.FixtureStore, snapshots storage.SnapshotStore, m *matcher.Matcher, notifier Notifier, maxSnapshotRows int) *Runner {
	return &Runner{
		fixtures:        fixtures,
		snapshots:       snapshots,
		matcher:         m,
		notifier:        notifier,
		maxSnapshotRows: maxSnapshotRows,
	}
}

// Run ingests one fixture payload and one odds payload. Unmatched or
// malformed odds events are skipped, never fatal: the worst outcome of a
// run is a zero snapshot count.
func (r *Runner) Run(ctx context.Context, fixtures []models.Fixture, events []models.OddsEvent) (*RunStats, error) {
	stats := &RunStats{
		RunID:      uuid.NewString(),
		CapturedAt: time.Now().UTC().Truncate(time.Second),
	}
	slog.Info("Starting ingestion run", "run_id", stats.RunID, "fixtures", len(fixtures), "odds_events", len(events))

	upserted, err := r.fixtures.UpsertFixtures(ctx, fixtures)
	if err != nil {
		return stats, fmt.Errorf("failed to upsert fixtures: %w", err)
	}
	stats.FixturesUpserted = upserted

	var rows []models.Snapshot
	for _, ev := range events {
		stats.EventsSeen++
		fixtureID, ok := r.matcher.Match(ctx, ev.CommenceTime, ev.HomeTeam, ev.AwayTeam)
		if !ok {
			stats.EventsSkipped++
			slog.Debug("No fixture match for odds event",
				"event_id", ev.ID, "commence_time", ev.CommenceTime,
				"home", ev.HomeTeam, "away", ev.AwayTeam)
			continue
		}
		stats.EventsMatched++
		rows = append(rows, markets.ExtractEvent(ev, fixtureID, stats.CapturedAt)...)
	}

	written, err := r.snapshots.AppendSnapshots(ctx, rows)
	if err != nil {
		return stats, fmt.Errorf("failed to append snapshots: %w", err)
	}
	stats.SnapshotsWritten = written

	if r.maxSnapshotRows > 0 {
		trimmed, err := r.snapshots.TrimSnapshots(ctx, r.maxSnapshotRows)
		if err != nil {
			return stats, fmt.Errorf("failed to trim snapshots: %w", err)
		}
		stats.SnapshotsTrimmed = trimmed
	}

	if stats.SnapshotsWritten == 0 {
		// Observability signal for an empty run; not an error.
		slog.Info("Run enriched nothing new", "run_id", stats.RunID, "odds_events", stats.EventsSeen)
	}
	slog.Info("Ingestion run finished",
		"run_id", stats.RunID,
		"fixtures_upserted", stats.FixturesUpserted,
		"events_matched", stats.EventsMatched,
		"events_skipped", stats.EventsSkipped,
		"snapshots_written", stats.SnapshotsWritten,
		"snapshots_trimmed", stats.SnapshotsTrimmed)

	if r.notifier != nil {
		if err := r.notifier.Send(ctx, stats.Summary()); err != nil {
			slog.Warn("Failed to send run summary", "error", err)
		}
	}
	return stats, nil
}

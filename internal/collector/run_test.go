package collector

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oddsline/internal/matcher"
	"oddsline/internal/pkg/models"
	"oddsline/internal/pkg/storage/memory"
)

func f(v float64) *float64 { return &v }

func newTestRunner(fixtures *memory.FixtureStore, snapshots *memory.SnapshotStore) *Runner {
	m := matcher.New(fixtures, matcher.Config{WindowMinutes: 10})
	return NewRunner(fixtures, snapshots, m, nil, 0)
}

func TestRun_EndToEnd(t *testing.T) {
	fixtures := memory.NewFixtureStore()
	snapshots := memory.NewSnapshotStore()
	runner := newTestRunner(fixtures, snapshots)

	fixturePayload := []models.Fixture{{
		FixtureID:    "100",
		CommenceTime: time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC),
		Status:       "SCHEDULED",
		HomeTeam:     "Arsenal FC",
		AwayTeam:     "Chelsea FC",
		LastUpdated:  time.Date(2026, 1, 19, 12, 0, 0, 0, time.UTC),
	}}
	oddsPayload := []models.OddsEvent{{
		ID:           "abc",
		CommenceTime: "2026-01-19T15:05:00Z",
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers: []models.Bookmaker{{
			Key:   "bet1",
			Title: "Bet1",
			Markets: []models.Market{{
				Key: models.MarketTotals,
				Outcomes: []models.Outcome{
					{Name: "Over", Price: f(2.05), Point: f(2.5)},
					{Name: "Under", Price: f(1.80), Point: f(2.5)},
				},
			}},
		}},
	}}

	stats, err := runner.Run(context.Background(), fixturePayload, oddsPayload)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FixturesUpserted)
	assert.Equal(t, 1, stats.EventsMatched)
	assert.Equal(t, 0, stats.EventsSkipped)
	assert.Equal(t, 1, stats.SnapshotsWritten)

	rows, err := snapshots.LatestSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "100", row.FixtureID)
	assert.Equal(t, "Bet1", row.Bookmaker)
	assert.Equal(t, models.MarketTotals, row.Market)
	require.NotNil(t, row.Line)
	assert.Equal(t, 2.5, *row.Line)
	assert.Equal(t, 2.05, row.SideAPrice)
	assert.Equal(t, 1.80, row.SideBPrice)
}

func TestRun_UnmatchedEventsSkipped(t *testing.T) {
	fixtures := memory.NewFixtureStore()
	snapshots := memory.NewSnapshotStore()
	runner := newTestRunner(fixtures, snapshots)

	oddsPayload := []models.OddsEvent{
		{ID: "a", CommenceTime: "2026-01-19T15:00:00Z", HomeTeam: "Arsenal", AwayTeam: "Chelsea"},
		{ID: "b", CommenceTime: "garbage", HomeTeam: "Leeds", AwayTeam: "Fulham"},
	}

	stats, err := runner.Run(context.Background(), nil, oddsPayload)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.EventsSeen)
	assert.Equal(t, 0, stats.EventsMatched)
	assert.Equal(t, 2, stats.EventsSkipped)
	assert.Equal(t, 0, stats.SnapshotsWritten)
}

func TestRun_ReRunIsIdempotentPerCapture(t *testing.T) {
	fixtures := memory.NewFixtureStore()
	snapshots := memory.NewSnapshotStore()
	runner := newTestRunner(fixtures, snapshots)

	kickoff := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	fixturePayload := []models.Fixture{{
		FixtureID:    "100",
		CommenceTime: kickoff,
		Status:       "SCHEDULED",
		HomeTeam:     "Arsenal FC",
		AwayTeam:     "Chelsea FC",
		LastUpdated:  kickoff,
	}}
	oddsPayload := []models.OddsEvent{{
		ID:           "abc",
		CommenceTime: "2026-01-19T15:00:00Z",
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers: []models.Bookmaker{{
			Title: "Bet1",
			Markets: []models.Market{{
				Key: models.MarketTotals,
				Outcomes: []models.Outcome{
					{Name: "Over", Price: f(2.05), Point: f(2.5)},
					{Name: "Under", Price: f(1.80), Point: f(2.5)},
				},
			}},
		}},
	}}

	_, err := runner.Run(context.Background(), fixturePayload, oddsPayload)
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), fixturePayload, oddsPayload)
	require.NoError(t, err)

	rows, err := snapshots.LatestSnapshots(context.Background())
	require.NoError(t, err)
	// Two captures at different instants still collapse to one latest row
	// per (fixture, bookmaker, market, line) key.
	require.Len(t, rows, 1)
}

func TestRun_TrimBoundsStore(t *testing.T) {
	fixtures := memory.NewFixtureStore()
	snapshots := memory.NewSnapshotStore()
	m := matcher.New(fixtures, matcher.Config{WindowMinutes: 10})
	runner := NewRunner(fixtures, snapshots, m, nil, 1)

	kickoff := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	fixturePayload := []models.Fixture{{
		FixtureID:    "100",
		CommenceTime: kickoff,
		Status:       "SCHEDULED",
		HomeTeam:     "Arsenal FC",
		AwayTeam:     "Chelsea FC",
		LastUpdated:  kickoff,
	}}
	oddsPayload := []models.OddsEvent{{
		CommenceTime: "2026-01-19T15:00:00Z",
		HomeTeam:     "Arsenal",
		AwayTeam:     "Chelsea",
		Bookmakers: []models.Bookmaker{{
			Title: "Bet1",
			Markets: []models.Market{{
				Key: models.MarketAlternateTotals,
				Outcomes: []models.Outcome{
					{Name: "Over", Price: f(2.4), Point: f(1.5)},
					{Name: "Under", Price: f(1.55), Point: f(1.5)},
					{Name: "Over", Price: f(1.9), Point: f(2.5)},
					{Name: "Under", Price: f(1.85), Point: f(2.5)},
				},
			}},
		}},
	}}

	stats, err := runner.Run(context.Background(), fixturePayload, oddsPayload)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SnapshotsWritten)
	assert.Equal(t, 1, stats.SnapshotsTrimmed)

	rows, err := snapshots.LatestSnapshots(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

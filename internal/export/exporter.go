// Package export serializes the latest-per-key snapshot view, joined with
// fixture attributes, into a JSON document for downstream consumption.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"oddsline/internal/pkg/storage"
)

// Item is one exported row: a latest snapshot joined with its fixture.
type Item struct {
	CapturedAtUTC   string   `json:"captured_at_utc"`
	FixtureID       string   `json:"fixture_id"`
	CommenceTimeUTC string   `json:"commence_time_utc"`
	Matchweek       *int     `json:"matchweek"`
	Status          string   `json:"status"`
	HomeTeam        string   `json:"home_team"`
	AwayTeam        string   `json:"away_team"`
	HomeGoals       *int     `json:"home_goals"`
	AwayGoals       *int     `json:"away_goals"`
	Bookmaker       string   `json:"bookmaker"`
	Market          string   `json:"market"`
	Line            *float64 `json:"line"`
	SideAPrice      float64  `json:"side_a_price"`
	SideBPrice      float64  `json:"side_b_price"`
}

// Document is the export payload.
type Document struct {
	GeneratedAtUTC string `json:"generated_at_utc"`
	Count          int    `json:"count"`
	Items          []Item `json:"items"`
}

// BuildDocument reads the latest snapshot per key, joins fixture
// attributes, and orders rows deterministically: commence time, market,
// line (nil first), bookmaker. Snapshots whose fixture is missing are
// skipped; the fixture store never deletes, so that means a foreign
// snapshot slipped in, not an eviction.
func BuildDocument(ctx context.Context, snapshots storage.SnapshotStore, fixtures storage.FixtureStore, limit int, now time.Time) (*Document, error) {
	latest, err := snapshots.LatestSnapshots(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read latest snapshots: %w", err)
	}

	items := make([]Item, 0, len(latest))
	for _, snap := range latest {
		fixture, err := fixtures.GetFixture(ctx, snap.FixtureID)
		if err != nil {
			return nil, fmt.Errorf("failed to load fixture %s: %w", snap.FixtureID, err)
		}
		if fixture == nil {
			continue
		}
		items = append(items, Item{
			CapturedAtUTC:   snap.CapturedAt.UTC().Format(time.RFC3339),
			FixtureID:       snap.FixtureID,
			CommenceTimeUTC: fixture.CommenceTime.UTC().Format(time.RFC3339),
			Matchweek:       fixture.Matchweek,
			Status:          fixture.Status,
			HomeTeam:        fixture.HomeTeam,
			AwayTeam:        fixture.AwayTeam,
			HomeGoals:       fixture.HomeGoals,
			AwayGoals:       fixture.AwayGoals,
			Bookmaker:       snap.Bookmaker,
			Market:          snap.Market,
			Line:            snap.Line,
			SideAPrice:      snap.SideAPrice,
			SideBPrice:      snap.SideBPrice,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.CommenceTimeUTC != b.CommenceTimeUTC {
			return a.CommenceTimeUTC < b.CommenceTimeUTC
		}
		if a.Market != b.Market {
			return a.Market < b.Market
		}
		if less, decided := lineLess(a.Line, b.Line); decided {
			return less
		}
		if a.Bookmaker != b.Bookmaker {
			return a.Bookmaker < b.Bookmaker
		}
		return a.FixtureID < b.FixtureID
	})

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	return &Document{
		GeneratedAtUTC: now.UTC().Format(time.RFC3339),
		Count:          len(items),
		Items:          items,
	}, nil
}

// lineLess orders nil lines before any numeric line, however extreme.
// decided is false when the two lines compare equal.
func lineLess(a, b *float64) (less, decided bool) {
	switch {
	case a == nil && b == nil:
		return false, false
	case a == nil:
		return true, true
	case b == nil:
		return false, true
	case *a != *b:
		return *a < *b, true
	default:
		return false, false
	}
}

// WriteFile writes the document as indented JSON, creating parent
// directories as needed.
func WriteFile(doc *Document, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal export document: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

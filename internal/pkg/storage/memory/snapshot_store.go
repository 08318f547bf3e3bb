package memory

import (
	"context"
	"sort"
	"sync"

	"oddsline/internal/pkg/models"
	"oddsline/internal/pkg/storage"
)

var _ storage.SnapshotStore = (*SnapshotStore)(nil)

type snapshotRow struct {
	seq  int64
	snap models.Snapshot
}

// writeKey scopes idempotency: one logical row per key per capture instant.
type writeKey struct {
	capturedAtUnix int64
	fixtureID      string
	bookmaker      string
	market         string
	lineKey        string
}

// logicalKey scopes the latest-per-key read view.
type logicalKey struct {
	fixtureID string
	bookmaker string
	market    string
	lineKey   string
}

// SnapshotStore keeps snapshot rows in memory, append-only with
// overwrite-on-duplicate-key semantics matching the postgres store.
type SnapshotStore struct {
	mu      sync.RWMutex
	rows    map[writeKey]*snapshotRow
	nextSeq int64
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{rows: make(map[writeKey]*snapshotRow)}
}

func (s *SnapshotStore) AppendSnapshots(_ context.Context, rows []models.Snapshot) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range rows {
		key := writeKey{
			capturedAtUnix: snap.CapturedAt.UTC().UnixNano(),
			fixtureID:      snap.FixtureID,
			bookmaker:      snap.Bookmaker,
			market:         snap.Market,
			lineKey:        storage.LineKey(snap.Line),
		}
		if existing, ok := s.rows[key]; ok {
			// Duplicate key: overwrite prices, keep one logical row.
			existing.snap.SideAPrice = snap.SideAPrice
			existing.snap.SideBPrice = snap.SideBPrice
			continue
		}
		s.nextSeq++
		s.rows[key] = &snapshotRow{seq: s.nextSeq, snap: snap}
	}
	return len(rows), nil
}

func (s *SnapshotStore) LatestSnapshots(_ context.Context) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := make(map[logicalKey]*snapshotRow)
	for key, row := range s.rows {
		lk := logicalKey{key.fixtureID, key.bookmaker, key.market, key.lineKey}
		cur, ok := best[lk]
		if !ok {
			best[lk] = row
			continue
		}
		if row.snap.CapturedAt.After(cur.snap.CapturedAt) ||
			(row.snap.CapturedAt.Equal(cur.snap.CapturedAt) && row.seq > cur.seq) {
			best[lk] = row
		}
	}

	result := make([]models.Snapshot, 0, len(best))
	for _, row := range best {
		result = append(result, row.snap)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.FixtureID != b.FixtureID {
			return a.FixtureID < b.FixtureID
		}
		if a.Bookmaker != b.Bookmaker {
			return a.Bookmaker < b.Bookmaker
		}
		if a.Market != b.Market {
			return a.Market < b.Market
		}
		return storage.LineKey(a.Line) < storage.LineKey(b.Line)
	})
	return result, nil
}

func (s *SnapshotStore) TrimSnapshots(_ context.Context, maxRows int) (int, error) {
	if maxRows <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.rows) <= maxRows {
		return 0, nil
	}

	type keyedRow struct {
		key writeKey
		row *snapshotRow
	}
	all := make([]keyedRow, 0, len(s.rows))
	for k, r := range s.rows {
		all = append(all, keyedRow{k, r})
	}
	// Oldest captured_at first, then lowest sequence.
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].row, all[j].row
		if !a.snap.CapturedAt.Equal(b.snap.CapturedAt) {
			return a.snap.CapturedAt.Before(b.snap.CapturedAt)
		}
		return a.seq < b.seq
	})

	evict := len(all) - maxRows
	for i := 0; i < evict; i++ {
		delete(s.rows, all[i].key)
	}
	return evict, nil
}

func (s *SnapshotStore) Close() error {
	return nil
}

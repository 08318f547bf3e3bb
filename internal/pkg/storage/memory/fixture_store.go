// Package memory provides in-memory implementations of the storage
// interfaces, used by the matcher and pipeline tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"oddsline/internal/pkg/models"
	"oddsline/internal/pkg/storage"
)

var _ storage.FixtureStore = (*FixtureStore)(nil)

// FixtureStore keeps fixtures in a map keyed by fixture_id.
type FixtureStore struct {
	mu       sync.RWMutex
	fixtures map[string]models.Fixture
}

// NewFixtureStore creates an empty in-memory fixture store.
func NewFixtureStore() *FixtureStore {
	return &FixtureStore{fixtures: make(map[string]models.Fixture)}
}

func (s *FixtureStore) UpsertFixtures(_ context.Context, fixtures []models.Fixture) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fixtures {
		s.fixtures[f.FixtureID] = f
	}
	return len(fixtures), nil
}

func (s *FixtureStore) FixturesInWindow(_ context.Context, center time.Time, window time.Duration) ([]models.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from := center.Add(-window)
	to := center.Add(window)

	var result []models.Fixture
	for _, f := range s.fixtures {
		if f.CommenceTime.Before(from) || f.CommenceTime.After(to) {
			continue
		}
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FixtureID < result[j].FixtureID
	})
	return result, nil
}

func (s *FixtureStore) GetFixture(_ context.Context, fixtureID string) (*models.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fixtures[fixtureID]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

func (s *FixtureStore) FinishedFixtures(_ context.Context) ([]models.Fixture, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []models.Fixture
	for _, f := range s.fixtures {
		if f.Finished() {
			result = append(result, f)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].FixtureID < result[j].FixtureID
	})
	return result, nil
}

func (s *FixtureStore) Close() error {
	return nil
}

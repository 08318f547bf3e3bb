package matcher

import (
	"context"
	"testing"
	"time"

	"oddsline/internal/pkg/models"
	"oddsline/internal/pkg/storage/memory"
)

func fixture(id string, commence time.Time, home, away string) models.Fixture {
	return models.Fixture{
		FixtureID:    id,
		CommenceTime: commence,
		Status:       "SCHEDULED",
		HomeTeam:     home,
		AwayTeam:     away,
		LastUpdated:  commence,
	}
}

func storeWith(t *testing.T, fixtures ...models.Fixture) *memory.FixtureStore {
	t.Helper()
	store := memory.NewFixtureStore()
	if _, err := store.UpsertFixtures(context.Background(), fixtures); err != nil {
		t.Fatalf("UpsertFixtures failed: %v", err)
	}
	return store
}

func TestMatch_ExactNormalizedNames(t *testing.T) {
	kickoff := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t, fixture("100", kickoff, "Arsenal FC", "Chelsea FC"))
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea")
	if !ok || id != "100" {
		t.Fatalf("Match = (%q, %v), want (\"100\", true)", id, ok)
	}
}

func TestMatch_EmptyStore(t *testing.T) {
	m := New(memory.NewFixtureStore(), Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea")
	if ok || id != "" {
		t.Fatalf("Match on empty store = (%q, %v), want (\"\", false)", id, ok)
	}
}

func TestMatch_UnparsableTime(t *testing.T) {
	kickoff := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t, fixture("100", kickoff, "Arsenal FC", "Chelsea FC"))
	m := New(store, Config{WindowMinutes: 10})

	for _, stamp := range []string{"", "not-a-time", "2026-13-99T99:00:00Z"} {
		if id, ok := m.Match(context.Background(), stamp, "Arsenal", "Chelsea"); ok {
			t.Errorf("Match(%q) = (%q, true), want no match", stamp, id)
		}
	}
}

func TestMatch_WindowIsHardFilter(t *testing.T) {
	kickoff := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	// Perfect names, but 30 minutes away from the target instant.
	store := storeWith(t, fixture("100", kickoff.Add(30*time.Minute), "Arsenal FC", "Chelsea FC"))
	m := New(store, Config{WindowMinutes: 10})

	if id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea"); ok {
		t.Fatalf("Match selected fixture %q outside the window", id)
	}
}

func TestMatch_PicksClosestKickoff(t *testing.T) {
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t,
		fixture("100", target.Add(8*time.Minute), "Arsenal FC", "Chelsea FC"),
		fixture("200", target.Add(2*time.Minute), "Arsenal FC", "Chelsea FC"),
	)
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea")
	if !ok || id != "200" {
		t.Fatalf("Match = (%q, %v), want closest fixture \"200\"", id, ok)
	}
}

func TestMatch_ExactTimeBonusBeatsProximity(t *testing.T) {
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t,
		fixture("100", target, "Arsenal FC", "Chelsea FC"),
		fixture("200", target.Add(1*time.Minute), "Arsenal FC", "Chelsea FC"),
	)
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea")
	if !ok || id != "100" {
		t.Fatalf("Match = (%q, %v), want exact-time fixture \"100\"", id, ok)
	}
}

func TestMatch_NameOverlapBreaksTimeTie(t *testing.T) {
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t,
		fixture("100", target, "Manchester United FC", "Newcastle United FC"),
		fixture("200", target, "Manchester City FC", "Everton FC"),
	)
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Manchester City", "Everton")
	if !ok || id != "200" {
		t.Fatalf("Match = (%q, %v), want \"200\"", id, ok)
	}
}

func TestMatch_TieKeepsFirstSeenCandidate(t *testing.T) {
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	// Identical scores; candidates arrive ordered ascending by fixture_id.
	store := storeWith(t,
		fixture("300", target, "Arsenal FC", "Chelsea FC"),
		fixture("100", target, "Arsenal FC", "Chelsea FC"),
	)
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea")
	if !ok || id != "100" {
		t.Fatalf("Match = (%q, %v), want first-seen \"100\"", id, ok)
	}
}

func TestMatch_ZeroNameOverlapStillMatches(t *testing.T) {
	// Permissive by default: a time-proximate candidate with no name
	// overlap is still accepted when the threshold is zero.
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t, fixture("100", target, "Arsenal FC", "Chelsea FC"))
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Real Madrid", "Barcelona")
	if !ok || id != "100" {
		t.Fatalf("Match = (%q, %v), want permissive \"100\"", id, ok)
	}
}

func TestMatch_MinNameScoreFloor(t *testing.T) {
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t, fixture("100", target, "Arsenal FC", "Chelsea FC"))
	m := New(store, Config{WindowMinutes: 10, MinNameScore: 10})

	if id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Real Madrid", "Barcelona"); ok {
		t.Fatalf("Match = (%q, true), want rejection below name-score floor", id)
	}

	id, ok := m.Match(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea")
	if !ok || id != "100" {
		t.Fatalf("Match = (%q, %v), want \"100\" above floor", id, ok)
	}
}

func TestMatchWithin_ZeroWindowExactPath(t *testing.T) {
	target := time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC)
	store := storeWith(t,
		fixture("100", target, "Arsenal FC", "Chelsea FC"),
		fixture("200", target.Add(time.Minute), "Leeds United FC", "Fulham FC"),
	)
	m := New(store, Config{WindowMinutes: 10})

	id, ok := m.MatchWithin(context.Background(), "2026-01-19T15:00:00Z", "Arsenal", "Chelsea", 0)
	if !ok || id != "100" {
		t.Fatalf("MatchWithin(0) = (%q, %v), want \"100\"", id, ok)
	}

	if id, ok := m.MatchWithin(context.Background(), "2026-01-19T15:01:00Z", "Arsenal", "Chelsea", 0); ok && id == "100" {
		t.Fatalf("MatchWithin(0) matched fixture with a different kickoff")
	}
}

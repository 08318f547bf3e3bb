// Package matcher resolves odds-provider events, identified only by
// kickoff time and free-text team names, to canonical fixture ids.
package matcher

import (
	"context"
	"log/slog"
	"time"

	"oddsline/internal/pkg/normalize"
	"oddsline/internal/pkg/storage"
)

const (
	// exactNameScore replaces the token score for a side whose normalized
	// name equals the candidate's exactly.
	exactNameScore = 100
	// tokenScore is awarded per shared token when names are not exactly equal.
	tokenScore = 10
	// exactTimeBonus rewards a candidate whose stored timestamp renders
	// byte-identical to the normalized target timestamp.
	exactTimeBonus = 500
)

// Config carries the calibrated matching knobs. They are passed in at
// construction so business logic never reads process-wide state.
type Config struct {
	// WindowMinutes is the default candidate time window.
	WindowMinutes int
	// MinNameScore rejects matches whose summed name score is below the
	// threshold. 0 keeps the permissive zero-overlap behavior.
	MinNameScore int
}

// Matcher matches odds events against the fixture population.
type Matcher struct {
	fixtures storage.FixtureStore
	cfg      Config
}

// New creates a Matcher reading candidates from the given store.
func New(fixtures storage.FixtureStore, cfg Config) *Matcher {
	if cfg.WindowMinutes <= 0 {
		cfg.WindowMinutes = 10
	}
	return &Matcher{fixtures: fixtures, cfg: cfg}
}

// Match resolves a fixture id using the configured window.
// Returns ("", false) when nothing matches; it never fails on bad input.
func (m *Matcher) Match(ctx context.Context, commenceTime, homeName, awayName string) (string, bool) {
	return m.MatchWithin(ctx, commenceTime, homeName, awayName, m.cfg.WindowMinutes)
}

// MatchWithin resolves a fixture id among candidates within ±windowMinutes
// of the event's kickoff. A zero window is an exact-equality fast path.
//
// Unparsable timestamps, empty names and an empty candidate set all yield
// ("", false): callers skip the odds event for this run.
func (m *Matcher) MatchWithin(ctx context.Context, commenceTime, homeName, awayName string, windowMinutes int) (string, bool) {
	target, err := time.Parse(time.RFC3339, commenceTime)
	if err != nil {
		slog.Debug("Skipping odds event with unparsable commence time", "commence_time", commenceTime)
		return "", false
	}
	target = target.UTC()

	window := time.Duration(windowMinutes) * time.Minute
	candidates, err := m.fixtures.FixturesInWindow(ctx, target, window)
	if err != nil {
		slog.Error("Failed to query fixture candidates", "error", err)
		return "", false
	}
	if len(candidates) == 0 {
		return "", false
	}

	targetStamp := target.Format(time.RFC3339)
	windowSeconds := int(window / time.Second)
	normHome := normalize.Name(homeName)
	normAway := normalize.Name(awayName)
	homeTokens := normalize.Tokens(homeName)
	awayTokens := normalize.Tokens(awayName)

	bestID := ""
	bestScore := -1
	found := false
	for _, f := range candidates {
		nameScore := sideScore(normHome, homeTokens, f.HomeTeam) +
			sideScore(normAway, awayTokens, f.AwayTeam)
		if nameScore < m.cfg.MinNameScore {
			continue
		}

		delta := f.CommenceTime.Sub(target)
		if delta < 0 {
			delta = -delta
		}
		timeScore := windowSeconds - int(delta/time.Second)
		if timeScore < 0 {
			timeScore = 0
		}

		score := nameScore*10 + timeScore
		if f.CommenceTime.UTC().Format(time.RFC3339) == targetStamp {
			score += exactTimeBonus
		}

		// Strictly greater keeps the first-seen candidate on ties; the
		// store returns candidates ordered ascending by fixture_id.
		if score > bestScore {
			bestScore = score
			bestID = f.FixtureID
			found = true
		}
	}
	return bestID, found
}

// sideScore scores one side of the pairing: exact normalized equality
// beats token overlap.
func sideScore(normName string, tokens map[string]struct{}, candidateName string) int {
	normCandidate := normalize.Name(candidateName)
	if normName != "" && normName == normCandidate {
		return exactNameScore
	}
	overlap := 0
	for token := range normalize.Tokens(candidateName) {
		if _, ok := tokens[token]; ok {
			overlap++
		}
	}
	return tokenScore * overlap
}

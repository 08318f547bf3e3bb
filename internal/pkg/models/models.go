package models

import "time"

// Market family tags for normalized snapshots.
const (
	MarketTotals          = "totals"
	MarketAlternateTotals = "alternate_totals"
	MarketSpreads         = "spreads"
	MarketBTTS            = "btts"
)

// Fixture is one canonical match from the fixture provider.
// FixtureID is the provider-assigned id and the primary key; repeated
// ingestion of the same id updates mutable fields (upsert, last writer wins).
type Fixture struct {
	FixtureID    string    `json:"fixture_id"`
	CommenceTime time.Time `json:"commence_time_utc"`
	Matchweek    *int      `json:"matchweek"`
	Status       string    `json:"status"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	HomeGoals    *int      `json:"home_goals"`
	AwayGoals    *int      `json:"away_goals"`
	LastUpdated  time.Time `json:"last_updated_utc"`
}

// Finished reports whether a final score has been recorded.
func (f *Fixture) Finished() bool {
	return f.HomeGoals != nil && f.AwayGoals != nil
}

// Snapshot is one observation of a two-sided price for one market line
// from one bookmaker at one capture instant. Immutable once written.
//
// Side semantics depend on Market: over/under for totals, home/away for
// spreads, yes/no for btts. Line is nil for btts and must stay nil — a
// nil line is a distinct grouping key from any numeric line, including 0.
type Snapshot struct {
	CapturedAt time.Time `json:"captured_at_utc"`
	FixtureID  string    `json:"fixture_id"`
	Bookmaker  string    `json:"bookmaker"`
	Market     string    `json:"market"`
	Line       *float64  `json:"line"`
	SideAPrice float64   `json:"side_a_price"`
	SideBPrice float64   `json:"side_b_price"`
}

// OddsEvent is one event from the odds provider. Its ID is unrelated to
// FixtureID and is not a trustworthy key; CommenceTime is kept as the raw
// provider string because matching starts by parsing it.
type OddsEvent struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is one bookmaker's block inside an odds event.
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// DisplayName returns the bookmaker name used in snapshots.
func (b *Bookmaker) DisplayName() string {
	if b.Title != "" {
		return b.Title
	}
	if b.Key != "" {
		return b.Key
	}
	return "unknown_book"
}

// Market is one raw market block from a bookmaker.
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one raw outcome entry. Price and Point are pointers so a
// missing value is distinguishable from zero.
type Outcome struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Point *float64 `json:"point"`
}

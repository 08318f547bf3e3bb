// Package markets normalizes heterogeneous bookmaker market payloads into
// two-sided snapshot rows (line, side A price, side B price).
package markets

import (
	"math"
	"strings"
	"time"

	"oddsline/internal/pkg/models"
	"oddsline/internal/pkg/normalize"
)

// ExtractEvent converts every bookmaker market of a matched odds event
// into snapshot rows. Unknown market keys are ignored, one-sided quotes
// are dropped, and a non-finite price or point skips only that outcome.
func ExtractEvent(ev models.OddsEvent, fixtureID string, capturedAt time.Time) []models.Snapshot {
	var rows []models.Snapshot
	for _, bm := range ev.Bookmakers {
		bookmaker := bm.DisplayName()
		for _, market := range bm.Markets {
			rows = append(rows, extractMarket(market, ev, fixtureID, bookmaker, capturedAt)...)
		}
	}
	return rows
}

func extractMarket(market models.Market, ev models.OddsEvent, fixtureID, bookmaker string, capturedAt time.Time) []models.Snapshot {
	switch market.Key {
	case models.MarketTotals, models.MarketAlternateTotals:
		return extractTotals(market, fixtureID, bookmaker, capturedAt)
	case models.MarketSpreads:
		return extractSpreads(market, ev, fixtureID, bookmaker, capturedAt)
	case models.MarketBTTS:
		return extractBTTS(market, fixtureID, bookmaker, capturedAt)
	default:
		// Provider payload drift: unsupported keys are not an error.
		return nil
	}
}

// extractTotals groups outcomes by line and emits one row per line that
// quotes both Over and Under. Alternate totals land here too, so one
// bookmaker can produce several independent lines.
func extractTotals(market models.Market, fixtureID, bookmaker string, capturedAt time.Time) []models.Snapshot {
	type pair struct {
		over  *float64
		under *float64
	}
	pairs := make(map[float64]*pair)
	var lines []float64

	for _, out := range market.Outcomes {
		price, ok := finitePrice(out.Price)
		if !ok {
			continue
		}
		if out.Point == nil || !isFinite(*out.Point) {
			continue
		}
		line := *out.Point

		p, seen := pairs[line]
		if !seen {
			p = &pair{}
			pairs[line] = p
			lines = append(lines, line)
		}
		switch strings.ToLower(strings.TrimSpace(out.Name)) {
		case "over":
			if p.over == nil {
				p.over = &price
			}
		case "under":
			if p.under == nil {
				p.under = &price
			}
		}
	}

	var rows []models.Snapshot
	for _, line := range lines {
		p := pairs[line]
		if p.over == nil || p.under == nil {
			continue
		}
		l := line
		rows = append(rows, models.Snapshot{
			CapturedAt: capturedAt,
			FixtureID:  fixtureID,
			Bookmaker:  bookmaker,
			Market:     market.Key,
			Line:       &l,
			SideAPrice: *p.over,
			SideBPrice: *p.under,
		})
	}
	return rows
}

// extractSpreads maps team-named outcomes to sides: home is side A, away
// is side B. The line is the home side's point verbatim, falling back to
// the away side's point when the home outcome carries none.
func extractSpreads(market models.Market, ev models.OddsEvent, fixtureID, bookmaker string, capturedAt time.Time) []models.Snapshot {
	normHome := normalize.Name(ev.HomeTeam)
	normAway := normalize.Name(ev.AwayTeam)
	if normHome == "" || normAway == "" {
		return nil
	}

	var homePrice, awayPrice *float64
	var homePoint, awayPoint *float64

	for _, out := range market.Outcomes {
		price, ok := finitePrice(out.Price)
		if !ok {
			continue
		}
		point := out.Point
		if point != nil && !isFinite(*point) {
			continue
		}

		switch normalize.Name(out.Name) {
		case normHome:
			if homePrice == nil {
				homePrice = &price
				homePoint = point
			}
		case normAway:
			if awayPrice == nil {
				awayPrice = &price
				awayPoint = point
			}
		}
	}

	if homePrice == nil || awayPrice == nil {
		return nil
	}
	line := homePoint
	if line == nil {
		line = awayPoint
	}
	if line == nil {
		return nil
	}

	return []models.Snapshot{{
		CapturedAt: capturedAt,
		FixtureID:  fixtureID,
		Bookmaker:  bookmaker,
		Market:     market.Key,
		Line:       line,
		SideAPrice: *homePrice,
		SideBPrice: *awayPrice,
	}}
}

// extractBTTS pairs Yes (side A) with No (side B). The stored line stays
// nil, never a placeholder number.
func extractBTTS(market models.Market, fixtureID, bookmaker string, capturedAt time.Time) []models.Snapshot {
	var yesPrice, noPrice *float64

	for _, out := range market.Outcomes {
		price, ok := finitePrice(out.Price)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(out.Name)) {
		case "yes", "y":
			if yesPrice == nil {
				yesPrice = &price
			}
		case "no", "n":
			if noPrice == nil {
				noPrice = &price
			}
		}
	}

	if yesPrice == nil || noPrice == nil {
		return nil
	}
	return []models.Snapshot{{
		CapturedAt: capturedAt,
		FixtureID:  fixtureID,
		Bookmaker:  bookmaker,
		Market:     market.Key,
		Line:       nil,
		SideAPrice: *yesPrice,
		SideBPrice: *noPrice,
	}}
}

func finitePrice(price *float64) (float64, bool) {
	if price == nil || !isFinite(*price) || *price <= 0 {
		return 0, false
	}
	return *price, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

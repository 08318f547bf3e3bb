// Package implied holds the auxiliary probability utilities: de-vigging
// two-way decimal odds and a Poisson goals model over finished fixtures.
package implied

import (
	"math"

	"oddsline/internal/pkg/models"
)

// DevigTwoWay normalizes two complementary decimal odds into implied
// probabilities that sum to 1. Returns false when either price is not a
// usable decimal odd.
func DevigTwoWay(sideA, sideB float64) (float64, float64, bool) {
	if !usableOdd(sideA) || !usableOdd(sideB) {
		return 0, 0, false
	}
	qa := 1.0 / sideA
	qb := 1.0 / sideB
	sum := qa + qb
	return qa / sum, qb / sum, true
}

func usableOdd(v float64) bool {
	return v > 1.0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// PoissonCDF returns P(X <= k) for X ~ Poisson(lambda).
func PoissonCDF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	term := math.Exp(-lambda)
	sum := term
	for i := 1; i <= k; i++ {
		term *= lambda / float64(i)
		sum += term
	}
	return sum
}

// OverProbability returns P(total goals > line) for a Poisson total with
// the given mean. Half-step lines only; Over 2.5 means "3 or more".
func OverProbability(line, lambda float64) float64 {
	return 1 - PoissonCDF(int(math.Floor(line)), lambda)
}

// LeagueOverProbability estimates P(Over line) from the goal mean of the
// finished fixtures. Returns false when no fixture has a final score.
func LeagueOverProbability(fixtures []models.Fixture, line float64) (float64, bool) {
	total := 0
	count := 0
	for _, f := range fixtures {
		if !f.Finished() {
			continue
		}
		total += *f.HomeGoals + *f.AwayGoals
		count++
	}
	if count == 0 {
		return 0, false
	}
	lambda := float64(total) / float64(count)
	return OverProbability(line, lambda), true
}

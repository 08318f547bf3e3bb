package implied

import (
	"math"
	"testing"

	"oddsline/internal/pkg/models"
)

func TestDevigTwoWay(t *testing.T) {
	pOver, pUnder, ok := DevigTwoWay(2.05, 1.80)
	if !ok {
		t.Fatal("DevigTwoWay rejected valid odds")
	}
	if math.Abs(pOver+pUnder-1.0) > 1e-12 {
		t.Errorf("probabilities sum to %v, want 1", pOver+pUnder)
	}
	if pOver >= pUnder {
		t.Errorf("longer odds should imply lower probability: over %v, under %v", pOver, pUnder)
	}
}

func TestDevigTwoWay_RejectsBadOdds(t *testing.T) {
	cases := [][2]float64{
		{0, 1.8},
		{1.0, 1.8},
		{2.0, math.Inf(1)},
		{math.NaN(), 1.8},
		{-1.5, 1.8},
	}
	for _, c := range cases {
		if _, _, ok := DevigTwoWay(c[0], c[1]); ok {
			t.Errorf("DevigTwoWay(%v, %v) accepted, want rejection", c[0], c[1])
		}
	}
}

func TestPoissonCDF(t *testing.T) {
	// P(X <= 0) = e^-lambda
	if got, want := PoissonCDF(0, 1.0), math.Exp(-1); math.Abs(got-want) > 1e-12 {
		t.Errorf("PoissonCDF(0, 1) = %v, want %v", got, want)
	}
	// CDF is monotone in k and approaches 1.
	prev := 0.0
	for k := 0; k <= 20; k++ {
		cur := PoissonCDF(k, 2.7)
		if cur < prev {
			t.Fatalf("PoissonCDF not monotone at k=%d: %v < %v", k, cur, prev)
		}
		prev = cur
	}
	if prev < 0.999999 {
		t.Errorf("PoissonCDF(20, 2.7) = %v, want ~1", prev)
	}
}

func TestLeagueOverProbability(t *testing.T) {
	goals := func(h, a int) models.Fixture {
		return models.Fixture{HomeGoals: &h, AwayGoals: &a}
	}

	// Mean total = 3.0 goals.
	fixtures := []models.Fixture{
		goals(2, 1),
		goals(0, 2),
		goals(3, 1),
		{Status: "SCHEDULED"}, // unfinished, ignored
	}

	p, ok := LeagueOverProbability(fixtures, 2.5)
	if !ok {
		t.Fatal("LeagueOverProbability found no finished fixtures")
	}
	want := 1 - PoissonCDF(2, 3.0)
	if math.Abs(p-want) > 1e-12 {
		t.Errorf("P(Over 2.5) = %v, want %v", p, want)
	}
}

func TestLeagueOverProbability_NoFinished(t *testing.T) {
	if _, ok := LeagueOverProbability([]models.Fixture{{Status: "SCHEDULED"}}, 2.5); ok {
		t.Fatal("expected no estimate without finished fixtures")
	}
}

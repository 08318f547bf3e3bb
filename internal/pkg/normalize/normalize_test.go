package normalize

import "testing"

func TestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Arsenal FC", "arsenal"},
		{"  Chelsea FC  ", "chelsea"},
		{"AFC Bournemouth", "bournemouth"},
		{"Brighton & Hove Albion", "brighton and hove albion"},
		{"Wolverhampton Wanderers", "wolverhampton wanderers"},
		{"St. Mirren", "st mirren"},
		{"Real   Madrid CF", "real madrid"},
		{"PSG", "psg"},
		{"", ""},
		{"   ", ""},
		{"FC", ""},
	}

	for _, tt := range tests {
		result := Name(tt.input)
		if result != tt.expected {
			t.Errorf("Name(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestName_Idempotent(t *testing.T) {
	inputs := []string{
		"Arsenal FC",
		"Brighton & Hove Albion",
		"Tottenham Hotspur",
		"1. FC Köln",
		"West Ham United",
		"",
	}
	for _, in := range inputs {
		once := Name(in)
		twice := Name(once)
		if once != twice {
			t.Errorf("Name not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	set := Tokens("Manchester United FC")
	if len(set) != 2 {
		t.Fatalf("Tokens: got %d tokens, want 2", len(set))
	}
	for _, want := range []string{"manchester", "united"} {
		if _, ok := set[want]; !ok {
			t.Errorf("Tokens missing %q", want)
		}
	}
}

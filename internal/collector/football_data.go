package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"oddsline/internal/pkg/config"
	"oddsline/internal/pkg/models"
)

// FixtureClient fetches canonical fixtures from the football-data API.
// Transport errors propagate to the caller; there is no retry here.
type FixtureClient struct {
	baseURL     string
	token       string
	competition string
	httpClient  *http.Client
}

// NewFixtureClient creates a fixture provider client from config.
func NewFixtureClient(cfg *config.FixtureProviderConfig) *FixtureClient {
	return &FixtureClient{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		token:       cfg.Token,
		competition: cfg.Competition,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type fdTeam struct {
	Name string `json:"name"`
}

type fdFullTime struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type fdScore struct {
	FullTime fdFullTime `json:"fullTime"`
}

type fdMatch struct {
	ID       int64     `json:"id"`
	UTCDate  time.Time `json:"utcDate"`
	Status   string    `json:"status"`
	Matchday *int      `json:"matchday"`
	HomeTeam fdTeam    `json:"homeTeam"`
	AwayTeam fdTeam    `json:"awayTeam"`
	Score    fdScore   `json:"score"`
}

type fdMatchesResponse struct {
	Matches []fdMatch `json:"matches"`
}

// FetchFixtures returns competition fixtures from daysBack before today to
// daysForward after, mapped to the canonical Fixture record.
func (c *FixtureClient) FetchFixtures(ctx context.Context, daysBack, daysForward int, now time.Time) ([]models.Fixture, error) {
	today := now.UTC()
	dateFrom := today.AddDate(0, 0, -daysBack).Format("2006-01-02")
	dateTo := today.AddDate(0, 0, daysForward).Format("2006-01-02")

	endpoint := fmt.Sprintf("%s/competitions/%s/matches", c.baseURL, c.competition)
	params := url.Values{}
	params.Set("dateFrom", dateFrom)
	params.Set("dateTo", dateTo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fixtures request: %w", err)
	}
	req.Header.Set("X-Auth-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fixtures: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("fixtures request returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload fdMatchesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode fixtures response: %w", err)
	}

	ingestedAt := now.UTC().Truncate(time.Second)
	fixtures := make([]models.Fixture, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		status := m.Status
		if status == "" {
			status = "UNKNOWN"
		}
		home := m.HomeTeam.Name
		if home == "" {
			home = "UNKNOWN_HOME"
		}
		away := m.AwayTeam.Name
		if away == "" {
			away = "UNKNOWN_AWAY"
		}
		fixtures = append(fixtures, models.Fixture{
			FixtureID:    strconv.FormatInt(m.ID, 10),
			CommenceTime: m.UTCDate.UTC(),
			Matchweek:    m.Matchday,
			Status:       status,
			HomeTeam:     home,
			AwayTeam:     away,
			HomeGoals:    m.Score.FullTime.Home,
			AwayGoals:    m.Score.FullTime.Away,
			LastUpdated:  ingestedAt,
		})
	}
	return fixtures, nil
}

package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"oddsline/internal/pkg/config"
	"oddsline/internal/pkg/models"
)

// OddsClient fetches bookmaker-aggregated odds events. The provider may
// reject unsupported market combinations; callers retry with a reduced
// market set, not this client.
type OddsClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOddsClient creates an odds provider client from config.
func NewOddsClient(cfg *config.OddsProviderConfig) *OddsClient {
	return &OddsClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchEvents returns odds events for the sport and market set.
func (c *OddsClient) FetchEvents(ctx context.Context, cfg *config.OddsProviderConfig) ([]models.OddsEvent, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds", c.baseURL, cfg.SportKey)
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", cfg.Regions)
	params.Set("markets", cfg.Markets)
	params.Set("oddsFormat", cfg.OddsFormat)
	params.Set("dateFormat", cfg.DateFormat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create odds request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("odds request returned status %d: %s", resp.StatusCode, string(body))
	}

	var events []models.OddsEvent
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode odds response: %w", err)
	}
	return events, nil
}

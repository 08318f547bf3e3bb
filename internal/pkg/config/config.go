package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Postgres        PostgresConfig        `yaml:"postgres"`
	Logging         LoggingConfig         `yaml:"logging"`
	FixtureProvider FixtureProviderConfig `yaml:"fixture_provider"`
	OddsProvider    OddsProviderConfig    `yaml:"odds_provider"`
	Matcher         MatcherConfig         `yaml:"matcher"`
	Snapshots       SnapshotsConfig       `yaml:"snapshots"`
	Telegram        TelegramConfig        `yaml:"telegram"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

type FixtureProviderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Token       string `yaml:"token"`
	Competition string `yaml:"competition"`  // e.g. "PL"
	DaysBack    int    `yaml:"days_back"`    // fixture query range start offset
	DaysForward int    `yaml:"days_forward"` // fixture query range end offset
}

type OddsProviderConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	SportKey   string `yaml:"sport_key"`   // e.g. "soccer_epl"
	Regions    string `yaml:"regions"`     // e.g. "uk,eu"
	Markets    string `yaml:"markets"`     // comma-separated market keys
	OddsFormat string `yaml:"odds_format"` // "decimal"
	DateFormat string `yaml:"date_format"` // "iso"
}

type MatcherConfig struct {
	WindowMinutes int `yaml:"window_minutes"` // candidate time window (default: 10)
	// MinNameScore rejects matches whose summed name score is below the
	// threshold. 0 keeps the permissive behavior where a time-proximate
	// candidate with no name overlap is still accepted.
	MinNameScore int `yaml:"min_name_score"`
}

type SnapshotsConfig struct {
	MaxRows int `yaml:"max_rows"` // 0 disables trimming
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.FixtureProvider.BaseURL == "" {
		c.FixtureProvider.BaseURL = "https://api.football-data.org/v4"
	}
	if c.FixtureProvider.Competition == "" {
		c.FixtureProvider.Competition = "PL"
	}
	if c.FixtureProvider.DaysBack == 0 {
		c.FixtureProvider.DaysBack = 14
	}
	if c.FixtureProvider.DaysForward == 0 {
		c.FixtureProvider.DaysForward = 14
	}
	if c.OddsProvider.BaseURL == "" {
		c.OddsProvider.BaseURL = "https://api.the-odds-api.com/v4"
	}
	if c.OddsProvider.SportKey == "" {
		c.OddsProvider.SportKey = "soccer_epl"
	}
	if c.OddsProvider.Regions == "" {
		c.OddsProvider.Regions = "uk,eu"
	}
	if c.OddsProvider.Markets == "" {
		c.OddsProvider.Markets = "totals"
	}
	if c.OddsProvider.OddsFormat == "" {
		c.OddsProvider.OddsFormat = "decimal"
	}
	if c.OddsProvider.DateFormat == "" {
		c.OddsProvider.DateFormat = "iso"
	}
	if c.Matcher.WindowMinutes == 0 {
		c.Matcher.WindowMinutes = 10
	}
}

// applyEnv lets secrets come from the environment instead of the config
// file. The config file value wins only when the variable is unset.
func (c *Config) applyEnv() {
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("FOOTBALL_DATA_TOKEN"); v != "" {
		c.FixtureProvider.Token = v
	}
	if v := os.Getenv("ODDS_API_KEY"); v != "" {
		c.OddsProvider.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
}

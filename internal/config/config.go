package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAPIDelay is the pause between consecutive page-creation calls when
// neither a flag nor the api_delay setting provides one.
const DefaultAPIDelay = 300 * time.Millisecond

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	NotionToken      string `mapstructure:"notion_token"`
	NotionDatabaseID string `mapstructure:"notion_database_id"`
	PocketFile       string `mapstructure:"pocket_file"`

	// APIDelay is kept as the raw setting text; the importer resolves it,
	// falling back to DefaultAPIDelay with a warning on invalid values.
	APIDelay string `mapstructure:"api_delay"`

	HTTPTimeoutSeconds int           `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`

	LedgerType string `mapstructure:"ledger_type"`
	LedgerPath string `mapstructure:"ledger_path"`

	NotifiersFile string `mapstructure:"notifiers_file"`
	ProfilesFile  string `mapstructure:"profiles_file"`
	Profile       string `mapstructure:"profile"`

	EnrichTitles bool `mapstructure:"enrich_titles"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load(".env", "configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "pocket2notion")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("notion_token", "")
	v.SetDefault("notion_database_id", "")
	v.SetDefault("pocket_file", "pocket.zip")
	v.SetDefault("api_delay", "")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("ledger_type", "none")
	v.SetDefault("ledger_path", "./data/ledger.db")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("profiles_file", "")
	v.SetDefault("profile", "pocket")
	v.SetDefault("enrich_titles", false)

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	return &cfg, nil
}

// Validate checks the settings the importer cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.NotionToken) == "" {
		return fmt.Errorf("notion_token is not set (set NOTION_TOKEN in the environment or .env file)")
	}
	if strings.TrimSpace(c.NotionDatabaseID) == "" {
		return fmt.Errorf("notion_database_id is not set (set NOTION_DATABASE_ID in the environment or .env file)")
	}
	return nil
}

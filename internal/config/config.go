package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var tableNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds all application configuration.
type Config struct {
	Provider struct {
		BaseURL        string  `yaml:"base_url"`
		APIKey         string  `yaml:"api_key"`
		TimeoutSeconds int     `yaml:"timeout_seconds"`
		Retries        int     `yaml:"retries"`
		Backoff        float64 `yaml:"backoff"`
	} `yaml:"provider"`
	Symbols  []string `yaml:"symbols"`
	Interval string   `yaml:"interval"`
	Database struct {
		Dir   string `yaml:"dir"`
		Table string `yaml:"table"`
	} `yaml:"database"`
	Server struct {
		Port            int    `yaml:"port"`
		CORSAllowOrigin string `yaml:"cors_allow_origin"`
	} `yaml:"server"`
	Schedule struct {
		UpdateCron string `yaml:"update_cron"`
	} `yaml:"schedule"`
	Ingest struct {
		PauseSeconds int `yaml:"pause_seconds"`
	} `yaml:"ingest"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("ALPHAVANTAGE_BASE_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("INTERVAL"); v != "" {
		cfg.Interval = v
	}
	if v := os.Getenv("DATABASE_DIR"); v != "" {
		cfg.Database.Dir = v
	}
	if v := os.Getenv("TABLE_NAME"); v != "" {
		cfg.Database.Table = v
	}
	if v := os.Getenv("API_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("UPDATE_CRON"); v != "" {
		cfg.Schedule.UpdateCron = v
	}

	// Defaults
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://www.alphavantage.co/query"
	}
	if cfg.Provider.TimeoutSeconds == 0 {
		cfg.Provider.TimeoutSeconds = 30
	}
	if cfg.Provider.Retries == 0 {
		cfg.Provider.Retries = 3
	}
	if cfg.Provider.Backoff == 0 {
		cfg.Provider.Backoff = 2
	}
	if cfg.Interval == "" {
		cfg.Interval = "1min"
	}
	if cfg.Database.Dir == "" {
		cfg.Database.Dir = "data"
	}
	if cfg.Database.Table == "" {
		cfg.Database.Table = "price_data"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.CORSAllowOrigin == "" {
		cfg.Server.CORSAllowOrigin = "*"
	}
	if cfg.Schedule.UpdateCron == "" {
		// Every 30 minutes on weekdays.
		cfg.Schedule.UpdateCron = "0 */30 * * * 1-5"
	}
	if cfg.Ingest.PauseSeconds == 0 {
		cfg.Ingest.PauseSeconds = 1
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.Provider.APIKey == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	if c.Provider.Retries < 1 {
		return fmt.Errorf("provider.retries must be at least 1")
	}
	if c.Provider.Backoff < 1 {
		return fmt.Errorf("provider.backoff must be at least 1")
	}
	if !tableNameRe.MatchString(c.Database.Table) {
		return fmt.Errorf("database.table %q is not a valid table name", c.Database.Table)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

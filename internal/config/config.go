package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Symbols  []string `yaml:"symbols"`
	Sampling struct {
		IntervalSeconds int    `yaml:"interval_seconds"`
		BucketSize      string `yaml:"bucket_size"`
	} `yaml:"sampling"`
	DataSource struct {
		BaseURL string `yaml:"base_url"`
	} `yaml:"data_source"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		Postgres   struct {
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			User     string `yaml:"user"`
			Password string `yaml:"password"`
			DBName   string `yaml:"dbname"`
			SSLMode  string `yaml:"sslmode"`
		} `yaml:"postgres"`
	} `yaml:"database"`
	Schedule struct {
		PurgeCron string `yaml:"purge_cron"`
	} `yaml:"schedule"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
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
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Symbols = nil
		for _, sym := range strings.Split(v, ",") {
			if sym = strings.TrimSpace(sym); sym != "" {
				cfg.Symbols = append(cfg.Symbols, sym)
			}
		}
	}
	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Sampling.IntervalSeconds = n
		}
	}
	if v := os.Getenv("BUCKET_SIZE"); v != "" {
		cfg.Sampling.BucketSize = v
	}
	if v := os.Getenv("BINANCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Database.Postgres.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.Postgres.Port = n
		}
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.Database.Postgres.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Database.Postgres.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.Database.Postgres.DBName = v
	}

	// Defaults
	if len(cfg.Symbols) == 0 {
		cfg.Symbols = []string{"BTCUSDT", "ETHUSDT", "LTCBTC"}
	}
	if cfg.Sampling.IntervalSeconds == 0 {
		cfg.Sampling.IntervalSeconds = 5
	}
	if cfg.Sampling.BucketSize == "" {
		cfg.Sampling.BucketSize = "1h"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/raw_prices.db"
	}
	if cfg.Schedule.PurgeCron == "" {
		cfg.Schedule.PurgeCron = "0 0 0 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols must not be empty")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for _, sym := range c.Symbols {
		if sym == "" {
			return fmt.Errorf("symbols must not contain empty entries")
		}
		if seen[sym] {
			return fmt.Errorf("duplicate symbol %q", sym)
		}
		seen[sym] = true
	}
	if c.Sampling.IntervalSeconds <= 0 {
		return fmt.Errorf("sampling.interval_seconds must be positive")
	}
	size, err := c.BucketSize()
	if err != nil {
		return fmt.Errorf("sampling.bucket_size: %w", err)
	}
	if interval := c.PollInterval(); interval >= size {
		return fmt.Errorf("sampling interval %s must be shorter than bucket size %s", interval, size)
	}
	return nil
}

// PollInterval returns the sampling interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sampling.IntervalSeconds) * time.Second
}

// BucketSize parses the configured bucket size.
func (c *Config) BucketSize() (time.Duration, error) {
	size, err := time.ParseDuration(c.Sampling.BucketSize)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", c.Sampling.BucketSize, err)
	}
	if size <= 0 {
		return 0, fmt.Errorf("bucket size must be positive, got %s", size)
	}
	return size, nil
}

// PostgresConfigured reports whether a rollup database was configured.
func (c *Config) PostgresConfigured() bool {
	return c.Database.Postgres.DBName != ""
}

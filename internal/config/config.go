// Package config handles loading and validating the application
// configuration from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ebay      EbayConfig      `yaml:"ebay"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Baselines BaselinesConfig `yaml:"baselines"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// EbayConfig defines eBay API settings.
type EbayConfig struct {
	AppID        string          `yaml:"app_id"`
	CertID       string          `yaml:"cert_id"`
	TokenURL     string          `yaml:"token_url"`
	BrowseURL    string          `yaml:"browse_url"`
	AnalyticsURL string          `yaml:"analytics_url"`
	Marketplace  string          `yaml:"marketplace"`
	PageSize     int             `yaml:"page_size"`
	MaxPages     int             `yaml:"max_pages"`
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
}

// Enabled reports whether eBay credentials are configured. Without
// them the server still ranks caller-supplied listings.
func (e *EbayConfig) Enabled() bool {
	return e.AppID != "" && e.CertID != ""
}

// RateLimitConfig defines eBay API rate limiting settings.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// EmbeddingConfig defines the embedding provider settings. An empty
// endpoint or API key disables semantic ranking.
type EmbeddingConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key"`
	BatchSize  int           `yaml:"batch_size"`
	BatchDelay time.Duration `yaml:"batch_delay"`
	MaxRetries int           `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
}

// RankingConfig defines the signal fusion weights.
type RankingConfig struct {
	Weights FusionWeightsConfig `yaml:"weights"`
}

// FusionWeightsConfig defines the relative weight of each fused signal.
type FusionWeightsConfig struct {
	Semantic   float64 `yaml:"semantic"`
	Deal       float64 `yaml:"deal"`
	Preference float64 `yaml:"preference"`
}

// BaselinesConfig defines where market-average prices come from and
// how often they refresh.
type BaselinesConfig struct {
	Source          string             `yaml:"source"` // static, postgres
	Static          map[string]float64 `yaml:"static"`
	RefreshInterval time.Duration      `yaml:"refresh_interval"`
	Database        DatabaseConfig     `yaml:"database"`
}

// DatabaseConfig defines PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns a PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode,
	)
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns a config with all defaults applied, as if an empty
// file had been loaded.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads and parses a YAML config file, performing environment
// variable substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyEbayDefaults(&cfg.Ebay)
	applyEmbeddingDefaults(&cfg.Embedding)
	applyRankingDefaults(&cfg.Ranking)
	applyBaselinesDefaults(&cfg.Baselines)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyEbayDefaults(e *EbayConfig) {
	if e.TokenURL == "" {
		e.TokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
	}
	if e.BrowseURL == "" {
		e.BrowseURL = "https://api.ebay.com/buy/browse/v1/item_summary/search"
	}
	if e.AnalyticsURL == "" {
		e.AnalyticsURL = "https://api.ebay.com/developer/analytics/v1_beta/rate_limit/"
	}
	if e.Marketplace == "" {
		e.Marketplace = "EBAY_US"
	}
	if e.PageSize == 0 {
		e.PageSize = 100
	}
	if e.MaxPages == 0 {
		e.MaxPages = 5
	}
	applyRateLimitDefaults(&e.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 5000
	}
}

func applyEmbeddingDefaults(e *EmbeddingConfig) {
	if e.BatchSize == 0 {
		e.BatchSize = 16
	}
	if e.BatchDelay == 0 {
		e.BatchDelay = 100 * time.Millisecond
	}
	if e.MaxRetries == 0 {
		e.MaxRetries = 3
	}
	if e.Timeout == 0 {
		e.Timeout = 30 * time.Second
	}
}

func applyRankingDefaults(r *RankingConfig) {
	if r.Weights == (FusionWeightsConfig{}) {
		r.Weights = FusionWeightsConfig{
			Semantic:   0.35,
			Deal:       0.35,
			Preference: 0.30,
		}
	}
}

func applyBaselinesDefaults(b *BaselinesConfig) {
	if b.Source == "" {
		b.Source = "static"
	}
	if b.RefreshInterval == 0 {
		b.RefreshInterval = 6 * time.Hour
	}
	if b.Database.Port == 0 {
		b.Database.Port = 5432
	}
	if b.Database.SSLMode == "" {
		b.Database.SSLMode = "disable"
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	w := cfg.Ranking.Weights
	if w.Semantic < 0 || w.Deal < 0 || w.Preference < 0 {
		errs = append(errs, fmt.Errorf("ranking.weights must be non-negative"))
	}
	if sum := w.Semantic + w.Deal + w.Preference; sum < 0.99 || sum > 1.01 {
		errs = append(errs, fmt.Errorf("ranking.weights must sum to 1.0 (got %.2f)", sum))
	}

	switch cfg.Baselines.Source {
	case "static":
		for category, avg := range cfg.Baselines.Static {
			if avg <= 0 {
				errs = append(errs, fmt.Errorf(
					"baselines.static[%s] must be positive (got %g)", category, avg,
				))
			}
		}
	case "postgres":
		if cfg.Baselines.Database.Host == "" {
			errs = append(errs, fmt.Errorf("baselines.database.host is required when source is postgres"))
		}
		if cfg.Baselines.Database.Name == "" {
			errs = append(errs, fmt.Errorf("baselines.database.name is required when source is postgres"))
		}
		if cfg.Baselines.Database.User == "" {
			errs = append(errs, fmt.Errorf("baselines.database.user is required when source is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"baselines.source must be one of: static, postgres (got %q)",
			cfg.Baselines.Source,
		))
	}

	if cfg.Embedding.Endpoint != "" && cfg.Embedding.Model == "" {
		errs = append(errs, fmt.Errorf("embedding.model is required when embedding.endpoint is set"))
	}

	return errors.Join(errs...)
}

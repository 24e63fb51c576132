// Package config loads seerlink settings from defaults, an optional YAML
// file, a .env file, and SEERLINK_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/seerlink/seerlink/internal/extract"
	"github.com/seerlink/seerlink/internal/matching"
)

// EnvPrefix prefixes every environment override, e.g. SEERLINK_JELLYSEERR_URL.
const EnvPrefix = "SEERLINK"

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Jellyseerr  JellyseerrConfig  `mapstructure:"jellyseerr" yaml:"jellyseerr"`
	Retry       RetryConfig       `mapstructure:"retry" yaml:"retry"`
	Matching    matching.Options  `mapstructure:"matching" yaml:"matching"`
	Extract     extract.Rules     `mapstructure:"extract" yaml:"extract"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Health      HealthConfig      `mapstructure:"health" yaml:"health"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics" yaml:"diagnostics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// JellyseerrConfig locates the Jellyseerr server.
type JellyseerrConfig struct {
	URL           string        `mapstructure:"url" yaml:"url"`
	APIKey        string        `mapstructure:"api_key" yaml:"api_key"`
	Language      string        `mapstructure:"language" yaml:"language"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	SkipSSLVerify bool          `mapstructure:"skip_ssl_verify" yaml:"skip_ssl_verify"`
}

type RetryConfig struct {
	Attempts int           `mapstructure:"attempts" yaml:"attempts"`
	Delay    time.Duration `mapstructure:"delay" yaml:"delay"`
}

type CacheConfig struct {
	SearchTTL time.Duration `mapstructure:"search_ttl" yaml:"search_ttl"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// HistoryConfig controls how long request history is kept. Zero keeps it forever.
type HistoryConfig struct {
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// HealthConfig controls the periodic Jellyseerr connection check.
type HealthConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// DiagnosticsConfig controls in-memory resolution traces.
type DiagnosticsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Buffer  int  `mapstructure:"buffer" yaml:"buffer"`
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > .env file > config file > defaults
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.seerlink")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)

	v.SetDefault("jellyseerr.url", "")
	v.SetDefault("jellyseerr.api_key", "")
	v.SetDefault("jellyseerr.language", "en")
	v.SetDefault("jellyseerr.timeout", 30*time.Second)
	v.SetDefault("jellyseerr.skip_ssl_verify", false)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)

	m := matching.DefaultOptions()
	v.SetDefault("matching.substitutions", substitutionMaps(m.Substitutions))
	v.SetDefault("matching.stopwords", m.Stopwords)
	v.SetDefault("matching.equivalents", equivalentMaps(m.Equivalents))
	v.SetDefault("matching.exact_year_tolerance", m.ExactYearTolerance)
	v.SetDefault("matching.fuzzy_year_tolerance", m.FuzzyYearTolerance)
	v.SetDefault("matching.year_only_tolerance", m.YearOnlyTolerance)

	r := extract.DefaultRules()
	v.SetDefault("extract.title_selectors", r.TitleSelectors)
	v.SetDefault("extract.year_selectors", r.YearSelectors)
	v.SetDefault("extract.metadata_selector", r.MetadataSelector)
	v.SetDefault("extract.poster_selectors", r.PosterSelectors)
	v.SetDefault("extract.overview_selectors", r.OverviewSelectors)
	v.SetDefault("extract.imdb_selectors", r.IMDbSelectors)
	v.SetDefault("extract.cleanup_patterns", r.CleanupPatterns)
	v.SetDefault("extract.tv_url_patterns", r.TVURLPatterns)
	v.SetDefault("extract.movie_url_patterns", r.MovieURLPatterns)
	v.SetDefault("extract.tv_indicators", r.TVIndicators)
	v.SetDefault("extract.tv_selectors", r.TVSelectors)
	v.SetDefault("extract.tv_text_patterns", r.TVTextPatterns)
	v.SetDefault("extract.page_title_fallback", r.PageTitleFallback)

	v.SetDefault("cache.search_ttl", 5*time.Minute)

	v.SetDefault("database.path", "./data/seerlink.db")
	v.SetDefault("history.retention_days", 90)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("health.interval", 5*time.Minute)

	v.SetDefault("diagnostics.enabled", false)
	v.SetDefault("diagnostics.buffer", 100)
}

// Validate checks values that would otherwise fail deep inside a component.
// A missing Jellyseerr URL or key is allowed; lookups then degrade.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", c.Retry.Attempts)
	}
	if c.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative")
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days must not be negative")
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Buffer < 1 {
		return fmt.Errorf("diagnostics.buffer must be positive when diagnostics are enabled")
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Configured reports whether both the URL and API key are set.
func (c *JellyseerrConfig) Configured() bool {
	return strings.TrimSpace(c.URL) != "" && strings.TrimSpace(c.APIKey) != ""
}

// Redacted returns a copy safe to print, with the API key masked.
func (c Config) Redacted() Config {
	if c.Jellyseerr.APIKey != "" {
		key := c.Jellyseerr.APIKey
		if len(key) > 4 {
			key = key[len(key)-4:]
		}
		c.Jellyseerr.APIKey = "****" + key
	}
	return c
}

func substitutionMaps(subs []matching.Substitution) []map[string]any {
	out := make([]map[string]any, 0, len(subs))
	for _, s := range subs {
		out = append(out, map[string]any{
			"pattern":     s.Pattern,
			"replacement": s.Replacement,
			"ignore_case": s.IgnoreCase,
		})
	}
	return out
}

func equivalentMaps(eqs []matching.Equivalent) []map[string]any {
	out := make([]map[string]any, 0, len(eqs))
	for _, e := range eqs {
		out = append(out, map[string]any{"word": e.Word, "digit": e.Digit})
	}
	return out
}

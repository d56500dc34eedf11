package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
)

// FileEnv names the variable pointing at an optional TOML config file
const FileEnv = "CYBERSHIELD_CONFIG"

// Config holds all application configuration
type Config struct {
	Corpus     CorpusConfig     `toml:"corpus"`
	Cache      CacheConfig      `toml:"cache"`
	Rules      RulesConfig      `toml:"rules"`
	Escalation EscalationConfig `toml:"escalation"`
	Audit      AuditConfig      `toml:"audit"`
	Logging    LoggingConfig    `toml:"logging"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Scoring    analyzer.Labels  `toml:"scoring"`
}

// CorpusConfig holds reference corpus settings
type CorpusConfig struct {
	Path        string        `toml:"path"` // csv, tsv or xlsx; empty = no corpus
	WaitTimeout time.Duration `toml:"wait_timeout"`
}

// CacheConfig holds analysis result cache settings
type CacheConfig struct {
	MaxEntries int           `toml:"max_entries"` // 0 = unbounded
	TTL        time.Duration `toml:"ttl"`         // 0 = no expiry
}

// RulesConfig holds crime rule table settings
type RulesConfig struct {
	Path string `toml:"path"` // empty = embedded rule table
}

// EscalationConfig holds escalation policy settings
type EscalationConfig struct {
	PolicyPath   string `toml:"policy_path"` // empty = embedded policy
	WatchChanges bool   `toml:"watch"`
}

// AuditConfig holds audit log settings
type AuditConfig struct {
	Path string `toml:"path"` // empty = disabled
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json, text
	Output string `toml:"output"` // stdout, stderr, file path
}

// MetricsConfig holds metrics/monitoring settings
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return &Config{
		Corpus: CorpusConfig{
			WaitTimeout: analyzer.DefaultCorpusWait,
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
		Scoring: analyzer.DefaultLabels(),
	}
}

// Load builds the configuration from defaults, the optional TOML file
// named by CYBERSHIELD_CONFIG and finally environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile overlays the settings present in a TOML file
func (c *Config) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings with any environment variables that are set
func (c *Config) ApplyEnv() {
	c.Corpus.Path = getEnv("CORPUS_PATH", c.Corpus.Path)
	c.Corpus.WaitTimeout = getEnvDuration("CORPUS_WAIT_TIMEOUT", c.Corpus.WaitTimeout)

	c.Cache.MaxEntries = getEnvInt("CACHE_MAX_ENTRIES", c.Cache.MaxEntries)
	c.Cache.TTL = getEnvDuration("CACHE_TTL", c.Cache.TTL)

	c.Rules.Path = getEnv("RULES_PATH", c.Rules.Path)

	c.Escalation.PolicyPath = getEnv("ESCALATION_POLICY_PATH", c.Escalation.PolicyPath)
	c.Escalation.WatchChanges = getEnvBool("ESCALATION_WATCH", c.Escalation.WatchChanges)

	c.Audit.Path = getEnv("AUDIT_LOG_PATH", c.Audit.Path)

	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("LOG_FORMAT", c.Logging.Format)
	c.Logging.Output = getEnv("LOG_OUTPUT", c.Logging.Output)

	c.Metrics.Enabled = getEnvBool("METRICS_ENABLED", c.Metrics.Enabled)
	c.Metrics.Addr = getEnv("METRICS_ADDR", c.Metrics.Addr)

	c.Scoring.HighRisk = getEnvList("SCORING_HIGH_RISK_LABELS", c.Scoring.HighRisk)
	c.Scoring.Critical = getEnvList("SCORING_CRITICAL_LABELS", c.Scoring.Critical)
	c.Scoring.Harassment = getEnvList("SCORING_HARASSMENT_LABELS", c.Scoring.Harassment)
	c.Scoring.Mild = getEnvList("SCORING_MILD_LABELS", c.Scoring.Mild)
}

// AnalyzerOptions maps the configuration onto scoring engine options
func (c *Config) AnalyzerOptions() analyzer.Options {
	labels := c.Scoring
	return analyzer.Options{
		CorpusWait:      c.Corpus.WaitTimeout,
		CacheMaxEntries: c.Cache.MaxEntries,
		CacheTTL:        c.Cache.TTL,
		Labels:          &labels,
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blank items
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

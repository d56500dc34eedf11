package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackrose-blackhat/cybershield/backend/internal/analyzer"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.Corpus.WaitTimeout)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Zero(t, cfg.Cache.TTL)
	assert.Empty(t, cfg.Rules.Path)
	assert.Empty(t, cfg.Escalation.PolicyPath)
	assert.Empty(t, cfg.Audit.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, analyzer.DefaultLabels(), cfg.Scoring)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("CORPUS_PATH", "data/dataset.xlsx")
	t.Setenv("CORPUS_WAIT_TIMEOUT", "750ms")
	t.Setenv("CACHE_MAX_ENTRIES", "0")
	t.Setenv("CACHE_TTL", "10m")
	t.Setenv("ESCALATION_WATCH", "true")
	t.Setenv("AUDIT_LOG_PATH", "audit.jsonl")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SCORING_CRITICAL_LABELS", "Severe, ,Critical")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/dataset.xlsx", cfg.Corpus.Path)
	assert.Equal(t, 750*time.Millisecond, cfg.Corpus.WaitTimeout)
	assert.Equal(t, 0, cfg.Cache.MaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Escalation.WatchChanges)
	assert.Equal(t, "audit.jsonl", cfg.Audit.Path)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"Severe", "Critical"}, cfg.Scoring.Critical)
	assert.Equal(t, []string{"Harassment"}, cfg.Scoring.Harassment)
}

func TestLoad_InvalidEnvKeepsDefault(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("CACHE_MAX_ENTRIES", "lots")
	t.Setenv("CORPUS_WAIT_TIMEOUT", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, 3*time.Second, cfg.Corpus.WaitTimeout)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cybershield.toml")
	data := `
[corpus]
path = "from-file.csv"
wait_timeout = "5s"

[cache]
max_entries = 64

[logging]
level = "debug"

[scoring]
mild = ["Mild", "Low"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv(FileEnv, path)
	t.Setenv("CORPUS_PATH", "from-env.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env.csv", cfg.Corpus.Path)
	assert.Equal(t, 5*time.Second, cfg.Corpus.WaitTimeout)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, []string{"Mild", "Low"}, cfg.Scoring.Mild)
	assert.Equal(t, []string{"High-Risk", "Threat"}, cfg.Scoring.HighRisk)
}

func TestLoad_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("[corpus\npath ="), 0o644))
	t.Setenv(FileEnv, path)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "missing.toml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Cache.TTL = time.Minute

	opts := cfg.AnalyzerOptions()
	assert.Equal(t, 3*time.Second, opts.CorpusWait)
	assert.Equal(t, 1024, opts.CacheMaxEntries)
	assert.Equal(t, time.Minute, opts.CacheTTL)
	require.NotNil(t, opts.Labels)
	assert.Equal(t, cfg.Scoring, *opts.Labels)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	assert.Equal(t, "EBAY_US", cfg.Ebay.Marketplace)
	assert.Equal(t, 5.0, cfg.Ebay.RateLimit.PerSecond)
	assert.Equal(t, int64(5000), cfg.Ebay.RateLimit.DailyLimit)
	assert.False(t, cfg.Ebay.Enabled())

	assert.Equal(t, 16, cfg.Embedding.BatchSize)
	assert.Equal(t, 100*time.Millisecond, cfg.Embedding.BatchDelay)
	assert.Equal(t, 3, cfg.Embedding.MaxRetries)

	assert.Equal(t, 0.35, cfg.Ranking.Weights.Semantic)
	assert.Equal(t, 0.35, cfg.Ranking.Weights.Deal)
	assert.Equal(t, 0.30, cfg.Ranking.Weights.Preference)

	assert.Equal(t, "static", cfg.Baselines.Source)
	assert.Equal(t, 6*time.Hour, cfg.Baselines.RefreshInterval)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_FullConfig(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `
server:
  host: 127.0.0.1
  port: 9090
ebay:
  app_id: my-app
  cert_id: my-cert
  page_size: 50
embedding:
  endpoint: https://api.example.com
  model: text-embedding-3-small
  api_key: sk-test
  batch_size: 8
ranking:
  weights:
    semantic: 0.5
    deal: 0.3
    preference: 0.2
baselines:
  source: static
  static:
    computers: 400
    electronics: 150
  refresh_interval: 1h
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Ebay.Enabled())
	assert.Equal(t, 50, cfg.Ebay.PageSize)
	assert.Equal(t, 8, cfg.Embedding.BatchSize)
	assert.Equal(t, 0.5, cfg.Ranking.Weights.Semantic)
	assert.Equal(t, 400.0, cfg.Baselines.Static["computers"])
	assert.Equal(t, time.Hour, cfg.Baselines.RefreshInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_EMBED_KEY", "secret-key")

	cfg, err := Load(writeConfig(t, `
embedding:
  endpoint: https://api.example.com
  model: m
  api_key: ${TEST_EMBED_KEY}
`))
	require.NoError(t, err)
	assert.Equal(t, "secret-key", cfg.Embedding.APIKey)
}

func TestLoad_ValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "weights do not sum to one",
			yaml: `
ranking:
  weights:
    semantic: 0.9
    deal: 0.9
    preference: 0.9
`,
			wantErr: "must sum to 1.0",
		},
		{
			name: "negative weight",
			yaml: `
ranking:
  weights:
    semantic: -0.1
    deal: 0.6
    preference: 0.5
`,
			wantErr: "non-negative",
		},
		{
			name: "unknown baseline source",
			yaml: `
baselines:
  source: redis
`,
			wantErr: "baselines.source",
		},
		{
			name: "postgres source without host",
			yaml: `
baselines:
  source: postgres
  database:
    name: dealranker
    user: app
`,
			wantErr: "baselines.database.host",
		},
		{
			name: "non-positive static baseline",
			yaml: `
baselines:
  static:
    computers: -5
`,
			wantErr: "must be positive",
		},
		{
			name: "embedding endpoint without model",
			yaml: `
embedding:
  endpoint: https://api.example.com
`,
			wantErr: "embedding.model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Parallel()

	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "dealranker",
		User:     "app",
		Password: "pw",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 dbname=dealranker user=app password=pw sslmode=disable",
		d.DSN(),
	)
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "claude-sonnet-4-5-20250929", cfg.Anthropic.Model)
	assert.Equal(t, int64(2048), cfg.Anthropic.MaxTokens)
	assert.Equal(t, 2, cfg.Anthropic.MaxAttempts)
	assert.Equal(t, 60, cfg.Pipeline.StageTimeoutSecs)
	assert.Equal(t, 4, cfg.Pipeline.StageConcurrency)
	assert.Equal(t, 5, cfg.Pipeline.ExpenseConcurrency)
	assert.False(t, cfg.Pipeline.IncludeRevenueInRecommendations)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DEAL_STORE_DRIVER", "sqlite")
	t.Setenv("DEAL_ANTHROPIC_KEY", "sk-test")
	t.Setenv("DEAL_SERVER_PORT", "9090")
	t.Setenv("DEAL_PIPELINE_STAGE_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "sk-test", cfg.Anthropic.Key)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2, cfg.Pipeline.StageConcurrency)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Store:     StoreConfig{Driver: "postgres", DatabaseURL: "postgres://localhost/deals"},
			Anthropic: AnthropicConfig{Key: "sk-test"},
			Server:    ServerConfig{Port: 8080},
			Pipeline:  PipelineConfig{StageConcurrency: 4, ExpenseConcurrency: 5},
		}
	}

	assert.NoError(t, valid().Validate())

	noKey := valid()
	noKey.Anthropic.Key = ""
	err := noKey.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.key")

	noURL := valid()
	noURL.Store.DatabaseURL = ""
	require.Error(t, noURL.Validate())

	// SQLite needs no database URL.
	sqlite := valid()
	sqlite.Store.Driver = "sqlite"
	sqlite.Store.DatabaseURL = ""
	assert.NoError(t, sqlite.Validate())

	badPort := valid()
	badPort.Server.Port = 70000
	require.Error(t, badPort.Validate())

	badConc := valid()
	badConc.Pipeline.StageConcurrency = 0
	require.Error(t, badConc.Validate())
}

func TestInitLogger(t *testing.T) {
	assert.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "json"}))
	assert.NoError(t, InitLogger(LogConfig{Level: "info", Format: "console"}))
	assert.Error(t, InitLogger(LogConfig{Level: "nope", Format: "json"}))
}

package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Standards StandardsConfig `yaml:"standards" mapstructure:"standards"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// StandardsConfig configures the industry-benchmark lookup.
type StandardsConfig struct {
	Key      string  `yaml:"key" mapstructure:"key"`
	BaseURL  string  `yaml:"base_url" mapstructure:"base_url"`
	File     string  `yaml:"file" mapstructure:"file"`
	RateRPS  float64 `yaml:"rate_rps" mapstructure:"rate_rps"`
	Disabled bool    `yaml:"disabled" mapstructure:"disabled"`
}

// PipelineConfig configures analysis orchestration behavior.
type PipelineConfig struct {
	StageTimeoutSecs   int `yaml:"stage_timeout_secs" mapstructure:"stage_timeout_secs"`
	StageConcurrency   int `yaml:"stage_concurrency" mapstructure:"stage_concurrency"`
	ExpenseConcurrency int `yaml:"expense_concurrency" mapstructure:"expense_concurrency"`
	PersistTimeoutSecs int `yaml:"persist_timeout_secs" mapstructure:"persist_timeout_secs"`
	// IncludeRevenueInRecommendations feeds the revenue-optimization stage
	// output into the recommendation prompt. Off by default.
	IncludeRevenueInRecommendations bool `yaml:"include_revenue_in_recommendations" mapstructure:"include_revenue_in_recommendations"`
}

// ServerConfig configures the analysis HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DEAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.max_attempts", 2)
	v.SetDefault("standards.base_url", "https://api.laundrybenchmarks.com/v1")
	v.SetDefault("standards.rate_rps", 10)
	v.SetDefault("pipeline.stage_timeout_secs", 60)
	v.SetDefault("pipeline.stage_concurrency", 4)
	v.SetDefault("pipeline.expense_concurrency", 5)
	v.SetDefault("pipeline.persist_timeout_secs", 120)
	v.SetDefault("pipeline.include_revenue_in_recommendations", false)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration is sufficient to run the pipeline.
func (c *Config) Validate() error {
	var missing []string
	if c.Anthropic.Key == "" {
		missing = append(missing, "anthropic.key (DEAL_ANTHROPIC_KEY)")
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		missing = append(missing, "store.database_url (DEAL_STORE_DATABASE_URL)")
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Pipeline.StageConcurrency <= 0 {
		return eris.New("config: pipeline.stage_concurrency must be positive")
	}
	if c.Pipeline.ExpenseConcurrency <= 0 {
		return eris.New("config: pipeline.expense_concurrency must be positive")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

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
	Apify     ApifyConfig     `yaml:"apify" mapstructure:"apify"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Source    SourceConfig    `yaml:"source" mapstructure:"source"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Sweep     SweepConfig     `yaml:"sweep" mapstructure:"sweep"`
	Tasks     TaskConfig      `yaml:"tasks" mapstructure:"tasks"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ApifyConfig holds Apify API settings and per-platform actor IDs.
type ApifyConfig struct {
	Token          string  `yaml:"token" mapstructure:"token"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	InstagramActor string  `yaml:"instagram_actor" mapstructure:"instagram_actor"`
	LinkedInActor  string  `yaml:"linkedin_actor" mapstructure:"linkedin_actor"`
	FacebookActor  string  `yaml:"facebook_actor" mapstructure:"facebook_actor"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// AnthropicConfig holds the generation engine settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SourceConfig configures profile-source fetch behavior.
type SourceConfig struct {
	ResultsLimit int      `yaml:"results_limit" mapstructure:"results_limit"`
	TimeoutSecs  int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	BoostTags    []string `yaml:"boost_tags" mapstructure:"boost_tags"`
}

// PipelineConfig configures the generation chain.
type PipelineConfig struct {
	MaxIterations int `yaml:"max_iterations" mapstructure:"max_iterations"`
}

// SweepConfig configures the periodic batch-ingestion sweep.
type SweepConfig struct {
	IntervalHours        int `yaml:"interval_hours" mapstructure:"interval_hours"`
	MaxConcurrentClients int `yaml:"max_concurrent_clients" mapstructure:"max_concurrent_clients"`
}

// TaskConfig configures the in-memory task registry.
type TaskConfig struct {
	GracePeriodSecs int `yaml:"grace_period_secs" mapstructure:"grace_period_secs"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("apify.base_url", "https://api.apify.com")
	v.SetDefault("apify.instagram_actor", "apify~instagram-hashtag-scraper")
	v.SetDefault("apify.linkedin_actor", "curious_coder~linkedin-profile-scraper")
	v.SetDefault("apify.facebook_actor", "scrapestorm~facebook-profiles-people-scraper")
	v.SetDefault("apify.rate_per_second", 2.0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 800)
	v.SetDefault("anthropic.temperature", 0.7)
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("source.results_limit", 20)
	v.SetDefault("source.timeout_secs", 120)
	v.SetDefault("pipeline.max_iterations", 3)
	v.SetDefault("sweep.interval_hours", 6)
	v.SetDefault("sweep.max_concurrent_clients", 5)
	v.SetDefault("tasks.grace_period_secs", 300)

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

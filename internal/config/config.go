package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Sults    SultsConfig    `yaml:"sults" mapstructure:"sults"`
	IBGE     IBGEConfig     `yaml:"ibge" mapstructure:"ibge"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Supabase SupabaseConfig `yaml:"supabase" mapstructure:"supabase"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SultsConfig holds the CRM API credentials and fetch tuning.
type SultsConfig struct {
	Token          string `yaml:"token" mapstructure:"token"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	PageSize       int    `yaml:"page_size" mapstructure:"page_size"`
	MaxConcurrent  int    `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
	RetryDelaySecs int    `yaml:"retry_delay_secs" mapstructure:"retry_delay_secs"`
}

// RetryDelay returns the configured base retry delay.
func (c SultsConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// IBGEConfig holds the gazetteer endpoint.
type IBGEConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ExportConfig configures the consolidated CSV artifact.
type ExportConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SupabaseConfig holds the downstream store credentials.
type SupabaseConfig struct {
	URL       string `yaml:"url" mapstructure:"url"`
	Key       string `yaml:"key" mapstructure:"key"`
	Table     string `yaml:"table" mapstructure:"table"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the trigger API server.
type ServerConfig struct {
	Port           int `yaml:"port" mapstructure:"port"`
	RunTimeoutSecs int `yaml:"run_timeout_secs" mapstructure:"run_timeout_secs"`
}

// RunTimeout returns the wall-clock limit for a triggered run.
func (c ServerConfig) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSecs) * time.Second
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
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. Secrets default to empty so the env override is visible to
	// Unmarshal.
	v.SetDefault("sults.token", "")
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("sults.base_url", "https://api.sults.com.br/api/v1/expansao")
	v.SetDefault("sults.page_size", 100)
	v.SetDefault("sults.max_concurrent", 10)
	v.SetDefault("sults.max_retries", 3)
	v.SetDefault("sults.retry_delay_secs", 1)
	v.SetDefault("ibge.base_url", "https://servicodados.ibge.gov.br/api/v1")
	v.SetDefault("export.path", "leads_sults_consolidado.csv")
	v.SetDefault("supabase.table", "leads")
	v.SetDefault("supabase.batch_size", 100)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads-cli.db")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.run_timeout_secs", 600)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

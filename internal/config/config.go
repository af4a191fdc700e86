package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/safety-index/internal/resilience"
	"github.com/sells-group/safety-index/internal/store"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Search     SearchConfig     `yaml:"search" mapstructure:"search"`
	Client     ClientConfig     `yaml:"client" mapstructure:"client"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Import     ImportConfig     `yaml:"import" mapstructure:"import"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and tunes the data store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver" validate:"oneof=postgres sqlite"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns" validate:"gte=0"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns" validate:"gte=0,ltefield=MaxConns"`
}

// Pool returns the Postgres pool settings.
func (c StoreConfig) Pool() *store.PoolConfig {
	return &store.PoolConfig{MaxConns: c.MaxConns, MinConns: c.MinConns}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int      `yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
	AllowedOrigins  []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ReadTimeoutSecs int      `yaml:"read_timeout_secs" mapstructure:"read_timeout_secs" validate:"gte=0"`
}

// SearchConfig tunes search sessions.
type SearchConfig struct {
	PageSize        int `yaml:"page_size" mapstructure:"page_size" validate:"gte=1,lte=100"`
	TextDebounceMs  int `yaml:"text_debounce_ms" mapstructure:"text_debounce_ms" validate:"gte=0"`
	NAICSDebounceMs int `yaml:"naics_debounce_ms" mapstructure:"naics_debounce_ms" validate:"gte=0"`
	RecentYears     int `yaml:"recent_years" mapstructure:"recent_years" validate:"gte=0"`
}

// TextDebounce is the debounce window of typed filter input.
func (c SearchConfig) TextDebounce() time.Duration {
	return time.Duration(c.TextDebounceMs) * time.Millisecond
}

// NAICSDebounce is the debounce window of the industry search box.
func (c SearchConfig) NAICSDebounce() time.Duration {
	return time.Duration(c.NAICSDebounceMs) * time.Millisecond
}

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs" validate:"gte=0"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec" validate:"gte=0"`
}

// ResilienceConfig bounds retries and the circuit breaker around the store.
type ResilienceConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms" validate:"gte=0"`
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold" validate:"gte=0"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs" validate:"gte=0"`
}

// Policy returns the retry policy.
func (c ResilienceConfig) Policy() resilience.Policy {
	p := resilience.DefaultPolicy()
	p.Attempts = c.MaxAttempts
	if c.InitialBackoffMs > 0 {
		p.Backoff = time.Duration(c.InitialBackoffMs) * time.Millisecond
	}
	return p
}

// Breaker returns the circuit breaker settings. Zero values fall back to the
// breaker defaults.
func (c ResilienceConfig) Breaker() resilience.BreakerConfig {
	return resilience.BreakerConfig{
		Threshold: c.FailureThreshold,
		Cooldown:  time.Duration(c.ResetTimeoutSecs) * time.Second,
	}
}

// ImportConfig configures data imports.
type ImportConfig struct {
	TempDir   string `yaml:"temp_dir" mapstructure:"temp_dir"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size" validate:"gte=1"`
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Load reads configuration from .env, config.yaml and the environment.
// Environment variables use the SAFETY_ prefix with dots as underscores.
func Load() (*Config, error) {
	// .env only fills variables that are not already set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, eris.Wrap(err, "config: read .env")
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SAFETY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("store.database_url", "SAFETY_STORE_DATABASE_URL", "DATABASE_URL")

	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.database_url", "")
	v.SetDefault("store.sqlite_path", "safety.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout_secs", 15)
	v.SetDefault("search.page_size", 10)
	v.SetDefault("search.text_debounce_ms", 700)
	v.SetDefault("search.naics_debounce_ms", 200)
	v.SetDefault("search.recent_years", 2)
	v.SetDefault("client.base_url", "")
	v.SetDefault("client.timeout_secs", 15)
	v.SetDefault("client.rate_per_sec", 10)
	v.SetDefault("resilience.max_attempts", 3)
	v.SetDefault("resilience.initial_backoff_ms", 200)
	v.SetDefault("resilience.failure_threshold", 5)
	v.SetDefault("resilience.reset_timeout_secs", 30)
	v.SetDefault("import.temp_dir", "")
	v.SetDefault("import.batch_size", 5000)
	v.SetDefault("import.user_agent", "safety-index/1.0")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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

var validate = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	vd.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return vd
}

// Validate checks field constraints, then what mode needs: "serve" and
// "store" need a reachable store, "client" an API base URL.
func (c *Config) Validate(mode string) error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return eris.Wrap(err, "config: validate")
		}
		for _, fe := range verrs {
			problems = append(problems, describe(fe))
		}
	}

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		problems = append(problems, c.storeProblems()...)
	case "store":
		problems = append(problems, c.storeProblems()...)
	case "client":
		if c.Client.BaseURL == "" {
			problems = append(problems, "client.base_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			return []string{"store.database_url is required"}
		}
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return []string{"store.sqlite_path is required"}
		}
	}
	return nil
}

// describe renders a field error with its config key, e.g.
// "search.page_size must be <= 100".
func describe(fe validator.FieldError) string {
	_, key, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", key, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be >= %s", key, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be <= %s", key, fe.Param())
	case "ltefield":
		return fmt.Sprintf("%s must not exceed %s", key, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a url", key)
	default:
		return fmt.Sprintf("%s failed %s", key, fe.Tag())
	}
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

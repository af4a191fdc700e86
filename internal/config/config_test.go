package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// chdirTemp moves into an empty directory so no config.yaml or .env is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "safety.db", cfg.Store.SQLitePath)
	assert.Equal(t, int32(10), cfg.Store.MaxConns)
	assert.Equal(t, int32(2), cfg.Store.MinConns)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 10, cfg.Search.PageSize)
	assert.Equal(t, 700*time.Millisecond, cfg.Search.TextDebounce())
	assert.Equal(t, 200*time.Millisecond, cfg.Search.NAICSDebounce())
	assert.Equal(t, 2, cfg.Search.RecentYears)
	assert.Equal(t, 15, cfg.Client.TimeoutSecs)
	assert.InDelta(t, 10.0, cfg.Client.RatePerSec, 0.001)
	assert.Equal(t, 3, cfg.Resilience.MaxAttempts)
	assert.Equal(t, 5000, cfg.Import.BatchSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
  sqlite_path: /tmp/safety-test.db
log:
  level: debug
  format: console
server:
  port: 9090
  allowed_origins:
    - https://safety.example.com
search:
  page_size: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/safety-test.db", cfg.Store.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://safety.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 25, cfg.Search.PageSize)
	// Defaults still apply for unset values
	assert.Equal(t, 700, cfg.Search.TextDebounceMs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	t.Setenv("SAFETY_STORE_DRIVER", "postgres")
	t.Setenv("SAFETY_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("SAFETY_SERVER_PORT=3000\nSAFETY_CLIENT_BASE_URL=http://localhost:3000\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("SAFETY_SERVER_PORT")
		_ = os.Unsetenv("SAFETY_CLIENT_BASE_URL")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Client.BaseURL)
}

func TestLoadDatabaseURLFallback(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/safety")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/safety", cfg.Store.DatabaseURL)
}

func TestResilienceSettings(t *testing.T) {
	rc := ResilienceConfig{MaxAttempts: 4, InitialBackoffMs: 50, FailureThreshold: 3, ResetTimeoutSecs: 10}

	p := rc.Policy()
	assert.Equal(t, 4, p.Attempts)
	assert.Equal(t, 50*time.Millisecond, p.Backoff)

	b := rc.Breaker()
	assert.Equal(t, 3, b.Threshold)
	assert.Equal(t, 10*time.Second, b.Cooldown)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	return &Config{
		Store:      StoreConfig{Driver: DriverPostgres, DatabaseURL: "postgres://localhost/test", MaxConns: 10, MinConns: 2},
		Server:     ServerConfig{Port: 8080},
		Search:     SearchConfig{PageSize: 10, TextDebounceMs: 700, NAICSDebounceMs: 200, RecentYears: 2},
		Client:     ClientConfig{TimeoutSecs: 15, RatePerSec: 10},
		Resilience: ResilienceConfig{MaxAttempts: 3},
		Import:     ImportConfig{BatchSize: 5000},
		Log:        LogConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("serve"))
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidate_StoreURL(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.Driver = DriverSQLite
	cfg.Store.SQLitePath = "safety.db"
	assert.NoError(t, cfg.Validate("store"))
}

func TestValidate_FieldRules(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"
	cfg.Search.PageSize = 500
	cfg.Log.Format = "xml"
	cfg.Store.MinConns = 20

	err := cfg.Validate("store")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be one of postgres sqlite")
	assert.Contains(t, err.Error(), "search.page_size must be <= 100")
	assert.Contains(t, err.Error(), "log.format must be one of json console")
	assert.Contains(t, err.Error(), "store.min_conns must not exceed MaxConns")
}

func TestValidate_ServePort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidate_Client(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("client")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client.base_url is required")

	cfg.Client.BaseURL = "not a url"
	err = cfg.Validate("client")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client.base_url must be a url")

	cfg.Client.BaseURL = "http://localhost:8080"
	assert.NoError(t, cfg.Validate("client"))
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

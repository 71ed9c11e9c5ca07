package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, env, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, env+".yaml"), []byte(content), 0o600))
	return dir
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(Test, []string{t.TempDir()})

	require.NoError(t, err)
	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowThreshold)
	assert.Equal(t, "read_committed", cfg.Transaction.Isolation)
	assert.Equal(t, 50*time.Millisecond, cfg.Transaction.RetryInterval)
	assert.Equal(t, "10.00", cfg.Ledger.MinimumOpeningBalance)
	assert.Equal(t, 7*24*time.Hour, cfg.Ledger.RecentAccountsWindow)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_FileValues(t *testing.T) {
	dir := writeConfig(t, Test, `
database:
  driver: memory
ledger:
  minimumOpeningBalance: "25.50"
  historyLimit: 10
cache:
  enabled: true
  ttl: 5
cors:
  allowedOrigins: ["http://app.test"]
`)

	cfg, err := Load(Test, []string{dir})

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 10, cfg.Ledger.HistoryLimit)
	assert.Equal(t, 5*time.Second, cfg.Cache.TTL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, []string{"http://app.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.LedgerPolicy().MinimumOpeningBalance.Equal(decimal.RequireFromString("25.50")))
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := writeConfig(t, Test, `
database:
  host: file-host
  retryAttempts: 3
`)
	t.Setenv("BP_DB_HOST", "env-host")
	t.Setenv("BP_DB_PORT", "6543")
	t.Setenv("BP_DB_RETRY_ATTEMPTS", "0")
	t.Setenv("BP_TX_MAX_RETRIES", "0")
	t.Setenv("BP_LEDGER_HISTORYLIMIT", "15")
	t.Setenv("BP_RATELIMIT_RATE", "5-M")

	cfg, err := Load(Test, []string{dir})

	require.NoError(t, err)
	assert.Equal(t, "env-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, 0, cfg.Database.RetryAttempts)
	assert.Equal(t, 0, cfg.Transaction.MaxRetries)
	assert.Equal(t, 15, cfg.Ledger.HistoryLimit)
	assert.Equal(t, "5-M", cfg.RateLimit.Rate)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := writeConfig(t, Test, "server: [unclosed")

	_, err := Load(Test, []string{dir})

	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(Test, []string{t.TempDir()})
	require.NoError(t, err)
	cfg.Database.Driver = "memory"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid memory config", func(*Config) {}, ""},
		{"valid postgres config", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.Host = "localhost"
			c.Database.Username = "ledger"
			c.Database.Database = "bank_ledger"
		}, ""},
		{"postgres without host", func(c *Config) { c.Database.Driver = "postgres" }, "database host is required"},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }, "invalid environment value"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad minimum balance", func(c *Config) { c.Ledger.MinimumOpeningBalance = "ten" }, "ledger.minimumOpeningBalance"},
		{"minimum balance with three decimals", func(c *Config) { c.Ledger.MinimumOpeningBalance = "10.005" }, "ledger.minimumOpeningBalance"},
		{"history above max", func(c *Config) { c.Ledger.HistoryLimit = 500 }, "ledger.historyLimit"},
		{"bad rate", func(c *Config) { c.RateLimit.Rate = "fast" }, "rateLimit.rate"},
		{"disabled rate is not parsed", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.Rate = "fast"
		}, ""},
		{"cache without addr", func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Addr = ""
		}, "cache.addr"},
		{"negative jitter", func(c *Config) { c.Transaction.JitterFactor = -0.5 }, "jitterFactor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToDatabaseConfig(t *testing.T) {
	cfg := validConfig(t)
	cfg.Database.Driver = "Postgres"
	cfg.Transaction.Isolation = "serializable"
	cfg.Transaction.MaxRetries = 5

	dbConfig := cfg.ToDatabaseConfig()

	assert.Equal(t, "postgres", dbConfig.Driver)
	assert.Equal(t, "serializable", dbConfig.Isolation)
	assert.Equal(t, 5, dbConfig.Retry.MaxRetries)
	assert.Equal(t, cfg.Transaction.MaxRetryInterval, dbConfig.Retry.MaxInterval)
	assert.Equal(t, cfg.Database.QueryTimeout, dbConfig.QueryTimeout)
}

func TestQueryLimits(t *testing.T) {
	limits := validConfig(t).QueryLimits()

	assert.Equal(t, 20, limits.HistoryLimit)
	assert.Equal(t, 100, limits.MaxHistoryLimit)
	assert.Equal(t, 168*time.Hour, limits.RecentAccountsWindow)
}

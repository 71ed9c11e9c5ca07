package config

import (
	"fmt"
	"strings"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/usecase/query"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/cache"
	"github.com/amirhossein-jamali/bank-ledger/internal/infrastructure/adapter/database"
	"github.com/ulule/limiter/v3"
)

// Validate ensures the configuration can start the service
func (c *Config) Validate() error {
	var problems []string

	switch c.Environment {
	case Development, Production, Test:
	default:
		return fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			c.Environment, Development, Production, Test)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, "server.port must be between 1 and 65535")
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdownTimeout must be positive")
	}

	if err := c.ToDatabaseConfig().Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Transaction.MaxRetries < 0 {
		problems = append(problems, "transaction.maxRetries cannot be negative")
	}
	if c.Transaction.JitterFactor < 0 || c.Transaction.JitterFactor > 1 {
		problems = append(problems, "transaction.jitterFactor must be between 0 and 1")
	}

	if _, err := entity.ParseAmount(c.Ledger.MinimumOpeningBalance); err != nil {
		problems = append(problems, fmt.Sprintf("ledger.minimumOpeningBalance: %v", err))
	}
	if c.Ledger.HistoryLimit <= 0 || c.Ledger.MaxHistoryLimit < c.Ledger.HistoryLimit {
		problems = append(problems, "ledger.historyLimit must be positive and not above ledger.maxHistoryLimit")
	}
	if c.Ledger.MaxListLimit <= 0 {
		problems = append(problems, "ledger.maxListLimit must be positive")
	}

	if c.Cache.Enabled && c.Cache.Addr == "" {
		problems = append(problems, "cache.addr is required when the cache is enabled")
	}
	if c.RateLimit.Enabled {
		if _, err := limiter.NewRateFromFormatted(c.RateLimit.Rate); err != nil {
			problems = append(problems, fmt.Sprintf("rateLimit.rate: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// ToDatabaseConfig maps the database and transaction sections onto the adapter config
func (c *Config) ToDatabaseConfig() *database.Config {
	return &database.Config{
		Driver:          strings.ToLower(c.Database.Driver),
		Host:            c.Database.Host,
		Port:            c.Database.Port,
		Username:        c.Database.Username,
		Password:        c.Database.Password,
		Database:        c.Database.Database,
		SSLMode:         c.Database.SSLMode,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
		ConnMaxIdleTime: c.Database.ConnMaxIdleTime,
		QueryTimeout:    c.Database.QueryTimeout,
		SlowThreshold:   c.Database.SlowThreshold,
		LogLevel:        c.Database.LogLevel,
		Isolation:       c.Transaction.Isolation,
		RetryAttempts:   c.Database.RetryAttempts,
		RetryDelay:      c.Database.RetryDelay,
		Retry: database.RetryConfig{
			MaxRetries:    c.Transaction.MaxRetries,
			RetryInterval: c.Transaction.RetryInterval,
			MaxInterval:   c.Transaction.MaxRetryInterval,
			JitterFactor:  c.Transaction.JitterFactor,
		},
	}
}

// LedgerPolicy returns the business rules for the ledger engine. Call after Validate.
func (c *Config) LedgerPolicy() ledger.Policy {
	policy := ledger.DefaultPolicy()
	if minimum, err := entity.ParseAmount(c.Ledger.MinimumOpeningBalance); err == nil {
		policy.MinimumOpeningBalance = minimum
	}
	return policy
}

// QueryLimits returns the read limits for the query service
func (c *Config) QueryLimits() query.Limits {
	return query.Limits{
		HistoryLimit:         c.Ledger.HistoryLimit,
		MaxHistoryLimit:      c.Ledger.MaxHistoryLimit,
		MaxListLimit:         c.Ledger.MaxListLimit,
		RecentAccountsWindow: c.Ledger.RecentAccountsWindow,
	}
}

// ToCacheConfig maps the cache section onto the Redis adapter config
func (c *Config) ToCacheConfig() cache.Config {
	return cache.Config{
		Addr:     c.Cache.Addr,
		Password: c.Cache.Password,
		DB:       c.Cache.DB,
		TTL:      c.Cache.TTL,
	}
}

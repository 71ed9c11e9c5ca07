package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Ledger      LedgerConfig      `mapstructure:"ledger"`
	Cache       CacheConfig       `mapstructure:"cache"`
	RateLimit   RateLimitConfig   `mapstructure:"rateLimit"`
	CORS        CORSConfig        `mapstructure:"cors"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	SlowThreshold   time.Duration `mapstructure:"slowThresholdMs"` // milliseconds
	LogLevel        string        `mapstructure:"logLevel"`        // gorm: silent, error, warn or info
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// TransactionConfig controls the commit unit around each ledger operation
type TransactionConfig struct {
	Isolation        string        `mapstructure:"isolation"` // read_committed, repeatable_read or serializable
	MaxRetries       int           `mapstructure:"maxRetries"`
	RetryInterval    time.Duration `mapstructure:"retryIntervalMs"`    // milliseconds
	MaxRetryInterval time.Duration `mapstructure:"maxRetryIntervalMs"` // milliseconds
	JitterFactor     float64       `mapstructure:"jitterFactor"`
}

// LedgerConfig contains business rules and read limits
type LedgerConfig struct {
	MinimumOpeningBalance string        `mapstructure:"minimumOpeningBalance"`
	HistoryLimit          int           `mapstructure:"historyLimit"`
	MaxHistoryLimit       int           `mapstructure:"maxHistoryLimit"`
	MaxListLimit          int           `mapstructure:"maxListLimit"`
	RecentAccountsWindow  time.Duration `mapstructure:"recentAccountsWindowHours"` // hours
}

// CacheConfig contains the optional Redis balance cache settings
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"` // seconds
}

// RateLimitConfig contains per-client request limits
type RateLimitConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Rate    string `mapstructure:"rate"` // e.g. 100-S, 1000-M
}

// CORSConfig lists the browser origins allowed to call the API
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

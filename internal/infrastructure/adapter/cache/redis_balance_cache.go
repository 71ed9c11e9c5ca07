package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/bank-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/bank-ledger/internal/domain/port/persistence"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

const (
	keyPrefix           = "ledger:account:"
	generationKeyPrefix = "ledger:account-gen:"
)

// setScript writes the snapshot only while the generation is still the one the caller read
const setScript = `
if (redis.call('GET', KEYS[2]) or '0') ~= ARGV[2] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[1])
end
return 1
`

// invalidateScript advances the generation and drops the snapshot atomically
const invalidateScript = `
redis.call('INCR', KEYS[2])
return redis.call('DEL', KEYS[1])
`

// Config holds the Redis connection settings
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// snapshot is the cached form of an account
type snapshot struct {
	AccountNumber uint64          `json:"account_number"`
	Name          string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// RedisBalanceCache keeps account snapshots in Redis with a TTL
type RedisBalanceCache struct {
	client *redis.Client
	ttl    time.Duration
	logger coreport.Logger
}

var _ persistence.BalanceCache = (*RedisBalanceCache)(nil)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, config Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRedisBalanceCache creates a cache on an existing client
func NewRedisBalanceCache(client *redis.Client, ttl time.Duration, logger coreport.Logger) *RedisBalanceCache {
	return &RedisBalanceCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Key returns the Redis key of an account snapshot
func Key(accountNumber uint64) string {
	return keyPrefix + strconv.FormatUint(accountNumber, 10)
}

// GenerationKey returns the Redis key of an account's invalidation counter
func GenerationKey(accountNumber uint64) string {
	return generationKeyPrefix + strconv.FormatUint(accountNumber, 10)
}

// Encode serializes an account snapshot
func Encode(account *entity.Account) ([]byte, error) {
	return json.Marshal(snapshot{
		AccountNumber: account.Number,
		Name:          account.Name,
		Balance:       account.Balance(),
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	})
}

// Get returns the cached snapshot, with found=false on a miss
func (c *RedisBalanceCache) Get(ctx context.Context, accountNumber uint64) (*entity.Account, bool, error) {
	data, err := c.client.Get(ctx, Key(accountNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		c.logger.Warn("Dropping unreadable cache entry", map[string]any{
			"account_number": accountNumber,
			"error":          err.Error(),
		})
		_ = c.client.Del(ctx, Key(accountNumber)).Err()
		return nil, false, nil
	}

	return entity.RestoreAccount(s.AccountNumber, s.Name, s.Balance, s.CreatedAt, s.UpdatedAt), true, nil
}

// Generation returns the invalidation counter, 0 when the account was never invalidated
func (c *RedisBalanceCache) Generation(ctx context.Context, accountNumber uint64) (uint64, error) {
	generation, err := c.client.Get(ctx, GenerationKey(accountNumber)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation: %w", err)
	}
	return generation, nil
}

// Set stores a snapshot for the configured TTL unless the account was invalidated after generation was read
func (c *RedisBalanceCache) Set(ctx context.Context, account *entity.Account, generation uint64) (bool, error) {
	data, err := Encode(account)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}

	stored, err := c.client.Eval(ctx, setScript,
		[]string{Key(account.Number), GenerationKey(account.Number)},
		string(data), strconv.FormatUint(generation, 10), strconv.FormatInt(c.ttl.Milliseconds(), 10),
	).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the snapshot and advances the generation
func (c *RedisBalanceCache) Invalidate(ctx context.Context, accountNumber uint64) error {
	err := c.client.Eval(ctx, invalidateScript,
		[]string{Key(accountNumber), GenerationKey(accountNumber)},
	).Err()
	if err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

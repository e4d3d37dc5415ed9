package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Domenick1991/parkingblisko/config"
	"github.com/Domenick1991/parkingblisko/internal/parser"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client   *redis.Client
	parseTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, parseTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		parseTTL: parseTTL,
	}
}

// GetParsed returns the cached parse of text, or nil when there is none.
func (c *RedisCache) GetParsed(ctx context.Context, text string) (*parser.Result, error) {
	data, err := c.client.Get(ctx, parseKey(text)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var res parser.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *RedisCache) SetParsed(ctx context.Context, text string, res *parser.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, parseKey(text), payload, c.parseTTL).Err()
}

// AcquireSubmissionLock reports whether this caller is the first to submit
// the reservation identified by fingerprint within ttl.
func (c *RedisCache) AcquireSubmissionLock(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, submissionLockKey(fingerprint), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseSubmissionLock(ctx context.Context, fingerprint string) error {
	return c.client.Del(ctx, submissionLockKey(fingerprint)).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func parseKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "cache:parse:" + hex.EncodeToString(sum[:])
}

func submissionLockKey(fingerprint string) string {
	return "lock:submission:" + fingerprint
}

package trends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/metrics"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned when a cache holds no derivation.
var ErrCacheMiss = errors.New("no cached summaries")

// SummaryCache keeps the summaries of the latest derivation so a restarted
// or failing service can keep serving them.
type SummaryCache interface {
	SaveLatest(ctx context.Context, snapshotID string, summaries []results.LocalBodySummary) error
	LoadLatest(ctx context.Context) (snapshotID string, summaries []results.LocalBodySummary, err error)
}

const (
	latestKey       = "lsgtrends:latest"
	summariesPrefix = "lsgtrends:summaries:"
	DefaultCacheTTL = 24 * time.Hour
)

// RedisCache stores summaries as one JSON document per snapshot and a pointer
// to the latest one.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// OpenRedis returns nil when addr is empty.
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}

func (c *RedisCache) SaveLatest(ctx context.Context, snapshotID string, summaries []results.LocalBodySummary) error {
	payload, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, summariesPrefix+snapshotID, payload, c.ttl)
		p.Set(ctx, latestKey, snapshotID, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save %s: %w", snapshotID, err)
	}
	return nil
}

func (c *RedisCache) LoadLatest(ctx context.Context) (string, []results.LocalBodySummary, error) {
	id, err := c.rdb.Get(ctx, latestKey).Result()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMissesTotal.Inc()
		return "", nil, ErrCacheMiss
	}
	if err != nil {
		return "", nil, err
	}

	payload, err := c.rdb.Get(ctx, summariesPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMissesTotal.Inc()
		return "", nil, ErrCacheMiss
	}
	if err != nil {
		return "", nil, err
	}

	var summaries []results.LocalBodySummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return "", nil, fmt.Errorf("redis decode %s: %w", id, err)
	}
	metrics.CacheHitsTotal.Inc()
	return id, summaries, nil
}

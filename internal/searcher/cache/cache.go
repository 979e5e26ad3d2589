// Package cache keeps ranked results in Redis so repeated queries skip
// ranking until the index changes.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

const keyPrefix = "search:"

// Store is the key-value backend; Get reports absent keys with
// pkgredis.ErrMiss.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// QueryCache caches results per (instance, index generation, scope, query).
// Every index mutation bumps the generation, so entries written before it
// are never read again and simply expire. The instance id keeps processes
// that restart from generation zero apart.
type QueryCache struct {
	store    Store
	ttl      time.Duration
	instance string
	breaker  *resilience.Breaker
	metrics  *metrics.Metrics
	group    singleflight.Group
	logger   *slog.Logger
	hits     atomic.Int64
	misses   atomic.Int64
}

func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store:    store,
		ttl:      ttl,
		instance: strconv.FormatInt(time.Now().UnixNano(), 36),
		breaker:  resilience.NewBreaker("query-cache", resilience.BreakerConfig{}),
		metrics:  m,
		logger:   slog.Default().With("component", "query-cache"),
	}
}

// GetOrCompute returns the cached results of query, or computes, stores and
// returns them. Concurrent misses on one key compute once. Cache failures
// only cost the cache; compute errors are returned and never cached.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	query, scope string,
	generation uint64,
	compute func() ([]ranker.ScoredDoc, error),
) ([]ranker.ScoredDoc, bool, error) {
	key := c.buildKey(query, scope, generation)
	if docs, ok := c.get(ctx, key); ok {
		return docs, true, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		docs, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.([]ranker.ScoredDoc), false, nil
}

func (c *QueryCache) get(ctx context.Context, key string) ([]ranker.ScoredDoc, bool) {
	var data []byte
	err := c.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		data, err = c.store.Get(ctx, key)
		if errors.Is(err, pkgredis.ErrMiss) {
			return nil
		}
		return err
	})
	if err != nil || data == nil {
		if err != nil && !errors.Is(err, resilience.ErrBreakerOpen) {
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	var docs []ranker.ScoredDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	c.logger.Debug("cache hit", "key", key)
	return docs, true
}

func (c *QueryCache) set(ctx context.Context, key string, docs []ranker.ScoredDoc) {
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Do(ctx, func(ctx context.Context) error {
		return c.store.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrBreakerOpen) {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BreakerState reports whether the backend is currently being bypassed.
func (c *QueryCache) BreakerState() resilience.State {
	return c.breaker.State()
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) buildKey(query, scope string, generation uint64) string {
	raw := fmt.Sprintf("%s|g=%d|s=%s|q=%s", c.instance, generation, scope, normalizeQuery(query))
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeQuery makes word order and repeats irrelevant. Words may contain
// any byte from 0x20 up, so the parsed lists are JSON encoded rather than
// joined with a separator. Queries that do not parse are keyed verbatim;
// ranking rejects them anyway.
func normalizeQuery(query string) string {
	q, err := parser.Parse(query, nil)
	if err != nil {
		return "raw:" + query
	}
	key, err := json.Marshal(struct {
		Plus  []string `json:"p"`
		Minus []string `json:"m"`
	}{q.PlusWords, q.MinusWords})
	if err != nil {
		return "raw:" + query
	}
	return string(key)
}

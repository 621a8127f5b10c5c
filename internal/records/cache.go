package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/gauthierbraillon/sentiboard/internal/metrics"
	"github.com/gauthierbraillon/sentiboard/internal/sentiment"
)

const keyPrefix = "sentiboard:records:"

// Store holds encoded record snapshots keyed by company.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// MemoryStore is an in-process Store with LRU eviction and per-entry expiry.
type MemoryStore struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryStore creates a MemoryStore holding up to size entries for ttl each.
func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.lru.Get(key)
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, value)
	return nil
}

// RedisStore shares record snapshots between sentiboard processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

// CachedFetcher serves records from a Store and falls back to the wrapped Fetcher.
// Store failures never fail a fetch.
type CachedFetcher struct {
	next  Fetcher
	store Store
	log   *zap.SugaredLogger
}

func NewCachedFetcher(next Fetcher, store Store, log *zap.SugaredLogger) *CachedFetcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &CachedFetcher{next: next, store: store, log: log}
}

func (f *CachedFetcher) FetchRawSentimentRecords(ctx context.Context, companyID string) ([]sentiment.RawRecord, error) {
	key := cacheKey(companyID)

	data, ok, err := f.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordCache("error")
		f.log.Warnw("records cache read failed", "company", companyID, "error", err)
	case ok:
		raw, err := DecodeRecords(data)
		if err == nil {
			metrics.RecordCache("hit")
			return raw, nil
		}
		metrics.RecordCache("error")
		f.log.Warnw("discarding unreadable cache entry", "company", companyID, "error", err)
	default:
		metrics.RecordCache("miss")
	}

	raw, err := f.next.FetchRawSentimentRecords(ctx, companyID)
	if err != nil {
		return nil, err
	}

	encoded, err := EncodeRecords(raw)
	if err != nil {
		f.log.Warnw("records cache encode failed", "company", companyID, "error", err)
		return raw, nil
	}
	if err := f.store.Set(ctx, key, encoded); err != nil {
		f.log.Warnw("records cache write failed", "company", companyID, "error", err)
	}

	return raw, nil
}

// cacheKey keeps the company's case, matching the path Client requests.
func cacheKey(companyID string) string {
	return keyPrefix + strings.TrimSpace(companyID)
}

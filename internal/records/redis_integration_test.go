//go:build integration

package records

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRedisStore_RealServer verifies the cache against a real Redis.
// Run with: SENTIBOARD_TEST_REDIS_ADDR=localhost:6379 go test -tags=integration ./internal/records
func TestRedisStore_RealServer(t *testing.T) {
	addr := os.Getenv("SENTIBOARD_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("SENTIBOARD_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err(), "failed to connect to redis")
	t.Cleanup(func() {
		_ = client.Del(context.Background(), cacheKey("integration-co")).Err()
		_ = client.Close()
	})

	next := &countingFetcher{records: sampleRecords()}
	store := NewRedisStore(client, time.Minute)

	_, err := NewCachedFetcher(next, store, nil).FetchRawSentimentRecords(ctx, "integration-co")
	require.NoError(t, err)
	raw, err := NewCachedFetcher(next, store, nil).FetchRawSentimentRecords(ctx, "integration-co")
	require.NoError(t, err)

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, sampleRecords(), raw)

	ttl, err := client.TTL(ctx, cacheKey("integration-co")).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

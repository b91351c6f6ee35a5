package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "quiz:7", QuizKey(7))
	assert.Equal(t, "quiz:7:stats", QuizStatsKey(7))
	assert.Equal(t, "course:3:quizzes", CourseQuizzesKey(3))
	assert.Equal(t, "quiz:7*", QuizPattern(7))
}

// newTestCache connects to REDIS_TEST_URL; tests are skipped without it.
func newTestCache(t *testing.T) (CacheService, *redis.Client) {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, zap.NewNop()), client
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type entry struct {
		Title string `json:"title"`
	}
	require.NoError(t, c.Set(ctx, "test:quiz:1", entry{Title: "Fractions"}, time.Minute))

	var got entry
	require.NoError(t, c.Get(ctx, "test:quiz:1", &got))
	assert.Equal(t, "Fractions", got.Title)

	require.NoError(t, c.Delete(ctx, "test:quiz:1"))
	assert.ErrorIs(t, c.Get(ctx, "test:quiz:1", &got), ErrCacheMiss)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c, client := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "test:quiz:9", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "test:quiz:9:stats", 2, time.Minute))
	require.NoError(t, c.Set(ctx, "test:other", 3, time.Minute))

	require.NoError(t, c.DeletePattern(ctx, "test:quiz:9*"))

	n, err := client.Exists(ctx, "test:quiz:9", "test:quiz:9:stats", "test:other").Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_ = c.Delete(ctx, "test:other")
}

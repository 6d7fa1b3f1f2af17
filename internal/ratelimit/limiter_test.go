package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return New(client, cfg), mr
}

func TestAllowAuthWithinBudget(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		AuthMaxAttempts:   3,
		VerifyMaxAttempts: 2,
		Window:            time.Minute,
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.AllowAuth(ctx, "10.0.0.1"))
	}

	err := limiter.AllowAuth(ctx, "10.0.0.1")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestVerifyClassIsIndependentAndStricter(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		AuthMaxAttempts:   5,
		VerifyMaxAttempts: 1,
		Window:            time.Minute,
	})

	ctx := context.Background()
	require.NoError(t, limiter.AllowVerify(ctx, "10.0.0.1"))
	assert.ErrorIs(t, limiter.AllowVerify(ctx, "10.0.0.1"), ErrRateLimited)

	// The auth class for the same client is untouched.
	assert.NoError(t, limiter.AllowAuth(ctx, "10.0.0.1"))
}

func TestSeparateClientsSeparateBudgets(t *testing.T) {
	limiter, _ := newTestLimiter(t, Config{
		AuthMaxAttempts:   1,
		VerifyMaxAttempts: 1,
		Window:            time.Minute,
	})

	ctx := context.Background()
	require.NoError(t, limiter.AllowAuth(ctx, "10.0.0.1"))
	assert.ErrorIs(t, limiter.AllowAuth(ctx, "10.0.0.1"), ErrRateLimited)
	assert.NoError(t, limiter.AllowAuth(ctx, "10.0.0.2"))
}

func TestWindowExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{
		AuthMaxAttempts:   1,
		VerifyMaxAttempts: 1,
		Window:            time.Minute,
	})

	ctx := context.Background()
	require.NoError(t, limiter.AllowAuth(ctx, "10.0.0.1"))
	require.ErrorIs(t, limiter.AllowAuth(ctx, "10.0.0.1"), ErrRateLimited)

	mr.FastForward(time.Minute + time.Second)

	assert.NoError(t, limiter.AllowAuth(ctx, "10.0.0.1"))
}

func TestRedisDownFailsClosed(t *testing.T) {
	limiter, mr := newTestLimiter(t, Config{
		AuthMaxAttempts:   10,
		VerifyMaxAttempts: 10,
		Window:            time.Minute,
	})

	mr.Close()

	err := limiter.AllowAuth(context.Background(), "10.0.0.1")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}

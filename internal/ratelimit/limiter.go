// Package ratelimit throttles the sensitive auth endpoints with Redis
// fixed-window counters, keyed per client IP. Two classes exist: "auth" for
// register/login/forgot/reset and a stricter "verify" for OTP checks.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned once a client exceeds its window budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures. The limiter fails
	// closed: an unreachable counter store blocks the guarded endpoints.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// Config holds rate limiter tuning parameters.
type Config struct {
	AuthMaxAttempts   int
	VerifyMaxAttempts int
	Window            time.Duration
}

// Limiter enforces per-IP fixed windows using Redis counters. The
// increment-and-check is a single INCR, so two concurrent requests cannot
// both slip under the limit.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{
		redis:  redisClient,
		config: cfg,
	}
}

// AllowAuth charges one attempt against the auth class for the client.
func (l *Limiter) AllowAuth(ctx context.Context, ip string) error {
	return l.charge(ctx, authKey(ip), l.config.AuthMaxAttempts)
}

// AllowVerify charges one attempt against the verification class for the
// client.
func (l *Limiter) AllowVerify(ctx context.Context, ip string) error {
	return l.charge(ctx, verifyKey(ip), l.config.VerifyMaxAttempts)
}

func (l *Limiter) charge(ctx context.Context, key string, max int) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if count > int64(max) {
		return ErrRateLimited
	}

	return nil
}

func authKey(ip string) string {
	return "rl:auth:" + ip
}

func verifyKey(ip string) string {
	return "rl:verify:" + ip
}

// Package ratelimit throttles login attempts. Counters live in Redis so every
// replica shares them; a process-local token bucket takes over when Redis is
// absent or failing.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apperrors "github.com/spec-kit/credit-service/pkg/util"
)

const keyPrefix = "ratelimit:login:"

// maxLocalKeys bounds the fallback map.
const maxLocalKeys = 10000

// Limiter allows at most attempts requests per key within window.
type Limiter struct {
	client   *redis.Client
	attempts int
	window   time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewLimiter builds a limiter. client may be nil.
func NewLimiter(client *redis.Client, attempts int, window time.Duration, logger *zap.Logger) *Limiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		client:   client,
		attempts: attempts,
		window:   window,
		logger:   logger,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Allow consumes one attempt for key. When the attempt is refused it also returns
// how long the caller should wait.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, time.Duration) {
	if l.client != nil {
		allowed, retryAfter, err := l.allowRedis(ctx, key)
		if err == nil {
			return allowed, retryAfter
		}
		l.logger.Warn("redis rate limit unavailable; using local limiter", zap.Error(err))
	}
	return l.allowLocal(key)
}

func (l *Limiter) allowRedis(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := keyPrefix + key

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, l.window)
	ttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	if incr.Val() <= int64(l.attempts) {
		return true, 0, nil
	}
	retryAfter := ttl.Val()
	if retryAfter <= 0 {
		retryAfter = l.window
	}
	return false, retryAfter, nil
}

func (l *Limiter) allowLocal(key string) (bool, time.Duration) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxLocalKeys {
			l.limiters = make(map[string]*rate.Limiter)
		}
		every := l.window / time.Duration(max(l.attempts, 1))
		limiter = rate.NewLimiter(rate.Every(every), l.attempts)
		l.limiters[key] = limiter
	}
	l.mu.Unlock()

	reservation := limiter.Reserve()
	if !reservation.OK() {
		return false, l.window
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

// Middleware rejects requests over the limit with TOO_MANY_REQUESTS. The key is
// the client address combined with the value keyFn extracts.
func (l *Limiter) Middleware(keyFn func(c *fiber.Ctx) string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if keyFn != nil {
			key += ":" + keyFn(c)
		}

		allowed, retryAfter := l.Allow(c.UserContext(), key)
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
			return apperrors.NewTooManyRequests(retryAfter)
		}
		return c.Next()
	}
}

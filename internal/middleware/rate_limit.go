package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"agencycrm/internal/caching"
	"agencycrm/internal/common"
	"agencycrm/internal/config"
	"agencycrm/internal/monitoring"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RateLimitStore counts hits per key inside a fixed window.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, retryAfter time.Duration, err error)
}

type windowCounter struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// MemoryRateLimitStore keeps at most capacity keys. Least recently used keys
// are evicted first and every key expires after the window it was created with.
type MemoryRateLimitStore struct {
	entries *expirable.LRU[string, *windowCounter]
	mu      sync.Mutex
	now     func() time.Time
}

func NewMemoryRateLimitStore(capacity int, window time.Duration) *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		entries: expirable.NewLRU[string, *windowCounter](capacity, nil, window),
		now:     time.Now,
	}
}

func (s *MemoryRateLimitStore) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, int, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	counter, ok := s.entries.Get(key)
	if !ok || !now.Before(counter.resetAt) {
		counter = &windowCounter{resetAt: now.Add(window)}
		s.entries.Add(key, counter)
	}
	s.mu.Unlock()

	counter.mu.Lock()
	defer counter.mu.Unlock()
	counter.count++
	if counter.count > limit {
		return false, 0, counter.resetAt.Sub(now), nil
	}
	return true, limit - counter.count, 0, nil
}

// RedisRateLimitStore shares counters between instances through Redis.
type RedisRateLimitStore struct {
	cache caching.CacheService
}

func NewRedisRateLimitStore(cache caching.CacheService) *RedisRateLimitStore {
	return &RedisRateLimitStore{cache: cache}
}

func (s *RedisRateLimitStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, time.Duration, error) {
	count, ttl, err := s.cache.IncrementWindow(ctx, key, window)
	if err != nil {
		return false, 0, 0, err
	}
	if count > int64(limit) {
		return false, 0, ttl, nil
	}
	return true, limit - int(count), 0, nil
}

// RateLimiter applies per-route limits keyed by client IP and route path.
type RateLimiter struct {
	store        RateLimitStore
	window       time.Duration
	defaultLimit int
	routes       map[string]int
	metrics      *monitoring.Metrics
	logger       *zap.Logger
}

func NewRateLimiter(store RateLimitStore, cfg config.RateLimitConfig, metrics *monitoring.Metrics, logger *zap.Logger) *RateLimiter {
	routes := make(map[string]int, len(cfg.Routes))
	for path, limit := range cfg.Routes {
		routes[path] = limit
	}
	return &RateLimiter{
		store:        store,
		window:       cfg.Window(),
		defaultLimit: cfg.DefaultLimit,
		routes:       routes,
		metrics:      metrics,
		logger:       logger,
	}
}

// NewRateLimitStore picks the store named in cfg.
func NewRateLimitStore(cfg config.RateLimitConfig, cache caching.CacheService) RateLimitStore {
	if cfg.Store == "redis" && cache != nil {
		return NewRedisRateLimitStore(cache)
	}
	return NewMemoryRateLimitStore(cfg.Capacity, cfg.Window())
}

func (rl *RateLimiter) limitFor(route string) int {
	if limit, ok := rl.routes[route]; ok {
		return limit
	}
	return rl.defaultLimit
}

// Middleware must be registered on the routes it protects so c.Path() is the
// matched route pattern.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			limit := rl.limitFor(route)
			if limit <= 0 {
				return next(c)
			}

			key := c.RealIP() + ":" + route
			allowed, remaining, retryAfter, err := rl.store.Allow(c.Request().Context(), key, limit, rl.window)
			if err != nil {
				rl.logger.Warn("rate limit store unavailable, allowing request", zap.String("route", route), zap.Error(err))
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				if rl.metrics != nil {
					rl.metrics.RateLimited.WithLabelValues(route).Inc()
				}
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse("RATE_LIMITED", "Too many requests", nil))
			}
			return next(c)
		}
	}
}

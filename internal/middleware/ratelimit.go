package middleware

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/fathima-sithara/todo-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const MsgTooManyRequests = "Too many requests, please try again later"

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryLimiter is a per-key token bucket kept in process memory.
type MemoryLimiter struct {
	visitors sync.Map
	rps      rate.Limit
	burst    int
	ttl      time.Duration
}

type visitor struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryLimiter(perMinute, burst int) *MemoryLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &MemoryLimiter{
		rps:   rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
		ttl:   5 * time.Minute,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	v, _ := l.visitors.LoadOrStore(key, &visitor{limiter: rate.NewLimiter(l.rps, l.burst)})
	vi := v.(*visitor)
	vi.mu.Lock()
	vi.lastSeen = time.Now()
	vi.mu.Unlock()
	return vi.limiter.Allow(), nil
}

// Cleanup drops visitors idle for longer than the ttl until ctx is done.
func (l *MemoryLimiter) Cleanup(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			l.sweep(time.Now())
		}
	}
}

func (l *MemoryLimiter) sweep(now time.Time) {
	cutoff := now.Add(-l.ttl)
	l.visitors.Range(func(k, v interface{}) bool {
		vi := v.(*visitor)
		vi.mu.Lock()
		idle := vi.lastSeen.Before(cutoff)
		vi.mu.Unlock()
		if idle {
			l.visitors.Delete(k)
		}
		return true
	})
}

// RedisLimiter is a fixed window counter shared by every instance.
type RedisLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// incrWindow increments the counter and starts its window on the first hit
// in one round trip, so a counter never outlives its window.
var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

func NewRedisLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, prefix: prefix, limit: limit, window: window}
}

func (l *RedisLimiter) key(key string) string {
	return fmt.Sprintf("%s:%s", l.prefix, key)
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := incrWindow.Run(ctx, l.rdb, []string{l.key(key)}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("rate limiter: %w", err)
	}
	return count <= int64(l.limit), nil
}

// RateLimit limits requests per client IP. When the limiter itself fails the
// request is let through and the error is logged.
func RateLimit(l Limiter, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := clientIP(c)
		ok, err := l.Allow(c.UserContext(), c.Route().Path+"|"+ip)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("ip", ip), zap.Error(err))
			return c.Next()
		}
		if !ok {
			logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", fiberutils.CopyString(c.Path())))
			return utils.JSONError(c, fiber.StatusTooManyRequests, MsgTooManyRequests)
		}
		return c.Next()
	}
}

func clientIP(c *fiber.Ctx) string {
	ip := c.IP()
	if ip == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}

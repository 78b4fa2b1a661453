package api

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/campushub/campus-api/internal/auth"
)

const (
	localUserID = "user_id"
	localRole   = "role"
)

func JWTAuthMiddleware(v *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "missing credentials"})
		}
		claims, err := v.Verify(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid token"})
		}
		c.Locals(localUserID, claims.UserID)
		c.Locals(localRole, claims.Role)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	if s, ok := c.Locals(localUserID).(string); ok {
		return s
	}
	return ""
}

func isAdmin(c *fiber.Ctx) bool {
	r, _ := c.Locals(localRole).(string)
	return r == "admin"
}

// RateLimiter counts requests per user in redis. When redis is unreachable it
// degrades to per-user local token buckets instead of failing open or closed
// at random.
type RateLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int
	window time.Duration

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

func NewRateLimiter(rdb *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  limit,
		window: window,
		local:  make(map[string]*rate.Limiter),
	}
}

func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := userID(c)
		if key == "" {
			key = c.IP()
		}
		allowed, err := r.allowRedis(c.Context(), key)
		if err != nil {
			allowed = r.allowLocal(key)
		}
		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "rate limit exceeded"})
		}
		return c.Next()
	}
}

func (r *RateLimiter) allowRedis(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)
	count, err := r.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		r.rdb.Expire(ctx, redisKey, r.window)
	}
	return count <= int64(r.limit), nil
}

func (r *RateLimiter) allowLocal(key string) bool {
	r.mu.Lock()
	lim, ok := r.local[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(r.window/time.Duration(r.limit)), r.limit)
		r.local[key] = lim
	}
	r.mu.Unlock()
	return lim.Allow()
}

package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/kbukum/scribe/errors"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Enabled turns limiting on.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestsPerMinute is the sustained rate allowed per key.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// Burst is the number of requests allowed at once.
	Burst int `yaml:"burst" mapstructure:"burst"`
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string `yaml:"-" mapstructure:"-"`
}

// ApplyDefaults fills zero values.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = 30
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
}

// RateLimit returns a Gin middleware applying a token bucket per key. It is
// a pass-through when cfg.Enabled is false.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}
	cfg.ApplyDefaults()
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}

	rl := &rateLimiter{
		limiters: make(map[string]*visitor),
		every:    rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute)),
		burst:    cfg.Burst,
	}

	return func(c *gin.Context) {
		if !rl.allow(cfg.KeyFunc(c)) {
			appErr := apperrors.RateLimited()
			resp := appErr.ToResponse()
			resp.Error.RequestID = c.GetString(RequestIDKey)
			c.AbortWithStatusJSON(appErr.HTTPStatus, resp)
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*visitor
	every    rate.Limit
	burst    int
	sweeps   int
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.limiters[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.burst)}
		rl.limiters[key] = v
	}
	v.lastSeen = now

	// Drop idle visitors every few hundred calls.
	rl.sweeps++
	if rl.sweeps >= 256 {
		rl.sweeps = 0
		for k, other := range rl.limiters {
			if now.Sub(other.lastSeen) > 10*time.Minute {
				delete(rl.limiters, k)
			}
		}
	}
	return v.limiter.AllowN(now, 1)
}

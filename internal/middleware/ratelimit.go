package middleware

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// AuthRateLimitConfig holds the credential-endpoint rate limit settings.
type AuthRateLimitConfig struct {
	Attempts int           // attempts allowed per window, per IP
	Window   time.Duration // sliding window
}

// DefaultAuthRateLimitConfig allows 5 attempts per 15 minutes per IP,
// enough for a forgotten password without enabling online brute force.
func DefaultAuthRateLimitConfig() *AuthRateLimitConfig {
	return &AuthRateLimitConfig{
		Attempts: 5,
		Window:   15 * time.Minute,
	}
}

// LoadAuthRateLimitConfig loads config from environment variables with
// defaults.
func LoadAuthRateLimitConfig() *AuthRateLimitConfig {
	config := DefaultAuthRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_AUTH_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Attempts = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_AUTH_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Window = time.Duration(n) * time.Minute
		}
	}

	return config
}

// AuthRateLimiter throttles login/register attempts per client IP using a
// token-bucket limiter per IP. Idle buckets are evicted after two windows.
func AuthRateLimiter(config *AuthRateLimitConfig) fiber.Handler {
	limiters := gocache.New(2*config.Window, config.Window)
	limit := rate.Every(config.Window / time.Duration(config.Attempts))

	return func(c *fiber.Ctx) error {
		ip := c.IP()

		var limiter *rate.Limiter
		if v, ok := limiters.Get(ip); ok {
			limiter = v.(*rate.Limiter)
		} else {
			limiter = rate.NewLimiter(limit, config.Attempts)
			limiters.Set(ip, limiter, gocache.DefaultExpiration)
		}

		if !limiter.Allow() {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many attempts, please try again later",
			})
		}
		return c.Next()
	}
}

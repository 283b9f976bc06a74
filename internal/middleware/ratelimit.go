package middleware

import (
	"log"
	"os"
	"strconv"
	"time"

	"creatorsmeet/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP)
	GlobalAPIMax        int           // Max requests per minute for all API endpoints
	GlobalAPIExpiration time.Duration // Expiration window

	// Signin/signup attempts (per IP) - credential stuffing protection
	AuthAttemptMax        int
	AuthAttemptExpiration time.Duration

	// Classification calls (per user) - each one costs a hosted model call
	AnalysisMax        int
	AnalysisExpiration time.Duration

	// Profile image uploads (per user)
	UploadMax        int
	UploadExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min = ~3.3 req/sec
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Auth: 10 attempts per 15 minutes
		AuthAttemptMax:        10,
		AuthAttemptExpiration: 15 * time.Minute,

		// Analysis: 20/min
		AnalysisMax:        20,
		AnalysisExpiration: 1 * time.Minute,

		// Uploads: 10/min
		UploadMax:        10,
		UploadExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	overrideInt("RATE_LIMIT_GLOBAL_API", &config.GlobalAPIMax)
	overrideInt("RATE_LIMIT_AUTH", &config.AuthAttemptMax)
	overrideInt("RATE_LIMIT_ANALYSIS", &config.AnalysisMax)
	overrideInt("RATE_LIMIT_UPLOAD", &config.UploadMax)

	// Development mode: more lenient limits
	if os.Getenv("ENVIRONMENT") == "development" {
		config.GlobalAPIMax = 1000
		config.AuthAttemptMax = 100
		log.Println("⚠️  [RATE-LIMIT] Development mode: using relaxed rate limits")
	}

	return config
}

func overrideInt(key string, target *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			*target = n
		}
	}
}

// GlobalAPIRateLimiter creates a rate limiter for all API requests
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "global:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Global limit reached for IP: %s", c.IP())
			return tooManyRequests(c, config.GlobalAPIExpiration, "Too many requests. Please slow down.")
		},
	})
}

// AuthAttemptRateLimiter limits signin and signup attempts per IP
func AuthAttemptRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.AuthAttemptMax,
		Expiration: config.AuthAttemptExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "auth:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("🚫 [RATE-LIMIT] Auth attempt limit reached for IP: %s on %s", c.IP(), c.Path())
			return tooManyRequests(c, config.AuthAttemptExpiration, "Too many attempts. Please try again later.")
		},
	})
}

// AnalysisRateLimiter limits classification requests per user
func AnalysisRateLimiter(config *RateLimitConfig) fiber.Handler {
	return perUserLimiter("analysis", config.AnalysisMax, config.AnalysisExpiration,
		"Analysis rate limit reached. Please wait before analyzing more descriptions.")
}

// UploadRateLimiter limits profile image uploads per user
func UploadRateLimiter(config *RateLimitConfig) fiber.Handler {
	return perUserLimiter("upload", config.UploadMax, config.UploadExpiration,
		"Too many uploads. Please wait.")
}

// perUserLimiter keys on the authenticated user ID and falls back to the IP
func perUserLimiter(prefix string, max int, expiration time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			if userID, ok := c.Locals(LocalUserID).(string); ok && userID != "" {
				return prefix + ":" + userID
			}
			return prefix + "-ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Printf("⚠️  [RATE-LIMIT] %s limit reached for: %v", prefix, c.Locals(LocalUserID))
			return tooManyRequests(c, expiration, message)
		},
	})
}

func tooManyRequests(c *fiber.Ctx, retryAfter time.Duration, message string) error {
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(retryAfter.Seconds())))
	return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{Message: message})
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// InsecureDefaultJWTSecret is used when JWT_SECRET is unset outside production.
const InsecureDefaultJWTSecret = "creators-meet-insecure-dev-secret"

// DefaultModelURL is the hosted zero-shot classification model.
const DefaultModelURL = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"

// Config holds all application configuration
type Config struct {
	Port        string
	Environment string
	MongoDBURI  string
	RedisURL    string

	// Session tokens
	JWTSecret        string
	JWTSecretDefault bool // true when JWTSecret fell back to InsecureDefaultJWTSecret
	SessionExpiry    time.Duration

	// Public base URL (NEXTAUTH_URL) and CORS
	PublicURL      string
	AllowedOrigins string

	// Filesystem layout for uploaded assets
	PublicDir      string
	MaxImageSizeMB int

	// Hosted classification model
	HuggingFaceAPIKey    string
	HuggingFaceModelURL  string
	ClassifierTimeout    time.Duration
	ClassifierMaxRetries int
	ClassifierCacheTTL   time.Duration
	ClassifierRate       float64 // requests per second, 0 disables throttling

	// Candidate label sets for requirement analysis
	LabelsFile string

	// Background jobs
	ImageCleanupCron string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	jwtSecret := getEnv("JWT_SECRET", "")
	jwtDefault := false
	if jwtSecret == "" {
		jwtSecret = InsecureDefaultJWTSecret
		jwtDefault = true
	}

	publicURL := strings.TrimRight(getEnv("NEXTAUTH_URL", "http://localhost:3000"), "/")

	return &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: strings.ToLower(getEnv("ENVIRONMENT", "development")),
		MongoDBURI:  getEnv("MONGODB_URI", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret:        jwtSecret,
		JWTSecretDefault: jwtDefault,
		SessionExpiry:    getDurationEnv("SESSION_EXPIRY", 7*24*time.Hour),

		PublicURL:      publicURL,
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", publicURL),

		PublicDir:      getEnv("PUBLIC_DIR", "./public"),
		MaxImageSizeMB: getIntEnv("MAX_IMAGE_SIZE_MB", 5),

		HuggingFaceAPIKey:    getEnv("HUGGINGFACE_API_KEY", ""),
		HuggingFaceModelURL:  getEnv("HUGGINGFACE_MODEL_URL", DefaultModelURL),
		ClassifierTimeout:    getDurationEnv("CLASSIFIER_TIMEOUT", 30*time.Second),
		ClassifierMaxRetries: getIntEnv("CLASSIFIER_MAX_RETRIES", 3),
		ClassifierCacheTTL:   getDurationEnv("CLASSIFIER_CACHE_TTL", 10*time.Minute),
		ClassifierRate:       getFloatEnv("CLASSIFIER_RATE", 2),

		LabelsFile: getEnv("LABELS_FILE", "./config/labels.yaml"),

		ImageCleanupCron: getEnv("IMAGE_CLEANUP_CRON", "0 3 * * *"),
	}
}

// IsProduction reports whether the server runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port        string
	Host        string
	MongoURI    string
	MongoDB     string
	JWTSecret   string
	Environment string
	CORSOrigins []string

	// Web push (VAPID) sender credentials
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	// Push dispatch tuning
	PushDispatchTimeout time.Duration
	PushMaxConcurrent   int

	// Dedup window for retried create-notification calls
	DedupWindow time.Duration

	SlackWebhookURL string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env if present
	_ = godotenv.Load()

	config := &Config{
		Port:                getEnv("PORT", "8090"),
		Host:                getEnv("HOST", "0.0.0.0"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:             getEnv("MONGO_DB", "vrticko"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		Environment:         getEnv("ENVIRONMENT", "development"),
		VAPIDPublicKey:      getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:     getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:        getEnv("VAPID_SUBJECT", "mailto:noreply@vrticko.com"),
		PushDispatchTimeout: getEnvDuration("PUSH_DISPATCH_TIMEOUT", 30*time.Second),
		PushMaxConcurrent:   getEnvInt("PUSH_MAX_CONCURRENT", 16),
		DedupWindow:         getEnvDuration("DEDUP_WINDOW", 30*time.Second),
		SlackWebhookURL:     getEnv("SLACK_WEBHOOK_URL", ""),
	}

	// Parse CORS origins
	origins := getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	originsList := strings.Split(origins, ",")
	config.CORSOrigins = make([]string, 0, len(originsList))
	for _, origin := range originsList {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			config.CORSOrigins = append(config.CORSOrigins, trimmed)
		}
	}

	// Validate critical settings
	if config.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if config.VAPIDPublicKey == "" || config.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are required (run cmd/generate-vapid)")
	}
	if config.PushMaxConcurrent < 1 {
		return nil, fmt.Errorf("PUSH_MAX_CONCURRENT must be at least 1")
	}

	return config, nil
}

// getEnv reads an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration in seconds with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}

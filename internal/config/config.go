package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// GetString retrieves an environment variable or returns a fallback when unset.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt retrieves an environment variable as integer or returns fallback.
func GetInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// GetBool retrieves an environment variable as bool or returns fallback.
func GetBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("invalid value for %s: %v", key, err)
			return fallback
		}
		return parsed
	}
	return fallback
}

// Config holds runtime configuration for the deployer service.
type Config struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	StudentEmail       string
	Secret             string
	GitHubToken        string
	GitHubUsername     string
	OpenAIKey          string
	OpenAIModel        string
	NotifyAttempts     int
	NotifyBaseDelay    time.Duration
	QueueSize          int
	PagesWaitAttempts  int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// Load constructs a Config from environment variables. A .env file in the
// working directory is merged in first when present.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", "0.0.0.0:8000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://pagesmith:pagesmith@db:5432/pagesmith?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		StudentEmail:       GetString("STUDENT_EMAIL", ""),
		Secret:             GetString("SECRET", ""),
		GitHubToken:        GetString("GITHUB_TOKEN", ""),
		GitHubUsername:     GetString("GITHUB_USERNAME", ""),
		OpenAIKey:          GetString("OPENAI_API_KEY", ""),
		OpenAIModel:        GetString("OPENAI_MODEL", "gpt-4o-mini"),
		NotifyAttempts:     GetInt("NOTIFY_MAX_ATTEMPTS", 5),
		NotifyBaseDelay:    time.Duration(GetInt("NOTIFY_BASE_DELAY_SECONDS", 1)) * time.Second,
		QueueSize:          GetInt("DEPLOY_QUEUE_SIZE", 64),
		PagesWaitAttempts:  GetInt("PAGES_WAIT_ATTEMPTS", 30),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}

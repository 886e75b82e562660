package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Reject policies applied when the respondent asks for changes at confirmation
const (
	RejectRestart = "restart"
	RejectRevise  = "revise"
)

// Config holds application configuration
type Config struct {
	Port             string
	LogMode          string
	LogLevel         string
	MongoURI         string
	MongoDB          string
	RedisAddr        string
	SessionTTL       time.Duration
	TemplateCacheTTL time.Duration
	TurnLockTTL      time.Duration
	TurnLockWait     time.Duration
	ContextWindow    int
	RejectPolicy     string
	AllowedOrigins   string
	AI               *AIConfig
}

// Load reads configuration from a .env file (if present) and the environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		LogMode:          getEnv("LOG_MODE", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		MongoURI:         getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:          getEnv("MONGO_DB", "interviewdb"),
		RedisAddr:        redisAddr(getEnv("REDIS_URI", "localhost:6379")),
		SessionTTL:       getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		TemplateCacheTTL: getEnvAsDuration("TEMPLATE_CACHE_TTL", 10*time.Minute),
		TurnLockTTL:      getEnvAsDuration("TURN_LOCK_TTL", 2*time.Minute),
		TurnLockWait:     getEnvAsDuration("TURN_LOCK_WAIT", 30*time.Second),
		ContextWindow:    getEnvAsInt("CONTEXT_WINDOW", 6),
		RejectPolicy:     rejectPolicy(getEnv("REJECT_POLICY", RejectRestart)),
		AllowedOrigins:   getEnv("CORS_ALLOWED_ORIGINS", "*"),
		AI:               DefaultAIConfig(),
	}
}

// redisAddr strips the redis:// scheme the deployment manifests use
func redisAddr(uri string) string {
	return strings.TrimPrefix(uri, "redis://")
}

func rejectPolicy(v string) string {
	if strings.EqualFold(strings.TrimSpace(v), RejectRevise) {
		return RejectRevise
	}
	return RejectRestart
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultVal
	}
	if v, err := time.ParseDuration(raw); err == nil {
		return v
	}
	return defaultVal
}

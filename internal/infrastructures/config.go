package infrastructures

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DATABASE_URL      string
	CONNECT_BASE_URL  string
	REDIS_ADDRESS     string
	REDIS_PASSWORD    string
	APP_PORT          string
	RATE_LIMIT_PREFIX string
	LOG_LEVEL         string
	REWARD_TIERS      string
	POINTS_PER_UNIT   int64
	AUTO_MIGRATE      bool
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		DATABASE_URL:      os.Getenv("DATABASE_URL"),
		CONNECT_BASE_URL:  os.Getenv("CONNECT_BASE_URL"),
		REDIS_ADDRESS:     os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:    os.Getenv("REDIS_PASSWORD"),
		APP_PORT:          getEnv("APP_PORT", "8080"),
		RATE_LIMIT_PREFIX: getEnv("RATE_LIMIT_PREFIX", "feastly"),
		LOG_LEVEL:         getEnv("LOG_LEVEL", "info"),
		REWARD_TIERS:      os.Getenv("REWARD_TIERS"),
		POINTS_PER_UNIT:   getEnvInt64("POINTS_PER_UNIT", 1),
		AUTO_MIGRATE:      getEnvBool("AUTO_MIGRATE", false),
	}

	return Config
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

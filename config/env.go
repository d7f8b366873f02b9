package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Redis   RedisConfig
	DB      DBConfig
	Auth    AuthConfig
	Catalog CatalogConfig
	Orders  OrderConfig
}

type ServerConfig struct {
	HTTPPort    string
	GRPCPort    string
	Mode        string
	LogLevel    string
	RateLimit   string
	CORSOrigins []string
}

type DBConfig struct {
	Driver string
	DSN    string
}

type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	SignupCode string
}

type CatalogConfig struct {
	// CategoryCycleCheck rejects parent assignments that would make a category its own ancestor.
	CategoryCycleCheck bool
}

type OrderConfig struct {
	EstimatedDeliveryDays int
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttlHours, err := strconv.Atoi(getEnv("JWT_TTL_HOURS", "24"))
	if err != nil || ttlHours <= 0 {
		ttlHours = 24
	}
	deliveryDays, err := strconv.Atoi(getEnv("ESTIMATED_DELIVERY_DAYS", "5"))
	if err != nil || deliveryDays < 0 {
		deliveryDays = 5
	}

	return Config{
		Server: ServerConfig{
			HTTPPort:    getEnv("HTTP_PORT", "8080"),
			GRPCPort:    getEnv("GRPC_PORT", "50051"),
			Mode:        getEnv("GIN_MODE", "release"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			RateLimit:   getEnv("RATE_LIMIT", "60-M"),
			CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Redis: RedisConfig{
			Enabled:  getBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			Driver: getEnv("DB_DRIVER", "postgres"),
			DSN:    getEnv("DATABASE_DSN", ""),
		},
		Auth: AuthConfig{
			JWTSecret:  getEnv("JWT_SECRET", ""),
			TokenTTL:   time.Duration(ttlHours) * time.Hour,
			SignupCode: getEnv("ADMIN_SIGNUP_CODE", ""),
		},
		Catalog: CatalogConfig{
			CategoryCycleCheck: getBool("CATEGORY_CYCLE_CHECK", true),
		},
		Orders: OrderConfig{
			EstimatedDeliveryDays: deliveryDays,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "")
	t.Setenv("CATEGORY_CYCLE_CHECK", "")
	t.Setenv("ESTIMATED_DELIVERY_DAYS", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Catalog.CategoryCycleCheck)
	assert.Equal(t, 5, cfg.Orders.EstimatedDeliveryDays)
	assert.Equal(t, "60-M", cfg.Server.RateLimit)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "2")
	t.Setenv("CATEGORY_CYCLE_CHECK", "false")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg := LoadConfig()

	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.False(t, cfg.Catalog.CategoryCycleCheck)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
}

func TestLoadConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("JWT_TTL_HOURS", "abc")
	t.Setenv("ESTIMATED_DELIVERY_DAYS", "-3")

	cfg := LoadConfig()

	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 5, cfg.Orders.EstimatedDeliveryDays)
}

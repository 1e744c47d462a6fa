package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	assert.Nil(t, CSV(""))
	assert.Equal(t, []string{"a:9092", "b:9092"}, CSV(" a:9092, ,b:9092 "))
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"SERVER_PORT", "DB_DRIVER", "ACCESS_TTL", "REFRESH_TTL", "CHECKOUT_STOCK_GUARD",
		"ORDER_STATUS_POLICY", "TAX_RATE", "SHIPPING_FLAT", "CACHE_TTL", "CSRF_ENABLED",
		"AUTH_RATE_PER_SEC", "AUTH_BURST",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.CheckoutStockGuard)
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, 1.0, cfg.AuthRatePerSec)
	assert.Equal(t, 10, cfg.AuthBurst)
	assert.Equal(t, StatusPolicyStrict, cfg.OrderStatusPolicy)
	assert.True(t, decimal.RequireFromString("0.08").Equal(cfg.TaxRate))
	assert.True(t, decimal.RequireFromString("10").Equal(cfg.ShippingFlat))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ORDER_STATUS_POLICY", "PERMISSIVE")
	t.Setenv("CHECKOUT_STOCK_GUARD", "false")
	t.Setenv("TAX_RATE", "0.2")
	t.Setenv("SHIPPING_FLAT", "not-a-number")
	t.Setenv("ACCESS_TTL", "5m")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg := Load()

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, StatusPolicyPermissive, cfg.OrderStatusPolicy)
	assert.False(t, cfg.CheckoutStockGuard)
	assert.True(t, decimal.RequireFromString("0.2").Equal(cfg.TaxRate))
	assert.True(t, decimal.RequireFromString("10").Equal(cfg.ShippingFlat))
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
}

func TestEnvBoolDefault_Invalid(t *testing.T) {
	t.Setenv("SOME_FLAG", "maybe")
	assert.True(t, EnvBoolDefault("SOME_FLAG", true))
}

func TestValidate(t *testing.T) {
	t.Parallel()

	err := Config{}.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "DATABASE_URL")
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
	}

	ok := Config{DatabaseURL: "postgres://x", JWTAccessSecret: []byte("a"), JWTRefreshSecret: []byte("b")}
	assert.NoError(t, ok.Validate())
}

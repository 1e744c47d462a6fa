package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StatusPolicyStrict     = "strict"
	StatusPolicyPermissive = "permissive"
)

type Config struct {
	ServiceName string
	ServerPort  int

	LogLevel  string
	LogFormat string

	DBDriver    string
	DatabaseURL string

	JWTAccessSecret  []byte
	JWTRefreshSecret []byte
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	CookieSecure     bool
	CSRFEnabled      bool
	CSRFOrigins      []string
	AuthRatePerSec   float64
	AuthBurst        int

	KafkaBrokers     []string
	KafkaTopicPrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	CheckoutStockGuard bool
	OrderStatusPolicy  string
	TaxRate            decimal.Decimal
	ShippingFlat       decimal.Decimal
}

// Load reads .env when present and falls back to the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "pc-part-shop"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 8080),

		LogLevel:  EnvDefault("LOG_LEVEL", "info"),
		LogFormat: EnvDefault("LOG_FORMAT", "json"),

		DBDriver:    EnvDefault("DB_DRIVER", "postgres"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTAccessSecret:  []byte(os.Getenv("JWT_SECRET")),
		JWTRefreshSecret: []byte(os.Getenv("JWT_REFRESH_SECRET")),
		AccessTTL:        EnvDurationDefault("ACCESS_TTL", 15*time.Minute),
		RefreshTTL:       EnvDurationDefault("REFRESH_TTL", 7*24*time.Hour),
		CookieSecure:     EnvBoolDefault("COOKIE_SECURE", true),
		CSRFEnabled:      EnvBoolDefault("CSRF_ENABLED", false),
		CSRFOrigins:      CSV(os.Getenv("CSRF_TRUSTED_ORIGINS")),
		AuthRatePerSec:   EnvFloatDefault("AUTH_RATE_PER_SEC", 1),
		AuthBurst:        EnvIntDefault("AUTH_BURST", 10),

		KafkaBrokers:     CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopicPrefix: os.Getenv("KAFKA_TOPIC_PREFIX"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       EnvIntDefault("REDIS_DB", 0),
		CacheTTL:      EnvDurationDefault("CACHE_TTL", 5*time.Minute),

		CheckoutStockGuard: EnvBoolDefault("CHECKOUT_STOCK_GUARD", true),
		OrderStatusPolicy:  statusPolicy(EnvDefault("ORDER_STATUS_POLICY", StatusPolicyStrict)),
		TaxRate:            EnvDecimalDefault("TAX_RATE", decimal.RequireFromString("0.08")),
		ShippingFlat:       EnvDecimalDefault("SHIPPING_FLAT", decimal.RequireFromString("10.00")),
	}
}

func statusPolicy(v string) string {
	if strings.EqualFold(v, StatusPolicyPermissive) {
		return StatusPolicyPermissive
	}
	return StatusPolicyStrict
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvFloatDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return def
	}
	return f
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func EnvDecimalDefault(key string, def decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil || d.IsNegative() {
		return def
	}
	return d
}

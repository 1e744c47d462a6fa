package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/appdotbuilder/pc-part-shop/internal/cache"
	"github.com/appdotbuilder/pc-part-shop/internal/config"
	"github.com/appdotbuilder/pc-part-shop/internal/db"
	"github.com/appdotbuilder/pc-part-shop/internal/httpserver"
	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	authmw "github.com/appdotbuilder/pc-part-shop/internal/middleware/auth"
	"github.com/appdotbuilder/pc-part-shop/internal/middleware/csrf"
	"github.com/appdotbuilder/pc-part-shop/internal/mykafka"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/service"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db init failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("db migrate failed", "error", err)
		os.Exit(1)
	}
	r := repo.New(gdb)

	prod := mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
	if !prod.Enabled() {
		logger.Info("kafka disabled, domain events are dropped")
	}

	var (
		catalogCache service.Cache
		redisCache   *cache.Cache
	)
	if cfg.RedisAddr != "" {
		redisCache = cache.New(cache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.CacheTTL)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, catalog cache degrades to misses", "addr", cfg.RedisAddr, "error", err)
		}
		cancel()
		catalogCache = redisCache
	}

	pricing := service.Pricing{TaxRate: cfg.TaxRate, Shipping: cfg.ShippingFlat}
	statusPolicy := service.StatusPolicyStrict
	if cfg.OrderStatusPolicy == config.StatusPolicyPermissive {
		statusPolicy = service.StatusPolicyPermissive
	}

	authSvc := &service.AuthService{
		Repo:          r,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTTL,
		RefreshTTL:    cfg.RefreshTTL,
		Events:        prod,
	}

	deps := &httpserver.Deps{
		Health:  &httpserver.HealthHandler{DB: r},
		Catalog: &httpserver.CatalogHandler{Svc: &service.CatalogService{Repo: r, Cache: catalogCache}},
		Auth:    &httpserver.AuthHandler{Svc: authSvc, CookieSecure: cfg.CookieSecure},
		Cart:    &httpserver.CartHandler{Svc: &service.CartService{Repo: r, Events: prod}},
		Orders: &httpserver.OrderHandler{Svc: &service.OrderService{
			Repo:       r,
			Events:     prod,
			Cache:      catalogCache,
			Pricing:    pricing,
			StockGuard: cfg.CheckoutStockGuard,
		}},
		Admin: &httpserver.AdminHandler{Svc: &service.AdminService{
			Repo:         r,
			Cache:        catalogCache,
			Events:       prod,
			StatusPolicy: statusPolicy,
		}},
		Guard:        authmw.NewAutoRefreshMiddleware(cfg.JWTAccessSecret, authSvc, cfg.CookieSecure),
		CookieSecure: cfg.CookieSecure,
		AuthRate:     rate.Limit(cfg.AuthRatePerSec),
		AuthBurst:    cfg.AuthBurst,
	}
	if cfg.CSRFEnabled {
		csrfCfg := csrf.DefaultConfig()
		csrfCfg.Secure = cfg.CookieSecure
		csrfCfg.TrustedOrigins = cfg.CSRFOrigins
		deps.CSRF = &csrfCfg
	}

	e := echo.New()
	e.HideBanner = true
	httpserver.UseDefaults(e, logger)
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	go func() {
		<-quit
		logger.Warn("force exit")
		os.Exit(1)
	}()

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}
	if err := db.Close(gdb); err != nil {
		logger.Error("db close error", "error", err)
	}

	logger.Info("shutdown complete")
}

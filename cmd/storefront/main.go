package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/sleepwell-storefront/internal/cart"
	"github.com/jcmexdev/sleepwell-storefront/internal/catalog"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout"
	"github.com/jcmexdev/sleepwell-storefront/internal/checkout/stripegw"
	"github.com/jcmexdev/sleepwell-storefront/internal/commerce"
	"github.com/jcmexdev/sleepwell-storefront/internal/config"
	"github.com/jcmexdev/sleepwell-storefront/internal/httpx"
	"github.com/jcmexdev/sleepwell-storefront/internal/notify"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders/filelog"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders/postgres"
	"github.com/jcmexdev/sleepwell-storefront/internal/orders/sqlite"
	"github.com/jcmexdev/sleepwell-storefront/internal/pkg/cache"
	"github.com/jcmexdev/sleepwell-storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/sleepwell-storefront/internal/recorder"
)

func main() {
	cfg, err := config.Load()
	telemetry.InitLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdown, err := telemetry.SetupTracer(ctx, telemetry.TracerConfig{
		ServiceName: cfg.OTelServiceName,
		Endpoint:    cfg.OTelEndpoint,
		Environment: cfg.Environment,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	cat := catalog.Default()

	storage, closeStorage, err := openCartStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()
	carts := cart.NewSessions(storage, cat)

	orderLog, closeLog, err := openOrderLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	orderSvc := orders.NewService(orderLog)

	gateway := stripegw.New(cfg.StripeSecretKey)
	if cfg.StripeSecretKey == "" {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout calls will fail")
	}
	orchestrator := checkout.NewOrchestrator(gateway, cat, checkout.Config{
		BaseURL:           cfg.PublicBaseURL,
		Currency:          cfg.Currency,
		ShippingCountries: cfg.ShippingCountries,
	})

	woo, err := commerce.New(commerce.Config{
		BaseURL:        cfg.WooCommerceURL,
		ConsumerKey:    cfg.WooCommerceKey,
		ConsumerSecret: cfg.WooCommerceSecret,
		Timeout:        cfg.UpstreamTimeout,
	})
	if err != nil {
		return err
	}
	mailer := notify.NewMailer(notify.Config{
		PublicKey:  cfg.EmailJSPublicKey,
		PrivateKey: cfg.EmailJSPrivateKey,
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		Timeout:    cfg.UpstreamTimeout,
	})

	handler := httpx.NewHandler(cat, carts, orchestrator, recorder.New(gateway, cat, orderSvc, woo), orderSvc, mailer)
	router := httpx.NewRouter(handler, httpx.RouterOptions{
		ServiceName:    cfg.OTelServiceName,
		RequestTimeout: cfg.RequestTimeout,
		CartTTL:        cfg.CartTTL,
		SecureCookies:  strings.HasPrefix(cfg.PublicBaseURL, "https://"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("storefront running", "addr", srv.Addr, "order_log", cfg.OrderLogDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openCartStorage(ctx context.Context, cfg config.Config) (cart.Storage, func(), error) {
	if cfg.RedisAddr == "" {
		slog.Info("REDIS_ADDR not set, carts live in memory")
		return cart.NewMemoryStorage(), func() {}, nil
	}
	client, err := cache.Dial(ctx, cfg.RedisAddr)
	if err != nil {
		return nil, nil, err
	}
	return cache.NewRedisStore(client, cfg.OTelServiceName, cfg.CartTTL), func() { _ = client.Close() }, nil
}

func openOrderLog(ctx context.Context, cfg config.Config) (orders.Log, func(), error) {
	switch cfg.OrderLogDriver {
	case config.DriverSQLite:
		repo, err := sqlite.Open(cfg.OrderLogPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil

	case config.DriverPostgres:
		if cfg.OrderLogDSN == "" {
			return nil, nil, fmt.Errorf("ORDER_LOG_DSN is required for the postgres order log")
		}
		pool, err := pgxpool.New(ctx, cfg.OrderLogDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: connect: %w", err)
		}
		repo := postgres.NewRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	default:
		l, err := filelog.Open(cfg.OrderLogPath)
		if err != nil {
			return nil, nil, err
		}
		return l, func() {}, nil
	}
}

package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/pointloop/pointloop/internal/cache"
	"github.com/pointloop/pointloop/internal/config"
	"github.com/pointloop/pointloop/internal/events"
	"github.com/pointloop/pointloop/internal/logger"
	"github.com/pointloop/pointloop/internal/loyalty"
	"github.com/pointloop/pointloop/internal/points"
	"github.com/pointloop/pointloop/internal/rest"
	"github.com/pointloop/pointloop/internal/webhook"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			loyalty.NewClient,
			events.NewPublisher,
			newCalculator,
			newOrderCache,
			newRegistry,
			webhook.NewHandler,
			rest.NewRouter,
		),
		fx.Invoke(initSentry),
		fx.Invoke(startServer),
	)

	app.Run()
}

func newCalculator(cfg *config.Configuration) *points.Calculator {
	return points.NewCalculator(cfg.Points)
}

func newOrderCache(cfg *config.Configuration) cache.Cache {
	return cache.NewInMemoryCache(cfg.Cache.OrderLookupTTL, cfg.Cache.CleanupInterval)
}

// newRegistry wires every webhook topic to its processor. Registration order
// is also route registration order.
func newRegistry(
	client loyalty.Client,
	calculator *points.Calculator,
	publisher events.Publisher,
	orderCache cache.Cache,
	cfg *config.Configuration,
	log *logger.Logger,
) *webhook.Registry {
	return webhook.NewRegistry(
		webhook.NewOrdersPaidProcessor(client, calculator, publisher, log),
		webhook.NewRefundsCreateProcessor(client, calculator, publisher, orderCache, cfg, log),
		webhook.NewCustomersCreateProcessor(client, publisher, log),
		webhook.NewCustomersRedactProcessor(client, publisher, log),
		webhook.NewCustomersDataRequestProcessor(client, publisher, log),
		webhook.NewShopRedactProcessor(client, publisher, log),
		webhook.NewAppUninstalledProcessor(client, publisher, log),
	)
}

func initSentry(lc fx.Lifecycle, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Sentry.Enabled {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		EnableTracing:    true,
		TracesSampleRate: cfg.Sentry.SampleRate,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry", "error", err)
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sentry.Flush(2 * time.Second)
			return nil
		},
	})
	return nil
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	publisher events.Publisher,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting webhook server", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down webhook server")
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Errorw("server shutdown failed", "error", err)
			}
			return publisher.Close()
		},
	})
}

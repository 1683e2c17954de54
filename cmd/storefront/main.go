package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/diag"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	httpapi "github.com/andreasstove999/ecommerce-system/storefront-go/internal/http"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/images"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/logging"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/search"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("storefront")
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("storefront stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session storage
	store, closeStore, err := storage.Open(ctx, storage.Options{
		Driver:        cfg.StorageDriver,
		DSN:           cfg.StorageDSN,
		RunMigrations: cfg.RunMigrations,
		TTL:           cfg.StorageTTL,
	}, logger.Named("storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close storage", zap.Error(err))
		}
	}()

	// Remote API
	base, err := clients.NewClient("storefront-api", cfg.APIURL, clients.NewHTTPClient(cfg.UpstreamTimeout))
	if err != nil {
		return err
	}
	api := clients.NewAPI(base,
		clients.WithTokenSource(session.Tokens),
		clients.WithUnauthorizedHandler(session.EvictOnUnauthorized(logger.Named("session"))),
		clients.WithLogger(logger.Named("api")),
	)
	products := clients.NewProductClient(api)
	orders := clients.NewOrderClient(api)

	// Events
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.Dial(cfg.RabbitMQURL, logger.Named("events"))
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		publisher = p
	} else {
		logger.Info("RABBITMQ_URL not set, OrderPlaced events are not published")
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", zap.Error(err))
		}
	}()

	deps := httpapi.Deps{
		Logger:     logger,
		Cfg:        cfg,
		Store:      store,
		Carts:      cart.NewProvider(store, logger, cart.WithIdleTTL(cfg.CartIdleTTL)),
		Categories: clients.NewCategoryClient(api),
		Products:   products,
		Orders:     orders,
		Auth:       clients.NewAuthClient(api),
		Statistics: clients.NewStatisticsClient(api),
		Uploads:    clients.NewUploadClient(api),
		Checkout:   checkout.NewService(orders, publisher, logger),
		Searcher:   search.NewSearcher(products),
		Images:     images.NewResolver(cfg.APIURL),
		HealthProbes: []clients.HealthProbe{
			{Name: "storefront-api", Client: base, Path: "/"},
		},
	}

	// Diagnostics
	if cfg.MongoDBURI != "" {
		m, err := diag.ConnectMongo(ctx, cfg.MongoDBURI)
		if err != nil {
			logger.Warn("mongodb unavailable, /api/db-test will report it", zap.Error(err))
		} else {
			deps.Diagnostics = m
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = m.Close(closeCtx)
			}()
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(httpapi.NewRouter(deps), "storefront"),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr), zap.String("api", cfg.APIURL), zap.String("storage", cfg.StorageDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

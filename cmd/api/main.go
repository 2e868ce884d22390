package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"localmarket/internal/config"
	"localmarket/internal/db"
	"localmarket/internal/httpserver"
	"localmarket/internal/kvstore"
	"localmarket/internal/logging"
	"localmarket/internal/metrics"
	"localmarket/internal/migrate"
	cartrepo "localmarket/internal/repository/cart"
	customerrepo "localmarket/internal/repository/customer"
	productrepo "localmarket/internal/repository/product"
	shoprepo "localmarket/internal/repository/shop"
	tokenrepo "localmarket/internal/repository/token"
	wishlistrepo "localmarket/internal/repository/wishlist"
	anonymoussvc "localmarket/internal/service/anonymous"
	cartsvc "localmarket/internal/service/cart"
	customersvc "localmarket/internal/service/customer"
	productsvc "localmarket/internal/service/product"
	shopsvc "localmarket/internal/service/shop"
	wishlistsvc "localmarket/internal/service/wishlist"
)

type kvBackend interface {
	kvstore.Store
	Ping(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New(logging.Options{ServiceName: "api"})
		bootLog.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(logging.Options{ServiceName: "api", Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer dbpool.Close()

	if cfg.AutoMigrate {
		if err := migrate.Apply(ctx, dbpool); err != nil {
			logger.Fatal().Err(err).Msg("apply migrations")
		}
	}

	kv, closeKV := openKV(ctx, cfg.Redis, logger)
	defer closeKV()

	m := metrics.New(prometheus.DefaultRegisterer)

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	shopService := shopsvc.New(shoprepo.NewPostgres(dbpool, logger))
	cartService := cartsvc.New(cartrepo.NewKV(kv), productService, cartsvc.Options{
		Strategy: cartsvc.ParseMergeStrategy(cfg.Cart.MergeStrategy),
		GuestTTL: cfg.Cart.GuestTTL,
		Logger:   logger,
		Metrics:  m,
	})
	wishlistService := wishlistsvc.New(wishlistrepo.NewPostgres(dbpool, logger), productService, logger, m)
	tokens := tokenrepo.NewPostgres(dbpool)
	customerService := customersvc.New(customerrepo.NewPostgres(dbpool, logger), tokens)
	guestService := anonymoussvc.New(kv)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		ProductSvc:  productService,
		ShopSvc:     shopService,
		CartSvc:     cartService,
		WishlistSvc: wishlistService,
		CustomerSvc: customerService,
		GuestSvc:    guestService,
		DB:          dbpool,
		KV:          kv,
		Metrics:     m,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("init server")
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go sweepExpiredTokens(janitorCtx, tokens, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	} else {
		logger.Info().Msg("server stopped")
	}
}

// openKV connects to Redis, or falls back to the in-process store when
// REDIS_URL is empty.
func openKV(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (kvBackend, func()) {
	if cfg.URL == "" {
		logger.Warn().Msg("REDIS_URL empty, carts and guest sessions are kept in process memory")
		return kvstore.NewMemory(), func() {}
	}
	r, err := kvstore.NewRedis(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to redis")
	}
	return r, func() {
		if err := r.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}
}

type expiredTokenSweeper interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

func sweepExpiredTokens(ctx context.Context, tokens expiredTokenSweeper, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := tokens.DeleteExpired(ctx, now)
			if err != nil {
				logger.Error().Err(err).Msg("sweep expired tokens")
				continue
			}
			if n > 0 {
				logger.Info().Int64("deleted", n).Msg("swept expired tokens")
			}
		}
	}
}

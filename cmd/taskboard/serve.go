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

	"github.com/alecgard/taskboard/internal/api"
	"github.com/alecgard/taskboard/internal/auth"
	"github.com/alecgard/taskboard/internal/cache"
	"github.com/alecgard/taskboard/internal/config"
	"github.com/alecgard/taskboard/internal/hypermedia"
	"github.com/alecgard/taskboard/internal/metrics"
	"github.com/alecgard/taskboard/internal/ratelimit"
	"github.com/alecgard/taskboard/internal/service"
	"github.com/alecgard/taskboard/internal/store"
	"github.com/alecgard/taskboard/internal/store/memory"
	"github.com/alecgard/taskboard/internal/store/postgres"
	"github.com/alecgard/taskboard/internal/validate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Taskboard API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// openStore returns the configured store. pg is non-nil only for the
// postgres driver; closeFn releases the pool.
func openStore(ctx context.Context, cfg *config.Config) (st store.Store, pg *postgres.Store, closeFn func(), err error) {
	if cfg.Store.Driver == config.StoreMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memory.New(), nil, func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("connected to database")

	pg = postgres.NewStore(pool)
	return pg, pg, pool.Close, nil
}

func openCache(ctx context.Context, cfg *config.Config, stop <-chan struct{}) (cache.Backend, func(), error) {
	switch cfg.Cache.Driver {
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("connected to redis cache")
		return r, func() { _ = r.Close() }, nil
	case config.CacheNone:
		return cache.Noop{}, func() {}, nil
	default:
		mem := cache.NewMemory()
		go mem.RunSweeper(cfg.Cache.TTL, stop)
		return mem, func() {}, nil
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, pg, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	m := metrics.New()
	var health api.Pinger
	if pg != nil {
		health = pg
		m.RegisterDBPoolCollector(func() metrics.PoolStats {
			total, idle, acquired, maxConns := pg.PoolStats()
			return metrics.PoolStats{Total: total, Idle: idle, Acquired: acquired, Max: maxConns}
		})
	}

	stopSweepers := make(chan struct{})
	defer close(stopSweepers)

	backend, closeCache, err := openCache(ctx, cfg, stopSweepers)
	if err != nil {
		return err
	}
	defer closeCache()
	responseCache := cache.New(backend, cache.Options{
		Prefix:   cfg.Cache.Prefix,
		TTL:      cfg.Cache.TTL,
		OnLookup: m.ObserveCacheLookup,
	})

	svc := service.New(st, service.Options{
		Hasher:       service.BcryptHasher{Cost: cfg.Auth.BcryptCost},
		AllowedRoles: cfg.Membership.AllowedRoles,
	})

	tokens := auth.NewTokenManager([]byte(cfg.Auth.JWTSecret), cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	authn := auth.NewAuthenticator(tokens, svc.Users)
	authn.OnOutcome(m.IncAuthOutcome)

	limiter := ratelimit.New(cfg.RateLimit.Login, cfg.RateLimit.Window)
	if limiter.Enabled() {
		go limiter.RunSweeper(cfg.RateLimit.Window, stopSweepers)
	}

	router := api.NewRouter(api.RouterDeps{
		Service:   svc,
		Tokens:    tokens,
		Auth:      authn,
		Validator: validate.New(validate.Options{}),
		Links:     hypermedia.NewBuilder(hypermedia.DefaultRoutes, cfg.Server.BaseURL, logger),
		Cache:     responseCache,
		Limiter:   limiter,
		Metrics:   m,
		Health:    health,
		CORS: api.CORSOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: cfg.CORS.AllowedMethods,
			AllowedHeaders: cfg.CORS.AllowedHeaders,
			MaxAge:         cfg.CORS.MaxAge,
		},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "store", cfg.Store.Driver, "cache", cfg.Cache.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.Server.ShutdownTimeout > 0 {
		return cfg.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

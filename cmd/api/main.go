package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"styleshot/internal/catalog"
	"styleshot/internal/entitlement"
	"styleshot/internal/generation"
	"styleshot/internal/http/handlers"
	httpapi "styleshot/internal/http/httpapi"
	"styleshot/internal/infra"
	"styleshot/internal/infra/geoip"
	"styleshot/internal/kvstore"
	"styleshot/internal/middleware"
	"styleshot/internal/prefs"
	"styleshot/internal/quota"
	"styleshot/internal/studio"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	store, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize key-value store")
	}
	defer cleanup()

	cat, err := catalog.Load(cfg.StylesPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load style catalog")
	}

	genClient, err := generation.NewClient(generation.Options{
		BaseURL:        cfg.GenerationBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.GenerationTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build generation client")
	}

	var entService entitlement.Service
	if cfg.EntitlementBaseURL != "" {
		entService, err = entitlement.NewClient(entitlement.Options{
			BaseURL: cfg.EntitlementBaseURL,
			APIKey:  cfg.EntitlementAPIKey,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build entitlement client")
		}
	} else {
		logger.Warn().Msg("no entitlement backend configured, all callers treated as free tier")
		entService = &entitlement.Static{}
	}

	svc, err := studio.NewService(
		cat,
		catalog.NewGate(cfg.FreeStyles),
		quota.NewGate(store, cfg.FreeGenerationLimit, logger),
		entService,
		generation.NewOrchestrator(genClient, cfg.BatchSlots, &logger),
		&logger,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build studio service")
	}

	var lookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable, locale detection degrades to headers")
	} else if resolver != nil {
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(svc, prefs.New(store), logger)
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:             logger,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMin,
		DefaultLocale:      cfg.DefaultLocale,
		CountryLookup:      lookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

// newStore builds the configured key-value backend. The returned cleanup is
// safe to call once, even for backends without resources to release.
func newStore(ctx context.Context, cfg *infra.Config) (kvstore.Store, func(), error) {
	nop := func() {}
	switch cfg.KVBackend {
	case "memory":
		return kvstore.NewMemory(), nop, nil
	case "file":
		store, err := kvstore.NewFileStore(cfg.KVFilePath)
		return store, nop, err
	case "postgres":
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, nop, err
		}
		return kvstore.NewPostgresStore(pool), pool.Close, nil
	case "redis":
		store, err := kvstore.NewRedisStore(ctx, kvstore.RedisOptions{
			Addr:     cfg.RedisAddr,
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			UseTLS:   cfg.RedisUseTLS,
		})
		if err != nil {
			return nil, nop, err
		}
		return store, func() { _ = store.Close() }, nil
	default:
		return nil, nop, fmt.Errorf("unsupported KV_BACKEND %q", cfg.KVBackend)
	}
}

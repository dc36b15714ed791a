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

	"github.com/angelmondragon/crawlops-backend/api/controllers"
	"github.com/angelmondragon/crawlops-backend/api/routes"
	"github.com/angelmondragon/crawlops-backend/internal/bookings"
	"github.com/angelmondragon/crawlops-backend/internal/catalog"
	"github.com/angelmondragon/crawlops-backend/internal/manifest"
	"github.com/angelmondragon/crawlops-backend/internal/orders"
	"github.com/angelmondragon/crawlops-backend/pkg/config"
	"github.com/angelmondragon/crawlops-backend/pkg/db"
	"github.com/angelmondragon/crawlops-backend/pkg/logger"
	"github.com/angelmondragon/crawlops-backend/pkg/metrics"
	"github.com/angelmondragon/crawlops-backend/pkg/migrate"
	"github.com/angelmondragon/crawlops-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	loc, err := cfg.Business.Location()
	if err != nil {
		logg.Error(context.Background(), "failed to load business timezone", err)
		os.Exit(1)
	}

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	} else {
		logg.Warn(context.Background(), "redis not configured, manifest cache disabled")
	}

	transformer, err := orders.NewTransformer(loc, catalog.Default())
	if err != nil {
		logg.Error(context.Background(), "failed to create transformer", err)
		os.Exit(1)
	}
	bookingsRepo := bookings.NewRepository(dbClient.DB())

	ordersService, err := orders.NewService(transformer, bookingsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	manifestParams := manifest.ServiceParams{
		Transformer: transformer,
		Bookings:    bookingsRepo,
		Metrics:     metrics.NewManifestMetrics(prometheus.DefaultRegisterer),
		Logger:      logg,
		Config:      cfg.Manifest,
	}
	var redisPinger controllers.Pinger
	if redisClient != nil {
		redisPinger = redisClient
		if cfg.FeatureFlags.ManifestCache {
			manifestParams.Cache = redisClient
		}
	}
	manifestService, err := manifest.NewService(manifestParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create manifest service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"timezone": loc.String(),
		"sqlite":   cfg.FeatureFlags.UseSQLite,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisPinger,
			Manifest: manifestService,
			Orders:   ordersService,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ssmdetailing/ssm-backend/api/controllers"
	"github.com/ssmdetailing/ssm-backend/api/routes"
	"github.com/ssmdetailing/ssm-backend/internal/auth"
	"github.com/ssmdetailing/ssm-backend/internal/content"
	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/internal/media"
	"github.com/ssmdetailing/ssm-backend/internal/portfolio"
	"github.com/ssmdetailing/ssm-backend/internal/reels"
	"github.com/ssmdetailing/ssm-backend/internal/reviews"
	"github.com/ssmdetailing/ssm-backend/internal/seo"
	"github.com/ssmdetailing/ssm-backend/internal/users"
	"github.com/ssmdetailing/ssm-backend/pkg/auth/session"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/identity"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/maps"
	"github.com/ssmdetailing/ssm-backend/pkg/metrics"
	"github.com/ssmdetailing/ssm-backend/pkg/migrate"
	"github.com/ssmdetailing/ssm-backend/pkg/redis"
	"github.com/ssmdetailing/ssm-backend/pkg/storage"
	"github.com/ssmdetailing/ssm-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	store, err := storage.New(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	httpMetrics := metrics.NewHTTPMetrics(registry)
	engagementMetrics := metrics.NewEngagementMetrics(registry)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	signer, err := identity.NewSigner(cfg.Session.Secret)
	if err != nil {
		logg.Error(ctx, "failed to create session signer", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(ctx, "failed to create auth service", err)
		os.Exit(1)
	}

	mediaService, err := media.NewService(media.ServiceParams{
		Repo:          media.NewRepository(dbClient.DB()),
		Store:         store,
		Config:        cfg.Media,
		AwaitFinalize: cfg.Storage.Driver == config.StorageDriverGCS,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create media service", err)
		os.Exit(1)
	}

	contentParams := content.ServiceParams{
		Repo:     content.NewRepository(dbClient.DB()),
		Cache:    redisClient,
		Logger:   logg,
		CacheTTL: cfg.Cache.ContentTTL,
	}
	if cfg.GoogleMaps.APIKey != "" {
		placesClient, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			logg.Error(ctx, "failed to create places client", err)
			os.Exit(1)
		}
		contentParams.Places = placesClient
	} else {
		logg.Warn(ctx, "google maps api key missing, address autocomplete disabled")
	}
	contentService, err := content.NewService(contentParams)
	if err != nil {
		logg.Error(ctx, "failed to create content service", err)
		os.Exit(1)
	}

	portfolioService, err := portfolio.NewService(portfolio.ServiceParams{
		Repo:   portfolio.NewRepository(dbClient.DB()),
		Media:  mediaService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create portfolio service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.NewRepository(dbClient.DB()), nil)
	if err != nil {
		logg.Error(ctx, "failed to create reviews service", err)
		os.Exit(1)
	}

	broker := engagement.NewRedisBroker(redisClient)
	engagementService, err := engagement.NewService(engagement.ServiceParams{
		Repo:    engagement.NewRepository(dbClient.DB()),
		Tx:      dbClient,
		Broker:  broker,
		Metrics: engagementMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create engagement service", err)
		os.Exit(1)
	}

	eventHub := engagement.NewHub(broker, engagement.HubOptions{
		MaxPerOwner: cfg.PublicRateLimit.EventStreamsPerIP,
		MaxTotal:    cfg.PublicRateLimit.EventStreamsTotal,
	})
	defer eventHub.Close()

	reelsService, err := reels.NewService(reels.ServiceParams{
		Repo:   reels.NewRepository(dbClient.DB()),
		Likes:  engagementService,
		Media:  mediaService,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create reels service", err)
		os.Exit(1)
	}

	seoService := seo.NewService(contentService, reviewsService, cfg.App.PublicBaseURL, nil)

	deps := routes.Dependencies{
		Redis:    redisClient,
		Sessions: sessionManager,
		Signer:   signer,
		Pingers: map[string]controllers.Pinger{
			"db":      dbClient,
			"redis":   redisClient,
			"storage": store,
		},
		Auth:              authService,
		Content:           contentService,
		Portfolio:         portfolioService,
		Reviews:           reviewsService,
		Reels:             reelsService,
		Engagement:        engagementService,
		Media:             mediaService,
		SEO:               seoService,
		Events:            eventHub,
		HTTPMetrics:       httpMetrics,
		EngagementMetrics: engagementMetrics,
		Gatherer:          registry,
	}
	if localStore, ok := store.(*local.Store); ok {
		deps.Uploads = localStore.Handler()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("K_REVISION")
	if id == "" {
		id = "local"
	}
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
		"storage":  cfg.Storage.Driver,
	})
	logg.Info(logCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(logCtx, "graceful shutdown failed", err)
		}
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ssmdetailing/ssm-backend/internal/cron"
	"github.com/ssmdetailing/ssm-backend/internal/engagement"
	"github.com/ssmdetailing/ssm-backend/internal/media"
	"github.com/ssmdetailing/ssm-backend/internal/reviews"
	"github.com/ssmdetailing/ssm-backend/pkg/bigquery"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/metrics"
	"github.com/ssmdetailing/ssm-backend/pkg/migrate"
	"github.com/ssmdetailing/ssm-backend/pkg/redis"
	"github.com/ssmdetailing/ssm-backend/pkg/storage"
)

const lockName = "cron-worker"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

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

	engagementService, err := engagement.NewService(engagement.ServiceParams{
		Repo:   engagement.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Logger: logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create engagement service", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry()
	mustRegister(ctx, logg, registry, func() (cron.Job, error) {
		return cron.NewReelCounterReconcileJob(cron.ReelCounterReconcileJobParams{
			Logger:     logg,
			Engagement: engagementService,
		})
	})
	mustRegister(ctx, logg, registry, func() (cron.Job, error) {
		return cron.NewReviewRetentionJob(cron.ReviewRetentionJobParams{
			Logger:        logg,
			Reviews:       reviews.NewRepository(dbClient.DB()),
			RetentionDays: cfg.Cron.ReviewRetentionDays,
		})
	})
	mustRegister(ctx, logg, registry, func() (cron.Job, error) {
		return cron.NewPendingMediaCleanupJob(cron.PendingMediaCleanupJobParams{
			Logger:        logg,
			MediaRepo:     media.NewRepository(dbClient.DB()),
			Store:         store,
			RetentionDays: cfg.Cron.PendingMediaRetentionDays,
		})
	})

	if cfg.BigQuery.Enabled() {
		bq, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer bq.Close()
		mustRegister(ctx, logg, registry, func() (cron.Job, error) {
			return cron.NewReelEngagementExportJob(cron.ReelEngagementExportJobParams{
				Logger:     logg,
				Engagement: engagementService,
				Warehouse:  bq,
			})
		})
	} else {
		logg.Info(ctx, "bigquery not configured; engagement export disabled")
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey(lockName), 2*cfg.Cron.Interval)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", err)
		os.Exit(1)
	}

	ctx = logg.WithField(ctx, "jobs", registry.Names())
	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle finished with errors", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func mustRegister(ctx context.Context, logg *logger.Logger, registry *cron.Registry, build func() (cron.Job, error)) {
	job, err := build()
	if err != nil {
		logg.Error(ctx, "failed to build cron job", err)
		os.Exit(1)
	}
	registry.Register(job)
}

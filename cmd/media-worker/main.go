package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/ssmdetailing/ssm-backend/internal/media"
	"github.com/ssmdetailing/ssm-backend/internal/media/consumer"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "media-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "media-worker"

	logg = logger.New(logger.Options{
		ServiceName: "media-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	mediaRepo := media.NewRepository(dbClient.DB())
	var runners []namedRunner
	if sub := pubsubClient.MediaSubscription(); sub != nil {
		c, err := consumer.NewConsumer(mediaRepo, sub, logg)
		requireResource(ctx, logg, "media finalize consumer", err)
		runners = append(runners, namedRunner{name: "finalize", run: c.Run})
	}
	if sub := pubsubClient.MediaDeletionSubscription(); sub != nil {
		c, err := consumer.NewDeletionConsumer(mediaRepo, sub, logg)
		requireResource(ctx, logg, "media deletion consumer", err)
		runners = append(runners, namedRunner{name: "deletion", run: c.Run})
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"serviceKind": cfg.Service.Kind,
		"env":         cfg.App.Env,
	})
	logg.Info(runCtx, "media worker ready")

	g, gctx := errgroup.WithContext(runCtx)
	for _, r := range runners {
		g.Go(func() error { return r.run(logg.WithField(gctx, "consumer", r.name)) })
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "media worker stopped", err)
		os.Exit(1)
	}
	logg.Info(runCtx, "media worker shutting down")
}

type namedRunner struct {
	name string
	run  func(ctx context.Context) error
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

// Command create-admin creates the site administrator, or resets the password
// of an existing one. Credentials come from flags or SSM_ADMIN_EMAIL and
// SSM_ADMIN_PASSWORD; nothing is baked into the binary.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ssmdetailing/ssm-backend/internal/auth"
	"github.com/ssmdetailing/ssm-backend/internal/users"
	"github.com/ssmdetailing/ssm-backend/pkg/config"
	"github.com/ssmdetailing/ssm-backend/pkg/db"
	"github.com/ssmdetailing/ssm-backend/pkg/logger"
	"github.com/ssmdetailing/ssm-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "create-admin"})

	_ = godotenv.Load()

	email := flag.String("email", os.Getenv("SSM_ADMIN_EMAIL"), "admin email (default $SSM_ADMIN_EMAIL)")
	password := flag.String("password", "", "admin password (default $SSM_ADMIN_PASSWORD)")
	name := flag.String("name", os.Getenv("SSM_ADMIN_NAME"), "display name")
	flag.Parse()

	pw := *password
	if pw == "" {
		pw = os.Getenv("SSM_ADMIN_PASSWORD")
	}
	if strings.TrimSpace(*email) == "" || pw == "" {
		fmt.Fprintln(os.Stderr, "email and password are required (flags or SSM_ADMIN_EMAIL / SSM_ADMIN_PASSWORD)")
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "create-admin",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	provisioner, err := auth.NewProvisioner(users.NewRepository(dbClient.DB()), cfg.Password)
	requireResource(ctx, logg, "provisioner", err)

	result, err := provisioner.CreateOrReset(ctx, auth.ProvisionRequest{
		Email:       *email,
		Password:    pw,
		DisplayName: *name,
	})
	if err != nil {
		logg.Error(ctx, "provision admin", err)
		os.Exit(1)
	}

	action := "reset"
	if result.Created {
		action = "created"
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"user_id": result.User.ID,
		"email":   result.User.Email,
		"action":  action,
	}), "admin account ready")
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}

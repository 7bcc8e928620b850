package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-desk/internal/repositories"
	"ticket-desk/pkg/config"
	"ticket-desk/pkg/database/postgresql"
	applogger "ticket-desk/pkg/logger"
	"ticket-desk/seeders"
)

var adminPassword string

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create initial data",
	}

	admin := &cobra.Command{
		Use:   "admin",
		Short: "Create the ADMIN_EMAIL account if it does not exist",
		RunE:  runSeedAdmin,
	}
	admin.Flags().StringVarP(&adminPassword, "password", "p", "", "Admin password (default: $ADMIN_PASSWORD)")

	cmd.AddCommand(admin)
	return cmd
}

func runSeedAdmin(cmd *cobra.Command, _ []string) error {
	cfg := config.New()
	logger, err := applogger.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	password := adminPassword
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	if password == "" {
		return errors.New("admin password is required (--password or ADMIN_PASSWORD)")
	}

	ctx := cmd.Context()
	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrateUp(ctx, pool, logger); err != nil {
		return err
	}

	users := repositories.NewUserRepository(pool, logger.Named("user-repository"))
	if _, err := seeders.SeedAdmin(ctx, users, cfg.Auth.BootstrapAdmin, password, logger.Named("seed")); err != nil {
		logger.Error("seeding admin failed", zap.Error(err))
		return err
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ticket-desk/pkg/config"
	"ticket-desk/pkg/database/postgresql"
	applogger "ticket-desk/pkg/logger"
)

var steps int

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration tools",
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE:  runDown,
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "Number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: runUp},
		down,
		&cobra.Command{Use: "status", Short: "Show migration status", RunE: runStatus},
	)
	return cmd
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	migrator, err := postgresql.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()
	return migrator.Up(ctx)
}

// withMigrator connects to the configured database and hands a migrator to fn.
func withMigrator(cmd *cobra.Command, fn func(ctx context.Context, m *postgresql.Migrator) error) error {
	cfg := config.New()
	logger, err := applogger.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("could not build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger.Named("postgres"))
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := postgresql.NewMigrator(pool, logger)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	return fn(ctx, migrator)
}

func runUp(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(ctx context.Context, m *postgresql.Migrator) error {
		return m.Up(ctx)
	})
}

func runDown(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(ctx context.Context, m *postgresql.Migrator) error {
		return m.Down(ctx, steps)
	})
}

func runStatus(cmd *cobra.Command, _ []string) error {
	return withMigrator(cmd, func(ctx context.Context, m *postgresql.Migrator) error {
		states, err := m.Status(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tSTATE\tFILE")
		for _, s := range states {
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.Version, s.State, s.File)
		}
		return w.Flush()
	})
}

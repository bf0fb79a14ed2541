// Command migrate applies and rolls back the store schema migrations.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	"github.com/iliyamo/vidly/internal/config"
	"github.com/iliyamo/vidly/internal/database"
	"github.com/iliyamo/vidly/internal/logging"
	"github.com/iliyamo/vidly/internal/migrations"
)

// app carries what every subcommand needs once the database is open.
type app struct {
	logger   *logrus.Logger
	db       *bun.DB
	migrator *migrate.Migrator
	out      io.Writer
}

func main() {
	_ = godotenv.Load()
	logger := logging.New(config.LoadLogConfig())
	if err := newRootCmd(logger).ExecuteContext(context.Background()); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	a := &app{logger: logger, out: os.Stdout}
	var verbose bool

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Database migration tool for the vidly store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			db, err := database.OpenBun(config.LoadDatabase(), verbose)
			if err != nil {
				return err
			}
			a.db = db
			a.migrator = migrate.NewMigrator(db, migrations.Migrations)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.db != nil {
				return a.db.Close()
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every SQL statement")

	root.AddCommand(
		a.initCmd(),
		a.upCmd(),
		a.downCmd(),
		a.statusCmd(),
		a.resetCmd(),
	)
	return root
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the migration tracking tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.migrator.Init(cmd.Context()); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			a.logger.Info("migration tracking tables initialized")
			return nil
		},
	}
}

func (a *app) upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.migrator.Init(ctx); err != nil {
				return fmt.Errorf("init: %w", err)
			}
			if err := a.migrator.Lock(ctx); err != nil {
				return fmt.Errorf("lock: %w", err)
			}
			defer a.migrator.Unlock(ctx) //nolint:errcheck

			group, err := a.migrator.Migrate(ctx)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if group.IsZero() {
				a.logger.Info("no new migrations to run")
				return nil
			}
			a.logger.WithFields(logrus.Fields{
				"group":      group.String(),
				"migrations": len(group.Migrations),
			}).Info("migrated")
			return nil
		},
	}
}

func (a *app) downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := a.migrator.Lock(ctx); err != nil {
				return fmt.Errorf("lock: %w", err)
			}
			defer a.migrator.Unlock(ctx) //nolint:errcheck

			group, err := a.migrator.Rollback(ctx)
			if err != nil {
				return fmt.Errorf("rollback: %w", err)
			}
			if group.IsZero() {
				a.logger.Info("no migrations to roll back")
				return nil
			}
			a.logger.WithField("group", group.String()).Info("rolled back")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ms, err := a.migrator.MigrationsWithStatus(cmd.Context())
			if err != nil {
				return fmt.Errorf("status: %w", err)
			}
			printStatus(a.out, ms)
			return nil
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset drops every table; rerun with --yes to confirm")
			}
			ctx := cmd.Context()
			if err := a.migrator.Lock(ctx); err != nil {
				return fmt.Errorf("lock: %w", err)
			}
			defer a.migrator.Unlock(ctx) //nolint:errcheck

			for {
				group, err := a.migrator.Rollback(ctx)
				if err != nil {
					return fmt.Errorf("rollback: %w", err)
				}
				if group.IsZero() {
					break
				}
				a.logger.WithField("group", group.String()).Info("rolled back")
			}
			a.logger.Info("database reset")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func printStatus(w io.Writer, ms migrate.MigrationSlice) {
	fmt.Fprintln(w, "Migration Status:")
	fmt.Fprintln(w, "================")
	for _, m := range ms {
		status := "pending"
		if m.IsApplied() {
			status = "applied at " + m.MigratedAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%-50s %s\n", m.Name+"_"+m.Comment, status)
	}
}

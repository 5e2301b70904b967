package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skyjump/internal/config"
	"github.com/cory-johannsen/skyjump/internal/observability"
)

// migrateOptions selects what the migrate command does.
type migrateOptions struct {
	source    string
	direction string
	steps     int
	// force marks the schema clean at this version; -1 disables it.
	force int
}

func (o migrateOptions) validate() error {
	if o.direction != "up" && o.direction != "down" {
		return fmt.Errorf("invalid direction %q: want up or down", o.direction)
	}
	if o.steps < 0 {
		return fmt.Errorf("steps must be >= 0, got %d", o.steps)
	}
	if o.force < -1 {
		return fmt.Errorf("force version must be >= 0, got %d", o.force)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	opts := migrateOptions{}
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the player statistics schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runMigrate(cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.source, "source", "file://migrations", "migration source URL")
	cmd.Flags().StringVar(&opts.direction, "direction", "up", "migration direction: up or down")
	cmd.Flags().IntVar(&opts.steps, "steps", 0, "number of steps (0 = all)")
	cmd.Flags().IntVar(&opts.force, "force", -1, "mark a dirty schema clean at this version and exit")
	return cmd
}

// runMigrate moves the configured database's schema as opts describe and
// reports the resulting version on out.
//
// Precondition: opts must be valid.
func runMigrate(cfg config.Config, opts migrateOptions, out io.Writer) error {
	start := time.Now()

	logger, err := observability.NewLogger(cfg.Logging, "migrate")
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	m, err := migrate.New(opts.source, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	switch {
	case opts.force >= 0:
		err = m.Force(opts.force)
	case opts.direction == "up" && opts.steps > 0:
		err = m.Steps(opts.steps)
	case opts.direction == "up":
		err = m.Up()
	case opts.steps > 0:
		err = m.Steps(-opts.steps)
	default:
		err = m.Down()
	}
	noChange := errors.Is(err, migrate.ErrNoChange)
	if err != nil && !noChange {
		return fmt.Errorf("migrating %s: %w", opts.direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("reading schema version: %w", verr)
	}
	elapsed := time.Since(start)

	switch {
	case opts.force >= 0:
		fmt.Fprintf(out, "forced version=%d [%s]\n", version, elapsed)
	case noChange:
		fmt.Fprintf(out, "no changes (version=%d dirty=%v) [%s]\n", version, dirty, elapsed)
	default:
		fmt.Fprintf(out, "migrated %s to version=%d dirty=%v [%s]\n", opts.direction, version, dirty, elapsed)
	}
	logger.Info("migration complete",
		zap.String("direction", opts.direction),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

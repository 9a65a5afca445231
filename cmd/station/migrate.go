package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"train-station/internal/database/migrations"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the Postgres schema migrations",
	}

	// withRunner connects, runs fn and closes the runner, which also closes the pool.
	withRunner := func(cmd *cobra.Command, fn func(r *migrations.Runner) error) error {
		if a.cfg.Database.Driver != "postgres" {
			return errors.New("migrations apply to DB_DRIVER=postgres only; sqlite builds its schema on startup")
		}
		db, err := connect(cmd.Context(), a.cfg.Database, a.log)
		if err != nil {
			return err
		}
		runner := migrations.NewRunner(db.Bun.DB, a.cfg.Database.MigrationsDir, a.log)
		defer func() {
			if err := runner.Close(); err != nil {
				a.log.Warn("MIGRATE", err.Error())
			}
			_ = db.Close()
		}()
		return fn(runner)
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, func(r *migrations.Runner) error { return r.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, func(r *migrations.Runner) error { return r.Down() })
			},
		},
		&cobra.Command{
			Use:   "to VERSION",
			Short: "Migrate up or down to VERSION",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withRunner(cmd, func(r *migrations.Runner) error { return r.To(uint(v)) })
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied and clear the dirty flag",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				return withRunner(cmd, func(r *migrations.Runner) error { return r.Force(v) })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withRunner(cmd, func(r *migrations.Runner) error {
					v, dirty, err := r.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return nil
				})
			},
		},
	)
	return cmd
}

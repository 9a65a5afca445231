package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"train-station/internal/database/seed"
)

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load sample stations, trains, routes and journeys into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := connect(ctx, a.cfg.Database, a.log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := prepareSchema(ctx, db, a.cfg.Database, a.log); err != nil {
				return err
			}
			res, err := seed.Run(ctx, db, time.Now().UTC(), a.log)
			if err != nil {
				return err
			}
			if res.Skipped {
				fmt.Fprintln(cmd.OutOrStdout(), "database already populated, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d stations, %d trains, %d routes, %d journeys\n",
				res.Stations, res.Trains, res.Routes, res.Journeys)
			return nil
		},
	}
}

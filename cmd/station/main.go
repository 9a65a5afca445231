package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"train-station/internal/config"
	"train-station/internal/logger"
)

type app struct {
	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "station",
		Short:         "Train station booking service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envLoaded := godotenv.Load() == nil
			a.cfg = config.Load()

			log, err := logger.NewLogger(a.cfg.LogDir)
			if err != nil {
				return err
			}
			a.log = log
			level, err := logger.ParseLevel(a.cfg.LogLevel)
			if err != nil {
				log.Close()
				return err
			}
			log.SetLevel(level)
			if envLoaded {
				log.Info("CONFIG", "Loaded environment variables from .env file")
			} else {
				log.Warn("CONFIG", ".env file not found, using environment variables")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				a.log.Close()
			}
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newTokenCmd(a),
		newEventsCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

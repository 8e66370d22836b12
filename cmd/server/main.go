package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/iho/ledgersync/internal/infrastructure/config"
	"github.com/iho/ledgersync/internal/infrastructure/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           "ledgersync",
		Short:         "Personal finance API mirrored to an ERP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			cfg = loaded

			logger.SetGlobal(logger.New(logger.Config{
				Level:   cfg.LogLevel,
				Format:  cfg.LogFormat,
				Service: "ledgersync",
			}))
			return nil
		},
	}

	current := func() *config.Config { return cfg }
	rootCmd.AddCommand(newServeCmd(current), newMigrateCmd(current))

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		log.Error().Err(err).Msg("invalid flags")
		return err
	})

	return rootCmd
}

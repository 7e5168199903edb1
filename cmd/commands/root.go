// Package commands defines the accountd command line.
package commands

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-petr/pet-account/internal/middleware"
	"github.com/go-petr/pet-account/pkg/configpkg"
)

var (
	configPath string
	config     configpkg.Config
	logger     zerolog.Logger
)

// Execute parses the command line and runs the selected command.
func Execute() error {
	root := &cobra.Command{
		Use:           "accountd",
		Short:         "Account and balance transaction API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := configpkg.Load(configPath)
			if err != nil {
				return err
			}

			config = c
			logger = middleware.CreateLogger(config)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config-path", "./configs", "directory holding app.env")

	root.AddCommand(serveCmd(), migrateCmd())

	err := root.Execute()
	if err != nil {
		log.Error().Err(err).Msg("command failed")
	}

	return err
}

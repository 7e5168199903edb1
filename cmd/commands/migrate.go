package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-account/db/migration"
	"github.com/go-petr/pet-account/pkg/dbpkg"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.DBDriver == DriverMemory {
				return fmt.Errorf("nothing to migrate for driver %q", DriverMemory)
			}

			db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
			if err != nil {
				return fmt.Errorf("cannot connect to database: %w", err)
			}
			defer db.Close()

			return migration.Up(db, logger)
		},
	}
}

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-petr/pet-account/cmd/httpserver"
	"github.com/go-petr/pet-account/internal/ledgerservice"
	"github.com/go-petr/pet-account/internal/memstore"
	"github.com/go-petr/pet-account/internal/store"
	"github.com/go-petr/pet-account/internal/transactioncache"
	"github.com/go-petr/pet-account/pkg/dbpkg"

	_ "github.com/lib/pq"
)

// DriverMemory selects the in-process store instead of a database.
const DriverMemory = "memory"

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}

			cache, err := openCache(cmd.Context())
			if err != nil {
				return err
			}

			server, err := httpserver.New(st, cache, logger, config)
			if err != nil {
				return fmt.Errorf("cannot create server: %w", err)
			}

			logger.Info().Str("address", config.ServerAddress).Msg("ACCOUNT API SERVER HAS STARTED")

			return server.Engine.Run(config.ServerAddress)
		},
	}
}

func openStore() (store.Store, error) {
	if config.DBDriver == DriverMemory {
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		return memstore.New(), nil
	}

	db, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to database: %w", err)
	}

	return store.NewSQLStore(db), nil
}

func openCache(ctx context.Context) (ledgerservice.Cache, error) {
	if config.RedisAddress == "" {
		return transactioncache.Nop{}, nil
	}

	client, err := transactioncache.Connect(ctx, config.RedisAddress)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}

	return transactioncache.New(client, config.TransactionCacheTTL), nil
}

package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"example.com/backstage/services/supplychain/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Create tables (postgres) or indexes (mongodb) for the configured store`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		store, err := database.Open(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer store.Close(ctx)

		log.Info().Str("driver", cfg.DB.Driver).Msg("Running database migrations...")
		if err := store.Migrate(ctx); err != nil {
			return err
		}

		log.Info().Msg("Database migrations completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-match-backend/internal/repo"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rootOpts.Config()
			db, err := openDB(cfg.DB)
			if err != nil {
				return err
			}
			defer closeDB(db)
			log.Info().Str("driver", cfg.DB.Driver).Msg("schema migrated")
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

// NewPruneCommand creates the prune-idempotency command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "prune-idempotency",
		Short: "Delete expired Idempotency-Key records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(rootOpts.Config().DB)
			if err != nil {
				return err
			}
			defer closeDB(db)

			n, err := repo.PruneIdempotency(cmd.Context(), db, time.Now().UTC())
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			log.Info().Int64("removed", n).Msg("idempotency records pruned")
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired idempotency records\n", n)
			return nil
		},
	}
}

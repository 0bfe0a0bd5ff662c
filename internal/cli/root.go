// Package cli implements the matchd command line: the HTTP server and the
// maintenance commands that share its configuration and datastore.
package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-match-backend/internal/config"
	"github.com/tbourn/go-match-backend/internal/observability"
)

// DefaultEnvFile is read when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

// RootOptions holds global flags and the configuration resolved from them.
type RootOptions struct {
	EnvFile string
	Version string

	cfg config.Config
}

// Config returns the configuration loaded before the subcommand ran.
func (o *RootOptions) Config() config.Config { return o.cfg }

// NewRootCommand creates the root command for matchd.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Version: version}

	cmd := &cobra.Command{
		Use:           "matchd",
		Short:         "matchd - likes, matches and first-date scheduling",
		Long:          "Serves the match API and runs datastore maintenance for it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(opts.EnvFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			opts.cfg = cfg
			observability.SetupLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName, opts.Version)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", DefaultEnvFile, "dotenv file loaded before reading the environment")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPruneCommand(opts))

	return cmd
}

// loadEnvFile merges path into the process environment without overriding
// variables that are already set. Only an explicitly requested file must exist.
func loadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || (!required && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("env file %s: %w", path, err)
}

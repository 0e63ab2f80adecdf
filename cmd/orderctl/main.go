// Command orderctl runs order maintenance tasks against the order store.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linentrack/internal/config"
	"linentrack/internal/infrastructure/database"
	"linentrack/internal/infrastructure/logger"
	"linentrack/internal/order"
)

func main() {
	if err := execute(newRootCmd()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the store connection shared by the subcommands. It is opened
// before a subcommand runs and closed by execute.
type app struct {
	configPath string
	verbose    bool

	logger *zap.Logger
	db     *sql.DB
	orders *order.Module
}

// execute runs the command tree and releases the store whether or not the
// command failed.
func execute(cmd *cobra.Command, a *app) error {
	err := cmd.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "orderctl",
		Short: "Maintain production orders from the command line",
		Long: `orderctl imports, exports, lists and updates production orders.

It reads the same configuration as the server: an optional config.yaml,
a local .env file and the environment.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newListCmd(a),
		newAdvanceCmd(a),
		newPurgeCmd(a),
	)

	return cmd, a
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCfg := cfg.Log
	logCfg.Format = "console"
	if a.verbose {
		logCfg.Level = "debug"
	} else if logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	a.logger, err = logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	a.db, err = database.NewConnection(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.EnsureSchema(ctx, a.db); err != nil {
		return fmt.Errorf("preparing order store: %w", err)
	}

	a.orders = order.NewModule(a.db, cfg, a.logger)
	return nil
}

func (a *app) close() error {
	if a.logger != nil {
		_ = a.logger.Sync()
		a.logger = nil
	}
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

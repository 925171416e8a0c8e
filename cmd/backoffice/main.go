// Command backoffice runs administrative tasks against the store database.
package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"directsales/internal/config"
	"directsales/internal/db"
	"directsales/internal/logging"
)

var Version = "dev"

// app carries what every subcommand needs once the root has connected.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func main() {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:           "backoffice",
		Short:         "Store back office: ranks, payments, commissions, users",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}

	rootCmd.AddCommand(ranksCmd(a))
	rootCmd.AddCommand(paymentsCmd(a))
	rootCmd.AddCommand(commissionsCmd(a))
	rootCmd.AddCommand(usersCmd(a))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		a.close()
		os.Exit(1)
	}
}

func (a *app) open(cmd *cobra.Command) error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, "console")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	pool, err := db.Connect(cmd.Context(), cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	a.cfg, a.logger, a.pool = cfg, logger.Named("backoffice"), pool
	return nil
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
		a.pool = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/Totarae/linkgate/internal/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL migrations",
	}
	cmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_DSN"), "PostgreSQL DSN")

	run := func(apply func(string, *zap.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if dsn == "" {
				return fmt.Errorf("--dsn or DATABASE_DSN is required")
			}
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return apply(dsn, logger)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", Args: cobra.NoArgs, RunE: run(migrations.Up)},
		&cobra.Command{Use: "down", Short: "Roll back all migrations", Args: cobra.NoArgs, RunE: run(migrations.Down)},
	)
	return cmd
}

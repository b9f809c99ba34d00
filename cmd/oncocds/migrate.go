package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oncology-cds-engine/internal/database"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	withRunner := func(fn func(cmd *cobra.Command, runner *database.MigrationRunner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			url := database.FromSettings(c.cfg.Database).URL()
			runner, err := database.NewMigrationRunner(url, c.cfg.Database.MigrationsPath, c.logger)
			if err != nil {
				return err
			}
			defer runner.Close()
			return fn(cmd, runner)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: withRunner(func(cmd *cobra.Command, runner *database.MigrationRunner) error {
				return runner.Up(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: withRunner(func(cmd *cobra.Command, runner *database.MigrationRunner) error {
				return runner.Down(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: withRunner(func(cmd *cobra.Command, runner *database.MigrationRunner) error {
				status, err := runner.Status()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), status)
				return nil
			}),
		},
	)
	return cmd
}

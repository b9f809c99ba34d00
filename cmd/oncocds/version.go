package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oncology-cds-engine/internal/service"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of oncocds",
		// Skip configuration loading.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oncocds %s (engine %s)\n", version, service.EngineVersion)
		},
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oncology-cds-engine/internal/feedback"
	"github.com/oncology-cds-engine/internal/setup"
)

func newFeedbackCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Summarise, export and import clinician feedback",
	}

	withStore := func(fn func(cmd *cobra.Command, args []string, store feedback.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			store, err := feedback.Open(c.cfg.Feedback)
			if err != nil {
				return err
			}
			defer store.Close()
			return fn(cmd, args, store)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary",
			Short: "Print feedback counts per decision",
			RunE: withStore(func(cmd *cobra.Command, _ []string, store feedback.Store) error {
				summary, err := store.Summarize(cmd.Context())
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			}),
		},
		&cobra.Command{
			Use:   "export",
			Short: "Write all feedback as JSON to stdout",
			RunE: withStore(func(cmd *cobra.Command, _ []string, store feedback.Store) error {
				return store.ExportJSON(cmd.Context(), cmd.OutOrStdout())
			}),
		},
		&cobra.Command{
			Use:   "import <file>",
			Short: "Import feedback from a JSON export, skipping existing entries",
			Args:  cobra.ExactArgs(1),
			RunE: withStore(func(cmd *cobra.Command, args []string, store feedback.Store) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				imported, skipped, err := store.ImportJSON(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d, skipped %d\n", imported, skipped)
				return nil
			}),
		},
	)
	return cmd
}

func newMCPConfigCmd() *cobra.Command {
	var (
		opts  setup.Options
		write string
	)

	cmd := &cobra.Command{
		Use:   "mcp-config",
		Short: "Print or register the MCP client entry for the lite server",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if write != "" {
				if err := setup.Register(write, opts); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s in %s\n", opts.Name, write)
				return nil
			}
			return setup.Print(cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", setup.DefaultServerName, "server name in the client configuration")
	cmd.Flags().StringVar(&opts.BinaryPath, "binary", "", "path to the lite server binary")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "ONCOCDS_DATA_DIR for the server")
	cmd.Flags().StringVar(&opts.CataloguePath, "catalogue", "", "ONCOCDS_CATALOGUE_PATH for the server")
	cmd.Flags().StringVar(&write, "write", "", "client configuration file to update instead of printing")
	return cmd
}

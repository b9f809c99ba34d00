// Package main is the operator CLI for the oncology recommendation engine.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oncology-cds-engine/internal/bootstrap"
	"github.com/oncology-cds-engine/internal/config"
	"github.com/oncology-cds-engine/internal/domain"
)

// version is set at build time via ldflags.
var version = "dev"

// cli carries state shared by the subcommands.
type cli struct {
	configFile string
	cfg        *domain.Config
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "oncocds",
		Short: "Operator CLI for the oncology treatment recommendation engine",
		Long: `oncocds runs the treatment recommendation pipeline from the command line and
manages its protocol catalogue, database schema and clinician feedback.

Configuration is read from config.yaml (or --config) and ONCOCDS_* environment
variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			manager, err := config.NewManager(c.configFile)
			if err != nil {
				return err
			}
			c.cfg = manager.GetConfig()
			c.logger = bootstrap.NewLogger(c.cfg.Logging)
			// Command output goes to stdout; logs must not interleave with it.
			c.logger.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(
		newRecommendCmd(c),
		newProtocolsCmd(c),
		newMigrateCmd(c),
		newFeedbackCmd(c),
		newMCPConfigCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

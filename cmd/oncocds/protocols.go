package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oncology-cds-engine/internal/bootstrap"
	"github.com/oncology-cds-engine/internal/catalogue"
	"github.com/oncology-cds-engine/internal/database"
	"github.com/oncology-cds-engine/internal/repository"
	"github.com/oncology-cds-engine/internal/service"
)

func newProtocolsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protocols",
		Short: "Inspect and manage the protocol catalogue",
	}
	cmd.AddCommand(
		newProtocolsListCmd(c),
		newProtocolsShowCmd(c),
		newProtocolsExportCmd(c),
		newProtocolsSeedCmd(c),
	)
	return cmd
}

func loadCatalogue(cmd *cobra.Command, c *cli) (*catalogue.Catalogue, error) {
	source, closeSource, err := bootstrap.ProtocolSource(cmd.Context(), c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	defer closeSource()
	return catalogue.Load(cmd.Context(), source, c.logger)
}

func newProtocolsListCmd(c *cli) *cobra.Command {
	var cancerType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalogue protocols",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(cmd, c)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCANCER\tSTAGES\tTYPE\tEVIDENCE")
			for _, p := range cat.Entries() {
				if cancerType != "" && !service.CancerTypeMatches(p.CancerType, cancerType) {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\n", p.ID, p.CancerType, p.Stages, p.TreatmentType, p.EvidenceLevel)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&cancerType, "cancer-type", "", "only list protocols matching this diagnosis")
	return cmd
}

func newProtocolsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one protocol as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(cmd, c)
			if err != nil {
				return err
			}
			p, err := cat.Get(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p)
		},
	}
}

func newProtocolsExportCmd(c *cli) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalogue as a YAML document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalogue(cmd, c)
			if err != nil {
				return err
			}
			data, err := catalogue.Marshal(cat.Protocols())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(output, data, 0644)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func newProtocolsSeedCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Store the builtin catalogue (or --file) in the protocols table",
		RunE: func(cmd *cobra.Command, args []string) error {
			protocols := catalogue.Builtin()
			if file != "" {
				loaded, err := catalogue.LoadFile(file)
				if err != nil {
					return err
				}
				protocols = loaded
			}
			// Validate the whole set before touching the database.
			if _, err := catalogue.New(protocols); err != nil {
				return err
			}

			db, err := database.NewConnection(cmd.Context(), database.FromSettings(c.cfg.Database), c.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := repository.NewProtocolRepository(db.Pool, c.logger).Seed(cmd.Context(), protocols)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d protocols\n", n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML/JSON catalogue to seed instead of the builtin one")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oncology-cds-engine/internal/bootstrap"
	"github.com/oncology-cds-engine/internal/domain"
)

func newRecommendCmd(c *cli) *cobra.Command {
	var (
		inputPath string
		explain   bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Generate a treatment recommendation for a patient snapshot",
		Long: `recommend reads a decision input document (JSON) from --input or stdin and
prints the recommendation. With --explain it prints the pipeline trace: the
protocols surviving each stage and the reason every other protocol was dropped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readInput(cmd.InOrStdin(), inputPath)
			if err != nil {
				return err
			}

			rt, err := bootstrap.Build(cmd.Context(), c.cfg, c.logger, bootstrap.Options{})
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			if explain {
				trace, err := rt.Engine.Explain(cmd.Context(), input)
				if err != nil {
					return err
				}
				return writeJSON(out, trace)
			}

			output, err := rt.Engine.GenerateRecommendation(cmd.Context(), input)
			if err != nil {
				return err
			}
			if format == "text" {
				return writeSummary(out, output)
			}
			return writeJSON(out, output)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "decision input JSON file (default: stdin)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the pipeline trace instead of the recommendation")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or text")
	return cmd
}

func readInput(stdin io.Reader, path string) (*domain.DecisionInput, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading decision input: %w", err)
	}

	var input domain.DecisionInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parsing decision input: %w", err)
	}
	return &input, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummary(w io.Writer, out *domain.DecisionOutput) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommendation %s (confidence %d)\n", out.RecommendationID, out.ConfidenceScore)
	fmt.Fprintf(&b, "Overall risk: %s\n", out.RiskAssessment.OverallRisk)
	fmt.Fprintf(&b, "Primary: %s [%s] evidence %s\n", out.Primary.ProtocolName, out.Primary.ProtocolID, out.Primary.EvidenceStrength)
	for _, m := range out.Primary.Modifications {
		fmt.Fprintf(&b, "  - %s\n", m)
	}
	for _, alt := range out.Alternatives {
		fmt.Fprintf(&b, "Alternative %d: %s [%s] evidence %s\n", alt.Priority, alt.ProtocolName, alt.ProtocolID, alt.EvidenceStrength)
	}
	fmt.Fprintf(&b, "Rationale: %s\n", out.Rationale)
	_, err := io.WriteString(w, b.String())
	return err
}

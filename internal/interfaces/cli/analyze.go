package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <doc.json>",
		Short: "Classify one document and list the facts extracted from it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			var doc pc.DocumentInput
			if err := readJSONFile(args[0], &doc); err != nil {
				return err
			}
			if err := doc.Validate(); err != nil {
				return err
			}

			engine := pc.NewEngine(pc.ThresholdsFromConfig(cliCtx.Config.Comparison), cliCtx.Logger)
			return PrintResult(cmd, analysisReport(engine.Analyze(doc)))
		},
	}
}

type analysisReport pc.DocumentAnalysis

func (r analysisReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(pc.DocumentAnalysis(r))
}

func (r analysisReport) TableHeaders() []string {
	return []string{"Field", "Value"}
}

func (r analysisReport) TableRows() [][]string {
	f := r.FinancialFacts
	return [][]string{
		{"Title", r.Title},
		{"Policy document", strconv.FormatBool(r.IsPolicyDocument)},
		{"Document type", r.DocumentType},
		{"Policy type", r.PolicyType},
		{"Content length", strconv.Itoa(r.ContentLength)},
		{"Coverage", strconv.Itoa(len(r.CoverageFacts))},
		{"Financial", strings.Join(f.Categories(), ", ")},
		{"Terms", strconv.Itoa(len(r.TermsFacts))},
		{"Exclusions", strconv.Itoa(len(r.ExclusionFacts))},
		{"Claims", strconv.Itoa(len(r.ClaimsFacts))},
		{"Topics", truncateString(joinOrDash(r.Topics), 120)},
	}
}

func (r analysisReport) WriteText(w io.Writer) {
	kind := color.YellowString("general document")
	if r.IsPolicyDocument {
		kind = color.GreenString("policy document")
	}
	fmt.Fprintf(w, "%s: %s (%s, %s)\n", color.CyanString(r.Title), kind, r.DocumentType, r.PolicyType)
	fmt.Fprintf(w, "Content length: %d   Data points: %d\n", r.ContentLength, pc.DocumentAnalysis(r).DataPoints())

	heading(w, "Coverage")
	bulletList(w, r.CoverageFacts)

	heading(w, "Financial")
	f := r.FinancialFacts
	for _, row := range []struct {
		label string
		facts []string
	}{
		{"Premiums", f.Premiums},
		{"Deductibles", f.Deductibles},
		{"Limits", f.Limits},
		{"Copays", f.Copays},
		{"Coinsurance", f.Coinsurance},
		{"Out-of-pocket", f.OutOfPocket},
	} {
		fmt.Fprintf(w, "  %s: %s\n", row.label, joinOrDash(row.facts))
	}

	heading(w, "Terms")
	bulletList(w, r.TermsFacts)

	heading(w, "Exclusions")
	bulletList(w, r.ExclusionFacts)

	heading(w, "Claims")
	bulletList(w, r.ClaimsFacts)

	heading(w, "Topics")
	fmt.Fprintf(w, "  %s\n", joinOrDash(r.Topics))
}

//Personal.AI order the ending

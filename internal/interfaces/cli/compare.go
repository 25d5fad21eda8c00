package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/intelligence/insight_gpt"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd(deps CommandDependencies) *cobra.Command {
	var withAI bool

	cmd := &cobra.Command{
		Use:   "compare <doc1.json> <doc2.json>",
		Short: "Compare two policy documents",
		Long: "Run the comparison engine on two JSON documents (id, title, description,\n" +
			"content, pdfText, summaries). Use \"-\" to read one document from stdin.\n" +
			"With --ai the configured question-answering service adds insights.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return runCompare(cmd, cliCtx, deps, args[0], args[1], withAI)
		},
	}

	cmd.Flags().BoolVar(&withAI, "ai", false, "augment the result with model-generated insights")
	return cmd
}

func runCompare(cmd *cobra.Command, cliCtx *CLIContext, deps CommandDependencies, path1, path2 string, withAI bool) error {
	if path1 == "-" && path2 == "-" {
		return errors.New(errors.ErrCodeValidation, "only one document can be read from stdin")
	}

	var doc1, doc2 pc.DocumentInput
	if err := readJSONFile(path1, &doc1); err != nil {
		return err
	}
	if err := readJSONFile(path2, &doc2); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cliCtx.Timeout)
	defer cancel()

	logger := cliCtx.Logger
	engine := pc.NewEngine(pc.ThresholdsFromConfig(cliCtx.Config.Comparison), logger)

	var augmenter pc.Augmenter
	if withAI {
		if !cliCtx.Config.AI.Enabled {
			return errors.New(errors.ErrCodeAIDisabled, "--ai requires ai.enabled in the configuration")
		}
		asker, err := deps.NewAsker(ctx, cliCtx.Config.AI, logger)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeAIUnavailable, "failed to initialize the ai provider")
		}
		augmenter = insight_gpt.NewAugmenter(asker, insight_gpt.Config{
			Timeout:            cliCtx.Config.AI.Timeout,
			PromptContentLimit: cliCtx.Config.Comparison.PromptContentLimit,
			Thresholds:         engine.Thresholds(),
		}, nil, logger)
	}

	orch := pc.NewOrchestrator(engine, augmenter, nil, logger)
	result, err := orch.Compare(ctx, doc1, doc2, pc.WithAI(withAI))
	if err != nil {
		return err
	}
	if withAI && !result.Augmented {
		logger.Warn("ai insights unavailable, showing rule-based result", logging.String("kind", string(result.Kind)))
	}

	return PrintResult(cmd, compareReport{Doc1: doc1.Title, Doc2: doc2.Title, Result: result})
}

// compareReport renders a ComparisonResult for the terminal.
type compareReport struct {
	Doc1   string
	Doc2   string
	Result pc.ComparisonResult
}

func (r compareReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Result)
}

func (r compareReport) TableHeaders() []string {
	return []string{"Metric", "Value"}
}

func (r compareReport) TableRows() [][]string {
	res := r.Result
	rows := [][]string{
		{"Documents", fmt.Sprintf("%s vs %s", r.Doc1, r.Doc2)},
		{"Kind", string(res.Kind)},
		{"Relevance", strconv.Itoa(res.RelevanceScore)},
		{"Content similarity", strconv.Itoa(res.ContentSimilarity)},
		{"Relevant", strconv.FormatBool(res.IsRelevant)},
		{"AI insights", strconv.FormatBool(res.Augmented)},
		{"Summary", truncateString(res.Summary, 120)},
	}
	for i, d := range res.KeyDifferences {
		rows = append(rows, []string{fmt.Sprintf("Difference %d", i+1), truncateString(d, 120)})
	}
	for i, rec := range res.Recommendations {
		rows = append(rows, []string{fmt.Sprintf("Recommendation %d", i+1), truncateString(rec, 120)})
	}
	return rows
}

func (r compareReport) WriteText(w io.Writer) {
	res := r.Result
	fmt.Fprintf(w, "%s vs %s\n", color.CyanString(r.Doc1), color.CyanString(r.Doc2))
	fmt.Fprintf(w, "Kind: %s   Relevance: %s   Similarity: %s   Relevant: %t\n",
		res.Kind, scoreString(res.RelevanceScore), scoreString(res.ContentSimilarity), res.IsRelevant)
	if res.Augmented {
		fmt.Fprintln(w, color.MagentaString("Includes AI-generated insights"))
	}

	heading(w, "Summary")
	fmt.Fprintf(w, "  %s\n", res.Summary)

	heading(w, "Key differences")
	bulletList(w, res.KeyDifferences)

	heading(w, "Recommendations")
	bulletList(w, res.Recommendations)

	heading(w, "Coverage")
	fmt.Fprintf(w, "  %s: %s\n", r.Doc1, joinOrDash(res.CoverageComparison.Doc1))
	fmt.Fprintf(w, "  %s: %s\n", r.Doc2, joinOrDash(res.CoverageComparison.Doc2))

	if len(res.Rationale) > 0 {
		heading(w, "Scoring rationale")
		bulletList(w, res.Rationale)
	}
}

//Personal.AI order the ending

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// tableProvider is implemented by results that can render as a table.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// textProvider is implemented by results with a human-readable rendering.
type textProvider interface {
	WriteText(w io.Writer)
}

// PrintResult outputs data in the format selected by --output.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := OutputText
	if cliCtx, err := GetCLIContext(cmd); err == nil {
		format = cliCtx.OutputFormat
	}

	switch format {
	case OutputJSON:
		return printJSON(cmd.OutOrStdout(), data)
	case OutputTable:
		if tp, ok := data.(tableProvider); ok {
			renderTable(cmd.OutOrStdout(), tp.TableHeaders(), tp.TableRows())
			return nil
		}
	}

	if tp, ok := data.(textProvider); ok {
		tp.WriteText(cmd.OutOrStdout())
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", data)
	return nil
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to encode output")
	}
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.AppendBulk(rows)
	table.Render()
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("OK:"), msg)
}

// scoreString colors a 0-100 score: green from 70, yellow from 40, red below.
func scoreString(score int) string {
	s := fmt.Sprintf("%d%%", score)
	switch {
	case score >= 70:
		return color.GreenString(s)
	case score >= 40:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n", color.New(color.Bold).Sprint(title))
}

func bulletList(w io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// readJSONFile decodes path into dst. "-" reads stdin.
func readJSONFile(path string, dst interface{}) error {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeComparisonInputInvalid, fmt.Sprintf("cannot open %s", path))
		}
		defer f.Close()
		r = f
	}

	dec := json.NewDecoder(r)
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeComparisonInputInvalid, fmt.Sprintf("invalid document JSON in %s", path))
	}
	return nil
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

//Personal.AI order the ending

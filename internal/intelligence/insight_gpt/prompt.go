// Package insight_gpt augments rule-based policy comparisons with insights
// from a question-answering model. It builds the comparison prompt, parses
// the numbered free-text answer and merges it into the rule result.
package insight_gpt

import (
	"bytes"
	"text/template"
	"unicode/utf8"

	"github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// DefaultPromptContentLimit is the number of characters of each document's
// normalized content included in the prompt.
const DefaultPromptContentLimit = 2000

// ---------------------------------------------------------------------------
// Template
// ---------------------------------------------------------------------------

const comparisonPromptTemplate = `
Please analyze and compare these two policy documents:

POLICY 1: "{{ .Doc1.Title }}"
Content: {{ truncate .Doc1.Content .Limit }}
Document Type: {{ .Doc1.DocumentType }}
Policy Type: {{ .Doc1.PolicyType }}

POLICY 2: "{{ .Doc2.Title }}"
Content: {{ truncate .Doc2.Content .Limit }}
Document Type: {{ .Doc2.DocumentType }}
Policy Type: {{ .Doc2.PolicyType }}

Please provide:
1. A detailed comparison summary focusing on actual content differences
2. Key differences between the documents (specific, actionable points)
3. Practical recommendations for someone choosing between these options
4. Relevance assessment (0-100) based on how comparable these documents are

Focus on actual content, not generic policy language. Be specific about what each document offers.
`

var comparisonPrompt = template.Must(template.New("comparison").
	Funcs(template.FuncMap{"truncate": truncate}).
	Parse(comparisonPromptTemplate))

type promptData struct {
	Doc1  policy_compare.DocumentAnalysis
	Doc2  policy_compare.DocumentAnalysis
	Limit int
}

// BuildPrompt renders the comparison question for two analyses. A limit of
// zero or less uses DefaultPromptContentLimit.
func BuildPrompt(a, b policy_compare.DocumentAnalysis, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultPromptContentLimit
	}
	var buf bytes.Buffer
	if err := comparisonPrompt.Execute(&buf, promptData{Doc1: a, Doc2: b, Limit: limit}); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to render comparison prompt")
	}
	return buf.String(), nil
}

// truncate cuts s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

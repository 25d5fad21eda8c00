package policy_compare

import (
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
)

// Outcome is the comparison chosen for a pair of analyses. The choice is
// made once, in Decide; Render produces the final result.
type Outcome interface {
	Kind() Kind
	Render() ComparisonResult
}

// Engine runs the rule-based analysis and comparison. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	thresholds Thresholds
	logger     logging.Logger
}

// NewEngine creates an Engine. Zero threshold fields take the defaults.
func NewEngine(thresholds Thresholds, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{thresholds: thresholds.withDefaults(), logger: logger}
}

// Thresholds returns the effective scoring bars.
func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Analyze normalizes, classifies and fact-extracts one document.
func (e *Engine) Analyze(doc DocumentInput) DocumentAnalysis {
	content := ExtractContent(doc)
	if content.Length < e.thresholds.MinContentWarning {
		e.logger.Warn("document has little content to analyze",
			logging.String("document_id", doc.ID),
			logging.String("title", doc.Title),
			logging.Int("content_length", content.Length))
	}

	class := Classify(content.Text)
	facts := ExtractFacts(content.Text)

	return DocumentAnalysis{
		ID:               doc.ID,
		Title:            doc.Title,
		IsPolicyDocument: class.IsPolicyDocument,
		DocumentType:     class.DocumentType,
		PolicyType:       class.PolicyType,
		CoverageFacts:    facts.Coverage,
		FinancialFacts:   facts.Financial,
		TermsFacts:       facts.Terms,
		ExclusionFacts:   facts.Exclusions,
		ClaimsFacts:      facts.Claims,
		ContentLength:    content.Length,
		Topics:           ExtractTopics(content.Text, doc.Title),
		Content:          content.Text,
		Summary:          doc.summaryText(),
	}
}

// Compare analyzes both inputs and renders their comparison.
func (e *Engine) Compare(a, b DocumentInput) ComparisonResult {
	return e.CompareAnalyses(e.Analyze(a), e.Analyze(b))
}

// CompareAnalyses renders the comparison of two finished analyses.
func (e *Engine) CompareAnalyses(a, b DocumentAnalysis) ComparisonResult {
	outcome := e.Decide(a, b)
	e.logger.Debug("comparison path selected",
		logging.String("kind", string(outcome.Kind())),
		logging.String("doc1", a.Title),
		logging.String("doc2", b.Title))
	return outcome.Render()
}

// Decide picks the policy path when both documents pass the policy gate and
// the generic content path otherwise.
func (e *Engine) Decide(a, b DocumentAnalysis) Outcome {
	relevance := ScoreRelevance(a, b, e.thresholds.RelevanceFloor)

	if a.IsPolicyDocument && b.IsPolicyDocument {
		return PolicyComparison{
			Doc1:       a,
			Doc2:       b,
			Relevance:  relevance,
			thresholds: e.thresholds,
		}
	}
	return GenericContentComparison{
		Doc1:      a,
		Doc2:      b,
		Relevance: relevance,
		Topics:    CompareTopics(a, b),
	}
}

// Package policy_compare is the comparison and content-analysis engine. It
// turns two free-form documents into classified, fact-extracted analyses and
// renders a scored, explainable comparison. Everything here is pure apart
// from the optional Augmenter called by the Orchestrator.
package policy_compare

import (
	"strings"

	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// ---------------------------------------------------------------------------
// Input
// ---------------------------------------------------------------------------

// Summaries holds the generated summaries of a document at each length.
// Legacy is the single-summary field written by older ingestion runs.
type Summaries struct {
	Brief    string `json:"brief,omitempty"`
	Standard string `json:"standard,omitempty"`
	Detailed string `json:"detailed,omitempty"`
	Legacy   string `json:"legacy,omitempty"`
}

// DocumentInput is one side of a comparison as supplied by the caller.
type DocumentInput struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Description         string    `json:"description,omitempty"`
	Content             string    `json:"content,omitempty"`
	PDFText             string    `json:"pdfText,omitempty"`
	Summaries           Summaries `json:"summaries"`
	Status              string    `json:"status,omitempty"`
	HasAttachment       bool      `json:"hasAttachment"`
	AttachmentProcessed bool      `json:"attachmentProcessed"`
}

// Validate enforces the only input-shape rule of the engine: a title.
func (d DocumentInput) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return errors.New(errors.ErrCodeComparisonInputInvalid, "document title is required").
			WithDetail("id=" + d.ID)
	}
	return nil
}

// summaryText returns the richest generated summary, used for key-concept
// extraction when no coverage facts are found.
func (d DocumentInput) summaryText() string {
	switch {
	case d.Summaries.Detailed != "":
		return d.Summaries.Detailed
	case d.Summaries.Standard != "":
		return d.Summaries.Standard
	default:
		return d.Summaries.Legacy
	}
}

// NormalizedContent is the lower-cased concatenation of a document's text parts.
type NormalizedContent struct {
	Text   string
	Length int
}

// ---------------------------------------------------------------------------
// Analysis
// ---------------------------------------------------------------------------

// FinancialFacts holds extracted money-related phrases per category.
type FinancialFacts struct {
	Premiums    []string `json:"premiums"`
	Deductibles []string `json:"deductibles"`
	Limits      []string `json:"limits"`
	Copays      []string `json:"copays"`
	Coinsurance []string `json:"coinsurance"`
	OutOfPocket []string `json:"outOfPocket"`
}

// Total returns the number of financial facts across all categories.
func (f FinancialFacts) Total() int {
	return len(f.Premiums) + len(f.Deductibles) + len(f.Limits) +
		len(f.Copays) + len(f.Coinsurance) + len(f.OutOfPocket)
}

// Categories returns the names of the non-empty categories in fixed order.
func (f FinancialFacts) Categories() []string {
	var out []string
	for _, c := range f.byCategory() {
		if len(c.facts) > 0 {
			out = append(out, c.name)
		}
	}
	return out
}

// Present reports whether any category holds a fact.
func (f FinancialFacts) Present() bool { return f.Total() > 0 }

type namedFacts struct {
	name  string
	facts []string
}

func (f FinancialFacts) byCategory() []namedFacts {
	return []namedFacts{
		{"premiums", f.Premiums},
		{"deductibles", f.Deductibles},
		{"limits", f.Limits},
		{"copays", f.Copays},
		{"coinsurance", f.Coinsurance},
		{"outOfPocket", f.OutOfPocket},
	}
}

// DocumentAnalysis is everything the engine derives from one DocumentInput.
type DocumentAnalysis struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	IsPolicyDocument bool           `json:"isPolicyDocument"`
	DocumentType     string         `json:"documentType"`
	PolicyType       string         `json:"policyType"`
	CoverageFacts    []string       `json:"coverageFacts"`
	FinancialFacts   FinancialFacts `json:"financialFacts"`
	TermsFacts       []string       `json:"termsFacts"`
	ExclusionFacts   []string       `json:"exclusionFacts"`
	ClaimsFacts      []string       `json:"claimsFacts"`
	ContentLength    int            `json:"contentLength"`
	Topics           []string       `json:"topics"`

	// Content is the normalized text; the prompt builder truncates it.
	Content string `json:"-"`
	// Summary is the richest generated summary in its original casing.
	Summary string `json:"-"`
}

// DataPoints counts every extracted fact.
func (a DocumentAnalysis) DataPoints() int {
	return len(a.CoverageFacts) + a.FinancialFacts.Total() +
		len(a.TermsFacts) + len(a.ExclusionFacts) + len(a.ClaimsFacts)
}

// dataQuality is the narrower count used by the narrative and the coverage report.
func (a DocumentAnalysis) dataQuality() int {
	return len(a.CoverageFacts) + a.FinancialFacts.Total() + len(a.ExclusionFacts)
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

// Kind identifies which comparison path produced a result.
type Kind string

const (
	KindPolicy  Kind = "policy"
	KindGeneric Kind = "generic"
)

// CoverageComparison holds the per-document analysis lines.
type CoverageComparison struct {
	Doc1 []string `json:"policy1"`
	Doc2 []string `json:"policy2"`
}

// ComparisonResult is the structured output of one comparison.
type ComparisonResult struct {
	Summary            string             `json:"summary"`
	KeyDifferences     []string           `json:"keyDifferences"`
	Recommendations    []string           `json:"recommendations"`
	CoverageComparison CoverageComparison `json:"coverageComparison"`
	IsRelevant         bool               `json:"isRelevant"`
	RelevanceScore     int                `json:"relevanceScore"`
	ContentSimilarity  int                `json:"contentSimilarity"`
	Kind               Kind               `json:"kind"`
	Augmented          bool               `json:"augmented"`
	Rationale          []string           `json:"rationale,omitempty"`
}

// ---------------------------------------------------------------------------
// Thresholds
// ---------------------------------------------------------------------------

// Caps on every list the engine produces.
const (
	MaxCoverageFacts   = 15
	MaxFinancialFacts  = 5
	MaxTermsFacts      = 8
	MaxExclusionFacts  = 8
	MaxClaimsFacts     = 6
	MaxTopics          = 15
	MaxKeyDifferences  = 8
	MaxRecommendations = 6
)

// Thresholds tunes the scoring bars. Zero fields take the defaults.
type Thresholds struct {
	// RelevanceFloor is the minimum relevance score of any comparison.
	RelevanceFloor int
	// PolicyRelevantThreshold is the rule-only bar for IsRelevant on the policy path.
	PolicyRelevantThreshold int
	// AIRelevantThreshold is the bar for IsRelevant after AI augmentation.
	AIRelevantThreshold int
	// MinContentWarning logs a warning when normalized content is shorter.
	MinContentWarning int
}

// DefaultThresholds returns the production scoring bars.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RelevanceFloor:          20,
		PolicyRelevantThreshold: 40,
		AIRelevantThreshold:     40,
		MinContentWarning:       100,
	}
}

func (t Thresholds) withDefaults() Thresholds {
	d := DefaultThresholds()
	if t.RelevanceFloor <= 0 {
		t.RelevanceFloor = d.RelevanceFloor
	}
	if t.PolicyRelevantThreshold <= 0 {
		t.PolicyRelevantThreshold = d.PolicyRelevantThreshold
	}
	if t.AIRelevantThreshold <= 0 {
		t.AIRelevantThreshold = d.AIRelevantThreshold
	}
	if t.MinContentWarning <= 0 {
		t.MinContentWarning = d.MinContentWarning
	}
	return t
}

// ThresholdsFromConfig maps the comparison section of the configuration.
func ThresholdsFromConfig(cfg config.ComparisonConfig) Thresholds {
	return Thresholds{
		RelevanceFloor:          cfg.RelevanceFloor,
		PolicyRelevantThreshold: cfg.PolicyRelevantThreshold,
		AIRelevantThreshold:     cfg.AIRelevantThreshold,
		MinContentWarning:       cfg.MinContentWarning,
	}.withDefaults()
}

// ClampScore bounds a score to [floor, 100].
func ClampScore(score, floor int) int {
	if score > 100 {
		score = 100
	}
	if score < floor {
		score = floor
	}
	return score
}

package policy_compare

import (
	"fmt"
	"strings"
)

// Caps on the per-section difference lists of the policy path.
const (
	maxCoverageDifferences  = 4
	maxFinancialDifferences = 5
	maxTermsDifferences     = 2
	notSpecified            = "not specified"
)

// PolicyComparison is the outcome for two documents that both pass the
// policy gate. Content similarity is a generic-path measure and stays 0 here.
type PolicyComparison struct {
	Doc1      DocumentAnalysis
	Doc2      DocumentAnalysis
	Relevance Relevance

	thresholds Thresholds
}

func (PolicyComparison) Kind() Kind { return KindPolicy }

func (p PolicyComparison) Render() ComparisonResult {
	a, b := p.Doc1, p.Doc2
	coverage := compareCoverage(a, b)
	financial := compareFinancials(a, b)
	terms := compareTerms(a, b)

	diffs := make([]string, 0, len(coverage)+len(financial)+len(terms))
	diffs = append(diffs, coverage...)
	diffs = append(diffs, financial...)
	diffs = append(diffs, terms...)

	score := p.Relevance.Score
	return ComparisonResult{
		Summary:         policySummary(a, b, score, len(coverage)+len(financial)),
		KeyDifferences:  capList(diffs, MaxKeyDifferences),
		Recommendations: policyRecommendations(a, b, score),
		CoverageComparison: CoverageComparison{
			Doc1: CoverageReport(a),
			Doc2: CoverageReport(b),
		},
		IsRelevant:     score > p.thresholds.withDefaults().PolicyRelevantThreshold,
		RelevanceScore: score,
		Kind:           KindPolicy,
		Rationale:      p.Relevance.Rationale,
	}
}

func compareCoverage(a, b DocumentAnalysis) []string {
	diffs := []string{}
	if len(a.CoverageFacts) != len(b.CoverageFacts) {
		diffs = append(diffs, fmt.Sprintf("Coverage breadth: %s has %d coverage areas vs %s with %d areas",
			a.Title, len(a.CoverageFacts), b.Title, len(b.CoverageFacts)))
	}

	text1, text2 := joinLower(a.CoverageFacts), joinLower(b.CoverageFacts)
	for _, kw := range coverageKeywords {
		has1, has2 := strings.Contains(text1, kw), strings.Contains(text2, kw)
		if has1 == has2 {
			continue
		}
		owner := b.Title
		if has1 {
			owner = a.Title
		}
		diffs = append(diffs, fmt.Sprintf("%s coverage: Available in %s only", capitalize(kw), owner))
	}
	return capList(diffs, maxCoverageDifferences)
}

// compareFinancials pairs the first fact of each category. A category
// present on one side only is reported as a transparency gap.
func compareFinancials(a, b DocumentAnalysis) []string {
	fa, fb := a.FinancialFacts, b.FinancialFacts
	diffs := []string{}

	diffs = appendPaired(diffs, a.Title, b.Title, fa.Premiums, fb.Premiums,
		"Premium comparison: %s - %s vs %s - %s",
		"Premium transparency: %s specifies premiums (%s) while %s does not")
	diffs = appendPaired(diffs, a.Title, b.Title, fa.Deductibles, fb.Deductibles,
		"Deductible comparison: %s - %s vs %s - %s",
		"Deductible details: %s specifies %s while %s has no clear deductible information")
	diffs = appendPaired(diffs, a.Title, b.Title, fa.Limits, fb.Limits,
		"Coverage limits: %s - %s vs %s - %s",
		"Coverage transparency: %s specifies limits (%s) while %s lacks clear limits")

	if len(fa.Copays) > 0 || len(fb.Copays) > 0 {
		diffs = append(diffs, fmt.Sprintf("Copay structure: %s (%s) vs %s (%s)",
			a.Title, firstOr(fa.Copays, notSpecified), b.Title, firstOr(fb.Copays, notSpecified)))
	}
	if len(fa.Coinsurance) > 0 || len(fb.Coinsurance) > 0 {
		diffs = append(diffs, fmt.Sprintf("Coinsurance: %s (%s) vs %s (%s)",
			a.Title, firstOr(fa.Coinsurance, notSpecified), b.Title, firstOr(fb.Coinsurance, notSpecified)))
	}
	return capList(diffs, maxFinancialDifferences)
}

// appendPaired renders both=pairFmt(t1, v1, t2, v2) or one=oneFmt(owner, v, other).
func appendPaired(diffs []string, t1, t2 string, v1, v2 []string, pairFmt, oneFmt string) []string {
	switch {
	case len(v1) > 0 && len(v2) > 0:
		return append(diffs, fmt.Sprintf(pairFmt, t1, v1[0], t2, v2[0]))
	case len(v1) > 0:
		return append(diffs, fmt.Sprintf(oneFmt, t1, v1[0], t2))
	case len(v2) > 0:
		return append(diffs, fmt.Sprintf(oneFmt, t2, v2[0], t1))
	}
	return diffs
}

func compareTerms(a, b DocumentAnalysis) []string {
	diffs := []string{}
	if len(a.ExclusionFacts) != len(b.ExclusionFacts) {
		diffs = append(diffs, fmt.Sprintf("Exclusions: %s lists %d exclusions vs %s with %d exclusions",
			a.Title, len(a.ExclusionFacts), b.Title, len(b.ExclusionFacts)))
	}
	if len(a.ClaimsFacts) != len(b.ClaimsFacts) {
		diffs = append(diffs, fmt.Sprintf("Claims process: %s provides %d claim details vs %s with %d details",
			a.Title, len(a.ClaimsFacts), b.Title, len(b.ClaimsFacts)))
	}
	return capList(diffs, maxTermsDifferences)
}

func firstOr(list []string, fallback string) string {
	if len(list) > 0 {
		return list[0]
	}
	return fallback
}

func joinLower(list []string) string { return strings.ToLower(strings.Join(list, " ")) }

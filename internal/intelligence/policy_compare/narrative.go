package policy_compare

import (
	"fmt"
	"math"
	"strings"
)

// Score bands of the policy summary and recommendations.
const (
	bandComprehensive = 80
	bandDetailed      = 60
	bandModerate      = 40
	bandEducational   = 20
	bandReadiness     = 70

	coverageAdvantageMargin = 3
	exclusionGapMargin      = 2
)

// ---------------------------------------------------------------------------
// Policy path
// ---------------------------------------------------------------------------

// policySummary renders the five-band summary. Ties between the two
// documents favour the second.
func policySummary(a, b DocumentAnalysis, score, totalDifferences int) string {
	q1, q2 := a.dataQuality(), b.dataQuality()

	switch {
	case score >= bandComprehensive:
		return fmt.Sprintf("<strong>Comprehensive Policy Analysis Complete</strong><br>"+
			"These <strong>%s</strong> policies offer excellent comparison value with %d%% relevance score.<br>"+
			"The analysis extracted <strong>%d</strong> detailed data points including premiums, deductibles, coverage limits and exclusions.<br>"+
			"<strong>\"%s\"</strong> provides more comprehensive documentation, making this comparison reliable for decision-making.",
			a.PolicyType, score, max(q1, q2), pickGreater(q1, q2, a.Title, b.Title))
	case score >= bandDetailed:
		return fmt.Sprintf("<strong>Detailed Policy Comparison Available</strong><br>"+
			"Both policies show strong %d%% compatibility with <strong>%d</strong> key differences identified.<br>"+
			"<strong>\"%s\"</strong> offers broader coverage documentation.<br>"+
			"<strong>\"%s\"</strong> provides more detailed financial information.",
			score, totalDifferences,
			pickGreater(len(a.CoverageFacts), len(b.CoverageFacts), a.Title, b.Title),
			pickGreater(a.FinancialFacts.Total(), b.FinancialFacts.Total(), a.Title, b.Title))
	case score >= bandModerate:
		return fmt.Sprintf("<strong>Moderate Policy Comparison with Actionable Insights</strong><br>"+
			"%d%% relevance allows for meaningful comparison despite document differences.<br>"+
			"<strong>\"%s\"</strong> provides <strong>%d</strong> more data points, offering clearer terms and conditions.",
			score, pickGreater(q1, q2, a.Title, b.Title), absInt(q1-q2))
	case score >= bandEducational:
		return fmt.Sprintf("<strong>Educational Comparison with Limited Decision Value</strong><br>"+
			"%d%% relevance provides basic insights into document differences.<br>"+
			"The analysis found <strong>%d</strong> data points that show different documentation approaches.",
			score, max(q1, q2))
	default:
		return fmt.Sprintf("<strong>Document Analysis - Not Comparable as Policies</strong><br>"+
			"%d%% relevance indicates these documents serve different purposes.", score)
	}
}

func policyRecommendations(a, b DocumentAnalysis, score int) []string {
	fa, fb := a.FinancialFacts, b.FinancialFacts
	recs := []string{}

	switch {
	case len(fa.Premiums) > 0 && len(fb.Premiums) > 0:
		recs = append(recs, fmt.Sprintf("<strong>Premium Comparison</strong>: \"%s\" shows %s while \"%s\" shows %s. Consider total annual cost including deductibles.",
			a.Title, fa.Premiums[0], b.Title, fb.Premiums[0]))
	case len(fa.Premiums) > 0:
		recs = append(recs, premiumTransparency(a.Title, fa.Premiums[0], b.Title))
	case len(fb.Premiums) > 0:
		recs = append(recs, premiumTransparency(b.Title, fb.Premiums[0], a.Title))
	}

	n1, n2 := len(a.CoverageFacts), len(b.CoverageFacts)
	switch {
	case n1 > n2+coverageAdvantageMargin:
		recs = append(recs, coverageAdvantage(a.Title, n1, b.Title, n2))
	case n2 > n1+coverageAdvantageMargin:
		recs = append(recs, coverageAdvantage(b.Title, n2, a.Title, n1))
	}

	switch {
	case len(fa.Deductibles) > 0 && len(fb.Deductibles) > 0:
		recs = append(recs, fmt.Sprintf("<strong>Deductible Analysis</strong>: Compare %s vs %s. Lower deductibles mean faster coverage activation in critical situations.",
			fa.Deductibles[0], fb.Deductibles[0]))
	case len(fa.Deductibles) > 0:
		recs = append(recs, deductibleClarity(a.Title, fa.Deductibles[0]))
	case len(fb.Deductibles) > 0:
		recs = append(recs, deductibleClarity(b.Title, fb.Deductibles[0]))
	}

	e1, e2 := len(a.ExclusionFacts), len(b.ExclusionFacts)
	if absInt(e1-e2) > exclusionGapMargin {
		more, fewer := b.Title, a.Title
		if e1 > e2 {
			more, fewer = a.Title, b.Title
		}
		recs = append(recs, fmt.Sprintf("<strong>Exclusions Impact</strong>: %s lists %d exclusions vs %d in %s. Review exclusions carefully - they determine coverage in critical situations.",
			more, max(e1, e2), min(e1, e2), fewer))
	}

	switch {
	case score >= bandReadiness:
		recs = append(recs, "<strong>Emergency Readiness</strong>: Both policies provide sufficient detail for informed emergency decisions. Keep digital copies accessible and review claim procedures annually.")
	case score >= bandModerate:
		recs = append(recs, "<strong>Emergency Planning</strong>: Consider requesting additional documentation from your insurance provider to ensure coverage clarity during emergencies.")
	}

	if a.IsPolicyDocument && b.IsPolicyDocument {
		recs = append(recs, "<strong>Next Steps</strong>: Contact providers directly to clarify any unclear terms, verify current rates, and understand claim procedures for your specific needs.")
	} else {
		recs = append(recs, "<strong>Document Review</strong>: Ensure you're comparing actual policy documents rather than summaries for the most accurate decision-making.")
	}

	return capList(recs, MaxRecommendations)
}

func premiumTransparency(owner, premium, other string) string {
	return fmt.Sprintf("<strong>Premium Transparency</strong>: %s clearly states premiums (%s) - essential for budgeting emergencies. Request detailed pricing from %s.",
		owner, premium, other)
}

func coverageAdvantage(owner string, n int, other string, m int) string {
	return fmt.Sprintf("<strong>Coverage Advantage</strong>: %s offers %d coverage areas vs %d in %s. Better protection in emergency situations requiring diverse medical services.",
		owner, n, m, other)
}

func deductibleClarity(owner, deductible string) string {
	return fmt.Sprintf("<strong>Deductible Clarity</strong>: %s specifies %s. Clear deductible terms are crucial for emergency financial planning.",
		owner, deductible)
}

// ---------------------------------------------------------------------------
// Generic path
// ---------------------------------------------------------------------------

// Similarity bands of the generic summary and recommendations.
const (
	similarityHigh     = 70
	similarityModerate = 40
	similarityStrong   = 60
	similarityUseful   = 30

	lengthGapChars     = 1000
	sentenceLengthDiff = 20
	topicPreview       = 3

	maxGenericDifferences = 6
)

func genericSummary(a, b DocumentAnalysis, tc TopicComparison) string {
	shared := len(tc.SharedTopics)
	switch {
	case tc.Similarity >= similarityHigh:
		return fmt.Sprintf("<strong>High Content Similarity</strong>: \"%s\" and \"%s\" share %d common topics and have %d%% content overlap. "+
			"Both documents focus on similar themes and can provide valuable comparison insights despite not being traditional policies.",
			a.Title, b.Title, shared, tc.Similarity)
	case tc.Similarity >= similarityModerate:
		return fmt.Sprintf("<strong>Moderate Content Relationship</strong>: \"%s\" and \"%s\" have %d%% content similarity with %d shared topics. "+
			"The documents cover related areas but serve different specific purposes, offering complementary perspectives on the subject matter.",
			a.Title, b.Title, tc.Similarity, shared)
	case shared > 0:
		return fmt.Sprintf("<strong>Limited but Meaningful Connection</strong>: While \"%s\" and \"%s\" have only %d%% overall similarity, they share %d key topics: %s. "+
			"This provides a foundation for understanding their different approaches to related concepts.",
			a.Title, b.Title, tc.Similarity, shared, strings.Join(capList(tc.SharedTopics, topicPreview), ", "))
	default:
		return fmt.Sprintf("<strong>Content-Based Analysis</strong>: \"%s\" (%dk characters) and \"%s\" (%dk characters) address different subject areas. "+
			"While they don't share common topics, the analysis reveals distinct document purposes and target audiences.",
			a.Title, kilo(tc.Structure1.Length), b.Title, kilo(tc.Structure2.Length))
	}
}

func genericDifferences(a, b DocumentAnalysis, tc TopicComparison) []string {
	diffs := []string{}
	if len(tc.UniqueToDoc1) > 0 {
		diffs = append(diffs, fmt.Sprintf("\"%s\" unique focus areas: %s", a.Title, strings.Join(capList(tc.UniqueToDoc1, topicPreview), ", ")))
	}
	if len(tc.UniqueToDoc2) > 0 {
		diffs = append(diffs, fmt.Sprintf("\"%s\" unique focus areas: %s", b.Title, strings.Join(capList(tc.UniqueToDoc2, topicPreview), ", ")))
	}
	if len(tc.SharedTopics) > 0 {
		diffs = append(diffs, "Common ground: Both documents address "+strings.Join(capList(tc.SharedTopics, topicPreview), ", "))
	}

	l1, l2 := tc.Structure1.Length, tc.Structure2.Length
	if gap := absInt(l1 - l2); gap > lengthGapChars {
		diffs = append(diffs, fmt.Sprintf("Content depth: \"%s\" is significantly more comprehensive (%dk more characters)",
			pickGreater(l1, l2, a.Title, b.Title), kilo(gap)))
	}

	s1, s2 := tc.Structure1.AvgSentenceLength, tc.Structure2.AvgSentenceLength
	if math.Abs(s1-s2) > sentenceLengthDiff {
		moreComplex := b.Title
		if s1 > s2 {
			moreComplex = a.Title
		}
		diffs = append(diffs, fmt.Sprintf("Writing style: \"%s\" uses more complex sentence structures", moreComplex))
	}

	return capList(diffs, maxGenericDifferences)
}

func genericRecommendations(a, b DocumentAnalysis, tc TopicComparison) []string {
	recs := []string{}
	switch {
	case tc.Similarity >= similarityStrong:
		recs = append(recs,
			"Strong comparison value: These documents complement each other well",
			fmt.Sprintf("Focus on: %s for detailed comparison", strings.Join(capList(tc.SharedTopics, 2), " and ")))
	case tc.Similarity >= similarityUseful:
		recs = append(recs, "Moderate comparison value: Useful for understanding different approaches")
		if len(tc.SharedTopics) > 0 {
			recs = append(recs, "Common areas: Compare how each handles "+tc.SharedTopics[0])
		}
	default:
		recs = append(recs,
			"Educational value: Shows contrasting approaches to different problems",
			"Best used: For understanding scope differences rather than feature comparison")
	}

	if len(tc.UniqueToDoc1) > 2 {
		recs = append(recs, fmt.Sprintf("\"%s\" offers unique insights into %s", a.Title, strings.Join(tc.UniqueToDoc1[:2], " and ")))
	}
	if len(tc.UniqueToDoc2) > 2 {
		recs = append(recs, fmt.Sprintf("\"%s\" provides specialized coverage of %s", b.Title, strings.Join(tc.UniqueToDoc2[:2], " and ")))
	}
	recs = append(recs, "Consider: Review both documents for comprehensive understanding of the domain")

	return capList(recs, MaxRecommendations)
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// pickGreater returns t1 when v1 is strictly greater, otherwise t2.
func pickGreater(v1, v2 int, t1, t2 string) string {
	if v1 > v2 {
		return t1
	}
	return t2
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// kilo rounds a character count to thousands.
func kilo(n int) int { return int(math.Round(float64(n) / 1000)) }

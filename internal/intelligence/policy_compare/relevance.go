package policy_compare

import "fmt"

// Relevance is a scored judgement of how comparable two documents are.
// Each band is kept so callers can explain the score.
type Relevance struct {
	Score     int
	Content   int
	Type      int
	Richness  int
	Breadth   int
	Rationale []string
}

// ScoreRelevance adds four bands (content 25, type 30, richness 25,
// breadth 20) and clamps the sum to [floor, 100]. Every band depends on
// both sides symmetrically, so swapping a and b never changes the score.
func ScoreRelevance(a, b DocumentAnalysis, floor int) Relevance {
	var r Relevance

	r.Content, r.Rationale = contentBand(a, b, r.Rationale)
	r.Type, r.Rationale = typeBand(a, b, r.Rationale)
	r.Richness, r.Rationale = richnessBand(a, b, r.Rationale)
	r.Breadth, r.Rationale = breadthBand(a, b, r.Rationale)

	r.Score = ClampScore(r.Content+r.Type+r.Richness+r.Breadth, floor)
	return r
}

func contentBand(a, b DocumentAnalysis, why []string) (int, []string) {
	aRich, bRich := a.ContentLength > substantialLength, b.ContentLength > substantialLength
	switch {
	case aRich && bRich:
		return 25, append(why, "Both documents have substantial content for analysis")
	case aRich || bRich:
		return 15, append(why, "Adequate content available for comparison")
	default:
		return 5, append(why, "Limited content available - basic comparison possible")
	}
}

func typeBand(a, b DocumentAnalysis, why []string) (int, []string) {
	bothPolicies := a.IsPolicyDocument && b.IsPolicyDocument
	sameDocType := a.DocumentType == b.DocumentType
	samePolicyType := a.PolicyType == b.PolicyType

	switch {
	case bothPolicies && samePolicyType && a.PolicyType != PolicyTypeGeneral:
		return 30, append(why, fmt.Sprintf("Both are %s insurance policies - excellent compatibility", a.PolicyType))
	case bothPolicies && (samePolicyType || sameDocType):
		return 25, append(why, "Both are policy documents with good compatibility")
	case bothPolicies:
		return 20, append(why, "Both are policy documents - meaningful comparison possible")
	case a.IsPolicyDocument || b.IsPolicyDocument:
		return 15, append(why, "One policy document - partial comparison available")
	case sameDocType:
		return 20, append(why, fmt.Sprintf("Both are %s documents - comparable content", a.DocumentType))
	default:
		return 10, append(why, "Different document types - content-based comparison available")
	}
}

func richnessBand(a, b DocumentAnalysis, why []string) (int, []string) {
	switch total := a.DataPoints() + b.DataPoints(); {
	case total >= 10:
		return 25, append(why, "Rich data available for comprehensive analysis")
	case total >= 6:
		return 20, append(why, "Good amount of data for detailed comparison")
	case total >= 3:
		return 15, append(why, "Moderate data available for comparison")
	default:
		return 10, append(why, "Basic data available for analysis")
	}
}

// breadthBand counts the dimensions (financial, coverage, terms) present on
// either side. Financial counts only when a category holds a fact.
func breadthBand(a, b DocumentAnalysis, why []string) (int, []string) {
	dims := 0
	if a.FinancialFacts.Present() || b.FinancialFacts.Present() {
		dims++
	}
	if len(a.CoverageFacts) > 0 || len(b.CoverageFacts) > 0 {
		dims++
	}
	if len(a.TermsFacts) > 0 || len(b.TermsFacts) > 0 {
		dims++
	}

	switch dims {
	case 3:
		return 20, append(why, "Multiple comparison dimensions available")
	case 2:
		return 15, append(why, "Multiple aspects available for comparison")
	case 1:
		return 10, append(why, "Key aspects available for comparison")
	default:
		return 5, append(why, "Content-based comparison available")
	}
}

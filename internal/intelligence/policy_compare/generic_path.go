package policy_compare

// GenericContentComparison is the outcome when at least one document fails
// the policy gate. It compares topics and structure instead of policy facts.
type GenericContentComparison struct {
	Doc1      DocumentAnalysis
	Doc2      DocumentAnalysis
	Relevance Relevance
	Topics    TopicComparison
}

func (GenericContentComparison) Kind() Kind { return KindGeneric }

func (g GenericContentComparison) Render() ComparisonResult {
	a, b, tc := g.Doc1, g.Doc2, g.Topics
	return ComparisonResult{
		Summary:         genericSummary(a, b, tc),
		KeyDifferences:  genericDifferences(a, b, tc),
		Recommendations: genericRecommendations(a, b, tc),
		CoverageComparison: CoverageComparison{
			Doc1: DetailedAnalysis(a),
			Doc2: DetailedAnalysis(b),
		},
		IsRelevant:        tc.Useful,
		RelevanceScore:    g.Relevance.Score,
		ContentSimilarity: tc.Similarity,
		Kind:              KindGeneric,
		Rationale:         g.Relevance.Rationale,
	}
}

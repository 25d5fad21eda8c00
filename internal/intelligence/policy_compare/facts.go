package policy_compare

// Facts groups every extracted fact category of one document.
type Facts struct {
	Coverage   []string
	Financial  FinancialFacts
	Terms      []string
	Exclusions []string
	Claims     []string
}

// ExtractFacts runs every pattern table over normalized text.
func ExtractFacts(text string) Facts {
	return Facts{
		Coverage:   ExtractCoverage(text),
		Financial:  ExtractFinancial(text),
		Terms:      extractCategory(text, TermsPatterns, MaxTermsFacts),
		Exclusions: extractCategory(text, ExclusionPatterns, MaxExclusionFacts),
		Claims:     extractCategory(text, ClaimsPatterns, MaxClaimsFacts),
	}
}

// ExtractCoverage returns up to 15 deduplicated coverage statements.
func ExtractCoverage(text string) []string {
	return extractCategory(text, CoveragePatterns, MaxCoverageFacts)
}

// ExtractFinancial returns up to 5 deduplicated facts per money category.
func ExtractFinancial(text string) FinancialFacts {
	return FinancialFacts{
		Premiums:    extractCategory(text, PremiumPatterns, MaxFinancialFacts),
		Deductibles: extractCategory(text, DeductiblePatterns, MaxFinancialFacts),
		Limits:      extractCategory(text, LimitPatterns, MaxFinancialFacts),
		Copays:      extractCategory(text, CopayPatterns, MaxFinancialFacts),
		Coinsurance: extractCategory(text, CoinsurancePatterns, MaxFinancialFacts),
		OutOfPocket: extractCategory(text, OutOfPocketPatterns, MaxFinancialFacts),
	}
}

// extractCategory applies patterns in table order, deduplicates in
// first-seen order and truncates to limit. The result is never nil.
func extractCategory(text string, patterns []FactPattern, limit int) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, p := range patterns {
		out = appendUnique(out, seen, p.Apply(text)...)
	}
	return capList(out, limit)
}

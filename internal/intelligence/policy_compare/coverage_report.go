package policy_compare

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reportCleanRe = regexp.MustCompile(`[^\w\s$,%]`)
	keyConceptRe  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[a-z]+){1,3}\b`)
)

const (
	reportCoverageExamples = 4
	reportCoverageMinLen   = 15
	reportCoverageMaxLen   = 80
	reportFinancialMaxLen  = 60
	keyConceptMinSummary   = 100
)

// CoverageReport renders the per-document analysis lines of the policy path.
func CoverageReport(a DocumentAnalysis) []string {
	lines := []string{}

	if a.PolicyType != PolicyTypeGeneral {
		lines = append(lines, fmt.Sprintf("Policy Classification: %s Insurance Policy", capitalize(a.PolicyType)))
	} else {
		lines = append(lines, "Document Type: "+a.DocumentType)
	}

	if n := len(a.CoverageFacts); n > 0 {
		lines = append(lines, fmt.Sprintf("Coverage Scope: %d specific coverage areas identified from PDF analysis", n))
		for i, c := range capList(a.CoverageFacts, reportCoverageExamples) {
			clean := strings.TrimSpace(reportCleanRe.ReplaceAllString(c, ""))
			if runeLen(clean) <= reportCoverageMinLen {
				continue
			}
			line := fmt.Sprintf("   %d. %s", i+1, truncateRunes(clean, reportCoverageMaxLen))
			if runeLen(clean) > reportCoverageMaxLen {
				line += "..."
			}
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "Coverage Information: Limited coverage details found in document")
	}

	f := a.FinancialFacts
	if total := f.Total(); total > 0 {
		lines = append(lines, fmt.Sprintf("Financial Transparency: %d financial details extracted", total))
		for _, item := range []struct {
			label string
			facts []string
		}{
			{"Premium", f.Premiums},
			{"Deductible", f.Deductibles},
			{"Coverage Limit", f.Limits},
			{"Copay", f.Copays},
		} {
			if len(item.facts) > 0 {
				lines = append(lines, fmt.Sprintf("   %s: %s", item.label, truncateRunes(item.facts[0], reportFinancialMaxLen)))
			}
		}
	} else {
		lines = append(lines, "Financial Information: No clear premium or deductible details found")
	}

	if n := len(a.ExclusionFacts); n > 0 {
		lines = append(lines,
			fmt.Sprintf("Risk Exclusions: %d exclusions identified - critical for emergency planning", n),
			"   Review exclusions carefully as they limit coverage in specific situations")
	} else {
		lines = append(lines, "Risk Information: No explicit exclusions found in document")
	}

	if n := len(a.ClaimsFacts); n > 0 {
		lines = append(lines, fmt.Sprintf("Claims Support: %d claims-related procedures documented", n))
	} else {
		lines = append(lines, "Claims Information: Limited claims process documentation found")
	}

	switch q := a.dataQuality(); {
	case q > 10:
		lines = append(lines, fmt.Sprintf("Documentation Quality: Excellent (%d data points) - suitable for detailed analysis", q))
	case q > 5:
		lines = append(lines, fmt.Sprintf("Documentation Quality: Good (%d data points) - adequate for comparison", q))
	default:
		lines = append(lines, fmt.Sprintf("Documentation Quality: Limited (%d data points) - may need additional information", q))
	}

	return lines
}

// DetailedAnalysis renders the per-document lines of the generic path.
func DetailedAnalysis(a DocumentAnalysis) []string {
	lines := []string{}

	if a.DocumentType != "" && a.DocumentType != DocTypeUnknown {
		lines = append(lines, "Document type: "+a.DocumentType)
	}

	if len(a.CoverageFacts) > 0 {
		lines = append(lines, "Key topics: "+strings.Join(capList(a.CoverageFacts, topicPreview), ", "))
	} else if runeLen(a.Summary) > keyConceptMinSummary {
		if concepts := keyConceptRe.FindAllString(a.Summary, topicPreview); len(concepts) > 0 {
			lines = append(lines, "Key concepts: "+strings.Join(concepts, ", "))
		}
	}

	if cats := a.FinancialFacts.Categories(); len(cats) > 0 {
		lines = append(lines, "Financial information: "+strings.Join(cats, ", "))
	}

	if a.ContentLength > 0 {
		structure := "general document"
		if a.IsPolicyDocument {
			structure = "policy structure"
		}
		lines = append(lines, fmt.Sprintf("Content depth: %dk characters, %s", kilo(a.ContentLength), structure))
	}

	if len(lines) == 0 {
		title := a.Title
		if title == "" {
			title = "Document analysis"
		}
		return []string{fmt.Sprintf("Content: %s - specific details available", title)}
	}
	return lines
}

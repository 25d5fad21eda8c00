package policy_compare

import (
	"regexp"
	"strings"
)

// FactPattern is one row of a fact category's pattern table. A match is
// cleaned, then kept when its rune length lies strictly between MinLen and
// MaxLen (MaxLen 0 means unbounded). When Split is set, the match is split
// and every piece is cleaned and bounded on its own, keeping at most
// SplitLimit pieces. PerPatternLimit caps the facts one pattern contributes.
type FactPattern struct {
	Re              *regexp.Regexp
	MinLen          int
	MaxLen          int
	PerPatternLimit int
	Clean           func(string) string
	Split           *regexp.Regexp
	SplitLimit      int
}

var (
	leadingTriggerRe = regexp.MustCompile(`^\w+\s*:?\s*`)
	listSplitRe      = regexp.MustCompile(`[,;\n]`)
)

// stripTrigger removes the leading trigger word ("covers", "deductible:") of a match.
func stripTrigger(s string) string {
	return strings.TrimSpace(leadingTriggerRe.ReplaceAllString(s, ""))
}

func coveragePattern(expr string) FactPattern {
	return FactPattern{Re: regexp.MustCompile(expr), MinLen: 10, MaxLen: 150, Clean: stripTrigger}
}

func listPattern(expr string) FactPattern {
	return FactPattern{
		Re:         regexp.MustCompile(expr),
		MinLen:     15,
		Clean:      strings.TrimSpace,
		Split:      listSplitRe,
		SplitLimit: 3,
	}
}

func financialPattern(expr string) FactPattern {
	return FactPattern{Re: regexp.MustCompile(expr), MinLen: 5, Clean: strings.TrimSpace}
}

func clausePattern(expr string) FactPattern {
	return FactPattern{Re: regexp.MustCompile(expr), PerPatternLimit: 3, Clean: strings.TrimSpace}
}

// CoveragePatterns extracts what a document covers: explicit statements,
// money limits, percentages, cost-sharing terms and network phrases, then
// bulleted or "coverage includes" lists.
var CoveragePatterns = []FactPattern{
	coveragePattern(`(?i)(?:covers?|coverage for|includes?|benefits? for)\s+([^.\n]{15,100})`),
	coveragePattern(`(?i)(?:hospital|inpatient|outpatient|emergency|prescription|dental|vision|specialist|surgery|therapy)\s+(?:coverage|care|services?|benefits?)\s*:?\s*([^.\n]{10,80})`),
	coveragePattern(`(?i)(?:policy covers?|insured for|protection against)\s+([^.\n]{15,100})`),
	coveragePattern(`(?i)(?:covered expenses?|eligible expenses?|reimbursable)\s*:?\s*([^.\n]{15,100})`),
	coveragePattern(`(?i)(?:up to|maximum of|limit of|not to exceed)\s*\$?[\d,]+\s*(?:per|annually|monthly|lifetime)?[^.\n]{0,50}`),
	coveragePattern(`(?i)\$[\d,]+\s*(?:coverage|benefit|limit|maximum|annual|lifetime)[^.\n]{0,50}`),
	coveragePattern(`(?i)(?:pays?|covers?|reimburses?)\s*\d+%[^.\n]{0,50}`),
	coveragePattern(`(?i)(?:deductible|copay|coinsurance|out-of-pocket)\s*:?\s*[^.\n]{10,80}`),
	coveragePattern(`(?i)(?:in-network|out-of-network|preferred provider|network)\s+[^.\n]{10,80}`),
	listPattern(`(?:•|\*|\d+\.)\s*([^.\n]{20,100})`),
	listPattern(`(?i)(?:coverage includes?|benefits include?)\s*:?\s*\n?(.{50,500})`),
}

// Financial pattern tables, one per FinancialFacts category.
var (
	PremiumPatterns = []FactPattern{
		financialPattern(`(?i)(?:premium|monthly premium|annual premium)\s*:?\s*\$[\d,]+(?:\.\d{2})?[^\n]{0,30}`),
		financialPattern(`(?i)monthly\s+(?:cost|fee|payment|premium)\s*:?\s*\$[\d,]+(?:\.\d{2})?[^\n]{0,30}`),
		financialPattern(`(?i)annual\s+(?:cost|fee|payment|premium)\s*:?\s*\$[\d,]+(?:\.\d{2})?[^\n]{0,30}`),
		financialPattern(`(?i)premium\s+rates?\s*:?\s*\$[\d,]+[^\n]{0,50}`),
	}

	DeductiblePatterns = []FactPattern{
		financialPattern(`(?i)(?:deductible|annual deductible|yearly deductible)\s*:?\s*\$[\d,]+(?:\.\d{2})?[^\n]{0,40}`),
		financialPattern(`(?i)(?:individual|family)\s+deductible\s*:?\s*\$[\d,]+[^\n]{0,40}`),
		financialPattern(`(?i)deductible\s+amount\s*:?\s*\$[\d,]+[^\n]{0,40}`),
	}

	LimitPatterns = []FactPattern{
		financialPattern(`(?i)(?:maximum|limit|cap|benefit maximum|annual maximum|lifetime maximum)\s*:?\s*\$[\d,]+(?:\.\d{2})?[^\n]{0,50}`),
		financialPattern(`(?i)up\s+to\s+\$[\d,]+(?:\.\d{2})?[^\n]{0,50}`),
		financialPattern(`(?i)\$[\d,]+(?:\.\d{2})?\s+(?:maximum|limit|annual limit|per year|lifetime|per incident)[^\n]{0,50}`),
		financialPattern(`(?i)coverage\s+limit\s*:?\s*\$[\d,]+[^\n]{0,40}`),
	}

	CopayPatterns = []FactPattern{
		financialPattern(`(?i)(?:copay|co-pay|copayment)\s*:?\s*\$[\d,]+(?:\.\d{2})?[^\n]{0,40}`),
		financialPattern(`(?i)office\s+visit\s*:?\s*\$[\d,]+[^\n]{0,40}`),
		financialPattern(`(?i)specialist\s+visit\s*:?\s*\$[\d,]+[^\n]{0,40}`),
		financialPattern(`(?i)emergency\s+room\s*:?\s*\$[\d,]+[^\n]{0,40}`),
	}

	CoinsurancePatterns = []FactPattern{
		financialPattern(`(?i)(?:coinsurance|co-insurance)\s*:?\s*\d+%[^\n]{0,40}`),
		financialPattern(`(?i)(?:you pay|patient pays?)\s*\d+%[^\n]{0,40}`),
		financialPattern(`(?i)\d+%\s*(?:coinsurance|after deductible|of covered expenses)`),
	}

	OutOfPocketPatterns = []FactPattern{
		financialPattern(`(?i)(?:out-of-pocket|out of pocket)\s+(?:maximum|limit)\s*:?\s*\$[\d,]+[^\n]{0,40}`),
		financialPattern(`(?i)maximum\s+out-of-pocket\s*:?\s*\$[\d,]+[^\n]{0,40}`),
		financialPattern(`(?i)annual\s+out-of-pocket\s+limit\s*:?\s*\$[\d,]+[^\n]{0,40}`),
	}
)

// Clause pattern tables. Each pattern contributes at most three facts.
var (
	TermsPatterns = []FactPattern{
		clausePattern(`(?i)(?:terms?|conditions?)\s*:?\s*([^.]{15,100})`),
		clausePattern(`(?i)(?:requirements?|eligibility)\s*:?\s*([^.]{15,100})`),
		clausePattern(`(?i)(?:waiting period|effective date)\s*:?\s*([^.]{10,80})`),
	}

	ExclusionPatterns = []FactPattern{
		clausePattern(`(?i)(?:not covered|excluded?|exclusions?)\s*:?\s*([^.]{15,100})`),
		clausePattern(`(?i)(?:does not cover|will not pay)\s*([^.]{15,100})`),
		clausePattern(`(?i)(?:limitations?|restrictions?)\s*:?\s*([^.]{15,100})`),
	}

	ClaimsPatterns = []FactPattern{
		clausePattern(`(?i)(?:claim|claims process|filing)\s*:?\s*([^.]{15,100})`),
		clausePattern(`(?i)(?:submit|file)\s+(?:a\s+)?claim\s*([^.]{10,80})`),
		clausePattern(`(?i)(?:reimbursement|payment)\s*:?\s*([^.]{15,100})`),
	}
)

// accepts reports whether a cleaned fact fits the pattern's length bounds.
func (p FactPattern) accepts(s string) bool {
	n := runeLen(s)
	if n <= p.MinLen {
		return false
	}
	return p.MaxLen == 0 || n < p.MaxLen
}

// Apply runs the pattern over text and returns its facts in match order.
func (p FactPattern) Apply(text string) []string {
	clean := p.Clean
	if clean == nil {
		clean = strings.TrimSpace
	}

	var out []string
	for _, m := range p.Re.FindAllString(text, -1) {
		if p.Split == nil {
			if c := clean(m); p.accepts(c) {
				out = append(out, c)
			}
		} else {
			kept := 0
			for _, piece := range p.Split.Split(m, -1) {
				if p.SplitLimit > 0 && kept == p.SplitLimit {
					break
				}
				if c := clean(piece); p.accepts(c) {
					out = append(out, c)
					kept++
				}
			}
		}
		if p.PerPatternLimit > 0 && len(out) >= p.PerPatternLimit {
			return out[:p.PerPatternLimit]
		}
	}
	return out
}

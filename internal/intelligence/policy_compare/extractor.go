package policy_compare

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Trimmed-length bars for a part to join the normalized text. PDF text and
// user content need at least the given length; a summary must exceed its bar.
const (
	minPDFTextLen = 100
	minSummaryLen = 50
	minContentLen = 20
)

// ExtractContent builds the normalized text of doc. Parts are taken in
// priority order: PDF text, the richest summary, user content, title and
// description. The joined text is NFKC-folded and lower-cased; Length counts
// the runes before folding so it never drops below the title's length.
func ExtractContent(doc DocumentInput) NormalizedContent {
	parts := make([]string, 0, 5)

	if runeLen(strings.TrimSpace(doc.PDFText)) >= minPDFTextLen {
		parts = append(parts, doc.PDFText)
	}

	switch {
	case runeLen(strings.TrimSpace(doc.Summaries.Detailed)) > minSummaryLen:
		parts = append(parts, doc.Summaries.Detailed)
	case runeLen(strings.TrimSpace(doc.Summaries.Standard)) > minSummaryLen:
		parts = append(parts, doc.Summaries.Standard)
	case runeLen(strings.TrimSpace(doc.Summaries.Legacy)) > minSummaryLen:
		parts = append(parts, doc.Summaries.Legacy)
	}

	if runeLen(strings.TrimSpace(doc.Content)) >= minContentLen {
		parts = append(parts, doc.Content)
	}
	if doc.Title != "" {
		parts = append(parts, doc.Title)
	}
	if strings.TrimSpace(doc.Description) != "" {
		parts = append(parts, doc.Description)
	}

	joined := strings.Join(parts, " ")
	text := strings.ToLower(norm.NFKC.String(joined))
	return NormalizedContent{Text: text, Length: runeLen(joined)}
}

// ---------------------------------------------------------------------------
// string helpers
// ---------------------------------------------------------------------------

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// appendUnique appends items not already in seen, preserving first-seen order.
func appendUnique(dst []string, seen map[string]struct{}, items ...string) []string {
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		dst = append(dst, it)
	}
	return dst
}

func capList(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return strings.ToUpper(string(r)) + s[size:]
}

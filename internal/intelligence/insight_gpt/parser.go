package insight_gpt

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsing limits.
const (
	DefaultAIRelevance = 60
	maxAnswerItems     = 5
	minAnswerItemLen   = 10
)

var (
	sectionSplitRe = regexp.MustCompile(`\d+\.`)
	itemSplitRe    = regexp.MustCompile(`[-•*]`)
	relevanceRe    = regexp.MustCompile(`(?i)(\d+)%?\s*(?:relevance|relevant|score|compatibility)`)
)

// Answer is the structured reading of a free-text model answer.
type Answer struct {
	Summary         string
	Differences     []string
	Recommendations []string
	Relevance       int
}

// ParseAnswer splits the answer on numbered markers. The text after "1." is
// the summary; the sections after "2." and "3." are bullet lists. The
// relevance is the first number followed by a relevance word, or 60.
func ParseAnswer(text string) Answer {
	sections := sectionSplitRe.Split(text, -1)
	section := func(i int) string {
		if i < len(sections) {
			return sections[i]
		}
		return ""
	}

	return Answer{
		Summary:         strings.TrimSpace(section(1)),
		Differences:     listItems(section(2)),
		Recommendations: listItems(section(3)),
		Relevance:       relevanceScore(text),
	}
}

// listItems keeps up to five trimmed bullet items longer than ten characters.
func listItems(section string) []string {
	items := []string{}
	for _, piece := range itemSplitRe.Split(section, -1) {
		if item := strings.TrimSpace(piece); len([]rune(item)) > minAnswerItemLen {
			items = append(items, item)
			if len(items) == maxAnswerItems {
				break
			}
		}
	}
	return items
}

func relevanceScore(text string) int {
	m := relevanceRe.FindStringSubmatch(text)
	if m == nil {
		return DefaultAIRelevance
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 100
	}
	return min(100, max(0, n))
}

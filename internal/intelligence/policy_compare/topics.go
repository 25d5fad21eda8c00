package policy_compare

import (
	"regexp"
	"strings"
)

// topicPatterns find phrases introduced by configuration, skill, coverage,
// tool and feature words. The tool pattern is case-sensitive and only fires
// on text that still carries capitals.
var topicPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:configure|configuration|setup|installation|implementation)\s+([a-zA-Z\s]{3,30})`),
	regexp.MustCompile(`(?i)(?:experience|expertise|skills?|proficient)\s+(?:in|with|using)\s+([a-zA-Z\s,]+)`),
	regexp.MustCompile(`(?i)(?:coverage|treatment|service|benefit|plan)\s+(?:for|of|includes?)\s+([a-zA-Z\s]{5,40})`),
	regexp.MustCompile(`(?:using|with|through)\s+([A-Z][a-zA-Z\s]{5,25})`),
	regexp.MustCompile(`(?i)(?:includes?|features?|supports?|provides?)\s+([a-z][a-zA-Z\s]{10,50})`),
}

var topicTriggerRe = regexp.MustCompile(`(?i)^(?:configure|configuration|setup|experience|expertise|skills?|coverage|treatment|using|with|includes?|features?|supports?|provides?)\s*`)

// Topic length bounds: at least minTopicLen runes, fewer than maxTopicLen.
const (
	minTopicLen     = 5
	maxTopicLen     = 60
	minTitleWordLen = 4
)

// ExtractTopics returns up to 15 deduplicated lower-case topic phrases from
// text, followed by the title's words of four or more runes.
func ExtractTopics(text, title string) []string {
	topics := []string{}
	seen := make(map[string]struct{})

	for _, re := range topicPatterns {
		for _, m := range re.FindAllString(text, -1) {
			cleaned := strings.TrimSpace(topicTriggerRe.ReplaceAllString(m, ""))
			if n := runeLen(cleaned); n >= minTopicLen && n < maxTopicLen {
				topics = appendUnique(topics, seen, strings.ToLower(cleaned))
			}
		}
	}

	for _, w := range strings.Fields(strings.ToLower(title)) {
		if runeLen(w) >= minTitleWordLen {
			topics = appendUnique(topics, seen, w)
		}
	}

	return capList(topics, MaxTopics)
}

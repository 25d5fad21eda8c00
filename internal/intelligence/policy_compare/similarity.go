package policy_compare

import (
	"math"
	"regexp"
)

// Similarity scoring constants.
const (
	fuzzyTopicMinLen     = 8
	fuzzyTopicThreshold  = 0.7
	sharedTopicWeight    = 15
	sharedTopicMaxScore  = 70
	lengthRatioWeight    = 20
	substantialLength    = 500
	substantialBonus     = 10
	usefulSimilarityBase = 25
)

// Levenshtein returns the edit distance between a and b over runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], curr[j-1], prev[j])
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// StringSimilarity is (longer - distance) / longer, or 1 for two empty strings.
func StringSimilarity(a, b string) float64 {
	longer := max(runeLen(a), runeLen(b))
	if longer == 0 {
		return 1.0
	}
	return float64(longer-Levenshtein(a, b)) / float64(longer)
}

// SharedTopics returns the topics of t1 that match a topic of t2 exactly or,
// when both exceed eight runes, with similarity above 0.7. The result is
// directional; CompareTopics matches both ways for a symmetric count.
func SharedTopics(t1, t2 []string) []string {
	shared := []string{}
	seen := make(map[string]struct{})
	for _, a := range t1 {
		for _, b := range t2 {
			if topicsMatch(a, b) {
				shared = appendUnique(shared, seen, a)
			}
		}
	}
	return shared
}

func topicsMatch(a, b string) bool {
	return a == b || (runeLen(a) > fuzzyTopicMinLen && runeLen(b) > fuzzyTopicMinLen &&
		StringSimilarity(a, b) > fuzzyTopicThreshold)
}

// ContentSimilarity scores two texts from their shared topic count and lengths.
// The result is in [0, 100].
func ContentSimilarity(len1, len2, sharedCount int) int {
	score := float64(min(sharedCount*sharedTopicWeight, sharedTopicMaxScore))
	if longer := max(len1, len2); longer > 0 {
		score += float64(min(len1, len2)) / float64(longer) * lengthRatioWeight
	}
	if len1 > substantialLength && len2 > substantialLength {
		score += substantialBonus
	}
	return int(math.Round(math.Min(score, 100)))
}

// HasUsefulComparison reports whether a generic comparison says anything.
func HasUsefulComparison(sharedCount, similarity int) bool {
	return sharedCount > 0 || similarity > usefulSimilarityBase
}

// ---------------------------------------------------------------------------
// Content structure
// ---------------------------------------------------------------------------

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// ContentStructure describes the size and sentence shape of one text.
type ContentStructure struct {
	Length            int
	Sentences         int
	AvgSentenceLength float64
}

// AnalyzeStructure counts the pieces produced by splitting on sentence
// terminators, including a trailing empty piece.
func AnalyzeStructure(text string) ContentStructure {
	sentences := len(sentenceSplitRe.FindAllStringIndex(text, -1)) + 1
	length := runeLen(text)
	return ContentStructure{
		Length:            length,
		Sentences:         sentences,
		AvgSentenceLength: float64(length) / float64(sentences),
	}
}

// TopicComparison is the generic-path view of two documents' topics.
type TopicComparison struct {
	SharedTopics []string
	UniqueToDoc1 []string
	UniqueToDoc2 []string
	Structure1   ContentStructure
	Structure2   ContentStructure
	Similarity   int
	Useful       bool
}

// CompareTopics derives shared and unique topics, structure and similarity.
// Shared topics are matched in both directions and the smaller side counts,
// so swapping a and b never changes the similarity.
func CompareTopics(a, b DocumentAnalysis) TopicComparison {
	shared1 := SharedTopics(a.Topics, b.Topics)
	shared2 := SharedTopics(b.Topics, a.Topics)
	shared := shared1[:min(len(shared1), len(shared2))]

	similarity := ContentSimilarity(a.ContentLength, b.ContentLength, len(shared))
	return TopicComparison{
		SharedTopics: shared,
		UniqueToDoc1: withoutTopics(a.Topics, shared1),
		UniqueToDoc2: withoutTopics(b.Topics, shared2),
		Structure1:   AnalyzeStructure(a.Content),
		Structure2:   AnalyzeStructure(b.Content),
		Similarity:   similarity,
		Useful:       HasUsefulComparison(len(shared), similarity),
	}
}

func withoutTopics(topics, drop []string) []string {
	skip := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		skip[d] = struct{}{}
	}
	out := []string{}
	for _, t := range topics {
		if _, ok := skip[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}

package insight_gpt

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PolicyInsight/internal/intelligence/common"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
)

const sampleAnswer = `1. Gold Plan offers broader hospital coverage while Silver Plan is cheaper.
2. Key differences:
- Gold Plan has a lower deductible of $500
- Silver Plan excludes out-of-network specialists
* ok
3. Recommendations:
- Choose Gold Plan for frequent hospital visits
- Choose Silver Plan if premiums matter most
4. Relevance: these documents are 85% relevant to each other.`

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeAsker struct {
	answer  string
	err     error
	block   bool
	prompts []string
}

func (f *fakeAsker) Ask(ctx context.Context, question string) (string, error) {
	f.prompts = append(f.prompts, question)
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.answer, f.err
}

func (f *fakeAsker) Provider() string { return common.ProviderHTTP }

func analysis(title, content string) pc.DocumentAnalysis {
	return pc.DocumentAnalysis{
		Title:        title,
		Content:      content,
		DocumentType: pc.DocTypeInsurancePolicy,
		PolicyType:   pc.PolicyTypeHealth,
	}
}

func baseResult() pc.ComparisonResult {
	return pc.ComparisonResult{
		Summary:         "rule summary",
		KeyDifferences:  []string{"rule diff 1", "rule diff 2", "rule diff 3", "rule diff 4", "rule diff 5"},
		Recommendations: []string{"rule rec 1", "rule rec 2", "rule rec 3", "rule rec 4"},
		CoverageComparison: pc.CoverageComparison{
			Doc1: []string{"Policy Classification: Health Insurance Policy"},
			Doc2: []string{"Policy Classification: Health Insurance Policy"},
		},
		RelevanceScore:    55,
		ContentSimilarity: 30,
		Kind:              pc.KindPolicy,
	}
}

// ---------------------------------------------------------------------------
// Prompt
// ---------------------------------------------------------------------------

func TestBuildPrompt_IncludesBothDocuments(t *testing.T) {
	prompt, err := BuildPrompt(analysis("Gold Plan", "gold content"), analysis("Silver Plan", "silver content"), 0)
	require.NoError(t, err)

	assert.Contains(t, prompt, `POLICY 1: "Gold Plan"`)
	assert.Contains(t, prompt, `POLICY 2: "Silver Plan"`)
	assert.Contains(t, prompt, "Content: gold content")
	assert.Contains(t, prompt, "Document Type: insurance policy")
	assert.Contains(t, prompt, "Policy Type: health")
	assert.Contains(t, prompt, "4. Relevance assessment (0-100)")
}

func TestBuildPrompt_TruncatesContent(t *testing.T) {
	long := strings.Repeat("a", 2500)
	prompt, err := BuildPrompt(analysis("A", long), analysis("B", "short"), 0)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Content: "+strings.Repeat("a", DefaultPromptContentLimit)+"\n")
	assert.NotContains(t, prompt, strings.Repeat("a", DefaultPromptContentLimit+1))

	prompt, err = BuildPrompt(analysis("A", "héllo wörld"), analysis("B", "x"), 4)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Content: héll\n")
}

// ---------------------------------------------------------------------------
// Parser
// ---------------------------------------------------------------------------

func TestParseAnswer_Sections(t *testing.T) {
	ans := ParseAnswer(sampleAnswer)

	assert.Equal(t, "Gold Plan offers broader hospital coverage while Silver Plan is cheaper.", ans.Summary)
	assert.Equal(t, []string{
		"Key differences:",
		"Gold Plan has a lower deductible of $500",
		"Silver Plan excludes out",
		"network specialists",
	}, ans.Differences)
	assert.Equal(t, []string{
		"Recommendations:",
		"Choose Gold Plan for frequent hospital visits",
		"Choose Silver Plan if premiums matter most",
	}, ans.Recommendations)
	assert.Equal(t, 85, ans.Relevance)
}

func TestParseAnswer_Defaults(t *testing.T) {
	ans := ParseAnswer("no structure here at all")

	assert.Empty(t, ans.Summary)
	assert.Empty(t, ans.Differences)
	assert.Empty(t, ans.Recommendations)
	assert.Equal(t, DefaultAIRelevance, ans.Relevance)
}

func TestParseAnswer_RelevanceClamped(t *testing.T) {
	assert.Equal(t, 100, ParseAnswer("a 250 score").Relevance)
	assert.Equal(t, 42, ParseAnswer("compatibility is 42 compatibility").Relevance)
	assert.Equal(t, 70, ParseAnswer("70% Relevance").Relevance)
}

func TestParseAnswer_ItemCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("1. summary text 2.")
	for i := 0; i < 8; i++ {
		sb.WriteString("\n- a sufficiently long difference item")
	}
	ans := ParseAnswer(sb.String())
	assert.Len(t, ans.Differences, maxAnswerItems)
}

// ---------------------------------------------------------------------------
// Merge
// ---------------------------------------------------------------------------

func TestMerge_Caps(t *testing.T) {
	ans := Answer{
		Summary:         "model summary",
		Differences:     []string{"m1", "m2", "m3", "m4", "m5"},
		Recommendations: []string{"r1", "r2", "r3", "r4", "r5"},
		Relevance:       85,
	}
	out := Merge(baseResult(), ans, pc.DefaultThresholds())

	assert.Equal(t, "model summary", out.Summary)
	require.Len(t, out.KeyDifferences, pc.MaxKeyDifferences)
	assert.Equal(t, "m1", out.KeyDifferences[0])
	assert.Equal(t, "rule diff 3", out.KeyDifferences[7])
	require.Len(t, out.Recommendations, pc.MaxRecommendations)
	assert.Equal(t, "rule rec 1", out.Recommendations[5])
	assert.Equal(t, 85, out.RelevanceScore)
	assert.True(t, out.IsRelevant)
	assert.True(t, out.Augmented)
	assert.Equal(t, baseResult().CoverageComparison, out.CoverageComparison)
	assert.Equal(t, 30, out.ContentSimilarity)
}

func TestMerge_KeepsRuleScoreAndSummary(t *testing.T) {
	base := baseResult()
	base.RelevanceScore = 30
	out := Merge(base, Answer{Relevance: 10}, pc.DefaultThresholds())

	assert.Equal(t, "rule summary", out.Summary)
	assert.Equal(t, 30, out.RelevanceScore)
	assert.False(t, out.IsRelevant)
	assert.Equal(t, base.KeyDifferences, out.KeyDifferences)
}

// ---------------------------------------------------------------------------
// Augmenter
// ---------------------------------------------------------------------------

func TestAugmenter_Success(t *testing.T) {
	asker := &fakeAsker{answer: sampleAnswer}
	g := NewAugmenter(asker, Config{}, nil, nil)

	out, ok := g.Augment(context.Background(), analysis("Gold", "g"), analysis("Silver", "s"), baseResult())
	require.True(t, ok)
	require.Len(t, asker.prompts, 1)
	assert.True(t, out.Augmented)
	assert.Equal(t, 85, out.RelevanceScore)
	assert.Contains(t, asker.prompts[0], `POLICY 1: "Gold"`)
}

func TestAugmenter_FallsBack(t *testing.T) {
	cases := map[string]*fakeAsker{
		"error": {err: errors.New("connection refused")},
		"empty": {answer: "   "},
		"block": {block: true},
	}
	for name, asker := range cases {
		t.Run(name, func(t *testing.T) {
			g := NewAugmenter(asker, Config{Timeout: 20 * time.Millisecond}, nil, nil)
			base := baseResult()

			out, ok := g.Augment(context.Background(), analysis("A", "a"), analysis("B", "b"), base)
			assert.False(t, ok)
			assert.Equal(t, base, out)
			assert.Len(t, asker.prompts, 1)
		})
	}
}

func TestAugmenter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewAugmenter(&fakeAsker{block: true}, Config{}, nil, nil)

	out, ok := g.Augment(ctx, analysis("A", "a"), analysis("B", "b"), baseResult())
	assert.False(t, ok)
	assert.Equal(t, baseResult(), out)
}

func TestAugmenter_WithOrchestrator(t *testing.T) {
	asker := &fakeAsker{answer: sampleAnswer}
	o := pc.NewOrchestrator(nil, NewAugmenter(asker, Config{}, nil, nil), nil, nil)

	doc := pc.DocumentInput{ID: "1", Title: "Gold Plan", Content: "health insurance coverage premium deductible"}
	other := pc.DocumentInput{ID: "2", Title: "Silver Plan", Content: "health insurance coverage premium copay"}

	res, err := o.Compare(context.Background(), doc, other)
	require.NoError(t, err)
	assert.True(t, res.Augmented)
	assert.GreaterOrEqual(t, res.RelevanceScore, 85)

	res, err = o.Compare(context.Background(), doc, other, pc.WithoutAI())
	require.NoError(t, err)
	assert.False(t, res.Augmented)
	assert.Len(t, asker.prompts, 1)
}

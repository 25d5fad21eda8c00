package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/intelligence/common"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

const goldText = `Gold Health Plan. This health insurance policy provides medical coverage for members.
Monthly premium: $450 per member.
Annual deductible: $1,500 per individual.
Copay: $25 for primary care office visits.
Coinsurance: 20% after deductible.
Out-of-pocket maximum: $6,000 per year.
Hospital care services include inpatient stays and surgery.
Emergency care is covered at any hospital.
Exclusions: cosmetic procedures and experimental treatments are not covered.
To file a claim, submit the claim form within 90 days of service.`

const silverText = `Silver Health Plan. This health insurance policy provides medical coverage for members.
Monthly premium: $320 per member.
Annual deductible: $3,000 per individual.
Copay: $40 for primary care office visits.
Coinsurance: 30% after deductible.
Out-of-pocket maximum: $8,500 per year.
Prescription coverage: generic drugs at participating pharmacies.
Exclusions: dental work, vision care and cosmetic procedures are not covered.
To file a claim, call member services within 60 days.`

const modelAnswer = `1. Gold Health Plan trades a higher premium for lower out-of-pocket costs.
2.
- Gold Health Plan has a deductible half the size of Silver
- Silver Health Plan adds generic prescription coverage
3.
- Pick Gold Health Plan if you expect hospital stays
4. These plans are 90% relevant.`

type stubAsker struct {
	answer  string
	err     error
	prompts int
}

func (s *stubAsker) Ask(ctx context.Context, question string) (string, error) {
	s.prompts++
	return s.answer, s.err
}

func (s *stubAsker) Provider() string { return "stub" }

func planPaths(t *testing.T) (string, string) {
	t.Helper()
	gold := writeDoc(t, "gold.json", pc.DocumentInput{ID: "p-gold", Title: "Gold Health Plan", Content: goldText})
	silver := writeDoc(t, "silver.json", pc.DocumentInput{ID: "p-silver", Title: "Silver Health Plan", Content: silverText})
	return gold, silver
}

func aiDeps(asker common.Asker, initErr error) CommandDependencies {
	return CommandDependencies{
		LoadConfig: func(string) (*config.Config, error) {
			cfg := testConfig()
			cfg.AI.Enabled = true
			return cfg, nil
		},
		NewAsker: func(ctx context.Context, cfg config.AIConfig, logger logging.Logger) (common.Asker, error) {
			return asker, initErr
		},
	}
}

func TestCompare_TextOutput(t *testing.T) {
	gold, silver := planPaths(t)

	out, _, err := runCLI(t, CommandDependencies{}, "compare", gold, silver)
	require.NoError(t, err)
	assert.Contains(t, out, "Gold Health Plan vs Silver Health Plan")
	assert.Contains(t, out, "Kind: policy")
	assert.Contains(t, out, "Key differences")
	assert.Contains(t, out, "Recommendations")
	assert.NotContains(t, out, "Includes AI-generated insights")
}

func TestCompare_JSONOutput(t *testing.T) {
	gold, silver := planPaths(t)

	out, _, err := runCLI(t, CommandDependencies{}, "compare", gold, silver, "-o", "json")
	require.NoError(t, err)

	var res pc.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, pc.KindPolicy, res.Kind)
	assert.False(t, res.Augmented)
	assert.True(t, res.IsRelevant)
	assert.GreaterOrEqual(t, res.RelevanceScore, 70)
	assert.NotEmpty(t, res.KeyDifferences)
}

func TestCompare_TableOutput(t *testing.T) {
	gold, silver := planPaths(t)

	out, _, err := runCLI(t, CommandDependencies{}, "compare", gold, silver, "--output", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Relevance")
	assert.Contains(t, out, "Content similarity")
	assert.Contains(t, out, "policy")
	assert.Contains(t, out, "Difference 1")
}

func TestCompare_WithAI(t *testing.T) {
	gold, silver := planPaths(t)
	asker := &stubAsker{answer: modelAnswer}

	out, _, err := runCLI(t, aiDeps(asker, nil), "compare", gold, silver, "--ai", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, 1, asker.prompts)

	var res pc.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Augmented)
	assert.Equal(t, "Gold Health Plan trades a higher premium for lower out-of-pocket costs.", res.Summary)
	assert.Equal(t, "Gold Health Plan has a deductible half the size of Silver", res.KeyDifferences[0])
	assert.GreaterOrEqual(t, res.RelevanceScore, 90)
}

func TestCompare_AIFailureFallsBackToRules(t *testing.T) {
	gold, silver := planPaths(t)
	asker := &stubAsker{err: fmt.Errorf("connection refused")}

	out, _, err := runCLI(t, aiDeps(asker, nil), "compare", gold, silver, "--ai", "-o", "json")
	require.NoError(t, err)

	var res pc.ComparisonResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.False(t, res.Augmented)
	assert.Equal(t, pc.KindPolicy, res.Kind)
}

func TestCompare_WithoutAIFlagNeverAsks(t *testing.T) {
	gold, silver := planPaths(t)
	asker := &stubAsker{answer: modelAnswer}

	_, _, err := runCLI(t, aiDeps(asker, nil), "compare", gold, silver)
	require.NoError(t, err)
	assert.Zero(t, asker.prompts)
}

func TestCompare_Errors(t *testing.T) {
	gold, silver := planPaths(t)
	untitled := writeDoc(t, "untitled.json", pc.DocumentInput{ID: "x", Content: "text"})
	missing := filepath.Join(t.TempDir(), "missing.json")

	tests := []struct {
		name string
		deps CommandDependencies
		args []string
		code errors.ErrorCode
	}{
		{"ai disabled", CommandDependencies{}, []string{"compare", gold, silver, "--ai"}, errors.ErrCodeAIDisabled},
		{"ai init failure", aiDeps(nil, fmt.Errorf("no key")), []string{"compare", gold, silver, "--ai"}, errors.ErrCodeAIUnavailable},
		{"missing file", CommandDependencies{}, []string{"compare", gold, missing}, errors.ErrCodeComparisonInputInvalid},
		{"missing title", CommandDependencies{}, []string{"compare", gold, untitled}, errors.ErrCodeComparisonInputInvalid},
		{"two stdin documents", CommandDependencies{}, []string{"compare", "-", "-"}, errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.deps, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}
}

func TestCompare_RequiresTwoArguments(t *testing.T) {
	gold, _ := planPaths(t)
	_, _, err := runCLI(t, CommandDependencies{}, "compare", gold)
	assert.Error(t, err)
}

func TestAnalyze_TextOutput(t *testing.T) {
	gold, _ := planPaths(t)

	out, _, err := runCLI(t, CommandDependencies{}, "analyze", gold)
	require.NoError(t, err)
	assert.Contains(t, out, "Gold Health Plan: policy document")
	assert.Contains(t, out, "Premiums: ")
	assert.Contains(t, out, "Exclusions")
}

func TestAnalyze_JSONOutput(t *testing.T) {
	gold, _ := planPaths(t)

	out, _, err := runCLI(t, CommandDependencies{}, "analyze", gold, "-o", "json")
	require.NoError(t, err)

	var a pc.DocumentAnalysis
	require.NoError(t, json.Unmarshal([]byte(out), &a))
	assert.Equal(t, "p-gold", a.ID)
	assert.True(t, a.IsPolicyDocument)
	assert.Equal(t, pc.PolicyTypeHealth, a.PolicyType)
	assert.NotEmpty(t, a.FinancialFacts.Premiums)
}

func TestAnalyze_TableOutput(t *testing.T) {
	gold, _ := planPaths(t)

	out, _, err := runCLI(t, CommandDependencies{}, "analyze", gold, "-o", "table")
	require.NoError(t, err)
	assert.Contains(t, out, "Policy document")
	assert.Contains(t, out, "true")
}

func TestAnalyze_RejectsUntitledDocument(t *testing.T) {
	path := writeDoc(t, "doc.json", pc.DocumentInput{Content: "some text"})

	_, _, err := runCLI(t, CommandDependencies{}, "analyze", path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeComparisonInputInvalid))
}

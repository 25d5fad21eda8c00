package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PolicyInsight/pkg/errors"
)

const comparisonJSON = `{
  "id": "7b0d7a53-54a3-4a7c-9f0c-5a1f7f1a9e10",
  "user_id": "user-1",
  "policy_ids": ["p-1", "p-2"],
  "name": "Gold Health Plan vs Silver Health Plan",
  "snapshot": {
    "policy1": {"id": "p-1", "title": "Gold Health Plan", "status": "active"},
    "policy2": {"id": "p-2", "title": "Silver Health Plan", "status": "active"}
  },
  "insights": {
    "summary": "Gold trades a higher premium for lower out-of-pocket costs.",
    "keyDifferences": ["Gold has a lower deductible"],
    "recommendations": ["Pick Gold for frequent hospital care"],
    "coverageComparison": {"policy1": ["Hospital care"], "policy2": ["Prescription"]},
    "isRelevant": true,
    "relevanceScore": 85,
    "contentSimilarity": 62,
    "kind": "policy",
    "augmented": true
  },
  "created_at": "2026-01-02T03:04:05Z",
  "updated_at": "2026-01-02T03:04:05Z"
}`

type recordedRequest struct {
	method string
	path   string
	query  string
	body   map[string]interface{}
}

func recordingServer(t *testing.T, status int, response string) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		if b, _ := io.ReadAll(r.Body); len(b) > 0 {
			assert.NoError(t, json.Unmarshal(b, &rec.body))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, response)
	})
	return c, rec
}

func TestComparisons_Create(t *testing.T) {
	c, rec := recordingServer(t, http.StatusCreated, comparisonJSON)
	off := false

	got, err := c.Comparisons().Create(context.Background(), &CreateComparisonRequest{
		PolicyIDs:        []string{"p-1", "p-2"},
		Name:             "mine",
		GenerateInsights: &off,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/policy-comparisons", rec.path)
	assert.Equal(t, []interface{}{"p-1", "p-2"}, rec.body["policy_ids"])
	assert.Equal(t, "mine", rec.body["name"])
	assert.Equal(t, false, rec.body["generate_insights"])

	assert.Equal(t, "Gold Health Plan vs Silver Health Plan", got.Name)
	assert.Equal(t, [2]string{"p-1", "p-2"}, got.PolicyIDs)
	assert.Equal(t, "Gold Health Plan", got.Snapshot.Policy1.Title)
	assert.Equal(t, 85, got.Insights.RelevanceScore)
	assert.Equal(t, []string{"Hospital care"}, got.Insights.CoverageComparison.Policy1)
	assert.True(t, got.Insights.Augmented)
}

func TestComparisons_CreateOmitsUnsetFields(t *testing.T) {
	c, rec := recordingServer(t, http.StatusCreated, comparisonJSON)

	_, err := c.Comparisons().Create(context.Background(), &CreateComparisonRequest{PolicyIDs: []string{"p-1", "p-2"}})
	require.NoError(t, err)
	assert.NotContains(t, rec.body, "name")
	assert.NotContains(t, rec.body, "generate_insights")
}

func TestComparisons_PolicyIDValidation(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK, comparisonJSON)

	for name, ids := range map[string][]string{
		"one id":    {"p-1"},
		"three ids": {"p-1", "p-2", "p-3"},
		"empty id":  {"p-1", ""},
		"duplicate": {"p-1", "p-1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Comparisons().Create(context.Background(), &CreateComparisonRequest{PolicyIDs: ids})
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			_, err = c.Comparisons().QuickCompare(context.Background(), &QuickCompareRequest{PolicyIDs: ids})
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
	assert.Empty(t, rec.method, "no request should reach the server")
}

func TestComparisons_QuickCompare(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK, `{"name":"A vs B","snapshot":{},"insights":{"kind":"general","relevanceScore":12}}`)

	got, err := c.Comparisons().QuickCompare(context.Background(), &QuickCompareRequest{PolicyIDs: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/policy-comparisons/compare/quick", rec.path)
	assert.Equal(t, "A vs B", got.Name)
	assert.Equal(t, "general", got.Insights.Kind)
	assert.False(t, got.Insights.IsRelevant)
}

func TestComparisons_Get(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK, comparisonJSON)

	got, err := c.Comparisons().Get(context.Background(), "7b0d7a53-54a3-4a7c-9f0c-5a1f7f1a9e10")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/v1/policy-comparisons/7b0d7a53-54a3-4a7c-9f0c-5a1f7f1a9e10", rec.path)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 2026, got.CreatedAt.Year())
}

func TestComparisons_GetNotFound(t *testing.T) {
	c, _ := recordingServer(t, http.StatusNotFound, `{"code":"COMPARISON_001","message":"comparison not found"}`)

	_, err := c.Comparisons().Get(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "COMPARISON_001", apiErr.Code)
}

func TestComparisons_List(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK,
		`{"items":[`+comparisonJSON+`],"total":21,"page":2,"page_size":10,"total_pages":3}`)

	got, err := c.Comparisons().List(context.Background(), &ListOptions{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/policy-comparisons", rec.path)
	assert.Equal(t, "page=2&page_size=10", rec.query)
	require.Len(t, got.Items, 1)
	assert.EqualValues(t, 21, got.Total)
	assert.Equal(t, 3, got.TotalPages)
}

func TestComparisons_ListDefaults(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK, `{"items":[],"total":0,"page":1,"page_size":20,"total_pages":0}`)

	got, err := c.Comparisons().List(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, rec.query)
	assert.Empty(t, got.Items)
}

func TestComparisons_Delete(t *testing.T) {
	c, rec := recordingServer(t, http.StatusNoContent, "")

	require.NoError(t, c.Comparisons().Delete(context.Background(), "c-1"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/v1/policy-comparisons/c-1", rec.path)
}

func TestComparisons_RegenerateInsights(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK, comparisonJSON)

	got, err := c.Comparisons().RegenerateInsights(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "/api/v1/policy-comparisons/c-1/regenerate-insights", rec.path)
	assert.Empty(t, rec.query)
	assert.True(t, got.Insights.Augmented)
}

func TestComparisons_RequestRegeneration(t *testing.T) {
	c, rec := recordingServer(t, http.StatusAccepted, `{"comparison_id":"c-1","status":"queued"}`)

	got, err := c.Comparisons().RequestRegeneration(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "async=true", rec.query)
	assert.Equal(t, &RegenerationQueued{ComparisonID: "c-1", Status: "queued"}, got)
}

func TestComparisons_RejectEmptyID(t *testing.T) {
	c, rec := recordingServer(t, http.StatusOK, comparisonJSON)
	ctx := context.Background()

	_, err := c.Comparisons().Get(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(c.Comparisons().Delete(ctx, ""), ErrInvalidConfig))
	_, err = c.Comparisons().RegenerateInsights(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	_, err = c.Comparisons().RequestRegeneration(ctx, "")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.Empty(t, rec.method)
}

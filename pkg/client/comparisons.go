package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const comparisonsPath = "/api/v1/policy-comparisons"

// PolicySnapshot is the state of one policy when it was compared.
type PolicySnapshot struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Status     string     `json:"status"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	Summary    string     `json:"summary,omitempty"`
}

// Snapshot holds both sides of a comparison.
type Snapshot struct {
	Policy1 PolicySnapshot `json:"policy1"`
	Policy2 PolicySnapshot `json:"policy2"`
}

// CoverageComparison lists what each document covers.
type CoverageComparison struct {
	Policy1 []string `json:"policy1"`
	Policy2 []string `json:"policy2"`
}

// Insights is the outcome of comparing two documents.
type Insights struct {
	Summary            string             `json:"summary"`
	KeyDifferences     []string           `json:"keyDifferences"`
	Recommendations    []string           `json:"recommendations"`
	CoverageComparison CoverageComparison `json:"coverageComparison"`
	IsRelevant         bool               `json:"isRelevant"`
	RelevanceScore     int                `json:"relevanceScore"`
	ContentSimilarity  int                `json:"contentSimilarity"`
	Kind               string             `json:"kind"`
	Augmented          bool               `json:"augmented"`
	Rationale          []string           `json:"rationale,omitempty"`
}

// Comparison is a saved comparison of two policies.
type Comparison struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PolicyIDs [2]string `json:"policy_ids"`
	Name      string    `json:"name"`
	Snapshot  Snapshot  `json:"snapshot"`
	Insights  Insights  `json:"insights"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComparisonList is one page of saved comparisons.
type ComparisonList struct {
	Items      []*Comparison `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// QuickComparison is an unsaved comparison.
type QuickComparison struct {
	Name     string   `json:"name"`
	Snapshot Snapshot `json:"snapshot"`
	Insights Insights `json:"insights"`
}

// CreateComparisonRequest saves a comparison of two policies.
// GenerateInsights defaults to true on the server when nil.
type CreateComparisonRequest struct {
	PolicyIDs        []string `json:"policy_ids"`
	Name             string   `json:"name,omitempty"`
	GenerateInsights *bool    `json:"generate_insights,omitempty"`
}

// QuickCompareRequest compares two policies without saving.
type QuickCompareRequest struct {
	PolicyIDs        []string `json:"policy_ids"`
	GenerateInsights *bool    `json:"generate_insights,omitempty"`
}

// ListOptions selects a page. Zero values use the server defaults.
type ListOptions struct {
	Page     int
	PageSize int
}

// RegenerationQueued acknowledges an asynchronous regeneration request.
type RegenerationQueued struct {
	ComparisonID string `json:"comparison_id"`
	Status       string `json:"status"`
}

// ComparisonsClient calls the /policy-comparisons endpoints.
type ComparisonsClient struct {
	client *Client
}

// Create saves a new comparison.
func (c *ComparisonsClient) Create(ctx context.Context, req *CreateComparisonRequest) (*Comparison, error) {
	if err := validatePolicyIDs(req.PolicyIDs); err != nil {
		return nil, err
	}
	var out Comparison
	if err := c.client.do(ctx, http.MethodPost, comparisonsPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// QuickCompare compares two policies without persisting the result.
func (c *ComparisonsClient) QuickCompare(ctx context.Context, req *QuickCompareRequest) (*QuickComparison, error) {
	if err := validatePolicyIDs(req.PolicyIDs); err != nil {
		return nil, err
	}
	var out QuickComparison
	if err := c.client.do(ctx, http.MethodPost, comparisonsPath+"/compare/quick", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a saved comparison.
func (c *ComparisonsClient) Get(ctx context.Context, id string) (*Comparison, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: comparison id is required", ErrInvalidConfig)
	}
	var out Comparison
	if err := c.client.do(ctx, http.MethodGet, comparisonsPath+"/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns a page of the caller's comparisons, newest first.
func (c *ComparisonsClient) List(ctx context.Context, opts *ListOptions) (*ComparisonList, error) {
	path := comparisonsPath
	if opts != nil {
		q := url.Values{}
		if opts.Page > 0 {
			q.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
	}
	var out ComparisonList
	if err := c.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete soft-deletes a comparison.
func (c *ComparisonsClient) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: comparison id is required", ErrInvalidConfig)
	}
	return c.client.do(ctx, http.MethodDelete, comparisonsPath+"/"+url.PathEscape(id), nil, nil)
}

// RegenerateInsights re-runs the comparison with AI enabled and returns the
// updated comparison.
func (c *ComparisonsClient) RegenerateInsights(ctx context.Context, id string) (*Comparison, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: comparison id is required", ErrInvalidConfig)
	}
	var out Comparison
	if err := c.client.do(ctx, http.MethodPatch, regeneratePath(id, false), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestRegeneration queues the regeneration for the worker and returns
// immediately.
func (c *ComparisonsClient) RequestRegeneration(ctx context.Context, id string) (*RegenerationQueued, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: comparison id is required", ErrInvalidConfig)
	}
	var out RegenerationQueued
	if err := c.client.do(ctx, http.MethodPatch, regeneratePath(id, true), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func regeneratePath(id string, async bool) string {
	p := comparisonsPath + "/" + url.PathEscape(id) + "/regenerate-insights"
	if async {
		p += "?async=true"
	}
	return p
}

func validatePolicyIDs(ids []string) error {
	if len(ids) != 2 {
		return fmt.Errorf("%w: exactly two policy ids are required", ErrInvalidConfig)
	}
	if ids[0] == "" || ids[1] == "" {
		return fmt.Errorf("%w: policy ids must not be empty", ErrInvalidConfig)
	}
	if ids[0] == ids[1] {
		return fmt.Errorf("%w: policy ids must differ", ErrInvalidConfig)
	}
	return nil
}

//Personal.AI order the ending

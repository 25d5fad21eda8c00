package comparison

import (
	"context"

	"github.com/google/uuid"

	"github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
)

// Pagination defaults.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is a normalized page request.
type Page struct {
	Page int
	Size int
}

// NewPage clamps page to >= 1 and size to [1, MaxPageSize].
func NewPage(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Page: page, Size: size}
}

// Offset is the number of rows skipped.
func (p Page) Offset() int { return (p.Page - 1) * p.Size }

// ListResult is one page of comparisons.
type ListResult struct {
	Items      []*Comparison `json:"items"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int           `json:"total_pages"`
}

// NewListResult fills the paging fields of a page of items.
func NewListResult(items []*Comparison, total int64, p Page) *ListResult {
	if items == nil {
		items = []*Comparison{}
	}
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	return &ListResult{Items: items, Total: total, Page: p.Page, PageSize: p.Size, TotalPages: pages}
}

// Repository persists comparisons. Deleted comparisons are invisible to
// every read.
type Repository interface {
	Create(ctx context.Context, c *Comparison) error
	// GetByID returns ErrCodeComparisonNotFound when id is missing or deleted.
	GetByID(ctx context.Context, id uuid.UUID) (*Comparison, error)
	ListByUser(ctx context.Context, userID string, p Page) ([]*Comparison, int64, error)
	UpdateInsights(ctx context.Context, id uuid.UUID, insights policy_compare.ComparisonResult) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

//Personal.AI order the ending

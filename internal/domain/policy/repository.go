package policy

import (
	"context"

	"github.com/google/uuid"
)

// Repository loads policies. Policies are written by the ingestion service,
// so the comparison service only reads them.
type Repository interface {
	// GetByID returns ErrCodePolicyNotFound when no policy has id.
	GetByID(ctx context.Context, id uuid.UUID) (*Policy, error)
	// GetByIDs returns the policies found, in no particular order.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Policy, error)
}

// TextStore holds extracted PDF text that is too large to keep inline.
type TextStore interface {
	GetText(ctx context.Context, key string) (string, error)
	PutText(ctx context.Context, key, text string) error
}

//Personal.AI order the ending

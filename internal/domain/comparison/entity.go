// Package comparison holds the saved PolicyComparison aggregate.
package comparison

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PolicyInsight/internal/domain/policy"
	"github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// PolicySnapshot freezes the parts of a policy shown with a saved comparison,
// so the comparison stays readable after the policy changes.
type PolicySnapshot struct {
	ID         uuid.UUID  `json:"id"`
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

// Comparison is a persisted comparison of exactly two policies.
type Comparison struct {
	ID        uuid.UUID                       `json:"id"`
	UserID    string                          `json:"user_id"`
	PolicyIDs [2]uuid.UUID                    `json:"policy_ids"`
	Name      string                          `json:"name"`
	Snapshot  Snapshot                        `json:"snapshot"`
	Insights  policy_compare.ComparisonResult `json:"insights"`
	IsDeleted bool                            `json:"-"`
	DeletedAt *time.Time                      `json:"-"`
	CreatedAt time.Time                       `json:"created_at"`
	UpdatedAt time.Time                       `json:"updated_at"`
}

// NewComparison builds a comparison of p1 and p2 for userID. An empty name
// falls back to DefaultName.
func NewComparison(userID string, p1, p2 *policy.Policy, name string, insights policy_compare.ComparisonResult) (*Comparison, error) {
	if userID == "" {
		return nil, errors.New(errors.ErrCodeValidation, "user id is required")
	}
	if p1 == nil || p2 == nil {
		return nil, errors.New(errors.ErrCodePolicyCountInvalid, errors.DefaultMessageForCode(errors.ErrCodePolicyCountInvalid))
	}
	if p1.ID == p2.ID {
		return nil, errors.New(errors.ErrCodePolicyDuplicateID, errors.DefaultMessageForCode(errors.ErrCodePolicyDuplicateID))
	}
	if name == "" {
		name = DefaultName(p1.Title, p2.Title)
	}

	now := time.Now().UTC()
	return &Comparison{
		ID:        uuid.New(),
		UserID:    userID,
		PolicyIDs: [2]uuid.UUID{p1.ID, p2.ID},
		Name:      name,
		Snapshot:  Snapshot{Policy1: snapshotOf(p1), Policy2: snapshotOf(p2)},
		Insights:  insights,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// DefaultName is the name given to an unnamed comparison.
func DefaultName(title1, title2 string) string {
	return fmt.Sprintf("Comparison: %s vs %s", title1, title2)
}

func snapshotOf(p *policy.Policy) PolicySnapshot {
	summary := p.AISummaryBrief
	if summary == "" {
		summary = p.AISummary
	}
	return PolicySnapshot{
		ID:         p.ID,
		Title:      p.Title,
		Status:     string(p.Status),
		ExpiryDate: p.ExpiryDate,
		Summary:    summary,
	}
}

// VisibleTo reports whether userID may read the comparison.
func (c *Comparison) VisibleTo(userID string) bool {
	return c.UserID == userID && !c.IsDeleted
}

// ReplaceInsights swaps in freshly generated insights.
func (c *Comparison) ReplaceInsights(insights policy_compare.ComparisonResult) {
	c.Insights = insights
	c.UpdatedAt = time.Now().UTC()
}

// MarkDeleted soft-deletes the comparison.
func (c *Comparison) MarkDeleted() {
	now := time.Now().UTC()
	c.IsDeleted = true
	c.DeletedAt = &now
	c.UpdatedAt = now
}

//Personal.AI order the ending

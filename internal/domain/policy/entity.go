// Package policy holds the Policy aggregate as seen by the comparison
// service: ownership, publication state, expiry and the extracted text that
// feeds the comparison engine.
package policy

import (
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
)

// Status is the publication state of a policy.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusPublish Status = "publish"
)

// LifecycleState describes where a policy stands relative to its expiry date.
type LifecycleState string

const (
	LifecycleActive       LifecycleState = "active"
	LifecycleExpiringSoon LifecycleState = "expiring_soon"
	LifecycleExpired      LifecycleState = "expired"
)

// ExpiringSoonWindow is how close to expiry a policy is flagged.
const ExpiringSoonWindow = 30 * 24 * time.Hour

// Policy is a user-owned policy document.
type Policy struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Status      Status     `json:"status"`
	Tags        []string   `json:"tags,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty"`

	HasPDF       bool   `json:"has_pdf"`
	PDFProcessed bool   `json:"pdf_processed"`
	PDFText      string `json:"-"`
	// PDFTextKey locates the extracted text in object storage when it is
	// not stored inline.
	PDFTextKey string `json:"-"`

	AISummary         string `json:"ai_summary,omitempty"`
	AISummaryBrief    string `json:"ai_summary_brief,omitempty"`
	AISummaryStandard string `json:"ai_summary_standard,omitempty"`
	AISummaryDetailed string `json:"ai_summary_detailed,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Lifecycle classifies the policy at now. A policy without an expiry date
// is always active.
func (p *Policy) Lifecycle(now time.Time) LifecycleState {
	if p.ExpiryDate == nil {
		return LifecycleActive
	}
	switch left := p.ExpiryDate.Sub(now); {
	case left < 0:
		return LifecycleExpired
	case left <= ExpiringSoonWindow:
		return LifecycleExpiringSoon
	default:
		return LifecycleActive
	}
}

// DaysUntilExpiry returns the whole days left before expiry, rounded up, or
// -1 when the policy has no expiry date.
func (p *Policy) DaysUntilExpiry(now time.Time) int {
	if p.ExpiryDate == nil {
		return -1
	}
	left := p.ExpiryDate.Sub(now)
	days := int(left / (24 * time.Hour))
	if left%(24*time.Hour) > 0 {
		days++
	}
	return days
}

// IsPublished reports whether the policy has been published.
func (p *Policy) IsPublished() bool { return p.Status == StatusPublish }

// OwnedBy reports whether userID owns the policy.
func (p *Policy) OwnedBy(userID string) bool { return p.OwnerID == userID }

// NeedsTextHydration reports whether the PDF text lives only in object storage.
func (p *Policy) NeedsTextHydration() bool {
	return p.PDFTextKey != "" && p.PDFText == ""
}

// ToDocumentInput converts the policy into comparison engine input.
func (p *Policy) ToDocumentInput() policy_compare.DocumentInput {
	return policy_compare.DocumentInput{
		ID:          p.ID.String(),
		Title:       p.Title,
		Description: p.Description,
		Content:     p.Content,
		PDFText:     p.PDFText,
		Summaries: policy_compare.Summaries{
			Brief:    p.AISummaryBrief,
			Standard: p.AISummaryStandard,
			Detailed: p.AISummaryDetailed,
			Legacy:   p.AISummary,
		},
		Status:              string(p.Status),
		HasAttachment:       p.HasPDF,
		AttachmentProcessed: p.PDFProcessed,
	}
}

//Personal.AI order the ending

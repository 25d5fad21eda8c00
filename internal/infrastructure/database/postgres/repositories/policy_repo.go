package repositories

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/turtacn/PolicyInsight/internal/domain/policy"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/postgres"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

const policyColumns = `id, owner_id, title, description, content, status, tags,
	published_at, expiry_date, has_pdf, pdf_processed, pdf_text, pdf_text_key,
	ai_summary, ai_summary_brief, ai_summary_standard, ai_summary_detailed,
	created_at, updated_at`

type postgresPolicyRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresPolicyRepo returns a policy.Repository backed by conn.
func NewPostgresPolicyRepo(conn *postgres.Connection, log logging.Logger) policy.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresPolicyRepo{log: log, executor: conn.DB()}
}

func (r *postgresPolicyRepo) GetByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = $1`
	p, err := scanPolicy(r.executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodePolicyNotFound, "policy not found").WithDetail("id=" + id.String())
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load policy")
	}
	return p, nil
}

func (r *postgresPolicyRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*policy.Policy, error) {
	if len(ids) == 0 {
		return []*policy.Policy{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	query := `SELECT ` + policyColumns + ` FROM policies WHERE id = ANY($1::uuid[])`
	rows, err := r.executor.QueryContext(ctx, query, pq.Array(keys))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load policies")
	}
	defer rows.Close()

	out := make([]*policy.Policy, 0, len(ids))
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan policy")
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate policies")
	}
	r.log.Debug("Loaded policies", logging.Int("requested", len(ids)), logging.Int("found", len(out)))
	return out, nil
}

func scanPolicy(s scanner) (*policy.Policy, error) {
	var (
		p                    policy.Policy
		status               string
		publishedAt, expires sql.NullTime
	)
	err := s.Scan(
		&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Content, &status, pq.Array(&p.Tags),
		&publishedAt, &expires, &p.HasPDF, &p.PDFProcessed, &p.PDFText, &p.PDFTextKey,
		&p.AISummary, &p.AISummaryBrief, &p.AISummaryStandard, &p.AISummaryDetailed,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Status = policy.Status(status)
	p.PublishedAt = timePtr(publishedAt)
	p.ExpiryDate = timePtr(expires)
	return &p, nil
}

//Personal.AI order the ending

package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"

	"github.com/google/uuid"

	"github.com/turtacn/PolicyInsight/internal/domain/comparison"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/postgres"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

const comparisonColumns = `id, user_id, policy1_id, policy2_id, name, snapshot, insights, created_at, updated_at`

type postgresComparisonRepo struct {
	log      logging.Logger
	executor queryExecutor
}

// NewPostgresComparisonRepo returns a comparison.Repository backed by conn.
func NewPostgresComparisonRepo(conn *postgres.Connection, log logging.Logger) comparison.Repository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &postgresComparisonRepo{log: log, executor: conn.DB()}
}

func (r *postgresComparisonRepo) Create(ctx context.Context, c *comparison.Comparison) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	snapshot, err := json.Marshal(c.Snapshot)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode comparison snapshot")
	}
	insights, err := json.Marshal(c.Insights)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode comparison insights")
	}

	query := `
		INSERT INTO policy_comparisons (id, user_id, policy1_id, policy2_id, name, snapshot, insights)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err = r.executor.QueryRowContext(ctx, query,
		c.ID, c.UserID, c.PolicyIDs[0], c.PolicyIDs[1], c.Name, snapshot, insights,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return errors.Wrap(err, errors.ErrCodeConflict, "comparison already exists")
		case pgForeignKeyViolation:
			return errors.Wrap(err, errors.ErrCodePolicyNotFound, "compared policy no longer exists")
		}
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create comparison")
	}
	return nil
}

func (r *postgresComparisonRepo) GetByID(ctx context.Context, id uuid.UUID) (*comparison.Comparison, error) {
	query := `SELECT ` + comparisonColumns + ` FROM policy_comparisons WHERE id = $1 AND is_deleted = FALSE`
	c, err := scanComparison(r.executor.QueryRowContext(ctx, query, id))
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, comparisonNotFound(id)
		}
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load comparison")
	}
	return c, nil
}

func (r *postgresComparisonRepo) ListByUser(ctx context.Context, userID string, p comparison.Page) ([]*comparison.Comparison, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM policy_comparisons WHERE user_id = $1 AND is_deleted = FALSE`
	if err := r.executor.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to count comparisons")
	}
	if total == 0 {
		return []*comparison.Comparison{}, 0, nil
	}

	query := `SELECT ` + comparisonColumns + ` FROM policy_comparisons
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.executor.QueryContext(ctx, query, userID, p.Size, p.Offset())
	if err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to list comparisons")
	}
	defer rows.Close()

	out := make([]*comparison.Comparison, 0, p.Size)
	for rows.Next() {
		c, err := scanComparison(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to scan comparison")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to iterate comparisons")
	}
	return out, total, nil
}

func (r *postgresComparisonRepo) UpdateInsights(ctx context.Context, id uuid.UUID, insights policy_compare.ComparisonResult) error {
	payload, err := json.Marshal(insights)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode comparison insights")
	}
	query := `UPDATE policy_comparisons SET insights = $2, updated_at = NOW() WHERE id = $1 AND is_deleted = FALSE`
	return r.execAffectingOne(ctx, id, "failed to update comparison insights", query, id, payload)
}

func (r *postgresComparisonRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE policy_comparisons SET is_deleted = TRUE, deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND is_deleted = FALSE`
	if err := r.execAffectingOne(ctx, id, "failed to delete comparison", query, id); err != nil {
		return err
	}
	r.log.Info("Comparison soft-deleted", logging.String("comparison_id", id.String()))
	return nil
}

func (r *postgresComparisonRepo) execAffectingOne(ctx context.Context, id uuid.UUID, msg, query string, args ...interface{}) error {
	res, err := r.executor.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, msg)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, msg)
	}
	if rows == 0 {
		return comparisonNotFound(id)
	}
	return nil
}

func comparisonNotFound(id uuid.UUID) error {
	return errors.New(errors.ErrCodeComparisonNotFound, "policy comparison not found").WithDetail("id=" + id.String())
}

func scanComparison(s scanner) (*comparison.Comparison, error) {
	var (
		c                  comparison.Comparison
		snapshot, insights []byte
	)
	if err := s.Scan(&c.ID, &c.UserID, &c.PolicyIDs[0], &c.PolicyIDs[1], &c.Name,
		&snapshot, &insights, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &c.Snapshot); err != nil {
			return nil, err
		}
	}
	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &c.Insights); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

//Personal.AI order the ending

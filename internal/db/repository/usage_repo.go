package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UsageRepository persists per-(category, tier) question rotation history.
// Each row holds the question ids previously shown for that key, oldest first.
type UsageRepository struct {
	db DBTX
}

func NewUsageRepository(db DBTX) *UsageRepository {
	return &UsageRepository{db: db}
}

// Used returns the ordered list of previously shown question ids for the key.
// A missing record is initialized to empty.
func (r *UsageRepository) Used(ctx context.Context, categoryID string, points int) ([]string, error) {
	const q = `
		SELECT last_used_question_ids
		FROM category_point_progress
		WHERE category_id = $1 AND points = $2`

	var ids []string
	err := r.db.QueryRow(ctx, q, categoryID, points).Scan(&ids)
	if errors.Is(err, pgx.ErrNoRows) {
		const init = `
			INSERT INTO category_point_progress (category_id, points, last_used_question_ids)
			VALUES ($1, $2, '{}')
			ON CONFLICT (category_id, points) DO NOTHING`
		if _, err := r.db.Exec(ctx, init, categoryID, points); err != nil {
			return nil, fmt.Errorf("init usage record: %w", err)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query usage record: %w", err)
	}
	return ids, nil
}

// Append records a question id as most recently used for the key. Idempotent:
// an id already present is not appended again.
func (r *UsageRepository) Append(ctx context.Context, categoryID string, points int, questionID string) error {
	const q = `
		INSERT INTO category_point_progress (category_id, points, last_used_question_ids, updated_at)
		VALUES ($1, $2, ARRAY[$3]::text[], now())
		ON CONFLICT (category_id, points) DO UPDATE
		SET last_used_question_ids = array_append(category_point_progress.last_used_question_ids, $3),
		    updated_at = now()
		WHERE NOT category_point_progress.last_used_question_ids @> ARRAY[$3]::text[]`

	if _, err := r.db.Exec(ctx, q, categoryID, points, questionID); err != nil {
		return fmt.Errorf("append usage: %w", err)
	}
	return nil
}

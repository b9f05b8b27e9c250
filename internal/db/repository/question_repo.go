package repository

import (
	"context"
	"fmt"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

// QuestionRepository reads authored questions for the board.
type QuestionRepository struct {
	db DBTX
}

func NewQuestionRepository(db DBTX) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// QuestionsByCategories fetches all questions under the given categories,
// ordered by points so tiers come back grouped.
func (r *QuestionRepository) QuestionsByCategories(ctx context.Context, categoryIDs []string) ([]catalog.Question, error) {
	const q = `
		SELECT id, category_id, question_ar, question_en, answer_ar, answer_en, points,
		       question_media_kind, question_media_url, question_media_seconds,
		       answer_media_kind, answer_media_url, answer_media_seconds
		FROM questions
		WHERE category_id = ANY($1)
		ORDER BY points`

	rows, err := r.db.Query(ctx, q, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var qs []catalog.Question
	for rows.Next() {
		var question catalog.Question
		var qmKind, qmURL, amKind, amURL *string
		var qmSeconds, amSeconds *int
		if err := rows.Scan(
			&question.ID, &question.CategoryID,
			&question.QuestionAr, &question.QuestionEn,
			&question.AnswerAr, &question.AnswerEn,
			&question.Points,
			&qmKind, &qmURL, &qmSeconds,
			&amKind, &amURL, &amSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		question.QuestionMedia = mediaFrom(qmKind, qmURL, qmSeconds)
		question.AnswerMedia = mediaFrom(amKind, amURL, amSeconds)
		qs = append(qs, question)
	}
	return qs, rows.Err()
}

func mediaFrom(kind, url *string, seconds *int) *catalog.Media {
	if kind == nil || url == nil {
		return nil
	}
	m := &catalog.Media{Kind: *kind, URL: *url}
	if seconds != nil {
		m.DurationSeconds = *seconds
	}
	return m
}

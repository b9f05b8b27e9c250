package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GameRecord is one finished game as stored for the results page.
type GameRecord struct {
	ID         uuid.UUID
	Team1Name  string
	Team2Name  string
	Team1Score int
	Team2Score int
	Mode       string
	FinishedAt time.Time
}

// GameRepository persists finished game results.
type GameRepository struct {
	db DBTX
}

func NewGameRepository(db DBTX) *GameRepository {
	return &GameRepository{db: db}
}

// Insert stores a finished game row.
func (r *GameRepository) Insert(ctx context.Context, rec GameRecord) error {
	const q = `
		INSERT INTO games (id, team1_name, team2_name, team1_score, team2_score, mode, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, q,
		rec.ID, rec.Team1Name, rec.Team2Name, rec.Team1Score, rec.Team2Score, rec.Mode, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// Recent lists the latest finished games, newest first.
func (r *GameRepository) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	const q = `
		SELECT id, team1_name, team2_name, team1_score, team2_score, mode, finished_at
		FROM games
		ORDER BY finished_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var recs []GameRecord
	for rows.Next() {
		var rec GameRecord
		if err := rows.Scan(&rec.ID, &rec.Team1Name, &rec.Team2Name, &rec.Team1Score, &rec.Team2Score, &rec.Mode, &rec.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

package results

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nbkbattle/nbk-battle/internal/battle"
	"github.com/nbkbattle/nbk-battle/internal/db/repository"
)

type memGameStore struct {
	rows []repository.GameRecord
	err  error
}

func (s *memGameStore) Insert(_ context.Context, rec repository.GameRecord) error {
	if s.err != nil {
		return s.err
	}
	s.rows = append([]repository.GameRecord{rec}, s.rows...)
	return nil
}

func (s *memGameStore) Recent(_ context.Context, limit int) ([]repository.GameRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > len(s.rows) {
		limit = len(s.rows)
	}
	return s.rows[:limit], nil
}

func testScore() battle.FinalScore {
	return battle.FinalScore{
		Team1Name:  "Falcons",
		Team2Name:  "Eagles",
		Team1Score: 1400,
		Team2Score: 1000,
	}
}

func TestRecordArchivesGame(t *testing.T) {
	store := &memGameStore{}
	svc := NewService(store, nil, zerolog.Nop(), ServiceOptions{})

	sessionID := uuid.New()
	err := svc.Record(context.Background(), sessionID, battle.ModePoints, testScore())
	assert.NoError(t, err)

	if assert.Len(t, store.rows, 1) {
		rec := store.rows[0]
		assert.Equal(t, sessionID, rec.ID)
		assert.Equal(t, "Falcons", rec.Team1Name)
		assert.Equal(t, 1400, rec.Team1Score)
		assert.Equal(t, "points", rec.Mode)
		assert.WithinDuration(t, time.Now(), rec.FinishedAt, time.Minute)
	}
}

func TestRecordPropagatesStoreError(t *testing.T) {
	store := &memGameStore{err: errors.New("pg down")}
	svc := NewService(store, nil, zerolog.Nop(), ServiceOptions{})

	err := svc.Record(context.Background(), uuid.New(), battle.ModePoints, testScore())
	assert.Error(t, err)
}

func TestRecentFallsBackToDatabase(t *testing.T) {
	store := &memGameStore{}
	svc := NewService(store, nil, zerolog.Nop(), ServiceOptions{RecentLimit: 5})

	for i := 0; i < 3; i++ {
		assert.NoError(t, svc.Record(context.Background(), uuid.New(), battle.ModeDiamond, testScore()))
	}

	entries, err := svc.Recent(context.Background(), 2)
	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "diamond", entries[0].Mode)
}

func TestRecentClampsLimit(t *testing.T) {
	store := &memGameStore{}
	svc := NewService(store, nil, zerolog.Nop(), ServiceOptions{RecentLimit: 2})

	for i := 0; i < 5; i++ {
		assert.NoError(t, svc.Record(context.Background(), uuid.New(), battle.ModePoints, testScore()))
	}

	entries, err := svc.Recent(context.Background(), 100)
	assert.NoError(t, err)
	assert.Len(t, entries, 2, "requests above the feed limit are clamped")

	entries, err = svc.Recent(context.Background(), 0)
	assert.NoError(t, err)
	assert.Len(t, entries, 2, "zero means the default feed size")
}

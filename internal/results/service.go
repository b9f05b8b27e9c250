// Package results archives finished games and serves the recent-games feed.
package results

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/nbkbattle/nbk-battle/internal/battle"
	"github.com/nbkbattle/nbk-battle/internal/db/repository"
)

// GameStore persists finished games.
type GameStore interface {
	Insert(ctx context.Context, rec repository.GameRecord) error
	Recent(ctx context.Context, limit int) ([]repository.GameRecord, error)
}

// Entry is one finished game as sent to clients.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Team1Name  string    `json:"team1_name"`
	Team2Name  string    `json:"team2_name"`
	Team1Score int       `json:"team1_score"`
	Team2Score int       `json:"team2_score"`
	Mode       string    `json:"mode"`
	FinishedAt time.Time `json:"finished_at"`
}

// ServiceOptions configures the recent-results feed.
type ServiceOptions struct {
	RecentLimit int
	RecentTTL   time.Duration
	RedisKey    string
}

// Service archives finished games in Postgres and keeps a Redis list of the
// most recent ones for cheap reads.
type Service struct {
	store       GameStore
	redis       *redis.Client
	logger      zerolog.Logger
	recentLimit int
	recentTTL   time.Duration
	redisKey    string
}

var _ battle.ResultRecorder = (*Service)(nil)

// NewService constructs the results service.
func NewService(store GameStore, redisClient *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	limit := opts.RecentLimit
	if limit <= 0 {
		limit = 20
	}
	ttl := opts.RecentTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	key := opts.RedisKey
	if key == "" {
		key = "battle:results:recent"
	}
	return &Service{
		store:       store,
		redis:       redisClient,
		logger:      logger.With().Str("component", "results").Logger(),
		recentLimit: limit,
		recentTTL:   ttl,
		redisKey:    key,
	}
}

// Record archives a finished game. The Postgres row is the source of truth;
// the Redis list is refreshed best-effort.
func (s *Service) Record(ctx context.Context, sessionID uuid.UUID, mode battle.Mode, score battle.FinalScore) error {
	rec := repository.GameRecord{
		ID:         sessionID,
		Team1Name:  score.Team1Name,
		Team2Name:  score.Team2Name,
		Team1Score: score.Team1Score,
		Team2Score: score.Team2Score,
		Mode:       string(mode),
		FinishedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		return fmt.Errorf("archive game: %w", err)
	}
	s.pushRecent(ctx, entryFromRecord(rec))
	return nil
}

// Recent returns the latest finished games, newest first. It serves from the
// Redis list when populated and falls back to Postgres.
func (s *Service) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.recentLimit {
		limit = s.recentLimit
	}

	if entries, ok := s.recentFromRedis(ctx, limit); ok {
		return entries, nil
	}

	recs, err := s.store.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent games: %w", err)
	}
	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, entryFromRecord(rec))
	}
	return entries, nil
}

func (s *Service) pushRecent(ctx context.Context, e Entry) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode recent entry failed")
		return
	}
	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, s.redisKey, data)
	pipe.LTrim(ctx, s.redisKey, 0, int64(s.recentLimit-1))
	pipe.Expire(ctx, s.redisKey, s.recentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("update recent results list failed")
	}
}

func (s *Service) recentFromRedis(ctx context.Context, limit int) ([]Entry, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.LRange(ctx, s.redisKey, 0, int64(limit-1)).Result()
	if err != nil {
		s.logger.Warn().Err(err).Msg("read recent results list failed")
		return nil, false
	}
	if len(raw) == 0 {
		return nil, false
	}
	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			s.logger.Warn().Err(err).Msg("decode recent entry failed, falling back to database")
			return nil, false
		}
		entries = append(entries, e)
	}
	return entries, true
}

func entryFromRecord(rec repository.GameRecord) Entry {
	return Entry{
		ID:         rec.ID,
		Team1Name:  rec.Team1Name,
		Team2Name:  rec.Team2Name,
		Team1Score: rec.Team1Score,
		Team2Score: rec.Team2Score,
		Mode:       rec.Mode,
		FinishedAt: rec.FinishedAt,
	}
}

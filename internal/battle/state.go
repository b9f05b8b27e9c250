package battle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionSnapshot is the JSON view of a session persisted to Redis after
// every transition. In-memory state stays authoritative; the snapshot exists
// for spectator catch-up and post-crash inspection only.
type SessionSnapshot struct {
	ID               uuid.UUID     `json:"id"`
	Mode             Mode          `json:"mode"`
	Team1            TeamState     `json:"team1"`
	Team2            TeamState     `json:"team2"`
	Phase            Phase         `json:"phase"`
	Open             *OpenQuestion `json:"open_question,omitempty"`
	NextQuestionTurn Team          `json:"next_question_turn"`
	Pending          *CellAction   `json:"pending_cell_action,omitempty"`
	ResolvedCount    int           `json:"resolved_count"`
	AnsweredIDs      []string      `json:"answered_question_ids"`
	Cells            []CellView    `json:"cells"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Snapshot captures the session's externally visible state. The copy is
// detached from the live session so it can be encoded outside the lock.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:               s.ID,
		Mode:             s.Mode,
		Team1:            s.Team1.clone(),
		Team2:            s.Team2.clone(),
		Phase:            s.Phase,
		NextQuestionTurn: s.NextQuestionTurn,
		ResolvedCount:    s.ResolvedCount,
		AnsweredIDs:      s.Board.AnsweredIDs(),
		Cells:            s.Board.Cells(),
		UpdatedAt:        time.Now(),
	}
	if s.Open != nil {
		open := *s.Open
		snap.Open = &open
	}
	if s.Pending != nil {
		pending := *s.Pending
		snap.Pending = &pending
	}
	return snap
}

// StateManager persists session snapshots in Redis.
type StateManager struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

var _ SnapshotStore = (*StateManager)(nil)

// NewStateManager creates a snapshot store backed by Redis.
func NewStateManager(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *StateManager {
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &StateManager{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "battle_state").Logger(),
	}
}

func snapshotKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("battle:session:%s", sessionID.String())
}

// Save stores a snapshot with the configured TTL.
func (m *StateManager) Save(ctx context.Context, snap SessionSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return m.redis.Set(ctx, snapshotKey(snap.ID), data, m.ttl).Err()
}

// Get retrieves a snapshot; nil when absent.
func (m *StateManager) Get(ctx context.Context, sessionID uuid.UUID) (*SessionSnapshot, error) {
	data, err := m.redis.Get(ctx, snapshotKey(sessionID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	var snap SessionSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete clears the snapshot on session teardown.
func (m *StateManager) Delete(ctx context.Context, sessionID uuid.UUID) error {
	return m.redis.Del(ctx, snapshotKey(sessionID)).Err()
}

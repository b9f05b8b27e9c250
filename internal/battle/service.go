package battle

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
	"github.com/nbkbattle/nbk-battle/pkg/http/ws"
)

// Sentinel errors mapped to HTTP responses by the handlers.
var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrDraftIncomplete = errors.New("draft incomplete")
	ErrSessionNotFound = errors.New("session not found")
)

// CatalogProvider loads category and question content for drafted categories.
type CatalogProvider interface {
	Categories(ctx context.Context, ids []string) ([]catalog.Category, error)
	Questions(ctx context.Context, categoryIDs []string) ([]catalog.Question, error)
}

// UsageStore tracks which questions each (category, tier) pair has served.
type UsageStore interface {
	Used(ctx context.Context, categoryID string, points int) ([]string, error)
	Append(ctx context.Context, categoryID string, points int, questionID string) error
}

// SnapshotStore persists session snapshots for reconnecting clients.
type SnapshotStore interface {
	Save(ctx context.Context, snap SessionSnapshot) error
	Delete(ctx context.Context, sessionID uuid.UUID) error
}

// ResultRecorder archives a finished game.
type ResultRecorder interface {
	Record(ctx context.Context, sessionID uuid.UUID, mode Mode, score FinalScore) error
}

// Broadcaster pushes messages to everyone watching a session.
type Broadcaster interface {
	BroadcastToSession(sessionID uuid.UUID, msg ws.Message)
}

// ServiceOptions tunes gameplay orchestration.
type ServiceOptions struct {
	Session SessionConfig
	// Tick is the countdown resolution. Defaults to one second.
	Tick time.Duration
}

// DefaultServiceOptions returns production gameplay options.
func DefaultServiceOptions() ServiceOptions {
	return ServiceOptions{
		Session: DefaultSessionConfig(),
		Tick:    time.Second,
	}
}

type sessionRuntime struct {
	engine *Session
	stop   chan struct{}
}

// stopTicker is called with the service mutex held.
func (rt *sessionRuntime) stopTicker() {
	if rt.stop != nil {
		close(rt.stop)
		rt.stop = nil
	}
}

// Service orchestrates drafts and live game sessions. Game state lives in
// memory; Redis snapshots and Postgres usage records are written best-effort
// so storage trouble never interrupts a running game.
type Service struct {
	mu       sync.Mutex
	drafts   map[uuid.UUID]*Draft
	sessions map[uuid.UUID]*sessionRuntime

	catalog   CatalogProvider
	usage     UsageStore
	snapshots SnapshotStore
	results   ResultRecorder
	hub       Broadcaster
	clock     Clock
	metrics   *Metrics
	opts      ServiceOptions
	logger    zerolog.Logger
}

// NewService creates the gameplay service.
func NewService(
	catalogProvider CatalogProvider,
	usage UsageStore,
	snapshots SnapshotStore,
	results ResultRecorder,
	hub Broadcaster,
	clock Clock,
	metrics *Metrics,
	opts ServiceOptions,
	logger zerolog.Logger,
) *Service {
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	if clock == nil {
		clock = RealClock()
	}
	return &Service{
		drafts:    make(map[uuid.UUID]*Draft),
		sessions:  make(map[uuid.UUID]*sessionRuntime),
		catalog:   catalogProvider,
		usage:     usage,
		snapshots: snapshots,
		results:   results,
		hub:       hub,
		clock:     clock,
		metrics:   metrics,
		opts:      opts,
		logger:    logger.With().Str("component", "battle_service").Logger(),
	}
}

// CreateDraft starts a category draft for two named teams.
func (s *Service) CreateDraft(_ context.Context, team1Name, team2Name string) *Draft {
	d := NewDraft(uuid.New(), team1Name, team2Name)

	s.mu.Lock()
	s.drafts[d.ID] = d
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.DraftsStarted.Inc()
	}
	s.logger.Info().Str("draft_id", d.ID.String()).Msg("draft created")
	return d.Clone()
}

// Draft returns the current draft state.
func (s *Service) Draft(_ context.Context, draftID uuid.UUID) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[draftID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return d.Clone(), nil
}

// Pick toggles a category for the team whose turn it is.
func (s *Service) Pick(_ context.Context, draftID uuid.UUID, categoryID string) (*Draft, PickOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts[draftID]
	if !ok {
		return nil, PickRejected, ErrDraftNotFound
	}
	outcome := d.Pick(categoryID)
	return d.Clone(), outcome, nil
}

// CreateSession builds a board from a completed draft and starts a session.
// The draft is consumed on success.
func (s *Service) CreateSession(ctx context.Context, draftID uuid.UUID, mode Mode) (SessionSnapshot, error) {
	s.mu.Lock()
	d, ok := s.drafts[draftID]
	s.mu.Unlock()
	if !ok {
		return SessionSnapshot{}, ErrDraftNotFound
	}
	if !d.Complete() {
		return SessionSnapshot{}, ErrDraftIncomplete
	}

	categoryIDs := make([]string, 0, 2*picksPerTeam)
	categoryIDs = append(categoryIDs, d.Team1Picks...)
	categoryIDs = append(categoryIDs, d.Team2Picks...)

	categories, err := s.catalog.Categories(ctx, categoryIDs)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("load categories: %w", err)
	}
	questions, err := s.catalog.Questions(ctx, categoryIDs)
	if err != nil {
		return SessionSnapshot{}, fmt.Errorf("load questions: %w", err)
	}

	usedByKey := make(map[UsageKey][]string)
	for _, categoryID := range categoryIDs {
		for _, tier := range mode.Tiers() {
			used, err := s.usage.Used(ctx, categoryID, tier)
			if err != nil {
				s.logger.Warn().Err(err).
					Str("category_id", categoryID).
					Int("points", tier).
					Msg("load usage failed, treating all questions as fresh")
				continue
			}
			usedByKey[UsageKey{CategoryID: categoryID, Tier: tier}] = used
		}
	}

	cfg := s.opts.Session
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		cfg.Rand = rng
	}

	board := BuildBoard(mode, categories, questions, usedByKey, rng)
	engine := NewSession(uuid.New(), mode, d.Team1Name, d.Team2Name, board, cfg)

	s.mu.Lock()
	s.sessions[engine.ID] = &sessionRuntime{engine: engine}
	delete(s.drafts, draftID)
	snap := engine.Snapshot()
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionsStarted.Inc()
		s.metrics.ActiveSessions.Inc()
	}
	s.saveSnapshot(ctx, snap)
	s.logger.Info().
		Str("session_id", engine.ID.String()).
		Str("mode", string(mode)).
		Msg("session created")
	return snap, nil
}

// Snapshot returns the full current state of a session.
func (s *Service) Snapshot(_ context.Context, sessionID uuid.UUID) (SessionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rt, ok := s.sessions[sessionID]
	if !ok {
		return SessionSnapshot{}, ErrSessionNotFound
	}
	return rt.engine.Snapshot(), nil
}

// OpenCell opens a board cell, or feeds the click to a pending block or swap.
func (s *Service) OpenCell(ctx context.Context, sessionID uuid.UUID, cell CellKey) (SessionSnapshot, error) {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return SessionSnapshot{}, ErrSessionNotFound
	}
	err := rt.engine.OpenCell(cell)
	if err == nil && rt.engine.Phase == PhaseQuestionOpen && rt.stop == nil {
		s.startTicker(sessionID, rt)
	}
	events := rt.engine.Events()
	snap := rt.engine.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return SessionSnapshot{}, err
	}
	s.publish(sessionID, events)
	s.saveSnapshot(ctx, snap)
	return snap, nil
}

// SetTimer pauses or resumes the countdown for the open question.
func (s *Service) SetTimer(ctx context.Context, sessionID uuid.UUID, running bool) (SessionSnapshot, error) {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return SessionSnapshot{}, ErrSessionNotFound
	}
	err := rt.engine.SetTimerRunning(running)
	events := rt.engine.Events()
	snap := rt.engine.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return SessionSnapshot{}, err
	}
	s.publish(sessionID, events)
	s.saveSnapshot(ctx, snap)
	return snap, nil
}

// Reveal shows the answer for the open question and stops the countdown.
func (s *Service) Reveal(ctx context.Context, sessionID uuid.UUID) (SessionSnapshot, error) {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return SessionSnapshot{}, ErrSessionNotFound
	}
	err := rt.engine.RevealAnswer()
	if err == nil {
		rt.stopTicker()
	}
	events := rt.engine.Events()
	snap := rt.engine.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return SessionSnapshot{}, err
	}
	s.publish(sessionID, events)
	s.saveSnapshot(ctx, snap)
	return snap, nil
}

// Resolve awards the open question and records its usage.
func (s *Service) Resolve(ctx context.Context, sessionID uuid.UUID, winner Team) (SessionSnapshot, error) {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return SessionSnapshot{}, ErrSessionNotFound
	}
	result, err := rt.engine.Resolve(winner)
	if err == nil {
		rt.stopTicker()
	}
	events := rt.engine.Events()
	snap := rt.engine.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return SessionSnapshot{}, err
	}
	if s.metrics != nil {
		s.metrics.QuestionsResolved.WithLabelValues(teamLabel(result.AwardedTeam)).Inc()
	}
	// The usage record keeps repeats away from future games. Losing one
	// write only risks an earlier repeat, so the game moves on regardless.
	if err := s.usage.Append(ctx, result.Question.CategoryID, result.Question.Points, result.Question.ID); err != nil {
		s.logger.Warn().Err(err).
			Str("question_id", result.Question.ID).
			Msg("record question usage failed")
	}
	s.publish(sessionID, events)
	s.saveSnapshot(ctx, snap)
	return snap, nil
}

// UsePowerUp consumes a held power-up for a team.
func (s *Service) UsePowerUp(ctx context.Context, sessionID uuid.UUID, team Team, kind PowerUpKind) (SessionSnapshot, error) {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return SessionSnapshot{}, ErrSessionNotFound
	}
	err := rt.engine.UsePowerUp(team, kind)
	events := rt.engine.Events()
	snap := rt.engine.Snapshot()
	s.mu.Unlock()

	if err != nil {
		return SessionSnapshot{}, err
	}
	if s.metrics != nil {
		s.metrics.PowerUpsUsed.WithLabelValues(kind.String()).Inc()
	}
	s.publish(sessionID, events)
	s.saveSnapshot(ctx, snap)
	return snap, nil
}

// Finish ends a session, archives the result and releases its resources.
func (s *Service) Finish(ctx context.Context, sessionID uuid.UUID) (FinalScore, error) {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return FinalScore{}, ErrSessionNotFound
	}
	rt.stopTicker()
	score := rt.engine.Finish()
	events := rt.engine.Events()
	mode := rt.engine.Mode
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	if err := s.results.Record(ctx, sessionID, mode, score); err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", sessionID.String()).
			Msg("archive game result failed")
	}
	s.publish(sessionID, events)
	s.deleteSnapshot(ctx, sessionID)
	s.logger.Info().
		Str("session_id", sessionID.String()).
		Int("team1_score", score.Team1Score).
		Int("team2_score", score.Team2Score).
		Msg("session finished")
	return score, nil
}

// Delete abandons a session without archiving a result.
func (s *Service) Delete(ctx context.Context, sessionID uuid.UUID) error {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if ok {
		rt.stopTicker()
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	if s.metrics != nil {
		s.metrics.ActiveSessions.Dec()
	}
	s.deleteSnapshot(ctx, sessionID)
	s.logger.Info().Str("session_id", sessionID.String()).Msg("session deleted")
	return nil
}

// Close stops every running countdown. Used during shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rt := range s.sessions {
		rt.stopTicker()
	}
}

// startTicker is called with the service mutex held.
func (s *Service) startTicker(sessionID uuid.UUID, rt *sessionRuntime) {
	stop := make(chan struct{})
	rt.stop = stop
	ticker := s.clock.NewTicker(s.opts.Tick)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				if !s.tick(sessionID) {
					return
				}
			}
		}
	}()
}

// tick advances the countdown by a second. It reports whether the ticker
// should keep running.
func (s *Service) tick(sessionID uuid.UUID) bool {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	rt.engine.Tick()
	events := rt.engine.Events()
	keep := rt.engine.Phase == PhaseQuestionOpen
	if !keep {
		rt.stop = nil
	}
	snap := rt.engine.Snapshot()
	s.mu.Unlock()

	s.publish(sessionID, events)
	s.saveSnapshot(context.Background(), snap)
	return keep
}

func (s *Service) publish(sessionID uuid.UUID, events []Event) {
	for _, ev := range events {
		if s.metrics != nil {
			if grant, ok := ev.(PowerUpGrantedEvent); ok {
				s.metrics.PowerUpsGranted.WithLabelValues(grant.PowerUp.String()).Inc()
			}
		}
		if s.hub == nil {
			continue
		}
		msg, err := ws.NewMessage(ev.EventType(), ev)
		if err != nil {
			s.logger.Warn().Err(err).Str("event", ev.EventType()).Msg("encode event failed")
			continue
		}
		s.hub.BroadcastToSession(sessionID, msg)
	}
}

func (s *Service) saveSnapshot(ctx context.Context, snap SessionSnapshot) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Save(ctx, snap); err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", snap.ID.String()).
			Msg("save session snapshot failed")
	}
}

func (s *Service) deleteSnapshot(ctx context.Context, sessionID uuid.UUID) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Delete(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).
			Str("session_id", sessionID.String()).
			Msg("delete session snapshot failed")
	}
}

func teamLabel(t Team) string {
	switch t {
	case Team1:
		return "team1"
	case Team2:
		return "team2"
	default:
		return "none"
	}
}

package battle

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Gameplay errors surfaced to HTTP handlers.
var (
	ErrQuestionAlreadyOpen = errors.New("a question is already open")
	ErrCellNotPlayable     = errors.New("cell is not playable")
	ErrNoQuestionOpen      = errors.New("no question open")
	ErrInvalidTeam         = errors.New("invalid team")
	ErrPowerUpNotAvailable = errors.New("power-up not available")
	ErrActionPending       = errors.New("another cell action is pending")
)

// SessionConfig tunes a single game session.
type SessionConfig struct {
	QuestionSeconds int
	Triggers        TriggerConfig
	Rand            *rand.Rand
}

// DefaultSessionConfig returns production defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		QuestionSeconds: 30,
		Triggers:        DefaultTriggerConfig(),
	}
}

// Session is the board-play state machine. It is pure: every transition
// happens on a discrete call (cell click, timer tick, power-up use) and
// appends observable events for the caller to drain. The orchestration
// service serializes access and owns all I/O.
type Session struct {
	ID    uuid.UUID
	Mode  Mode
	Team1 TeamState
	Team2 TeamState
	Board *Board

	Phase            Phase
	Open             *OpenQuestion
	NextQuestionTurn Team
	Pending          *CellAction

	ResolvedCount  int
	LastGrantCount int

	armedDouble map[Team]bool
	armedSteal  map[Team]bool

	questionSeconds int
	triggers        *TriggerEngine
	rng             *rand.Rand
	events          []Event
}

// NewSession creates a session from a completed draft's team names and a
// built board. The first question resolves on team 1's turn.
func NewSession(id uuid.UUID, mode Mode, team1Name, team2Name string, board *Board, cfg SessionConfig) *Session {
	if cfg.QuestionSeconds <= 0 {
		cfg.QuestionSeconds = DefaultSessionConfig().QuestionSeconds
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		ID:               id,
		Mode:             mode,
		Team1:            TeamState{Name: team1Name},
		Team2:            TeamState{Name: team2Name},
		Board:            board,
		Phase:            PhaseIdle,
		NextQuestionTurn: Team1,
		armedDouble:      make(map[Team]bool),
		armedSteal:       make(map[Team]bool),
		questionSeconds:  cfg.QuestionSeconds,
		triggers:         NewTriggerEngine(cfg.Triggers),
		rng:              rng,
	}
}

// Events drains the pending event buffer.
func (s *Session) Events() []Event {
	ev := s.events
	s.events = nil
	return ev
}

func (s *Session) emit(e Event) {
	s.events = append(s.events, e)
}

func (s *Session) team(t Team) *TeamState {
	if t == Team2 {
		return &s.Team2
	}
	return &s.Team1
}

// OpenCell handles a board cell click. When a block or swap power-up is
// armed, the click is consumed by that effect instead of opening the
// question dialog.
func (s *Session) OpenCell(cell CellKey) error {
	if s.Pending != nil {
		return s.applyCellAction(cell)
	}

	if s.Phase != PhaseIdle {
		return ErrQuestionAlreadyOpen
	}
	q, ok := s.Board.QuestionAt(cell)
	if !ok {
		return fmt.Errorf("%w: cell has no question", ErrCellNotPlayable)
	}
	if s.Board.IsAnswered(q.ID) {
		return fmt.Errorf("%w: cell already answered", ErrCellNotPlayable)
	}

	s.Open = &OpenQuestion{
		Cell:         cell,
		Question:     q,
		Turn:         s.NextQuestionTurn,
		Remaining:    s.questionSeconds,
		TimerRunning: true,
	}
	s.Phase = PhaseQuestionOpen
	s.emit(QuestionOpenedEvent{
		Cell:       cell,
		QuestionID: q.ID,
		Turn:       s.Open.Turn,
		Seconds:    s.questionSeconds,
	})
	return nil
}

// Tick advances the countdown by one second. When the first team's clock
// hits zero the question passes to the other team with a fresh budget; when
// the second team also runs out the answer is revealed directly.
func (s *Session) Tick() {
	if s.Phase != PhaseQuestionOpen || s.Open == nil || !s.Open.TimerRunning {
		return
	}

	s.Open.Remaining--
	if s.Open.Remaining > 0 {
		s.emit(TimerTickEvent{Remaining: s.Open.Remaining, Turn: s.Open.Turn})
		return
	}

	if !s.Open.SecondChance {
		s.Open.Turn = s.Open.Turn.Other()
		s.Open.SecondChance = true
		s.Open.Remaining = s.questionSeconds
		s.emit(TurnSwitchedEvent{Turn: s.Open.Turn, Seconds: s.questionSeconds})
		return
	}

	// Both teams exhausted their turn: defined terminal path, not an error.
	s.reveal(true)
}

// SetTimerRunning pauses or resumes the countdown.
func (s *Session) SetTimerRunning(running bool) error {
	if s.Phase != PhaseQuestionOpen || s.Open == nil {
		return ErrNoQuestionOpen
	}
	s.Open.TimerRunning = running
	return nil
}

// RevealAnswer stops the timer and shows the answer.
func (s *Session) RevealAnswer() error {
	if s.Phase != PhaseQuestionOpen || s.Open == nil {
		return ErrNoQuestionOpen
	}
	s.reveal(false)
	return nil
}

func (s *Session) reveal(timedOut bool) {
	s.Open.TimerRunning = false
	s.Phase = PhaseAnswerRevealed
	s.emit(AnswerRevealedEvent{QuestionID: s.Open.Question.ID, TimedOut: timedOut})
}

// Resolve closes the open question, awarding it to team 1, team 2, or no one
// (TeamNone). It updates scores and streak counters, consumes the question,
// flips the next-question turn, and evaluates power-up milestones.
func (s *Session) Resolve(winner Team) (*ResolveResult, error) {
	if s.Open == nil {
		return nil, ErrNoQuestionOpen
	}
	if winner != TeamNone && winner != Team1 && winner != Team2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTeam, winner)
	}

	q := s.Open.Question
	result := &ResolveResult{Question: q, AwardedTeam: winner}

	if winner != TeamNone {
		points := q.Points
		if s.armedDouble[winner] {
			points *= 2
			result.Doubled = true
		}
		result.PointsAwarded = points

		awarded := s.team(winner)
		awarded.Score += points
		awarded.ConsecutiveRight++
		awarded.ConsecutiveWrong = 0

		loser := s.team(winner.Other())
		loser.ConsecutiveWrong++
		loser.ConsecutiveRight = 0
	} else {
		for _, t := range []Team{Team1, Team2} {
			st := s.team(t)
			st.ConsecutiveWrong++
			st.ConsecutiveRight = 0
		}
	}

	s.Board.MarkAnswered(q.ID)
	s.ResolvedCount++

	// Armed one-shot effects expire with this resolution.
	s.armedDouble = make(map[Team]bool)
	s.armedSteal = make(map[Team]bool)

	s.Open = nil
	s.Phase = PhaseIdle
	s.NextQuestionTurn = s.NextQuestionTurn.Other()

	s.emit(QuestionResolvedEvent{
		QuestionID:    q.ID,
		CategoryID:    q.CategoryID,
		Tier:          q.Points,
		AwardedTeam:   winner,
		PointsAwarded: result.PointsAwarded,
		Doubled:       result.Doubled,
		Team1Score:    s.Team1.Score,
		Team2Score:    s.Team2.Score,
		NextTurn:      s.NextQuestionTurn,
		ResolvedCount: s.ResolvedCount,
	})

	s.evaluateTriggers()
	return result, nil
}

func (s *Session) evaluateTriggers() {
	grant, marker := s.triggers.Evaluate(s.ResolvedCount, s.LastGrantCount, &s.Team1, &s.Team2)
	s.LastGrantCount = marker
	if grant == nil {
		return
	}
	st := s.team(grant.Team)
	st.PowerUps = append(st.PowerUps, PowerUp{Kind: grant.Kind})
	s.emit(PowerUpGrantedEvent{
		Team:            grant.Team,
		PowerUp:         grant.Kind,
		AtResolvedCount: grant.AtCount,
	})
}

// UsePowerUp consumes a held power-up. Double-points and steal-turn arm for
// the next resolution only; block-question and question-swap arm a
// pick-a-cell mode that consumes the next cell click.
func (s *Session) UsePowerUp(team Team, kind PowerUpKind) error {
	if team != Team1 && team != Team2 {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, team)
	}
	st := s.team(team)

	var slot *PowerUp
	for i := range st.PowerUps {
		if st.PowerUps[i].Kind == kind && !st.PowerUps[i].Used {
			slot = &st.PowerUps[i]
			break
		}
	}
	if slot == nil {
		return fmt.Errorf("%w: %s", ErrPowerUpNotAvailable, kind)
	}

	switch kind {
	case PowerUpDoublePoints:
		slot.Used = true
		s.armedDouble[team] = true
	case PowerUpStealTurn:
		slot.Used = true
		s.armedSteal[team] = true
	case PowerUpBlockQuestion, PowerUpQuestionSwap:
		if s.Pending != nil {
			return ErrActionPending
		}
		if s.Phase != PhaseIdle {
			return fmt.Errorf("%w: close the open question first", ErrQuestionAlreadyOpen)
		}
		slot.Used = true
		s.Pending = &CellAction{Team: team, Kind: kind}
	default:
		return fmt.Errorf("%w: %d", ErrPowerUpNotAvailable, kind)
	}

	s.emit(PowerUpUsedEvent{Team: team, PowerUp: kind})
	return nil
}

// applyCellAction consumes the pending block or swap on the clicked cell.
func (s *Session) applyCellAction(cell CellKey) error {
	action := s.Pending

	q, ok := s.Board.QuestionAt(cell)
	if !ok {
		return fmt.Errorf("%w: cell has no question", ErrCellNotPlayable)
	}
	if s.Board.IsAnswered(q.ID) {
		return fmt.Errorf("%w: cell already answered", ErrCellNotPlayable)
	}

	switch action.Kind {
	case PowerUpBlockQuestion:
		// Eliminated with zero score impact; the dialog never opens.
		s.Board.MarkAnswered(q.ID)
		s.Pending = nil
		s.emit(CellBlockedEvent{Cell: cell, QuestionID: q.ID, Team: action.Team})
	case PowerUpQuestionSwap:
		old, replacement, err := s.Board.Swap(cell, s.rng)
		if err != nil {
			return fmt.Errorf("swap question: %w", err)
		}
		s.Pending = nil
		s.emit(QuestionSwappedEvent{
			Cell:          cell,
			OldQuestionID: old.ID,
			NewQuestionID: replacement.ID,
			Team:          action.Team,
		})
	default:
		s.Pending = nil
		return fmt.Errorf("unexpected cell action %s", action.Kind)
	}
	return nil
}

// StealArmed reports whether the team used steal-turn for the upcoming
// resolution. The privilege is narrative only; no mechanical effect applies.
func (s *Session) StealArmed(team Team) bool {
	return s.armedSteal[team]
}

// DoubleArmed reports whether the team scores double on the next resolution.
func (s *Session) DoubleArmed(team Team) bool {
	return s.armedDouble[team]
}

// Finish reads out the final scores. The caller discards the session.
func (s *Session) Finish() FinalScore {
	scores := FinalScore{
		Team1Name:  s.Team1.Name,
		Team2Name:  s.Team2.Name,
		Team1Score: s.Team1.Score,
		Team2Score: s.Team2.Score,
	}
	s.emit(SessionFinishedEvent{Scores: scores})
	return scores
}

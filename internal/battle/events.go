package battle

import "github.com/nbkbattle/nbk-battle/internal/catalog"

// Event is something observable that happened inside a session. The engine
// appends events as it mutates state; the service drains and broadcasts them.
type Event interface {
	EventType() string
}

type QuestionOpenedEvent struct {
	Cell       CellKey `json:"cell"`
	QuestionID string  `json:"question_id"`
	Turn       Team    `json:"turn"`
	Seconds    int     `json:"seconds"`
}

func (QuestionOpenedEvent) EventType() string { return "question_opened" }

type TimerTickEvent struct {
	Remaining int  `json:"remaining_seconds"`
	Turn      Team `json:"turn"`
}

func (TimerTickEvent) EventType() string { return "timer_tick" }

// TurnSwitchedEvent fires when the first team's clock runs out and the
// question passes to the other side.
type TurnSwitchedEvent struct {
	Turn    Team `json:"turn"`
	Seconds int  `json:"seconds"`
}

func (TurnSwitchedEvent) EventType() string { return "turn_switched" }

type AnswerRevealedEvent struct {
	QuestionID string `json:"question_id"`
	// TimedOut is true on the both-teams-failed path.
	TimedOut bool `json:"timed_out"`
}

func (AnswerRevealedEvent) EventType() string { return "answer_revealed" }

type QuestionResolvedEvent struct {
	QuestionID    string `json:"question_id"`
	CategoryID    string `json:"category_id"`
	Tier          int    `json:"tier"`
	AwardedTeam   Team   `json:"awarded_team"`
	PointsAwarded int    `json:"points_awarded"`
	Doubled       bool   `json:"doubled"`
	Team1Score    int    `json:"team1_score"`
	Team2Score    int    `json:"team2_score"`
	NextTurn      Team   `json:"next_turn"`
	ResolvedCount int    `json:"resolved_count"`
}

func (QuestionResolvedEvent) EventType() string { return "question_resolved" }

// PowerUpGrantedEvent is the observable grant effect: which team, which
// power-up, at which resolved-question count.
type PowerUpGrantedEvent struct {
	Team            Team        `json:"team"`
	PowerUp         PowerUpKind `json:"power_up"`
	AtResolvedCount int         `json:"at_resolved_count"`
}

func (PowerUpGrantedEvent) EventType() string { return "power_up_granted" }

type PowerUpUsedEvent struct {
	Team    Team        `json:"team"`
	PowerUp PowerUpKind `json:"power_up"`
}

func (PowerUpUsedEvent) EventType() string { return "power_up_used" }

type CellBlockedEvent struct {
	Cell       CellKey `json:"cell"`
	QuestionID string  `json:"question_id"`
	Team       Team    `json:"team"`
}

func (CellBlockedEvent) EventType() string { return "cell_blocked" }

type QuestionSwappedEvent struct {
	Cell          CellKey `json:"cell"`
	OldQuestionID string  `json:"old_question_id"`
	NewQuestionID string  `json:"new_question_id"`
	Team          Team    `json:"team"`
}

func (QuestionSwappedEvent) EventType() string { return "question_swapped" }

type SessionFinishedEvent struct {
	Scores FinalScore `json:"scores"`
}

func (SessionFinishedEvent) EventType() string { return "session_finished" }

// ResolveResult reports what a resolution did, for persistence and metrics.
type ResolveResult struct {
	Question      catalog.Question
	AwardedTeam   Team
	PointsAwarded int
	Doubled       bool
}

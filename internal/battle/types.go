package battle

import (
	"encoding/json"
	"fmt"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

// Mode selects the tier set the board is built from.
type Mode string

const (
	// ModePoints is the classic board: 200/400/600 point tiers.
	ModePoints Mode = "points"
	// ModeDiamond uses the diamond value ladder.
	ModeDiamond Mode = "diamond"
)

// Tiers returns the fixed ordered point buckets for the mode.
func (m Mode) Tiers() []int {
	switch m {
	case ModeDiamond:
		return []int{10, 25, 50, 75, 100}
	default:
		return []int{200, 400, 600}
	}
}

// Valid reports whether the mode is a known game mode.
func (m Mode) Valid() bool {
	return m == ModePoints || m == ModeDiamond
}

// Team identifies one of the two sides. TeamNone means "no one answered".
type Team int

const (
	TeamNone Team = 0
	Team1    Team = 1
	Team2    Team = 2
)

// Other returns the opposing team.
func (t Team) Other() Team {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	default:
		return TeamNone
	}
}

// PowerUpKind enumerates the fixed power-up catalog.
type PowerUpKind int

const (
	PowerUpDoublePoints PowerUpKind = iota
	PowerUpQuestionSwap
	PowerUpStealTurn
	PowerUpBlockQuestion
)

var powerUpNames = map[PowerUpKind]string{
	PowerUpDoublePoints:  "double_points",
	PowerUpQuestionSwap:  "question_swap",
	PowerUpStealTurn:     "steal_turn",
	PowerUpBlockQuestion: "block_question",
}

func (k PowerUpKind) String() string {
	if name, ok := powerUpNames[k]; ok {
		return name
	}
	return fmt.Sprintf("power_up(%d)", int(k))
}

// ParsePowerUpKind maps a wire name back to its kind.
func ParsePowerUpKind(name string) (PowerUpKind, error) {
	for k, n := range powerUpNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown power-up %q", name)
}

func (k PowerUpKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *PowerUpKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	kind, err := ParsePowerUpKind(name)
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// PowerUp is one inventory slot. Used flips when the power-up is invoked and
// never resets.
type PowerUp struct {
	Kind PowerUpKind `json:"kind"`
	Used bool        `json:"used"`
}

// TeamState is everything the session tracks per team.
type TeamState struct {
	Name             string    `json:"name"`
	Score            int       `json:"score"`
	PowerUps         []PowerUp `json:"power_ups"`
	ConsecutiveRight int       `json:"consecutive_right"`
	ConsecutiveWrong int       `json:"consecutive_wrong"`
}

// clone returns a copy detached from the live inventory slice.
func (t TeamState) clone() TeamState {
	t.PowerUps = append([]PowerUp(nil), t.PowerUps...)
	return t
}

// holds reports whether the team's inventory contains the kind.
func (t *TeamState) holds(kind PowerUpKind) bool {
	for _, p := range t.PowerUps {
		if p.Kind == kind {
			return true
		}
	}
	return false
}

// CellKey addresses one clickable board position.
type CellKey struct {
	CategoryID string `json:"category_id"`
	Tier       int    `json:"tier"`
	Slot       int    `json:"slot"` // 0 = left, 1 = right
}

// Phase is the question-interaction state of the session.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseQuestionOpen   Phase = "question_open"
	PhaseAnswerRevealed Phase = "answer_revealed"
)

// OpenQuestion is the currently open dialog.
type OpenQuestion struct {
	Cell         CellKey          `json:"cell"`
	Question     catalog.Question `json:"question"`
	Turn         Team             `json:"turn"`
	SecondChance bool             `json:"second_chance"` // true once the turn passed on a timeout
	Remaining    int              `json:"remaining_seconds"`
	TimerRunning bool             `json:"timer_running"`
}

// CellAction is an armed pick-a-cell power-up waiting for the next cell click.
type CellAction struct {
	Team Team        `json:"team"`
	Kind PowerUpKind `json:"kind"`
}

// FinalScore is the session read-out handed to the results collaborator.
type FinalScore struct {
	Team1Name  string `json:"team1_name"`
	Team2Name  string `json:"team2_name"`
	Team1Score int    `json:"team1_score"`
	Team2Score int    `json:"team2_score"`
}

package battle

// TriggerConfig holds the tunables of the power-up grant policy (defaults
// match the shipped game).
type TriggerConfig struct {
	DoubleGapPoints int // score gap at which double-points favors the losing team
	BlockGapPoints  int // score gap at which block-question favors the losing team
	MaxHeld         int // inventory cap per team
}

// DefaultTriggerConfig returns production defaults.
func DefaultTriggerConfig() TriggerConfig {
	return TriggerConfig{
		DoubleGapPoints: 600,
		BlockGapPoints:  800,
		MaxHeld:         3,
	}
}

type milestone struct {
	count     int
	kind      PowerUpKind
	gapPoints int // 0 = never favor the losing team
}

// TriggerEngine grants power-ups at fixed resolved-question milestones.
type TriggerEngine struct {
	cfg        TriggerConfig
	milestones []milestone
}

func NewTriggerEngine(cfg TriggerConfig) *TriggerEngine {
	if cfg.MaxHeld == 0 {
		cfg = DefaultTriggerConfig()
	}
	return &TriggerEngine{
		cfg: cfg,
		milestones: []milestone{
			{count: 10, kind: PowerUpQuestionSwap},
			{count: 20, kind: PowerUpDoublePoints, gapPoints: cfg.DoubleGapPoints},
			{count: 25, kind: PowerUpStealTurn},
			{count: 30, kind: PowerUpBlockQuestion, gapPoints: cfg.BlockGapPoints},
		},
	}
}

// Grant is a fired milestone.
type Grant struct {
	Team    Team
	Kind    PowerUpKind
	AtCount int
}

// Evaluate runs after every resolution. It returns the grant for the reached
// milestone, if any, plus the updated monotonic last-evaluated marker. A
// milestone fires at most once; a grant is skipped (nil) when the target team
// is at the inventory cap or already holds that power-up.
func (e *TriggerEngine) Evaluate(resolvedCount, lastGrantCount int, team1, team2 *TeamState) (*Grant, int) {
	for _, m := range e.milestones {
		if resolvedCount != m.count || lastGrantCount >= m.count {
			continue
		}

		target := e.recipient(m, team1, team2)
		state := team1
		if target == Team2 {
			state = team2
		}

		if len(state.PowerUps) >= e.cfg.MaxHeld || state.holds(m.kind) {
			return nil, m.count
		}
		return &Grant{Team: target, Kind: m.kind, AtCount: m.count}, m.count
	}
	return nil, lastGrantCount
}

// recipient applies the score-gap heuristic: a lopsided game routes the
// power-up to the losing team, otherwise to the team with fewer power-ups
// (tie goes to team 1).
func (e *TriggerEngine) recipient(m milestone, team1, team2 *TeamState) Team {
	if m.gapPoints > 0 {
		gap := team1.Score - team2.Score
		if gap >= m.gapPoints {
			return Team2
		}
		if -gap >= m.gapPoints {
			return Team1
		}
	}
	if len(team2.PowerUps) < len(team1.PowerUps) {
		return Team2
	}
	return Team1
}

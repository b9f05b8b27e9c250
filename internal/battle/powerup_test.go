package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTriggerMilestoneTable(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())

	cases := []struct {
		count int
		kind  PowerUpKind
	}{
		{10, PowerUpQuestionSwap},
		{20, PowerUpDoublePoints},
		{25, PowerUpStealTurn},
		{30, PowerUpBlockQuestion},
	}

	team1 := &TeamState{Name: "Falcons"}
	team2 := &TeamState{Name: "Eagles"}
	last := 0
	for _, tc := range cases {
		grant, marker := engine.Evaluate(tc.count, last, team1, team2)
		if assert.NotNil(t, grant, "milestone %d must fire", tc.count) {
			assert.Equal(t, tc.kind, grant.Kind)
			assert.Equal(t, tc.count, grant.AtCount)
			holder := team1
			if grant.Team == Team2 {
				holder = team2
			}
			holder.PowerUps = append(holder.PowerUps, PowerUp{Kind: grant.Kind})
		}
		assert.Equal(t, tc.count, marker)
		last = marker
	}
}

func TestTriggerFiresOncePerMilestone(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	team1 := &TeamState{}
	team2 := &TeamState{}

	grant, marker := engine.Evaluate(10, 0, team1, team2)
	assert.NotNil(t, grant)
	assert.Equal(t, 10, marker)

	grant, marker = engine.Evaluate(10, 10, team1, team2)
	assert.Nil(t, grant, "a fired milestone never fires again")
	assert.Equal(t, 10, marker)
}

func TestTriggerSkipsNonMilestoneCounts(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	team1 := &TeamState{}
	team2 := &TeamState{}

	for _, count := range []int{1, 5, 9, 11, 19, 24, 31} {
		grant, marker := engine.Evaluate(count, 0, team1, team2)
		assert.Nil(t, grant, "count %d is not a milestone", count)
		assert.Equal(t, 0, marker, "marker only advances on milestones")
	}
}

func TestTriggerRoutesToLosingTeamOnGap(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	team1 := &TeamState{Score: 1200}
	team2 := &TeamState{Score: 400}

	grant, _ := engine.Evaluate(20, 10, team1, team2)
	if assert.NotNil(t, grant) {
		assert.Equal(t, Team2, grant.Team, "gap of 800 routes double-points to the trailing team")
	}

	// Mirror image.
	team1.Score, team2.Score = 400, 1200
	grant, _ = engine.Evaluate(30, 25, team1, team2)
	if assert.NotNil(t, grant) {
		assert.Equal(t, Team1, grant.Team)
	}
}

func TestTriggerBalancedGameRoutesToFewerPowerUps(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	team1 := &TeamState{Score: 600, PowerUps: []PowerUp{{Kind: PowerUpQuestionSwap}}}
	team2 := &TeamState{Score: 500}

	grant, _ := engine.Evaluate(20, 10, team1, team2)
	if assert.NotNil(t, grant) {
		assert.Equal(t, Team2, grant.Team, "close game routes to the team holding fewer power-ups")
	}
}

func TestTriggerTieRoutesToTeam1(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	team1 := &TeamState{}
	team2 := &TeamState{}

	grant, _ := engine.Evaluate(10, 0, team1, team2)
	if assert.NotNil(t, grant) {
		assert.Equal(t, Team1, grant.Team)
	}
}

func TestTriggerSkipsWhenTargetAtCap(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	// Both teams at the cap so whoever is targeted skips.
	full := []PowerUp{
		{Kind: PowerUpDoublePoints},
		{Kind: PowerUpStealTurn},
		{Kind: PowerUpBlockQuestion},
	}
	team1 := &TeamState{PowerUps: full}
	team2 := &TeamState{PowerUps: full}

	grant, marker := engine.Evaluate(10, 0, team1, team2)
	assert.Nil(t, grant)
	assert.Equal(t, 10, marker, "a skipped milestone still advances the marker")
}

func TestTriggerSkipsDuplicateKind(t *testing.T) {
	engine := NewTriggerEngine(DefaultTriggerConfig())
	team1 := &TeamState{PowerUps: []PowerUp{{Kind: PowerUpQuestionSwap, Used: true}}}
	team2 := &TeamState{PowerUps: []PowerUp{{Kind: PowerUpQuestionSwap}}}

	// Tie on held count routes to team 1, which already holds a swap (used
	// slots still count).
	grant, marker := engine.Evaluate(10, 0, team1, team2)
	assert.Nil(t, grant)
	assert.Equal(t, 10, marker)
}

func TestTriggerCustomGapThresholds(t *testing.T) {
	engine := NewTriggerEngine(TriggerConfig{DoubleGapPoints: 100, BlockGapPoints: 200, MaxHeld: 3})
	team1 := &TeamState{Score: 150}
	team2 := &TeamState{Score: 0}

	grant, _ := engine.Evaluate(20, 10, team1, team2)
	if assert.NotNil(t, grant) {
		assert.Equal(t, Team2, grant.Team)
	}
}

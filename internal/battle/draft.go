package battle

import "github.com/google/uuid"

const picksPerTeam = 3

// PickOutcome describes what a draft pick did.
type PickOutcome string

const (
	PickAdded    PickOutcome = "added"
	PickRemoved  PickOutcome = "removed"  // current team deselected its own pick
	PickRejected PickOutcome = "rejected" // held by the other team, quota full, or draft complete
)

// Draft runs the alternating category selection phase. Team 1 picks first;
// the turn flips after every add (never after a deselect) until both teams
// hold exactly three categories.
type Draft struct {
	ID         uuid.UUID `json:"id"`
	Team1Name  string    `json:"team1_name"`
	Team2Name  string    `json:"team2_name"`
	Team1Picks []string  `json:"team1_picks"`
	Team2Picks []string  `json:"team2_picks"`
	Current    Team      `json:"current_team"`
}

func NewDraft(id uuid.UUID, team1Name, team2Name string) *Draft {
	return &Draft{
		ID:        id,
		Team1Name: team1Name,
		Team2Name: team2Name,
		Current:   Team1,
	}
}

// Pick toggles a category for the current team. Picks held by the other team
// are rejected without a state change; a re-pick of the current team's own
// category deselects it and keeps the turn, since a correction should not
// consume a pick.
func (d *Draft) Pick(categoryID string) PickOutcome {
	if d.Complete() {
		return PickRejected
	}

	current, other := d.picks(d.Current)
	if contains(other, categoryID) {
		return PickRejected
	}

	if contains(current, categoryID) {
		d.setPicks(d.Current, remove(current, categoryID))
		return PickRemoved
	}

	if len(current) >= picksPerTeam {
		return PickRejected
	}

	d.setPicks(d.Current, append(current, categoryID))
	if len(d.Team1Picks)+len(d.Team2Picks) < 2*picksPerTeam {
		d.Current = d.Current.Other()
	}
	return PickAdded
}

// Clone returns a copy with its own pick slices, safe to read or encode
// after the caller's lock is released.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Team1Picks = append([]string(nil), d.Team1Picks...)
	c.Team2Picks = append([]string(nil), d.Team2Picks...)
	return &c
}

// Complete reports whether both teams hold exactly three categories.
func (d *Draft) Complete() bool {
	return len(d.Team1Picks) == picksPerTeam && len(d.Team2Picks) == picksPerTeam
}

// TeamComplete reports whether one team's set is full.
func (d *Draft) TeamComplete(t Team) bool {
	picks, _ := d.picks(t)
	return len(picks) == picksPerTeam
}

func (d *Draft) picks(t Team) (current, other []string) {
	if t == Team1 {
		return d.Team1Picks, d.Team2Picks
	}
	return d.Team2Picks, d.Team1Picks
}

func (d *Draft) setPicks(t Team, picks []string) {
	if t == Team1 {
		d.Team1Picks = picks
	} else {
		d.Team2Picks = picks
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

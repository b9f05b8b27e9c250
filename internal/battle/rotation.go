package battle

import (
	"fmt"
	"math/rand"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

type tierKey struct {
	CategoryID string
	Tier       int
}

// UsageKey addresses one usage-progress record.
type UsageKey struct {
	CategoryID string
	Tier       int
}

// Board holds the frozen rotation map plus per-cell answered state for one
// session. The pairs are computed once at session start and only change via
// the question-swap power-up.
type Board struct {
	Mode       Mode
	Categories []catalog.Category

	pairs      map[tierKey][]catalog.Question
	candidates map[tierKey][]catalog.Question
	answered   map[string]bool // question ids answered or blocked
}

// BuildBoard computes the rotation map: for each drafted category and each
// tier of the mode, the selector freezes an ordered pair out of the authored
// candidates and the usage record for that key. usedByKey entries may be
// missing; a key with zero authored questions yields permanently disabled
// cells.
func BuildBoard(mode Mode, categories []catalog.Category, questions []catalog.Question, usedByKey map[UsageKey][]string, rng *rand.Rand) *Board {
	b := &Board{
		Mode:       mode,
		Categories: categories,
		pairs:      make(map[tierKey][]catalog.Question),
		candidates: make(map[tierKey][]catalog.Question),
		answered:   make(map[string]bool),
	}

	for _, q := range questions {
		k := tierKey{CategoryID: q.CategoryID, Tier: q.Points}
		b.candidates[k] = append(b.candidates[k], q)
	}

	for _, cat := range categories {
		for _, tier := range mode.Tiers() {
			k := tierKey{CategoryID: cat.ID, Tier: tier}
			used := usedByKey[UsageKey{CategoryID: cat.ID, Tier: tier}]
			b.pairs[k] = SelectPair(cat.ID, tier, b.candidates[k], used, rng)
		}
	}
	return b
}

// QuestionAt returns the question backing a cell, or false if the cell has
// no question (insufficient authored data).
func (b *Board) QuestionAt(cell CellKey) (catalog.Question, bool) {
	pair := b.pairs[tierKey{CategoryID: cell.CategoryID, Tier: cell.Tier}]
	if cell.Slot < 0 || cell.Slot >= len(pair) {
		return catalog.Question{}, false
	}
	return pair[cell.Slot], true
}

// CellPlayable reports whether a cell can still be opened.
func (b *Board) CellPlayable(cell CellKey) bool {
	q, ok := b.QuestionAt(cell)
	return ok && !b.answered[q.ID]
}

// MarkAnswered adds a question id to the answered set, permanently disabling
// its cell.
func (b *Board) MarkAnswered(questionID string) {
	b.answered[questionID] = true
}

// IsAnswered reports whether the question id has been consumed.
func (b *Board) IsAnswered(questionID string) bool {
	return b.answered[questionID]
}

// AnsweredIDs returns the consumed question ids.
func (b *Board) AnsweredIDs() []string {
	ids := make([]string, 0, len(b.answered))
	for id := range b.answered {
		ids = append(ids, id)
	}
	return ids
}

// RemainingCells counts cells that are still playable.
func (b *Board) RemainingCells() int {
	n := 0
	for _, cat := range b.Categories {
		for _, tier := range b.Mode.Tiers() {
			for slot := 0; slot < 2; slot++ {
				if b.CellPlayable(CellKey{CategoryID: cat.ID, Tier: tier, Slot: slot}) {
					n++
				}
			}
		}
	}
	return n
}

// Swap replaces the question behind a cell with a different unused question
// of the same tier. Candidates already on the board or already answered are
// excluded.
func (b *Board) Swap(cell CellKey, rng *rand.Rand) (old, replacement catalog.Question, err error) {
	k := tierKey{CategoryID: cell.CategoryID, Tier: cell.Tier}
	pair := b.pairs[k]
	if cell.Slot < 0 || cell.Slot >= len(pair) {
		return catalog.Question{}, catalog.Question{}, fmt.Errorf("cell has no question")
	}
	old = pair[cell.Slot]
	if b.answered[old.ID] {
		return catalog.Question{}, catalog.Question{}, fmt.Errorf("cell already answered")
	}

	onBoard := make(map[string]bool, len(pair))
	for _, q := range pair {
		onBoard[q.ID] = true
	}

	var options []catalog.Question
	for _, q := range b.candidates[k] {
		if !onBoard[q.ID] && !b.answered[q.ID] {
			options = append(options, q)
		}
	}
	if len(options) == 0 {
		return catalog.Question{}, catalog.Question{}, fmt.Errorf("no replacement question available")
	}

	replacement = options[rng.Intn(len(options))]
	pair[cell.Slot] = replacement
	return old, replacement, nil
}

// CellView is the board payload for one clickable position.
type CellView struct {
	Cell       CellKey `json:"cell"`
	QuestionID string  `json:"question_id,omitempty"`
	Answered   bool    `json:"answered"`
	Disabled   bool    `json:"disabled"`
}

// Cells renders the full board grid for clients: every category x tier x
// slot, with cells lacking a question marked disabled.
func (b *Board) Cells() []CellView {
	var cells []CellView
	for _, cat := range b.Categories {
		for _, tier := range b.Mode.Tiers() {
			for slot := 0; slot < 2; slot++ {
				cell := CellKey{CategoryID: cat.ID, Tier: tier, Slot: slot}
				view := CellView{Cell: cell}
				if q, ok := b.QuestionAt(cell); ok {
					view.QuestionID = q.ID
					view.Answered = b.answered[q.ID]
					view.Disabled = view.Answered
				} else {
					view.Disabled = true
				}
				cells = append(cells, view)
			}
		}
	}
	return cells
}

package battle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

func testCategories(ids ...string) []catalog.Category {
	cats := make([]catalog.Category, 0, len(ids))
	for _, id := range ids {
		cats = append(cats, catalog.Category{ID: id, NameEn: id})
	}
	return cats
}

// fullPool authors enough questions for two full slots per (category, tier),
// plus extras for swap tests.
func fullPool(categoryIDs []string, tiers []int, perKey int) []catalog.Question {
	var qs []catalog.Question
	for _, cat := range categoryIDs {
		for _, tier := range tiers {
			for i := 0; i < perKey; i++ {
				qs = append(qs, catalog.Question{
					ID:         fmt.Sprintf("%s-%d-%d", cat, tier, i),
					CategoryID: cat,
					Points:     tier,
				})
			}
		}
	}
	return qs
}

func TestBuildBoardFreezesFullGrid(t *testing.T) {
	cats := testCategories("c1", "c2")
	pool := fullPool([]string{"c1", "c2"}, ModePoints.Tiers(), 3)

	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	cells := board.Cells()
	assert.Len(t, cells, 2*3*2, "2 categories x 3 tiers x 2 slots")
	for _, cell := range cells {
		assert.NotEmpty(t, cell.QuestionID)
		assert.False(t, cell.Disabled)
	}
	assert.Equal(t, 12, board.RemainingCells())
}

func TestBuildBoardStableAcrossReads(t *testing.T) {
	cats := testCategories("c1")
	pool := fullPool([]string{"c1"}, ModePoints.Tiers(), 4)

	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	first := board.Cells()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, board.Cells(), "the frozen pair must not change between reads")
	}
}

func TestBuildBoardDisablesCellsWithoutQuestions(t *testing.T) {
	cats := testCategories("c1")
	// Only one authored question at tier 200, none elsewhere.
	pool := []catalog.Question{q("only", "c1", 200)}

	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	left := CellKey{CategoryID: "c1", Tier: 200, Slot: 0}
	right := CellKey{CategoryID: "c1", Tier: 200, Slot: 1}
	assert.True(t, board.CellPlayable(left))
	assert.False(t, board.CellPlayable(right), "single candidate leaves the second slot disabled")
	assert.False(t, board.CellPlayable(CellKey{CategoryID: "c1", Tier: 400, Slot: 0}))
	assert.Equal(t, 1, board.RemainingCells())
}

func TestMarkAnsweredDisablesCell(t *testing.T) {
	cats := testCategories("c1")
	pool := fullPool([]string{"c1"}, ModePoints.Tiers(), 2)
	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	cell := CellKey{CategoryID: "c1", Tier: 200, Slot: 0}
	sel, ok := board.QuestionAt(cell)
	assert.True(t, ok)

	board.MarkAnswered(sel.ID)

	assert.False(t, board.CellPlayable(cell))
	assert.True(t, board.IsAnswered(sel.ID))
	assert.Contains(t, board.AnsweredIDs(), sel.ID)
	assert.Equal(t, 5, board.RemainingCells())
}

func TestSwapReplacesWithUnseenQuestion(t *testing.T) {
	cats := testCategories("c1")
	pool := fullPool([]string{"c1"}, ModePoints.Tiers(), 3)
	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	cell := CellKey{CategoryID: "c1", Tier: 200, Slot: 0}
	before, _ := board.QuestionAt(cell)
	other, _ := board.QuestionAt(CellKey{CategoryID: "c1", Tier: 200, Slot: 1})

	old, replacement, err := board.Swap(cell, testRand())
	assert.NoError(t, err)
	assert.Equal(t, before.ID, old.ID)
	assert.NotEqual(t, before.ID, replacement.ID)
	assert.NotEqual(t, other.ID, replacement.ID, "replacement must not duplicate the sibling cell")

	after, _ := board.QuestionAt(cell)
	assert.Equal(t, replacement.ID, after.ID)
}

func TestSwapFailsWithoutSpareQuestions(t *testing.T) {
	cats := testCategories("c1")
	// Exactly two authored questions: both are on the board already.
	pool := fullPool([]string{"c1"}, []int{200}, 2)
	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	_, _, err := board.Swap(CellKey{CategoryID: "c1", Tier: 200, Slot: 0}, testRand())
	assert.Error(t, err)
}

func TestSwapRejectsAnsweredCell(t *testing.T) {
	cats := testCategories("c1")
	pool := fullPool([]string{"c1"}, []int{200}, 3)
	board := BuildBoard(ModePoints, cats, pool, nil, testRand())

	cell := CellKey{CategoryID: "c1", Tier: 200, Slot: 0}
	sel, _ := board.QuestionAt(cell)
	board.MarkAnswered(sel.ID)

	_, _, err := board.Swap(cell, testRand())
	assert.Error(t, err)
}

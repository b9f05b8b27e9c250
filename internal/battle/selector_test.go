package battle

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

func q(id, categoryID string, points int) catalog.Question {
	return catalog.Question{ID: id, CategoryID: categoryID, Points: points}
}

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestSelectPairPrefersUnusedQuestions(t *testing.T) {
	candidates := []catalog.Question{
		q("q1", "history", 200),
		q("q2", "history", 200),
		q("q3", "history", 200),
	}

	pair := SelectPair("history", 200, candidates, []string{"q1"}, testRand())

	assert.Len(t, pair, 2)
	ids := []string{pair[0].ID, pair[1].ID}
	assert.ElementsMatch(t, []string{"q2", "q3"}, ids)
}

func TestSelectPairBackfillsOldestUsedFirst(t *testing.T) {
	candidates := []catalog.Question{
		q("q1", "history", 200),
		q("q2", "history", 200),
		q("q3", "history", 200),
	}

	// q1 was shown longest ago, q2 most recently; q3 is fresh.
	pair := SelectPair("history", 200, candidates, []string{"q1", "q2"}, testRand())

	assert.Len(t, pair, 2)
	assert.Equal(t, "q3", pair[0].ID, "the single unused question comes first")
	assert.Equal(t, "q1", pair[1].ID, "backfill takes the longest-ago used question")
}

func TestSelectPairAllUsedTakesTwoOldest(t *testing.T) {
	candidates := []catalog.Question{
		q("q1", "history", 200),
		q("q2", "history", 200),
		q("q3", "history", 200),
	}

	pair := SelectPair("history", 200, candidates, []string{"q2", "q3", "q1"}, testRand())

	assert.Len(t, pair, 2)
	assert.Equal(t, "q2", pair[0].ID)
	assert.Equal(t, "q3", pair[1].ID)
}

func TestSelectPairNeverDuplicates(t *testing.T) {
	candidates := []catalog.Question{q("q1", "history", 200)}

	pair := SelectPair("history", 200, candidates, nil, testRand())
	assert.Len(t, pair, 1, "a single authored question yields a one-cell pair")

	pair = SelectPair("history", 200, candidates, []string{"q1"}, testRand())
	assert.Len(t, pair, 1, "a used single question still fills only one cell")
	assert.Equal(t, "q1", pair[0].ID)
}

func TestSelectPairEmptyWithoutCandidates(t *testing.T) {
	pair := SelectPair("history", 200, nil, []string{"q1"}, testRand())
	assert.Empty(t, pair)
}

func TestSelectPairFiltersByCategoryAndTier(t *testing.T) {
	candidates := []catalog.Question{
		q("q1", "history", 200),
		q("q2", "history", 400),
		q("q3", "science", 200),
		q("q4", "history", 200),
	}

	pair := SelectPair("history", 200, candidates, nil, testRand())

	assert.Len(t, pair, 2)
	for _, sel := range pair {
		assert.Equal(t, "history", sel.CategoryID)
		assert.Equal(t, 200, sel.Points)
	}
}

func TestSelectPairIgnoresStaleUsedIDs(t *testing.T) {
	// Ids in the usage record that no longer exist in the authored pool must
	// not produce phantom cells.
	candidates := []catalog.Question{q("q1", "history", 200)}

	pair := SelectPair("history", 200, candidates, []string{"deleted", "q1"}, testRand())

	assert.Len(t, pair, 1)
	assert.Equal(t, "q1", pair[0].ID)
}

func TestSelectPairCapsAtTwo(t *testing.T) {
	var candidates []catalog.Question
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		candidates = append(candidates, q(id, "history", 600))
	}

	pair := SelectPair("history", 600, candidates, nil, testRand())

	assert.Len(t, pair, 2)
	assert.NotEqual(t, pair[0].ID, pair[1].ID)
}

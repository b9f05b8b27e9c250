package battle

import (
	"math/rand"

	"github.com/nbkbattle/nbk-battle/internal/catalog"
)

// SelectPair picks the two questions exposed on the left/right board cells
// for one (category, tier). Unused candidates are preferred, shuffled
// uniformly; when backfill is needed, used candidates are taken oldest-use
// first so recently shown questions return last. The pair never repeats a
// question: with a single authored candidate the result has length one and
// the second cell stays disabled.
//
// Result order is re-randomized on every call; callers that need a stable
// board must call once and keep the result, as the rotation map does.
func SelectPair(categoryID string, tier int, candidates []catalog.Question, usedIDs []string, rng *rand.Rand) []catalog.Question {
	var matching []catalog.Question
	for _, q := range candidates {
		if q.CategoryID == categoryID && q.Points == tier {
			matching = append(matching, q)
		}
	}

	usedSet := make(map[string]int, len(usedIDs)) // id -> position, oldest first
	for i, id := range usedIDs {
		usedSet[id] = i
	}

	var unused []catalog.Question
	byID := make(map[string]catalog.Question, len(matching))
	for _, q := range matching {
		byID[q.ID] = q
		if _, ok := usedSet[q.ID]; !ok {
			unused = append(unused, q)
		}
	}

	rng.Shuffle(len(unused), func(i, j int) {
		unused[i], unused[j] = unused[j], unused[i]
	})

	pair := unused
	if len(pair) < 2 {
		// Backfill in usedIDs order: the longest-ago question comes first.
		for _, id := range usedIDs {
			if len(pair) >= 2 {
				break
			}
			if q, ok := byID[id]; ok {
				pair = append(pair, q)
			}
		}
	}

	if len(pair) > 2 {
		pair = pair[:2]
	}
	return pair
}

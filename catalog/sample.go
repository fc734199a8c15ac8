package catalog

import "math/rand"

// adjustedCount applies the difficulty adjustment to a requested count:
// easy reviews get a slightly smaller set (never below 2), hard reviews
// a larger one.
func adjustedCount(count int, difficulty Difficulty) int {
	switch difficulty {
	case DifficultyEasy:
		if count-2 < 2 {
			return 2
		}
		return count - 2
	case DifficultyHard:
		return count + 2
	default:
		return count
	}
}

// drawSize is the per-category draw bound per sampling pass.
func drawSize(difficulty Difficulty) int {
	switch difficulty {
	case DifficultyEasy:
		return 2
	case DifficultyHard:
		return 4
	default:
		return 3
	}
}

// sampleDefects draws up to the adjusted total from the per-category
// pools, iterating categories in sort order and taking at most the
// difficulty draw size from each per pass. Within a category, defects
// matching the requested difficulty are preferred; remaining slots
// fall back to the category's other active defects. Ties between
// categories are broken by category order.
//
// Deterministic given the rng.
func sampleDefects(categories []CategoryInfo, byCategory map[string][]DefectInfo, sel Selection, rng *rand.Rand) []DefectInfo {
	want := adjustedCount(sel.Count, sel.Difficulty)
	perPass := drawSize(sel.Difficulty)

	// Build shuffled pools, difficulty-matching defects first.
	pools := make([][]DefectInfo, len(categories))
	for i, cat := range categories {
		var matching, other []DefectInfo
		for _, d := range byCategory[cat.Code] {
			if sel.Difficulty == "" || d.Difficulty == sel.Difficulty {
				matching = append(matching, d)
			} else {
				other = append(other, d)
			}
		}
		rng.Shuffle(len(matching), func(a, b int) { matching[a], matching[b] = matching[b], matching[a] })
		rng.Shuffle(len(other), func(a, b int) { other[a], other[b] = other[b], other[a] })
		pools[i] = append(matching, other...)
	}

	var picked []DefectInfo
	for len(picked) < want {
		progress := false
		for i := range pools {
			taken := 0
			for len(pools[i]) > 0 && taken < perPass && len(picked) < want {
				picked = append(picked, pools[i][0])
				pools[i] = pools[i][1:]
				taken++
				progress = true
			}
		}
		if !progress {
			break // pools exhausted
		}
	}
	return picked
}

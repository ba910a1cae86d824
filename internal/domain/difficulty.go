package domain

// Difficulty represents a level on the placement ladder.
// Levels are ordered: intro < easy < medium < hard.
type Difficulty string

const (
	DifficultyIntro  Difficulty = "intro"
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ladder holds the levels in ascending order.
var ladder = []Difficulty{
	DifficultyIntro,
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
}

// Levels returns the ladder in ascending order.
func Levels() []Difficulty {
	out := make([]Difficulty, len(ladder))
	copy(out, ladder)
	return out
}

// Valid reports whether d is one of the four ladder levels.
func (d Difficulty) Valid() bool {
	return d.rank() >= 0
}

// Next returns the level one rung above d, clamped at the top.
func (d Difficulty) Next() Difficulty {
	r := d.rank()
	if r < 0 || r == len(ladder)-1 {
		if r < 0 {
			return d
		}
		return ladder[len(ladder)-1]
	}
	return ladder[r+1]
}

// Prev returns the level one rung below d, clamped at the bottom.
func (d Difficulty) Prev() Difficulty {
	r := d.rank()
	if r <= 0 {
		if r < 0 {
			return d
		}
		return ladder[0]
	}
	return ladder[r-1]
}

// AtCeiling reports whether d is the top of the ladder.
func (d Difficulty) AtCeiling() bool {
	return d == ladder[len(ladder)-1]
}

func (d Difficulty) rank() int {
	for i, l := range ladder {
		if d == l {
			return i
		}
	}
	return -1
}

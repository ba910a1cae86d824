package domain

import "fmt"

// AssessmentItem is a single multiple-choice question served during a
// placement run. The engine never mutates an item after it is emitted.
type AssessmentItem struct {
	Subject      string     `json:"subject"`
	Course       string     `json:"course"`
	Prompt       string     `json:"prompt"`
	Choices      []string   `json:"choices"`
	CorrectIndex int        `json:"correctIndex"`
	Difficulty   Difficulty `json:"difficulty"`
	Explanation  string     `json:"explanation,omitempty"`
}

// Validate checks the item's structural invariants.
func (i *AssessmentItem) Validate() error {
	if i.Subject == "" || i.Course == "" {
		return fmt.Errorf("%w: subject and course required", ErrInvalidItem)
	}
	if i.Prompt == "" {
		return fmt.Errorf("%w: prompt required", ErrInvalidItem)
	}
	if len(i.Choices) < 2 {
		return fmt.Errorf("%w: at least two choices required, got %d", ErrInvalidItem, len(i.Choices))
	}
	if i.CorrectIndex < 0 || i.CorrectIndex >= len(i.Choices) {
		return fmt.Errorf("%w: correct index %d outside choices [0,%d)", ErrInvalidItem, i.CorrectIndex, len(i.Choices))
	}
	if !i.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, i.Difficulty)
	}
	return nil
}

// Scores reports whether the given answer index names the correct choice.
func (i *AssessmentItem) Scores(answer int) bool {
	return answer == i.CorrectIndex
}

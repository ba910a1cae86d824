package engine

import (
	"fmt"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// Transition applies one scored answer to the state, in place. It is the
// only place difficulty, streaks, mistakes and done-ness change in response
// to an answer.
//
// The streak is reset only when the ladder actually moves; at the top level
// it is left intact so the ceiling check can observe two-in-a-row at hard.
// The per-level mistake counter resets whenever the difficulty changes in
// either direction.
func Transition(s *domain.AssessmentState, lastAnswer int, lastItem *domain.AssessmentItem, p Policy) error {
	p = p.normalized()

	// First call of a subject carries no item; nothing to score.
	if lastItem == nil {
		if s.Step < 1 {
			s.Step = 1
		}
		return nil
	}

	if err := lastItem.Validate(); err != nil {
		return err
	}
	if lastAnswer < 0 || lastAnswer >= len(lastItem.Choices) {
		return fmt.Errorf("%w: %d of %d choices", domain.ErrAnswerOutOfRange, lastAnswer, len(lastItem.Choices))
	}
	if s.Done {
		return domain.ErrAssessmentDone
	}

	if lastItem.Scores(lastAnswer) {
		s.CorrectStreak++
		if s.CorrectStreak >= p.AdvanceStreak && !s.Difficulty.AtCeiling() {
			s.Difficulty = s.Difficulty.Next()
			s.CorrectStreak = 0
			s.LevelMistakes = 0
		}
	} else {
		s.Mistakes++
		s.LevelMistakes++
		s.CorrectStreak = 0
		if s.LevelMistakes >= p.DemoteMistakes {
			s.Difficulty = s.Difficulty.Prev()
			s.LevelMistakes = 0
		}
	}

	s.Step++

	switch {
	case s.Mistakes >= p.AbortMistakes:
		s.FinishSubject(domain.FinishMistakes)
	case s.Difficulty.AtCeiling() && s.CorrectStreak >= p.AdvanceStreak:
		s.FinishSubject(domain.FinishCeiling)
	case s.Step > s.MaxSteps:
		s.FinishSubject(domain.FinishBudget)
	}

	if s.Done {
		s.NextSubject()
	}
	return nil
}

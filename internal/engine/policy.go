package engine

import "github.com/felixgeelhaar/attune/internal/domain"

// Policy holds the calibration thresholds. The defaults are the production
// values; they are configurable because the thresholds are the tuning
// surface of the whole placement flow.
type Policy struct {
	// MaxSteps bounds each subject's sub-assessment.
	MaxSteps int

	// AdvanceStreak is the number of consecutive correct answers at one
	// level that advances the ladder.
	AdvanceStreak int

	// DemoteMistakes is the number of mistakes at the current level that
	// demotes the ladder.
	DemoteMistakes int

	// AbortMistakes is the total mistake count that ends the sub-assessment
	// outright; past this point further answers no longer calibrate.
	AbortMistakes int
}

// DefaultPolicy returns the production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		MaxSteps:       domain.DefaultMaxSteps,
		AdvanceStreak:  2,
		DemoteMistakes: 2,
		AbortMistakes:  3,
	}
}

// normalized fills zero values with defaults so a partially configured
// policy stays usable.
func (p Policy) normalized() Policy {
	d := DefaultPolicy()
	if p.MaxSteps <= 0 {
		p.MaxSteps = d.MaxSteps
	}
	if p.AdvanceStreak <= 0 {
		p.AdvanceStreak = d.AdvanceStreak
	}
	if p.DemoteMistakes <= 0 {
		p.DemoteMistakes = d.DemoteMistakes
	}
	if p.AbortMistakes <= 0 {
		p.AbortMistakes = d.AbortMistakes
	}
	return p
}

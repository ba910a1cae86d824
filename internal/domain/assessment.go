package domain

import "fmt"

// SubjectRef identifies one calibration target in a learner's interest queue.
type SubjectRef struct {
	Subject string `json:"subject"`
	Course  string `json:"course"`
}

// FinishReason records why a sub-assessment ended.
type FinishReason string

const (
	FinishBudget    FinishReason = "budget"    // step budget exhausted
	FinishMistakes  FinishReason = "mistakes"  // too many mistakes to continue
	FinishCeiling   FinishReason = "ceiling"   // sustained streak at the top level
	FinishExhausted FinishReason = "exhausted" // item bank ran out at the needed level
)

// SubjectResult is the outcome of one subject's sub-assessment. The
// calibrated difficulty is the level in effect at the moment the
// sub-assessment ended.
type SubjectResult struct {
	Subject    string       `json:"subject"`
	Course     string       `json:"course"`
	Difficulty Difficulty   `json:"calibratedDifficulty"`
	Turns      int          `json:"turns"`
	Mistakes   int          `json:"mistakes"`
	Reason     FinishReason `json:"reason"`
}

// AssessmentState is the full state of a placement run. It is owned by the
// caller between turns and travels with every request; the engine holds no
// state of its own.
type AssessmentState struct {
	Subject       string       `json:"subject"`
	Course        string       `json:"course"`
	Difficulty    Difficulty   `json:"difficulty"`
	Step          int          `json:"step"`
	MaxSteps      int          `json:"maxSteps"`
	CorrectStreak int          `json:"correctStreak"`
	Mistakes      int          `json:"mistakes"`
	LevelMistakes int          `json:"levelMistakes"`
	Done          bool         `json:"done"`
	Asked         []string     `json:"asked"`
	Remaining     []SubjectRef `json:"remaining"`

	// History accumulates one result per finished subject, in visit order.
	History []SubjectResult `json:"history"`
}

// DefaultMaxSteps bounds a sub-assessment when the caller does not say
// otherwise.
const DefaultMaxSteps = 7

// NewAssessmentState starts a placement run over the learner's queued
// subjects, in original interest order. The first subject becomes active
// immediately at the introductory level.
func NewAssessmentState(queue []SubjectRef, maxSteps int) (*AssessmentState, error) {
	if len(queue) == 0 {
		return nil, ErrEmptyQueue
	}
	for _, ref := range queue {
		if ref.Subject == "" || ref.Course == "" {
			return nil, fmt.Errorf("%w: queue entry missing subject or course", ErrInvalidState)
		}
	}
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	s := &AssessmentState{
		Subject:    queue[0].Subject,
		Course:     queue[0].Course,
		Difficulty: DifficultyIntro,
		Step:       1,
		MaxSteps:   maxSteps,
		Asked:      []string{},
		Remaining:  append([]SubjectRef{}, queue[1:]...),
		History:    []SubjectResult{},
	}
	return s, nil
}

// Validate fails fast on corrupt state. The engine never repairs state it
// did not produce, so caller bugs stay visible.
func (s *AssessmentState) Validate() error {
	if s.Subject == "" || s.Course == "" {
		return fmt.Errorf("%w: active subject or course missing", ErrInvalidState)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, s.Difficulty)
	}
	if s.MaxSteps <= 0 {
		return fmt.Errorf("%w: maxSteps must be positive, got %d", ErrInvalidState, s.MaxSteps)
	}
	if s.Step < 1 {
		return fmt.Errorf("%w: step must be >= 1, got %d", ErrInvalidState, s.Step)
	}
	if s.CorrectStreak < 0 || s.Mistakes < 0 || s.LevelMistakes < 0 {
		return fmt.Errorf("%w: negative counters", ErrInvalidState)
	}
	for _, ref := range s.Remaining {
		if ref.Subject == "" || ref.Course == "" {
			return fmt.Errorf("%w: remaining queue entry missing subject or course", ErrInvalidState)
		}
	}
	return nil
}

// Complete reports overall completion: the active subject finished and no
// subjects remain in the queue.
func (s *AssessmentState) Complete() bool {
	return s.Done && len(s.Remaining) == 0
}

// MarkAsked records a served prompt so it is never re-selected for the
// active course. Asked only grows within a sub-assessment.
func (s *AssessmentState) MarkAsked(prompt string) {
	s.Asked = append(s.Asked, prompt)
}

// WasAsked reports whether a prompt was already served this sub-assessment.
func (s *AssessmentState) WasAsked(prompt string) bool {
	for _, p := range s.Asked {
		if p == prompt {
			return true
		}
	}
	return false
}

// FinishSubject marks the active subject done and records its result. The
// calibrated difficulty is whatever level is in effect right now.
func (s *AssessmentState) FinishSubject(reason FinishReason) SubjectResult {
	s.Done = true
	res := SubjectResult{
		Subject:    s.Subject,
		Course:     s.Course,
		Difficulty: s.Difficulty,
		Turns:      len(s.Asked),
		Mistakes:   s.Mistakes,
		Reason:     reason,
	}
	s.History = append(s.History, res)
	return res
}

// NextSubject dequeues the next {subject, course} and resets the
// sub-assessment counters for it. Returns false when the queue is empty,
// leaving Done set so Complete() holds.
func (s *AssessmentState) NextSubject() bool {
	if len(s.Remaining) == 0 {
		return false
	}
	next := s.Remaining[0]
	s.Remaining = s.Remaining[1:]

	s.Subject = next.Subject
	s.Course = next.Course
	s.Difficulty = DifficultyIntro
	s.Step = 1
	s.CorrectStreak = 0
	s.Mistakes = 0
	s.LevelMistakes = 0
	s.Asked = []string{}
	s.Done = false
	return true
}

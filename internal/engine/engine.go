// Package engine implements the adaptive placement assessment: the per-turn
// transition over difficulty, streaks and mistakes, the subject queue, and
// the final per-subject calibration. The engine is pure between calls — all
// state travels with the request.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// Selector supplies the next unanswered item at a requested difficulty.
// Implementations must not mutate excluded and must return (nil, nil) when
// the bank is exhausted at that level — exhaustion is not an error.
type Selector interface {
	Find(ctx context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error)
}

// Engine runs placement turns against an item selector.
type Engine struct {
	selector Selector
	policy   Policy
	logger   *slog.Logger
}

// New creates an engine. A zero Policy takes production defaults.
func New(selector Selector, policy Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		selector: selector,
		policy:   policy.normalized(),
		logger:   logger,
	}
}

// Policy returns the engine's effective thresholds.
func (e *Engine) Policy() Policy {
	return e.policy
}

// TurnRequest is one request/response cycle: the caller's state plus the
// learner's last answer. A nil State initializes a new assessment from
// Subjects.
type TurnRequest struct {
	State      *domain.AssessmentState
	LastAnswer *int
	LastItem   *domain.AssessmentItem
	Subjects   []domain.SubjectRef
}

// TurnResult is the engine's reply: updated state and the next item, or
// Complete when all queued subjects are calibrated.
type TurnResult struct {
	State    *domain.AssessmentState
	Item     *domain.AssessmentItem
	Complete bool
}

// Start begins a new assessment over the learner's queued subjects and
// serves the first item.
func (e *Engine) Start(ctx context.Context, subjects []domain.SubjectRef) (*TurnResult, error) {
	return e.Turn(ctx, TurnRequest{Subjects: subjects})
}

// Turn applies the last answer (if any) and selects the next item. When the
// bank is exhausted at the required level the active subject terminates
// early rather than being served a mis-leveled item, since mis-leveled
// items corrupt calibration.
func (e *Engine) Turn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	state := req.State
	if state == nil {
		var err error
		state, err = domain.NewAssessmentState(req.Subjects, e.policy.MaxSteps)
		if err != nil {
			return nil, err
		}
	} else {
		if err := state.Validate(); err != nil {
			return nil, err
		}
		if req.LastItem != nil && req.LastAnswer == nil {
			return nil, domain.ErrAnswerMissing
		}
		if !state.Complete() && req.LastItem != nil {
			if err := Transition(state, *req.LastAnswer, req.LastItem, e.policy); err != nil {
				return nil, err
			}
		}
	}

	// A done flag with subjects still queued means the caller persisted a
	// state mid-handoff; pick up where the dequeue left off.
	if state.Done && len(state.Remaining) > 0 {
		state.NextSubject()
	}

	for !state.Done {
		item, err := e.selector.Find(ctx, state.Subject, state.Course, state.Difficulty, state.Asked)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBankUnavailable, err)
		}
		if item == nil {
			// No more items at this level for this course.
			res := state.FinishSubject(domain.FinishExhausted)
			e.logger.Info("subject terminated early, bank exhausted",
				"subject", res.Subject,
				"course", res.Course,
				"difficulty", string(res.Difficulty),
				"turns", res.Turns,
			)
			state.NextSubject()
			continue
		}
		state.MarkAsked(item.Prompt)
		return &TurnResult{State: state, Item: item}, nil
	}

	return &TurnResult{State: state, Complete: state.Complete()}, nil
}

// Errors the transport layer maps to validation failures.
func IsValidationError(err error) bool {
	return errors.Is(err, domain.ErrInvalidState) ||
		errors.Is(err, domain.ErrInvalidDifficulty) ||
		errors.Is(err, domain.ErrInvalidItem) ||
		errors.Is(err, domain.ErrEmptyQueue) ||
		errors.Is(err, domain.ErrAnswerMissing) ||
		errors.Is(err, domain.ErrAnswerOutOfRange) ||
		errors.Is(err, domain.ErrAssessmentDone)
}

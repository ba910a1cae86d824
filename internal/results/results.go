// Package results persists final placement calibrations. The engine never
// writes results itself; the API layer and the queue worker call into this
// package once an assessment completes.
package results

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// Placement is the per-subject "current difficulty" record for a learner.
// Upserting one clears the learner's needs-placement flag for that course.
type Placement struct {
	LearnerID  uuid.UUID         `json:"learner_id"`
	Subject    string            `json:"subject"`
	Course     string            `json:"course"`
	Difficulty domain.Difficulty `json:"difficulty"`
	Turns      int               `json:"turns"`
	Mistakes   int               `json:"mistakes"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// Repository stores placements.
type Repository interface {
	// Upsert writes the placement, replacing any previous calibration for
	// the same learner/subject/course.
	Upsert(ctx context.Context, p *Placement) error

	// ListByLearner returns all placements for a learner, newest first.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]Placement, error)
}

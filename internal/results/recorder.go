package results

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/attune/internal/domain"
	"github.com/felixgeelhaar/attune/internal/queue"
)

// Recorder consumes placement-completed events and writes one placement per
// visited subject.
type Recorder struct {
	repo Repository
}

// NewRecorder creates an event-driven placement writer.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo}
}

// HandlePlacementCompleted upserts every placement in the event. A bad
// difficulty fails the whole event so it surfaces instead of silently
// writing a partial run.
func (r *Recorder) HandlePlacementCompleted(ctx context.Context, event *queue.PlacementCompleted) error {
	for _, rec := range event.Placements {
		difficulty := domain.Difficulty(rec.Difficulty)
		if !difficulty.Valid() {
			return fmt.Errorf("%w: %q in event %s", domain.ErrInvalidDifficulty, rec.Difficulty, event.ID)
		}

		p := &Placement{
			LearnerID:  event.LearnerID,
			Subject:    rec.Subject,
			Course:     rec.Course,
			Difficulty: difficulty,
			Turns:      rec.Turns,
			Mistakes:   rec.Mistakes,
			UpdatedAt:  event.CompletedAt,
		}
		if err := r.repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert placement %s/%s: %w", rec.Subject, rec.Course, err)
		}
	}

	slog.Debug("placement event recorded",
		"event_id", event.ID,
		"learner_id", event.LearnerID,
		"placements", len(event.Placements),
	)
	return nil
}

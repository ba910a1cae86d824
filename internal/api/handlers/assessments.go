package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/attune/internal/domain"
	"github.com/felixgeelhaar/attune/internal/engine"
	"github.com/felixgeelhaar/attune/internal/queue"
	"github.com/felixgeelhaar/attune/internal/results"
)

// EventPublisher publishes completed placement runs for async persistence.
type EventPublisher interface {
	PublishPlacementCompleted(ctx context.Context, event *queue.PlacementCompleted) error
}

// AssessmentHandler handles assessment endpoints
type AssessmentHandler struct {
	engine    *engine.Engine
	repo      results.Repository
	publisher EventPublisher
}

// NewAssessmentHandler creates a new assessment handler. repo and publisher
// may be nil; the summary endpoint then only computes without persisting.
func NewAssessmentHandler(eng *engine.Engine, repo results.Repository, publisher EventPublisher) *AssessmentHandler {
	return &AssessmentHandler{
		engine:    eng,
		repo:      repo,
		publisher: publisher,
	}
}

// StartRequest is the request body for starting an assessment
type StartRequest struct {
	Subjects []domain.SubjectRef `json:"subjects"`
}

// TurnRequest is the request body for an assessment turn. State is the
// serialized state returned by the previous call; the server keeps nothing
// between requests.
type TurnRequest struct {
	State      *domain.AssessmentState `json:"state,omitempty"`
	LastAnswer *int                    `json:"lastAnswer,omitempty"`
	LastItem   *domain.AssessmentItem  `json:"lastItem,omitempty"`
	Subjects   []domain.SubjectRef     `json:"subjects,omitempty"`
}

// TurnResponse carries the updated state and the next item, or complete=true
// when every queued subject has been calibrated.
type TurnResponse struct {
	State    *domain.AssessmentState `json:"state"`
	Item     *domain.AssessmentItem  `json:"item"`
	Complete bool                    `json:"complete"`
}

// SummaryRequest is the request body for the summary endpoint
type SummaryRequest struct {
	State     *domain.AssessmentState `json:"state"`
	LearnerID string                  `json:"learnerId,omitempty"`
}

// SummaryResponse lists the final per-subject placements
type SummaryResponse struct {
	Placements []engine.Placement `json:"placements"`
	Persisted  bool               `json:"persisted"`
}

// Start begins a new assessment and serves the first item
func (h *AssessmentHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	result, err := h.engine.Start(r.Context(), req.Subjects)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, TurnResponse{
		State:    result.State,
		Item:     result.Item,
		Complete: result.Complete,
	})
}

// Turn applies the learner's last answer and serves the next item
func (h *AssessmentHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	result, err := h.engine.Turn(r.Context(), engine.TurnRequest{
		State:      req.State,
		LastAnswer: req.LastAnswer,
		LastItem:   req.LastItem,
		Subjects:   req.Subjects,
	})
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, TurnResponse{
		State:    result.State,
		Item:     result.Item,
		Complete: result.Complete,
	})
}

// Summary derives per-subject placements from a completed assessment. When a
// learner ID is supplied the placements are persisted and a completion event
// is published.
func (h *AssessmentHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	if req.State == nil {
		jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "state is required")
		return
	}
	if err := req.State.Validate(); err != nil {
		jsonError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error())
		return
	}
	if !req.State.Complete() {
		jsonError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", "assessment is not complete")
		return
	}

	placements := engine.Summarize(req.State.History)

	persisted := false
	if req.LearnerID != "" {
		learnerID, err := uuid.Parse(req.LearnerID)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid learner ID")
			return
		}
		if err := h.persist(r.Context(), learnerID, placements); err != nil {
			slog.Error("failed to persist placements", "error", err)
			jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to persist placements")
			return
		}
		persisted = h.repo != nil || h.publisher != nil
	}

	jsonResponse(w, http.StatusOK, SummaryResponse{
		Placements: placements,
		Persisted:  persisted,
	})
}

// persist writes placements synchronously when a repository is wired and
// hands the event to the queue when a publisher is wired.
func (h *AssessmentHandler) persist(ctx context.Context, learnerID uuid.UUID, placements []engine.Placement) error {
	if h.repo != nil {
		now := time.Now().UTC()
		for _, p := range placements {
			rec := &results.Placement{
				LearnerID:  learnerID,
				Subject:    p.Subject,
				Course:     p.Course,
				Difficulty: p.Difficulty,
				Turns:      p.Turns,
				Mistakes:   p.Mistakes,
				UpdatedAt:  now,
			}
			if err := h.repo.Upsert(ctx, rec); err != nil {
				return err
			}
		}
	}

	if h.publisher != nil {
		event := &queue.PlacementCompleted{
			ID:          uuid.New(),
			LearnerID:   learnerID,
			CompletedAt: time.Now().UTC(),
		}
		for _, p := range placements {
			event.Placements = append(event.Placements, queue.PlacementRecord{
				Subject:    p.Subject,
				Course:     p.Course,
				Difficulty: string(p.Difficulty),
				Turns:      p.Turns,
				Mistakes:   p.Mistakes,
			})
		}
		if err := h.publisher.PublishPlacementCompleted(ctx, event); err != nil {
			// The synchronous write already happened; losing the event only
			// delays downstream consumers.
			slog.Warn("failed to publish placement event",
				"learner_id", learnerID,
				"error", err,
			)
		}
	}

	return nil
}

func (h *AssessmentHandler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBankUnavailable):
		slog.Error("item bank unavailable",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		jsonError(w, http.StatusServiceUnavailable, "BANK_UNAVAILABLE", "item bank unavailable")
	case engine.IsValidationError(err):
		jsonError(w, http.StatusUnprocessableEntity, "UNPROCESSABLE", err.Error())
	default:
		slog.Error("assessment turn failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "assessment turn failed")
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/attune/internal/results"
)

// PlacementHandler serves persisted placement calibrations
type PlacementHandler struct {
	repo results.Repository
}

// NewPlacementHandler creates a new placement handler
func NewPlacementHandler(repo results.Repository) *PlacementHandler {
	return &PlacementHandler{repo: repo}
}

// PlacementsResponse lists a learner's stored placements
type PlacementsResponse struct {
	LearnerID  string              `json:"learner_id"`
	Placements []results.Placement `json:"placements"`
}

// ListByLearner returns all placements for a learner, newest first
func (h *PlacementHandler) ListByLearner(w http.ResponseWriter, r *http.Request) {
	learnerID, err := uuid.Parse(r.PathValue("learner_id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid learner ID")
		return
	}

	placements, err := h.repo.ListByLearner(r.Context(), learnerID)
	if err != nil {
		slog.Error("failed to load placements", "learner_id", learnerID, "error", err)
		jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load placements")
		return
	}

	if placements == nil {
		placements = []results.Placement{}
	}

	jsonResponse(w, http.StatusOK, PlacementsResponse{
		LearnerID:  learnerID.String(),
		Placements: placements,
	})
}

package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/attune/internal/api/handlers"
	"github.com/felixgeelhaar/attune/internal/domain"
	"github.com/felixgeelhaar/attune/internal/results"
)

func getPlacements(t *testing.T, h *handlers.PlacementHandler, learnerID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/placements/"+learnerID, nil)
	req.SetPathValue("learner_id", learnerID)
	rec := httptest.NewRecorder()
	h.ListByLearner(rec, req)
	return rec
}

func TestPlacementHandler_ListByLearner(t *testing.T) {
	repo := &memRepo{}
	learnerID := uuid.New()

	seed := []results.Placement{
		{LearnerID: learnerID, Subject: "math", Course: "algebra-1", Difficulty: domain.DifficultyMedium, Turns: 7, Mistakes: 1, UpdatedAt: time.Now()},
		{LearnerID: learnerID, Subject: "physics", Course: "mechanics", Difficulty: domain.DifficultyEasy, Turns: 4, Mistakes: 3, UpdatedAt: time.Now()},
		{LearnerID: uuid.New(), Subject: "chemistry", Course: "organic", Difficulty: domain.DifficultyHard, Turns: 7, Mistakes: 0, UpdatedAt: time.Now()},
	}
	for i := range seed {
		if err := repo.Upsert(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	h := handlers.NewPlacementHandler(repo)
	rec := getPlacements(t, h, learnerID.String())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.PlacementsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Placements) != 2 {
		t.Errorf("len(placements) = %d; want 2", len(resp.Placements))
	}
	for _, p := range resp.Placements {
		if p.LearnerID != learnerID {
			t.Errorf("placement belongs to %v; want %v", p.LearnerID, learnerID)
		}
	}
}

func TestPlacementHandler_ListByLearner_Empty(t *testing.T) {
	h := handlers.NewPlacementHandler(&memRepo{})
	rec := getPlacements(t, h, uuid.New().String())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp handlers.PlacementsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Placements == nil {
		t.Error("placements should be an empty array, not null")
	}
	if len(resp.Placements) != 0 {
		t.Errorf("len(placements) = %d; want 0", len(resp.Placements))
	}
}

func TestPlacementHandler_ListByLearner_InvalidID(t *testing.T) {
	h := handlers.NewPlacementHandler(&memRepo{})
	rec := getPlacements(t, h, "not-a-uuid")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d; want 400; body: %s", rec.Code, rec.Body.String())
	}
}

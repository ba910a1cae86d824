package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/attune/internal/domain"
	"github.com/felixgeelhaar/attune/internal/results"
)

// PlacementStore implements results.Repository backed by SQLite. Used in
// local and development modes where Postgres is not available.
type PlacementStore struct {
	db *DB
}

// NewPlacementStore creates a SQLite-backed placement store.
func NewPlacementStore(db *DB) *PlacementStore {
	return &PlacementStore{db: db}
}

type turnStats struct {
	Turns    int `json:"turns"`
	Mistakes int `json:"mistakes"`
}

// Upsert persists a placement (insert or update) and clears the
// needs-placement flag.
func (s *PlacementStore) Upsert(ctx context.Context, p *results.Placement) error {
	stats, err := json.Marshal(turnStats{Turns: p.Turns, Mistakes: p.Mistakes})
	if err != nil {
		return fmt.Errorf("marshal turn stats: %w", err)
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO placements (learner_id, subject, course, difficulty, turn_stats, needs_placement, updated_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(learner_id, subject, course) DO UPDATE SET
			difficulty      = excluded.difficulty,
			turn_stats      = excluded.turn_stats,
			needs_placement = 0,
			updated_at      = excluded.updated_at`,
		p.LearnerID.String(), p.Subject, p.Course, string(p.Difficulty), string(stats), now,
	)
	if err != nil {
		return fmt.Errorf("upsert placement: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

// ListByLearner returns all placements for a learner, newest first.
func (s *PlacementStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]results.Placement, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT learner_id, subject, course, difficulty, turn_stats, updated_at
		FROM placements
		WHERE learner_id = ?
		ORDER BY updated_at DESC`, learnerID.String())
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []results.Placement
	for rows.Next() {
		var (
			p     results.Placement
			id    string
			diff  string
			stats string
		)
		if err := rows.Scan(&id, &p.Subject, &p.Course, &diff, &stats, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		learner, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("parse learner id: %w", err)
		}
		p.LearnerID = learner
		p.Difficulty = domain.Difficulty(diff)
		var ts turnStats
		if json.Unmarshal([]byte(stats), &ts) == nil {
			p.Turns = ts.Turns
			p.Mistakes = ts.Mistakes
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Ensure PlacementStore implements results.Repository.
var _ results.Repository = (*PlacementStore)(nil)

package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a Postgres-backed placement store.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens and pings a Postgres connection for the results store.
func OpenPostgres(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// turnStats is the optional JSON stats column payload.
type turnStats struct {
	Turns    int `json:"turns"`
	Mistakes int `json:"mistakes"`
}

// Upsert writes the learner's calibration for a course and clears the
// needs-placement flag in the same statement.
func (r *PostgresRepository) Upsert(ctx context.Context, p *Placement) error {
	stats, err := json.Marshal(turnStats{Turns: p.Turns, Mistakes: p.Mistakes})
	if err != nil {
		return fmt.Errorf("marshal turn stats: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO placements (learner_id, subject, course, difficulty, turn_stats, needs_placement, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		ON CONFLICT (learner_id, subject, course) DO UPDATE SET
			difficulty      = EXCLUDED.difficulty,
			turn_stats      = EXCLUDED.turn_stats,
			needs_placement = FALSE,
			updated_at      = EXCLUDED.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		p.LearnerID, p.Subject, p.Course, string(p.Difficulty),
		pqtype.NullRawMessage{RawMessage: stats, Valid: true},
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert placement: %w", err)
	}
	p.UpdatedAt = now
	return nil
}

// ListByLearner returns all placements for a learner, newest first.
func (r *PostgresRepository) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]Placement, error) {
	query := `
		SELECT learner_id, subject, course, difficulty, turn_stats, updated_at
		FROM placements
		WHERE learner_id = $1
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, learnerID)
	if err != nil {
		return nil, fmt.Errorf("list placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var (
			p     Placement
			diff  string
			stats pqtype.NullRawMessage
		)
		if err := rows.Scan(&p.LearnerID, &p.Subject, &p.Course, &diff, &stats, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.Difficulty = domain.Difficulty(diff)
		if stats.Valid {
			var ts turnStats
			if err := json.Unmarshal(stats.RawMessage, &ts); err == nil {
				p.Turns = ts.Turns
				p.Mistakes = ts.Mistakes
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Ensure PostgresRepository implements Repository.
var _ Repository = (*PostgresRepository)(nil)

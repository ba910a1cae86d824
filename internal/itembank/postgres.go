package itembank

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// PostgresBank implements Selector against a Postgres item bank.
type PostgresBank struct {
	pool *pgxpool.Pool
}

// NewPostgresBank creates a Postgres-backed item bank.
func NewPostgresBank(pool *pgxpool.Pool) *PostgresBank {
	return &PostgresBank{pool: pool}
}

// Find returns the next unserved item at the requested difficulty, or
// (nil, nil) when none remain.
func (b *PostgresBank) Find(ctx context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error) {
	query := `
		SELECT subject, course, prompt, choices, correct_index, difficulty, COALESCE(explanation, '')
		FROM assessment_items
		WHERE subject = $1 AND course = $2 AND difficulty = $3
		  AND NOT (prompt = ANY($4))
		ORDER BY position, prompt
		LIMIT 1
	`
	if excluded == nil {
		excluded = []string{}
	}

	item := &domain.AssessmentItem{}
	err := b.pool.QueryRow(ctx, query, subject, course, string(difficulty), excluded).Scan(
		&item.Subject, &item.Course, &item.Prompt, &item.Choices,
		&item.CorrectIndex, &item.Difficulty, &item.Explanation,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

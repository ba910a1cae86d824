// Package itembank provides item selectors backed by static YAML course
// files, Postgres, or an external model-backed generator service.
package itembank

import (
	"context"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// Selector picks the next unanswered item at the required difficulty,
// avoiding repeats. (nil, nil) means the bank is exhausted at that level;
// that is policy input for the engine, not an error.
type Selector interface {
	Find(ctx context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error)
}

// Chain tries selectors in order, returning the first item found. A nil
// result from every link means the whole chain is exhausted. Errors stop
// the chain: a broken bank is a hard failure, not a reason to fall through
// silently.
type Chain []Selector

// Find implements Selector.
func (c Chain) Find(ctx context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error) {
	for _, s := range c {
		item, err := s.Find(ctx, subject, course, difficulty, excluded)
		if err != nil {
			return nil, err
		}
		if item != nil {
			return item, nil
		}
	}
	return nil, nil
}

func excludedSet(excluded []string) map[string]struct{} {
	set := make(map[string]struct{}, len(excluded))
	for _, p := range excluded {
		set[p] = struct{}{}
	}
	return set
}

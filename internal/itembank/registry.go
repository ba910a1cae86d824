package itembank

import (
	"context"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// Registry is an in-memory item bank loaded from YAML course files. It
// serves items grouped by subject/course/difficulty, in file order.
type Registry struct {
	loader *Loader
	mu     sync.RWMutex
	items  map[bankKey][]domain.AssessmentItem
	loaded bool
}

type bankKey struct {
	subject    string
	course     string
	difficulty domain.Difficulty
}

// NewRegistry creates a registry over the given loader.
func NewRegistry(loader *Loader) *Registry {
	return &Registry{
		loader: loader,
		items:  make(map[bankKey][]domain.AssessmentItem),
	}
}

// Load reads all course files into memory.
func (r *Registry) Load() error {
	items, err := r.loader.LoadAll()
	if err != nil {
		return fmt.Errorf("load item bank: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[bankKey][]domain.AssessmentItem)
	for _, item := range items {
		key := bankKey{item.Subject, item.Course, item.Difficulty}
		r.items[key] = append(r.items[key], item)
	}
	r.loaded = true
	return nil
}

// Reload re-reads the course files (useful for development).
func (r *Registry) Reload() error {
	return r.Load()
}

// Len returns the total number of items loaded.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, bucket := range r.items {
		n += len(bucket)
	}
	return n
}

// Find implements Selector against the in-memory bank. It never mutates
// excluded; a copy of the matching item is returned so callers cannot
// reach the registry's backing store.
func (r *Registry) Find(_ context.Context, subject, course string, difficulty domain.Difficulty, excluded []string) (*domain.AssessmentItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	skip := excludedSet(excluded)
	for _, item := range r.items[bankKey{subject, course, difficulty}] {
		if _, ok := skip[item.Prompt]; ok {
			continue
		}
		out := item
		out.Choices = append([]string{}, item.Choices...)
		return &out, nil
	}
	return nil, nil
}

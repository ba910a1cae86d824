package itembank

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/attune/internal/domain"
)

// CourseFile represents the YAML structure for one course's item bank:
// basePath/<subject>/<course>.yaml.
type CourseFile struct {
	Subject string     `yaml:"subject"`
	Course  string     `yaml:"course"`
	Items   []ItemFile `yaml:"items"`
}

// ItemFile represents a single item within a course file.
type ItemFile struct {
	Prompt       string   `yaml:"prompt"`
	Choices      []string `yaml:"choices"`
	CorrectIndex int      `yaml:"correct_index"`
	Difficulty   string   `yaml:"difficulty"`
	Explanation  string   `yaml:"explanation,omitempty"`
}

// Loader reads item banks from YAML course files.
type Loader struct {
	basePath string
}

// NewLoader creates a loader rooted at basePath.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// LoadCourse loads a single course file.
func (l *Loader) LoadCourse(path string) ([]domain.AssessmentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course file: %w", err)
	}

	var file CourseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse course file %s: %w", path, err)
	}
	if file.Subject == "" || file.Course == "" {
		return nil, fmt.Errorf("course file %s: subject and course required", path)
	}

	items := make([]domain.AssessmentItem, 0, len(file.Items))
	for i, it := range file.Items {
		item := domain.AssessmentItem{
			Subject:      file.Subject,
			Course:       file.Course,
			Prompt:       it.Prompt,
			Choices:      it.Choices,
			CorrectIndex: it.CorrectIndex,
			Difficulty:   domain.Difficulty(it.Difficulty),
			Explanation:  it.Explanation,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("course file %s item %d: %w", path, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadAll walks the base path and loads every course file found.
func (l *Loader) LoadAll() ([]domain.AssessmentItem, error) {
	var items []domain.AssessmentItem

	err := filepath.WalkDir(l.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			return nil
		}
		loaded, err := l.LoadCourse(path)
		if err != nil {
			return err
		}
		items = append(items, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk item bank: %w", err)
	}
	return items, nil
}

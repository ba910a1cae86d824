package itembank

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/attune/internal/domain"
)

const algebraCourse = `subject: Math
course: Algebra I
items:
  - prompt: "Solve x + 1 = 2"
    choices: ["0", "1", "2"]
    correct_index: 1
    difficulty: intro
  - prompt: "Solve 2x = 6"
    choices: ["2", "3", "4"]
    correct_index: 1
    difficulty: intro
  - prompt: "Factor x^2 - 1"
    choices: ["(x-1)(x+1)", "(x-1)^2", "x(x-1)"]
    correct_index: 0
    difficulty: medium
    explanation: "Difference of squares."
`

func writeBank(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func loadedRegistry(t *testing.T, files map[string]string) *Registry {
	t.Helper()
	dir := writeBank(t, files)
	reg := NewRegistry(NewLoader(dir))
	if err := reg.Load(); err != nil {
		t.Fatalf("load registry: %v", err)
	}
	return reg
}

func TestRegistry_Load(t *testing.T) {
	reg := loadedRegistry(t, map[string]string{"math/algebra-1.yaml": algebraCourse})

	if got := reg.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestRegistry_Find(t *testing.T) {
	reg := loadedRegistry(t, map[string]string{"math/algebra-1.yaml": algebraCourse})
	ctx := context.Background()

	item, err := reg.Find(ctx, "Math", "Algebra I", domain.DifficultyIntro, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if item == nil {
		t.Fatal("Find() = nil, want an intro item")
	}
	if item.Prompt != "Solve x + 1 = 2" {
		t.Errorf("prompt = %q, want first intro item", item.Prompt)
	}
}

func TestRegistry_Find_ExcludesServedPrompts(t *testing.T) {
	reg := loadedRegistry(t, map[string]string{"math/algebra-1.yaml": algebraCourse})
	ctx := context.Background()

	excluded := []string{"Solve x + 1 = 2"}
	item, err := reg.Find(ctx, "Math", "Algebra I", domain.DifficultyIntro, excluded)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if item == nil || item.Prompt != "Solve 2x = 6" {
		t.Fatalf("Find() = %v, want the second intro item", item)
	}

	// Exclusion must not be mutated.
	if len(excluded) != 1 {
		t.Errorf("excluded mutated: %v", excluded)
	}

	excluded = append(excluded, "Solve 2x = 6")
	item, err = reg.Find(ctx, "Math", "Algebra I", domain.DifficultyIntro, excluded)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if item != nil {
		t.Errorf("Find() = %v, want nil when all intro items served", item)
	}
}

func TestRegistry_Find_ExhaustedLevel(t *testing.T) {
	reg := loadedRegistry(t, map[string]string{"math/algebra-1.yaml": algebraCourse})

	item, err := reg.Find(context.Background(), "Math", "Algebra I", domain.DifficultyHard, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if item != nil {
		t.Errorf("Find() = %v, want nil for an empty level", item)
	}
}

func TestRegistry_Find_UnknownCourse(t *testing.T) {
	reg := loadedRegistry(t, map[string]string{"math/algebra-1.yaml": algebraCourse})

	item, err := reg.Find(context.Background(), "History", "World History", domain.DifficultyIntro, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if item != nil {
		t.Errorf("Find() = %v, want nil for unknown course", item)
	}
}

func TestLoader_RejectsInvalidItems(t *testing.T) {
	bad := `subject: Math
course: Algebra I
items:
  - prompt: "Only one choice"
    choices: ["a"]
    correct_index: 0
    difficulty: intro
`
	dir := writeBank(t, map[string]string{"math/bad.yaml": bad})
	reg := NewRegistry(NewLoader(dir))
	if err := reg.Load(); err == nil {
		t.Error("Load() = nil, want error for invalid item")
	}
}

func TestChain_FallsThrough(t *testing.T) {
	primary := loadedRegistry(t, map[string]string{"math/algebra-1.yaml": algebraCourse})
	secondary := loadedRegistry(t, map[string]string{"bio/bio-1.yaml": `subject: Biology
course: Bio1
items:
  - prompt: "Powerhouse of the cell?"
    choices: ["nucleus", "mitochondria"]
    correct_index: 1
    difficulty: intro
`})

	chain := Chain{primary, secondary}
	ctx := context.Background()

	// Served by the primary.
	item, err := chain.Find(ctx, "Math", "Algebra I", domain.DifficultyIntro, nil)
	if err != nil || item == nil {
		t.Fatalf("Find() = (%v, %v), want a math item", item, err)
	}

	// Primary has no biology; chain falls through to the secondary.
	item, err = chain.Find(ctx, "Biology", "Bio1", domain.DifficultyIntro, nil)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if item == nil || item.Subject != "Biology" {
		t.Fatalf("Find() = %v, want the biology item", item)
	}

	// Neither bank knows the course.
	item, err = chain.Find(ctx, "Art", "Art1", domain.DifficultyIntro, nil)
	if err != nil || item != nil {
		t.Errorf("Find() = (%v, %v), want (nil, nil)", item, err)
	}
}

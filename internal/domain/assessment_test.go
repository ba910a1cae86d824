package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewAssessmentState(t *testing.T) {
	queue := []SubjectRef{
		{Subject: "Math", Course: "Algebra I"},
		{Subject: "Biology", Course: "Bio1"},
	}

	s, err := NewAssessmentState(queue, 0)
	if err != nil {
		t.Fatalf("NewAssessmentState() error = %v", err)
	}

	if s.Subject != "Math" || s.Course != "Algebra I" {
		t.Errorf("active subject = %s/%s, want Math/Algebra I", s.Subject, s.Course)
	}
	if s.Difficulty != DifficultyIntro {
		t.Errorf("difficulty = %q, want intro", s.Difficulty)
	}
	if s.Step != 1 {
		t.Errorf("step = %d, want 1", s.Step)
	}
	if s.MaxSteps != DefaultMaxSteps {
		t.Errorf("maxSteps = %d, want default %d", s.MaxSteps, DefaultMaxSteps)
	}
	if len(s.Remaining) != 1 || s.Remaining[0].Subject != "Biology" {
		t.Errorf("remaining = %v, want [Biology/Bio1]", s.Remaining)
	}
	if s.Done {
		t.Error("new state should not be done")
	}
}

func TestNewAssessmentState_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		queue   []SubjectRef
		wantErr error
	}{
		{"empty queue", nil, ErrEmptyQueue},
		{"missing course", []SubjectRef{{Subject: "Math"}}, ErrInvalidState},
		{"missing subject", []SubjectRef{{Course: "Algebra I"}}, ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewAssessmentState(tt.queue, 7)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewAssessmentState() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAssessmentState_Validate(t *testing.T) {
	valid := func() *AssessmentState {
		s, _ := NewAssessmentState([]SubjectRef{{Subject: "Math", Course: "Algebra I"}}, 7)
		return s
	}

	tests := []struct {
		name   string
		mutate func(*AssessmentState)
	}{
		{"invalid difficulty", func(s *AssessmentState) { s.Difficulty = "expert" }},
		{"zero step", func(s *AssessmentState) { s.Step = 0 }},
		{"zero maxSteps", func(s *AssessmentState) { s.MaxSteps = 0 }},
		{"negative mistakes", func(s *AssessmentState) { s.Mistakes = -1 }},
		{"negative streak", func(s *AssessmentState) { s.CorrectStreak = -1 }},
		{"missing subject", func(s *AssessmentState) { s.Subject = "" }},
		{"malformed queue entry", func(s *AssessmentState) { s.Remaining = []SubjectRef{{Subject: "Bio"}} }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("fresh state should validate, got %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)
			if err := s.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestAssessmentState_NextSubject(t *testing.T) {
	s, _ := NewAssessmentState([]SubjectRef{
		{Subject: "Math", Course: "Algebra I"},
		{Subject: "Biology", Course: "Bio1"},
	}, 7)

	// Simulate some progress on the first subject.
	s.Difficulty = DifficultyMedium
	s.Step = 5
	s.CorrectStreak = 1
	s.Mistakes = 2
	s.LevelMistakes = 1
	s.MarkAsked("what is x")
	s.FinishSubject(FinishBudget)

	if !s.NextSubject() {
		t.Fatal("NextSubject() = false, want true with a queued subject")
	}

	if s.Subject != "Biology" || s.Course != "Bio1" {
		t.Errorf("active subject = %s/%s, want Biology/Bio1", s.Subject, s.Course)
	}
	if s.Difficulty != DifficultyIntro {
		t.Errorf("difficulty = %q, want intro after reset", s.Difficulty)
	}
	if s.Step != 1 || s.CorrectStreak != 0 || s.Mistakes != 0 || s.LevelMistakes != 0 {
		t.Errorf("counters not reset: step=%d streak=%d mistakes=%d level=%d",
			s.Step, s.CorrectStreak, s.Mistakes, s.LevelMistakes)
	}
	if len(s.Asked) != 0 {
		t.Errorf("asked = %v, want empty after reset", s.Asked)
	}
	if s.Done {
		t.Error("done should clear when a new subject starts")
	}
	if len(s.Remaining) != 0 {
		t.Errorf("remaining = %v, want empty", s.Remaining)
	}

	// History survives the reset.
	if len(s.History) != 1 || s.History[0].Subject != "Math" {
		t.Fatalf("history = %v, want one Math entry", s.History)
	}
	if s.History[0].Difficulty != DifficultyMedium {
		t.Errorf("calibrated difficulty = %q, want medium", s.History[0].Difficulty)
	}

	// Queue only shrinks; empty queue leaves done set.
	s.FinishSubject(FinishCeiling)
	if s.NextSubject() {
		t.Error("NextSubject() = true with empty queue, want false")
	}
	if !s.Complete() {
		t.Error("state should be complete once done with empty queue")
	}
}

func TestAssessmentState_MarkAsked(t *testing.T) {
	s, _ := NewAssessmentState([]SubjectRef{{Subject: "Math", Course: "Algebra I"}}, 7)

	prompts := []string{"a", "b", "c"}
	for i, p := range prompts {
		s.MarkAsked(p)
		if len(s.Asked) != i+1 {
			t.Fatalf("asked len = %d after %d marks", len(s.Asked), i+1)
		}
	}
	if !s.WasAsked("b") {
		t.Error("WasAsked(b) = false, want true")
	}
	if s.WasAsked("z") {
		t.Error("WasAsked(z) = true, want false")
	}
}

func TestAssessmentState_WireFormat(t *testing.T) {
	s, _ := NewAssessmentState([]SubjectRef{
		{Subject: "Math", Course: "Algebra I"},
		{Subject: "Biology", Course: "Bio1"},
	}, 7)

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{
		"subject", "course", "difficulty", "step", "maxSteps",
		"correctStreak", "mistakes", "done", "asked", "remaining",
	} {
		if _, ok := fields[key]; !ok {
			t.Errorf("wire format missing field %q", key)
		}
	}
}

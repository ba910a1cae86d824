package domain

import "testing"

func validItem() *AssessmentItem {
	return &AssessmentItem{
		Subject:      "Math",
		Course:       "Algebra I",
		Prompt:       "Solve 2x = 6",
		Choices:      []string{"1", "2", "3", "4"},
		CorrectIndex: 2,
		Difficulty:   DifficultyEasy,
	}
}

func TestAssessmentItem_Validate(t *testing.T) {
	if err := validItem().Validate(); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AssessmentItem)
	}{
		{"missing prompt", func(i *AssessmentItem) { i.Prompt = "" }},
		{"missing subject", func(i *AssessmentItem) { i.Subject = "" }},
		{"single choice", func(i *AssessmentItem) { i.Choices = []string{"only"} }},
		{"correct index negative", func(i *AssessmentItem) { i.CorrectIndex = -1 }},
		{"correct index past end", func(i *AssessmentItem) { i.CorrectIndex = 4 }},
		{"bad difficulty", func(i *AssessmentItem) { i.Difficulty = "legendary" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)
			if err := item.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestAssessmentItem_Scores(t *testing.T) {
	item := validItem()
	if !item.Scores(2) {
		t.Error("Scores(2) = false, want true")
	}
	if item.Scores(0) {
		t.Error("Scores(0) = true, want false")
	}
}

package engine

import "github.com/felixgeelhaar/attune/internal/domain"

// Placement is the final calibration handed to the persistence collaborator:
// one starting difficulty per visited subject.
type Placement struct {
	Subject    string            `json:"subject"`
	Course     string            `json:"course"`
	Difficulty domain.Difficulty `json:"calibratedDifficulty"`
	Turns      int               `json:"turns"`
	Mistakes   int               `json:"mistakes"`
}

// Summarize derives the per-subject placements from a completed run's
// history. It is pure: calling it twice on the same history yields identical
// output. When a subject was visited more than once the last visit wins.
func Summarize(history []domain.SubjectResult) []Placement {
	seen := make(map[string]int, len(history))
	out := make([]Placement, 0, len(history))

	for _, res := range history {
		p := Placement{
			Subject:    res.Subject,
			Course:     res.Course,
			Difficulty: res.Difficulty,
			Turns:      res.Turns,
			Mistakes:   res.Mistakes,
		}
		key := res.Subject + "/" + res.Course
		if i, ok := seen[key]; ok {
			out[i] = p
			continue
		}
		seen[key] = len(out)
		out = append(out, p)
	}
	return out
}

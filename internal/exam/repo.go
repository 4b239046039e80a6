package exam

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("exam not found")

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
}

type Summary struct {
	ExamCode       string  `json:"exam_code"`
	Title          string  `json:"title"`
	PassingScore   float64 `json:"passing_score"`
	TotalQuestions int     `json:"total_questions"`
	CreatedAt      int64   `json:"created_at"`
}

// Bank resolves question sets by exam code. Authoring happens elsewhere; the
// bank only needs to hand grading a complete set, answers included.
type Bank interface {
	Put(ctx context.Context, s QuestionSet) error
	Get(ctx context.Context, examCode string) (QuestionSet, error)
	List(ctx context.Context, opts ListOpts) ([]Summary, error)
}

// CheckShape performs the structural checks that do not depend on question
// type semantics.
func CheckShape(s QuestionSet) error {
	if strings.TrimSpace(s.ExamCode) == "" {
		return errors.New("exam_code is required")
	}
	if s.Config.PassingScore < 0 || s.Config.PassingScore > 100 {
		return fmt.Errorf("passing_score %.2f out of range 0..100", s.Config.PassingScore)
	}
	seen := make(map[string]bool, len(s.Questions))
	for i, q := range s.Questions {
		if strings.TrimSpace(q.ID) == "" {
			return fmt.Errorf("question[%d]: question_id is required", i)
		}
		if seen[q.ID] {
			return fmt.Errorf("duplicate question_id: %s", q.ID)
		}
		seen[q.ID] = true
	}
	return nil
}

func summarize(s QuestionSet) Summary {
	return Summary{
		ExamCode:       s.ExamCode,
		Title:          s.Title,
		PassingScore:   s.Config.PassingScore,
		TotalQuestions: len(s.Questions),
		CreatedAt:      s.CreatedAt,
	}
}

package grading

import "sort"

// Answer is the canonical shape of an expected or submitted answer. Exactly
// one field is meaningful, depending on the question type. The zero value is
// the unanswered sentinel for every type.
type Answer struct {
	Label  string            `json:"label,omitempty"`  // single-choice
	Labels []string          `json:"labels,omitempty"` // multi-select, sorted, no duplicates
	Pairs  map[string]string `json:"pairs,omitempty"`  // matching, leftID -> rightID
}

// Empty reports whether the answer carries nothing for any type.
func (a Answer) Empty() bool {
	return a.Label == "" && len(a.Labels) == 0 && len(a.Pairs) == 0
}

// Pair statuses for matching review rows.
const (
	PairCorrect    = "correct"
	PairWrong      = "wrong"
	PairUnanswered = "unanswered"
)

type PairVerdict struct {
	LeftID    string `json:"left_id"`
	Expected  string `json:"expected"`
	Submitted string `json:"submitted,omitempty"`
	Status    string `json:"status"`
}

// Verdict is the grading outcome of one question in an attempt.
type Verdict struct {
	QuestionID   string        `json:"question_id"`
	QuestionType string        `json:"question_type"`
	Expected     Answer        `json:"expected"`
	Submitted    Answer        `json:"submitted"`
	IsCorrect    bool          `json:"is_correct"`
	Attempted    bool          `json:"attempted"`
	Unscoreable  bool          `json:"unscoreable,omitempty"`
	Note         string        `json:"note,omitempty"`
	Pairs        []PairVerdict `json:"pairs,omitempty"`
	Explanation  string        `json:"explanation,omitempty"`
}

// AttemptResult is created once per completed attempt and never mutated.
// Unattempted counts every question that did not land in Correct or Wrong,
// unscoreable ones included.
type AttemptResult struct {
	AttemptID       string    `json:"attempt_id"`
	ExamCode        string    `json:"exam_code"`
	UserID          string    `json:"user_id,omitempty"`
	TotalQuestions  int       `json:"total_questions"`
	Attempted       int       `json:"attempted"`
	Unattempted     int       `json:"unattempted"`
	Correct         int       `json:"correct"`
	Wrong           int       `json:"wrong"`
	Unscoreable     int       `json:"unscoreable,omitempty"`
	Percentage      float64   `json:"percentage"`
	PassingScore    float64   `json:"passing_score"`
	Passed          bool      `json:"passed"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     int64     `json:"completed_at"`
	Questions       []Verdict `json:"questions"`
}

// Review filters.
const (
	FilterAll         = "all"
	FilterCorrect     = "correct"
	FilterWrong       = "wrong"
	FilterUnattempted = "unattempted"
	FilterUnscoreable = "unscoreable"
)

// Verdicts returns the verdicts matching filter, in exam order. Unknown
// filters behave like FilterAll.
func (r AttemptResult) Verdicts(filter string) []Verdict {
	out := make([]Verdict, 0, len(r.Questions))
	for _, v := range r.Questions {
		var keep bool
		switch filter {
		case FilterCorrect:
			keep = v.IsCorrect
		case FilterWrong:
			keep = v.Attempted && !v.IsCorrect && !v.Unscoreable
		case FilterUnattempted:
			keep = !v.Attempted && !v.Unscoreable
		case FilterUnscoreable:
			keep = v.Unscoreable
		default:
			keep = true
		}
		if keep {
			out = append(out, v)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package exam

import "encoding/json"

// Question types understood by the grading engine.
const (
	TypeSingleChoice = "single-choice"
	TypeMultiSelect  = "multi-select"
	TypeMatching     = "matching"
)

type Option struct {
	Label string `json:"label"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// MatchItem is one side of a matching question.
type MatchItem struct {
	ID    string `json:"id"`
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Question is immutable input to grading. ExpectedAnswer keeps its raw JSON
// shape: a string for single-choice, an array of labels for multi-select and
// an object of leftID -> rightID for matching.
type Question struct {
	ID             string          `json:"question_id"`
	Type           string          `json:"question_type"`
	PromptHTML     string          `json:"prompt_html,omitempty"`
	Options        []Option        `json:"options,omitempty"`
	LeftItems      []MatchItem     `json:"left_items,omitempty"`
	RightItems     []MatchItem     `json:"right_items,omitempty"`
	ExpectedAnswer json.RawMessage `json:"expected_answer,omitempty"`
	Explanation    string          `json:"explanation,omitempty"`
}

// Config is the exam metadata the scorer needs.
type Config struct {
	PassingScore    float64 `json:"passing_score"`
	TotalQuestions  int     `json:"total_questions,omitempty"`
	DurationSeconds int     `json:"duration_seconds,omitempty"`
}

// QuestionSet is everything the bank knows about one exam code.
type QuestionSet struct {
	ExamCode  string     `json:"exam_code"`
	Title     string     `json:"title"`
	Config    Config     `json:"config"`
	Questions []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// HasOption reports whether label is one of the question's option labels.
func (q Question) HasOption(label string) bool {
	for _, o := range q.Options {
		if o.Label == label {
			return true
		}
	}
	return false
}

func (q Question) HasLeft(id string) bool {
	for _, it := range q.LeftItems {
		if it.ID == id {
			return true
		}
	}
	return false
}

func (q Question) HasRight(id string) bool {
	for _, it := range q.RightItems {
		if it.ID == id {
			return true
		}
	}
	return false
}

// Public returns a copy with expected answers and explanations removed, for
// delivery to a learner before submission.
func (s QuestionSet) Public() QuestionSet {
	out := s
	out.Questions = make([]Question, len(s.Questions))
	for i, q := range s.Questions {
		q.ExpectedAnswer = nil
		q.Explanation = ""
		out.Questions[i] = q
	}
	return out
}

package grading

import (
	"errors"

	"github.com/mind-engage/mindengage-dumps/internal/exam"
)

var ErrUnknownType = errors.New("unknown question type")

// Strategy knows how one question type is answered and graded. All methods
// are total: malformed submissions degrade to the zero Answer.
type Strategy interface {
	// Expected parses and checks the authored answer against the question's
	// own options. An error marks the question unscoreable.
	Expected(q exam.Question) (Answer, error)
	// Normalize coerces a raw submitted value into canonical form.
	Normalize(q exam.Question, raw interface{}) Answer
	// Evaluate is the all-or-nothing correctness rule.
	Evaluate(expected, submitted Answer) bool
}

// pairDetailer is implemented by strategies that expose row-level results.
type pairDetailer interface {
	PairDetail(q exam.Question, expected, submitted Answer) []PairVerdict
}

// Registry routes by question type to the correct Strategy.
type Registry struct {
	strategies map[string]Strategy
}

type Option func(*Registry)

// WithStrategy installs or replaces the strategy for a type tag.
func WithStrategy(qType string, s Strategy) Option {
	return func(r *Registry) { r.strategies[qType] = s }
}

// NewRegistry installs built-in strategies.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		strategies: map[string]Strategy{
			exam.TypeSingleChoice: singleChoiceStrategy{},
			exam.TypeMultiSelect:  multiSelectStrategy{},
			exam.TypeMatching:     matchingStrategy{},
		},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registry) Lookup(qType string) (Strategy, bool) {
	s, ok := r.strategies[qType]
	return s, ok
}

var defaultRegistry = NewRegistry()

// Normalize coerces raw for q using the default registry. Unknown types
// yield the unanswered sentinel.
func Normalize(q exam.Question, raw interface{}) Answer {
	s, ok := defaultRegistry.Lookup(q.Type)
	if !ok {
		return Answer{}
	}
	return s.Normalize(q, raw)
}

// IsCorrect evaluates canonical answers for a question type.
func IsCorrect(qType string, expected, submitted Answer) bool {
	s, ok := defaultRegistry.Lookup(qType)
	if !ok {
		return false
	}
	return s.Evaluate(expected, submitted)
}

// Check reports the authoring defect that would make q unscoreable, if any.
func Check(q exam.Question) error {
	s, ok := defaultRegistry.Lookup(q.Type)
	if !ok {
		return ErrUnknownType
	}
	_, err := s.Expected(q)
	return err
}

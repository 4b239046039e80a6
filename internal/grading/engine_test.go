package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-dumps/internal/exam"
)

func singleQ(id, expected string) exam.Question {
	return exam.Question{
		ID:             id,
		Type:           exam.TypeSingleChoice,
		Options:        []exam.Option{{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"}},
		ExpectedAnswer: json.RawMessage(`"` + expected + `"`),
	}
}

func multiQ(id string, expected ...string) exam.Question {
	raw, _ := json.Marshal(expected)
	return exam.Question{
		ID:             id,
		Type:           exam.TypeMultiSelect,
		Options:        []exam.Option{{Label: "A"}, {Label: "B"}, {Label: "C"}, {Label: "D"}},
		ExpectedAnswer: raw,
	}
}

func matchQ(id string, expected map[string]string) exam.Question {
	raw, _ := json.Marshal(expected)
	return exam.Question{
		ID:             id,
		Type:           exam.TypeMatching,
		LeftItems:      []exam.MatchItem{{ID: "1"}, {ID: "2"}},
		RightItems:     []exam.MatchItem{{ID: "x"}, {ID: "y"}, {ID: "z"}},
		ExpectedAnswer: raw,
	}
}

func TestNormalize_SingleChoice(t *testing.T) {
	q := singleQ("q1", "B")
	tests := []struct {
		name string
		raw  interface{}
		want Answer
	}{
		{name: "valid label", raw: "B", want: Answer{Label: "B"}},
		{name: "padded label", raw: " C ", want: Answer{Label: "C"}},
		{name: "single element array", raw: []interface{}{"A"}, want: Answer{Label: "A"}},
		{name: "two element array", raw: []interface{}{"A", "B"}, want: Answer{}},
		{name: "unknown label", raw: "E", want: Answer{}},
		{name: "empty string", raw: "", want: Answer{}},
		{name: "nil", raw: nil, want: Answer{}},
		{name: "wrong shape", raw: map[string]interface{}{"a": "b"}, want: Answer{}},
		{name: "raw json", raw: json.RawMessage(`"D"`), want: Answer{Label: "D"}},
		{name: "broken raw json", raw: json.RawMessage(`"D`), want: Answer{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(q, tc.raw))
		})
	}
}

func TestNormalize_MultiSelect(t *testing.T) {
	q := multiQ("q1", "A", "C")
	tests := []struct {
		name string
		raw  interface{}
		want Answer
	}{
		{name: "sorted and deduplicated", raw: []interface{}{"C", "A", "C"}, want: Answer{Labels: []string{"A", "C"}}},
		{name: "invalid labels dropped", raw: []string{"A", "Z", ""}, want: Answer{Labels: []string{"A"}}},
		{name: "only invalid labels", raw: []string{"Z"}, want: Answer{}},
		{name: "empty", raw: []interface{}{}, want: Answer{}},
		{name: "scalar", raw: "A", want: Answer{}},
		{name: "number elements skipped", raw: []interface{}{1.0, "B"}, want: Answer{Labels: []string{"B"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(q, tc.raw))
		})
	}
}

func TestNormalize_Matching(t *testing.T) {
	q := matchQ("q1", map[string]string{"1": "x", "2": "y"})
	tests := []struct {
		name string
		raw  interface{}
		want Answer
	}{
		{name: "full", raw: map[string]interface{}{"1": "x", "2": "z"}, want: Answer{Pairs: map[string]string{"1": "x", "2": "z"}}},
		{name: "partial", raw: map[string]string{"1": "x"}, want: Answer{Pairs: map[string]string{"1": "x"}}},
		{name: "unknown ids dropped", raw: map[string]interface{}{"1": "q", "9": "x", "2": "y"}, want: Answer{Pairs: map[string]string{"2": "y"}}},
		{name: "all unknown", raw: map[string]interface{}{"9": "x"}, want: Answer{}},
		{name: "array", raw: []interface{}{"x"}, want: Answer{}},
		{name: "nil", raw: nil, want: Answer{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(q, tc.raw))
		})
	}
}

func TestIsCorrect_MultiSelectExactSet(t *testing.T) {
	expected := Answer{Labels: []string{"A", "C"}}
	assert.True(t, IsCorrect(exam.TypeMultiSelect, expected, Answer{Labels: []string{"A", "C"}}))
	assert.False(t, IsCorrect(exam.TypeMultiSelect, expected, Answer{Labels: []string{"A", "B", "C"}}), "superset")
	assert.False(t, IsCorrect(exam.TypeMultiSelect, expected, Answer{Labels: []string{"A"}}), "subset")
	assert.False(t, IsCorrect(exam.TypeMultiSelect, expected, Answer{Labels: []string{"A", "D"}}), "same size, different set")
	assert.False(t, IsCorrect(exam.TypeMultiSelect, expected, Answer{}), "empty")
}

func TestIsCorrect_MatchingKeyOrderIndependent(t *testing.T) {
	q := matchQ("q1", map[string]string{"1": "x", "2": "y"})
	expected, err := matchingStrategy{}.Expected(q)
	require.NoError(t, err)

	sub := Normalize(q, json.RawMessage(`{"2":"y","1":"x"}`))
	assert.True(t, IsCorrect(exam.TypeMatching, expected, sub))
	assert.False(t, IsCorrect(exam.TypeMatching, expected, Answer{Pairs: map[string]string{"1": "x"}}))
	assert.False(t, IsCorrect(exam.TypeMatching, expected, Answer{Pairs: map[string]string{"1": "x", "2": "x"}}))
}

func TestIsCorrect_UnknownType(t *testing.T) {
	assert.False(t, IsCorrect("essay", Answer{Label: "A"}, Answer{Label: "A"}))
}

func TestCheck_AuthoringDefects(t *testing.T) {
	tests := []struct {
		name string
		q    exam.Question
		ok   bool
	}{
		{name: "single ok", q: singleQ("q", "B"), ok: true},
		{name: "single unknown label", q: singleQ("q", "Z")},
		{name: "single missing key", q: exam.Question{ID: "q", Type: exam.TypeSingleChoice, Options: []exam.Option{{Label: "A"}}}},
		{name: "single null key", q: exam.Question{ID: "q", Type: exam.TypeSingleChoice, Options: []exam.Option{{Label: "A"}}, ExpectedAnswer: json.RawMessage(`null`)}},
		{name: "multi ok", q: multiQ("q", "A", "D"), ok: true},
		{name: "multi unknown label", q: multiQ("q", "A", "Q")},
		{name: "multi empty", q: multiQ("q")},
		{name: "matching ok", q: matchQ("q", map[string]string{"1": "x", "2": "x"}), ok: true},
		{name: "matching unknown right", q: matchQ("q", map[string]string{"1": "x", "2": "w"})},
		{name: "matching not total", q: matchQ("q", map[string]string{"1": "x"})},
		{name: "unknown type", q: exam.Question{ID: "q", Type: "essay"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.q)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPairDetail(t *testing.T) {
	q := matchQ("q1", map[string]string{"1": "x", "2": "y"})
	s := matchingStrategy{}
	expected, err := s.Expected(q)
	require.NoError(t, err)

	got := s.PairDetail(q, expected, Answer{Pairs: map[string]string{"2": "z"}})
	assert.Equal(t, []PairVerdict{
		{LeftID: "1", Expected: "x", Status: PairUnanswered},
		{LeftID: "2", Expected: "y", Submitted: "z", Status: PairWrong},
	}, got)
}

type alwaysRight struct{ singleChoiceStrategy }

func (alwaysRight) Evaluate(_, _ Answer) bool { return true }

func TestWithStrategy_Overrides(t *testing.T) {
	r := NewRegistry(WithStrategy(exam.TypeSingleChoice, alwaysRight{}))
	res := r.Score(Meta{}, []exam.Question{singleQ("q1", "B")}, map[string]interface{}{"q1": "A"})
	assert.Equal(t, 1, res.Correct)
}

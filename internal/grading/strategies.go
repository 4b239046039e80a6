package grading

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-dumps/internal/exam"
)

var (
	errNoExpected   = errors.New("expected answer missing")
	errBadExpected  = errors.New("expected answer has wrong shape")
	errNoOptions    = errors.New("question has no options")
	errUnknownLabel = errors.New("expected answer references unknown option")
	errUnknownItem  = errors.New("expected answer references unknown item")
	errPartialKey   = errors.New("expected mapping does not cover every left item")
)

func decodeExpected(q exam.Question) (interface{}, error) {
	if len(q.ExpectedAnswer) == 0 {
		return nil, errNoExpected
	}
	var v interface{}
	if err := json.Unmarshal(q.ExpectedAnswer, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadExpected, err)
	}
	if v == nil {
		return nil, errNoExpected
	}
	return v, nil
}

// --- single-choice ---

type singleChoiceStrategy struct{}

func (singleChoiceStrategy) Expected(q exam.Question) (Answer, error) {
	if len(q.Options) == 0 {
		return Answer{}, errNoOptions
	}
	v, err := decodeExpected(q)
	if err != nil {
		return Answer{}, err
	}
	label, ok := scalarString(v)
	if !ok {
		return Answer{}, errBadExpected
	}
	if !q.HasOption(label) {
		return Answer{}, fmt.Errorf("%w: %q", errUnknownLabel, label)
	}
	return Answer{Label: label}, nil
}

func (singleChoiceStrategy) Normalize(q exam.Question, raw interface{}) Answer {
	raw = unwrap(raw)
	if arr, ok := toStringSlice(raw); ok {
		if len(arr) != 1 {
			return Answer{}
		}
		raw = arr[0]
	}
	label, ok := scalarString(raw)
	if !ok || !q.HasOption(label) {
		return Answer{}
	}
	return Answer{Label: label}
}

func (singleChoiceStrategy) Evaluate(expected, submitted Answer) bool {
	return submitted.Label != "" && submitted.Label == expected.Label
}

// --- multi-select ---

type multiSelectStrategy struct{}

func (multiSelectStrategy) Expected(q exam.Question) (Answer, error) {
	if len(q.Options) == 0 {
		return Answer{}, errNoOptions
	}
	v, err := decodeExpected(q)
	if err != nil {
		return Answer{}, err
	}
	arr, ok := toStringSlice(v)
	if !ok || len(arr) == 0 {
		return Answer{}, errBadExpected
	}
	set := make(map[string]struct{}, len(arr))
	for _, l := range arr {
		if !q.HasOption(l) {
			return Answer{}, fmt.Errorf("%w: %q", errUnknownLabel, l)
		}
		set[l] = struct{}{}
	}
	return Answer{Labels: sortedKeys(set)}, nil
}

func (multiSelectStrategy) Normalize(q exam.Question, raw interface{}) Answer {
	arr, ok := toStringSlice(unwrap(raw))
	if !ok {
		return Answer{}
	}
	set := make(map[string]struct{}, len(arr))
	for _, l := range arr {
		if q.HasOption(l) {
			set[l] = struct{}{}
		}
	}
	return Answer{Labels: sortedKeys(set)}
}

// Evaluate is exact set equality: any subset or superset is wrong.
func (multiSelectStrategy) Evaluate(expected, submitted Answer) bool {
	if len(submitted.Labels) == 0 || len(expected.Labels) != len(submitted.Labels) {
		return false
	}
	got := make(map[string]struct{}, len(submitted.Labels))
	for _, l := range submitted.Labels {
		got[l] = struct{}{}
	}
	for _, l := range expected.Labels {
		if _, ok := got[l]; !ok {
			return false
		}
	}
	return true
}

// --- matching ---

type matchingStrategy struct{}

func (matchingStrategy) Expected(q exam.Question) (Answer, error) {
	if len(q.LeftItems) == 0 || len(q.RightItems) == 0 {
		return Answer{}, errNoOptions
	}
	v, err := decodeExpected(q)
	if err != nil {
		return Answer{}, err
	}
	m, ok := toStringMap(v)
	if !ok || len(m) == 0 {
		return Answer{}, errBadExpected
	}
	for l, r := range m {
		if !q.HasLeft(l) || !q.HasRight(r) {
			return Answer{}, fmt.Errorf("%w: %q -> %q", errUnknownItem, l, r)
		}
	}
	for _, it := range q.LeftItems {
		if _, ok := m[it.ID]; !ok {
			return Answer{}, fmt.Errorf("%w: %q", errPartialKey, it.ID)
		}
	}
	return Answer{Pairs: m}, nil
}

func (matchingStrategy) Normalize(q exam.Question, raw interface{}) Answer {
	m, ok := toStringMap(unwrap(raw))
	if !ok {
		return Answer{}
	}
	out := make(map[string]string, len(m))
	for l, r := range m {
		if q.HasLeft(l) && q.HasRight(r) {
			out[l] = r
		}
	}
	if len(out) == 0 {
		return Answer{}
	}
	return Answer{Pairs: out}
}

// Evaluate compares key by key, so insertion order never matters. A left id
// missing from the submission is a mismatch.
func (matchingStrategy) Evaluate(expected, submitted Answer) bool {
	if len(expected.Pairs) == 0 || len(submitted.Pairs) == 0 {
		return false
	}
	for l, want := range expected.Pairs {
		if got, ok := submitted.Pairs[l]; !ok || got != want {
			return false
		}
	}
	return true
}

// PairDetail reports each row in the question's left-item order.
func (matchingStrategy) PairDetail(q exam.Question, expected, submitted Answer) []PairVerdict {
	out := make([]PairVerdict, 0, len(q.LeftItems))
	for _, it := range q.LeftItems {
		want, ok := expected.Pairs[it.ID]
		if !ok {
			continue
		}
		pv := PairVerdict{LeftID: it.ID, Expected: want}
		got, answered := submitted.Pairs[it.ID]
		switch {
		case !answered:
			pv.Status = PairUnanswered
		case got == want:
			pv.Submitted, pv.Status = got, PairCorrect
		default:
			pv.Submitted, pv.Status = got, PairWrong
		}
		out = append(out, pv)
	}
	return out
}

package exam

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryBank struct {
	mu   sync.RWMutex
	sets map[string]QuestionSet
}

func NewInMemoryBank() Bank {
	return &memoryBank{sets: map[string]QuestionSet{}}
}

func (m *memoryBank) Put(_ context.Context, s QuestionSet) error {
	if err := CheckShape(s); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.CreatedAt == 0 {
		s.CreatedAt = time.Now().Unix()
	}
	m.sets[s.ExamCode] = cloneSet(s)
	return nil
}

func (m *memoryBank) Get(_ context.Context, examCode string) (QuestionSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sets[examCode]
	if !ok {
		return QuestionSet{}, ErrNotFound
	}
	return cloneSet(s), nil
}

func (m *memoryBank) List(_ context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	out := make([]Summary, 0, len(m.sets))
	q := strings.ToLower(strings.TrimSpace(opts.Q))
	for _, s := range m.sets {
		if q != "" && !strings.Contains(strings.ToLower(s.ExamCode+" "+s.Title), q) {
			continue
		}
		out = append(out, summarize(s))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ExamCode < out[j].ExamCode })
	if opts.Offset >= len(out) {
		return []Summary{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

// cloneSet copies the question slice so callers can't mutate stored sets.
func cloneSet(s QuestionSet) QuestionSet {
	qs := make([]Question, len(s.Questions))
	copy(qs, s.Questions)
	s.Questions = qs
	return s
}

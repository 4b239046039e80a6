package results

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/mind-engage/mindengage-dumps/internal/grading"
)

var (
	ErrNotFound  = errors.New("result not found")
	ErrDuplicate = errors.New("result already exists for attempt")
	ErrInvalid   = errors.New("invalid submission")
)

type ListOpts struct {
	UserID   string
	ExamCode string
	Limit    int
	Offset   int
}

// Store persists scored attempts. Create is create-once: a second Create for
// the same attempt id fails with ErrDuplicate and leaves the first intact.
// List returns results newest first, without per-question verdicts.
type Store interface {
	Create(ctx context.Context, r grading.AttemptResult) error
	Get(ctx context.Context, attemptID string) (grading.AttemptResult, error)
	List(ctx context.Context, opts ListOpts) ([]grading.AttemptResult, error)
}

type memoryStore struct {
	mu      sync.RWMutex
	results map[string]grading.AttemptResult
}

func NewInMemoryStore() Store {
	return &memoryStore{results: map[string]grading.AttemptResult{}}
}

func (m *memoryStore) Create(_ context.Context, r grading.AttemptResult) error {
	if r.AttemptID == "" {
		return errors.New("attempt id required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.results[r.AttemptID]; ok {
		return ErrDuplicate
	}
	m.results[r.AttemptID] = r
	return nil
}

func (m *memoryStore) Get(_ context.Context, attemptID string) (grading.AttemptResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.results[attemptID]
	if !ok {
		return grading.AttemptResult{}, ErrNotFound
	}
	return r, nil
}

func (m *memoryStore) List(_ context.Context, opts ListOpts) ([]grading.AttemptResult, error) {
	m.mu.RLock()
	out := make([]grading.AttemptResult, 0)
	for _, r := range m.results {
		if opts.UserID != "" && r.UserID != opts.UserID {
			continue
		}
		if opts.ExamCode != "" && r.ExamCode != opts.ExamCode {
			continue
		}
		r.Questions = nil
		out = append(out, r)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CompletedAt != out[j].CompletedAt {
			return out[i].CompletedAt > out[j].CompletedAt
		}
		return out[i].AttemptID < out[j].AttemptID
	})
	return page(out, opts.Limit, opts.Offset), nil
}

func page(in []grading.AttemptResult, limit, offset int) []grading.AttemptResult {
	if offset >= len(in) {
		return []grading.AttemptResult{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}

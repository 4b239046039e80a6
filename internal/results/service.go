package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-dumps/internal/exam"
	"github.com/mind-engage/mindengage-dumps/internal/grading"
	syncx "github.com/mind-engage/mindengage-dumps/internal/sync"
)

// EventAppender receives an AttemptScored event per persisted result.
type EventAppender interface {
	Append(ctx context.Context, e syncx.Event) error
}

// Submission is a completed attempt handed over by the test-taking UI.
// AttemptID may be empty, in which case a fresh one is assigned.
type Submission struct {
	AttemptID       string                 `json:"attempt_id,omitempty"`
	ExamCode        string                 `json:"exam_code"`
	UserID          string                 `json:"-"`
	DurationSeconds int                    `json:"duration_seconds"`
	Answers         map[string]interface{} `json:"answers"`
}

// Service wires the bank, the scorer and persistence together.
type Service struct {
	bank   exam.Bank
	store  Store
	events EventAppender
	scorer *grading.Registry

	defaultPassing float64
	now            func() time.Time
	newID          func() string
}

type ServiceOption func(*Service)

func WithEvents(e EventAppender) ServiceOption    { return func(s *Service) { s.events = e } }
func WithClock(now func() time.Time) ServiceOption { return func(s *Service) { s.now = now } }
func WithIDs(newID func() string) ServiceOption    { return func(s *Service) { s.newID = newID } }
func WithRegistry(r *grading.Registry) ServiceOption {
	return func(s *Service) { s.scorer = r }
}

// WithDefaultPassingScore applies when an exam's configuration carries none.
func WithDefaultPassingScore(p float64) ServiceOption {
	return func(s *Service) { s.defaultPassing = p }
}

func NewService(bank exam.Bank, store Store, opts ...ServiceOption) *Service {
	s := &Service{
		bank:   bank,
		store:  store,
		scorer: grading.NewRegistry(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) score(ctx context.Context, sub Submission) (grading.AttemptResult, error) {
	if strings.TrimSpace(sub.ExamCode) == "" {
		return grading.AttemptResult{}, fmt.Errorf("%w: exam_code required", ErrInvalid)
	}
	set, err := s.bank.Get(ctx, sub.ExamCode)
	if err != nil {
		return grading.AttemptResult{}, err
	}
	id := sub.AttemptID
	if id == "" {
		id = s.newID()
	}
	return s.scorer.Score(s.meta(set, id, sub.UserID, sub.DurationSeconds, s.now().Unix()), set.Questions, sub.Answers), nil
}

func (s *Service) meta(set exam.QuestionSet, attemptID, userID string, duration int, completedAt int64) grading.Meta {
	passing := set.Config.PassingScore
	if passing == 0 {
		passing = s.defaultPassing
	}
	return grading.Meta{
		AttemptID:       attemptID,
		ExamCode:        set.ExamCode,
		UserID:          userID,
		PassingScore:    passing,
		ExpectedTotal:   set.Config.TotalQuestions,
		DurationSeconds: duration,
		CompletedAt:     completedAt,
	}
}

// Submit scores an authenticated attempt exactly once and persists it.
// Re-submitting the same attempt id fails with ErrDuplicate.
func (s *Service) Submit(ctx context.Context, sub Submission) (grading.AttemptResult, error) {
	res, err := s.score(ctx, sub)
	if err != nil {
		return grading.AttemptResult{}, err
	}
	if err := s.store.Create(ctx, res); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			log.WithError(err).WithField("attempt_id", res.AttemptID).Error("persist result failed")
		}
		return grading.AttemptResult{}, err
	}
	s.emit(ctx, res)
	return res, nil
}

func (s *Service) emit(ctx context.Context, res grading.AttemptResult) {
	if s.events == nil {
		return
	}
	ev, err := syncx.NewEvent(syncx.TypeAttemptScored, res.AttemptID, map[string]interface{}{
		"exam_code":  res.ExamCode,
		"user_id":    res.UserID,
		"percentage": res.Percentage,
		"passed":     res.Passed,
	})
	if err == nil {
		err = s.events.Append(ctx, ev)
	}
	if err != nil {
		log.WithError(err).WithField("attempt_id", res.AttemptID).Error("append AttemptScored event failed")
	}
}

// Result loads a persisted result as stored; verdicts are never re-derived.
func (s *Service) Result(ctx context.Context, attemptID string) (grading.AttemptResult, error) {
	return s.store.Get(ctx, attemptID)
}

func (s *Service) List(ctx context.Context, opts ListOpts) ([]grading.AttemptResult, error) {
	return s.store.List(ctx, opts)
}

// Guest scores an anonymous attempt without storing anything and returns the
// result together with its portable token. With embedVerdicts false the
// token carries raw answers and review re-scores them.
func (s *Service) Guest(ctx context.Context, sub Submission, embedVerdicts bool) (grading.AttemptResult, string, error) {
	sub.UserID = ""
	res, err := s.score(ctx, sub)
	if err != nil {
		return grading.AttemptResult{}, "", err
	}
	var token string
	if embedVerdicts {
		token, err = Encode(res)
	} else {
		token, err = EncodeAnswers(GuestAnswers{
			AttemptID:       res.AttemptID,
			ExamCode:        res.ExamCode,
			Correct:         res.Correct,
			Total:           res.TotalQuestions,
			Attempted:       res.Attempted,
			DurationSeconds: res.DurationSeconds,
			CompletedAt:     res.CompletedAt,
			Answers:         sub.Answers,
		})
	}
	if err != nil {
		return grading.AttemptResult{}, "", fmt.Errorf("guest token: %w", err)
	}
	return res, token, nil
}

// ReviewToken renders a portable token. It never fails: a token that can't
// be decoded yields the zero result, and a token whose question set can no
// longer be resolved yields its counters without verdicts.
func (s *Service) ReviewToken(ctx context.Context, token string) grading.AttemptResult {
	p, err := Decode(token)
	if err != nil {
		log.WithError(err).Debug("review token rejected")
		return grading.AttemptResult{}
	}
	if p.Result != nil {
		return *p.Result
	}

	a := *p.Answers
	set, err := s.bank.Get(ctx, a.ExamCode)
	if err != nil {
		log.WithError(err).WithField("exam_code", a.ExamCode).Warn("question set unavailable for token review")
		return countersOnly(a)
	}
	return s.scorer.Score(s.meta(set, a.AttemptID, "", a.DurationSeconds, a.CompletedAt), set.Questions, a.Answers)
}

package grading

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-dumps/internal/exam"
)

// Meta identifies the attempt being scored. PassingScore and
// ExpectedTotal come from exam configuration.
type Meta struct {
	AttemptID       string
	ExamCode        string
	UserID          string
	PassingScore    float64
	ExpectedTotal   int
	DurationSeconds int
	CompletedAt     int64
}

// Score grades every question in exam order with the default registry.
func Score(meta Meta, questions []exam.Question, submissions map[string]interface{}) AttemptResult {
	return defaultRegistry.Score(meta, questions, submissions)
}

// Score is pure: the same inputs always produce an identical AttemptResult.
// A question whose expected answer can't be resolved is flagged unscoreable
// and kept out of the correct/wrong tally without aborting the attempt.
func (r *Registry) Score(meta Meta, questions []exam.Question, submissions map[string]interface{}) AttemptResult {
	res := AttemptResult{
		AttemptID:       meta.AttemptID,
		ExamCode:        meta.ExamCode,
		UserID:          meta.UserID,
		TotalQuestions:  len(questions),
		PassingScore:    meta.PassingScore,
		DurationSeconds: meta.DurationSeconds,
		CompletedAt:     meta.CompletedAt,
		Questions:       make([]Verdict, 0, len(questions)),
	}
	if meta.ExpectedTotal > 0 && meta.ExpectedTotal != len(questions) {
		log.WithFields(log.Fields{
			"exam_code": meta.ExamCode,
			"expected":  meta.ExpectedTotal,
			"actual":    len(questions),
		}).Warn("question count differs from exam configuration")
	}

	for _, q := range questions {
		v := r.verdict(q, submissions[q.ID])
		if v.Unscoreable {
			res.Unscoreable++
			log.WithFields(log.Fields{
				"exam_code":   meta.ExamCode,
				"question_id": q.ID,
				"reason":      v.Note,
			}).Warn("unscoreable question")
		} else if v.Attempted {
			res.Attempted++
			if v.IsCorrect {
				res.Correct++
			} else {
				res.Wrong++
			}
		}
		res.Questions = append(res.Questions, v)
	}

	res.Unattempted = res.TotalQuestions - res.Attempted
	res.Percentage = Percentage(res.Correct, res.TotalQuestions)
	res.Passed = res.Percentage >= meta.PassingScore
	return res
}

func (r *Registry) verdict(q exam.Question, raw interface{}) Verdict {
	v := Verdict{QuestionID: q.ID, QuestionType: q.Type, Explanation: q.Explanation}
	s, ok := r.Lookup(q.Type)
	if !ok {
		v.Unscoreable = true
		v.Note = ErrUnknownType.Error()
		return v
	}
	v.Submitted = s.Normalize(q, raw)
	v.Attempted = !v.Submitted.Empty()

	expected, err := s.Expected(q)
	if err != nil {
		v.Unscoreable = true
		v.Note = err.Error()
		return v
	}
	v.Expected = expected
	v.IsCorrect = v.Attempted && s.Evaluate(expected, v.Submitted)
	if pd, ok := s.(pairDetailer); ok {
		v.Pairs = pd.PairDetail(q, expected, v.Submitted)
	}
	return v
}

// Percentage is correct/total*100 rounded to two decimals; zero questions
// score zero.
func Percentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}

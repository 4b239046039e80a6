package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLBank keeps question sets in the exams table, questions as a JSON column.
type SQLBank struct {
	db *sql.DB
}

func NewSQLBank(db *sql.DB) *SQLBank {
	return &SQLBank{db: db}
}

func (s *SQLBank) Put(ctx context.Context, set QuestionSet) error {
	if err := CheckShape(set); err != nil {
		return err
	}
	qj, err := json.Marshal(set.Questions)
	if err != nil {
		return err
	}
	if set.CreatedAt == 0 {
		set.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (code,title,passing_score,total_questions,duration_sec,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (code) DO UPDATE SET title=EXCLUDED.title, passing_score=EXCLUDED.passing_score,
			total_questions=EXCLUDED.total_questions, duration_sec=EXCLUDED.duration_sec, questions_json=EXCLUDED.questions_json`,
		set.ExamCode, set.Title, set.Config.PassingScore, set.Config.TotalQuestions, set.Config.DurationSeconds, string(qj), set.CreatedAt)
	if err != nil {
		return fmt.Errorf("put exam %s: %w", set.ExamCode, err)
	}
	return nil
}

func (s *SQLBank) Get(ctx context.Context, examCode string) (QuestionSet, error) {
	row := s.db.QueryRowContext(ctx, `SELECT code,title,passing_score,total_questions,duration_sec,questions_json,created_at
		FROM exams WHERE code=$1`, examCode)
	var set QuestionSet
	var qjson string
	if err := row.Scan(&set.ExamCode, &set.Title, &set.Config.PassingScore, &set.Config.TotalQuestions,
		&set.Config.DurationSeconds, &qjson, &set.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QuestionSet{}, ErrNotFound
		}
		return QuestionSet{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &set.Questions); err != nil {
		return QuestionSet{}, fmt.Errorf("exam %s: decode questions: %w", examCode, err)
	}
	return set, nil
}

func (s *SQLBank) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	q := "%" + strings.ToLower(strings.TrimSpace(opts.Q)) + "%"
	rows, err := s.db.QueryContext(ctx, `SELECT code,title,passing_score,questions_json,created_at FROM exams
		WHERE LOWER(code) LIKE $1 OR LOWER(title) LIKE $1
		ORDER BY code LIMIT $2 OFFSET $3`, q, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var sm Summary
		var qjson string
		if err := rows.Scan(&sm.ExamCode, &sm.Title, &sm.PassingScore, &qjson, &sm.CreatedAt); err != nil {
			return nil, err
		}
		var qs []json.RawMessage
		if err := json.Unmarshal([]byte(qjson), &qs); err == nil {
			sm.TotalQuestions = len(qs)
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mind-engage/mindengage-dumps/internal/grading"
)

// SQLStore keeps results in attempt_results (sqlite or postgres). The full
// result, verdicts included, lives in result_json; the other columns exist
// for listing.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Create(ctx context.Context, r grading.AttemptResult) error {
	if r.AttemptID == "" {
		return errors.New("attempt id required")
	}
	buf, err := json.Marshal(r)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO attempt_results
		(id,exam_code,user_id,percentage,passed,completed_at,result_json)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (id) DO NOTHING`,
		r.AttemptID, r.ExamCode, r.UserID, r.Percentage, r.Passed, r.CompletedAt, string(buf))
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.AttemptID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDuplicate
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, attemptID string) (grading.AttemptResult, error) {
	var rjson string
	err := s.db.QueryRowContext(ctx, `SELECT result_json FROM attempt_results WHERE id=$1`, attemptID).Scan(&rjson)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return grading.AttemptResult{}, ErrNotFound
		}
		return grading.AttemptResult{}, err
	}
	var r grading.AttemptResult
	if err := json.Unmarshal([]byte(rjson), &r); err != nil {
		return grading.AttemptResult{}, fmt.Errorf("decode result %s: %w", attemptID, err)
	}
	return r, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]grading.AttemptResult, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT result_json FROM attempt_results
		WHERE ($1 = '' OR user_id = $1) AND ($2 = '' OR exam_code = $2)
		ORDER BY completed_at DESC, id ASC
		LIMIT $3 OFFSET $4`, opts.UserID, opts.ExamCode, limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []grading.AttemptResult{}
	for rows.Next() {
		var rjson string
		if err := rows.Scan(&rjson); err != nil {
			return nil, err
		}
		var r grading.AttemptResult
		if err := json.Unmarshal([]byte(rjson), &r); err != nil {
			return nil, err
		}
		r.Questions = nil
		out = append(out, r)
	}
	return out, rows.Err()
}

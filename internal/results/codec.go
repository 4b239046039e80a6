package results

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"

	"github.com/mind-engage/mindengage-dumps/internal/grading"
)

// Portable tokens are "v1." + base64url(deflate(json)). They are not signed:
// anyone can forge one, so a decoded token is only ever shown back to the
// person holding it.
const (
	tokenPrefix     = "v1."
	tokenVersion    = 1
	maxTokenPayload = 1 << 20
)

var ErrBadToken = errors.New("invalid result token")

// GuestAnswers is the reduced token payload: counters plus the raw answers,
// without verdicts. Verdicts are re-derived on review.
type GuestAnswers struct {
	AttemptID       string                 `json:"attempt_id"`
	ExamCode        string                 `json:"exam_code"`
	Correct         int                    `json:"correct"`
	Total           int                    `json:"total"`
	Attempted       int                    `json:"attempted"`
	DurationSeconds int                    `json:"duration_seconds,omitempty"`
	CompletedAt     int64                  `json:"completed_at"`
	Answers         map[string]interface{} `json:"answers,omitempty"`
}

// Payload is what a token carries: exactly one of Result or Answers.
type Payload struct {
	V       int                    `json:"v"`
	Result  *grading.AttemptResult `json:"r,omitempty"`
	Answers *GuestAnswers          `json:"a,omitempty"`
}

// Encode packs a full result, verdicts included.
func Encode(r grading.AttemptResult) (string, error) {
	return encodePayload(Payload{V: tokenVersion, Result: &r})
}

// EncodeAnswers packs the reduced form.
func EncodeAnswers(a GuestAnswers) (string, error) {
	return encodePayload(Payload{V: tokenVersion, Answers: &a})
}

func encodePayload(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode token: %w", err)
	}
	var buf bytes.Buffer
	zw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(raw); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return tokenPrefix + base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a token. Tokens are untrusted: every failure is reported as
// ErrBadToken and nothing here panics on hostile input.
func Decode(token string) (Payload, error) {
	token = strings.TrimSpace(token)
	if !strings.HasPrefix(token, tokenPrefix) {
		return Payload{}, fmt.Errorf("%w: unknown version", ErrBadToken)
	}
	compressed, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, tokenPrefix))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	zr := flate.NewReader(bytes.NewReader(compressed))
	defer zr.Close()
	raw, err := io.ReadAll(io.LimitReader(zr, maxTokenPayload+1))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if len(raw) > maxTokenPayload {
		return Payload{}, fmt.Errorf("%w: payload too large", ErrBadToken)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrBadToken, err)
	}
	if p.V != tokenVersion || (p.Result == nil) == (p.Answers == nil) {
		return Payload{}, fmt.Errorf("%w: malformed payload", ErrBadToken)
	}
	if p.Result != nil && !consistent(*p.Result) {
		return Payload{}, fmt.Errorf("%w: inconsistent counters", ErrBadToken)
	}
	return p, nil
}

// DecodeResult collapses Decode to the zero result on any failure. Tokens
// carrying only answers yield their counters without verdicts; use
// Service.ReviewToken to re-derive those.
func DecodeResult(token string) grading.AttemptResult {
	p, err := Decode(token)
	if err != nil {
		return grading.AttemptResult{}
	}
	if p.Result != nil {
		return *p.Result
	}
	return countersOnly(*p.Answers)
}

func countersOnly(a GuestAnswers) grading.AttemptResult {
	if a.Total < 0 || a.Attempted < 0 || a.Correct < 0 || a.Attempted > a.Total || a.Correct > a.Attempted {
		return grading.AttemptResult{}
	}
	r := grading.AttemptResult{
		AttemptID:       a.AttemptID,
		ExamCode:        a.ExamCode,
		TotalQuestions:  a.Total,
		Attempted:       a.Attempted,
		Unattempted:     a.Total - a.Attempted,
		Correct:         a.Correct,
		Wrong:           a.Attempted - a.Correct,
		DurationSeconds: a.DurationSeconds,
		CompletedAt:     a.CompletedAt,
	}
	r.Percentage = grading.Percentage(a.Correct, a.Total)
	return r
}

// consistent rejects hand-edited tokens whose counters don't add up.
func consistent(r grading.AttemptResult) bool {
	if r.TotalQuestions < 0 || r.Attempted < 0 || r.Correct < 0 || r.Wrong < 0 {
		return false
	}
	return r.Attempted == r.Correct+r.Wrong &&
		r.TotalQuestions == r.Attempted+r.Unattempted &&
		len(r.Questions) <= r.TotalQuestions
}

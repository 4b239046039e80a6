package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/mind-engage/mindengage-dumps/internal/auth/middleware"
	"github.com/mind-engage/mindengage-dumps/internal/grading"
	"github.com/mind-engage/mindengage-dumps/internal/rbac"
	"github.com/mind-engage/mindengage-dumps/internal/results"
)

// POST /attempts/submit
// The owner is always the bearer's subject; any user id in the body is ignored.
func SubmitAttemptHandler(svc *results.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub results.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub.UserID = authmw.SubjectFromContext(r.Context())
		res, err := svc.Submit(r.Context(), sub)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GET /results/{attemptID}?filter=all|correct|wrong|unattempted|unscoreable
// Owners see their own results; result:view-all sees any.
func GetResultHandler(svc *results.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.Result(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		if res.UserID != authmw.SubjectFromContext(r.Context()) && !rbac.Can(r.Context(), "result:view-all") {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, filtered(res, r))
	}
}

// GET /results?exam_code=&user_id=&limit=&offset=
// Without result:view-all the listing is forced to the caller's own results.
func ListResultsHandler(svc *results.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
		if !rbac.Can(r.Context(), "result:view-all") {
			userID = authmw.SubjectFromContext(r.Context())
		}
		list, err := svc.List(r.Context(), results.ListOpts{
			UserID:   userID,
			ExamCode: strings.TrimSpace(r.URL.Query().Get("exam_code")),
			Limit:    parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:   parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// POST /guest/attempts?embed=true
// Scores without persisting and returns the result plus its portable token.
// By default the token carries the raw answers and review re-scores them;
// embed=true freezes the verdicts into the token instead.
func GuestAttemptHandler(svc *results.Service, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub results.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		embed := r.URL.Query().Get("embed") == "true"
		res, token, err := svc.Guest(r.Context(), sub, embed)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"result":     res,
			"token":      token,
			"review_url": strings.TrimRight(publicURL, "/") + "/review/" + token,
		})
	}
}

// GET /review/{token}?filter=  and  POST /review {"token": "..."}
// Always 200: an undecodable token renders as the empty result.
func ReviewTokenHandler(svc *results.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")
		if r.Method == http.MethodPost {
			var req struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad json", http.StatusBadRequest)
				return
			}
			token = req.Token
		}
		writeJSON(w, http.StatusOK, filtered(svc.ReviewToken(r.Context(), token), r))
	}
}

func filtered(res grading.AttemptResult, r *http.Request) grading.AttemptResult {
	if f := r.URL.Query().Get("filter"); f != "" && f != grading.FilterAll {
		res.Questions = res.Verdicts(f)
	}
	return res
}

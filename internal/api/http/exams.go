package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	authmw "github.com/mind-engage/mindengage-dumps/internal/auth/middleware"
	"github.com/mind-engage/mindengage-dumps/internal/exam"
	"github.com/mind-engage/mindengage-dumps/internal/grading"
	"github.com/mind-engage/mindengage-dumps/internal/rbac"
)

type defect struct {
	QuestionID string `json:"question_id"`
	Reason     string `json:"reason"`
}

// POST /exams
// Structural problems reject the upload. Per-question authoring defects are
// reported back but the set is stored anyway; those questions score as
// unscoreable until fixed.
func UploadExamHandler(bank exam.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var set exam.QuestionSet
		if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := exam.CheckShape(set); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defects := []defect{}
		for _, q := range set.Questions {
			if err := grading.Check(q); err != nil {
				defects = append(defects, defect{QuestionID: q.ID, Reason: err.Error()})
			}
		}
		if set.CreatedAt == 0 {
			set.CreatedAt = time.Now().Unix()
		}
		if err := bank.Put(r.Context(), set); err != nil {
			writeError(w, r, err)
			return
		}
		if len(defects) > 0 {
			log.WithFields(log.Fields{
				"exam_code": set.ExamCode,
				"defects":   len(defects),
			}).Warn("question set stored with authoring defects")
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"exam_code": set.ExamCode,
			"questions": len(set.Questions),
			"defects":   defects,
		})
	}
}

// GET /exams?q=&limit=&offset=
func ListExamsHandler(bank exam.Bank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := bank.List(r.Context(), exam.ListOpts{
			Q:      strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /exams/{code}
// Anonymous callers and learners get the set without answer keys. A bearer
// token whose role holds exam:view-keys gets the full set.
func GetExamHandler(bank exam.Bank, authSvc *authmw.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := bank.Get(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		var viewerRole string
		if h := r.Header.Get("Authorization"); authSvc != nil && strings.HasPrefix(h, "Bearer ") {
			if claims, err := authSvc.Parse(strings.TrimPrefix(h, "Bearer ")); err == nil {
				viewerRole = claims.Role
			}
		}
		if !rbac.Can(rbac.WithRole(r.Context(), viewerRole), "exam:view-keys") {
			set = set.Public()
		}
		writeJSON(w, http.StatusOK, set)
	}
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/mind-engage/mindengage-dumps/internal/exam"
	"github.com/mind-engage/mindengage-dumps/internal/results"
	"github.com/mind-engage/mindengage-dumps/internal/storage"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store sentinels onto status codes. Anything unrecognised is
// logged and reported as a 500 without leaking its text.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, exam.ErrNotFound),
		errors.Is(err, results.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, results.ErrDuplicate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, results.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps core error kinds to HTTP statuses. Duplicate-attempt (409)
// and already-attempted (403) stay distinguishable from plain validation
// failures because the client UI branches on them.
func writeErr(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch quiz.KindOf(err) {
	case quiz.KindInvalidArgument:
		status = http.StatusBadRequest
	case quiz.KindNotFound:
		status = http.StatusNotFound
	case quiz.KindConflict:
		status = http.StatusConflict
	case quiz.KindForbidden:
		status = http.StatusForbidden
	}
	http.Error(w, err.Error(), status)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

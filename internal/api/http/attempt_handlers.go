package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/identity"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/rbac"
)

func currentAccount(r *http.Request, users identity.Resolver) (identity.Account, bool) {
	sub := rbac.SubjectFromContext(r.Context())
	if sub == "" {
		return identity.Account{}, false
	}
	a, err := users.Resolve(r.Context(), sub)
	if err != nil {
		return identity.Account{}, false
	}
	return a, true
}

// canViewAttempt: students see their own attempts, instructors see attempts
// on quizzes they created, admins see everything.
func canViewAttempt(r *http.Request, users identity.Resolver, quizzes quiz.QuizReader, a quiz.Attempt) bool {
	acct, ok := currentAccount(r, users)
	if !ok {
		return false
	}
	switch acct.Role {
	case "admin":
		return true
	case "instructor":
		z, err := quizzes.GetQuiz(r.Context(), a.QuizID)
		return err == nil && z.CreatedBy == acct.ID
	default:
		return a.UserID == acct.ID
	}
}

func GetAttemptHandler(ledger quiz.AttemptLedger, users identity.Resolver, quizzes quiz.QuizReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := ledger.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canViewAttempt(r, users, quizzes, a) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func AttemptAnswersHandler(ledger quiz.AttemptLedger, users identity.Resolver, quizzes quiz.QuizReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		a, err := ledger.GetAttempt(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !canViewAttempt(r, users, quizzes, a) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		answers, err := ledger.AnswersForAttempt(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, answers)
	}
}

// GET /attempts?quiz_id=...&user_id=...&status=...&limit=50&offset=0
// Callers without attempt:view-all are scoped to their own attempts.
func ListAttemptsHandler(ledger quiz.AttemptLedger, users identity.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct, ok := currentAccount(r, users)
		if !ok {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		userID := r.URL.Query().Get("user_id")
		if acct.Role != "admin" && acct.Role != "instructor" {
			userID = acct.ID
		}
		list, err := ledger.ListAttempts(r.Context(), quiz.AttemptListOpts{
			QuizID: r.URL.Query().Get("quiz_id"),
			UserID: userID,
			Status: r.URL.Query().Get("status"),
			Limit:  parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset: parseIntDefault(r.URL.Query().Get("offset"), 0),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func MyAttemptsHandler(ledger quiz.AttemptLedger, users identity.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		acct, ok := currentAccount(r, users)
		if !ok {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		list, err := ledger.ListAttempts(r.Context(), quiz.AttemptListOpts{UserID: acct.ID})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func DeleteAttemptHandler(ledger quiz.AttemptLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ledger.DeleteAttempt(r.Context(), chi.URLParam(r, "attemptID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func AverageScoreHandler(ledger quiz.AttemptLedger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		avg, err := ledger.AverageScore(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]float64{"average_score": avg})
	}
}

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/rbac"
)

type quizCreateReq struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	StartTime       *int64 `json:"start_time"` // unix seconds
	EndTime         *int64 `json:"end_time"`
	DurationMinutes int    `json:"duration_minutes"`
}

func CreateQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req quizCreateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		z := quiz.Quiz{
			Title:           req.Title,
			Description:     req.Description,
			Status:          req.Status,
			DurationMinutes: req.DurationMinutes,
			CreatedBy:       rbac.SubjectFromContext(r.Context()),
		}
		if req.StartTime != nil {
			t := time.Unix(*req.StartTime, 0)
			z.StartTime = &t
		}
		if req.EndTime != nil {
			t := time.Unix(*req.EndTime, 0)
			z.EndTime = &t
		}
		saved, err := store.PutQuiz(r.Context(), z)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

func ListQuizzesHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
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

func GetQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		z, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, z)
	}
}

func DeleteQuizHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// QuizQuestionsHandler serves the randomized question set for taking the
// quiz. Users who already attempted the quiz get 403.
func QuizQuestionsHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := svc.QuestionsForPresentation(r.Context(),
			chi.URLParam(r, "quizID"), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

// SubmitQuizHandler records and grades the caller's single attempt.
// Body: { "answers": { "<questionID>": <raw response> } }
func SubmitQuizHandler(svc *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers map[string]any `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		responses := make(map[string]string, len(req.Answers))
		for k, v := range req.Answers {
			responses[k] = stringify(v)
		}
		attempt, err := svc.Submit(r.Context(),
			chi.URLParam(r, "quizID"), rbac.SubjectFromContext(r.Context()), responses)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attempt)
	}
}

// stringify flattens a raw JSON response value to the text form grading
// expects. Numbers arrive as float64; render whole ones without a decimal.
func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

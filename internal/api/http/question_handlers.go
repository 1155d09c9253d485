package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizdesk/quizdesk/internal/quiz"
)

type questionCreateReq struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Points   int    `json:"points"`
	Category string `json:"category"`
	Options  []struct {
		Text      string `json:"text"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"options"`
}

func CreateQuestionHandler(store quiz.QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req questionCreateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q := quiz.Question{
			QuizID:   chi.URLParam(r, "quizID"),
			Text:     req.Text,
			Type:     req.Type,
			Points:   req.Points,
			Category: req.Category,
		}
		for _, o := range req.Options {
			q.Options = append(q.Options, quiz.Option{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		saved, err := store.PutQuestion(r.Context(), q)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, saved)
	}
}

// ListQuestionsHandler returns the authored question set with answer keys.
// Instructor/admin only; students get questions via the presentation route.
func ListQuestionsHandler(bank quiz.QuestionBank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questions, err := bank.QuestionsForQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, questions)
	}
}

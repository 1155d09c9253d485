package quiz

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Engine grades submitted responses against the current answer key.
// Grading is a pure function of (questions, responses); the engine fetches
// questions at grading time and leaves persistence to the caller.
type Engine struct {
	bank QuestionBank
}

func NewEngine(bank QuestionBank) *Engine { return &Engine{bank: bank} }

// Grade scores responses for the attempt and returns the graded attempt plus
// one Answer per question in the quiz. Unanswered questions are recorded as
// incorrect, never skipped from the total. An attempt without a user is
// programmer error and aborts grading.
func (e *Engine) Grade(ctx context.Context, a Attempt, responses map[string]string) (Attempt, []Answer, error) {
	if a.UserID == "" {
		return Attempt{}, nil, errf(KindInternal, "attempt %s has no user, cannot grade", a.ID)
	}
	questions, err := e.bank.QuestionsForQuiz(ctx, a.QuizID)
	if err != nil {
		return Attempt{}, nil, err
	}

	answers, score := scoreResponses(questions, responses)
	for i := range answers {
		answers[i].ID = uuid.NewString()
		answers[i].AttemptID = a.ID
	}

	s := float64(score)
	a.Score = &s
	a.Status = AttemptGraded
	return a, answers, nil
}

// scoreResponses is the deterministic core of grading: same questions and
// responses always yield the same answers and aggregate score.
func scoreResponses(questions []Question, responses map[string]string) ([]Answer, int) {
	totalPoints := 0
	earnedPoints := 0
	answers := make([]Answer, 0, len(questions))

	for _, q := range questions {
		totalPoints += q.PointsOrDefault()

		ans := Answer{QuestionID: q.ID}
		raw, answered := responses[q.ID]
		if answered {
			if q.Type == TypeTrueFalse {
				// Match the response text against option texts; fall back to
				// storing it as a free-text answer.
				if opt, ok := optionByText(q, raw); ok {
					ans.SelectedOptionID = opt.ID
				} else {
					ans.TextAnswer = raw
				}
			} else {
				// Other types submit an option identifier.
				if opt, ok := optionByID(q, raw); ok {
					ans.SelectedOptionID = opt.ID
				} else {
					ans.TextAnswer = raw
				}
			}

			if checkAnswer(q, raw) {
				ans.IsCorrect = true
				ans.PointsEarned = q.PointsOrDefault()
				earnedPoints += ans.PointsEarned
			}
		}
		answers = append(answers, ans)
	}

	score := 0
	if totalPoints > 0 {
		score = earnedPoints * 100 / totalPoints
	}
	return answers, score
}

// checkAnswer fails closed: only multiple-choice and true/false responses
// can ever match the key.
func checkAnswer(q Question, raw string) bool {
	switch q.Type {
	case TypeMultipleChoice:
		for _, opt := range q.Options {
			if opt.IsCorrect && opt.ID == raw {
				return true
			}
		}
	case TypeTrueFalse:
		for _, opt := range q.Options {
			if opt.IsCorrect && strings.EqualFold(opt.Text, raw) {
				return true
			}
		}
	}
	return false
}

func optionByText(q Question, text string) (Option, bool) {
	for _, opt := range q.Options {
		if strings.EqualFold(opt.Text, text) {
			return opt, true
		}
	}
	return Option{}, false
}

func optionByID(q Question, id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

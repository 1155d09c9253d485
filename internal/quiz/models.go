package quiz

import "time"

// Quiz lifecycle statuses. A sweep moves them forward only:
// draft -> published -> archived.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Attempt statuses. "pending" exists only between creation and grading
// inside a single submit call.
const (
	AttemptPending   = "pending"
	AttemptSubmitted = "submitted"
	AttemptGraded    = "graded"
)

// Question types.
const (
	TypeSingleChoice   = "single_choice"
	TypeMultipleChoice = "multiple_choice"
	TypeTrueFalse      = "true_false"
	TypeText           = "text"
)

type Option struct {
	ID         string `json:"id"`
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID       string   `json:"id"`
	QuizID   string   `json:"quiz_id"`
	Text     string   `json:"text"`
	Type     string   `json:"type"`
	Points   int      `json:"points"`
	Category string   `json:"category,omitempty"`
	Options  []Option `json:"options"`
}

type Quiz struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Status          string     `json:"status"`
	StartTime       *time.Time `json:"start_time,omitempty"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes,omitempty"`
	CreatedBy       string     `json:"created_by"`
	CreatedAt       int64      `json:"created_at,omitempty"`
}

// Attempt is one student's single recorded trial at a quiz. At most one
// non-deleted attempt may exist per (user, quiz); the attempts table
// enforces that with a unique index.
type Attempt struct {
	ID          string   `json:"id"`
	QuizID      string   `json:"quiz_id"`
	UserID      string   `json:"user_id"`
	Status      string   `json:"status"`
	Score       *float64 `json:"score"` // percentage, nil until graded
	StartedAt   int64    `json:"started_at"`
	SubmittedAt int64    `json:"submitted_at"`
}

// Answer records the graded outcome for one question of one attempt.
// Immutable after grading; re-grading is not supported.
type Answer struct {
	ID               string `json:"id"`
	AttemptID        string `json:"attempt_id"`
	QuestionID       string `json:"question_id"`
	SelectedOptionID string `json:"selected_option_id,omitempty"`
	TextAnswer       string `json:"text_answer,omitempty"`
	IsCorrect        bool   `json:"is_correct"`
	PointsEarned     int    `json:"points_earned"`
}

// PointsOrDefault returns the question's point value, treating an unset or
// non-positive value as 1.
func (q Question) PointsOrDefault() int {
	if q.Points <= 0 {
		return 1
	}
	return q.Points
}

// Available reports whether the quiz can be taken at the given instant:
// published and inside the [start, end] window when bounds are set.
func (z Quiz) Available(now time.Time) bool {
	if z.Status != StatusPublished {
		return false
	}
	if z.StartTime != nil && z.StartTime.After(now) {
		return false
	}
	if z.EndTime != nil && z.EndTime.Before(now) {
		return false
	}
	return true
}

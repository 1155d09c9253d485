package quiz

import "context"

type ListOpts struct {
	Status string
	Limit  int
	Offset int
}

type AttemptListOpts struct {
	QuizID string
	UserID string
	Status string
	Limit  int
	Offset int
}

// QuestionBank is read-only access to a quiz's questions with their options
// and correctness flags. Each call returns a consistent snapshot; grading
// re-fetches rather than freezing the key at presentation time.
type QuestionBank interface {
	QuestionsForQuiz(ctx context.Context, quizID string) ([]Question, error)
}

// QuizStore covers quiz authoring and lifecycle reads.
type QuizStore interface {
	PutQuiz(ctx context.Context, z Quiz) (Quiz, error)
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, opts ListOpts) ([]Quiz, error)
	DeleteQuiz(ctx context.Context, id string) error
	PutQuestion(ctx context.Context, q Question) (Question, error)
}

// AttemptLedger enforces at-most-one attempt per (user, quiz).
// RecordAttempt writes the attempt, its answers, and the final status/score
// in one transaction; a duplicate (user, quiz) pair fails with KindConflict
// via the storage-level unique index, never by silently succeeding.
type AttemptLedger interface {
	ExistingAttempt(ctx context.Context, quizID, userID string) (Attempt, bool, error)
	RecordAttempt(ctx context.Context, a Attempt, answers []Answer) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	DeleteAttempt(ctx context.Context, id string) error
	ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error)
	AnswersForAttempt(ctx context.Context, attemptID string) ([]Answer, error)
	AverageScore(ctx context.Context, quizID string) (float64, error)
}

package notify

import "context"

// Notifier is what the submission pipeline depends on.
type Notifier interface {
	QuizSubmitted(ctx context.Context, userID, quizTitle string) error
	QuizGraded(ctx context.Context, userID, quizTitle string, score int) error
}

// Fanout delivers to every sink, returning the first error after trying all.
type Fanout []Notifier

func (f Fanout) QuizSubmitted(ctx context.Context, userID, quizTitle string) error {
	var first error
	for _, n := range f {
		if err := n.QuizSubmitted(ctx, userID, quizTitle); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f Fanout) QuizGraded(ctx context.Context, userID, quizTitle string, score int) error {
	var first error
	for _, n := range f {
		if err := n.QuizGraded(ctx, userID, quizTitle, score); err != nil && first == nil {
			first = err
		}
	}
	return first
}

package quiz

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quizdesk/quizdesk/internal/identity"
)

// EventSink records side-effect audit events. Failures are logged and
// discarded; they never fail a submission.
type EventSink interface {
	Append(ctx context.Context, typ, key string, data any) error
}

// Notifier delivers "quiz submitted" / "quiz graded" notices to the student.
// Same contract as EventSink: fire and forget.
type Notifier interface {
	QuizSubmitted(ctx context.Context, userID, quizTitle string) error
	QuizGraded(ctx context.Context, userID, quizTitle string, score int) error
}

type QuizReader interface {
	GetQuiz(ctx context.Context, id string) (Quiz, error)
}

// Service is the submission use case: identity validation, the
// one-attempt-per-user gate, attempt creation, grading, persistence.
type Service struct {
	quizzes QuizReader
	bank    QuestionBank
	ledger  AttemptLedger
	engine  *Engine
	users   identity.Resolver
	audit   EventSink
	notify  Notifier
	now     func() time.Time
}

func NewService(quizzes QuizReader, bank QuestionBank, ledger AttemptLedger, users identity.Resolver, audit EventSink, notify Notifier) *Service {
	return &Service{
		quizzes: quizzes,
		bank:    bank,
		ledger:  ledger,
		engine:  NewEngine(bank),
		users:   users,
		audit:   audit,
		notify:  notify,
		now:     time.Now,
	}
}

// Submit records exactly one attempt for (user, quiz) and grades it when
// responses were supplied. Submission is modeled as instantaneous: started-at
// and submitted-at are both "now". The create-and-grade sequence is one
// atomic write; a failure anywhere leaves no attempt behind.
func (s *Service) Submit(ctx context.Context, quizID, principal string, responses map[string]string) (Attempt, error) {
	if quizID == "" {
		return Attempt{}, errf(KindInvalidArgument, "quiz id required")
	}
	if principal == "" {
		return Attempt{}, errf(KindInvalidArgument, "identity required")
	}

	user, err := s.users.Resolve(ctx, principal)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return Attempt{}, errf(KindNotFound, "unknown user %q", principal)
		}
		return Attempt{}, wrap(KindInternal, "resolve user", err)
	}

	z, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	if !z.Available(s.now()) {
		return Attempt{}, errf(KindForbidden, "quiz %q is not open for submissions", z.Title)
	}

	// Fast-path duplicate check. The unique index on (user_id, quiz_id) is
	// the authoritative guard; RecordAttempt surfaces the race as Conflict.
	if _, exists, err := s.ledger.ExistingAttempt(ctx, quizID, user.ID); err != nil {
		return Attempt{}, err
	} else if exists {
		return Attempt{}, errf(KindConflict, "quiz already attempted, each quiz can only be taken once")
	}

	now := s.now().Unix()
	attempt := Attempt{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		UserID:      user.ID,
		Status:      AttemptSubmitted,
		StartedAt:   now,
		SubmittedAt: now,
	}

	var answers []Answer
	graded := false
	if len(responses) > 0 {
		attempt, answers, err = s.engine.Grade(ctx, attempt, responses)
		if err != nil {
			return Attempt{}, err
		}
		graded = true
	}

	attempt, err = s.ledger.RecordAttempt(ctx, attempt, answers)
	if err != nil {
		return Attempt{}, err
	}

	s.sideEffect("quiz_submitted", attempt, func() error {
		return s.notify.QuizSubmitted(ctx, user.ID, z.Title)
	})
	if graded {
		s.sideEffect("quiz_graded", attempt, func() error {
			return s.notify.QuizGraded(ctx, user.ID, z.Title, int(*attempt.Score))
		})
	}
	return attempt, nil
}

// QuestionsForPresentation returns a fresh randomized question set with
// answer keys stripped, refusing users who already took the quiz.
func (s *Service) QuestionsForPresentation(ctx context.Context, quizID, principal string) ([]Question, error) {
	if quizID == "" {
		return nil, errf(KindInvalidArgument, "quiz id required")
	}
	if principal == "" {
		return nil, errf(KindInvalidArgument, "identity required")
	}

	user, err := s.users.Resolve(ctx, principal)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return nil, errf(KindNotFound, "unknown user %q", principal)
		}
		return nil, wrap(KindInternal, "resolve user", err)
	}

	if _, exists, err := s.ledger.ExistingAttempt(ctx, quizID, user.ID); err != nil {
		return nil, err
	} else if exists {
		return nil, errf(KindForbidden, "quiz already attempted, each quiz can only be taken once")
	}

	z, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !z.Available(s.now()) {
		return nil, errf(KindForbidden, "quiz %q is not open", z.Title)
	}

	questions, err := s.bank.QuestionsForQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return StripAnswerKeys(Present(questions, true, true)), nil
}

// sideEffect runs audit + notification for one event, logging failures
// instead of propagating them.
func (s *Service) sideEffect(typ string, a Attempt, notify func() error) {
	if s.audit != nil {
		if err := s.audit.Append(context.Background(), typ, a.ID, a); err != nil {
			log.Printf("audit %s for attempt %s: %v", typ, a.ID, err)
		}
	}
	if s.notify != nil {
		if err := notify(); err != nil {
			log.Printf("notify %s for attempt %s: %v", typ, a.ID, err)
		}
	}
}

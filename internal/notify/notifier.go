// Package notify delivers student-facing notices. Delivery is best-effort:
// callers log failures and move on, a lost notice never fails a submission.
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Read      bool   `json:"read"`
	CreatedAt int64  `json:"created_at"`
}

// Store persists notifications so users can read them later.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) QuizSubmitted(ctx context.Context, userID, quizTitle string) error {
	return s.insert(ctx, userID, "Quiz Submitted",
		fmt.Sprintf("Your submission for %q was received.", quizTitle))
}

func (s *Store) QuizGraded(ctx context.Context, userID, quizTitle string, score int) error {
	return s.insert(ctx, userID, "Quiz Graded",
		fmt.Sprintf("Your quiz %q has been graded. Score: %d%%", quizTitle, score))
}

func (s *Store) insert(ctx context.Context, userID, title, message string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, title, message, read, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.NewString(), userID, title, message, false, time.Now().Unix())
	return err
}

func (s *Store) ForUser(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, message, read, created_at
		 FROM notifications WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE notifications SET read=$1 WHERE id=$2`, true, id)
	return err
}

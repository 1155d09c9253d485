package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

func (s *SQLStore) ExistingAttempt(ctx context.Context, quizID, userID string) (Attempt, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,quiz_id,user_id,status,score,started_at,submitted_at
		 FROM attempts WHERE quiz_id=$1 AND user_id=$2`, quizID, userID)
	a, err := scanAttempt(row)
	if err != nil {
		if IsNotFound(err) {
			return Attempt{}, false, nil
		}
		return Attempt{}, false, err
	}
	return a, true, nil
}

// RecordAttempt runs the whole write as one transaction: insert the attempt
// as submitted, append its answers, then promote it to graded when a score
// was computed. The unique index on (user_id, quiz_id) is the authoritative
// duplicate guard; ON CONFLICT DO NOTHING turns the losing writer into a
// clean Conflict instead of a driver-specific constraint error.
func (s *SQLStore) RecordAttempt(ctx context.Context, a Attempt, answers []Answer) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, wrap(KindInternal, "begin", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO attempts (id,quiz_id,user_id,status,score,started_at,submitted_at)
		 VALUES ($1,$2,$3,$4,NULL,$5,$6)
		 ON CONFLICT (user_id,quiz_id) DO NOTHING`,
		a.ID, a.QuizID, a.UserID, AttemptSubmitted, a.StartedAt, a.SubmittedAt)
	if err != nil {
		return Attempt{}, wrap(KindInternal, "insert attempt", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return Attempt{}, wrap(KindInternal, "insert attempt", err)
	} else if n == 0 {
		return Attempt{}, errf(KindConflict, "quiz already attempted, each quiz can only be taken once")
	}

	for _, ans := range answers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (id,attempt_id,question_id,selected_option_id,text_answer,is_correct,points_earned)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			ans.ID, ans.AttemptID, ans.QuestionID,
			nullIfEmpty(ans.SelectedOptionID), nullIfEmpty(ans.TextAnswer),
			ans.IsCorrect, ans.PointsEarned); err != nil {
			return Attempt{}, wrap(KindInternal, "insert answer", err)
		}
	}

	if a.Status == AttemptGraded && a.Score != nil {
		if _, err := tx.ExecContext(ctx,
			`UPDATE attempts SET status=$1, score=$2 WHERE id=$3`,
			AttemptGraded, *a.Score, a.ID); err != nil {
			return Attempt{}, wrap(KindInternal, "grade attempt", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Attempt{}, wrap(KindInternal, "commit attempt", err)
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,quiz_id,user_id,status,score,started_at,submitted_at
		 FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) DeleteAttempt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM attempts WHERE id=$1`, id)
	if err != nil {
		return wrap(KindInternal, "delete attempt", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errf(KindNotFound, "attempt %s not found", id)
	}
	return nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, opts AttemptListOpts) ([]Attempt, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := `SELECT id,quiz_id,user_id,status,score,started_at,submitted_at FROM attempts WHERE 1=1`
	args := []any{}
	n := 0
	add := func(clause string, v any) {
		n++
		args = append(args, v)
		q += clause + placeholder(n)
	}
	if opts.QuizID != "" {
		add(` AND quiz_id=`, opts.QuizID)
	}
	if opts.UserID != "" {
		add(` AND user_id=`, opts.UserID)
	}
	if opts.Status != "" {
		add(` AND status=`, opts.Status)
	}
	q += ` ORDER BY started_at DESC`
	add(` LIMIT `, limit)
	add(` OFFSET `, opts.Offset)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(KindInternal, "list attempts", err)
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) AnswersForAttempt(ctx context.Context, attemptID string) ([]Answer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,attempt_id,question_id,selected_option_id,text_answer,is_correct,points_earned
		 FROM answers WHERE attempt_id=$1 ORDER BY id`, attemptID)
	if err != nil {
		return nil, wrap(KindInternal, "list answers", err)
	}
	defer rows.Close()

	out := []Answer{}
	for rows.Next() {
		var ans Answer
		var opt, text sql.NullString
		if err := rows.Scan(&ans.ID, &ans.AttemptID, &ans.QuestionID, &opt, &text, &ans.IsCorrect, &ans.PointsEarned); err != nil {
			return nil, wrap(KindInternal, "scan answer", err)
		}
		ans.SelectedOptionID = opt.String
		ans.TextAnswer = text.String
		out = append(out, ans)
	}
	return out, rows.Err()
}

func (s *SQLStore) AverageScore(ctx context.Context, quizID string) (float64, error) {
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT AVG(score) FROM attempts WHERE quiz_id=$1 AND score IS NOT NULL`, quizID).Scan(&avg)
	if err != nil {
		return 0, wrap(KindInternal, "average score", err)
	}
	return avg.Float64, nil
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var score sql.NullFloat64
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.Status, &score, &a.StartedAt, &a.SubmittedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, errf(KindNotFound, "attempt not found")
	}
	if err != nil {
		return Attempt{}, wrap(KindInternal, "scan attempt", err)
	}
	if score.Valid {
		a.Score = &score.Float64
	}
	return a, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholder(n int) string { return fmt.Sprintf("$%d", n) }

package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// SQLStore implements QuizStore, QuestionBank, and AttemptLedger on
// database/sql. It works against both sqlite and postgres; every statement
// sticks to syntax both dialects accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutQuiz(ctx context.Context, z Quiz) (Quiz, error) {
	if z.ID == "" {
		z.ID = uuid.NewString()
	}
	if z.Status == "" {
		z.Status = StatusDraft
	}
	if z.Title == "" {
		return Quiz{}, errf(KindInvalidArgument, "quiz title required")
	}
	if z.CreatedAt == 0 {
		z.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,title,description,status,start_time,end_time,duration_minutes,created_by,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 ON CONFLICT (id) DO UPDATE SET
		   title=EXCLUDED.title,
		   description=EXCLUDED.description,
		   status=EXCLUDED.status,
		   start_time=EXCLUDED.start_time,
		   end_time=EXCLUDED.end_time,
		   duration_minutes=EXCLUDED.duration_minutes`,
		z.ID, z.Title, z.Description, z.Status,
		unixOrNil(z.StartTime), unixOrNil(z.EndTime),
		z.DurationMinutes, z.CreatedBy, z.CreatedAt)
	if err != nil {
		return Quiz{}, wrap(KindInternal, "put quiz", err)
	}
	return z, nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,description,status,start_time,end_time,duration_minutes,created_by,created_at
		 FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]Quiz, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	if opts.Status == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,title,description,status,start_time,end_time,duration_minutes,created_by,created_at
			 FROM quizzes ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, opts.Offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id,title,description,status,start_time,end_time,duration_minutes,created_by,created_at
			 FROM quizzes WHERE status=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			opts.Status, limit, opts.Offset)
	}
	if err != nil {
		return nil, wrap(KindInternal, "list quizzes", err)
	}
	defer rows.Close()

	out := []Quiz{}
	for rows.Next() {
		z, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (s *SQLStore) DeleteQuiz(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return wrap(KindInternal, "delete quiz", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errf(KindNotFound, "quiz %s not found", id)
	}
	return nil
}

// PutQuestion stores a question with its options in one transaction.
// True/false questions with no options get "True"/"False" synthesized;
// choice questions must carry at least one option flagged correct.
func (s *SQLStore) PutQuestion(ctx context.Context, q Question) (Question, error) {
	if q.QuizID == "" || q.Text == "" {
		return Question{}, errf(KindInvalidArgument, "question quiz_id and text required")
	}
	if q.Type == "" {
		q.Type = TypeSingleChoice
	}
	if q.Type == TypeTrueFalse && len(q.Options) == 0 {
		q.Options = []Option{{Text: "True"}, {Text: "False"}}
	}
	if q.Type == TypeSingleChoice || q.Type == TypeMultipleChoice {
		hasCorrect := false
		for _, opt := range q.Options {
			if opt.IsCorrect {
				hasCorrect = true
				break
			}
		}
		if !hasCorrect {
			return Question{}, errf(KindInvalidArgument, "%s question needs an option flagged correct", q.Type)
		}
	}
	if q.ID == "" {
		q.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Question{}, wrap(KindInternal, "begin", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, q.QuizID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, errf(KindNotFound, "quiz %s not found", q.QuizID)
		}
		return Question{}, wrap(KindInternal, "check quiz", err)
	}

	var pos int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position),0)+1 FROM questions WHERE quiz_id=$1`, q.QuizID).Scan(&pos); err != nil {
		return Question{}, wrap(KindInternal, "next position", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO questions (id,quiz_id,text,qtype,points,category,position)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		q.ID, q.QuizID, q.Text, q.Type, q.PointsOrDefault(), q.Category, pos); err != nil {
		return Question{}, wrap(KindInternal, "insert question", err)
	}
	for i := range q.Options {
		if q.Options[i].ID == "" {
			q.Options[i].ID = uuid.NewString()
		}
		q.Options[i].QuestionID = q.ID
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO options (id,question_id,text,is_correct) VALUES ($1,$2,$3,$4)`,
			q.Options[i].ID, q.ID, q.Options[i].Text, q.Options[i].IsCorrect); err != nil {
			return Question{}, wrap(KindInternal, "insert option", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Question{}, wrap(KindInternal, "commit question", err)
	}
	q.Points = q.PointsOrDefault()
	return q, nil
}

// QuestionsForQuiz reads a consistent snapshot of the quiz's questions with
// options and correctness flags, in authored order.
func (s *SQLStore) QuestionsForQuiz(ctx context.Context, quizID string) ([]Question, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, wrap(KindInternal, "begin", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, quizID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errf(KindNotFound, "quiz %s not found", quizID)
		}
		return nil, wrap(KindInternal, "check quiz", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id,quiz_id,text,qtype,points,category FROM questions
		 WHERE quiz_id=$1 ORDER BY position, id`, quizID)
	if err != nil {
		return nil, wrap(KindInternal, "query questions", err)
	}
	questions := []Question{}
	index := map[string]int{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Text, &q.Type, &q.Points, &q.Category); err != nil {
			rows.Close()
			return nil, wrap(KindInternal, "scan question", err)
		}
		index[q.ID] = len(questions)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, wrap(KindInternal, "questions", err)
	}
	rows.Close()

	orows, err := tx.QueryContext(ctx,
		`SELECT o.id,o.question_id,o.text,o.is_correct
		 FROM options o JOIN questions q ON q.id=o.question_id
		 WHERE q.quiz_id=$1 ORDER BY o.id`, quizID)
	if err != nil {
		return nil, wrap(KindInternal, "query options", err)
	}
	defer orows.Close()
	for orows.Next() {
		var o Option
		if err := orows.Scan(&o.ID, &o.QuestionID, &o.Text, &o.IsCorrect); err != nil {
			return nil, wrap(KindInternal, "scan option", err)
		}
		if i, ok := index[o.QuestionID]; ok {
			questions[i].Options = append(questions[i].Options, o)
		}
	}
	return questions, orows.Err()
}

// PublishDue flips draft quizzes whose start time has passed to published.
// ArchiveDue flips published quizzes whose end time has passed to archived.
// Both only ever move status forward.
func (s *SQLStore) PublishDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET status=$1
		 WHERE status=$2 AND start_time IS NOT NULL AND start_time <= $3`,
		StatusPublished, StatusDraft, now.Unix())
	if err != nil {
		return 0, wrap(KindInternal, "publish due", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) ArchiveDue(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE quizzes SET status=$1
		 WHERE status=$2 AND end_time IS NOT NULL AND end_time <= $3`,
		StatusArchived, StatusPublished, now.Unix())
	if err != nil {
		return 0, wrap(KindInternal, "archive due", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (Quiz, error) {
	var z Quiz
	var start, end sql.NullInt64
	var dur sql.NullInt64
	err := row.Scan(&z.ID, &z.Title, &z.Description, &z.Status, &start, &end, &dur, &z.CreatedBy, &z.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, errf(KindNotFound, "quiz not found")
	}
	if err != nil {
		return Quiz{}, wrap(KindInternal, "scan quiz", err)
	}
	if start.Valid {
		t := time.Unix(start.Int64, 0)
		z.StartTime = &t
	}
	if end.Valid {
		t := time.Unix(end.Int64, 0)
		z.EndTime = &t
	}
	if dur.Valid {
		z.DurationMinutes = int(dur.Int64)
	}
	return z, nil
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

package http_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	api "github.com/quizdesk/quizdesk/internal/api/http"
	auth "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/identity"
	"github.com/quizdesk/quizdesk/internal/notify"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/rbac"
)

var apiDBSeq int

type testEnv struct {
	srv    *httptest.Server
	db     *sql.DB
	auth   *auth.AuthService
	client *http.Client
}

// newTestEnv wires the real stack (sqlite, stores, service, router) behind an
// httptest server, seeded with one instructor and one student.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	apiDBSeq++
	dsn := fmt.Sprintf("file:apitest%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)", apiDBSeq)
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })

	seedUser(t, conn, "prof", "instructor")
	seedUser(t, conn, "alice", "student")

	store := quiz.NewSQLStore(conn)
	users := identity.NewSQLResolver(conn)
	notices := notify.NewStore(conn)
	svc := quiz.NewService(store, store, store, users, nil, notices)
	authSvc := auth.NewAuthService("api-test-secret")

	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.With(rbac.Require("quiz:create")).Post("/quizzes", api.CreateQuizHandler(store))
		pr.With(rbac.Require("quiz:view")).Get("/quizzes/{quizID}", api.GetQuizHandler(store))
		pr.With(rbac.Require("question:create")).Post("/quizzes/{quizID}/questions/authoring", api.CreateQuestionHandler(store))
		pr.With(rbac.Require("quiz:take")).Get("/quizzes/{quizID}/questions", api.QuizQuestionsHandler(svc))
		pr.With(rbac.Require("quiz:submit")).Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(svc))
		pr.With(rbac.Require("attempt:view-own")).Get("/attempts/mine", api.MyAttemptsHandler(store, users))
		pr.With(rbac.Require("notification:view")).Get("/notifications", api.MyNotificationsHandler(notices, users))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{srv: srv, db: conn, auth: authSvc, client: srv.Client()}
}

func seedUser(t *testing.T, conn *sql.DB, username, role string) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if _, err := conn.Exec(
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		uuid.NewString(), username, username+"@example.com", string(hash), role, time.Now().Unix()); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
}

// do sends a JSON request as the given user and decodes the response into out.
func (e *testEnv) do(t *testing.T, method, path, asUser, asRole string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, e.srv.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	tok, err := e.auth.IssueJWT(asUser, asRole)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (e *testEnv) createPublishedQuiz(t *testing.T) quiz.Quiz {
	t.Helper()
	var z quiz.Quiz
	code := e.do(t, "POST", "/quizzes", "prof", "instructor", map[string]any{
		"title":  "Biology 101",
		"status": "published",
	}, &z)
	if code != http.StatusCreated {
		t.Fatalf("create quiz: status %d", code)
	}
	return z
}

func (e *testEnv) addQuestion(t *testing.T, quizID string, body map[string]any) quiz.Question {
	t.Helper()
	var q quiz.Question
	code := e.do(t, "POST", "/quizzes/"+quizID+"/questions/authoring", "prof", "instructor", body, &q)
	if code != http.StatusCreated {
		t.Fatalf("add question: status %d", code)
	}
	return q
}

func TestTakeQuizFlow(t *testing.T) {
	e := newTestEnv(t)
	z := e.createPublishedQuiz(t)

	mc := e.addQuestion(t, z.ID, map[string]any{
		"text": "Powerhouse of the cell?",
		"type": quiz.TypeMultipleChoice,
		"options": []map[string]any{
			{"text": "Mitochondria", "is_correct": true},
			{"text": "Nucleus"},
		},
	})
	e.addQuestion(t, z.ID, map[string]any{
		"text": "Plants are animals.",
		"type": quiz.TypeTrueFalse,
		"options": []map[string]any{
			{"text": "True"},
			{"text": "False", "is_correct": true},
		},
	})

	// Student fetches the randomized set; keys must be stripped.
	var questions []quiz.Question
	if code := e.do(t, "GET", "/quizzes/"+z.ID+"/questions", "alice", "student", nil, &questions); code != http.StatusOK {
		t.Fatalf("questions: status %d", code)
	}
	if len(questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(questions))
	}
	for _, q := range questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				t.Fatalf("answer key leaked on question %s", q.ID)
			}
		}
	}

	var correctOpt string
	for _, o := range mc.Options {
		if o.IsCorrect {
			correctOpt = o.ID
		}
	}

	// Submit: mc right, tf wrong => 1 of 2 points = 50.
	var attempt quiz.Attempt
	code := e.do(t, "POST", "/quizzes/"+z.ID+"/submit", "alice", "student", map[string]any{
		"answers": map[string]any{
			mc.ID:          correctOpt,
			questions[0].ID + "-never": "ignored",
		},
	}, &attempt)
	if code != http.StatusOK {
		t.Fatalf("submit: status %d", code)
	}
	if attempt.Status != quiz.AttemptGraded {
		t.Fatalf("status = %q", attempt.Status)
	}
	if attempt.Score == nil || *attempt.Score != 50 {
		t.Fatalf("score = %v, want 50", attempt.Score)
	}

	// Second submission is refused with 409.
	if code := e.do(t, "POST", "/quizzes/"+z.ID+"/submit", "alice", "student", map[string]any{
		"answers": map[string]any{mc.ID: correctOpt},
	}, nil); code != http.StatusConflict {
		t.Fatalf("resubmit: status %d, want 409", code)
	}

	// Question presentation is now closed too.
	if code := e.do(t, "GET", "/quizzes/"+z.ID+"/questions", "alice", "student", nil, nil); code != http.StatusForbidden {
		t.Fatalf("questions after attempt: status %d, want 403", code)
	}

	// The attempt shows up under the student's own attempts.
	var mine []quiz.Attempt
	if code := e.do(t, "GET", "/attempts/mine", "alice", "student", nil, &mine); code != http.StatusOK {
		t.Fatalf("my attempts: status %d", code)
	}
	if len(mine) != 1 || mine[0].ID != attempt.ID {
		t.Fatalf("my attempts: %+v", mine)
	}

	// Submission left a notification behind.
	var notes []notify.Notification
	if code := e.do(t, "GET", "/notifications", "alice", "student", nil, &notes); code != http.StatusOK {
		t.Fatalf("notifications: status %d", code)
	}
	if len(notes) != 2 {
		t.Fatalf("notifications = %d, want submitted + graded", len(notes))
	}
}

func TestSubmitRBAC(t *testing.T) {
	e := newTestEnv(t)
	z := e.createPublishedQuiz(t)

	// Instructors cannot submit attempts.
	if code := e.do(t, "POST", "/quizzes/"+z.ID+"/submit", "prof", "instructor", map[string]any{
		"answers": map[string]any{},
	}, nil); code != http.StatusForbidden {
		t.Fatalf("instructor submit: status %d, want 403", code)
	}

	// Students cannot author quizzes.
	if code := e.do(t, "POST", "/quizzes", "alice", "student", map[string]any{
		"title": "sneaky",
	}, nil); code != http.StatusForbidden {
		t.Fatalf("student create: status %d, want 403", code)
	}
}

func TestSubmitUnavailableQuiz(t *testing.T) {
	e := newTestEnv(t)

	var draft quiz.Quiz
	if code := e.do(t, "POST", "/quizzes", "prof", "instructor", map[string]any{
		"title": "Draft quiz",
	}, &draft); code != http.StatusCreated {
		t.Fatalf("create: status %d", code)
	}

	if code := e.do(t, "POST", "/quizzes/"+draft.ID+"/submit", "alice", "student", map[string]any{
		"answers": map[string]any{},
	}, nil); code != http.StatusForbidden {
		t.Fatalf("submit draft: status %d, want 403", code)
	}
}

package auth_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	auth "github.com/quizdesk/quizdesk/internal/auth/middleware"
	"github.com/quizdesk/quizdesk/internal/rbac"
)

func TestIssueAndParse(t *testing.T) {
	a := auth.NewAuthService("test-secret")

	tok, err := a.IssueJWT("alice", "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "alice" || c.Role != "student" {
		t.Fatalf("claims: %+v", c)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	tok, err := auth.NewAuthService("key-one").IssueJWT("alice", "student")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.NewAuthService("key-two").Parse(tok); err == nil {
		t.Fatal("token signed with another key accepted")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	tok, _ := a.IssueJWT("bob", "instructor")

	var gotSub, gotRole string
	h := auth.JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = rbac.SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/quizzes", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotSub != "bob" || gotRole != "instructor" {
		t.Fatalf("context: sub=%q role=%q", gotSub, gotRole)
	}
}

func TestJWTMiddlewareRejects(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	h := auth.JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without a valid token")
	}))

	for name, header := range map[string]string{
		"missing": "",
		"basic":   "Basic abc",
		"garbage": "Bearer not.a.jwt",
	} {
		req := httptest.NewRequest("GET", "/quizzes", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", name, rec.Code)
		}
	}
}

func TestLoginHandler(t *testing.T) {
	a := auth.NewAuthService("test-secret")
	verify := func(_ context.Context, user, pass string) (string, string, error) {
		if user == "alice" && pass == "pw" {
			return "alice", "student", nil
		}
		return "", "", errors.New("invalid credentials")
	}
	h := auth.LoginHandler(a, verify)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "access_token") {
		t.Fatalf("body: %s", rec.Body)
	}

	req = httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"alice","password":"wrong"}`))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: status = %d", rec.Code)
	}
}

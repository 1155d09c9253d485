package identity_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/identity"
)

var dbSeq int

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:identtest%d?mode=memory&cache=shared", dbSeq)
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()

	if err := identity.EnsureAdmin(ctx, conn, "root", "secret"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	// Second call is a no-op, not a duplicate insert.
	if err := identity.EnsureAdmin(ctx, conn, "root", "secret"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(1) FROM users WHERE role='admin'`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("admins = %d, want 1", n)
	}
}

func TestResolveAndVerify(t *testing.T) {
	conn := newTestDB(t)
	ctx := context.Background()
	if err := identity.EnsureAdmin(ctx, conn, "Root", "secret"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	r := identity.NewSQLResolver(conn)

	// Username, case-insensitive.
	a, err := r.Resolve(ctx, "root")
	if err != nil {
		t.Fatalf("resolve by username: %v", err)
	}
	if a.Role != "admin" || a.ID == "" {
		t.Fatalf("account: %+v", a)
	}

	// Email fallback.
	if _, err := r.Resolve(ctx, "root@localhost"); err != nil {
		t.Fatalf("resolve by email: %v", err)
	}

	if _, err := r.Resolve(ctx, "nobody"); err != identity.ErrNotFound {
		t.Fatalf("unknown user: %v, want ErrNotFound", err)
	}

	if _, err := r.Verify(ctx, "root", "secret"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := r.Verify(ctx, "root", "wrong"); err == nil {
		t.Fatal("wrong password accepted")
	}
	if _, err := r.Verify(ctx, "nobody", "secret"); err != identity.ErrNotFound {
		t.Fatalf("verify unknown: %v", err)
	}
}

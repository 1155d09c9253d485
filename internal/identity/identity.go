// Package identity resolves authenticated principals to user records.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrNotFound = errors.New("user not found")

type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// Resolver maps a login name to a known account.
type Resolver interface {
	Resolve(ctx context.Context, usernameOrEmail string) (Account, error)
}

type SQLResolver struct {
	DB *sql.DB
}

func NewSQLResolver(db *sql.DB) *SQLResolver { return &SQLResolver{DB: db} }

// Resolve tries the username first, then the email, both case-insensitively.
func (r *SQLResolver) Resolve(ctx context.Context, usernameOrEmail string) (Account, error) {
	var a Account
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, username, email, role FROM users WHERE LOWER(username)=LOWER($1)`,
		usernameOrEmail,
	).Scan(&a.ID, &a.Username, &a.Email, &a.Role)
	if errors.Is(err, sql.ErrNoRows) {
		err = r.DB.QueryRowContext(ctx,
			`SELECT id, username, email, role FROM users WHERE LOWER(email)=LOWER($1)`,
			usernameOrEmail,
		).Scan(&a.ID, &a.Username, &a.Email, &a.Role)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, ErrNotFound
	}
	if err != nil {
		return Account{}, err
	}
	return a, nil
}

// Verify resolves the account and checks its bcrypt password hash.
func (r *SQLResolver) Verify(ctx context.Context, usernameOrEmail, password string) (Account, error) {
	a, err := r.Resolve(ctx, usernameOrEmail)
	if err != nil {
		return Account{}, err
	}
	var hash string
	if err := r.DB.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE id=$1`, a.ID,
	).Scan(&hash); err != nil {
		return Account{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return Account{}, errors.New("invalid credentials")
	}
	return a, nil
}

// EnsureAdmin seeds a default admin account on first start so a fresh
// database is usable without manual inserts.
func EnsureAdmin(ctx context.Context, db *sql.DB, username, password string) error {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE role='admin'`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at)
		 VALUES ($1,$2,$3,$4,'admin',$5)`,
		uuid.NewString(), username, username+"@localhost", string(hash), time.Now().Unix())
	return err
}

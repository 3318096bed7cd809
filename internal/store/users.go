package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates a login failure.
	ErrInvalidCredentials = errors.New("invalid username or password")

	dummyPasswordHash = []byte("$2a$10$CwTycUXWue0Thq9StjUM0uJ8n4VWeNseyX2fA9DE.D7su7J6iYGTC")
)

// User is an account allowed to edit the log.
type User struct {
	ID       int64
	Username string
	Email    string
}

// UpsertUser creates the user or, when the username exists, replaces its
// email and password.
func (s *Store) UpsertUser(ctx context.Context, username, email, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return User{}, fmt.Errorf("username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{Username: username, Email: strings.TrimSpace(email)}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (username)
		DO UPDATE SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash
		RETURNING id
	`, user.Username, user.Email, hash).Scan(&user.ID)
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}

	return user, nil
}

// VerifyCredentials checks a username/password pair.
func (s *Store) VerifyCredentials(ctx context.Context, username, password string) (User, error) {
	var (
		user User
		hash []byte
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash
		FROM users
		WHERE username = $1
	`, strings.TrimSpace(username)).Scan(&user.ID, &user.Username, &user.Email, &hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

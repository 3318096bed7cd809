package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"
)

func TestUpsertUserHashesPassword(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(username\)`).
		WithArgs("jimbo", "jimbo@example.com", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	user, err := s.UpsertUser(context.Background(), " jimbo ", "jimbo@example.com", "hunter22")
	if err != nil {
		t.Fatalf("UpsertUser error: %v", err)
	}
	if user.ID != 1 || user.Username != "jimbo" {
		t.Fatalf("unexpected user: %#v", user)
	}
	expectationsMet(t, mock)
}

func TestUpsertUserRequiresPassword(t *testing.T) {
	s, mock, _ := newMockStore(t)

	if _, err := s.UpsertUser(context.Background(), "jimbo", "", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
	expectationsMet(t, mock)
}

func TestVerifyCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"correct password", "hunter22", nil},
		{"wrong password", "hunter23", ErrInvalidCredentials},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, mock, _ := newMockStore(t)
			mock.ExpectQuery(`FROM users\s+WHERE username = \$1`).
				WithArgs("jimbo").
				WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
					AddRow(int64(1), "jimbo", "jimbo@example.com", hash))

			user, err := s.VerifyCredentials(context.Background(), "jimbo", tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && user.Username != "jimbo" {
				t.Fatalf("unexpected user: %#v", user)
			}
			expectationsMet(t, mock)
		})
	}
}

func TestVerifyCredentialsUnknownUser(t *testing.T) {
	s, mock, _ := newMockStore(t)

	mock.ExpectQuery(`FROM users`).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}))

	if _, err := s.VerifyCredentials(context.Background(), "nobody", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	expectationsMet(t, mock)
}

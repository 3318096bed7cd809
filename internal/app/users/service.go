package users

import (
	"context"

	"github.com/ryanjpeterson/jimbos-show-log/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	UpsertUser(ctx context.Context, username, email, password string) (store.User, error)
	VerifyCredentials(ctx context.Context, username, password string) (store.User, error)
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID int64, username string) (string, error)
}

// Service exposes the admin account workflows.
type Service interface {
	Login(ctx context.Context, username, password string) (string, error)
	Seed(ctx context.Context, username, email, password string) (store.User, error)
}

type service struct {
	store  Store
	tokens TokenIssuer
}

// New wires a Service backed by the provided Store.
func New(store Store, tokens TokenIssuer) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	user, err := s.store.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.ID, user.Username)
}

func (s *service) Seed(ctx context.Context, username, email, password string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UpsertUser(ctx, username, email, password)
}

package domain

import (
	"context"
	"errors"
)

// Source yields a bearer token from one scope. An empty string means the
// scope holds no token.
type Source interface {
	Name() string
	Token(ctx context.Context) (string, error)
}

// Resolver picks the bearer token for an outbound request.
type Resolver interface {
	Resolve(ctx context.Context) (string, bool)
}

// Store persists long-lived tokens by principal.
type Store interface {
	Find(ctx context.Context, principal string) (*AccessToken, error)
	Save(ctx context.Context, token *AccessToken) error
}

var (
	ErrInvalidPrincipal = errors.New("invalid_principal")
	ErrInvalidToken     = errors.New("invalid_token")
)

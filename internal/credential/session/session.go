// Package session carries the caller's own bearer token through a request.
package session

import (
	"context"
	"strings"
)

type tokenKey struct{}

// WithToken stores a request-scoped bearer token on ctx.
func WithToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(token)
	if ctx == nil || token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the request-scoped bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	parts := strings.Fields(strings.TrimSpace(header))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// Source resolves the request-scoped token.
type Source struct{}

func (Source) Name() string { return "session" }

func (Source) Token(ctx context.Context) (string, error) {
	return TokenFromContext(ctx), nil
}

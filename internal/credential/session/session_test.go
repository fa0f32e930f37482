package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":     "abc",
		"bearer abc":     "abc",
		"  Bearer  abc ": "abc",
		"Basic abc":      "",
		"Bearer":         "",
		"Bearer a b":     "",
		"":               "",
	}
	for header, want := range tests {
		assert.Equal(t, want, BearerToken(header), "header %q", header)
	}
}

func TestWithToken(t *testing.T) {
	ctx := WithToken(context.Background(), " abc ")
	assert.Equal(t, "abc", TokenFromContext(ctx))

	token, err := Source{}.Token(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "abc", token)

	empty := WithToken(context.Background(), "  ")
	assert.Empty(t, TokenFromContext(empty))
}

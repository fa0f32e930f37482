package sealer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretBoxRoundTrip(t *testing.T) {
	box, err := NewSecretBox("operator-secret")
	require.NoError(t, err)

	sealed, err := box.Seal("bearer-value")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, "sb1:"))
	assert.NotContains(t, sealed, "bearer-value")

	opened, err := box.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "bearer-value", opened)

	again, err := box.Seal("bearer-value")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "each seal uses a fresh nonce")
}

func TestSecretBoxRejectsWrongKeyAndTampering(t *testing.T) {
	box, err := NewSecretBox("key-a")
	require.NoError(t, err)
	other, err := NewSecretBox("key-b")
	require.NoError(t, err)

	sealed, err := box.Seal("value")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrCorruptSealed)

	_, err = box.Open("sb1:not-base64!")
	assert.ErrorIs(t, err, ErrCorruptSealed)

	_, err = box.Open("sb1:AAAA")
	assert.ErrorIs(t, err, ErrCorruptSealed)
}

func TestSecretBoxPassesThroughLegacyValues(t *testing.T) {
	box, err := NewSecretBox("key")
	require.NoError(t, err)

	opened, err := box.Open("plain-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", opened)
}

func TestNew(t *testing.T) {
	s, err := New("  ")
	require.NoError(t, err)
	assert.IsType(t, Plain{}, s)

	s, err = New("secret")
	require.NoError(t, err)
	assert.IsType(t, &SecretBox{}, s)

	_, err = NewSecretBox("")
	assert.ErrorIs(t, err, ErrEmptySecret)
}

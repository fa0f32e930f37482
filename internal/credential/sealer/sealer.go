// Package sealer encrypts persisted tokens at rest.
package sealer

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sb1:"
	nonceSize    = 24
	keyInfo      = "prepaid access token v1"
)

var (
	ErrEmptySecret   = errors.New("sealer_empty_secret")
	ErrCorruptSealed = errors.New("sealer_corrupt_value")
)

// Sealer converts tokens to and from their stored form.
type Sealer interface {
	Seal(plain string) (string, error)
	Open(stored string) (string, error)
}

// Plain stores tokens as-is.
type Plain struct{}

func (Plain) Seal(plain string) (string, error)  { return plain, nil }
func (Plain) Open(stored string) (string, error) { return stored, nil }

// SecretBox seals tokens with NaCl secretbox under a key derived from an
// operator secret. Values without the sealed prefix are returned unchanged so
// rows written before encryption was enabled keep working.
type SecretBox struct {
	key  [32]byte
	rand io.Reader
}

func NewSecretBox(secret string) (*SecretBox, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrEmptySecret
	}
	box := &SecretBox{rand: rand.Reader}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), box.key[:]); err != nil {
		return nil, err
	}
	return box, nil
}

func (b *SecretBox) Seal(plain string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(b.rand, nonce[:]); err != nil {
		return "", err
	}
	out := secretbox.Seal(nonce[:], []byte(plain), &nonce, &b.key)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (b *SecretBox) Open(stored string) (string, error) {
	if !strings.HasPrefix(stored, sealedPrefix) {
		return stored, nil
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrCorruptSealed
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &b.key)
	if !ok {
		return "", ErrCorruptSealed
	}
	return string(plain), nil
}

// New returns a SecretBox when secret is set and Plain otherwise.
func New(secret string) (Sealer, error) {
	if strings.TrimSpace(secret) == "" {
		return Plain{}, nil
	}
	return NewSecretBox(secret)
}

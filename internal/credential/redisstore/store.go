package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/prepaid/internal/credential/domain"
)

const keyPrefix = "prepaid:token:"

type storedToken struct {
	ID        int64          `json:"id"`
	Principal string         `json:"principal"`
	Token     string         `json:"token"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

type Store struct {
	client redis.Cmdable
	now    func() time.Time
}

func New(client redis.Cmdable) *Store {
	return &Store{client: client, now: time.Now}
}

func Key(principal string) string {
	return keyPrefix + strings.ToLower(strings.TrimSpace(principal))
}

func (s *Store) Find(ctx context.Context, principal string) (*domain.AccessToken, error) {
	if strings.TrimSpace(principal) == "" {
		return nil, domain.ErrInvalidPrincipal
	}
	raw, err := s.client.Get(ctx, Key(principal)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var stored storedToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &domain.AccessToken{
		ID:        snowflake.ID(stored.ID),
		Principal: stored.Principal,
		Token:     stored.Token,
		ExpiresAt: stored.ExpiresAt,
		Metadata:  stored.Metadata,
		CreatedAt: stored.CreatedAt,
		UpdatedAt: stored.UpdatedAt,
	}, nil
}

func (s *Store) Save(ctx context.Context, token *domain.AccessToken) error {
	if token == nil || strings.TrimSpace(token.Token) == "" {
		return domain.ErrInvalidToken
	}
	if strings.TrimSpace(token.Principal) == "" {
		return domain.ErrInvalidPrincipal
	}

	payload, err := json.Marshal(storedToken{
		ID:        token.ID.Int64(),
		Principal: token.Principal,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		Metadata:  token.Metadata,
		CreatedAt: token.CreatedAt,
		UpdatedAt: token.UpdatedAt,
	})
	if err != nil {
		return err
	}

	var ttl time.Duration
	if token.ExpiresAt != nil {
		ttl = token.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.client.Del(ctx, Key(token.Principal)).Err()
		}
	}
	return s.client.Set(ctx, Key(token.Principal), payload, ttl).Err()
}

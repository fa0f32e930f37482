package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/prepaid/internal/cache"
	"github.com/smallbiznis/prepaid/internal/clock"
	"github.com/smallbiznis/prepaid/internal/credential/domain"
	"github.com/smallbiznis/prepaid/internal/credential/sealer"
	"go.uber.org/zap"
)

// PersistedSource reads the long-lived token for one principal from a Store,
// keeping the last lookup in memory for cacheTTL. Tokens are sealed before
// they reach the store and the cache only holds opened values.
type PersistedSource struct {
	store     domain.Store
	sealer    sealer.Sealer
	principal string
	clock     clock.Clock
	genID     *snowflake.Node
	cache     cache.Cache[string, domain.AccessToken]
	cacheTTL  time.Duration
	log       *zap.Logger
}

type PersistedSourceParams struct {
	Store     domain.Store
	Sealer    sealer.Sealer
	Principal string
	Clock     clock.Clock
	GenID     *snowflake.Node
	CacheTTL  time.Duration
	Log       *zap.Logger
}

func NewPersistedSource(p PersistedSourceParams) *PersistedSource {
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	var c cache.Cache[string, domain.AccessToken] = cache.NoopCache[string, domain.AccessToken]{}
	if p.CacheTTL > 0 {
		c = cache.NewTTLCache[string, domain.AccessToken](clk)
	}
	var seal sealer.Sealer = sealer.Plain{}
	if p.Sealer != nil {
		seal = p.Sealer
	}
	return &PersistedSource{
		store:     p.Store,
		sealer:    seal,
		principal: strings.TrimSpace(p.Principal),
		clock:     clk,
		genID:     p.GenID,
		cache:     c,
		cacheTTL:  p.CacheTTL,
		log:       log.Named("credential.persisted"),
	}
}

func (s *PersistedSource) Name() string { return "persisted" }

func (s *PersistedSource) Token(ctx context.Context) (string, error) {
	if s == nil || s.store == nil || s.principal == "" {
		return "", nil
	}

	token, ok := s.cache.Get(s.principal)
	if !ok {
		found, err := s.store.Find(ctx, s.principal)
		if err != nil {
			return "", err
		}
		if found == nil {
			return "", nil
		}
		token = *found
		opened, err := s.sealer.Open(token.Token)
		if err != nil {
			return "", err
		}
		token.Token = opened
		s.cache.Set(s.principal, token, s.cacheTTL)
	}

	if token.Expired(s.clock.Now()) {
		s.log.Debug("persisted token expired", zap.String("principal", s.principal))
		return "", nil
	}
	return token.Token, nil
}

// Seed stores value as the principal's token, replacing any previous one.
func (s *PersistedSource) Seed(ctx context.Context, value string, expiresAt *time.Time) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.ErrInvalidToken
	}
	if s.principal == "" {
		return domain.ErrInvalidPrincipal
	}

	sealed, err := s.sealer.Seal(value)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	token := domain.AccessToken{
		Principal: s.principal,
		Token:     sealed,
		ExpiresAt: expiresAt,
		Metadata:  map[string]any{"source": "seed"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if s.genID != nil {
		token.ID = s.genID.Generate()
	}

	if err := s.store.Save(ctx, &token); err != nil {
		return err
	}
	s.cache.Delete(s.principal)
	s.log.Info("persisted token seeded", zap.String("principal", s.principal))
	return nil
}

// Package credential resolves the bearer token attached to calls to the
// prepaid history service.
package credential

import (
	"context"

	"github.com/smallbiznis/prepaid/internal/credential/domain"
	"go.uber.org/zap"
)

// ChainResolver returns the first non-empty token from its sources in order.
// A source that fails is logged and skipped.
type ChainResolver struct {
	sources []domain.Source
	log     *zap.Logger
}

func NewChainResolver(log *zap.Logger, sources ...domain.Source) *ChainResolver {
	if log == nil {
		log = zap.NewNop()
	}
	filtered := make([]domain.Source, 0, len(sources))
	for _, source := range sources {
		if source != nil {
			filtered = append(filtered, source)
		}
	}
	return &ChainResolver{sources: filtered, log: log.Named("credential.resolver")}
}

func (r *ChainResolver) Resolve(ctx context.Context) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, source := range r.sources {
		token, err := source.Token(ctx)
		if err != nil {
			r.log.Warn("token source failed", zap.String("source", source.Name()), zap.Error(err))
			continue
		}
		if token != "" {
			return token, true
		}
	}
	return "", false
}

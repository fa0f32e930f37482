package credential

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/prepaid/internal/clock"
	"github.com/smallbiznis/prepaid/internal/config"
	"github.com/smallbiznis/prepaid/internal/credential/domain"
	"github.com/smallbiznis/prepaid/internal/credential/redisstore"
	"github.com/smallbiznis/prepaid/internal/credential/repository"
	"github.com/smallbiznis/prepaid/internal/credential/sealer"
	"github.com/smallbiznis/prepaid/internal/credential/service"
	"github.com/smallbiznis/prepaid/internal/credential/session"
	"github.com/smallbiznis/prepaid/internal/migration"
	"github.com/smallbiznis/prepaid/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("credential",
	fx.Provide(newStore),
	fx.Provide(newPersistedSource),
	fx.Provide(newResolver),
	fx.Invoke(seedToken),
)

func newStore(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (domain.Store, error) {
	switch cfg.Tokens.Store {
	case config.TokenStoreNone:
		log.Info("persisted token store disabled")
		return nil, nil
	case config.TokenStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		return redisstore.New(client), nil
	default:
		dbCfg := db.FromAppConfig(cfg)
		conn, err := db.Open(lc, dbCfg, log)
		if err != nil {
			return nil, fmt.Errorf("open token database: %w", err)
		}
		if err := migration.Apply(conn, dbCfg.Type); err != nil {
			return nil, err
		}
		return repository.New(conn), nil
	}
}

func newPersistedSource(cfg config.Config, store domain.Store, clk clock.Clock, genID *snowflake.Node, log *zap.Logger) (*service.PersistedSource, error) {
	seal, err := sealer.New(cfg.Tokens.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("token sealer: %w", err)
	}
	return service.NewPersistedSource(service.PersistedSourceParams{
		Store:     store,
		Sealer:    seal,
		Principal: cfg.Tokens.Principal,
		Clock:     clk,
		GenID:     genID,
		CacheTTL:  cfg.Tokens.CacheTTL,
		Log:       log,
	}), nil
}

// Session scope first, persisted scope second.
func newResolver(log *zap.Logger, persisted *service.PersistedSource) domain.Resolver {
	return NewChainResolver(log, session.Source{}, persisted)
}

func seedToken(lc fx.Lifecycle, cfg config.Config, persisted *service.PersistedSource, log *zap.Logger) {
	if cfg.Tokens.Seed == "" || cfg.Tokens.Store == config.TokenStoreNone {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := persisted.Seed(ctx, cfg.Tokens.Seed, nil); err != nil {
				log.Warn("failed to seed persisted token", zap.Error(err))
			}
			return nil
		},
	})
}

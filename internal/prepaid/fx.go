package prepaid

import (
	"github.com/smallbiznis/prepaid/internal/config"
	credentialdomain "github.com/smallbiznis/prepaid/internal/credential/domain"
	"github.com/smallbiznis/prepaid/internal/prepaid/client"
	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"github.com/smallbiznis/prepaid/internal/prepaid/reconcile"
	"github.com/smallbiznis/prepaid/internal/prepaid/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("prepaid.service",
	fx.Provide(newFetcher),
	fx.Provide(newReconciler),
	fx.Provide(service.New),
)

func newFetcher(cfg config.Config, creds credentialdomain.Resolver, log *zap.Logger) (domain.RecordFetcher, error) {
	return client.New(client.Config{
		BaseURL:        cfg.Prepaid.BaseURL,
		Timeout:        cfg.Prepaid.Timeout,
		MaxRetries:     cfg.Prepaid.MaxRetries,
		RetryBaseDelay: cfg.Prepaid.RetryBaseDelay,
		RetryMaxDelay:  cfg.Prepaid.RetryMaxDelay,
		BreakerEnabled: cfg.Prepaid.BreakerEnabled,
	}, nil, creds, log)
}

func newReconciler() reconcile.Reconciler {
	return reconcile.New(reconcile.Max{})
}

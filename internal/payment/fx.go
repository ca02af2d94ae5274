package payment

import (
	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/smallbiznis/movieshop/internal/payment/adapters"
	"github.com/smallbiznis/movieshop/internal/payment/adapters/stub"
	"github.com/smallbiznis/movieshop/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("payment",
	fx.Provide(func() *adapters.Registry {
		return adapters.NewRegistry(stub.NewFactory())
	}),
	fx.Provide(provideCharger),
)

func provideCharger(cfg config.Config, registry *adapters.Registry, log *zap.Logger) (domain.Charger, error) {
	charger, err := registry.NewCharger(domain.AdapterConfig{
		Provider: cfg.PaymentProvider,
		Options:  cfg.PaymentOptions,
	})
	if err != nil {
		log.Error("payment provider unavailable",
			zap.String("provider", cfg.PaymentProvider),
			zap.Strings("registered", registry.Providers()),
			zap.Error(err))
		return nil, err
	}
	log.Info("payment provider configured", zap.String("provider", cfg.PaymentProvider))
	return charger, nil
}

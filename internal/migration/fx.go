package migration

import (
	"context"

	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/smallbiznis/movieshop/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger, sp seed.Params) error {
		if cfg.Bootstrap.RunMigrations {
			if err := Run(conn); err != nil {
				return err
			}
			log.Info("migrations applied", zap.String("dialect", conn.Dialector.Name()))
		}
		return seed.Run(context.Background(), sp)
	}),
)

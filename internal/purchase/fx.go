package purchase

import (
	"github.com/smallbiznis/movieshop/internal/purchase/domain"
	"github.com/smallbiznis/movieshop/internal/purchase/service"
	"github.com/smallbiznis/movieshop/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(func(l *ratelimit.PurchaseLock) domain.Locker { return l }),
	fx.Provide(service.New),
)

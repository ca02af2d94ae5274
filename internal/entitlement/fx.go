package entitlement

import (
	"github.com/smallbiznis/movieshop/internal/entitlement/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("entitlement.repository",
	fx.Provide(repository.Provide),
)

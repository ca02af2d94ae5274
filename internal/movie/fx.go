package movie

import (
	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/smallbiznis/movieshop/internal/movie/domain"
	"github.com/smallbiznis/movieshop/internal/movie/repository"
	"github.com/smallbiznis/movieshop/internal/movie/service"
	"go.uber.org/fx"
)

var Module = fx.Module("movie.service",
	fx.Provide(func(h *config.CatalogConfigHolder) domain.CatalogLimits { return h }),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

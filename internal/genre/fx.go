package genre

import (
	"github.com/smallbiznis/movieshop/internal/genre/repository"
	"github.com/smallbiznis/movieshop/internal/genre/service"
	"go.uber.org/fx"
)

var Module = fx.Module("genre.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

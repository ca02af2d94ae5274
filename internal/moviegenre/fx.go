package moviegenre

import (
	"github.com/smallbiznis/movieshop/internal/moviegenre/repository"
	"github.com/smallbiznis/movieshop/internal/moviegenre/service"
	"go.uber.org/fx"
)

var Module = fx.Module("moviegenre.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)

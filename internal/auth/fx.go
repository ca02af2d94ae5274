package auth

import (
	"github.com/smallbiznis/movieshop/internal/auth/repository"
	"github.com/smallbiznis/movieshop/internal/auth/service"
	"github.com/smallbiznis/movieshop/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/movieshop/internal/clock"
	"github.com/smallbiznis/movieshop/internal/config"
	"github.com/smallbiznis/movieshop/internal/migration"
	"github.com/smallbiznis/movieshop/internal/observability"
	"github.com/smallbiznis/movieshop/internal/server"
	"github.com/smallbiznis/movieshop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Migrations and seeding run before the server starts listening.
		migration.Module,
		server.Module,
	)
	app.Run()
}

// RegisterSnowflake builds the id generator for this node. SNOWFLAKE_NODE must
// differ between replicas.
func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

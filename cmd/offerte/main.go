package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/offertehq/offerte/internal/clock"
	"github.com/offertehq/offerte/internal/config"
	"github.com/offertehq/offerte/internal/logger"
	"github.com/offertehq/offerte/internal/migration"
	"github.com/offertehq/offerte/internal/server"
	"github.com/offertehq/offerte/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(newSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)

	app.Run()
}

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

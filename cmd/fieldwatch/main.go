package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/civicworks/fieldwatch/internal/alert"
	"github.com/civicworks/fieldwatch/internal/clock"
	"github.com/civicworks/fieldwatch/internal/config"
	"github.com/civicworks/fieldwatch/internal/engine"
	"github.com/civicworks/fieldwatch/internal/logger"
	"github.com/civicworks/fieldwatch/internal/metrics"
	"github.com/civicworks/fieldwatch/internal/migration"
	"github.com/civicworks/fieldwatch/internal/notifier"
	"github.com/civicworks/fieldwatch/internal/server"
	"github.com/civicworks/fieldwatch/internal/workforce"
	"github.com/civicworks/fieldwatch/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Domains
		workforce.Module,
		alert.Module,
		notifier.Module,
		engine.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}

package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/migration"
	"github.com/mslabba/gst-invoice-generator/internal/observability"
	"github.com/mslabba/gst-invoice-generator/internal/server"
	"github.com/mslabba/gst-invoice-generator/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// HTTP API with the stock, buyer, seller profile and invoice domains
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

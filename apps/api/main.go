package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/salesdash/internal/clock"
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/customer"
	"github.com/smallbiznis/salesdash/internal/dashboard"
	"github.com/smallbiznis/salesdash/internal/importer"
	"github.com/smallbiznis/salesdash/internal/migration"
	"github.com/smallbiznis/salesdash/internal/observability"
	"github.com/smallbiznis/salesdash/internal/product"
	"github.com/smallbiznis/salesdash/internal/region"
	"github.com/smallbiznis/salesdash/internal/report"
	"github.com/smallbiznis/salesdash/internal/scheduler"
	"github.com/smallbiznis/salesdash/internal/server"
	"github.com/smallbiznis/salesdash/internal/transaction"
	"github.com/smallbiznis/salesdash/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domains served by the API
		product.Module,
		customer.Module,
		region.Module,
		transaction.Module,
		dashboard.Module,
		report.Module,

		// Import run history and the lock the snapshot refresh honors.
		importer.Module,
		scheduler.Module,

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

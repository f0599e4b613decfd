// Package cli implements the salesdash command-line interface.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

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
	"github.com/smallbiznis/salesdash/internal/transaction"
	"github.com/smallbiznis/salesdash/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// NewRootCommand builds the command tree. Each call returns a fresh tree so
// flag state never leaks between invocations.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "salesdash",
		Short: "Sales analytics loader and dashboard API",
		Long: `salesdash loads a star-schema sales extract (dim_product.csv,
dim_customer.csv, dim_region.csv, fact_sales.csv) into a relational store,
materializes dashboard snapshots and serves them over HTTP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newImportCommand(),
		newMaterializeCommand(),
		newGenerateCommand(),
		newReportCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(NewSnowflakeNode),
		db.Module,
		clock.Module,
		migration.Module,
	)
}

func domainModules() fx.Option {
	return fx.Options(
		product.Module,
		customer.Module,
		region.Module,
		transaction.Module,
		dashboard.Module,
		importer.Module,
		report.Module,
	)
}

func NewSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

// runOnce starts a short-lived app, runs fn, then stops the app. Targets
// are wired into opts with fx.Populate by the caller.
func runOnce(ctx context.Context, opts fx.Option, fn func(ctx context.Context) error) (err error) {
	app := fx.New(opts, fx.NopLogger)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); err == nil {
			err = stopErr
		}
	}()

	return fn(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

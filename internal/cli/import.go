package cli

import (
	"context"
	"fmt"

	"github.com/smallbiznis/salesdash/internal/importer"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newImportCommand() *cobra.Command {
	var (
		opts     importer.Options
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a sales extract and refresh dashboard snapshots",
		Long: `Upsert the product, customer and region dimensions, bulk insert the
fact rows and recompute the materialized dashboard snapshots.

Missing files are skipped with a warning. Fact rows whose product cannot be
resolved are dropped and counted as skipped.

Example:
  salesdash import --dir ./dwh_tables --batch-size 1000
  salesdash import --date-policy source --skip-metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if progress {
				out := cmd.ErrOrStderr()
				opts.Progress = func(p importer.Progress) {
					fmt.Fprintf(out, "batch %d: %d rows (%d inserted)\n", p.Batch, p.Size, p.Inserted)
				}
			}

			var pipeline *importer.Pipeline
			return runOnce(cmd.Context(), fx.Options(
				coreModules(),
				domainModules(),
				fx.Populate(&pipeline),
			), func(ctx context.Context) error {
				report, err := pipeline.Run(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "",
		"directory holding the extract files (default: IMPORT_DIR)")
	cmd.Flags().IntVar(&opts.BatchSize, "batch-size", 0,
		"fact rows per insert batch (default: IMPORT_BATCH_SIZE)")
	cmd.Flags().StringVar(&opts.DatePolicy, "date-policy", "",
		"transaction dates: synthetic or source (default: IMPORT_DATE_POLICY)")
	cmd.Flags().BoolVar(&opts.SkipMetrics, "skip-metrics", false,
		"do not recompute dashboard snapshots after loading")
	cmd.Flags().BoolVar(&progress, "progress", false,
		"print a line after every flushed batch")

	return cmd
}

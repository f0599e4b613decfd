package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/smallbiznis/salesdash/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newReportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the dashboard as a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			var renderer *report.Renderer
			return runOnce(cmd.Context(), fx.Options(
				coreModules(),
				domainModules(),
				fx.Populate(&renderer),
			), func(ctx context.Context) error {
				doc, err := renderer.Render(ctx)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, doc, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(doc))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&out, "out", "dashboard.pdf", "output file")
	return cmd
}

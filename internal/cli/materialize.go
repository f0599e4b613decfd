package cli

import (
	"context"

	"github.com/smallbiznis/salesdash/internal/dashboard/rollup"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newMaterializeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "materialize",
		Short: "Recompute dashboard snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			var svc *rollup.Service
			return runOnce(cmd.Context(), fx.Options(
				coreModules(),
				domainModules(),
				fx.Populate(&svc),
			), func(ctx context.Context) error {
				res, err := svc.Materialize(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

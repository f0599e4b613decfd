package cli

import (
	"github.com/smallbiznis/salesdash/internal/config"
	"github.com/smallbiznis/salesdash/internal/datagen"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	opts := datagen.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a sample sales extract",
		Long: `Write dim_product.csv, dim_customer.csv, dim_region.csv and
fact_sales.csv filled with fake but plausible data. The same --seed always
produces the same files.

Example:
  salesdash generate --dir ./dwh_tables --facts 10000 --seed 42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dir") {
				opts.Dir = config.Load().Import.Dir
			}
			g, err := datagen.New(opts)
			if err != nil {
				return err
			}
			res, err := g.Write()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", opts.Dir,
		"output directory (default: IMPORT_DIR)")
	cmd.Flags().IntVar(&opts.Products, "products", opts.Products, "number of products")
	cmd.Flags().IntVar(&opts.Customers, "customers", opts.Customers, "number of customers")
	cmd.Flags().IntVar(&opts.Regions, "regions", opts.Regions, "number of regions")
	cmd.Flags().IntVar(&opts.Facts, "facts", opts.Facts, "number of fact rows")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (0 picks one from the clock)")

	return cmd
}

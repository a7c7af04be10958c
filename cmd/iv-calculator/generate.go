package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/contactkeval/iv-calculator/internal/data"
)

func newGenerateCmd() *cobra.Command {
	var (
		count     int
		seed      int64
		withPrice bool
	)

	cmd := &cobra.Command{
		Use:   "generate FILE",
		Short: "write a synthetic batch file (.csv or .json)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.Errorf("count must be positive, got %d", count)
			}
			mode := data.ModeImpliedVol
			if withPrice {
				mode = data.ModePrice
			}

			records, err := data.NewSyntheticGenerator(seed).Records(count, mode)
			if err != nil {
				return err
			}
			if err := data.Write(args[0], records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d records to %s\n", len(records), args[0])
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1000, "number of records")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().BoolVar(&withPrice, "price-mode", false, "keep volatility and leave the price to compute")
	return cmd
}

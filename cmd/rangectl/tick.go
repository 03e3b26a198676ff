package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"liquidityRange/internal/dex"
	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/rangecalc"
)

func runTick(cmd *cobra.Command, args []string) error {
	tick, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid tick %q: %w", args[0], err)
	}
	decimals0, _ := cmd.Flags().GetUint8("decimals0")
	decimals1, _ := cmd.Flags().GetUint8("decimals1")

	sqrtPrice, err := rangecalc.SqrtPriceAtTick(int32(tick))
	if err != nil {
		return err
	}
	back, err := rangecalc.TickAtSqrtPrice(sqrtPrice)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "tick        %d\n", back)
	fmt.Fprintf(out, "sqrt price  %s\n", fixedpoint.String(sqrtPrice))
	fmt.Fprintf(out, "price       %s\n", dex.HumanPrice(sqrtPrice, decimals0, decimals1, 12))
	return nil
}

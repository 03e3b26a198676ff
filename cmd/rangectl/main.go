package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "rangectl",
		Short:        "Concentrated-liquidity range planner",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Solve and align a range against a live pool",
		RunE:  runPlan,
	}

	planCmd.Flags().String("rpc", "", "Ethereum RPC URL")
	planCmd.Flags().String("pool", "", "pool address")
	planCmd.Flags().String("factory", "0x1F98431c8aD98523631AE4a59f267346ea31F984", "pool factory address")
	planCmd.Flags().String("init-code-hash", "", "pool init code hash (defaults to Uniswap V3)")
	planCmd.Flags().String("amount0", "", "raw token0 amount")
	planCmd.Flags().String("amount1", "0", "raw token1 amount")
	planCmd.Flags().Uint32("width", 100, "range width in tenths of a percent (0-999)")
	planCmd.Flags().String("payer", "", "address paying for the mint")
	planCmd.Flags().String("recipient", "", "position owner (defaults to payer)")
	planCmd.Flags().String("spender", "", "contract allowed to pull the payer's tokens; enables the allowance check")
	planCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	planCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	planCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(planCmd)

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "Open a range against an in-memory pool",
		RunE:  runSimulate,
	}

	simulateCmd.Flags().String("factory", "0x1F98431c8aD98523631AE4a59f267346ea31F984", "pool factory address")
	simulateCmd.Flags().String("init-code-hash", "", "pool init code hash (defaults to Uniswap V3)")
	simulateCmd.Flags().String("token0", "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", "first pool token")
	simulateCmd.Flags().String("token1", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", "second pool token")
	simulateCmd.Flags().Uint32("fee", 500, "pool fee in hundredths of a bip")
	simulateCmd.Flags().Int32("tick-spacing", 0, "tick spacing, 0 derives it from the fee")
	simulateCmd.Flags().String("sqrt-price", "", "initial Q64.96 sqrt price (overrides --tick)")
	simulateCmd.Flags().Int32("tick", 0, "initial tick when --sqrt-price is not set")
	simulateCmd.Flags().String("amount0", "", "raw token0 amount")
	simulateCmd.Flags().String("amount1", "0", "raw token1 amount")
	simulateCmd.Flags().Uint32("width", 100, "range width in tenths of a percent (0-999)")
	simulateCmd.Flags().String("payer", "0x000000000000000000000000000000000000bEEF", "address paying for the mint")
	simulateCmd.Flags().String("recipient", "", "position owner (defaults to payer)")
	simulateCmd.Flags().String("out", "./data/range_opened.jsonl", "output JSONL path for range events")
	simulateCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for range events")
	simulateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(simulateCmd)

	tickCmd := &cobra.Command{
		Use:   "tick <tick>",
		Short: "Print the sqrt price at a tick",
		Args:  cobra.ExactArgs(1),
		RunE:  runTick,
	}

	tickCmd.Flags().Uint8("decimals0", 18, "token0 decimals for the human price")
	tickCmd.Flags().Uint8("decimals1", 18, "token1 decimals for the human price")

	root.AddCommand(tickCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

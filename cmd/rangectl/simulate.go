package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityRange/internal/config"
	"liquidityRange/internal/dex"
	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/model"
	"liquidityRange/internal/notify"
	"liquidityRange/internal/position"
	"liquidityRange/internal/rangecalc"
	"liquidityRange/internal/simpool"
	"liquidityRange/internal/storage"
	"liquidityRange/internal/storage/postgres"
)

// simulatedOperator stands in for the contract that holds the payer's approval.
var simulatedOperator = common.HexToAddress("0x000000000000000000000000000000000000c0DE")

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadSimulate(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	factory, err := config.ParseAddress("factory", cfg.Factory, true)
	if err != nil {
		return err
	}
	initCodeHash, err := config.ParseHash("init-code-hash", cfg.InitCodeHash)
	if err != nil {
		return err
	}
	token0, err := config.ParseAddress("token0", cfg.Token0, true)
	if err != nil {
		return err
	}
	token1, err := config.ParseAddress("token1", cfg.Token1, true)
	if err != nil {
		return err
	}
	payer, err := config.ParseAddress("payer", cfg.Payer, true)
	if err != nil {
		return err
	}
	recipient, err := config.ParseAddress("recipient", cfg.Recipient, false)
	if err != nil {
		return err
	}
	amount0, err := config.ParseAmount("amount0", cfg.Amount0)
	if err != nil {
		return err
	}
	amount1, err := config.ParseAmount("amount1", cfg.Amount1)
	if err != nil {
		return err
	}

	var sqrtPrice *uint256.Int
	if cfg.SqrtPrice != "" {
		sqrtPrice, err = config.ParseAmount("sqrt-price", cfg.SqrtPrice)
	} else {
		sqrtPrice, err = rangecalc.SqrtPriceAtTick(cfg.Tick)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := simpool.NewLedger()
	pool, err := simpool.New(simpool.Config{
		Factory:      factory,
		InitCodeHash: initCodeHash,
		Key:          model.PoolKey{Token0: token0, Token1: token1, Fee: cfg.Fee},
		TickSpacing:  cfg.TickSpacing,
		SqrtPriceX96: sqrtPrice,
	}, ledger, logger)
	if err != nil {
		return err
	}
	key := pool.Key()

	// The payer holds exactly what it asked to deposit and approves the operator for it.
	if err := fundAndApprove(ledger, key.Token0, payer, amount0); err != nil {
		return err
	}
	if err := fundAndApprove(ledger, key.Token1, payer, amount1); err != nil {
		return err
	}

	var journals []storage.Storage
	if cfg.Out != "" {
		journals = append(journals, storage.NewJsonlStorage(cfg.Out))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		journals = append(journals, store)
	}
	sinks := []notify.Notifier{notify.NewLogNotifier(logger)}
	for _, journal := range journals {
		sinks = append(sinks, storage.AsNotifier(journal))
	}

	service, err := position.NewService(position.Config{
		Factory:      factory,
		InitCodeHash: initCodeHash,
		Recipient:    recipient,
		Payer:        payer,
	}, ledger.Spender(simulatedOperator), logger, sinks...)
	if err != nil {
		return err
	}

	logger.Info("simulate start",
		zap.String("pool", pool.Address().Hex()),
		zap.String("token0", key.Token0.Hex()),
		zap.String("token1", key.Token1.Hex()),
		zap.Uint32("fee", key.Fee),
		zap.String("sqrt_price", fixedpoint.String(sqrtPrice)),
		zap.Uint32("width", cfg.Width),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)

	result, err := service.OpenRange(ctx, pool, amount0, amount1, cfg.Width)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pool        %s\n", result.Pool.Hex())
	fmt.Fprintf(out, "price       %s (raw token1 per token0)\n", dex.HumanPrice(sqrtPrice, 0, 0, 8))
	fmt.Fprintf(out, "raw ticks   [%d, %d]\n", result.RawTickLower, result.RawTickUpper)
	fmt.Fprintf(out, "ticks       [%d, %d]\n", result.TickLower, result.TickUpper)
	fmt.Fprintf(out, "liquidity   %s\n", fixedpoint.String(result.Liquidity))
	fmt.Fprintf(out, "amount0     %s of %s\n", fixedpoint.String(result.Amount0), fixedpoint.String(amount0))
	fmt.Fprintf(out, "amount1     %s of %s\n", fixedpoint.String(result.Amount1), fixedpoint.String(amount1))
	fmt.Fprintf(out, "position    %s\n", fixedpoint.String(pool.Position(service.Config().Recipient, result.TickLower, result.TickUpper)))
	return nil
}

func fundAndApprove(ledger *simpool.Ledger, token, owner common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return nil
	}
	if err := ledger.Fund(token, owner, amount); err != nil {
		return fmt.Errorf("fund %s: %w", token.Hex(), err)
	}
	ledger.Approve(token, owner, simulatedOperator, amount)
	return nil
}

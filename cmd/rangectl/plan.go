package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityRange/internal/callback"
	"liquidityRange/internal/chain"
	"liquidityRange/internal/config"
	"liquidityRange/internal/dex"
	"liquidityRange/internal/fixedpoint"
	"liquidityRange/internal/position"
)

func runPlan(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPlan(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.RPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	poolAddr, err := config.ParseAddress("pool", cfg.Pool, true)
	if err != nil {
		return err
	}
	factory, err := config.ParseAddress("factory", cfg.Factory, true)
	if err != nil {
		return err
	}
	initCodeHash, err := config.ParseHash("init-code-hash", cfg.InitCodeHash)
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
	spender, err := config.ParseAddress("spender", cfg.Spender, false)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	service, err := position.NewService(position.Config{
		Factory:      factory,
		InitCodeHash: initCodeHash,
		Recipient:    recipient,
		Payer:        payer,
	}, nil, logger)
	if err != nil {
		return err
	}

	if err := callback.CheckFactory(chainClient.ChainID(), factory, initCodeHash); err != nil {
		return err
	}

	// slot0 and liquidity come from the same block.
	block, err := chainClient.PinBlock(ctx)
	if err != nil {
		return err
	}
	pool := dex.NewChainPool(chainClient, poolAddr, cfg.MaxRetries, cfg.RetryBackoff, logger)
	state, err := pool.StateAt(ctx, block)
	if err != nil {
		return err
	}

	// A pool at another address would fail the mint callback; catch it early.
	verifier, err := callback.NewVerifier(factory, initCodeHash)
	if err != nil {
		return err
	}
	if _, err := verifier.Verify(state.Key, poolAddr); err != nil {
		return fmt.Errorf("pool %s is not deployed by factory %s: %w", poolAddr.Hex(), factory.Hex(), err)
	}

	result, err := service.Plan(state, amount0, amount1, cfg.Width)
	if err != nil {
		return err
	}

	data, err := callback.EncodeMintData(callback.MintData{Key: state.Key, Payer: payer})
	if err != nil {
		return err
	}
	calldata, err := dex.EncodeMint(service.Config().Recipient, result.TickLower, result.TickUpper, result.Liquidity, data)
	if err != nil {
		return err
	}

	token0, _ := pool.Token(state.Key.Token0)
	token1, _ := pool.Token(state.Key.Token1)

	logger.Info("range planned",
		zap.Uint64("chain_id", chainClient.ChainID()),
		zap.String("block", block.String()),
		zap.String("pool", poolAddr.Hex()),
		zap.Int32("tick", state.Tick),
		zap.Int32("tick_spacing", state.TickSpacing),
		zap.Int32("tick_lower", result.TickLower),
		zap.Int32("tick_upper", result.TickUpper),
		zap.String("liquidity", fixedpoint.String(result.Liquidity)),
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pool        %s (%s/%s fee %d)\n", poolAddr.Hex(), token0.Label(), token1.Label(), state.Key.Fee)
	fmt.Fprintf(out, "price       %s %s per %s (tick %d)\n",
		dex.HumanPrice(state.SqrtPriceX96, token0.Decimals, token1.Decimals, 8), token1.Label(), token0.Label(), state.Tick)
	fmt.Fprintf(out, "raw ticks   [%d, %d]\n", result.RawTickLower, result.RawTickUpper)
	fmt.Fprintf(out, "ticks       [%d, %d] spacing %d\n", result.TickLower, result.TickUpper, state.TickSpacing)
	fmt.Fprintf(out, "range       %s - %s\n",
		dex.HumanPrice(result.SqrtLowX96, token0.Decimals, token1.Decimals, 8),
		dex.HumanPrice(result.SqrtUpperX96, token0.Decimals, token1.Decimals, 8))
	fmt.Fprintf(out, "liquidity   %s\n", fixedpoint.String(result.Liquidity))
	fmt.Fprintf(out, "amount0     %s %s\n", dex.FormatTokenAmount(result.Amount0, token0.Decimals), token0.Label())
	fmt.Fprintf(out, "amount1     %s %s\n", dex.FormatTokenAmount(result.Amount1, token1.Decimals), token1.Label())
	fmt.Fprintf(out, "calldata    %s\n", hexutil.Encode(calldata))

	if spender == (common.Address{}) {
		return nil
	}
	legs := []struct {
		token    common.Address
		label    string
		decimals uint8
		required *uint256.Int
	}{
		{state.Key.Token0, token0.Label(), token0.Decimals, result.Amount0},
		{state.Key.Token1, token1.Label(), token1.Decimals, result.Amount1},
	}
	short := false
	for _, leg := range legs {
		allowance, err := dex.FetchAllowance(ctx, chainClient, leg.token, payer, spender)
		if err != nil {
			return fmt.Errorf("allowance %s: %w", leg.label, err)
		}
		balance, err := dex.FetchBalance(ctx, chainClient, leg.token, payer)
		if err != nil {
			return fmt.Errorf("balance %s: %w", leg.label, err)
		}
		fmt.Fprintf(out, "%-11s balance %s allowance %s\n", leg.label,
			dex.FormatTokenAmount(balance, leg.decimals), dex.FormatTokenAmount(allowance, leg.decimals))
		if allowance.Lt(leg.required) || balance.Lt(leg.required) {
			short = true
			logger.Warn("payer cannot cover mint",
				zap.String("token", leg.token.Hex()),
				zap.String("required", fixedpoint.String(leg.required)),
				zap.String("balance", fixedpoint.String(balance)),
				zap.String("allowance", fixedpoint.String(allowance)),
			)
		}
	}
	if short {
		return fmt.Errorf("payer %s cannot cover the planned amounts", payer.Hex())
	}
	return nil
}

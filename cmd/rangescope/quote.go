package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangescope/internal/chain"
	"rangescope/internal/config"
	"rangescope/internal/curve"
	"rangescope/internal/dex"
	"rangescope/internal/watch"
)

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
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
	curveAddr, err := watch.ParseAddress(cfg.Curve)
	if err != nil {
		return fmt.Errorf("curve: %w", err)
	}

	amount, ok := new(big.Int).SetString(strings.TrimSpace(cfg.Amount), 10)
	if !ok || amount.Sign() < 0 {
		return fmt.Errorf("invalid amount: %s", cfg.Amount)
	}

	side := strings.ToLower(strings.TrimSpace(cfg.Side))
	if side != "buy" && side != "sell" {
		return fmt.Errorf("side must be buy or sell: %s", cfg.Side)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader := dex.NewReader(chainClient, logger)

	if side == "sell" {
		// Sell pricing reads the reserve before the sold tokens move;
		// the contract read is authoritative, no local replica.
		out, err := reader.SellQuoter(curveAddr).QuoteSell(ctx, amount)
		if err != nil {
			return fmt.Errorf("sell quote: %w", err)
		}
		logger.Info("sell quote",
			zap.String("curve", curveAddr.Hex()),
			zap.String("amount_in", amount.String()),
			zap.String("amount_out", out.String()),
		)
		return nil
	}

	state, err := reader.CurveState(ctx, curveAddr)
	if err != nil {
		return fmt.Errorf("curve state: %w", err)
	}

	quote := curve.SimulateBuy(amount, state)
	logger.Info("buy quote",
		zap.String("curve", curveAddr.Hex()),
		zap.String("amount_in", quote.AmountIn.String()),
		zap.String("amount_out", quote.AmountOut.String()),
		zap.String("fee", quote.Fee.String()),
		zap.String("execution_price", quote.ExecutionPrice.String()),
		zap.String("reserve", state.Reserve.String()),
		zap.String("supply", state.Supply.String()),
		zap.Uint32("fee_bps", state.FeeBps),
	)

	return nil
}

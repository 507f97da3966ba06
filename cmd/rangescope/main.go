package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"rangescope/internal/chain"
	"rangescope/internal/config"
	"rangescope/internal/dex"
	"rangescope/internal/model"
	"rangescope/internal/storage/postgres"
	"rangescope/internal/valuation"
	"rangescope/internal/watch"
)

func main() {
	root := &cobra.Command{
		Use:          "rangescope",
		Short:        "DEX position math and quoting toolkit",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	positionsCmd := &cobra.Command{
		Use:   "positions",
		Short: "Value concentrated-liquidity positions",
		RunE:  runPositions,
	}

	positionsCmd.Flags().String("rpc", "", "RPC URL")
	positionsCmd.Flags().String("manager", "", "NFT position manager address")
	positionsCmd.Flags().String("factory", "", "pool factory address")
	positionsCmd.Flags().StringSlice("token-id", nil, "position token ids (comma-separated)")
	positionsCmd.Flags().String("pg-dsn", "", "Postgres DSN for USD prices and flows (optional)")
	positionsCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(positionsCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Quote a trade against a bonding curve",
		RunE:  runQuote,
	}

	quoteCmd.Flags().String("rpc", "", "RPC URL")
	quoteCmd.Flags().String("curve", "", "bonding curve contract address")
	quoteCmd.Flags().String("amount", "", "trade size in smallest units")
	quoteCmd.Flags().String("side", "buy", "trade side (buy or sell)")
	quoteCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(quoteCmd)

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll positions and record valuation snapshots",
		RunE:  runWatch,
	}

	watchCmd.Flags().String("rpc", "", "RPC URL")
	watchCmd.Flags().String("manager", "", "NFT position manager address")
	watchCmd.Flags().String("factory", "", "pool factory address")
	watchCmd.Flags().StringSlice("token-id", nil, "position token ids (comma-separated)")
	watchCmd.Flags().String("pg-dsn", "", "Postgres DSN for prices, flows, and snapshot storage (optional)")
	watchCmd.Flags().String("out", "", "snapshot JSONL path (optional)")
	watchCmd.Flags().Duration("interval", 15*time.Second, "refresh interval")
	watchCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	watchCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	watchCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(watchCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runPositions(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadPositions(cfgFile, cmd.Flags())
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
	manager, err := watch.ParseAddress(cfg.Manager)
	if err != nil {
		return fmt.Errorf("manager: %w", err)
	}
	factory, err := watch.ParseAddress(cfg.Factory)
	if err != nil {
		return fmt.Errorf("factory: %w", err)
	}
	tokenIDs, err := watch.ParseTokenIDs(cfg.TokenIDs)
	if err != nil {
		return err
	}
	if len(tokenIDs) == 0 {
		return fmt.Errorf("at least one token id is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	var store *postgres.Store
	if cfg.PGDSN != "" {
		store, err = postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
	}

	reader := dex.NewReader(chainClient, logger)
	runner := watch.NewRunner(watch.RunConfig{
		Manager:  manager,
		Factory:  factory,
		TokenIDs: tokenIDs,
	}, reader, store, nil, logger)

	records, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}

	for _, record := range records {
		logger.Info("position",
			zap.Uint64("token_id", record.TokenID),
			zap.String("pool", record.Pool),
			zap.String("range_state", record.RangeState),
			optFloat("amount0", record.Amount0),
			optFloat("amount1", record.Amount1),
			optFloat("value_usd", record.ValueUSD),
			optFloat("fees_owed_usd", record.FeesOwedUSD),
			optFloat("pnl_usd", record.PnLUSD),
			optFloat("pnl_pct", record.PnLPct),
			optFloat("range_pct", record.RangePct),
			zap.String("range_health", record.RangeHealth),
		)
	}

	totals := valuation.Totals(snapshots(records))
	logger.Info("portfolio",
		zap.Int("positions", totals.Positions),
		zap.Int("priced", totals.Priced),
		zap.Float64("value_usd", totals.ValueUSD),
		zap.Float64("fees_owed_usd", totals.FeesOwedUSD),
		zap.Float64("pnl_usd", totals.PnLUSD),
	)

	return nil
}

func snapshots(records []model.ValuationRecord) []valuation.Snapshot {
	snaps := make([]valuation.Snapshot, 0, len(records))
	for _, record := range records {
		snaps = append(snaps, valuation.SnapshotFromRecord(record))
	}
	return snaps
}

func optFloat(key string, value *float64) zap.Field {
	if value == nil {
		return zap.Skip()
	}
	return zap.Float64(key, *value)
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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rangescope/internal/chain"
	"rangescope/internal/config"
	"rangescope/internal/dex"
	"rangescope/internal/storage"
	"rangescope/internal/storage/postgres"
	"rangescope/internal/watch"
)

func runWatch(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWatch(cfgFile, cmd.Flags())
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
	if cfg.PGDSN == "" && cfg.Out == "" {
		return fmt.Errorf("at least one of pg-dsn or out is required")
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

	var sink storage.SnapshotSink
	if cfg.Out != "" {
		sink = storage.NewJsonlStorage(cfg.Out)
	}

	reader := dex.NewReader(chainClient, logger)
	runner := watch.NewRunner(watch.RunConfig{
		Manager:      manager,
		Factory:      factory,
		TokenIDs:     tokenIDs,
		Interval:     cfg.Interval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, reader, store, sink, logger)

	logger.Info("watch start",
		zap.String("manager", manager.Hex()),
		zap.String("factory", factory.Hex()),
		zap.Int("positions", len(tokenIDs)),
		zap.Duration("interval", cfg.Interval),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("out", cfg.Out),
	)

	return runner.Run(ctx)
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}

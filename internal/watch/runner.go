package watch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangescope/internal/dex"
	"rangescope/internal/model"
	"rangescope/internal/storage"
	"rangescope/internal/storage/postgres"
	"rangescope/internal/valuation"
)

// RunConfig holds runtime settings for the watch loop.
type RunConfig struct {
	Manager      common.Address
	Factory      common.Address
	TokenIDs     []uint64
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner refreshes position valuations on a polling cadence. Each cycle
// builds one immutable snapshot per position from fresh chain state and
// hands it to the configured sinks; nothing is mutated mid-cycle.
type Runner struct {
	cfg    RunConfig
	reader *dex.Reader
	store  *postgres.Store
	sink   storage.SnapshotSink
	logger *zap.Logger
}

// NewRunner builds a Runner. store and sink are both optional; with
// neither set the records only surface through logs.
func NewRunner(cfg RunConfig, reader *dex.Reader, store *postgres.Store, sink storage.SnapshotSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		reader: reader,
		store:  store,
		sink:   sink,
		logger: logger,
	}
}

// Run executes the polling loop until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	if r.reader == nil {
		return fmt.Errorf("reader is nil")
	}
	if len(r.cfg.TokenIDs) == 0 {
		return fmt.Errorf("at least one token id is required")
	}
	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		records, err := r.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("cycle failed", zap.Error(err))
		} else if err := r.flush(ctx, records); err != nil {
			r.logger.Error("flush failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce performs a single refresh cycle and returns the records.
func (r *Runner) RunOnce(ctx context.Context) ([]model.ValuationRecord, error) {
	if r.reader == nil {
		return nil, fmt.Errorf("reader is nil")
	}

	chainID, err := r.reader.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	positions := make([]model.Position, 0, len(r.cfg.TokenIDs))
	for _, tokenID := range r.cfg.TokenIDs {
		pos, err := r.positionWithRetry(ctx, tokenID)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", tokenID, err)
		}
		positions = append(positions, pos)
	}

	prices, flows, err := r.loadPricing(ctx, positions)
	if err != nil {
		// Pricing data is optional; valuations degrade to unknown.
		r.logger.Warn("pricing load failed", zap.Error(err))
		prices, flows = nil, nil
	}

	records := make([]model.ValuationRecord, 0, len(positions))
	for _, pos := range positions {
		record, err := r.buildRecord(ctx, pos, prices, flows)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", pos.TokenID, err)
		}
		record.ChainID = chainID
		records = append(records, record)
	}

	totals := valuation.Totals(snapshotsOf(records))
	r.logger.Info("cycle complete",
		zap.Int("positions", totals.Positions),
		zap.Int("priced", totals.Priced),
		zap.Float64("value_usd", totals.ValueUSD),
		zap.Float64("pnl_usd", totals.PnLUSD),
	)

	return records, nil
}

func (r *Runner) buildRecord(ctx context.Context, pos model.Position, prices map[string]float64, flows map[uint64]model.PositionFlows) (model.ValuationRecord, error) {
	pool, err := r.reader.PoolFor(ctx, r.cfg.Factory, pos)
	if err != nil {
		return model.ValuationRecord{}, err
	}

	// The pool's own token ordering is authoritative for decimals.
	poolMeta, err := r.reader.PoolMeta(ctx, pool)
	if err != nil {
		return model.ValuationRecord{}, fmt.Errorf("pool metadata: %w", err)
	}
	meta0, err := r.reader.TokenMeta(ctx, common.HexToAddress(poolMeta.Token0))
	if err != nil {
		return model.ValuationRecord{}, fmt.Errorf("token0 metadata: %w", err)
	}
	meta1, err := r.reader.TokenMeta(ctx, common.HexToAddress(poolMeta.Token1))
	if err != nil {
		return model.ValuationRecord{}, fmt.Errorf("token1 metadata: %w", err)
	}

	state := r.reader.PoolState(ctx, pool)
	if state.Tick == nil {
		r.logger.Warn("pool tick unavailable",
			zap.Uint64("token_id", pos.TokenID),
			zap.String("pool", state.Address),
		)
	}

	return valuation.BuildRecord(pos, state, meta0, meta1, prices, flows), nil
}

func (r *Runner) loadPricing(ctx context.Context, positions []model.Position) (map[string]float64, map[uint64]model.PositionFlows, error) {
	if r.store == nil {
		return nil, nil, nil
	}

	seen := make(map[string]struct{})
	tokens := make([]string, 0, len(positions)*2)
	tokenIDs := make([]uint64, 0, len(positions))
	for _, pos := range positions {
		for _, token := range []string{pos.Token0, pos.Token1} {
			key := strings.ToLower(token)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tokens = append(tokens, key)
		}
		tokenIDs = append(tokenIDs, pos.TokenID)
	}

	prices, err := r.store.TokenPricesUSD(ctx, tokens)
	if err != nil {
		return nil, nil, fmt.Errorf("token prices: %w", err)
	}
	flows, err := r.store.PositionFlows(ctx, tokenIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("position flows: %w", err)
	}
	return prices, flows, nil
}

func (r *Runner) flush(ctx context.Context, records []model.ValuationRecord) error {
	if len(records) == 0 {
		return nil
	}
	if r.sink != nil {
		if err := r.sink.PutSnapshots(records); err != nil {
			return fmt.Errorf("sink snapshots: %w", err)
		}
	}
	if r.store != nil {
		if err := r.store.UpsertSnapshots(ctx, records); err != nil {
			return fmt.Errorf("store snapshots: %w", err)
		}
	}
	return nil
}

func (r *Runner) positionWithRetry(ctx context.Context, tokenID uint64) (model.Position, error) {
	var pos model.Position
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		pos, err = r.reader.Position(ctx, r.cfg.Manager, tokenID)
		if err != nil {
			r.logger.Warn("position fetch failed", zap.Error(err), zap.Uint64("token_id", tokenID))
		}
		return err
	})
	return pos, err
}

func snapshotsOf(records []model.ValuationRecord) []valuation.Snapshot {
	snaps := make([]valuation.Snapshot, 0, len(records))
	for _, record := range records {
		snaps = append(snaps, valuation.SnapshotFromRecord(record))
	}
	return snaps
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rangescope/internal/model"
)

// Store reads pricing and flow data maintained by the indexing service
// and persists valuation snapshots.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// TokenPricesUSD returns the latest USD price per token address. Tokens
// with no price row are simply absent from the result; callers treat
// them as unknown, not zero.
func (s *Store) TokenPricesUSD(ctx context.Context, tokens []string) (map[string]float64, error) {
	prices := make(map[string]float64, len(tokens))
	if len(tokens) == 0 {
		return prices, nil
	}

	normalized := make([]string, 0, len(tokens))
	for _, token := range tokens {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		normalized = append(normalized, token)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT ON (token_address) token_address, price_usd
		FROM token_prices
		WHERE token_address = ANY($1)
		ORDER BY token_address, as_of DESC
	`, normalized)
	if err != nil {
		return nil, fmt.Errorf("query token prices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var address string
		var price float64
		if err := rows.Scan(&address, &price); err != nil {
			return nil, fmt.Errorf("scan token price: %w", err)
		}
		prices[strings.ToLower(address)] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token prices: %w", err)
	}

	return prices, nil
}

// PositionFlows returns lifetime deposited/withdrawn/collected USD
// totals per position token id.
func (s *Store) PositionFlows(ctx context.Context, tokenIDs []uint64) (map[uint64]model.PositionFlows, error) {
	flows := make(map[uint64]model.PositionFlows, len(tokenIDs))
	if len(tokenIDs) == 0 {
		return flows, nil
	}

	ids := make([]int64, 0, len(tokenIDs))
	for _, id := range tokenIDs {
		ids = append(ids, int64(id))
	}

	rows, err := s.pool.Query(ctx, `
		SELECT token_id, deposited_usd, withdrawn_usd, collected_usd
		FROM position_flows
		WHERE token_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("query position flows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tokenID int64
		var flow model.PositionFlows
		if err := rows.Scan(&tokenID, &flow.DepositedUSD, &flow.WithdrawnUSD, &flow.CollectedUSD); err != nil {
			return nil, fmt.Errorf("scan position flow: %w", err)
		}
		flows[uint64(tokenID)] = flow
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate position flows: %w", err)
	}

	return flows, nil
}

// UpsertSnapshots inserts or updates valuation snapshots.
func (s *Store) UpsertSnapshots(ctx context.Context, records []model.ValuationRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO valuation_snapshots (
				chain_id, token_id, pool_address, observed_at_ts, range_state,
				amount0, amount1, value_usd, fees_owed_usd, pnl_usd, pnl_pct,
				range_pct, range_health, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
			ON CONFLICT (chain_id, token_id, observed_at_ts)
			DO UPDATE SET
				pool_address = EXCLUDED.pool_address,
				range_state = EXCLUDED.range_state,
				amount0 = EXCLUDED.amount0,
				amount1 = EXCLUDED.amount1,
				value_usd = EXCLUDED.value_usd,
				fees_owed_usd = EXCLUDED.fees_owed_usd,
				pnl_usd = EXCLUDED.pnl_usd,
				pnl_pct = EXCLUDED.pnl_pct,
				range_pct = EXCLUDED.range_pct,
				range_health = EXCLUDED.range_health,
				updated_at = now()
		`,
			int64(record.ChainID),
			int64(record.TokenID),
			record.Pool,
			int64(record.ObservedAt),
			record.RangeState,
			record.Amount0,
			record.Amount1,
			record.ValueUSD,
			record.FeesOwedUSD,
			record.PnLUSD,
			record.PnLPct,
			record.RangePct,
			record.RangeHealth,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

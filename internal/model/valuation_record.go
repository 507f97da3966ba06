package model

// ValuationRecord is a persisted per-position valuation snapshot.
// Derived data only; it is recomputed from fresh chain state on every
// cycle and never treated as a source of truth. Nil fields mean the
// input needed to derive them was unknown at snapshot time.
type ValuationRecord struct {
	ChainID     uint64   `json:"chain_id"`
	TokenID     uint64   `json:"token_id"`
	Pool        string   `json:"pool"`
	ObservedAt  uint64   `json:"observed_at"`
	RangeState  string   `json:"range_state,omitempty"`
	Amount0     *float64 `json:"amount0,omitempty"`
	Amount1     *float64 `json:"amount1,omitempty"`
	ValueUSD    *float64 `json:"value_usd,omitempty"`
	FeesOwedUSD *float64 `json:"fees_owed_usd,omitempty"`
	PnLUSD      *float64 `json:"pnl_usd,omitempty"`
	PnLPct      *float64 `json:"pnl_pct,omitempty"`
	RangePct    *float64 `json:"range_pct,omitempty"`
	RangeHealth string   `json:"range_health,omitempty"`
}

package valuation

import (
	"math"
	"math/big"
	"strings"

	"rangescope/internal/model"
	"rangescope/internal/position"
	"rangescope/internal/rangeviz"
	"rangescope/internal/ticks"
)

// BuildRecord assembles the persisted snapshot for one position from a
// freshly fetched chain snapshot plus optional pricing data. A missing
// current tick suppresses everything derived from it; missing USD
// prices leave the USD fields nil. Price map keys are lowercase hex
// token addresses.
func BuildRecord(
	pos model.Position,
	pool model.PoolState,
	meta0, meta1 model.TokenMeta,
	prices map[string]float64,
	flows map[uint64]model.PositionFlows,
) model.ValuationRecord {
	record := model.ValuationRecord{
		TokenID:    pos.TokenID,
		Pool:       pool.Address,
		ObservedAt: pool.ObservedAt,
	}

	if pool.Tick == nil {
		return record
	}
	tick := *pool.Tick

	record.RangeState = ticks.Classify(tick, pos.TickLower, pos.TickUpper).String()

	amount0, amount1 := position.Decompose(pos.Liquidity, pos.TickLower, pos.TickUpper, tick, meta0.Decimals, meta1.Decimals)
	record.Amount0 = &amount0
	record.Amount1 = &amount1

	// Full-range positions get no placement bar; every price is "inside".
	if !ticks.FullRange(pos.TickLower, pos.TickUpper) {
		currentPrice := ticks.PriceFromTick(tick, meta0.Decimals, meta1.Decimals)
		priceLower := ticks.PriceFromTick(pos.TickLower, meta0.Decimals, meta1.Decimals)
		priceUpper := ticks.PriceFromTick(pos.TickUpper, meta0.Decimals, meta1.Decimals)
		if placement, ok := rangeviz.Map(currentPrice, priceLower, priceUpper); ok {
			pct := placement.Pct
			record.RangePct = &pct
			record.RangeHealth = placement.State.String()
		}
	}

	input := PositionInput{
		Amount0: amount0,
		Amount1: amount1,
		Owed0:   humanAmount(pos.TokensOwed0, meta0.Decimals),
		Owed1:   humanAmount(pos.TokensOwed1, meta1.Decimals),
		Price0:  lookupPrice(prices, pos.Token0),
		Price1:  lookupPrice(prices, pos.Token1),
	}
	if flow, ok := flows[pos.TokenID]; ok {
		input.DepositedUSD = flow.DepositedUSD
		input.WithdrawnUSD = flow.WithdrawnUSD
		input.CollectedUSD = flow.CollectedUSD
	}

	snap := Evaluate(input)
	record.ValueUSD = snap.ValueUSD
	record.FeesOwedUSD = snap.FeesOwedUSD
	record.PnLUSD = snap.PnLUSD
	record.PnLPct = snap.PnLPct
	return record
}

// SnapshotFromRecord rebuilds the per-position snapshot view used for
// portfolio totals.
func SnapshotFromRecord(record model.ValuationRecord) Snapshot {
	snap := Snapshot{
		ValueUSD:    record.ValueUSD,
		FeesOwedUSD: record.FeesOwedUSD,
		PnLUSD:      record.PnLUSD,
		PnLPct:      record.PnLPct,
	}
	if record.Amount0 != nil {
		snap.Amount0 = *record.Amount0
	}
	if record.Amount1 != nil {
		snap.Amount1 = *record.Amount1
	}
	return snap
}

func humanAmount(value *big.Int, decimals uint8) float64 {
	if value == nil || value.Sign() == 0 {
		return 0
	}
	raw, _ := new(big.Float).SetInt(value).Float64()
	return raw / math.Pow10(int(decimals))
}

func lookupPrice(prices map[string]float64, token string) *float64 {
	if prices == nil {
		return nil
	}
	price, ok := prices[strings.ToLower(token)]
	if !ok {
		return nil
	}
	return &price
}

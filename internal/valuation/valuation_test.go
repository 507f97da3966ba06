package valuation

import (
	"math"
	"math/big"
	"testing"

	"rangescope/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestEvaluate(t *testing.T) {
	snap := Evaluate(PositionInput{
		Amount0:      2,
		Amount1:      3000,
		Owed0:        0.1,
		Owed1:        50,
		Price0:       floatPtr(2000),
		Price1:       floatPtr(1),
		DepositedUSD: 5000,
		WithdrawnUSD: 1000,
		CollectedUSD: 200,
	})

	if snap.ValueUSD == nil || *snap.ValueUSD != 7000 {
		t.Fatalf("value mismatch: %+v", snap.ValueUSD)
	}
	if snap.FeesOwedUSD == nil || *snap.FeesOwedUSD != 250 {
		t.Fatalf("fees mismatch: %+v", snap.FeesOwedUSD)
	}
	// 7000 + 1000 + 200 - 5000
	if snap.PnLUSD == nil || *snap.PnLUSD != 3200 {
		t.Fatalf("pnl mismatch: %+v", snap.PnLUSD)
	}
	if snap.PnLPct == nil || math.Abs(*snap.PnLPct-64) > 1e-9 {
		t.Fatalf("pnl pct mismatch: %+v", snap.PnLPct)
	}
}

func TestEvaluateUnknownPrices(t *testing.T) {
	snap := Evaluate(PositionInput{Amount0: 2, Amount1: 3000, Price0: floatPtr(2000)})
	if snap.ValueUSD != nil || snap.PnLUSD != nil || snap.PnLPct != nil {
		t.Fatalf("missing price1 must leave USD fields nil: %+v", snap)
	}
	if snap.Amount0 != 2 || snap.Amount1 != 3000 {
		t.Fatalf("token amounts must survive: %+v", snap)
	}
}

func TestEvaluateNoDeposits(t *testing.T) {
	snap := Evaluate(PositionInput{Amount0: 1, Price0: floatPtr(10), Price1: floatPtr(1)})
	if snap.PnLPct != nil {
		t.Fatalf("pnl pct must stay nil without deposits, got %g", *snap.PnLPct)
	}
	if snap.PnLUSD == nil || *snap.PnLUSD != 10 {
		t.Fatalf("pnl usd mismatch: %+v", snap.PnLUSD)
	}
}

func TestTotalsSkipsUnpriced(t *testing.T) {
	snaps := []Snapshot{
		{ValueUSD: floatPtr(100), FeesOwedUSD: floatPtr(5), PnLUSD: floatPtr(10)},
		{}, // prices unknown
		{ValueUSD: floatPtr(50), FeesOwedUSD: floatPtr(1), PnLUSD: floatPtr(-20)},
	}

	totals := Totals(snaps)
	if totals.Positions != 3 || totals.Priced != 2 {
		t.Fatalf("counts mismatch: %+v", totals)
	}
	if totals.ValueUSD != 150 || totals.FeesOwedUSD != 6 || totals.PnLUSD != -10 {
		t.Fatalf("sums mismatch: %+v", totals)
	}
}

func TestBuildRecordUnknownTick(t *testing.T) {
	pos := model.Position{TokenID: 7, TickLower: -100, TickUpper: 100, Liquidity: big.NewInt(1e18)}
	pool := model.PoolState{Address: "0xpool", ObservedAt: 1700000000}

	record := BuildRecord(pos, pool, model.TokenMeta{Decimals: 18}, model.TokenMeta{Decimals: 18}, nil, nil)
	if record.RangeState != "" || record.Amount0 != nil || record.Amount1 != nil {
		t.Fatalf("unknown tick must suppress derived fields: %+v", record)
	}
	if record.TokenID != 7 || record.ObservedAt != 1700000000 {
		t.Fatalf("identity fields must survive: %+v", record)
	}
}

func TestBuildRecordInRange(t *testing.T) {
	tick := int32(0)
	pos := model.Position{
		TokenID:     1,
		Token0:      "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		Token1:      "0xBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBBB",
		TickLower:   -100,
		TickUpper:   100,
		Liquidity:   big.NewInt(1e18),
		TokensOwed0: big.NewInt(0),
		TokensOwed1: big.NewInt(0),
	}
	pool := model.PoolState{Address: "0xpool", Tick: &tick, ObservedAt: 1700000000}
	prices := map[string]float64{
		"0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa": 2.0,
		"0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb": 2.0,
	}

	record := BuildRecord(pos, pool, model.TokenMeta{Decimals: 18}, model.TokenMeta{Decimals: 18}, prices, nil)
	if record.RangeState != "in_range" {
		t.Fatalf("range state mismatch: %q", record.RangeState)
	}
	if record.Amount0 == nil || record.Amount1 == nil {
		t.Fatalf("amounts must be set: %+v", record)
	}
	if record.RangePct == nil || record.RangeHealth != "safe" {
		t.Fatalf("placement mismatch: %+v", record)
	}

	wantValue := (*record.Amount0 + *record.Amount1) * 2.0
	if record.ValueUSD == nil || math.Abs(*record.ValueUSD-wantValue) > 1e-12 {
		t.Fatalf("value mismatch: %+v", record.ValueUSD)
	}
}

package valuation

// PositionInput carries everything needed to value one position: its
// decomposed holdings and owed fees in human units, current USD token
// prices when known, and lifetime USD flow totals from the indexing
// service.
type PositionInput struct {
	Amount0 float64
	Amount1 float64
	Owed0   float64
	Owed1   float64

	// Price0/Price1 are nil while unknown; valuation then stays nil
	// instead of reporting a false zero.
	Price0 *float64
	Price1 *float64

	DepositedUSD float64
	WithdrawnUSD float64
	CollectedUSD float64
}

// Snapshot is the derived USD view of one position. Recomputed whenever
// upstream price or position data changes, never stored as truth.
type Snapshot struct {
	Amount0     float64
	Amount1     float64
	ValueUSD    *float64
	FeesOwedUSD *float64
	PnLUSD      *float64
	PnLPct      *float64
}

// PortfolioTotals sums the USD view across positions. Priced counts the
// positions that actually contributed; the rest were skipped for
// missing price data.
type PortfolioTotals struct {
	ValueUSD    float64
	FeesOwedUSD float64
	PnLUSD      float64
	Positions   int
	Priced      int
}

// Evaluate computes the USD snapshot of a single position. PnLPct stays
// nil when nothing was deposited; a manufactured 0% would read as
// break-even.
func Evaluate(in PositionInput) Snapshot {
	snap := Snapshot{Amount0: in.Amount0, Amount1: in.Amount1}
	if in.Price0 == nil || in.Price1 == nil {
		return snap
	}

	value := in.Amount0*(*in.Price0) + in.Amount1*(*in.Price1)
	fees := in.Owed0*(*in.Price0) + in.Owed1*(*in.Price1)
	pnl := value + in.WithdrawnUSD + in.CollectedUSD - in.DepositedUSD

	snap.ValueUSD = &value
	snap.FeesOwedUSD = &fees
	snap.PnLUSD = &pnl
	if in.DepositedUSD > 0 {
		pct := pnl / in.DepositedUSD * 100
		snap.PnLPct = &pct
	}
	return snap
}

// Totals sums per-position snapshots. Positions with unknown prices
// contribute zero rather than poisoning the whole sum.
func Totals(snaps []Snapshot) PortfolioTotals {
	totals := PortfolioTotals{Positions: len(snaps)}
	for _, snap := range snaps {
		if snap.ValueUSD == nil {
			continue
		}
		totals.Priced++
		totals.ValueUSD += *snap.ValueUSD
		if snap.FeesOwedUSD != nil {
			totals.FeesOwedUSD += *snap.FeesOwedUSD
		}
		if snap.PnLUSD != nil {
			totals.PnLUSD += *snap.PnLUSD
		}
	}
	return totals
}

package model

import "math/big"

// Position is a read-only snapshot of an on-chain concentrated-liquidity
// position. The core never mutates it; every refresh produces a new one.
type Position struct {
	TokenID     uint64
	Token0      string
	Token1      string
	Fee         uint32
	TickLower   int32
	TickUpper   int32
	Liquidity   *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
}

// PositionFlows carries lifetime USD totals for a position, priced at
// the time of each historical event by the indexing service.
type PositionFlows struct {
	DepositedUSD float64
	WithdrawnUSD float64
	CollectedUSD float64
}

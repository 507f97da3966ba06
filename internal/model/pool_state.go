package model

import "math/big"

// PoolState is a point-in-time snapshot of a pool's pricing state.
// Tick and Liquidity are nil while the underlying reads have not
// succeeded yet, so consumers can tell "still loading" from a real
// zero and suppress derived values instead of computing on zero.
type PoolState struct {
	Address      string
	Tick         *int32
	SqrtPriceX96 string
	Liquidity    *big.Int
	ObservedAt   uint64
}

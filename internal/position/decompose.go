package position

import (
	"math"
	"math/big"
)

// Decompose splits a position's liquidity into the token0/token1
// amounts it currently holds, in human units. Below the range all value
// sits in token0, above it all in token1, inside it a mix at the
// current sqrt price.
//
// Float arithmetic, unlike the fixed-point math the contract runs
// internally. Results are display approximations and must never become
// a transaction's minimum-output parameters.
func Decompose(liquidity *big.Int, tickLower, tickUpper, currentTick int32, decimals0, decimals1 uint8) (float64, float64) {
	if liquidity == nil || liquidity.Sign() == 0 {
		return 0, 0
	}

	liq, _ := new(big.Float).SetInt(liquidity).Float64()
	sqrtLower := sqrtPriceAtTick(tickLower)
	sqrtUpper := sqrtPriceAtTick(tickUpper)
	sqrtCurrent := sqrtPriceAtTick(currentTick)

	var amount0, amount1 float64
	switch {
	case currentTick < tickLower:
		amount0 = liq * (1/sqrtLower - 1/sqrtUpper)
	case currentTick >= tickUpper:
		amount1 = liq * (sqrtUpper - sqrtLower)
	default:
		amount0 = liq * (1/sqrtCurrent - 1/sqrtUpper)
		amount1 = liq * (sqrtCurrent - sqrtLower)
	}

	amount0 /= math.Pow10(int(decimals0))
	amount1 /= math.Pow10(int(decimals1))
	return amount0, amount1
}

func sqrtPriceAtTick(tick int32) float64 {
	return math.Pow(1.0001, float64(tick)/2)
}

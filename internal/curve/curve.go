package curve

import (
	"context"
	"math/big"
)

const bpsDenominator = 10_000

// wad is the 1e18 fixed-point scale the curve contract prices in.
var wad = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// State is a snapshot of the bonding curve's reserves. It is refetched
// before every quote; quotes never reuse a snapshot across calls.
type State struct {
	Reserve *big.Int
	Supply  *big.Int
	FeeBps  uint32
}

// Quote is the simulated outcome of a trade against the curve.
// ExecutionPrice is reserve-per-token scaled by 1e18.
type Quote struct {
	AmountIn       *big.Int
	AmountOut      *big.Int
	Fee            *big.Int
	ExecutionPrice *big.Int
}

// SellQuoter returns sell proceeds from the authoritative source, the
// curve contract itself. Sell pricing reads the reserve before the sold
// tokens move, so no local replica is attempted.
type SellQuoter interface {
	QuoteSell(ctx context.Context, amount *big.Int) (*big.Int, error)
}

// SimulateBuy replicates the contract's buy path. The payment is
// credited to the reserve before the price is read, so the quote clears
// at the post-trade price; reordering those two steps produces wrong
// but plausible-looking quotes. Degenerate inputs (zero amount, empty
// supply or reserve) yield a zero quote, never an error.
func SimulateBuy(amountIn *big.Int, s State) Quote {
	quote := zeroQuote(amountIn)
	if amountIn == nil || amountIn.Sign() <= 0 {
		return quote
	}
	if s.Reserve == nil || s.Supply == nil || s.Supply.Sign() == 0 {
		return quote
	}

	newReserve := new(big.Int).Add(s.Reserve, amountIn)
	if newReserve.Sign() == 0 {
		return quote
	}

	price := new(big.Int).Mul(newReserve, wad)
	price.Div(price, s.Supply)
	if price.Sign() == 0 {
		return quote
	}

	fee := new(big.Int).Mul(amountIn, big.NewInt(int64(s.FeeBps)))
	fee.Div(fee, big.NewInt(bpsDenominator))
	netIn := new(big.Int).Sub(amountIn, fee)

	amountOut := new(big.Int).Mul(netIn, wad)
	amountOut.Div(amountOut, price)

	quote.AmountOut = amountOut
	quote.Fee = fee
	quote.ExecutionPrice = price
	return quote
}

func zeroQuote(amountIn *big.Int) Quote {
	in := new(big.Int)
	if amountIn != nil {
		in.Set(amountIn)
	}
	return Quote{
		AmountIn:       in,
		AmountOut:      new(big.Int),
		Fee:            new(big.Int),
		ExecutionPrice: new(big.Int),
	}
}

package curve

import (
	"math/big"
	"testing"
)

func inWad(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), wad)
}

func TestSimulateBuyZeroInput(t *testing.T) {
	state := State{Reserve: inWad(1000), Supply: inWad(2000), FeeBps: 100}

	quote := SimulateBuy(big.NewInt(0), state)
	if quote.AmountOut.Sign() != 0 {
		t.Fatalf("zero input must quote zero out: %s", quote.AmountOut)
	}

	quote = SimulateBuy(nil, state)
	if quote.AmountOut.Sign() != 0 || quote.Fee.Sign() != 0 {
		t.Fatalf("nil input must quote zero: %+v", quote)
	}
}

func TestSimulateBuyZeroSupply(t *testing.T) {
	state := State{Reserve: inWad(1000), Supply: big.NewInt(0), FeeBps: 100}
	quote := SimulateBuy(inWad(10), state)
	if quote.AmountOut.Sign() != 0 || quote.ExecutionPrice.Sign() != 0 {
		t.Fatalf("zero supply must quote zero: %+v", quote)
	}
}

// With no fee the buy reduces to amountIn * supply / (reserve + amountIn).
func TestSimulateBuyFeeFree(t *testing.T) {
	state := State{Reserve: inWad(100), Supply: inWad(300), FeeBps: 0}
	quote := SimulateBuy(inWad(50), state)

	// 50 * 300 / 150 = 100
	if quote.AmountOut.Cmp(inWad(100)) != 0 {
		t.Fatalf("fee-free reduction mismatch: %s", quote.AmountOut)
	}
	if quote.Fee.Sign() != 0 {
		t.Fatalf("fee must be zero: %s", quote.Fee)
	}
}

func TestSimulateBuyScenario(t *testing.T) {
	state := State{Reserve: inWad(1000), Supply: inWad(2000), FeeBps: 100}
	quote := SimulateBuy(inWad(100), state)

	// newReserve = 1100e18, price = 1100e18*1e18/2000e18 = 0.55e18,
	// fee = 1e18, netIn = 99e18, out = 99e18*1e18/0.55e18 = 180e18.
	wantPrice, _ := new(big.Int).SetString("550000000000000000", 10)
	if quote.ExecutionPrice.Cmp(wantPrice) != 0 {
		t.Fatalf("price mismatch: %s", quote.ExecutionPrice)
	}
	if quote.Fee.Cmp(inWad(1)) != 0 {
		t.Fatalf("fee mismatch: %s", quote.Fee)
	}
	if quote.AmountOut.Cmp(inWad(180)) != 0 {
		t.Fatalf("amount out mismatch: %s", quote.AmountOut)
	}
}

// The displayed execution price must come from the post-trade reserve,
// since that is the price the trade actually clears at.
func TestSimulateBuyPriceUsesPostTradeReserve(t *testing.T) {
	state := State{Reserve: inWad(1000), Supply: inWad(2000), FeeBps: 0}
	quote := SimulateBuy(inWad(100), state)

	postTrade := new(big.Int).Mul(inWad(1100), wad)
	postTrade.Div(postTrade, inWad(2000))
	if quote.ExecutionPrice.Cmp(postTrade) != 0 {
		t.Fatalf("price must use post-trade reserve: %s", quote.ExecutionPrice)
	}

	preTrade := new(big.Int).Mul(inWad(1000), wad)
	preTrade.Div(preTrade, inWad(2000))
	if quote.ExecutionPrice.Cmp(preTrade) == 0 {
		t.Fatalf("price must not use pre-trade reserve")
	}
}

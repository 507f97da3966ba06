package dex

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestDecodePosition(t *testing.T) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	token0 := common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	token1 := common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")

	packed, err := managerABI.Methods["positions"].Outputs.Pack(
		big.NewInt(1),
		common.Address{},
		token0,
		token1,
		big.NewInt(3000),
		big.NewInt(-887220),
		big.NewInt(887220),
		big.NewInt(123456789),
		big.NewInt(0),
		big.NewInt(0),
		big.NewInt(42),
		big.NewInt(7),
	)
	if err != nil {
		t.Fatalf("pack positions: %v", err)
	}

	values, err := managerABI.Methods["positions"].Outputs.Unpack(packed)
	if err != nil {
		t.Fatalf("unpack positions: %v", err)
	}

	pos, err := decodePosition(99, values)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if pos.TokenID != 99 {
		t.Fatalf("token id mismatch: %d", pos.TokenID)
	}
	if pos.Token0 != token0.Hex() || pos.Token1 != token1.Hex() {
		t.Fatalf("token addresses mismatch: %+v", pos)
	}
	if pos.Fee != 3000 {
		t.Fatalf("fee mismatch: %d", pos.Fee)
	}
	if pos.TickLower != -887220 || pos.TickUpper != 887220 {
		t.Fatalf("tick range mismatch: [%d, %d)", pos.TickLower, pos.TickUpper)
	}
	if pos.Liquidity.Cmp(big.NewInt(123456789)) != 0 {
		t.Fatalf("liquidity mismatch: %s", pos.Liquidity)
	}
	if pos.TokensOwed0.Cmp(big.NewInt(42)) != 0 || pos.TokensOwed1.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("tokens owed mismatch: %s / %s", pos.TokensOwed0, pos.TokensOwed1)
	}
}

func TestDecodePositionInvalidRange(t *testing.T) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}

	packed, err := managerABI.Methods["positions"].Outputs.Pack(
		big.NewInt(1),
		common.Address{},
		common.Address{},
		common.Address{},
		big.NewInt(3000),
		big.NewInt(100),
		big.NewInt(100),
		big.NewInt(0),
		big.NewInt(0),
		big.NewInt(0),
		big.NewInt(0),
		big.NewInt(0),
	)
	if err != nil {
		t.Fatalf("pack positions: %v", err)
	}
	values, err := managerABI.Methods["positions"].Outputs.Unpack(packed)
	if err != nil {
		t.Fatalf("unpack positions: %v", err)
	}

	if _, err := decodePosition(1, values); err == nil {
		t.Fatalf("expected error for empty tick range")
	}
}

func TestInt24FromBig(t *testing.T) {
	if _, err := int24FromBig(big.NewInt(1 << 23)); err == nil {
		t.Fatalf("expected overflow error")
	}
	tick, err := int24FromBig(big.NewInt(-887272))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tick != -887272 {
		t.Fatalf("tick mismatch: %d", tick)
	}
}

func TestBytes32ToString(t *testing.T) {
	var raw [32]byte
	copy(raw[:], "MKR")
	symbol, ok := bytes32ToString(raw)
	if !ok || symbol != "MKR" {
		t.Fatalf("bytes32 symbol mismatch: %q", symbol)
	}
	if _, ok := bytes32ToString(42); ok {
		t.Fatalf("unsupported type must not convert")
	}
}

package dex

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"rangescope/internal/chain"
	"rangescope/internal/curve"
	"rangescope/internal/model"
)

// Reader fetches position, pool, and bonding-curve snapshots from the
// chain. Immutable metadata (pool tokens, fee tier, token decimals,
// factory lookups) is cached; pricing state is fetched fresh each call.
type Reader struct {
	chain     *chain.Client
	logger    *zap.Logger
	poolMeta  *PoolMetaCache
	tokenMeta *TokenMetaCache

	mu       sync.RWMutex
	poolsFor map[poolKey]common.Address
	chainID  uint64
}

type poolKey struct {
	token0 common.Address
	token1 common.Address
	fee    uint32
}

func NewReader(chainClient *chain.Client, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		chain:     chainClient,
		logger:    logger,
		poolMeta:  NewPoolMetaCache(),
		tokenMeta: NewTokenMetaCache(),
		poolsFor:  make(map[poolKey]common.Address),
	}
}

// ChainID returns the connected chain id, cached after the first read.
func (r *Reader) ChainID(ctx context.Context) (uint64, error) {
	r.mu.RLock()
	id := r.chainID
	r.mu.RUnlock()
	if id != 0 {
		return id, nil
	}

	if r.chain == nil {
		return 0, fmt.Errorf("chain client is nil")
	}
	chainID, err := r.chain.GetChainID(ctx)
	if err != nil {
		return 0, err
	}
	if !chainID.IsUint64() {
		return 0, fmt.Errorf("chain id does not fit in uint64: %s", chainID)
	}
	id = chainID.Uint64()

	r.mu.Lock()
	r.chainID = id
	r.mu.Unlock()
	return id, nil
}

// Position reads positions(tokenId) from the NFT position manager.
func (r *Reader) Position(ctx context.Context, manager common.Address, tokenID uint64) (model.Position, error) {
	managerABI, err := PositionManagerABI()
	if err != nil {
		return model.Position{}, fmt.Errorf("parse manager abi: %w", err)
	}

	values, err := r.call(ctx, manager, managerABI, "positions", new(big.Int).SetUint64(tokenID))
	if err != nil {
		return model.Position{}, err
	}
	return decodePosition(tokenID, values)
}

// PoolFor resolves the pool address for a position's token pair and fee
// tier via the factory, caching the result.
func (r *Reader) PoolFor(ctx context.Context, factory common.Address, pos model.Position) (common.Address, error) {
	if !common.IsHexAddress(pos.Token0) || !common.IsHexAddress(pos.Token1) {
		return common.Address{}, fmt.Errorf("invalid token addresses: %s / %s", pos.Token0, pos.Token1)
	}
	key := poolKey{
		token0: common.HexToAddress(pos.Token0),
		token1: common.HexToAddress(pos.Token1),
		fee:    pos.Fee,
	}

	r.mu.RLock()
	pool, ok := r.poolsFor[key]
	r.mu.RUnlock()
	if ok {
		return pool, nil
	}

	parsed, err := FactoryABI()
	if err != nil {
		return common.Address{}, fmt.Errorf("parse factory abi: %w", err)
	}

	values, err := r.call(ctx, factory, parsed, "getPool", key.token0, key.token1, new(big.Int).SetUint64(uint64(key.fee)))
	if err != nil {
		return common.Address{}, err
	}
	pool, err = asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("getPool: %w", err)
	}
	if pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("no pool for %s/%s fee %d", pos.Token0, pos.Token1, pos.Fee)
	}

	r.mu.Lock()
	r.poolsFor[key] = pool
	r.mu.Unlock()
	return pool, nil
}

// PoolMeta loads immutable pool metadata, from cache when possible.
func (r *Reader) PoolMeta(ctx context.Context, pool common.Address) (model.PoolMeta, error) {
	if meta, ok := r.poolMeta.Get(pool); ok {
		return meta, nil
	}

	poolABI, err := PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	values, err := r.call(ctx, pool, poolABI, "token0")
	if err != nil {
		return model.PoolMeta{}, err
	}
	token0, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token0: %w", err)
	}

	values, err = r.call(ctx, pool, poolABI, "token1")
	if err != nil {
		return model.PoolMeta{}, err
	}
	token1, err := asAddress(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("token1: %w", err)
	}

	values, err = r.call(ctx, pool, poolABI, "fee")
	if err != nil {
		return model.PoolMeta{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("fee: %w", err)
	}

	values, err = r.call(ctx, pool, poolABI, "tickSpacing")
	if err != nil {
		return model.PoolMeta{}, err
	}
	tickSpacingInt, err := asBigInt(values[0])
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}
	tickSpacing, err := int24FromBig(tickSpacingInt)
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("tick spacing: %w", err)
	}

	meta := model.PoolMeta{
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(feeInt.Uint64()),
		TickSpacing: tickSpacing,
	}
	r.poolMeta.Set(pool, meta)
	return meta, nil
}

// PoolState reads slot0 and liquidity as one best-effort snapshot. A
// failed read leaves the corresponding field nil so downstream math
// treats it as still loading instead of zero.
func (r *Reader) PoolState(ctx context.Context, pool common.Address) model.PoolState {
	state := model.PoolState{
		Address:    strings.ToLower(pool.Hex()),
		ObservedAt: r.observedAt(ctx),
	}

	poolABI, err := PoolABI()
	if err != nil {
		r.logger.Warn("parse pool abi failed", zap.Error(err))
		return state
	}

	if values, err := r.call(ctx, pool, poolABI, "slot0"); err == nil && len(values) >= 2 {
		sqrt, errSqrt := asBigInt(values[0])
		tickInt, errTick := asBigInt(values[1])
		if errSqrt == nil && errTick == nil {
			if tick, err := int24FromBig(tickInt); err == nil {
				state.SqrtPriceX96 = sqrt.String()
				state.Tick = &tick
			}
		}
	} else if err != nil {
		r.logger.Debug("slot0 call failed", zap.String("pool", pool.Hex()), zap.Error(err))
	}

	if values, err := r.call(ctx, pool, poolABI, "liquidity"); err == nil {
		if liq, err := asBigInt(values[0]); err == nil {
			state.Liquidity = liq
		}
	} else {
		r.logger.Debug("liquidity call failed", zap.String("pool", pool.Hex()), zap.Error(err))
	}

	return state
}

// TokenMeta loads ERC20 metadata, from cache when possible.
func (r *Reader) TokenMeta(ctx context.Context, token common.Address) (model.TokenMeta, error) {
	if meta, ok := r.tokenMeta.Get(token); ok {
		return meta, nil
	}
	meta, err := FetchTokenMeta(ctx, r.chain, token, r.logger)
	if err != nil {
		return model.TokenMeta{}, err
	}
	r.tokenMeta.Set(token, meta)
	return meta, nil
}

// CurveState reads the bonding curve's reserve, supply, and fee as one
// snapshot. Always a fresh read; quotes must not reuse stale state.
func (r *Reader) CurveState(ctx context.Context, curveAddr common.Address) (curve.State, error) {
	parsed, err := CurveABI()
	if err != nil {
		return curve.State{}, fmt.Errorf("parse curve abi: %w", err)
	}

	values, err := r.call(ctx, curveAddr, parsed, "seiReserve")
	if err != nil {
		return curve.State{}, err
	}
	reserve, err := asBigInt(values[0])
	if err != nil {
		return curve.State{}, fmt.Errorf("seiReserve: %w", err)
	}

	values, err = r.call(ctx, curveAddr, parsed, "circulatingSupply")
	if err != nil {
		return curve.State{}, err
	}
	supply, err := asBigInt(values[0])
	if err != nil {
		return curve.State{}, fmt.Errorf("circulatingSupply: %w", err)
	}

	values, err = r.call(ctx, curveAddr, parsed, "feeBps")
	if err != nil {
		return curve.State{}, err
	}
	feeInt, err := asBigInt(values[0])
	if err != nil {
		return curve.State{}, fmt.Errorf("feeBps: %w", err)
	}

	return curve.State{
		Reserve: reserve,
		Supply:  supply,
		FeeBps:  uint32(feeInt.Uint64()),
	}, nil
}

// SellQuoter returns a curve.SellQuoter backed by the curve contract.
func (r *Reader) SellQuoter(curveAddr common.Address) curve.SellQuoter {
	return &contractSellQuoter{reader: r, curve: curveAddr}
}

type contractSellQuoter struct {
	reader *Reader
	curve  common.Address
}

func (q *contractSellQuoter) QuoteSell(ctx context.Context, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return new(big.Int), nil
	}
	parsed, err := CurveABI()
	if err != nil {
		return nil, fmt.Errorf("parse curve abi: %w", err)
	}
	values, err := q.reader.call(ctx, q.curve, parsed, "quoteSell", amount)
	if err != nil {
		return nil, err
	}
	out, err := asBigInt(values[0])
	if err != nil {
		return nil, fmt.Errorf("quoteSell: %w", err)
	}
	return out, nil
}

func (r *Reader) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	if r.chain == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.chain.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return values, nil
}

// observedAt stamps a snapshot with the latest block timestamp, falling
// back to wall-clock time when the header read fails.
func (r *Reader) observedAt(ctx context.Context) uint64 {
	if r.chain != nil {
		if latest, err := r.chain.LatestBlockNumber(ctx); err == nil {
			if ts, err := r.chain.BlockTimestamp(ctx, latest); err == nil {
				return ts
			}
		}
	}
	return uint64(time.Now().UTC().Unix())
}

func decodePosition(tokenID uint64, values []interface{}) (model.Position, error) {
	if len(values) != 12 {
		return model.Position{}, fmt.Errorf("unexpected positions values: %d", len(values))
	}

	token0, err := asAddress(values[2])
	if err != nil {
		return model.Position{}, fmt.Errorf("token0: %w", err)
	}
	token1, err := asAddress(values[3])
	if err != nil {
		return model.Position{}, fmt.Errorf("token1: %w", err)
	}
	feeInt, err := asBigInt(values[4])
	if err != nil {
		return model.Position{}, fmt.Errorf("fee: %w", err)
	}
	tickLowerInt, err := asBigInt(values[5])
	if err != nil {
		return model.Position{}, fmt.Errorf("tickLower: %w", err)
	}
	tickLower, err := int24FromBig(tickLowerInt)
	if err != nil {
		return model.Position{}, fmt.Errorf("tickLower: %w", err)
	}
	tickUpperInt, err := asBigInt(values[6])
	if err != nil {
		return model.Position{}, fmt.Errorf("tickUpper: %w", err)
	}
	tickUpper, err := int24FromBig(tickUpperInt)
	if err != nil {
		return model.Position{}, fmt.Errorf("tickUpper: %w", err)
	}
	liquidity, err := asBigInt(values[7])
	if err != nil {
		return model.Position{}, fmt.Errorf("liquidity: %w", err)
	}
	owed0, err := asBigInt(values[10])
	if err != nil {
		return model.Position{}, fmt.Errorf("tokensOwed0: %w", err)
	}
	owed1, err := asBigInt(values[11])
	if err != nil {
		return model.Position{}, fmt.Errorf("tokensOwed1: %w", err)
	}

	if tickLower >= tickUpper {
		return model.Position{}, fmt.Errorf("invalid tick range: [%d, %d)", tickLower, tickUpper)
	}

	return model.Position{
		TokenID:     tokenID,
		Token0:      token0.Hex(),
		Token1:      token1.Hex(),
		Fee:         uint32(feeInt.Uint64()),
		TickLower:   tickLower,
		TickUpper:   tickUpper,
		Liquidity:   liquidity,
		TokensOwed0: owed0,
		TokensOwed1: owed1,
	}, nil
}

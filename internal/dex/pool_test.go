package dex

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

var (
	testPool   = common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640")
	testToken0 = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	testToken1 = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

// fakeCaller answers eth_call by contract address and method selector.
type fakeCaller struct {
	responses map[common.Address]map[[4]byte][]byte
	failures  int
	calls     int
	blocks    []*big.Int
}

func (f *fakeCaller) set(t *testing.T, to common.Address, parsed abi.ABI, method string, values ...interface{}) {
	t.Helper()
	m, ok := parsed.Methods[method]
	if !ok {
		t.Fatalf("unknown method %s", method)
	}
	out, err := m.Outputs.Pack(values...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	if f.responses == nil {
		f.responses = make(map[common.Address]map[[4]byte][]byte)
	}
	if f.responses[to] == nil {
		f.responses[to] = make(map[[4]byte][]byte)
	}
	var id [4]byte
	copy(id[:], m.ID)
	f.responses[to][id] = out
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	f.calls++
	f.blocks = append(f.blocks, block)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("rpc unavailable")
	}
	var id [4]byte
	copy(id[:], msg.Data[:4])
	resp, ok := f.responses[*msg.To][id]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func newFakeChain(t *testing.T) *fakeCaller {
	t.Helper()
	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	erc20, err := erc20ABIStringInstance()
	if err != nil {
		t.Fatalf("erc20 abi parse: %v", err)
	}
	erc20Bytes, err := erc20ABIBytes32Instance()
	if err != nil {
		t.Fatalf("erc20 bytes32 abi parse: %v", err)
	}

	f := &fakeCaller{}
	f.set(t, testPool, poolABI, "token0", testToken0)
	f.set(t, testPool, poolABI, "token1", testToken1)
	f.set(t, testPool, poolABI, "fee", big.NewInt(500))
	f.set(t, testPool, poolABI, "tickSpacing", big.NewInt(10))
	sqrt, _ := new(big.Int).SetString("1771595571142957102961017161607260", 10)
	f.set(t, testPool, poolABI, "slot0", sqrt, big.NewInt(201000), uint16(1), uint16(2), uint16(3), uint8(0), true)
	f.set(t, testPool, poolABI, "liquidity", big.NewInt(123456789))

	f.set(t, testToken0, erc20, "decimals", uint8(6))
	f.set(t, testToken0, erc20, "symbol", "USDC")
	f.set(t, testToken0, erc20, "name", "USD Coin")
	f.set(t, testToken0, erc20, "allowance", big.NewInt(777))
	f.set(t, testToken0, erc20, "balanceOf", big.NewInt(888))

	var sym [32]byte
	copy(sym[:], "WETH")
	f.set(t, testToken1, erc20, "decimals", uint8(18))
	f.set(t, testToken1, erc20Bytes, "symbol", sym)
	return f
}

func TestFetchPoolMetaAndState(t *testing.T) {
	f := newFakeChain(t)
	tokens := NewTokenMetaCache()

	meta, err := FetchPoolMeta(context.Background(), f, testPool, tokens, zap.NewNop())
	if err != nil {
		t.Fatalf("fetch meta: %v", err)
	}
	if meta.Fee != 500 || meta.TickSpacing != 10 {
		t.Fatalf("meta mismatch: %+v", meta)
	}
	if meta.Token0 != testToken0.Hex() || meta.Token1 != testToken1.Hex() {
		t.Fatalf("token mismatch: %+v", meta)
	}

	usdc, ok := tokens.Get(testToken0)
	if !ok || usdc.Symbol != "USDC" || usdc.Decimals != 6 || usdc.Name != "USD Coin" {
		t.Fatalf("token0 meta mismatch: %+v", usdc)
	}
	weth, ok := tokens.Get(testToken1)
	if !ok || weth.Symbol != "WETH" || weth.Decimals != 18 {
		t.Fatalf("token1 bytes32 fallback mismatch: %+v", weth)
	}

	state, err := FetchPoolState(context.Background(), f, testPool, meta, nil)
	if err != nil {
		t.Fatalf("fetch state: %v", err)
	}
	if state.Tick != 201000 || state.TickSpacing != 10 {
		t.Fatalf("state mismatch: %+v", state)
	}
	if state.SqrtPriceX96.ToBig().String() != "1771595571142957102961017161607260" {
		t.Fatalf("sqrt price mismatch: %s", state.SqrtPriceX96.ToBig())
	}
	if state.Liquidity.Uint64() != 123456789 {
		t.Fatalf("liquidity mismatch: %s", state.Liquidity.ToBig())
	}
	if state.Key.Fee != 500 || state.Key.Token0 != testToken0 {
		t.Fatalf("key mismatch: %+v", state.Key)
	}
}

func TestChainPoolRetriesAndCaches(t *testing.T) {
	f := newFakeChain(t)
	f.failures = 2
	pool := NewChainPool(f, testPool, 3, time.Millisecond, nil)

	state, err := pool.State(context.Background())
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.Address != testPool || state.TickSpacing != 10 {
		t.Fatalf("state mismatch: %+v", state)
	}
	if _, ok := pool.Token(testToken0); !ok {
		t.Fatalf("token cache not warmed")
	}

	before := f.calls
	if _, err := pool.State(context.Background()); err != nil {
		t.Fatalf("second state: %v", err)
	}
	// Metadata is cached; only slot0 and liquidity are read again.
	if got := f.calls - before; got != 2 {
		t.Fatalf("expected 2 calls after caching, got %d", got)
	}

	missing := NewChainPool(f, common.HexToAddress("0x0000000000000000000000000000000000000001"), 0, time.Millisecond, nil)
	if _, err := missing.State(context.Background()); err == nil {
		t.Fatalf("expected error for unknown pool")
	}
}

func TestChainPoolStateAtPinsBlock(t *testing.T) {
	f := newFakeChain(t)
	pool := NewChainPool(f, testPool, 0, time.Millisecond, nil)
	if _, err := pool.Meta(context.Background()); err != nil {
		t.Fatalf("meta: %v", err)
	}

	f.blocks = nil
	block := big.NewInt(19_000_000)
	if _, err := pool.StateAt(context.Background(), block); err != nil {
		t.Fatalf("state at: %v", err)
	}
	if len(f.blocks) != 2 {
		t.Fatalf("expected slot0 and liquidity reads, got %d", len(f.blocks))
	}
	for i, got := range f.blocks {
		if got == nil || got.Cmp(block) != 0 {
			t.Fatalf("read %d at block %v, want %s", i, got, block)
		}
	}
}

func TestFetchAllowanceAndBalance(t *testing.T) {
	f := newFakeChain(t)
	owner := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	allowance, err := FetchAllowance(context.Background(), f, testToken0, owner, testPool)
	if err != nil {
		t.Fatalf("allowance: %v", err)
	}
	if allowance.Uint64() != 777 {
		t.Fatalf("allowance mismatch: %s", allowance.ToBig())
	}
	balance, err := FetchBalance(context.Background(), f, testToken0, owner)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Uint64() != 888 {
		t.Fatalf("balance mismatch: %s", balance.ToBig())
	}
}

func TestEncodeMintRoundTrip(t *testing.T) {
	poolABI, err := V3PoolABI()
	if err != nil {
		t.Fatalf("abi parse: %v", err)
	}
	recipient := common.HexToAddress("0x3333333333333333333333333333333333333333")
	amount := new(uint256.Int).Lsh(uint256.NewInt(1), 100)

	calldata, err := EncodeMint(recipient, -887220, 120, amount, []byte{0xde, 0xad})
	if err != nil {
		t.Fatalf("encode mint: %v", err)
	}
	method, err := poolABI.MethodById(calldata[:4])
	if err != nil || method.Name != "mint" {
		t.Fatalf("selector mismatch: %v", err)
	}
	args, err := method.Inputs.Unpack(calldata[4:])
	if err != nil {
		t.Fatalf("unpack mint: %v", err)
	}
	if args[0].(common.Address) != recipient {
		t.Fatalf("recipient mismatch: %v", args[0])
	}
	if args[1].(*big.Int).Int64() != -887220 || args[2].(*big.Int).Int64() != 120 {
		t.Fatalf("ticks mismatch: %v %v", args[1], args[2])
	}
	if args[3].(*big.Int).Cmp(amount.ToBig()) != 0 {
		t.Fatalf("amount mismatch: %v", args[3])
	}
	if string(args[4].([]byte)) != "\xde\xad" {
		t.Fatalf("data mismatch: %x", args[4])
	}

	tooBig := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	if _, err := EncodeMint(recipient, 0, 10, tooBig, nil); err == nil {
		t.Fatalf("expected uint128 overflow error")
	}
}

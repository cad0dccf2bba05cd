// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

var (
	testManagerAddr = common.HexToAddress("0x0000000000000000000000000000000000009010")
	testDeployer    = common.HexToAddress("0x00000000000000000000000000000000000000de")
	testSender      = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	testStranger    = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// MockStateDB is a minimal in-memory slot store
type MockStateDB struct {
	storage   map[common.Address]map[common.Hash]common.Hash
	transient map[common.Address]map[common.Hash]common.Hash
	writes    int
}

func NewMockStateDB() *MockStateDB {
	return &MockStateDB{
		storage:   make(map[common.Address]map[common.Hash]common.Hash),
		transient: make(map[common.Address]map[common.Hash]common.Hash),
	}
}

func (m *MockStateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	return m.storage[addr][key]
}

func (m *MockStateDB) SetState(addr common.Address, key, value common.Hash) {
	if m.storage[addr] == nil {
		m.storage[addr] = make(map[common.Hash]common.Hash)
	}
	m.storage[addr][key] = value
	m.writes++
}

func (m *MockStateDB) GetTransientState(addr common.Address, key common.Hash) common.Hash {
	return m.transient[addr][key]
}

func (m *MockStateDB) SetTransientState(addr common.Address, key, value common.Hash) {
	if m.transient[addr] == nil {
		m.transient[addr] = make(map[common.Hash]common.Hash)
	}
	m.transient[addr][key] = value
	m.writes++
}

// mockManager records the calls hooks make and routes Unlock back to the
// registered receiver
type mockManager struct {
	addr      common.Address
	receivers map[common.Address]UnlockCallbackReceiver
	calls     []string
}

func newMockManager() *mockManager {
	return &mockManager{
		addr:      testManagerAddr,
		receivers: make(map[common.Address]UnlockCallbackReceiver),
	}
}

func (m *mockManager) Address() common.Address { return m.addr }

func (m *mockManager) Unlock(caller common.Address, data []byte) ([]byte, error) {
	m.calls = append(m.calls, "unlock")
	return m.receivers[caller].UnlockCallback(m.addr, data)
}

func (m *mockManager) UpdateDynamicLPFee(common.Address, PoolKey, uint24) error {
	m.calls = append(m.calls, "updateDynamicLPFee")
	return nil
}

func (m *mockManager) Take(common.Address, Currency, common.Address, *big.Int) error {
	m.calls = append(m.calls, "take")
	return nil
}

func (m *mockManager) Settle(common.Address, Currency, *big.Int) error {
	m.calls = append(m.calls, "settle")
	return nil
}

func (m *mockManager) Mint(common.Address, common.Address, Currency, *big.Int) error {
	m.calls = append(m.calls, "mint")
	return nil
}

func (m *mockManager) Burn(common.Address, common.Address, Currency, *big.Int) error {
	m.calls = append(m.calls, "burn")
	return nil
}

func (m *mockManager) Donate(common.Address, PoolKey, *big.Int, *big.Int, []byte) (BalanceDelta, error) {
	m.calls = append(m.calls, "donate")
	return ZeroBalanceDelta(), nil
}

// allHandler declares every callback and overrides none of them
type allHandler struct {
	UnimplementedHandler
}

func (allHandler) Permissions() Permissions {
	return DecodePermissions(AllHookMask)
}

// countingHandler declares every callback and counts the calls that reach it
type countingHandler struct {
	calls int
}

func (*countingHandler) Permissions() Permissions {
	return DecodePermissions(AllHookMask)
}

func (h *countingHandler) OnBeforeInitialize(common.Address, PoolKey, *big.Int) error {
	h.calls++
	return nil
}

func (h *countingHandler) OnAfterInitialize(common.Address, PoolKey, *big.Int, int24) error {
	h.calls++
	return nil
}

func (h *countingHandler) OnBeforeAddLiquidity(common.Address, PoolKey, ModifyLiquidityParams, []byte) error {
	h.calls++
	return nil
}

func (h *countingHandler) OnAfterAddLiquidity(common.Address, PoolKey, ModifyLiquidityParams, BalanceDelta, BalanceDelta, []byte) (BalanceDelta, error) {
	h.calls++
	return ZeroBalanceDelta(), nil
}

func (h *countingHandler) OnBeforeRemoveLiquidity(common.Address, PoolKey, ModifyLiquidityParams, []byte) error {
	h.calls++
	return nil
}

func (h *countingHandler) OnAfterRemoveLiquidity(common.Address, PoolKey, ModifyLiquidityParams, BalanceDelta, BalanceDelta, []byte) (BalanceDelta, error) {
	h.calls++
	return ZeroBalanceDelta(), nil
}

func (h *countingHandler) OnBeforeSwap(common.Address, PoolKey, SwapParams, []byte) (BeforeSwapDelta, uint24, error) {
	h.calls++
	return ZeroBeforeSwapDelta(), 0, nil
}

func (h *countingHandler) OnAfterSwap(common.Address, PoolKey, SwapParams, BalanceDelta, []byte) (*big.Int, error) {
	h.calls++
	return big.NewInt(0), nil
}

func (h *countingHandler) OnBeforeDonate(common.Address, PoolKey, *big.Int, *big.Int, []byte) error {
	h.calls++
	return nil
}

func (h *countingHandler) OnAfterDonate(common.Address, PoolKey, *big.Int, *big.Int, []byte) error {
	h.calls++
	return nil
}

func allFlagsAddress() common.Address {
	return GenerateHookAddress(testDeployer, [32]byte{1}, DecodePermissions(AllHookMask))
}

func testPoolKey(hook common.Address) PoolKey {
	return PoolKey{
		Currency0:   Currency{Address: common.HexToAddress("0x0000000000000000000000000000000000000001")},
		Currency1:   Currency{Address: common.HexToAddress("0x0000000000000000000000000000000000000002")},
		Fee:         DynamicFeeFlag,
		TickSpacing: 60,
		Hooks:       hook,
	}
}

// callEntryPoint invokes one lifecycle entry point as caller
func callEntryPoint(h IHooks, cb Callback, caller common.Address) (Selector, error) {
	key := testPoolKey(h.Address())
	liq := ModifyLiquidityParams{TickLower: -60, TickUpper: 60, LiquidityDelta: big.NewInt(1)}
	swap := SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-1), SqrtPriceLimitX96: big.NewInt(0)}
	zero := ZeroBalanceDelta()
	one := big.NewInt(1)

	switch cb {
	case CallbackBeforeInitialize:
		return h.BeforeInitialize(caller, testSender, key, one)
	case CallbackAfterInitialize:
		return h.AfterInitialize(caller, testSender, key, one, 0)
	case CallbackBeforeAddLiquidity:
		return h.BeforeAddLiquidity(caller, testSender, key, liq, nil)
	case CallbackAfterAddLiquidity:
		sel, _, err := h.AfterAddLiquidity(caller, testSender, key, liq, zero, zero, nil)
		return sel, err
	case CallbackBeforeRemoveLiquidity:
		return h.BeforeRemoveLiquidity(caller, testSender, key, liq, nil)
	case CallbackAfterRemoveLiquidity:
		sel, _, err := h.AfterRemoveLiquidity(caller, testSender, key, liq, zero, zero, nil)
		return sel, err
	case CallbackBeforeSwap:
		sel, _, _, err := h.BeforeSwap(caller, testSender, key, swap, nil)
		return sel, err
	case CallbackAfterSwap:
		sel, _, err := h.AfterSwap(caller, testSender, key, swap, zero, nil)
		return sel, err
	case CallbackBeforeDonate:
		return h.BeforeDonate(caller, testSender, key, one, one, nil)
	default:
		return h.AfterDonate(caller, testSender, key, one, one, nil)
	}
}

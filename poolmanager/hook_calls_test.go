// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"errors"
	"math/big"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dexhooks/hooks"
)

var errHookFailed = errors.New("hook failed")

var markerSlot = common.HexToHash("0x01")

// testHook is a configurable hook wired through BaseHook
type testHook struct {
	*hooks.BaseHook
	hooks.UnimplementedHandler

	perms        hooks.Permissions
	afterInitErr error
	swapFee      uint32
	afterSwapCut *big.Int
	afterSwapErr error
	swaps        int
}

func (h *testHook) Permissions() hooks.Permissions {
	return h.perms
}

func (h *testHook) OnAfterInitialize(common.Address, hooks.PoolKey, *big.Int, int32) error {
	h.State().SetState(h.Address(), markerSlot, common.HexToHash("0xff"))
	return h.afterInitErr
}

func (h *testHook) OnBeforeSwap(common.Address, hooks.PoolKey, hooks.SwapParams, []byte) (hooks.BeforeSwapDelta, uint32, error) {
	h.swaps++
	return hooks.ZeroBeforeSwapDelta(), h.swapFee, nil
}

func (h *testHook) OnAfterSwap(_ common.Address, key hooks.PoolKey, params hooks.SwapParams, _ hooks.BalanceDelta, _ []byte) (*big.Int, error) {
	if h.afterSwapErr != nil {
		return nil, h.afterSwapErr
	}
	currency := hooks.UnspecifiedCurrency(key, params)
	if err := hooks.Take(h.Manager(), h.Address(), currency, h.afterSwapCut, true); err != nil {
		return nil, err
	}
	return h.afterSwapCut, nil
}

// badSelectorHook answers BeforeSwap with the wrong selector
type badSelectorHook struct {
	*testHook
}

func (h badSelectorHook) BeforeSwap(common.Address, common.Address, hooks.PoolKey, hooks.SwapParams, []byte) (hooks.Selector, hooks.BeforeSwapDelta, uint32, error) {
	return hooks.CallbackAfterSwap.Selector(), hooks.ZeroBeforeSwapDelta(), 0, nil
}

func newHookedManager(t *testing.T, h *testHook, math SwapMath) (*Manager, *Router) {
	t.Helper()
	require := require.New(t)

	m := newTestManager(t, WithSwapMath(math))
	base, err := hooks.New(hooks.Config{
		Manager: m,
		Address: hooks.GenerateHookAddress(deployer, [32]byte{9}, h.perms),
		State:   m.State(),
		Logger:  log.NewNoOpLogger(),
	}, h)
	require.NoError(err)
	h.BaseHook = base
	return m, fundedRouter(t, m)
}

func hookedKey(h *testHook, fee uint32) hooks.PoolKey {
	key := plainKey()
	key.Fee = fee
	key.Hooks = h.Address()
	return key
}

func TestInitializeRollsBackOnHookFailure(t *testing.T) {
	require := require.New(t)
	h := &testHook{perms: hooks.Permissions{AfterInitialize: true}, afterInitErr: errHookFailed}
	m, _ := newHookedManager(t, h, ConstantLiquidityMath{})
	require.NoError(m.Registry().Register(h))

	key := hookedKey(h, 3000)
	_, err := m.Initialize(userAddr, key, Q96)
	require.ErrorIs(err, errHookFailed)

	_, err = m.GetPool(key)
	require.ErrorIs(err, ErrPoolNotInitialized)
	require.Equal(common.Hash{}, m.State().GetState(h.Address(), markerSlot))
	require.Empty(m.State().Logs())

	h.afterInitErr = nil
	_, err = m.Initialize(userAddr, key, Q96)
	require.NoError(err)
	require.Equal(common.HexToHash("0xff"), m.State().GetState(h.Address(), markerSlot))
}

func TestUnregisteredHookFailsInitialize(t *testing.T) {
	h := &testHook{perms: hooks.Permissions{AfterInitialize: true}}
	m, _ := newHookedManager(t, h, ConstantLiquidityMath{})

	_, err := m.Initialize(userAddr, hookedKey(h, 3000), Q96)
	require.ErrorIs(t, err, hooks.ErrHookNotRegistered)
}

func TestInvalidHookSelector(t *testing.T) {
	require := require.New(t)
	h := &testHook{perms: hooks.Permissions{BeforeSwap: true}}
	m, r := newHookedManager(t, h, FixedQuote{Unspecified: big.NewInt(1000)})
	require.NoError(m.Registry().Register(badSelectorHook{h}))

	key := hookedKey(h, 3000)
	_, err := m.Initialize(userAddr, key, Q96)
	require.NoError(err)

	_, err = r.Swap(key, hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-1000)}, nil)
	require.ErrorIs(err, hooks.ErrInvalidHookResponse)
}

func TestOverrideFeeHonoredOnlyOnDynamicPools(t *testing.T) {
	tests := []struct {
		name     string
		fee      uint32
		expected int64
	}{
		{"static pool keeps its fee", 3000, 3000},
		{"dynamic pool takes the override", hooks.DynamicFeeFlag, 500},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			h := &testHook{perms: hooks.Permissions{BeforeSwap: true}, swapFee: 500 | hooks.OverrideFeeFlag}
			m, r := newHookedManager(t, h, FixedQuote{Unspecified: big.NewInt(1000)})
			require.NoError(m.Registry().Register(h))

			key := hookedKey(h, test.fee)
			_, err := m.Initialize(userAddr, key, Q96)
			require.NoError(err)
			_, err = r.ModifyLiquidity(key, fullRange(), nil)
			require.NoError(err)

			_, err = r.Swap(key, hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-1000)}, nil)
			require.NoError(err)
			require.Equal(1, h.swaps)

			logs := m.State().Logs()
			swap, err := DecodeSwapEvent(logs[len(logs)-1])
			require.NoError(err)
			require.Equal(test.expected, swap.Fee.Int64())
		})
	}
}

func TestOverrideFeeAboveMaxRejected(t *testing.T) {
	require := require.New(t)
	h := &testHook{perms: hooks.Permissions{BeforeSwap: true}, swapFee: (hooks.MaxLPFee + 1) | hooks.OverrideFeeFlag}
	m, r := newHookedManager(t, h, FixedQuote{Unspecified: big.NewInt(1000)})
	require.NoError(m.Registry().Register(h))

	key := hookedKey(h, hooks.DynamicFeeFlag)
	_, err := m.Initialize(userAddr, key, Q96)
	require.NoError(err)

	_, err = r.Swap(key, hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-1000)}, nil)
	require.ErrorIs(err, hooks.ErrLPFeeTooLarge)
}

func TestAfterSwapDeltaChargesUnspecifiedSide(t *testing.T) {
	require := require.New(t)
	h := &testHook{
		perms:        hooks.Permissions{AfterSwap: true, AfterSwapReturnDelta: true},
		afterSwapCut: big.NewInt(100),
	}
	m, r := newHookedManager(t, h, FixedQuote{Unspecified: big.NewInt(1000)})
	require.NoError(m.Registry().Register(h))

	key := hookedKey(h, 3000)
	_, err := m.Initialize(userAddr, key, Q96)
	require.NoError(err)
	_, err = r.ModifyLiquidity(key, fullRange(), nil)
	require.NoError(err)

	delta, err := r.Swap(key, hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-1000)}, nil)
	require.NoError(err)
	require.Equal(int64(-1000), delta.Amount0.Int64())
	require.Equal(int64(900), delta.Amount1.Int64())
	require.Equal(int64(100), m.ClaimsOf(h.Address(), currency1).Int64())

	// exact output: the unspecified side is the input, so the router pays more
	delta, err = r.Swap(key, hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(500)}, nil)
	require.NoError(err)
	require.Equal(int64(-1100), delta.Amount0.Int64())
	require.Equal(int64(500), delta.Amount1.Int64())
	require.Equal(int64(100), m.ClaimsOf(h.Address(), currency0).Int64())
}

func TestFailedOperationLeavesNoTrace(t *testing.T) {
	swapParams := hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-1000)}
	addParams := hooks.ModifyLiquidityParams{TickLower: -60, TickUpper: 60, LiquidityDelta: big.NewInt(1000)}

	tests := []struct {
		name     string
		perms    hooks.Permissions
		op       func(m *Manager, key hooks.PoolKey) error
		expected error
	}{
		{
			name:  "swap",
			perms: hooks.Permissions{AfterSwap: true},
			op: func(m *Manager, key hooks.PoolKey) error {
				_, err := m.Swap(userAddr, key, swapParams, nil)
				return err
			},
			expected: errHookFailed,
		},
		{
			name:  "add liquidity",
			perms: hooks.Permissions{AfterAddLiquidity: true},
			op: func(m *Manager, key hooks.PoolKey) error {
				_, _, err := m.ModifyLiquidity(userAddr, key, addParams, nil)
				return err
			},
			expected: hooks.ErrHookNotImplemented,
		},
		{
			name:  "donate",
			perms: hooks.Permissions{AfterDonate: true},
			op: func(m *Manager, key hooks.PoolKey) error {
				_, err := m.Donate(userAddr, key, big.NewInt(500), big.NewInt(0), nil)
				return err
			},
			expected: hooks.ErrHookNotImplemented,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)
			h := &testHook{perms: test.perms, afterSwapErr: errHookFailed}
			m, r := newHookedManager(t, h, ConstantLiquidityMath{})
			require.NoError(m.Registry().Register(h))

			key := hookedKey(h, 3000)
			_, err := m.Initialize(userAddr, key, Q96)
			require.NoError(err)
			if !test.perms.AfterAddLiquidity {
				_, err = r.ModifyLiquidity(key, fullRange(), nil)
				require.NoError(err)
			}

			before, err := m.GetPool(key)
			require.NoError(err)
			logs := len(m.State().Logs())

			// the receiver recovers from the failure and ends the session cleanly
			var opErr error
			m.RegisterReceiver(receiverFunc{addr: userAddr, fn: func([]byte) ([]byte, error) {
				opErr = test.op(m, key)
				return nil, nil
			}})
			_, err = m.Unlock(userAddr, nil)
			require.NoError(err)
			require.ErrorIs(opErr, test.expected)

			after, err := m.GetPool(key)
			require.NoError(err)
			require.Zero(after.FeeGrowth0X128.Sign())
			require.Zero(after.FeeGrowth1X128.Sign())
			require.Zero(before.Liquidity.Cmp(after.Liquidity))
			require.Zero(before.SqrtPriceX96.Cmp(after.SqrtPriceX96))
			require.Zero(m.GetPosition(key, userAddr, addParams.TickLower, addParams.TickUpper, addParams.Salt).Sign())
			require.Len(m.State().Logs(), logs)
		})
	}
}

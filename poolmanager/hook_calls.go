// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

// shouldCall reports whether the pool's hook is called at flag. Hooks are
// never called back for operations they initiated themselves.
func (m *Manager) shouldCall(key hooks.PoolKey, caller common.Address, flag hooks.Flags) bool {
	return key.Hooks != caller && m.registry.IsHookEnabled(key.Hooks, flag)
}

func (m *Manager) hook(key hooks.PoolKey) (hooks.IHooks, error) {
	return m.registry.Get(key.Hooks)
}

func checkSelector(cb hooks.Callback, got hooks.Selector) error {
	if got != cb.Selector() {
		return fmt.Errorf("%w: %s returned %s", hooks.ErrInvalidHookResponse, cb, got)
	}
	return nil
}

func (m *Manager) beforeInitialize(caller common.Address, key hooks.PoolKey, sqrtPriceX96 *big.Int) error {
	if !m.shouldCall(key, caller, hooks.BeforeInitializeFlag) {
		return nil
	}
	h, err := m.hook(key)
	if err != nil {
		return err
	}
	sel, err := h.BeforeInitialize(m.address, caller, key, sqrtPriceX96)
	if err != nil {
		return err
	}
	return checkSelector(hooks.CallbackBeforeInitialize, sel)
}

func (m *Manager) afterInitialize(caller common.Address, key hooks.PoolKey, sqrtPriceX96 *big.Int, tick int32) error {
	if !m.shouldCall(key, caller, hooks.AfterInitializeFlag) {
		return nil
	}
	h, err := m.hook(key)
	if err != nil {
		return err
	}
	sel, err := h.AfterInitialize(m.address, caller, key, sqrtPriceX96, tick)
	if err != nil {
		return err
	}
	return checkSelector(hooks.CallbackAfterInitialize, sel)
}

func (m *Manager) beforeModifyLiquidity(caller common.Address, key hooks.PoolKey, params hooks.ModifyLiquidityParams, hookData []byte) error {
	if params.LiquidityDelta.Sign() > 0 {
		if !m.shouldCall(key, caller, hooks.BeforeAddLiquidityFlag) {
			return nil
		}
		h, err := m.hook(key)
		if err != nil {
			return err
		}
		sel, err := h.BeforeAddLiquidity(m.address, caller, key, params, hookData)
		if err != nil {
			return err
		}
		return checkSelector(hooks.CallbackBeforeAddLiquidity, sel)
	}

	if !m.shouldCall(key, caller, hooks.BeforeRemoveLiquidityFlag) {
		return nil
	}
	h, err := m.hook(key)
	if err != nil {
		return err
	}
	sel, err := h.BeforeRemoveLiquidity(m.address, caller, key, params, hookData)
	if err != nil {
		return err
	}
	return checkSelector(hooks.CallbackBeforeRemoveLiquidity, sel)
}

// afterModifyLiquidity returns the delta the hook takes from the caller; it
// is zero unless the hook holds the matching return-delta flag
func (m *Manager) afterModifyLiquidity(caller common.Address, key hooks.PoolKey, params hooks.ModifyLiquidityParams, delta, feesAccrued hooks.BalanceDelta, hookData []byte) (hooks.BalanceDelta, error) {
	var (
		cb         = hooks.CallbackAfterRemoveLiquidity
		flag       = hooks.AfterRemoveLiquidityFlag
		returnFlag = hooks.AfterRemoveLiquidityReturnsDeltaFlag
	)
	if params.LiquidityDelta.Sign() > 0 {
		cb = hooks.CallbackAfterAddLiquidity
		flag = hooks.AfterAddLiquidityFlag
		returnFlag = hooks.AfterAddLiquidityReturnsDeltaFlag
	}
	if !m.shouldCall(key, caller, flag) {
		return hooks.ZeroBalanceDelta(), nil
	}

	h, err := m.hook(key)
	if err != nil {
		return hooks.BalanceDelta{}, err
	}

	var (
		sel       hooks.Selector
		hookDelta hooks.BalanceDelta
	)
	if cb == hooks.CallbackAfterAddLiquidity {
		sel, hookDelta, err = h.AfterAddLiquidity(m.address, caller, key, params, delta, feesAccrued, hookData)
	} else {
		sel, hookDelta, err = h.AfterRemoveLiquidity(m.address, caller, key, params, delta, feesAccrued, hookData)
	}
	if err != nil {
		return hooks.BalanceDelta{}, err
	}
	if err := checkSelector(cb, sel); err != nil {
		return hooks.BalanceDelta{}, err
	}

	if !hooks.HasPermission(key.Hooks, returnFlag) || hookDelta.Amount0 == nil || hookDelta.Amount1 == nil {
		return hooks.ZeroBalanceDelta(), nil
	}
	return hookDelta, nil
}

// beforeSwap returns the amount left to swap, the hook's before-swap delta
// and the LP fee override, if any
func (m *Manager) beforeSwap(caller common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (*big.Int, hooks.BeforeSwapDelta, uint32, bool, error) {
	amountToSwap := new(big.Int).Set(params.AmountSpecified)
	if !m.shouldCall(key, caller, hooks.BeforeSwapFlag) {
		return amountToSwap, hooks.ZeroBeforeSwapDelta(), 0, false, nil
	}

	h, err := m.hook(key)
	if err != nil {
		return nil, hooks.BeforeSwapDelta{}, 0, false, err
	}
	sel, delta, fee, err := h.BeforeSwap(m.address, caller, key, params, hookData)
	if err != nil {
		return nil, hooks.BeforeSwapDelta{}, 0, false, err
	}
	if err := checkSelector(hooks.CallbackBeforeSwap, sel); err != nil {
		return nil, hooks.BeforeSwapDelta{}, 0, false, err
	}

	var (
		lpFeeOverride uint32
		override      bool
	)
	if hooks.IsDynamicFee(key.Fee) && hooks.IsOverride(fee) {
		lpFeeOverride = hooks.RemoveOverrideFlag(fee)
		if err := hooks.ValidateLPFee(lpFeeOverride); err != nil {
			return nil, hooks.BeforeSwapDelta{}, 0, false, err
		}
		override = true
	}

	if !hooks.HasPermission(key.Hooks, hooks.BeforeSwapReturnsDeltaFlag) || delta.Specified == nil || delta.Unspecified == nil {
		return amountToSwap, hooks.ZeroBeforeSwapDelta(), lpFeeOverride, override, nil
	}

	if delta.Specified.Sign() != 0 {
		amountToSwap.Add(amountToSwap, delta.Specified)
		// the hook may shrink the swap, never flip its direction
		if amountToSwap.Sign() != 0 && amountToSwap.Sign() != params.AmountSpecified.Sign() {
			return nil, hooks.BeforeSwapDelta{}, 0, false, ErrHookDeltaExceedsSwapAmount
		}
	}
	return amountToSwap, delta, lpFeeOverride, override, nil
}

// afterSwap returns the delta owed to the hook, split onto the pool's
// currencies
func (m *Manager) afterSwap(caller common.Address, key hooks.PoolKey, params hooks.SwapParams, swapDelta hooks.BalanceDelta, beforeDelta hooks.BeforeSwapDelta, hookData []byte) (hooks.BalanceDelta, error) {
	specified := new(big.Int).Set(beforeDelta.Specified)
	unspecified := new(big.Int).Set(beforeDelta.Unspecified)

	if m.shouldCall(key, caller, hooks.AfterSwapFlag) {
		h, err := m.hook(key)
		if err != nil {
			return hooks.BalanceDelta{}, err
		}
		sel, hookDelta, err := h.AfterSwap(m.address, caller, key, params, swapDelta, hookData)
		if err != nil {
			return hooks.BalanceDelta{}, err
		}
		if err := checkSelector(hooks.CallbackAfterSwap, sel); err != nil {
			return hooks.BalanceDelta{}, err
		}
		if hooks.HasPermission(key.Hooks, hooks.AfterSwapReturnsDeltaFlag) {
			unspecified.Add(unspecified, hookDelta)
		}
	}

	// the specified side is currency0 exactly when the swap is exact-input
	// zeroForOne or exact-output oneForZero
	if params.IsExactInput() == params.ZeroForOne {
		return hooks.NewBalanceDelta(specified, unspecified), nil
	}
	return hooks.NewBalanceDelta(unspecified, specified), nil
}

func (m *Manager) beforeDonate(caller common.Address, key hooks.PoolKey, amount0, amount1 *big.Int, hookData []byte) error {
	if !m.shouldCall(key, caller, hooks.BeforeDonateFlag) {
		return nil
	}
	h, err := m.hook(key)
	if err != nil {
		return err
	}
	sel, err := h.BeforeDonate(m.address, caller, key, amount0, amount1, hookData)
	if err != nil {
		return err
	}
	return checkSelector(hooks.CallbackBeforeDonate, sel)
}

func (m *Manager) afterDonate(caller common.Address, key hooks.PoolKey, amount0, amount1 *big.Int, hookData []byte) error {
	if !m.shouldCall(key, caller, hooks.AfterDonateFlag) {
		return nil
	}
	h, err := m.hook(key)
	if err != nil {
		return err
	}
	sel, err := h.AfterDonate(m.address, caller, key, amount0, amount1, hookData)
	if err != nil {
		return err
	}
	return checkSelector(hooks.CallbackAfterDonate, sel)
}

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

// =========================================================================
// Pool Initialization
// =========================================================================

// Initialize creates a pool and returns the tick of its starting price
func (m *Manager) Initialize(caller common.Address, key hooks.PoolKey, sqrtPriceX96 *big.Int) (int32, error) {
	if !key.Currency0.Less(key.Currency1) {
		return 0, ErrCurrencyNotSorted
	}
	if key.TickSpacing < MinTickSpacing || key.TickSpacing > MaxTickSpacing {
		return 0, fmt.Errorf("%w: %d", ErrTickSpacingOutOfRange, key.TickSpacing)
	}
	if !hooks.IsValidHookAddress(key.Hooks, key.Fee) {
		return 0, fmt.Errorf("%w: %s", hooks.ErrHookAddressNotValid, key.Hooks.Hex())
	}
	if sqrtPriceX96 == nil || sqrtPriceX96.Cmp(MinSqrtRatio) < 0 || sqrtPriceX96.Cmp(MaxSqrtRatio) >= 0 {
		return 0, ErrInvalidSqrtPrice
	}
	lpFee, err := hooks.InitialLPFee(key.Fee)
	if err != nil {
		return 0, err
	}

	id := key.ID()
	pool := m.getPool(id)
	if pool.IsInitialized() {
		return 0, ErrPoolAlreadyInitialized
	}

	cp := m.checkpoint()
	tick, err := m.initialize(caller, key, id, pool, sqrtPriceX96, lpFee)
	if err != nil {
		m.rollback(cp)
		return 0, err
	}
	m.release(cp)

	m.log.Debug("pool initialized", "pool", id, "lpFee", lpFee)
	return tick, nil
}

func (m *Manager) initialize(caller common.Address, key hooks.PoolKey, id hooks.PoolID, pool *Pool, sqrtPriceX96 *big.Int, lpFee uint32) (int32, error) {
	if err := m.beforeInitialize(caller, key, sqrtPriceX96); err != nil {
		return 0, err
	}

	tick := sqrtPriceX96ToTick(sqrtPriceX96)
	pool.SqrtPriceX96 = new(big.Int).Set(sqrtPriceX96)
	pool.Tick = tick
	pool.LPFee = lpFee
	m.setPool(id, pool)

	m.emit("Initialize", common.Hash(id), key.Currency0.Address, key.Currency1.Address,
		big.NewInt(int64(key.Fee)), big.NewInt(int64(key.TickSpacing)), key.Hooks,
		sqrtPriceX96, big.NewInt(int64(tick)))

	if err := m.afterInitialize(caller, key, sqrtPriceX96, tick); err != nil {
		return 0, err
	}
	return tick, nil
}

// UpdateDynamicLPFee sets the LP fee of a dynamic-fee pool. Only the pool's
// hook may call it.
func (m *Manager) UpdateDynamicLPFee(caller common.Address, key hooks.PoolKey, fee uint32) error {
	if !hooks.IsDynamicFee(key.Fee) || caller != key.Hooks {
		return fmt.Errorf("%w: %s", ErrUnauthorizedDynamicLPFeeUpdate, caller.Hex())
	}
	if err := hooks.ValidateLPFee(fee); err != nil {
		return err
	}

	id := key.ID()
	pool := m.getPool(id)
	if !pool.IsInitialized() {
		return ErrPoolNotInitialized
	}
	pool.LPFee = fee
	m.setPool(id, pool)

	m.emit("DynamicLPFeeUpdated", common.Hash(id), big.NewInt(int64(fee)))
	m.log.Debug("dynamic lp fee updated", "pool", id, "fee", fee)
	return nil
}

// =========================================================================
// Core DEX Operations
// =========================================================================

// Swap swaps against a pool and returns the caller's delta after hook
// adjustments. A failed swap leaves no trace, even when the caller recovers
// from the error and the session goes on.
func (m *Manager) Swap(caller common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (hooks.BalanceDelta, error) {
	if err := m.requireUnlocked(); err != nil {
		return hooks.BalanceDelta{}, err
	}

	cp := m.checkpoint()
	delta, err := m.swap(caller, key, params, hookData)
	if err != nil {
		m.rollback(cp)
		return hooks.BalanceDelta{}, err
	}
	m.release(cp)
	return delta, nil
}

func (m *Manager) swap(caller common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (hooks.BalanceDelta, error) {
	if params.AmountSpecified == nil || params.AmountSpecified.Sign() == 0 {
		return hooks.BalanceDelta{}, ErrSwapAmountCannotBeZero
	}

	id := key.ID()
	if !m.getPool(id).IsInitialized() {
		return hooks.BalanceDelta{}, ErrPoolNotInitialized
	}

	amountToSwap, beforeDelta, lpFeeOverride, override, err := m.beforeSwap(caller, key, params, hookData)
	if err != nil {
		return hooks.BalanceDelta{}, err
	}

	// the before-swap hook may have moved the pool
	pool := m.getPool(id)
	lpFee := pool.LPFee
	if override {
		lpFee = lpFeeOverride
	}

	swapDelta := hooks.ZeroBalanceDelta()
	if amountToSwap.Sign() != 0 {
		swapParams := params
		swapParams.AmountSpecified = amountToSwap

		var feeAmount *big.Int
		swapDelta, feeAmount, err = m.math.Swap(pool, swapParams, lpFee)
		if err != nil {
			return hooks.BalanceDelta{}, err
		}
		m.accrueSwapFee(pool, params.ZeroForOne, feeAmount)
		m.setPool(id, pool)
	}

	m.emit("Swap", common.Hash(id), caller, swapDelta.Amount0, swapDelta.Amount1,
		pool.SqrtPriceX96, pool.Liquidity, big.NewInt(int64(pool.Tick)), big.NewInt(int64(lpFee)))

	hookDelta, err := m.afterSwap(caller, key, params, swapDelta, beforeDelta, hookData)
	if err != nil {
		return hooks.BalanceDelta{}, err
	}

	callerDelta := swapDelta.Sub(hookDelta)
	if !hookDelta.IsZero() {
		m.accountPoolDelta(key.Hooks, key, hookDelta)
	}
	m.accountPoolDelta(caller, key, callerDelta)
	return callerDelta, nil
}

// accrueSwapFee credits the LP fee to in-range liquidity as fee growth on
// the input currency
func (m *Manager) accrueSwapFee(pool *Pool, zeroForOne bool, feeAmount *big.Int) {
	if feeAmount == nil || feeAmount.Sign() <= 0 || pool.Liquidity.Sign() <= 0 {
		return
	}
	growth := new(big.Int).Mul(feeAmount, Q128)
	growth.Div(growth, pool.Liquidity)
	if zeroForOne {
		pool.FeeGrowth0X128 = new(big.Int).Add(pool.FeeGrowth0X128, growth)
	} else {
		pool.FeeGrowth1X128 = new(big.Int).Add(pool.FeeGrowth1X128, growth)
	}
}

// ModifyLiquidity adds or removes liquidity from a pool. Adding liquidity
// deposits half of LiquidityDelta in each currency when the position is in
// range, all of it in one currency otherwise. A failure rolls back every
// write the call made.
func (m *Manager) ModifyLiquidity(caller common.Address, key hooks.PoolKey, params hooks.ModifyLiquidityParams, hookData []byte) (hooks.BalanceDelta, hooks.BalanceDelta, error) {
	if err := m.requireUnlocked(); err != nil {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, err
	}

	cp := m.checkpoint()
	callerDelta, feesAccrued, err := m.modifyLiquidity(caller, key, params, hookData)
	if err != nil {
		m.rollback(cp)
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, err
	}
	m.release(cp)
	return callerDelta, feesAccrued, nil
}

func (m *Manager) modifyLiquidity(caller common.Address, key hooks.PoolKey, params hooks.ModifyLiquidityParams, hookData []byte) (hooks.BalanceDelta, hooks.BalanceDelta, error) {
	if params.TickLower >= params.TickUpper || params.TickLower < MinTick || params.TickUpper > MaxTick {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, ErrInvalidTickRange
	}
	if params.LiquidityDelta == nil || params.LiquidityDelta.Sign() == 0 {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, ErrInvalidAmount
	}

	id := key.ID()
	if !m.getPool(id).IsInitialized() {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, ErrPoolNotInitialized
	}

	if err := m.beforeModifyLiquidity(caller, key, params, hookData); err != nil {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, err
	}

	pool := m.getPool(id)
	posSlot := positionSlot(id, caller, params.TickLower, params.TickUpper, params.Salt)
	position := hooks.HashToBig(m.state.GetState(m.address, posSlot))
	position.Add(position, params.LiquidityDelta)
	if position.Sign() < 0 {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, fmt.Errorf("%w: position underflow", ErrInvalidAmount)
	}
	m.state.SetState(m.address, posSlot, hooks.BigToHash(position))

	inRange := params.TickLower <= pool.Tick && pool.Tick < params.TickUpper
	if inRange {
		pool.Liquidity = new(big.Int).Add(pool.Liquidity, params.LiquidityDelta)
	}
	m.setPool(id, pool)

	// callerDelta is the negated principal: deposits are owed by the caller
	principal := liquidityAmounts(pool.Tick, params)
	callerDelta := hooks.NewBalanceDelta(new(big.Int).Neg(principal.Amount0), new(big.Int).Neg(principal.Amount1))
	feesAccrued := hooks.ZeroBalanceDelta()

	m.emit("ModifyLiquidity", common.Hash(id), caller, big.NewInt(int64(params.TickLower)),
		big.NewInt(int64(params.TickUpper)), params.LiquidityDelta, params.Salt)

	hookDelta, err := m.afterModifyLiquidity(caller, key, params, callerDelta, feesAccrued, hookData)
	if err != nil {
		return hooks.BalanceDelta{}, hooks.BalanceDelta{}, err
	}

	callerDelta = callerDelta.Sub(hookDelta)
	if !hookDelta.IsZero() {
		m.accountPoolDelta(key.Hooks, key, hookDelta)
	}
	m.accountPoolDelta(caller, key, callerDelta)
	return callerDelta, feesAccrued, nil
}

// liquidityAmounts returns the signed token amounts backing a liquidity change
func liquidityAmounts(tick int32, params hooks.ModifyLiquidityParams) hooks.BalanceDelta {
	switch {
	case tick < params.TickLower:
		return hooks.NewBalanceDelta(params.LiquidityDelta, big.NewInt(0))
	case tick >= params.TickUpper:
		return hooks.NewBalanceDelta(big.NewInt(0), params.LiquidityDelta)
	default:
		half := new(big.Int).Quo(params.LiquidityDelta, big.NewInt(2))
		return hooks.NewBalanceDelta(half, half)
	}
}

// Donate gives amounts to the pool's in-range liquidity providers. A failure
// rolls back every write the call made.
func (m *Manager) Donate(caller common.Address, key hooks.PoolKey, amount0, amount1 *big.Int, hookData []byte) (hooks.BalanceDelta, error) {
	if err := m.requireUnlocked(); err != nil {
		return hooks.BalanceDelta{}, err
	}

	cp := m.checkpoint()
	delta, err := m.donate(caller, key, amount0, amount1, hookData)
	if err != nil {
		m.rollback(cp)
		return hooks.BalanceDelta{}, err
	}
	m.release(cp)
	return delta, nil
}

func (m *Manager) donate(caller common.Address, key hooks.PoolKey, amount0, amount1 *big.Int, hookData []byte) (hooks.BalanceDelta, error) {
	if amount0 == nil || amount1 == nil || amount0.Sign() < 0 || amount1.Sign() < 0 {
		return hooks.BalanceDelta{}, ErrInvalidAmount
	}

	id := key.ID()
	if !m.getPool(id).IsInitialized() {
		return hooks.BalanceDelta{}, ErrPoolNotInitialized
	}

	if err := m.beforeDonate(caller, key, amount0, amount1, hookData); err != nil {
		return hooks.BalanceDelta{}, err
	}

	pool := m.getPool(id)
	if pool.Liquidity.Sign() <= 0 {
		return hooks.BalanceDelta{}, ErrNoLiquidity
	}

	// feeGrowth += amount * 2^128 / liquidity
	if amount0.Sign() > 0 {
		growth0 := new(big.Int).Mul(amount0, Q128)
		growth0.Div(growth0, pool.Liquidity)
		pool.FeeGrowth0X128 = new(big.Int).Add(pool.FeeGrowth0X128, growth0)
	}
	if amount1.Sign() > 0 {
		growth1 := new(big.Int).Mul(amount1, Q128)
		growth1.Div(growth1, pool.Liquidity)
		pool.FeeGrowth1X128 = new(big.Int).Add(pool.FeeGrowth1X128, growth1)
	}
	m.setPool(id, pool)

	delta := hooks.NewBalanceDelta(new(big.Int).Neg(amount0), new(big.Int).Neg(amount1))
	m.accountPoolDelta(caller, key, delta)

	m.emit("Donate", common.Hash(id), caller, amount0, amount1)

	if err := m.afterDonate(caller, key, amount0, amount1, hookData); err != nil {
		return hooks.BalanceDelta{}, err
	}
	return delta, nil
}

// =========================================================================
// View Functions
// =========================================================================

// GetPool returns the current state of a pool
func (m *Manager) GetPool(key hooks.PoolKey) (*Pool, error) {
	pool := m.getPool(key.ID())
	if !pool.IsInitialized() {
		return nil, ErrPoolNotInitialized
	}
	return pool, nil
}

// GetPosition returns the liquidity of a position
func (m *Manager) GetPosition(key hooks.PoolKey, owner common.Address, tickLower, tickUpper int32, salt [32]byte) *big.Int {
	return hooks.HashToBig(m.state.GetState(m.address, positionSlot(key.ID(), owner, tickLower, tickUpper, salt)))
}

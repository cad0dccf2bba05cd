// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// PoolManager is the part of the singleton manager a hook calls into. Every
// method takes the calling contract's address first, standing in for the
// message sender.
type PoolManager interface {
	// Address is the manager's own address; only it may invoke hook callbacks
	Address() common.Address

	// Unlock opens a flash-accounting session and calls back
	// UnlockCallback on caller with data
	Unlock(caller common.Address, data []byte) ([]byte, error)

	// UpdateDynamicLPFee sets the LP fee of a dynamic-fee pool. Only the
	// pool's hook may call it.
	UpdateDynamicLPFee(caller common.Address, key PoolKey, fee uint24) error

	// Take sends amount of currency to `to`, debiting caller's delta
	Take(caller common.Address, currency Currency, to common.Address, amount *big.Int) error

	// Settle pays amount of currency from caller into the manager,
	// crediting caller's delta
	Settle(caller common.Address, currency Currency, amount *big.Int) error

	// Mint issues claims on pooled funds to `to`, debiting caller's delta
	Mint(caller common.Address, to common.Address, currency Currency, amount *big.Int) error

	// Burn destroys claims held by `from`, crediting caller's delta
	Burn(caller common.Address, from common.Address, currency Currency, amount *big.Int) error

	// Donate gives amounts to the in-range liquidity providers of key
	Donate(caller common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) (BalanceDelta, error)
}

// UnlockCallbackReceiver is implemented by contracts that open unlock sessions
type UnlockCallbackReceiver interface {
	Address() common.Address
	UnlockCallback(caller common.Address, data []byte) ([]byte, error)
}

// IHooks is the manager-facing surface of a hook: the ten lifecycle entry
// points. caller is the address invoking the entry point; sender is the
// address that called the manager.
type IHooks interface {
	Address() common.Address

	BeforeInitialize(caller, sender common.Address, key PoolKey, sqrtPriceX96 *big.Int) (Selector, error)
	AfterInitialize(caller, sender common.Address, key PoolKey, sqrtPriceX96 *big.Int, tick int24) (Selector, error)

	BeforeAddLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, hookData []byte) (Selector, error)
	AfterAddLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, delta, feesAccrued BalanceDelta, hookData []byte) (Selector, BalanceDelta, error)

	BeforeRemoveLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, hookData []byte) (Selector, error)
	AfterRemoveLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, delta, feesAccrued BalanceDelta, hookData []byte) (Selector, BalanceDelta, error)

	BeforeSwap(caller, sender common.Address, key PoolKey, params SwapParams, hookData []byte) (Selector, BeforeSwapDelta, uint24, error)
	AfterSwap(caller, sender common.Address, key PoolKey, params SwapParams, delta BalanceDelta, hookData []byte) (Selector, *big.Int, error)

	BeforeDonate(caller, sender common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) (Selector, error)
	AfterDonate(caller, sender common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) (Selector, error)
}

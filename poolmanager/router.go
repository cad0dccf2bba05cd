// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

var _ hooks.UnlockCallbackReceiver = (*Router)(nil)

// Router is a periphery account that runs one operation per unlock session
// and settles the resulting deltas from its own balances
type Router struct {
	address common.Address
	manager *Manager

	action func() (hooks.BalanceDelta, error)
	result hooks.BalanceDelta
}

// NewRouter creates a router at addr and registers it with the manager
func NewRouter(m *Manager, addr common.Address) *Router {
	r := &Router{address: addr, manager: m}
	m.RegisterReceiver(r)
	return r
}

// Address returns the router's address
func (r *Router) Address() common.Address {
	return r.address
}

// UnlockCallback runs the pending operation and settles its deltas
func (r *Router) UnlockCallback(caller common.Address, _ []byte) ([]byte, error) {
	if caller != r.manager.Address() {
		return nil, fmt.Errorf("%w: %s", hooks.ErrNotPoolManager, caller.Hex())
	}
	if r.action == nil {
		return nil, &hooks.RevertError{}
	}

	delta, err := r.action()
	if err != nil {
		return nil, err
	}
	r.result = delta
	return nil, nil
}

func (r *Router) run(key hooks.PoolKey, op func() (hooks.BalanceDelta, error)) (hooks.BalanceDelta, error) {
	r.action = func() (hooks.BalanceDelta, error) {
		delta, err := op()
		if err != nil {
			return hooks.BalanceDelta{}, err
		}
		if err := r.settle(key.Currency0, delta.Amount0); err != nil {
			return hooks.BalanceDelta{}, err
		}
		if err := r.settle(key.Currency1, delta.Amount1); err != nil {
			return hooks.BalanceDelta{}, err
		}
		return delta, nil
	}
	defer func() { r.action = nil }()

	if _, err := r.manager.Unlock(r.address, nil); err != nil {
		return hooks.BalanceDelta{}, err
	}
	return r.result, nil
}

// settle pays what the router owes or takes what it is owed
func (r *Router) settle(currency hooks.Currency, delta *big.Int) error {
	switch delta.Sign() {
	case -1:
		return hooks.Settle(r.manager, r.address, currency, new(big.Int).Neg(delta), false)
	case 1:
		return hooks.Take(r.manager, r.address, currency, delta, false)
	}
	return nil
}

// Swap swaps in key's pool and settles
func (r *Router) Swap(key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (hooks.BalanceDelta, error) {
	return r.run(key, func() (hooks.BalanceDelta, error) {
		return r.manager.Swap(r.address, key, params, hookData)
	})
}

// ModifyLiquidity changes the router's position in key's pool and settles
func (r *Router) ModifyLiquidity(key hooks.PoolKey, params hooks.ModifyLiquidityParams, hookData []byte) (hooks.BalanceDelta, error) {
	return r.run(key, func() (hooks.BalanceDelta, error) {
		delta, _, err := r.manager.ModifyLiquidity(r.address, key, params, hookData)
		return delta, err
	})
}

// Donate donates to key's pool and settles
func (r *Router) Donate(key hooks.PoolKey, amount0, amount1 *big.Int, hookData []byte) (hooks.BalanceDelta, error) {
	return r.run(key, func() (hooks.BalanceDelta, error) {
		return r.manager.Donate(r.address, key, amount0, amount1, hookData)
	})
}

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"
)

var _ IHooks = (*BaseHook)(nil)

// Handler supplies a hook's behavior. BaseHook calls the OnXxx method of a
// callback only after authenticating the manager. Embed UnimplementedHandler
// and override the callbacks the hook declares in Permissions.
type Handler interface {
	Permissions() Permissions

	OnBeforeInitialize(sender common.Address, key PoolKey, sqrtPriceX96 *big.Int) error
	OnAfterInitialize(sender common.Address, key PoolKey, sqrtPriceX96 *big.Int, tick int24) error

	OnBeforeAddLiquidity(sender common.Address, key PoolKey, params ModifyLiquidityParams, hookData []byte) error
	OnAfterAddLiquidity(sender common.Address, key PoolKey, params ModifyLiquidityParams, delta, feesAccrued BalanceDelta, hookData []byte) (BalanceDelta, error)

	OnBeforeRemoveLiquidity(sender common.Address, key PoolKey, params ModifyLiquidityParams, hookData []byte) error
	OnAfterRemoveLiquidity(sender common.Address, key PoolKey, params ModifyLiquidityParams, delta, feesAccrued BalanceDelta, hookData []byte) (BalanceDelta, error)

	OnBeforeSwap(sender common.Address, key PoolKey, params SwapParams, hookData []byte) (BeforeSwapDelta, uint24, error)
	OnAfterSwap(sender common.Address, key PoolKey, params SwapParams, delta BalanceDelta, hookData []byte) (*big.Int, error)

	OnBeforeDonate(sender common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) error
	OnAfterDonate(sender common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) error
}

// UnimplementedHandler fails every callback with ErrHookNotImplemented. A hook
// that declares a callback without overriding it fails loudly instead of
// silently succeeding.
type UnimplementedHandler struct{}

func notImplemented(cb Callback) error {
	return fmt.Errorf("%w: %s", ErrHookNotImplemented, cb)
}

func (UnimplementedHandler) OnBeforeInitialize(common.Address, PoolKey, *big.Int) error {
	return notImplemented(CallbackBeforeInitialize)
}

func (UnimplementedHandler) OnAfterInitialize(common.Address, PoolKey, *big.Int, int24) error {
	return notImplemented(CallbackAfterInitialize)
}

func (UnimplementedHandler) OnBeforeAddLiquidity(common.Address, PoolKey, ModifyLiquidityParams, []byte) error {
	return notImplemented(CallbackBeforeAddLiquidity)
}

func (UnimplementedHandler) OnAfterAddLiquidity(common.Address, PoolKey, ModifyLiquidityParams, BalanceDelta, BalanceDelta, []byte) (BalanceDelta, error) {
	return BalanceDelta{}, notImplemented(CallbackAfterAddLiquidity)
}

func (UnimplementedHandler) OnBeforeRemoveLiquidity(common.Address, PoolKey, ModifyLiquidityParams, []byte) error {
	return notImplemented(CallbackBeforeRemoveLiquidity)
}

func (UnimplementedHandler) OnAfterRemoveLiquidity(common.Address, PoolKey, ModifyLiquidityParams, BalanceDelta, BalanceDelta, []byte) (BalanceDelta, error) {
	return BalanceDelta{}, notImplemented(CallbackAfterRemoveLiquidity)
}

func (UnimplementedHandler) OnBeforeSwap(common.Address, PoolKey, SwapParams, []byte) (BeforeSwapDelta, uint24, error) {
	return BeforeSwapDelta{}, 0, notImplemented(CallbackBeforeSwap)
}

func (UnimplementedHandler) OnAfterSwap(common.Address, PoolKey, SwapParams, BalanceDelta, []byte) (*big.Int, error) {
	return nil, notImplemented(CallbackAfterSwap)
}

func (UnimplementedHandler) OnBeforeDonate(common.Address, PoolKey, *big.Int, *big.Int, []byte) error {
	return notImplemented(CallbackBeforeDonate)
}

func (UnimplementedHandler) OnAfterDonate(common.Address, PoolKey, *big.Int, *big.Int, []byte) error {
	return notImplemented(CallbackAfterDonate)
}

// Config wires a hook to its manager, address and storage
type Config struct {
	Manager PoolManager
	Address common.Address
	State   StateDB
	Logger  log.Logger
}

// BaseHook is the dispatcher every hook is built on. It owns no hook state;
// strategies keep theirs in State().
type BaseHook struct {
	manager     PoolManager
	address     common.Address
	state       StateDB
	handler     Handler
	permissions Permissions
	log         log.Logger
	metrics     *Metrics

	selfCalls map[Selector]selfCall
}

// New validates that cfg.Address encodes exactly handler.Permissions() and
// returns the dispatcher. No hook exists if validation fails.
func New(cfg Config, handler Handler) (*BaseHook, error) {
	if cfg.Manager == nil {
		return nil, errors.New("hooks: nil pool manager")
	}
	if cfg.State == nil {
		return nil, errors.New("hooks: nil state")
	}
	if handler == nil {
		return nil, errors.New("hooks: nil handler")
	}

	permissions := handler.Permissions()
	if err := ValidateHookPermissions(cfg.Address, permissions); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNoOpLogger()
	}

	return &BaseHook{
		manager:     cfg.Manager,
		address:     cfg.Address,
		state:       cfg.State,
		handler:     handler,
		permissions: permissions,
		log:         logger,
		metrics:     DefaultMetrics(),
		selfCalls:   make(map[Selector]selfCall),
	}, nil
}

// MustNew is New for package-level hook construction; it panics on a
// permission mismatch.
func MustNew(cfg Config, handler Handler) *BaseHook {
	b, err := New(cfg, handler)
	if err != nil {
		panic(err)
	}
	return b
}

// Address returns the hook's address
func (b *BaseHook) Address() common.Address {
	return b.address
}

// Manager returns the pool manager the hook is bound to
func (b *BaseHook) Manager() PoolManager {
	return b.manager
}

// State returns the hook's slot storage
func (b *BaseHook) State() StateDB {
	return b.state
}

// Logger returns the hook's logger
func (b *BaseHook) Logger() log.Logger {
	return b.log
}

// Metrics returns the counters the hook reports to
func (b *BaseHook) Metrics() *Metrics {
	return b.metrics
}

// HookPermissions returns the validated capability descriptor
func (b *BaseHook) HookPermissions() Permissions {
	return b.permissions
}

// ValidatePool rejects pool keys that are not bound to this hook
func (b *BaseHook) ValidatePool(key PoolKey) error {
	if key.Hooks != b.address {
		return fmt.Errorf("%w: %s", ErrInvalidPool, key.Hooks.Hex())
	}
	return nil
}

// dispatch authenticates the manager, then runs fn
func (b *BaseHook) dispatch(cb Callback, caller common.Address, fn func() error) error {
	if caller != b.manager.Address() {
		b.metrics.Callbacks.WithLabelValues(cb.String(), outcomeUnauthorized).Inc()
		return fmt.Errorf("%w: %s calling %s", ErrNotPoolManager, caller.Hex(), cb)
	}

	if err := fn(); err != nil {
		b.metrics.Callbacks.WithLabelValues(cb.String(), outcomeError).Inc()
		b.log.Debug("hook callback failed", "hook", b.address, "callback", cb, "err", err)
		return err
	}

	b.metrics.Callbacks.WithLabelValues(cb.String(), outcomeOK).Inc()
	b.log.Debug("hook callback", "hook", b.address, "callback", cb)
	return nil
}

// =========================================================================
// Lifecycle Entry Points
// =========================================================================

func (b *BaseHook) BeforeInitialize(caller, sender common.Address, key PoolKey, sqrtPriceX96 *big.Int) (Selector, error) {
	err := b.dispatch(CallbackBeforeInitialize, caller, func() error {
		return b.handler.OnBeforeInitialize(sender, key, sqrtPriceX96)
	})
	if err != nil {
		return Selector{}, err
	}
	return CallbackBeforeInitialize.Selector(), nil
}

func (b *BaseHook) AfterInitialize(caller, sender common.Address, key PoolKey, sqrtPriceX96 *big.Int, tick int24) (Selector, error) {
	err := b.dispatch(CallbackAfterInitialize, caller, func() error {
		return b.handler.OnAfterInitialize(sender, key, sqrtPriceX96, tick)
	})
	if err != nil {
		return Selector{}, err
	}
	return CallbackAfterInitialize.Selector(), nil
}

func (b *BaseHook) BeforeAddLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, hookData []byte) (Selector, error) {
	err := b.dispatch(CallbackBeforeAddLiquidity, caller, func() error {
		return b.handler.OnBeforeAddLiquidity(sender, key, params, hookData)
	})
	if err != nil {
		return Selector{}, err
	}
	return CallbackBeforeAddLiquidity.Selector(), nil
}

func (b *BaseHook) AfterAddLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, delta, feesAccrued BalanceDelta, hookData []byte) (Selector, BalanceDelta, error) {
	var hookDelta BalanceDelta
	err := b.dispatch(CallbackAfterAddLiquidity, caller, func() (err error) {
		hookDelta, err = b.handler.OnAfterAddLiquidity(sender, key, params, delta, feesAccrued, hookData)
		return err
	})
	if err != nil {
		return Selector{}, BalanceDelta{}, err
	}
	return CallbackAfterAddLiquidity.Selector(), hookDelta, nil
}

func (b *BaseHook) BeforeRemoveLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, hookData []byte) (Selector, error) {
	err := b.dispatch(CallbackBeforeRemoveLiquidity, caller, func() error {
		return b.handler.OnBeforeRemoveLiquidity(sender, key, params, hookData)
	})
	if err != nil {
		return Selector{}, err
	}
	return CallbackBeforeRemoveLiquidity.Selector(), nil
}

func (b *BaseHook) AfterRemoveLiquidity(caller, sender common.Address, key PoolKey, params ModifyLiquidityParams, delta, feesAccrued BalanceDelta, hookData []byte) (Selector, BalanceDelta, error) {
	var hookDelta BalanceDelta
	err := b.dispatch(CallbackAfterRemoveLiquidity, caller, func() (err error) {
		hookDelta, err = b.handler.OnAfterRemoveLiquidity(sender, key, params, delta, feesAccrued, hookData)
		return err
	})
	if err != nil {
		return Selector{}, BalanceDelta{}, err
	}
	return CallbackAfterRemoveLiquidity.Selector(), hookDelta, nil
}

func (b *BaseHook) BeforeSwap(caller, sender common.Address, key PoolKey, params SwapParams, hookData []byte) (Selector, BeforeSwapDelta, uint24, error) {
	var (
		delta BeforeSwapDelta
		fee   uint24
	)
	err := b.dispatch(CallbackBeforeSwap, caller, func() (err error) {
		delta, fee, err = b.handler.OnBeforeSwap(sender, key, params, hookData)
		return err
	})
	if err != nil {
		return Selector{}, BeforeSwapDelta{}, 0, err
	}
	return CallbackBeforeSwap.Selector(), delta, fee, nil
}

// AfterSwap runs after the manager executed the swap. The manager guarantees
// the matching BeforeSwap of the same swap ran first with no other operation
// on the pool in between; handlers may rely on it.
func (b *BaseHook) AfterSwap(caller, sender common.Address, key PoolKey, params SwapParams, delta BalanceDelta, hookData []byte) (Selector, *big.Int, error) {
	var hookDelta *big.Int
	err := b.dispatch(CallbackAfterSwap, caller, func() (err error) {
		hookDelta, err = b.handler.OnAfterSwap(sender, key, params, delta, hookData)
		return err
	})
	if err != nil {
		return Selector{}, nil, err
	}
	if hookDelta == nil {
		hookDelta = big.NewInt(0)
	}
	return CallbackAfterSwap.Selector(), hookDelta, nil
}

func (b *BaseHook) BeforeDonate(caller, sender common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) (Selector, error) {
	err := b.dispatch(CallbackBeforeDonate, caller, func() error {
		return b.handler.OnBeforeDonate(sender, key, amount0, amount1, hookData)
	})
	if err != nil {
		return Selector{}, err
	}
	return CallbackBeforeDonate.Selector(), nil
}

func (b *BaseHook) AfterDonate(caller, sender common.Address, key PoolKey, amount0, amount1 *big.Int, hookData []byte) (Selector, error) {
	err := b.dispatch(CallbackAfterDonate, caller, func() error {
		return b.handler.OnAfterDonate(sender, key, amount0, amount1, hookData)
	})
	if err != nil {
		return Selector{}, err
	}
	return CallbackAfterDonate.Selector(), nil
}

// selfCall is one method reachable through Call
type selfCall struct {
	method abi.Method
	fn     SelfCallFunc
}

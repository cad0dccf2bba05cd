// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package poolmanager is an in-memory singleton pool manager that drives hooks
// through the same call ordering, flash accounting and rollback rules as a
// v4 pool manager. Its swap math is pluggable and deliberately simple.
package poolmanager

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/log"

	"github.com/luxfi/dexhooks/hooks"
	"github.com/luxfi/dexhooks/state"
)

var _ hooks.PoolManager = (*Manager)(nil)

// DefaultAddress is the manager's address unless overridden
var DefaultAddress = common.HexToAddress("0x0000000000000000000000000000000000009010")

// Manager is the singleton pool manager. All pools live in its storage;
// token movements are netted per unlock session and must balance when the
// session ends.
type Manager struct {
	address  common.Address
	state    *state.StateDB
	registry *hooks.HookRegistry
	math     SwapMath
	log      log.Logger

	// mu guards unlocked
	mu       sync.Mutex
	unlocked bool

	// receivers are non-hook contracts that may open unlock sessions
	receivers map[common.Address]hooks.UnlockCallbackReceiver

	// deltas tracks what each address is owed (positive) or owes
	// (negative) within the current unlock session
	deltas map[common.Address]map[hooks.Currency]*big.Int
}

// Option configures a Manager
type Option func(*Manager)

// WithAddress sets the manager's address
func WithAddress(addr common.Address) Option {
	return func(m *Manager) { m.address = addr }
}

// WithLogger sets the manager's logger
func WithLogger(logger log.Logger) Option {
	return func(m *Manager) { m.log = logger }
}

// WithSwapMath replaces the default swap pricing
func WithSwapMath(math SwapMath) Option {
	return func(m *Manager) { m.math = math }
}

// New creates a manager whose state is buffered over db
func New(db database.Database, registry *hooks.HookRegistry, opts ...Option) *Manager {
	m := &Manager{
		address:   DefaultAddress,
		registry:  registry,
		math:      ConstantLiquidityMath{},
		log:       log.NewNoOpLogger(),
		receivers: make(map[common.Address]hooks.UnlockCallbackReceiver),
		deltas:    make(map[common.Address]map[hooks.Currency]*big.Int),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state = state.New(db, m.log)
	return m
}

// Address returns the manager's address
func (m *Manager) Address() common.Address {
	return m.address
}

// State returns the state shared by the manager and its hooks
func (m *Manager) State() *state.StateDB {
	return m.state
}

// Registry returns the hook registry pools resolve their hooks through
func (m *Manager) Registry() *hooks.HookRegistry {
	return m.registry
}

// RegisterReceiver lets a non-hook contract open unlock sessions
func (m *Manager) RegisterReceiver(r hooks.UnlockCallbackReceiver) {
	m.receivers[r.Address()] = r
}

// =========================================================================
// Flash Accounting - Unlock Pattern
// =========================================================================

// Unlock opens a session, calls caller's UnlockCallback with data and checks
// that every delta is settled when it returns. A failure reverts every state
// write made during the session, the hooks' included.
func (m *Manager) Unlock(caller common.Address, data []byte) ([]byte, error) {
	m.mu.Lock()
	if m.unlocked {
		m.mu.Unlock()
		return nil, ErrAlreadyUnlocked
	}
	m.unlocked = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.unlocked = false
		m.deltas = make(map[common.Address]map[hooks.Currency]*big.Int)
		m.mu.Unlock()
	}()

	receiver, err := m.receiver(caller)
	if err != nil {
		return nil, err
	}

	snapshot := m.state.Snapshot()
	result, err := receiver.UnlockCallback(m.address, data)
	if err == nil {
		err = m.verifySettlement()
	}
	m.state.ClearTransient()
	if err != nil {
		m.state.RevertToSnapshot(snapshot)
		m.log.Debug("unlock reverted", "caller", caller, "err", err)
		return nil, err
	}
	m.state.DiscardSnapshot(snapshot)
	return result, nil
}

// checkpoint marks the state and the open deltas so a failed operation can
// be undone without ending the session
type checkpoint struct {
	revision int
	deltas   map[common.Address]map[hooks.Currency]*big.Int
}

func (m *Manager) checkpoint() checkpoint {
	deltas := make(map[common.Address]map[hooks.Currency]*big.Int, len(m.deltas))
	for addr, byCurrency := range m.deltas {
		copied := make(map[hooks.Currency]*big.Int, len(byCurrency))
		for currency, delta := range byCurrency {
			copied[currency] = delta
		}
		deltas[addr] = copied
	}
	return checkpoint{revision: m.state.Snapshot(), deltas: deltas}
}

func (m *Manager) rollback(cp checkpoint) {
	m.state.RevertToSnapshot(cp.revision)
	m.deltas = cp.deltas
}

func (m *Manager) release(cp checkpoint) {
	m.state.DiscardSnapshot(cp.revision)
}

func (m *Manager) receiver(caller common.Address) (hooks.UnlockCallbackReceiver, error) {
	if r, ok := m.receivers[caller]; ok {
		return r, nil
	}
	if h, err := m.registry.Get(caller); err == nil {
		if r, ok := h.(hooks.UnlockCallbackReceiver); ok {
			return r, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoCallbackReceiver, caller.Hex())
}

func (m *Manager) isUnlocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unlocked
}

func (m *Manager) requireUnlocked() error {
	if !m.isUnlocked() {
		return ErrManagerLocked
	}
	return nil
}

// verifySettlement ensures every delta of the session is zero
func (m *Manager) verifySettlement() error {
	for addr, deltas := range m.deltas {
		for currency, delta := range deltas {
			if delta.Sign() != 0 {
				return fmt.Errorf("%w: account=%s currency=%s delta=%s",
					ErrCurrencyNotSettled, addr.Hex(), currency, delta)
			}
		}
	}
	return nil
}

// accountDelta adds delta to what target is owed in currency
func (m *Manager) accountDelta(target common.Address, currency hooks.Currency, delta *big.Int) {
	if delta == nil || delta.Sign() == 0 {
		return
	}
	deltas, ok := m.deltas[target]
	if !ok {
		deltas = make(map[hooks.Currency]*big.Int)
		m.deltas[target] = deltas
	}
	current, ok := deltas[currency]
	if !ok {
		current = big.NewInt(0)
	}
	deltas[currency] = new(big.Int).Add(current, delta)
}

func (m *Manager) accountPoolDelta(target common.Address, key hooks.PoolKey, delta hooks.BalanceDelta) {
	m.accountDelta(target, key.Currency0, delta.Amount0)
	m.accountDelta(target, key.Currency1, delta.Amount1)
}

// CurrencyDelta returns the open delta of target in currency
func (m *Manager) CurrencyDelta(target common.Address, currency hooks.Currency) *big.Int {
	if delta, ok := m.deltas[target][currency]; ok {
		return new(big.Int).Set(delta)
	}
	return big.NewInt(0)
}

// =========================================================================
// Settlement
// =========================================================================

// Take sends amount of currency from the manager's reserves to `to`
func (m *Manager) Take(caller common.Address, currency hooks.Currency, to common.Address, amount *big.Int) error {
	if err := m.requireUnlocked(); err != nil {
		return err
	}
	if err := m.transfer(balancePrefix, currency, m.address, to, amount); err != nil {
		return err
	}
	m.accountDelta(caller, currency, new(big.Int).Neg(amount))
	return nil
}

// Settle pays amount of currency from caller into the manager's reserves
func (m *Manager) Settle(caller common.Address, currency hooks.Currency, amount *big.Int) error {
	if err := m.requireUnlocked(); err != nil {
		return err
	}
	if err := m.transfer(balancePrefix, currency, caller, m.address, amount); err != nil {
		return err
	}
	m.accountDelta(caller, currency, amount)
	return nil
}

// Mint issues claims on currency held by the manager to `to`
func (m *Manager) Mint(caller common.Address, to common.Address, currency hooks.Currency, amount *big.Int) error {
	if err := m.requireUnlocked(); err != nil {
		return err
	}
	amt, err := toUint256(amount)
	if err != nil {
		return err
	}
	bal := m.balance(claimsPrefix, currency, to)
	m.setBalance(claimsPrefix, currency, to, new(uint256.Int).Add(bal, amt))
	m.accountDelta(caller, currency, new(big.Int).Neg(amount))
	return nil
}

// Burn destroys claims held by from. Only the holder may burn.
func (m *Manager) Burn(caller common.Address, from common.Address, currency hooks.Currency, amount *big.Int) error {
	if err := m.requireUnlocked(); err != nil {
		return err
	}
	if caller != from {
		return fmt.Errorf("%w: %s burning claims of %s", ErrUnauthorized, caller.Hex(), from.Hex())
	}
	amt, err := toUint256(amount)
	if err != nil {
		return err
	}
	bal := m.balance(claimsPrefix, currency, from)
	if bal.Lt(amt) {
		return fmt.Errorf("%w: have %s, burning %s", ErrInsufficientClaims, bal, amt)
	}
	m.setBalance(claimsPrefix, currency, from, new(uint256.Int).Sub(bal, amt))
	m.accountDelta(caller, currency, amount)
	return nil
}

// Fund credits holder with amount of currency from outside the manager
func (m *Manager) Fund(holder common.Address, currency hooks.Currency, amount *big.Int) error {
	amt, err := toUint256(amount)
	if err != nil {
		return err
	}
	bal := m.balance(balancePrefix, currency, holder)
	m.setBalance(balancePrefix, currency, holder, new(uint256.Int).Add(bal, amt))
	return nil
}

// BalanceOf returns holder's token balance of currency
func (m *Manager) BalanceOf(holder common.Address, currency hooks.Currency) *big.Int {
	return m.balance(balancePrefix, currency, holder).ToBig()
}

// ClaimsOf returns the claims holder owns on currency
func (m *Manager) ClaimsOf(holder common.Address, currency hooks.Currency) *big.Int {
	return m.balance(claimsPrefix, currency, holder).ToBig()
}

func (m *Manager) transfer(prefix []byte, currency hooks.Currency, from, to common.Address, amount *big.Int) error {
	amt, err := toUint256(amount)
	if err != nil {
		return err
	}
	fromBal := m.balance(prefix, currency, from)
	if fromBal.Lt(amt) {
		return fmt.Errorf("%w: %s has %s of %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBal, currency, amt)
	}
	m.setBalance(prefix, currency, from, new(uint256.Int).Sub(fromBal, amt))
	m.setBalance(prefix, currency, to, new(uint256.Int).Add(m.balance(prefix, currency, to), amt))
	return nil
}

func balanceSlot(prefix []byte, currency hooks.Currency, holder common.Address) common.Hash {
	return hooks.StorageKey(prefix, append(currency.Address.Bytes(), holder.Bytes()...))
}

func (m *Manager) balance(prefix []byte, currency hooks.Currency, holder common.Address) *uint256.Int {
	raw := m.state.GetState(m.address, balanceSlot(prefix, currency, holder))
	return new(uint256.Int).SetBytes32(raw[:])
}

func (m *Manager) setBalance(prefix []byte, currency hooks.Currency, holder common.Address, v *uint256.Int) {
	m.state.SetState(m.address, balanceSlot(prefix, currency, holder), v.Bytes32())
}

func toUint256(amount *big.Int) (*uint256.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return nil, fmt.Errorf("%w: %s overflows", ErrInvalidAmount, amount)
	}
	return v, nil
}

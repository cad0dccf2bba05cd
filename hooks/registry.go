// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/geth/common"
)

// HookRegistry resolves hook addresses to deployed hooks. The manager calls
// hooks through it; capabilities always come from the address.
type HookRegistry struct {
	mu    sync.RWMutex
	hooks map[common.Address]IHooks
}

// NewHookRegistry creates an empty registry
func NewHookRegistry() *HookRegistry {
	return &HookRegistry{
		hooks: make(map[common.Address]IHooks),
	}
}

// Register deploys a hook at its address
func (r *HookRegistry) Register(h IHooks) error {
	addr := h.Address()
	if addr == (common.Address{}) {
		return errors.New("hooks: cannot register the zero address")
	}
	if !IsValidHookAddress(addr, 0) {
		return fmt.Errorf("%w: %s", ErrHookAddressNotValid, addr.Hex())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.hooks[addr]; exists {
		return fmt.Errorf("hooks: %s already registered", addr.Hex())
	}
	r.hooks[addr] = h
	return nil
}

// Get returns the hook deployed at addr
func (r *HookRegistry) Get(addr common.Address) (IHooks, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.hooks[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHookNotRegistered, addr.Hex())
	}
	return h, nil
}

// IsHookEnabled reports whether the hook at addr is called at flag's point
func (r *HookRegistry) IsHookEnabled(addr common.Address, flag Flags) bool {
	if addr == (common.Address{}) {
		return false
	}
	return HasPermission(addr, flag)
}

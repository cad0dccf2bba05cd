// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"fmt"

	"github.com/luxfi/geth/accounts/abi"
	"github.com/luxfi/geth/common"
)

// SelfCallFunc handles one method reachable through the unlock channel. args
// are the ABI-decoded method inputs.
type SelfCallFunc func(args []interface{}) ([]byte, error)

// HandleSelfCalls registers the methods of contractABI that Call may dispatch.
// Every handler name must be a method of contractABI.
func (b *BaseHook) HandleSelfCalls(contractABI abi.ABI, handlers map[string]SelfCallFunc) error {
	for name, fn := range handlers {
		method, ok := contractABI.Methods[name]
		if !ok {
			return fmt.Errorf("hooks: method %q not in ABI", name)
		}
		var sel Selector
		copy(sel[:], method.ID)
		b.selfCalls[sel] = selfCall{method: method, fn: fn}
	}
	return nil
}

// Unlock opens an unlock session on the manager with this hook as the
// callback receiver
func (b *BaseHook) Unlock(data []byte) ([]byte, error) {
	return b.manager.Unlock(b.address, data)
}

// UnlockCallback is invoked by the manager once the hook unlocked it. The
// payload is re-dispatched to the hook itself as a self-call. A failure that
// carries no diagnostic becomes ErrLockFailure; any other failure propagates
// unchanged.
func (b *BaseHook) UnlockCallback(caller common.Address, data []byte) ([]byte, error) {
	if caller != b.manager.Address() {
		b.metrics.UnlockCallbacks.WithLabelValues(outcomeUnauthorized).Inc()
		return nil, fmt.Errorf("%w: %s calling unlockCallback", ErrNotPoolManager, caller.Hex())
	}

	ret, err := b.Call(b.address, data)
	if err != nil {
		b.metrics.UnlockCallbacks.WithLabelValues(outcomeError).Inc()
		if len(revertData(err)) == 0 {
			b.log.Debug("unlock callback failed without diagnostic", "hook", b.address)
			return nil, ErrLockFailure
		}
		b.log.Debug("unlock callback failed", "hook", b.address, "err", err)
		return nil, err
	}

	b.metrics.UnlockCallbacks.WithLabelValues(outcomeOK).Inc()
	return ret, nil
}

// Call dispatches ABI-encoded calldata to a registered self-call. Only the
// hook itself may call it. Unknown selectors and undecodable inputs fail with
// an empty revert.
func (b *BaseHook) Call(caller common.Address, data []byte) ([]byte, error) {
	if caller != b.address {
		return nil, fmt.Errorf("%w: %s", ErrNotSelf, caller.Hex())
	}
	if len(data) < 4 {
		return nil, &RevertError{}
	}

	var sel Selector
	copy(sel[:], data[:4])
	call, ok := b.selfCalls[sel]
	if !ok {
		return nil, &RevertError{}
	}

	args, err := call.method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, &RevertError{}
	}
	return call.fn(args)
}

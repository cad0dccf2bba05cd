// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

var (
	_ FeeSource     = (*OwnedFee)(nil)
	_ SwapFeeSource = (*OwnedFee)(nil)
	_ TargetSource  = (*OwnedTargetOutput)(nil)
)

// Storage slots of the owner-set values
var (
	feeSlot          = hooks.StorageKey([]byte("fee"), nil)
	targetAmountSlot = hooks.StorageKey([]byte("tgta"), nil)
	targetActiveSlot = hooks.StorageKey([]byte("tgtx"), nil)
)

// OwnedFee is one fee value, set by its owner and kept in the hook's storage.
// It serves both DynamicFee and OverrideFee.
type OwnedFee struct {
	owner   common.Address
	account common.Address
	state   hooks.StateDB
}

// NewOwnedFee creates a fee stored under the hook described by cfg
func NewOwnedFee(cfg hooks.Config, owner common.Address) *OwnedFee {
	return &OwnedFee{owner: owner, account: cfg.Address, state: cfg.State}
}

// SetFee stores a new fee. Range checks are left to the manager.
func (f *OwnedFee) SetFee(caller common.Address, fee uint32) error {
	if caller != f.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, caller.Hex())
	}
	var v common.Hash
	binary.BigEndian.PutUint32(v[28:], fee)
	f.state.SetState(f.account, feeSlot, v)
	return nil
}

func (f *OwnedFee) current() uint32 {
	v := f.state.GetState(f.account, feeSlot)
	return binary.BigEndian.Uint32(v[28:])
}

func (f *OwnedFee) Fee(hooks.PoolKey) (uint32, error) {
	return f.current(), nil
}

func (f *OwnedFee) SwapFee(common.Address, hooks.PoolKey, hooks.SwapParams, []byte) (uint32, error) {
	return f.current(), nil
}

// OwnedTargetOutput is an owner-set target for DynamicAfterFee
type OwnedTargetOutput struct {
	owner   common.Address
	account common.Address
	state   hooks.StateDB
}

// NewOwnedTargetOutput creates a target stored under the hook described by cfg
func NewOwnedTargetOutput(cfg hooks.Config, owner common.Address) *OwnedTargetOutput {
	return &OwnedTargetOutput{owner: owner, account: cfg.Address, state: cfg.State}
}

// SetTargetOutput stores the target applied to every subsequent swap
func (t *OwnedTargetOutput) SetTargetOutput(caller common.Address, amount *big.Int, active bool) error {
	if caller != t.owner {
		return fmt.Errorf("%w: %s", ErrNotOwner, caller.Hex())
	}
	if amount == nil || amount.Sign() < 0 || amount.BitLen() > 256 {
		return fmt.Errorf("%w: %v", ErrInvalidTargetOutput, amount)
	}
	t.state.SetState(t.account, targetAmountSlot, hooks.BigToHash(amount))
	t.state.SetState(t.account, targetActiveSlot, boolToHash(active))
	return nil
}

func (t *OwnedTargetOutput) TargetOutput(common.Address, hooks.PoolKey, hooks.SwapParams, []byte) (*big.Int, bool, error) {
	amount := hooks.HashToBig(t.state.GetState(t.account, targetAmountSlot))
	active := t.state.GetState(t.account, targetActiveSlot) != (common.Hash{})
	return amount, active, nil
}

func boolToHash(b bool) common.Hash {
	var h common.Hash
	if b {
		h[31] = 1
	}
	return h
}

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"fmt"

	"github.com/luxfi/geth/common"
)

// LayoutVersion identifies the bit layout below. Manager and hooks must agree
// on it byte for byte.
const LayoutVersion = 1

// Flags is the capability bitmap carried in the lowest 14 bits of a hook address
type Flags uint16

const (
	AfterRemoveLiquidityReturnsDeltaFlag Flags = 1 << iota
	AfterAddLiquidityReturnsDeltaFlag
	AfterSwapReturnsDeltaFlag
	BeforeSwapReturnsDeltaFlag
	AfterDonateFlag
	BeforeDonateFlag
	AfterSwapFlag
	BeforeSwapFlag
	AfterRemoveLiquidityFlag
	BeforeRemoveLiquidityFlag
	AfterAddLiquidityFlag
	BeforeAddLiquidityFlag
	AfterInitializeFlag
	BeforeInitializeFlag
)

// AllHookMask covers every defined flag bit
const AllHookMask Flags = 1<<14 - 1

// Permissions is the capability descriptor a hook declares for its lifetime
type Permissions struct {
	BeforeInitialize                bool
	AfterInitialize                 bool
	BeforeAddLiquidity              bool
	AfterAddLiquidity               bool
	BeforeRemoveLiquidity           bool
	AfterRemoveLiquidity            bool
	BeforeSwap                      bool
	AfterSwap                       bool
	BeforeDonate                    bool
	AfterDonate                     bool
	BeforeSwapReturnDelta           bool
	AfterSwapReturnDelta            bool
	AfterAddLiquidityReturnDelta    bool
	AfterRemoveLiquidityReturnDelta bool
}

// permissionBits pairs each descriptor field with its flag, in layout order
func (p Permissions) permissionBits() []struct {
	flag Flags
	set  bool
} {
	return []struct {
		flag Flags
		set  bool
	}{
		{BeforeInitializeFlag, p.BeforeInitialize},
		{AfterInitializeFlag, p.AfterInitialize},
		{BeforeAddLiquidityFlag, p.BeforeAddLiquidity},
		{AfterAddLiquidityFlag, p.AfterAddLiquidity},
		{BeforeRemoveLiquidityFlag, p.BeforeRemoveLiquidity},
		{AfterRemoveLiquidityFlag, p.AfterRemoveLiquidity},
		{BeforeSwapFlag, p.BeforeSwap},
		{AfterSwapFlag, p.AfterSwap},
		{BeforeDonateFlag, p.BeforeDonate},
		{AfterDonateFlag, p.AfterDonate},
		{BeforeSwapReturnsDeltaFlag, p.BeforeSwapReturnDelta},
		{AfterSwapReturnsDeltaFlag, p.AfterSwapReturnDelta},
		{AfterAddLiquidityReturnsDeltaFlag, p.AfterAddLiquidityReturnDelta},
		{AfterRemoveLiquidityReturnsDeltaFlag, p.AfterRemoveLiquidityReturnDelta},
	}
}

// EncodePermissions encodes permissions into a Flags bitmap
func EncodePermissions(p Permissions) Flags {
	var flags Flags
	for _, b := range p.permissionBits() {
		if b.set {
			flags |= b.flag
		}
	}
	return flags
}

// DecodePermissions decodes a Flags bitmap into permissions
func DecodePermissions(flags Flags) Permissions {
	return Permissions{
		BeforeInitialize:                flags&BeforeInitializeFlag != 0,
		AfterInitialize:                 flags&AfterInitializeFlag != 0,
		BeforeAddLiquidity:              flags&BeforeAddLiquidityFlag != 0,
		AfterAddLiquidity:               flags&AfterAddLiquidityFlag != 0,
		BeforeRemoveLiquidity:           flags&BeforeRemoveLiquidityFlag != 0,
		AfterRemoveLiquidity:            flags&AfterRemoveLiquidityFlag != 0,
		BeforeSwap:                      flags&BeforeSwapFlag != 0,
		AfterSwap:                       flags&AfterSwapFlag != 0,
		BeforeDonate:                    flags&BeforeDonateFlag != 0,
		AfterDonate:                     flags&AfterDonateFlag != 0,
		BeforeSwapReturnDelta:           flags&BeforeSwapReturnsDeltaFlag != 0,
		AfterSwapReturnDelta:            flags&AfterSwapReturnsDeltaFlag != 0,
		AfterAddLiquidityReturnDelta:    flags&AfterAddLiquidityReturnsDeltaFlag != 0,
		AfterRemoveLiquidityReturnDelta: flags&AfterRemoveLiquidityReturnsDeltaFlag != 0,
	}
}

// FlagsFromAddress extracts the capability bits of a hook address
func FlagsFromAddress(addr common.Address) Flags {
	return Flags(uint16(addr[18])<<8|uint16(addr[19])) & AllHookMask
}

// PermissionsFromAddress extracts permissions from a hook address
func PermissionsFromAddress(addr common.Address) Permissions {
	return DecodePermissions(FlagsFromAddress(addr))
}

// HasPermission checks if an address carries a specific flag
func HasPermission(addr common.Address, flag Flags) bool {
	return FlagsFromAddress(addr)&flag != 0
}

// ValidateHookPermissions checks that addr encodes exactly the declared
// permissions. It is the only safety net for the manager, which trusts the
// address bits on every call, so the comparison is exact.
func ValidateHookPermissions(addr common.Address, p Permissions) error {
	for _, b := range p.permissionBits() {
		if b.set != HasPermission(addr, b.flag) {
			return fmt.Errorf("%w: %s", ErrHookAddressNotValid, addr.Hex())
		}
	}
	return nil
}

// IsValidHookAddress reports whether a pool may be created with this hook
// address and fee: return-delta bits need their base callback bit, the zero
// address cannot carry a dynamic fee, and a non-zero address must either carry
// a flag or a dynamic fee.
func IsValidHookAddress(addr common.Address, fee uint24) bool {
	if HasPermission(addr, BeforeSwapReturnsDeltaFlag) && !HasPermission(addr, BeforeSwapFlag) {
		return false
	}
	if HasPermission(addr, AfterSwapReturnsDeltaFlag) && !HasPermission(addr, AfterSwapFlag) {
		return false
	}
	if HasPermission(addr, AfterAddLiquidityReturnsDeltaFlag) && !HasPermission(addr, AfterAddLiquidityFlag) {
		return false
	}
	if HasPermission(addr, AfterRemoveLiquidityReturnsDeltaFlag) && !HasPermission(addr, AfterRemoveLiquidityFlag) {
		return false
	}

	if addr == (common.Address{}) {
		return !IsDynamicFee(fee)
	}
	return FlagsFromAddress(addr) != 0 || IsDynamicFee(fee)
}

func (f Flags) String() string {
	return fmt.Sprintf("0x%04x", uint16(f))
}

// flagNames maps each flag to its name, in layout order
var flagNames = []struct {
	flag Flags
	name string
}{
	{BeforeInitializeFlag, "beforeInitialize"},
	{AfterInitializeFlag, "afterInitialize"},
	{BeforeAddLiquidityFlag, "beforeAddLiquidity"},
	{AfterAddLiquidityFlag, "afterAddLiquidity"},
	{BeforeRemoveLiquidityFlag, "beforeRemoveLiquidity"},
	{AfterRemoveLiquidityFlag, "afterRemoveLiquidity"},
	{BeforeSwapFlag, "beforeSwap"},
	{AfterSwapFlag, "afterSwap"},
	{BeforeDonateFlag, "beforeDonate"},
	{AfterDonateFlag, "afterDonate"},
	{BeforeSwapReturnsDeltaFlag, "beforeSwapReturnDelta"},
	{AfterSwapReturnsDeltaFlag, "afterSwapReturnDelta"},
	{AfterAddLiquidityReturnsDeltaFlag, "afterAddLiquidityReturnDelta"},
	{AfterRemoveLiquidityReturnsDeltaFlag, "afterRemoveLiquidityReturnDelta"},
}

// FlagByName returns the flag called name, e.g. "beforeSwap"
func FlagByName(name string) (Flags, error) {
	for _, n := range flagNames {
		if n.name == name {
			return n.flag, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPermission, name)
}

// Names lists the names of the flags set in f
func (f Flags) Names() []string {
	var names []string
	for _, n := range flagNames {
		if f&n.flag != 0 {
			names = append(names, n.name)
		}
	}
	return names
}

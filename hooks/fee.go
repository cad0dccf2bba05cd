// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import "fmt"

// LP fees are expressed in hundredths of a bip: 1_000_000 = 100%.
const (
	// MaxLPFee is the largest LP fee a pool may charge
	MaxLPFee uint24 = 1_000_000

	// DynamicFeeFlag in PoolKey.Fee marks a pool whose LP fee is set by its hook
	DynamicFeeFlag uint24 = 0x800000

	// OverrideFeeFlag is OR-ed into a beforeSwap fee to override the LP fee
	// for that swap only
	OverrideFeeFlag uint24 = 0x400000

	// removeOverrideMask clears OverrideFeeFlag
	removeOverrideMask uint24 = 0xBFFFFF
)

// IsDynamicFee reports whether a PoolKey fee marks a dynamic-fee pool
func IsDynamicFee(fee uint24) bool {
	return fee == DynamicFeeFlag
}

// IsOverride reports whether a beforeSwap fee carries the override marker
func IsOverride(fee uint24) bool {
	return fee&OverrideFeeFlag != 0
}

// RemoveOverrideFlag strips the override marker
func RemoveOverrideFlag(fee uint24) uint24 {
	return fee & removeOverrideMask
}

// ValidateLPFee checks an LP fee against MaxLPFee
func ValidateLPFee(fee uint24) error {
	if fee > MaxLPFee {
		return fmt.Errorf("%w: %d", ErrLPFeeTooLarge, fee)
	}
	return nil
}

// InitialLPFee returns the LP fee a pool starts with. Dynamic-fee pools start
// at zero until their hook sets a fee.
func InitialLPFee(fee uint24) (uint24, error) {
	if IsDynamicFee(fee) {
		return 0, nil
	}
	if err := ValidateLPFee(fee); err != nil {
		return 0, err
	}
	return fee, nil
}

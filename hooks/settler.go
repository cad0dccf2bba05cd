// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/geth/common"
)

// Settle pays amount of currency owed by caller to the manager. With burn,
// claims caller holds are destroyed instead of moving tokens.
func Settle(pm PoolManager, caller common.Address, currency Currency, amount *big.Int, burn bool) error {
	if amount.Sign() == 0 {
		return nil
	}
	if burn {
		return pm.Burn(caller, caller, currency, amount)
	}
	return pm.Settle(caller, currency, amount)
}

// Take collects amount of currency owed to caller by the manager. With
// claims, the manager mints claims to caller instead of sending tokens.
func Take(pm PoolManager, caller common.Address, currency Currency, amount *big.Int, claims bool) error {
	if amount.Sign() == 0 {
		return nil
	}
	if claims {
		return pm.Mint(caller, caller, currency, amount)
	}
	return pm.Take(caller, currency, caller, amount)
}

// UnspecifiedCurrency returns the currency of the side of a swap the caller
// did not fix: the output of an exact-input swap, the input of an
// exact-output swap
func UnspecifiedCurrency(key PoolKey, params SwapParams) Currency {
	if params.IsExactInput() == params.ZeroForOne {
		return key.Currency1
	}
	return key.Currency0
}

// UnspecifiedAmount returns the swap delta on the unspecified side
func UnspecifiedAmount(params SwapParams, delta BalanceDelta) *big.Int {
	if params.IsExactInput() == params.ZeroForOne {
		return delta.Amount1
	}
	return delta.Amount0
}

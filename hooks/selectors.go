// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"encoding/hex"

	"github.com/luxfi/crypto"
)

// Selector is the 4-byte confirmation a callback returns and the manager checks
type Selector [4]byte

func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// NewSelector returns the first 4 bytes of keccak256(signature)
func NewSelector(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature)))
	return s
}

// Callback enumerates the ten lifecycle points
type Callback uint8

const (
	CallbackBeforeInitialize Callback = iota
	CallbackAfterInitialize
	CallbackBeforeAddLiquidity
	CallbackAfterAddLiquidity
	CallbackBeforeRemoveLiquidity
	CallbackAfterRemoveLiquidity
	CallbackBeforeSwap
	CallbackAfterSwap
	CallbackBeforeDonate
	CallbackAfterDonate
)

// Callbacks lists every lifecycle point in order
var Callbacks = []Callback{
	CallbackBeforeInitialize,
	CallbackAfterInitialize,
	CallbackBeforeAddLiquidity,
	CallbackAfterAddLiquidity,
	CallbackBeforeRemoveLiquidity,
	CallbackAfterRemoveLiquidity,
	CallbackBeforeSwap,
	CallbackAfterSwap,
	CallbackBeforeDonate,
	CallbackAfterDonate,
}

const (
	poolKeyTuple   = "(address,address,uint24,int24,address)"
	modifyLiqTuple = "(int24,int24,int256,bytes32)"
	swapTuple      = "(bool,int256,uint160)"
)

var callbackInfo = [...]struct {
	name      string
	signature string
	flag      Flags
}{
	CallbackBeforeInitialize:      {"beforeInitialize", "beforeInitialize(address," + poolKeyTuple + ",uint160)", BeforeInitializeFlag},
	CallbackAfterInitialize:       {"afterInitialize", "afterInitialize(address," + poolKeyTuple + ",uint160,int24)", AfterInitializeFlag},
	CallbackBeforeAddLiquidity:    {"beforeAddLiquidity", "beforeAddLiquidity(address," + poolKeyTuple + "," + modifyLiqTuple + ",bytes)", BeforeAddLiquidityFlag},
	CallbackAfterAddLiquidity:     {"afterAddLiquidity", "afterAddLiquidity(address," + poolKeyTuple + "," + modifyLiqTuple + ",int256,int256,bytes)", AfterAddLiquidityFlag},
	CallbackBeforeRemoveLiquidity: {"beforeRemoveLiquidity", "beforeRemoveLiquidity(address," + poolKeyTuple + "," + modifyLiqTuple + ",bytes)", BeforeRemoveLiquidityFlag},
	CallbackAfterRemoveLiquidity:  {"afterRemoveLiquidity", "afterRemoveLiquidity(address," + poolKeyTuple + "," + modifyLiqTuple + ",int256,int256,bytes)", AfterRemoveLiquidityFlag},
	CallbackBeforeSwap:            {"beforeSwap", "beforeSwap(address," + poolKeyTuple + "," + swapTuple + ",bytes)", BeforeSwapFlag},
	CallbackAfterSwap:             {"afterSwap", "afterSwap(address," + poolKeyTuple + "," + swapTuple + ",int256,bytes)", AfterSwapFlag},
	CallbackBeforeDonate:          {"beforeDonate", "beforeDonate(address," + poolKeyTuple + ",uint256,uint256,bytes)", BeforeDonateFlag},
	CallbackAfterDonate:           {"afterDonate", "afterDonate(address," + poolKeyTuple + ",uint256,uint256,bytes)", AfterDonateFlag},
}

var callbackSelectors = func() [len(callbackInfo)]Selector {
	var out [len(callbackInfo)]Selector
	for i, info := range callbackInfo {
		out[i] = NewSelector(info.signature)
	}
	return out
}()

func (c Callback) String() string {
	if int(c) < len(callbackInfo) {
		return callbackInfo[c].name
	}
	return "unknown"
}

// Selector returns the confirmation value the manager expects for c
func (c Callback) Selector() Selector {
	return callbackSelectors[c]
}

// Flag returns the permission bit that enables c
func (c Callback) Flag() Flags {
	return callbackInfo[c].flag
}

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package hooks implements the extension-point contract between a Uniswap
// v4-style singleton pool manager and the hook modules it calls at the ten
// lifecycle points of a pool. A hook's capabilities are encoded in its address
// and checked once at construction; every callback is manager-only and
// forwards to an overridable handler.
package hooks

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// uint24 type alias for fees
type uint24 = uint32

// int24 type alias for ticks
type int24 = int32

// Currency represents a token (native or ERC20)
// Address(0) represents the native asset
type Currency struct {
	Address common.Address
}

// NativeCurrency represents the native asset
var NativeCurrency = Currency{Address: common.Address{}}

// IsNative returns true if this currency is the native asset
func (c Currency) IsNative() bool {
	return c.Address == common.Address{}
}

// Less orders currencies by address bytes
func (c Currency) Less(other Currency) bool {
	return bytes.Compare(c.Address.Bytes(), other.Address.Bytes()) < 0
}

func (c Currency) String() string {
	return c.Address.Hex()
}

// PoolID is the blake3 digest of a PoolKey's canonical encoding
type PoolID [32]byte

// Bytes returns the id as a byte slice
func (id PoolID) Bytes() []byte {
	return id[:]
}

func (id PoolID) String() string {
	return common.Hash(id).Hex()
}

// PoolKey uniquely identifies a pool. It is a value type and hooks never
// mutate it, only read and forward it.
type PoolKey struct {
	Currency0   Currency       // Lower address token
	Currency1   Currency       // Higher address token
	Fee         uint24         // LP fee in hundredths of a bip, or DynamicFeeFlag
	TickSpacing int24          // Tick spacing for concentrated liquidity
	Hooks       common.Address // Hook address (zero = no hooks)
}

// poolKeyLength is the size of the canonical PoolKey encoding
const poolKeyLength = 20 + 20 + 3 + 3 + 20

// ID computes the unique pool identifier
func (pk PoolKey) ID() PoolID {
	h := blake3.New()
	h.Write(pk.ToBytes())

	var id PoolID
	h.Digest().Read(id[:])
	return id
}

// ToBytes serializes the pool key: currency0 | currency1 | fee (3) | tickSpacing (3) | hooks
func (pk PoolKey) ToBytes() []byte {
	data := make([]byte, poolKeyLength)
	copy(data[0:20], pk.Currency0.Address.Bytes())
	copy(data[20:40], pk.Currency1.Address.Bytes())

	var word [4]byte
	binary.BigEndian.PutUint32(word[:], pk.Fee)
	copy(data[40:43], word[1:])
	binary.BigEndian.PutUint32(word[:], uint32(pk.TickSpacing))
	copy(data[43:46], word[1:])

	copy(data[46:66], pk.Hooks.Bytes())
	return data
}

// PoolKeyFromBytes deserializes a pool key produced by ToBytes
func PoolKeyFromBytes(data []byte) (PoolKey, error) {
	if len(data) < poolKeyLength {
		return PoolKey{}, errors.New("invalid pool key data length")
	}
	pk := PoolKey{
		Currency0: Currency{Address: common.BytesToAddress(data[0:20])},
		Currency1: Currency{Address: common.BytesToAddress(data[20:40])},
		Hooks:     common.BytesToAddress(data[46:66]),
	}

	var word [4]byte
	copy(word[1:], data[40:43])
	pk.Fee = binary.BigEndian.Uint32(word[:])

	word = [4]byte{}
	copy(word[1:], data[43:46])
	// sign-extend the 24-bit tick spacing
	pk.TickSpacing = int24(binary.BigEndian.Uint32(word[:])<<8) >> 8
	return pk, nil
}

// BalanceDelta is the net token change of an operation from the caller's
// point of view: positive = owed to the caller, negative = owed by the caller.
type BalanceDelta struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

// NewBalanceDelta creates a new balance delta
func NewBalanceDelta(amount0, amount1 *big.Int) BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Set(amount0),
		Amount1: new(big.Int).Set(amount1),
	}
}

// ZeroBalanceDelta returns a zero balance delta
func ZeroBalanceDelta() BalanceDelta {
	return BalanceDelta{
		Amount0: big.NewInt(0),
		Amount1: big.NewInt(0),
	}
}

// Add combines two balance deltas
func (bd BalanceDelta) Add(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Add(bd.Amount0, other.Amount0),
		Amount1: new(big.Int).Add(bd.Amount1, other.Amount1),
	}
}

// Sub subtracts another balance delta
func (bd BalanceDelta) Sub(other BalanceDelta) BalanceDelta {
	return BalanceDelta{
		Amount0: new(big.Int).Sub(bd.Amount0, other.Amount0),
		Amount1: new(big.Int).Sub(bd.Amount1, other.Amount1),
	}
}

// IsZero returns true if both amounts are zero
func (bd BalanceDelta) IsZero() bool {
	return bd.Amount0.Sign() == 0 && bd.Amount1.Sign() == 0
}

// BeforeSwapDelta is returned by beforeSwap hooks that hold the
// BeforeSwapReturnsDelta permission. Specified applies to the currency of
// AmountSpecified, Unspecified to the other side.
type BeforeSwapDelta struct {
	Specified   *big.Int
	Unspecified *big.Int
}

// ZeroBeforeSwapDelta returns an empty before-swap delta
func ZeroBeforeSwapDelta() BeforeSwapDelta {
	return BeforeSwapDelta{
		Specified:   big.NewInt(0),
		Unspecified: big.NewInt(0),
	}
}

// SwapParams contains parameters for a swap
type SwapParams struct {
	ZeroForOne        bool     // true = swap currency0 for currency1
	AmountSpecified   *big.Int // Negative = exact input, Positive = exact output
	SqrtPriceLimitX96 *big.Int // Price limit (sqrt(price) * 2^96)
}

// IsExactInput reports whether the caller fixed the input amount
func (p SwapParams) IsExactInput() bool {
	return p.AmountSpecified != nil && p.AmountSpecified.Sign() < 0
}

// ModifyLiquidityParams contains parameters for adding/removing liquidity
type ModifyLiquidityParams struct {
	TickLower      int24
	TickUpper      int24
	LiquidityDelta *big.Int // Positive = add, Negative = remove
	Salt           [32]byte // Position salt for uniqueness
}

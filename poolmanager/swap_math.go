// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"math/big"

	"github.com/luxfi/dexhooks/hooks"
)

var feeDenominator = big.NewInt(int64(hooks.MaxLPFee))

// SwapMath prices a swap against a pool. It returns the swapper's delta and
// the LP fee charged on the input currency. AmountSpecified follows the
// manager's sign convention: negative = exact input, positive = exact output.
type SwapMath interface {
	Swap(pool *Pool, params hooks.SwapParams, lpFee uint32) (hooks.BalanceDelta, *big.Int, error)
}

// ConstantLiquidityMath prices swaps as out = in * L / (L + in) after
// charging the LP fee on the input
type ConstantLiquidityMath struct{}

func (ConstantLiquidityMath) Swap(pool *Pool, params hooks.SwapParams, lpFee uint32) (hooks.BalanceDelta, *big.Int, error) {
	if pool.Liquidity.Sign() == 0 {
		return hooks.BalanceDelta{}, nil, ErrNoLiquidity
	}
	fee := big.NewInt(int64(lpFee))

	var amountIn, amountOut, feeAmount *big.Int
	if params.IsExactInput() {
		amountIn = new(big.Int).Neg(params.AmountSpecified)
		feeAmount = new(big.Int).Mul(amountIn, fee)
		feeAmount.Div(feeAmount, feeDenominator)

		net := new(big.Int).Sub(amountIn, feeAmount)
		amountOut = new(big.Int).Mul(net, pool.Liquidity)
		amountOut.Div(amountOut, new(big.Int).Add(pool.Liquidity, net))
	} else {
		amountOut = new(big.Int).Set(params.AmountSpecified)
		if amountOut.Cmp(pool.Liquidity) >= 0 {
			return hooks.BalanceDelta{}, nil, ErrNoLiquidity
		}
		// net = ceil(out * L / (L - out)), gross = ceil(net * 1e6 / (1e6 - fee))
		net := ceilDiv(new(big.Int).Mul(amountOut, pool.Liquidity), new(big.Int).Sub(pool.Liquidity, amountOut))
		amountIn = ceilDiv(new(big.Int).Mul(net, feeDenominator), new(big.Int).Sub(feeDenominator, fee))
		feeAmount = new(big.Int).Sub(amountIn, net)
	}

	return swapDelta(params.ZeroForOne, amountIn, amountOut), feeAmount, nil
}

// FixedQuote prices every swap at a fixed unspecified amount, whatever the
// pool's liquidity. The LP fee is reported on the input but not deducted.
type FixedQuote struct {
	Unspecified *big.Int
}

func (q FixedQuote) Swap(_ *Pool, params hooks.SwapParams, lpFee uint32) (hooks.BalanceDelta, *big.Int, error) {
	var amountIn, amountOut *big.Int
	if params.IsExactInput() {
		amountIn = new(big.Int).Neg(params.AmountSpecified)
		amountOut = new(big.Int).Set(q.Unspecified)
	} else {
		amountIn = new(big.Int).Set(q.Unspecified)
		amountOut = new(big.Int).Set(params.AmountSpecified)
	}

	feeAmount := new(big.Int).Mul(amountIn, big.NewInt(int64(lpFee)))
	feeAmount.Div(feeAmount, feeDenominator)
	return swapDelta(params.ZeroForOne, amountIn, amountOut), feeAmount, nil
}

// swapDelta builds the swapper's delta: the input is owed by the swapper,
// the output owed to them
func swapDelta(zeroForOne bool, amountIn, amountOut *big.Int) hooks.BalanceDelta {
	if zeroForOne {
		return hooks.NewBalanceDelta(new(big.Int).Neg(amountIn), amountOut)
	}
	return hooks.NewBalanceDelta(amountOut, new(big.Int).Neg(amountIn))
}

func ceilDiv(x, y *big.Int) *big.Int {
	q, r := new(big.Int).QuoRem(x, y, new(big.Int))
	if r.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

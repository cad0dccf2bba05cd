// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

// SwapFeeSource computes the LP fee of one swap, right before it executes
type SwapFeeSource interface {
	SwapFee(sender common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (uint32, error)
}

// OverrideFee overrides the LP fee of every swap with a freshly computed
// value. Nothing is stored; the fee rides on the before-swap result.
type OverrideFee struct {
	*hooks.BaseHook
	hooks.UnimplementedHandler

	source SwapFeeSource
}

// NewOverrideFee creates an override fee hook at cfg.Address
func NewOverrideFee(cfg hooks.Config, source SwapFeeSource) (*OverrideFee, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	o := &OverrideFee{source: source}
	base, err := hooks.New(cfg, o)
	if err != nil {
		return nil, err
	}
	o.BaseHook = base
	return o, nil
}

func (*OverrideFee) Permissions() hooks.Permissions {
	return hooks.Permissions{
		AfterInitialize: true,
		BeforeSwap:      true,
	}
}

// OnAfterInitialize rejects pools whose fee the manager would not let a hook
// override
func (*OverrideFee) OnAfterInitialize(_ common.Address, key hooks.PoolKey, _ *big.Int, _ int32) error {
	if !hooks.IsDynamicFee(key.Fee) {
		return fmt.Errorf("%w: fee %d", ErrNotDynamicFee, key.Fee)
	}
	return nil
}

func (o *OverrideFee) OnBeforeSwap(sender common.Address, key hooks.PoolKey, params hooks.SwapParams, hookData []byte) (hooks.BeforeSwapDelta, uint32, error) {
	fee, err := o.source.SwapFee(sender, key, params, hookData)
	if err != nil {
		return hooks.BeforeSwapDelta{}, 0, fmt.Errorf("computing swap fee: %w", err)
	}

	o.Metrics().FeeUpdates.WithLabelValues("override").Inc()
	o.Logger().Debug("swap fee override", "pool", key.ID(), "fee", fee)
	return hooks.ZeroBeforeSwapDelta(), fee | hooks.OverrideFeeFlag, nil
}

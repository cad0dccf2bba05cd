// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fees implements LP fee strategies as hooks: a dynamic fee refreshed
// by poke, a per-swap override fee and an after-swap capture that donates
// output above a target back to the pool.
package fees

import (
	"fmt"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

// FeeSource computes the LP fee of a pool. Anyone can poke a DynamicFee
// hook, so Fee must not depend on state an adversary can move.
type FeeSource interface {
	Fee(key hooks.PoolKey) (uint32, error)
}

// DynamicFee sets the LP fee of its pools once at initialization and again
// on every Poke
type DynamicFee struct {
	*hooks.BaseHook
	hooks.UnimplementedHandler

	source FeeSource
}

// NewDynamicFee creates a dynamic fee hook at cfg.Address
func NewDynamicFee(cfg hooks.Config, source FeeSource) (*DynamicFee, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	d := &DynamicFee{source: source}
	base, err := hooks.New(cfg, d)
	if err != nil {
		return nil, err
	}
	d.BaseHook = base
	return d, nil
}

func (*DynamicFee) Permissions() hooks.Permissions {
	return hooks.Permissions{AfterInitialize: true}
}

func (d *DynamicFee) OnAfterInitialize(_ common.Address, key hooks.PoolKey, _ *big.Int, _ int32) error {
	if !hooks.IsDynamicFee(key.Fee) {
		return fmt.Errorf("%w: fee %d", ErrNotDynamicFee, key.Fee)
	}
	return d.apply(key)
}

// Poke recomputes the pool's fee and applies it. Anyone may call it, any
// number of times.
func (d *DynamicFee) Poke(key hooks.PoolKey) error {
	metrics := d.Metrics()
	if err := d.ValidatePool(key); err != nil {
		metrics.Pokes.WithLabelValues("rejected").Inc()
		return err
	}
	if !hooks.IsDynamicFee(key.Fee) {
		metrics.Pokes.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: fee %d", ErrNotDynamicFee, key.Fee)
	}
	if err := d.apply(key); err != nil {
		metrics.Pokes.WithLabelValues("error").Inc()
		return err
	}
	metrics.Pokes.WithLabelValues("ok").Inc()
	return nil
}

func (d *DynamicFee) apply(key hooks.PoolKey) error {
	fee, err := d.source.Fee(key)
	if err != nil {
		return fmt.Errorf("computing fee: %w", err)
	}
	if err := d.Manager().UpdateDynamicLPFee(d.Address(), key, fee); err != nil {
		return err
	}

	d.Metrics().FeeUpdates.WithLabelValues("dynamic").Inc()
	d.Logger().Debug("dynamic fee applied", "pool", key.ID(), "fee", fee)
	return nil
}

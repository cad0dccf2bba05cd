// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"errors"
	"testing"

	"github.com/luxfi/geth/common"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dexhooks/hooks"
	"github.com/luxfi/dexhooks/poolmanager"
)

func newDynamicFeeEnv(t *testing.T, fee uint32) (*env, *DynamicFee, *OwnedFee) {
	t.Helper()
	require := require.New(t)

	e := newEnv(t, (&DynamicFee{}).Permissions(), poolmanager.ConstantLiquidityMath{})
	source := NewOwnedFee(e.cfg, testOwner)
	require.NoError(source.SetFee(testOwner, fee))

	d, err := NewDynamicFee(e.cfg, source)
	require.NoError(err)
	require.NoError(e.manager.Registry().Register(d))
	return e, d, source
}

func lpFee(t *testing.T, e *env, key hooks.PoolKey) uint32 {
	t.Helper()
	pool, err := e.manager.GetPool(key)
	require.NoError(t, err)
	return pool.LPFee
}

func TestDynamicFeeAppliedAtInitialize(t *testing.T) {
	require := require.New(t)
	e, _, _ := newDynamicFeeEnv(t, 3000)

	key := e.key(hooks.DynamicFeeFlag)
	_, err := e.manager.Initialize(testLP, key, poolmanager.Q96)
	require.NoError(err)

	require.Equal(uint32(3000), lpFee(t, e, key))
	require.Len(e.logs("DynamicLPFeeUpdated"), 1)
}

func TestDynamicFeeRejectsStaticPool(t *testing.T) {
	require := require.New(t)
	e, _, _ := newDynamicFeeEnv(t, 3000)

	key := e.key(3000)
	_, err := e.manager.Initialize(testLP, key, poolmanager.Q96)
	require.ErrorIs(err, ErrNotDynamicFee)

	_, err = e.manager.GetPool(key)
	require.ErrorIs(err, poolmanager.ErrPoolNotInitialized)
}

func TestDynamicFeePoke(t *testing.T) {
	require := require.New(t)
	e, d, source := newDynamicFeeEnv(t, 3000)

	key := e.key(hooks.DynamicFeeFlag)
	_, err := e.manager.Initialize(testLP, key, poolmanager.Q96)
	require.NoError(err)

	require.NoError(source.SetFee(testOwner, 500))
	require.Equal(uint32(3000), lpFee(t, e, key))

	// poking is idempotent
	require.NoError(d.Poke(key))
	require.NoError(d.Poke(key))
	require.Equal(uint32(500), lpFee(t, e, key))
	require.Len(e.logs("DynamicLPFeeUpdated"), 3)
}

func TestDynamicFeePokeRejections(t *testing.T) {
	e, d, _ := newDynamicFeeEnv(t, 3000)

	foreign := e.key(hooks.DynamicFeeFlag)
	foreign.Hooks = testStranger

	tests := []struct {
		name     string
		key      hooks.PoolKey
		expected error
	}{
		{"another hook's pool", foreign, hooks.ErrInvalidPool},
		{"static pool", e.key(3000), ErrNotDynamicFee},
		{"uninitialized pool", e.key(hooks.DynamicFeeFlag), poolmanager.ErrPoolNotInitialized},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.ErrorIs(t, d.Poke(test.key), test.expected)
		})
	}
}

func TestDynamicFeeOutOfRange(t *testing.T) {
	require := require.New(t)
	e, d, source := newDynamicFeeEnv(t, 3000)

	key := e.key(hooks.DynamicFeeFlag)
	_, err := e.manager.Initialize(testLP, key, poolmanager.Q96)
	require.NoError(err)

	require.NoError(source.SetFee(testOwner, hooks.MaxLPFee+1))
	require.ErrorIs(d.Poke(key), hooks.ErrLPFeeTooLarge)
	require.Equal(uint32(3000), lpFee(t, e, key))
}

func TestOwnedFeeRequiresOwner(t *testing.T) {
	require := require.New(t)
	_, _, source := newDynamicFeeEnv(t, 3000)

	require.ErrorIs(source.SetFee(testStranger, 1), ErrNotOwner)
	fee, err := source.Fee(hooks.PoolKey{})
	require.NoError(err)
	require.Equal(uint32(3000), fee)
}

func TestDynamicFeeRejectsStrangers(t *testing.T) {
	require := require.New(t)
	e, d, source := newDynamicFeeEnv(t, 3000)

	key := e.key(hooks.DynamicFeeFlag)
	_, err := e.manager.Initialize(testLP, key, poolmanager.Q96)
	require.NoError(err)
	require.NoError(source.SetFee(testOwner, 700))

	_, err = d.AfterInitialize(testStranger, testStranger, key, poolmanager.Q96, 0)
	require.ErrorIs(err, hooks.ErrNotPoolManager)
	require.Equal(uint32(3000), lpFee(t, e, key))
}

type failingFee struct{}

var errOracleDown = errors.New("oracle down")

func (failingFee) Fee(hooks.PoolKey) (uint32, error) {
	return 0, errOracleDown
}

func TestDynamicFeeSourceFailure(t *testing.T) {
	require := require.New(t)
	e := newEnv(t, (&DynamicFee{}).Permissions(), poolmanager.ConstantLiquidityMath{})

	d, err := NewDynamicFee(e.cfg, failingFee{})
	require.NoError(err)
	require.NoError(e.manager.Registry().Register(d))

	_, err = e.manager.Initialize(testLP, e.key(hooks.DynamicFeeFlag), poolmanager.Q96)
	require.ErrorIs(err, errOracleDown)

	_, err = NewDynamicFee(e.cfg, nil)
	require.ErrorIs(err, ErrNilSource)
}

func TestDynamicFeeAddressMustMatchPermissions(t *testing.T) {
	e := newEnv(t, hooks.Permissions{BeforeSwap: true}, poolmanager.ConstantLiquidityMath{})

	_, err := NewDynamicFee(e.cfg, NewOwnedFee(e.cfg, testOwner))
	require.ErrorIs(t, err, hooks.ErrHookAddressNotValid)
}

func TestDynamicFeeSwapsAtPokedFee(t *testing.T) {
	require := require.New(t)
	e, d, source := newDynamicFeeEnv(t, 3000)

	key := e.key(hooks.DynamicFeeFlag)
	require.NoError(e.openPool(key))
	require.NoError(source.SetFee(testOwner, 10_000))
	require.NoError(d.Poke(key))

	_, err := e.router.Swap(key, exactIn(1000), nil)
	require.NoError(err)

	swaps := e.logs("Swap")
	swap, err := poolmanager.DecodeSwapEvent(swaps[len(swaps)-1])
	require.NoError(err)
	require.Equal(int64(10_000), swap.Fee.Int64())
	require.Equal(common.Hash(key.ID()), swap.ID)
}

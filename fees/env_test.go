// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import (
	"math/big"
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/geth/common"
	"github.com/luxfi/geth/core/types"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/dexhooks/hooks"
	"github.com/luxfi/dexhooks/poolmanager"
)

var (
	testCurrency0 = hooks.Currency{Address: common.HexToAddress("0x0000000000000000000000000000000000000001")}
	testCurrency1 = hooks.Currency{Address: common.HexToAddress("0x0000000000000000000000000000000000000002")}
	testDeployer  = common.HexToAddress("0x00000000000000000000000000000000000000de")
	testOwner     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testStranger  = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	testRouter    = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	testLP        = common.HexToAddress("0x00000000000000000000000000000000000000f3")
)

// env is a manager with one funded router, ready to host a hook
type env struct {
	manager *poolmanager.Manager
	router  *poolmanager.Router
	cfg     hooks.Config
}

func buildEnv(logger log.Logger, perms hooks.Permissions, math poolmanager.SwapMath) (*env, error) {
	m := poolmanager.New(memdb.New(), hooks.NewHookRegistry(),
		poolmanager.WithSwapMath(math),
		poolmanager.WithLogger(logger),
	)
	amount := new(big.Int).Lsh(big.NewInt(1), 64)
	for _, c := range []hooks.Currency{testCurrency0, testCurrency1} {
		if err := m.Fund(testRouter, c, amount); err != nil {
			return nil, err
		}
	}
	return &env{
		manager: m,
		router:  poolmanager.NewRouter(m, testRouter),
		cfg: hooks.Config{
			Manager: m,
			Address: hooks.GenerateHookAddress(testDeployer, [32]byte{42}, perms),
			State:   m.State(),
			Logger:  logger,
		},
	}, nil
}

func newEnv(t *testing.T, perms hooks.Permissions, math poolmanager.SwapMath) *env {
	t.Helper()
	e, err := buildEnv(log.NewNoOpLogger(), perms, math)
	require.NoError(t, err)
	return e
}

func (e *env) key(fee uint32) hooks.PoolKey {
	return hooks.PoolKey{
		Currency0:   testCurrency0,
		Currency1:   testCurrency1,
		Fee:         fee,
		TickSpacing: 60,
		Hooks:       e.cfg.Address,
	}
}

// openPool initializes key at price 1 and seeds it with liquidity
func (e *env) openPool(key hooks.PoolKey) error {
	if _, err := e.manager.Initialize(testLP, key, poolmanager.Q96); err != nil {
		return err
	}
	_, err := e.router.ModifyLiquidity(key, hooks.ModifyLiquidityParams{
		TickLower:      -60,
		TickUpper:      60,
		LiquidityDelta: big.NewInt(1_000_000),
	}, nil)
	return err
}

func (e *env) logs(name string) []*types.Log {
	var out []*types.Log
	for _, entry := range e.manager.State().Logs() {
		if poolmanager.IsEvent(entry, name) {
			out = append(out, entry)
		}
	}
	return out
}

func exactIn(amount int64) hooks.SwapParams {
	return hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(-amount)}
}

func exactOut(amount int64) hooks.SwapParams {
	return hooks.SwapParams{ZeroForOne: true, AmountSpecified: big.NewInt(amount)}
}

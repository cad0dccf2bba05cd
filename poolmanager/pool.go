// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import (
	"encoding/binary"
	"math"
	"math/big"

	"github.com/luxfi/geth/common"

	"github.com/luxfi/dexhooks/hooks"
)

var (
	Q96  = new(big.Int).Lsh(big.NewInt(1), 96)
	Q128 = new(big.Int).Lsh(big.NewInt(1), 128)

	MinTick int32 = -887272
	MaxTick int32 = 887272

	MinTickSpacing int32 = 1
	MaxTickSpacing int32 = 32767

	MinSqrtRatio    = new(big.Int).SetUint64(4295128739)
	MaxSqrtRatio, _ = new(big.Int).SetString("1461446703485210103287273052203988822378723970342", 10)
)

// Storage key prefixes for pool state
var (
	poolStatePrefix     = []byte("pool")
	poolLiquidityPrefix = []byte("pliq")
	feeGrowthPrefix     = []byte("fgrw")
	positionPrefix      = []byte("posn")
	balancePrefix       = []byte("bal")
	claimsPrefix        = []byte("clm")
)

// Pool is the state of one pool
type Pool struct {
	SqrtPriceX96   *big.Int
	Tick           int32
	LPFee          uint32
	Liquidity      *big.Int
	FeeGrowth0X128 *big.Int
	FeeGrowth1X128 *big.Int
}

// IsInitialized reports whether the pool has a price
func (p *Pool) IsInitialized() bool {
	return p.SqrtPriceX96 != nil && p.SqrtPriceX96.Sign() > 0
}

func newPool() *Pool {
	return &Pool{
		SqrtPriceX96:   big.NewInt(0),
		Liquidity:      big.NewInt(0),
		FeeGrowth0X128: big.NewInt(0),
		FeeGrowth1X128: big.NewInt(0),
	}
}

func poolSlot(prefix []byte, id hooks.PoolID, field string) common.Hash {
	return hooks.StorageKey(prefix, append(id.Bytes(), field...))
}

// getPool reads a pool from storage. Every read goes to the state so a
// reverted unlock leaves no stale copy behind.
func (m *Manager) getPool(id hooks.PoolID) *Pool {
	pool := newPool()

	pool.SqrtPriceX96 = hooks.HashToBig(m.state.GetState(m.address, poolSlot(poolStatePrefix, id, "sqrtPrice")))

	slot0 := m.state.GetState(m.address, poolSlot(poolStatePrefix, id, "slot0"))
	pool.Tick = int32(binary.BigEndian.Uint32(slot0[24:28]))
	pool.LPFee = binary.BigEndian.Uint32(slot0[28:32])

	pool.Liquidity = hooks.HashToBig(m.state.GetState(m.address, poolSlot(poolLiquidityPrefix, id, "")))
	pool.FeeGrowth0X128 = hooks.HashToBig(m.state.GetState(m.address, poolSlot(feeGrowthPrefix, id, "0")))
	pool.FeeGrowth1X128 = hooks.HashToBig(m.state.GetState(m.address, poolSlot(feeGrowthPrefix, id, "1")))
	return pool
}

// setPool writes a pool to storage
func (m *Manager) setPool(id hooks.PoolID, pool *Pool) {
	m.state.SetState(m.address, poolSlot(poolStatePrefix, id, "sqrtPrice"), hooks.BigToHash(pool.SqrtPriceX96))

	var slot0 common.Hash
	binary.BigEndian.PutUint32(slot0[24:28], uint32(pool.Tick))
	binary.BigEndian.PutUint32(slot0[28:32], pool.LPFee)
	m.state.SetState(m.address, poolSlot(poolStatePrefix, id, "slot0"), slot0)

	m.state.SetState(m.address, poolSlot(poolLiquidityPrefix, id, ""), hooks.BigToHash(pool.Liquidity))
	m.state.SetState(m.address, poolSlot(feeGrowthPrefix, id, "0"), hooks.BigToHash(pool.FeeGrowth0X128))
	m.state.SetState(m.address, poolSlot(feeGrowthPrefix, id, "1"), hooks.BigToHash(pool.FeeGrowth1X128))
}

// positionSlot derives the storage key of a liquidity position
func positionSlot(id hooks.PoolID, owner common.Address, tickLower, tickUpper int32, salt [32]byte) common.Hash {
	data := make([]byte, 0, 32+20+4+4+32)
	data = append(data, id.Bytes()...)
	data = append(data, owner.Bytes()...)
	data = binary.BigEndian.AppendUint32(data, uint32(tickLower))
	data = binary.BigEndian.AppendUint32(data, uint32(tickUpper))
	data = append(data, salt[:]...)
	return hooks.StorageKey(positionPrefix, data)
}

// sqrtPriceX96ToTick returns floor(log_1.0001(price)) where
// price = (sqrtPriceX96 / 2^96)^2. Float precision is enough for the harness.
func sqrtPriceX96ToTick(sqrtPriceX96 *big.Int) int32 {
	ratio, _ := new(big.Float).Quo(new(big.Float).SetInt(sqrtPriceX96), new(big.Float).SetInt(Q96)).Float64()
	if ratio <= 0 {
		return MinTick
	}
	tick := math.Floor(2 * math.Log(ratio) / math.Log(1.0001))
	switch {
	case tick < float64(MinTick):
		return MinTick
	case tick > float64(MaxTick):
		return MaxTick
	}
	return int32(tick)
}

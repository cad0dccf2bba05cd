// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"math/big"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// StateDB is the slot storage a hook keeps its state in. Transient slots live
// until the end of the current top-level unlock.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)
	GetTransientState(addr common.Address, key common.Hash) common.Hash
	SetTransientState(addr common.Address, key common.Hash, value common.Hash)
}

// StorageKey derives a slot key from a prefix and identifier
func StorageKey(prefix []byte, id []byte) common.Hash {
	h := blake3.New()
	h.Write(prefix)
	h.Write(id)
	var key common.Hash
	h.Digest().Read(key[:])
	return key
}

// BigToHash stores a non-negative integer in a slot value
func BigToHash(v *big.Int) common.Hash {
	var h common.Hash
	if v != nil {
		v.FillBytes(h[:])
	}
	return h
}

// HashToBig reads a non-negative integer from a slot value
func HashToBig(h common.Hash) *big.Int {
	return new(big.Int).SetBytes(h[:])
}

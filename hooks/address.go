// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/zeebo/blake3"
)

// ComputeAddress derives a CREATE2-style deployment address from the
// deployer, a salt and the hash of the hook's init code
func ComputeAddress(deployer common.Address, salt [32]byte, initCodeHash common.Hash) common.Address {
	h := blake3.New()
	h.Write([]byte{0xff}) // CREATE2 prefix
	h.Write(deployer.Bytes())
	h.Write(salt[:])
	h.Write(initCodeHash.Bytes())

	var hash [32]byte
	h.Digest().Read(hash[:])
	return common.BytesToAddress(hash[12:])
}

// MineSalt searches salts 0..maxIterations-1 for one whose deployment address
// carries exactly flags in its capability bits
func MineSalt(ctx context.Context, deployer common.Address, initCodeHash common.Hash, flags Flags, maxIterations uint64) (common.Address, [32]byte, error) {
	flags &= AllHookMask

	var salt [32]byte
	for i := uint64(0); i < maxIterations; i++ {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return common.Address{}, [32]byte{}, err
			}
		}

		binary.BigEndian.PutUint64(salt[24:], i)
		addr := ComputeAddress(deployer, salt, initCodeHash)
		if FlagsFromAddress(addr) == flags {
			return addr, salt, nil
		}
	}
	return common.Address{}, [32]byte{}, fmt.Errorf("%w: %s after %d iterations", ErrSaltNotFound, flags, maxIterations)
}

// GenerateHookAddress returns a deterministic address carrying exactly the
// flags of permissions, without mining. Used for fixtures and simulations.
func GenerateHookAddress(deployer common.Address, salt [32]byte, permissions Permissions) common.Address {
	addr := ComputeAddress(deployer, salt, common.Hash{})

	flags := uint16(EncodePermissions(permissions))
	low := binary.BigEndian.Uint16(addr[18:20])
	binary.BigEndian.PutUint16(addr[18:20], low&^uint16(AllHookMask)|flags)
	return addr
}

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fees

import "errors"

// Fee strategy errors
var (
	ErrNotDynamicFee       = errors.New("pool is not a dynamic fee pool")
	ErrNotOwner            = errors.New("caller is not the owner")
	ErrInvalidTargetOutput = errors.New("invalid target output")
	ErrNilSource           = errors.New("nil fee source")
)

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hooks

import (
	"errors"
	"fmt"
)

// Hook errors
var (
	ErrHookAddressNotValid = errors.New("hook address doesn't match permissions")
	ErrHookNotImplemented  = errors.New("hook not implemented")
	ErrNotPoolManager      = errors.New("caller is not the pool manager")
	ErrNotSelf             = errors.New("caller is not the hook itself")
	ErrInvalidPool         = errors.New("pool is not bound to this hook")
	ErrLockFailure         = errors.New("unlock callback failed")
	ErrLPFeeTooLarge       = errors.New("lp fee too large")
	ErrHookNotRegistered   = errors.New("hook not registered")
	ErrSaltNotFound        = errors.New("no salt found for requested flags")
	ErrInvalidHookResponse = errors.New("invalid hook response")
	ErrUnknownPermission   = errors.New("unknown permission")
)

// RevertError carries the raw revert payload of a failed call. An empty
// payload means the callee failed without a diagnostic.
type RevertError struct {
	Data []byte
}

func (e *RevertError) Error() string {
	if len(e.Data) == 0 {
		return "execution reverted"
	}
	return fmt.Sprintf("execution reverted: %x", e.Data)
}

// revertData returns the diagnostic payload of err. Errors that are not
// RevertErrors carry their message as payload.
func revertData(err error) []byte {
	var revert *RevertError
	if errors.As(err, &revert) {
		return revert.Data
	}
	return []byte(err.Error())
}

// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package poolmanager

import "errors"

// Manager errors
var (
	ErrAlreadyUnlocked                = errors.New("manager already unlocked")
	ErrManagerLocked                  = errors.New("manager is locked")
	ErrNoCallbackReceiver             = errors.New("caller cannot receive unlock callbacks")
	ErrCurrencyNotSettled             = errors.New("currency not settled")
	ErrPoolNotInitialized             = errors.New("pool not initialized")
	ErrPoolAlreadyInitialized         = errors.New("pool already initialized")
	ErrCurrencyNotSorted              = errors.New("currencies not sorted")
	ErrInvalidSqrtPrice               = errors.New("invalid sqrt price")
	ErrInvalidTickRange               = errors.New("invalid tick range")
	ErrTickSpacingOutOfRange          = errors.New("tick spacing out of range")
	ErrSwapAmountCannotBeZero         = errors.New("swap amount cannot be zero")
	ErrNoLiquidity                    = errors.New("no liquidity in pool")
	ErrUnauthorizedDynamicLPFeeUpdate = errors.New("unauthorized dynamic lp fee update")
	ErrInsufficientBalance            = errors.New("insufficient balance")
	ErrInsufficientClaims             = errors.New("insufficient claims")
	ErrUnauthorized                   = errors.New("unauthorized")
	ErrHookDeltaExceedsSwapAmount     = errors.New("hook delta exceeds swap amount")
	ErrInvalidAmount                  = errors.New("invalid amount")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import "errors"

var (
	// Parsing
	ErrInvalidObject = errors.New("invalid object")

	// Structure
	ErrNoInstructions      = errors.New("no instructions")
	ErrTooManyInstructions = errors.New("too many instructions")
	ErrTooManyAccounts     = errors.New("too many accounts")
	ErrDuplicateAccount    = errors.New("duplicate account")

	// Account references
	ErrAccountNotFound     = errors.New("account not found in transaction account list")
	ErrPrivilegeEscalation = errors.New("instruction escalates account privileges")
	ErrMissingSignature    = errors.New("missing signature")
	ErrUnexpectedSignature = errors.New("unexpected signature")
	ErrDuplicateSignature  = errors.New("duplicate signature")
	ErrInvalidSignature    = errors.New("invalid signature")

	// Validity
	ErrInvalidChainID       = errors.New("invalid chain ID")
	ErrTransactionExpired   = errors.New("transaction expired")
	ErrTransactionTooEarly  = errors.New("transaction expiry too far in the future")
	ErrDuplicateTransaction = errors.New("duplicate transaction")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package programs

import "errors"

var (
	ErrUnknownProgram           = errors.New("unknown program")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("not enough account keys")
	ErrMissingRequiredSignature = errors.New("missing required signature")
	ErrInsufficientFunds        = errors.New("insufficient funds")
	ErrArithmeticOverflow       = errors.New("arithmetic overflow")
	ErrInvalidOwner             = errors.New("invalid owner")
	ErrAccountAlreadyExists     = errors.New("account already exists")
	ErrInvalidAccountData       = errors.New("invalid account data")
	ErrUninitializedAccount     = errors.New("uninitialized account")
	ErrMintMismatch             = errors.New("mint mismatch")
	ErrOwnerMismatch            = errors.New("owner does not match")
)

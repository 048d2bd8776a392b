// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import "errors"

var (
	ErrReadonlyAccountModified     = errors.New("instruction modified a readonly account")
	ErrExternalAccountDebit        = errors.New("instruction debited an account it does not own")
	ErrExternalAccountDataModified = errors.New("instruction modified data of an account it does not own")
	ErrModifiedOwner               = errors.New("instruction changed the owner of an account it does not own")
	ErrUnreferencedAccount         = errors.New("instruction returned an account it did not reference")
	ErrUnbalancedTransaction       = errors.New("sum of account balances before and after transaction do not match")
	ErrInsufficientFundsForRent    = errors.New("transaction results in an account with insufficient funds for rent")
	ErrComputeBudgetExceeded       = errors.New("compute budget exceeded")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountLockFailed = errors.New("account lock failed")
)

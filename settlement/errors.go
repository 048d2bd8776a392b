// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settlement

import "errors"

var (
	ErrUnbalancedSettlement = errors.New("unbalanced settlement")
	ErrNoTransfers          = errors.New("no transfers")
)

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/paytube/account"
)

// Rules are the execution parameters shared by the validator and the
// processor.
type Rules struct {
	// ValidityWindow is how far in the future (in ms) a transaction's expiry
	// may be and how long its ID is remembered for replay protection.
	ValidityWindow int64 `json:"validityWindow"`

	MaxInstructions int `json:"maxInstructions"`
	MaxAccounts     int `json:"maxAccounts"`

	// MaxComputeUnits is the per-transaction compute budget.
	MaxComputeUnits uint64 `json:"maxComputeUnits"`

	Rent account.Rent `json:"rent"`
}

func DefaultRules() Rules {
	return Rules{
		ValidityWindow:  60 * 1000,
		MaxInstructions: 64,
		MaxAccounts:     128,
		MaxComputeUnits: 200_000,
	}
}

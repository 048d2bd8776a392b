// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/paytube/state"
)

// NoFailedInstruction marks a failure that is not attributable to a single
// instruction, or a success.
const NoFailedInstruction = -1

// Result is the outcome of one transaction. A successful result carries
// the committed state of every written account. A failed one carries the
// error and no state effects.
type Result struct {
	TxID    ids.ID `json:"txId"`
	Success bool   `json:"success"`
	Err     error  `json:"-"`

	// FailedInstruction is the index of the instruction that failed.
	FailedInstruction int `json:"failedInstruction"`

	Changes      []state.Change `json:"changes,omitempty"`
	Logs         []string       `json:"logs"`
	ComputeUnits uint64         `json:"computeUnits"`
}

// ErrorMessage returns the failure message, or an empty string on success.
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

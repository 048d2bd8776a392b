// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import (
	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/paytube/consts"
)

// StorageOverhead is charged on top of the data length of every account.
const StorageOverhead = 128

type RentState uint8

const (
	Uninitialized RentState = iota
	RentPaying
	RentExempt
)

func (s RentState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case RentPaying:
		return "rent-paying"
	case RentExempt:
		return "rent-exempt"
	default:
		return "unknown"
	}
}

// Rent parameterizes the minimum balance an account must hold to be exempt
// from rent. The zero value disables rent entirely.
type Rent struct {
	LamportsPerByteYear uint64 `json:"lamportsPerByteYear"`
	ExemptionThreshold  uint64 `json:"exemptionThreshold"`
}

func (r Rent) Enabled() bool {
	return r.LamportsPerByteYear > 0 && r.ExemptionThreshold > 0
}

// MinimumBalance is the balance at which an account with dataLen bytes of
// data becomes rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	if !r.Enabled() {
		return 0
	}
	bytesCharged := uint64(StorageOverhead) + uint64(dataLen)
	perYear, err := smath.Mul(bytesCharged, r.LamportsPerByteYear)
	if err != nil {
		return consts.MaxUint64
	}
	minimum, err := smath.Mul(perYear, r.ExemptionThreshold)
	if err != nil {
		return consts.MaxUint64
	}
	return minimum
}

// Status captures what a rent transition check needs to know about an
// account at one point in time.
type Status struct {
	State    RentState
	DataSize int
	Balance  uint64
}

func (r Rent) Status(a *Account) Status {
	if a == nil || a.Balance == 0 {
		return Status{State: Uninitialized}
	}
	s := Status{DataSize: len(a.Data), Balance: a.Balance}
	if a.Balance >= r.MinimumBalance(len(a.Data)) {
		s.State = RentExempt
	} else {
		s.State = RentPaying
	}
	return s
}

// TransitionAllowed reports whether an account may move from pre to post
// within a single transaction. An account may only end up rent-paying if it
// already was, kept its size and did not grow its balance.
func TransitionAllowed(pre, post Status) bool {
	if post.State != RentPaying {
		return true
	}
	return pre.State == RentPaying &&
		pre.DataSize == post.DataSize &&
		post.Balance <= pre.Balance
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package account

import (
	"bytes"

	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
)

// MaxDataLen bounds the opaque data payload of a single account.
const MaxDataLen = 10 * 1024 * 1024

// Account is the state stored under an address. Balance is denominated in
// the native unit. Only the owning program may debit the balance or modify
// the data payload.
type Account struct {
	Balance    uint64        `json:"balance"`
	Owner      codec.Address `json:"owner"`
	Data       []byte        `json:"data"`
	Executable bool          `json:"executable"`
	RentEpoch  uint64        `json:"rentEpoch"`
}

// New returns an empty account owned by owner.
func New(balance uint64, space int, owner codec.Address) *Account {
	return &Account{
		Balance: balance,
		Owner:   owner,
		Data:    make([]byte, space),
	}
}

// Clone returns a deep copy of a. Clone of nil is nil.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	c.Data = bytes.Clone(a.Data)
	return &c
}

// Equal reports whether a and b hold identical state.
func (a *Account) Equal(b *Account) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Balance == b.Balance &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		a.RentEpoch == b.RentEpoch &&
		bytes.Equal(a.Data, b.Data)
}

func (a *Account) Size() int {
	return consts.Uint64Len + codec.AddressLen + codec.BytesLen(a.Data) + consts.BoolLen + consts.Uint64Len
}

func (a *Account) Marshal() []byte {
	p := codec.NewWriter(a.Size(), consts.NetworkSizeLimit)
	p.PackUint64(a.Balance)
	p.PackFixedBytes(a.Owner[:])
	p.PackBytes(a.Data)
	p.PackBool(a.Executable)
	p.PackUint64(a.RentEpoch)
	return p.Bytes()
}

func Unmarshal(b []byte) (*Account, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	a := &Account{}
	a.Balance = p.UnpackUint64(false)
	owner := make([]byte, codec.AddressLen)
	p.UnpackFixedBytes(codec.AddressLen, &owner)
	copy(a.Owner[:], owner)
	p.UnpackBytes(MaxDataLen, false, &a.Data)
	a.Executable = p.UnpackBool()
	a.RentEpoch = p.UnpackUint64(false)
	if err := p.Err(); err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, codec.ErrExtraBytes
	}
	return a, nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
)

const (
	AccountMetaSize = codec.AddressLen + 2*consts.BoolLen

	// MaxInstructionDataLen bounds the opaque payload of one instruction.
	MaxInstructionDataLen = 10 * 1024
)

// AccountMeta references an account and the privileges required on it.
type AccountMeta struct {
	Address    codec.Address `json:"address"`
	IsSigner   bool          `json:"isSigner"`
	IsWritable bool          `json:"isWritable"`
}

func (m *AccountMeta) Marshal(p *codec.Packer) {
	p.PackAddress(m.Address)
	p.PackBool(m.IsSigner)
	p.PackBool(m.IsWritable)
}

func UnmarshalAccountMeta(p *codec.Packer) *AccountMeta {
	var m AccountMeta
	p.UnpackAddress(&m.Address)
	m.IsSigner = p.UnpackBool()
	m.IsWritable = p.UnpackBool()
	return &m
}

// Instruction is a single request to a program. Accounts are passed to the
// program in the order given here.
type Instruction struct {
	ProgramID codec.Address  `json:"programId"`
	Accounts  []*AccountMeta `json:"accounts"`
	Data      []byte         `json:"data"`
}

func (i *Instruction) Size() int {
	return codec.AddressLen + consts.IntLen + len(i.Accounts)*AccountMetaSize + codec.BytesLen(i.Data)
}

func (i *Instruction) Marshal(p *codec.Packer) {
	p.PackAddress(i.ProgramID)
	p.PackInt(len(i.Accounts))
	for _, m := range i.Accounts {
		m.Marshal(p)
	}
	p.PackBytes(i.Data)
}

func UnmarshalInstruction(p *codec.Packer, maxAccounts int) (*Instruction, error) {
	var ix Instruction
	p.UnpackAddress(&ix.ProgramID)
	numAccounts := p.UnpackInt(false)
	if numAccounts > maxAccounts {
		return nil, codec.ErrTooManyItems
	}
	ix.Accounts = make([]*AccountMeta, 0, numAccounts)
	for j := 0; j < numAccounts; j++ {
		ix.Accounts = append(ix.Accounts, UnmarshalAccountMeta(p))
	}
	p.UnpackBytes(MaxInstructionDataLen, false, &ix.Data)
	return &ix, p.Err()
}

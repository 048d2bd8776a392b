// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"

	"github.com/ava-labs/paytube/codec"
)

// SanitizedTransaction is a transaction that passed validation. Only the
// validator constructs it, so holding one proves the account list,
// signatures and validity marker were checked.
type SanitizedTransaction struct {
	tx *Transaction

	signers  set.Set[codec.Address]
	writable set.Set[codec.Address]
}

func newSanitizedTransaction(tx *Transaction) *SanitizedTransaction {
	s := &SanitizedTransaction{
		tx:       tx,
		signers:  set.NewSet[codec.Address](len(tx.Signatures)),
		writable: set.NewSet[codec.Address](len(tx.Accounts)),
	}
	for _, m := range tx.Accounts {
		if m.IsSigner {
			s.signers.Add(m.Address)
		}
		if m.IsWritable {
			s.writable.Add(m.Address)
		}
	}
	return s
}

func (s *SanitizedTransaction) Tx() *Transaction { return s.tx }

func (s *SanitizedTransaction) ID() ids.ID { return s.tx.ID() }

func (s *SanitizedTransaction) Instructions() []*Instruction { return s.tx.Instructions }

func (s *SanitizedTransaction) IsSigner(addr codec.Address) bool {
	return s.signers.Contains(addr)
}

func (s *SanitizedTransaction) IsWritable(addr codec.Address) bool {
	return s.writable.Contains(addr)
}

// WritableAccounts returns every declared writable account in declaration
// order.
func (s *SanitizedTransaction) WritableAccounts() []codec.Address {
	addrs := make([]codec.Address, 0, s.writable.Len())
	for _, m := range s.tx.Accounts {
		if m.IsWritable {
			addrs = append(addrs, m.Address)
		}
	}
	return addrs
}

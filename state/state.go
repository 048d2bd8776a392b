// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"slices"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
)

// Reader resolves an address to its current account. Implementations
// return ErrAccountNotFound when the address has never been funded, which
// is distinct from an account holding a zero balance.
//
// Returned accounts are copies and may be modified by the caller.
type Reader interface {
	Get(ctx context.Context, addr codec.Address) (*account.Account, error)
}

// AccountStore is a read-write view of account state. Set always replaces
// the full record.
type AccountStore interface {
	Reader

	Set(ctx context.Context, addr codec.Address, acct *account.Account) error
	Snapshot(ctx context.Context) (map[codec.Address]*account.Account, error)
}

// ReaderFunc adapts a plain function to a Reader.
type ReaderFunc func(ctx context.Context, addr codec.Address) (*account.Account, error)

func (f ReaderFunc) Get(ctx context.Context, addr codec.Address) (*account.Account, error) {
	return f(ctx, addr)
}

// Change is the post-transaction state of a single account.
type Change struct {
	Address codec.Address    `json:"address"`
	Account *account.Account `json:"account"`
}

// SortChanges orders changes by address.
func SortChanges(changes []Change) {
	slices.SortFunc(changes, func(a, b Change) int {
		return a.Address.Compare(b.Address)
	})
}

// Apply writes every change to store in order.
func Apply(ctx context.Context, store AccountStore, changes []Change) error {
	for _, c := range changes {
		if err := store.Set(ctx, c.Address, c.Account); err != nil {
			return err
		}
	}
	return nil
}

// Total sums the native balance of every account in accts.
func Total(accts map[codec.Address]*account.Account) (uint64, error) {
	var (
		total uint64
		err   error
	)
	for _, a := range accts {
		total, err = smath.Add(total, a.Balance)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/state"
)

const defaultOps = 8

type op struct {
	addr codec.Address

	pastExists  bool
	pastAcct    *account.Account
	pastChanged bool
}

// TState is the working set of a single transaction. It is seeded with the
// accounts loaded for the transaction, records every write so that any
// prefix of them can be undone, and only touches the backing store on
// Commit.
type TState struct {
	scope   state.Keys
	storage map[codec.Address]*account.Account
	pending map[codec.Address]*account.Account

	// ops records every write so state can be restored to any prior point.
	ops []*op
}

// New returns a TState over [storage], which holds the loaded pre-state of
// every existing account in [scope]. Accounts in scope but absent from
// storage do not exist yet.
func New(scope state.Keys, storage map[codec.Address]*account.Account) *TState {
	return &TState{
		scope:   scope,
		storage: storage,
		pending: make(map[codec.Address]*account.Account, len(scope)),
		ops:     make([]*op, 0, defaultOps),
	}
}

func (ts *TState) getAccount(addr codec.Address) (*account.Account, bool, bool) {
	if a, ok := ts.pending[addr]; ok {
		return a, true, true
	}
	if a, ok := ts.storage[addr]; ok {
		return a, false, true
	}
	return nil, false, false
}

// GetAccount returns a copy of the current state of [addr].
func (ts *TState) GetAccount(_ context.Context, addr codec.Address) (*account.Account, error) {
	if _, ok := ts.scope[addr]; !ok {
		return nil, ErrKeyNotSpecified
	}
	a, _, exists := ts.getAccount(addr)
	if !exists {
		return nil, state.ErrAccountNotFound
	}
	return a.Clone(), nil
}

// Original returns the state [addr] had when the transaction was loaded,
// or nil if it did not exist.
func (ts *TState) Original(addr codec.Address) *account.Account {
	return ts.storage[addr].Clone()
}

// PutAccount replaces the state of [addr]. The account must be writable and,
// if it does not exist yet, allocatable.
func (ts *TState) PutAccount(_ context.Context, addr codec.Address, acct *account.Account) error {
	perms, ok := ts.scope[addr]
	if !ok {
		return ErrKeyNotSpecified
	}
	if !perms.Has(state.Write) {
		return ErrReadonlyAccount
	}
	past, changed, exists := ts.getAccount(addr)
	if !exists && !perms.Has(state.Allocate) {
		return ErrAllocationDisabled
	}
	ts.pending[addr] = acct.Clone()
	ts.ops = append(ts.ops, &op{
		addr:        addr,
		pastExists:  exists,
		pastAcct:    past,
		pastChanged: changed,
	})
	return nil
}

// Rollback restores the TState to the ts.ops[restorePoint] operation.
func (ts *TState) Rollback(_ context.Context, restorePoint int) {
	for i := len(ts.ops) - 1; i >= restorePoint; i-- {
		op := ts.ops[i]
		if !op.pastChanged {
			delete(ts.pending, op.addr)
			continue
		}
		ts.pending[op.addr] = op.pastAcct
	}
	ts.ops = ts.ops[:restorePoint]
}

// OpIndex returns the number of operations done on ts.
func (ts *TState) OpIndex() int {
	return len(ts.ops)
}

// Changes returns the final state of every written account, ordered by
// address.
func (ts *TState) Changes() []state.Change {
	changes := make([]state.Change, 0, len(ts.pending))
	for addr, a := range ts.pending {
		changes = append(changes, state.Change{Address: addr, Account: a.Clone()})
	}
	state.SortChanges(changes)
	return changes
}

// Commit writes all pending changes to [store].
func (ts *TState) Commit(ctx context.Context, store state.AccountStore) error {
	return state.Apply(ctx, store, ts.Changes())
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"slices"

	"github.com/ava-labs/avalanchego/utils/set"
	"golang.org/x/exp/maps"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
)

var _ AccountStore = (*Virtual)(nil)

// Virtual is a copy-on-first-touch overlay. Reads are served from its own
// map when the address has been seen before and otherwise go to the
// fallback exactly once; the result (including a miss) is cached. Writes
// never reach the fallback.
//
// Virtual is not safe for concurrent use. Its owner serializes access.
type Virtual struct {
	fallback Reader

	accts   map[codec.Address]*account.Account
	missing set.Set[codec.Address]
	written set.Set[codec.Address]
}

func NewVirtual(fallback Reader) *Virtual {
	return &Virtual{
		fallback: fallback,
		accts:    make(map[codec.Address]*account.Account),
		missing:  set.Set[codec.Address]{},
		written:  set.Set[codec.Address]{},
	}
}

// Seed installs an account read elsewhere as if it had been fetched from
// the fallback. A nil account records a miss.
func (v *Virtual) Seed(addr codec.Address, acct *account.Account) {
	if acct == nil {
		v.missing.Add(addr)
		return
	}
	v.accts[addr] = acct.Clone()
}

func (v *Virtual) Get(ctx context.Context, addr codec.Address) (*account.Account, error) {
	if a, ok := v.accts[addr]; ok {
		return a.Clone(), nil
	}
	if v.missing.Contains(addr) {
		return nil, ErrAccountNotFound
	}
	a, err := v.fallback.Get(ctx, addr)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		v.missing.Add(addr)
		return nil, ErrAccountNotFound
	case err != nil:
		return nil, err
	}
	v.accts[addr] = a.Clone()
	return a, nil
}

func (v *Virtual) Set(_ context.Context, addr codec.Address, acct *account.Account) error {
	v.accts[addr] = acct.Clone()
	v.missing.Remove(addr)
	v.written.Add(addr)
	return nil
}

// Snapshot returns every account the overlay has touched.
func (v *Virtual) Snapshot(context.Context) (map[codec.Address]*account.Account, error) {
	snap := make(map[codec.Address]*account.Account, len(v.accts))
	for addr, a := range v.accts {
		snap[addr] = a.Clone()
	}
	return snap, nil
}

// Changed returns the state of every account written through Set, ordered
// by address.
func (v *Virtual) Changed() []Change {
	addrs := maps.Keys(v.written)
	slices.SortFunc(addrs, codec.Address.Compare)
	changes := make([]Change, len(addrs))
	for i, addr := range addrs {
		changes[i] = Change{Address: addr, Account: v.accts[addr].Clone()}
	}
	return changes
}

// Discard drops all cached and written state.
func (v *Virtual) Discard() {
	clear(v.accts)
	v.missing.Clear()
	v.written.Clear()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/state"
)

var (
	addr1 = codec.Address{1}
	addr2 = codec.Address{2}
	addr3 = codec.Address{3}
)

func TestScope(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	ts := New(state.Keys{}, map[codec.Address]*account.Account{})
	_, err := ts.GetAccount(ctx, addr1)
	require.ErrorIs(err, ErrKeyNotSpecified)
	require.ErrorIs(ts.PutAccount(ctx, addr1, &account.Account{}), ErrKeyNotSpecified)
}

func TestPermissions(t *testing.T) {
	tests := []struct {
		name   string
		perms  state.Permissions
		exists bool
		err    error
	}{
		{
			name:   "readonly",
			perms:  state.Read,
			exists: true,
			err:    ErrReadonlyAccount,
		},
		{
			name:   "write existing",
			perms:  state.Write,
			exists: true,
		},
		{
			name:  "write missing",
			perms: state.Write,
			err:   ErrAllocationDisabled,
		},
		{
			name:  "allocate missing",
			perms: state.Write | state.Allocate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := map[codec.Address]*account.Account{}
			if tt.exists {
				storage[addr1] = &account.Account{Balance: 1}
			}
			ts := New(state.Keys{addr1: tt.perms}, storage)
			err := ts.PutAccount(context.TODO(), addr1, &account.Account{Balance: 2})
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestGetAndPut(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	storage := map[codec.Address]*account.Account{addr1: {Balance: 10}}
	ts := New(state.Keys{addr1: state.Write, addr2: state.All}, storage)

	_, err := ts.GetAccount(ctx, addr2)
	require.ErrorIs(err, state.ErrAccountNotFound)

	require.NoError(ts.PutAccount(ctx, addr1, &account.Account{Balance: 4}))
	require.NoError(ts.PutAccount(ctx, addr2, &account.Account{Balance: 6}))

	a, err := ts.GetAccount(ctx, addr1)
	require.NoError(err)
	require.Equal(uint64(4), a.Balance)
	require.Equal(uint64(10), ts.Original(addr1).Balance)
	require.Nil(ts.Original(addr2))

	// callers cannot reach into the view
	a.Balance = 99
	a, err = ts.GetAccount(ctx, addr1)
	require.NoError(err)
	require.Equal(uint64(4), a.Balance)
}

func TestRollback(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	storage := map[codec.Address]*account.Account{
		addr1: {Balance: 10},
		addr2: {Balance: 20},
	}
	ts := New(state.Keys{addr1: state.Write, addr2: state.Write, addr3: state.All}, storage)

	require.NoError(ts.PutAccount(ctx, addr1, &account.Account{Balance: 5}))
	restore := ts.OpIndex()
	require.NoError(ts.PutAccount(ctx, addr1, &account.Account{Balance: 1}))
	require.NoError(ts.PutAccount(ctx, addr2, &account.Account{Balance: 25}))
	require.NoError(ts.PutAccount(ctx, addr3, &account.Account{Balance: 9}))
	require.Equal(4, ts.OpIndex())

	ts.Rollback(ctx, restore)
	require.Equal(restore, ts.OpIndex())
	a1, err := ts.GetAccount(ctx, addr1)
	require.NoError(err)
	require.Equal(uint64(5), a1.Balance)
	a2, err := ts.GetAccount(ctx, addr2)
	require.NoError(err)
	require.Equal(uint64(20), a2.Balance)
	_, err = ts.GetAccount(ctx, addr3)
	require.ErrorIs(err, state.ErrAccountNotFound)

	ts.Rollback(ctx, 0)
	require.Empty(ts.Changes())
}

func TestCommit(t *testing.T) {
	require := require.New(t)
	ctx := context.TODO()

	store := state.NewMemoryFrom(map[codec.Address]*account.Account{addr1: {Balance: 10}})
	ts := New(state.Keys{addr1: state.Write, addr2: state.All}, map[codec.Address]*account.Account{
		addr1: {Balance: 10},
	})
	require.NoError(ts.PutAccount(ctx, addr2, &account.Account{Balance: 3}))
	require.NoError(ts.PutAccount(ctx, addr1, &account.Account{Balance: 7}))

	changes := ts.Changes()
	require.Len(changes, 2)
	require.Equal(addr1, changes[0].Address)

	require.NoError(ts.Commit(ctx, store))
	snap, err := store.Snapshot(ctx)
	require.NoError(err)
	require.Equal(uint64(7), snap[addr1].Balance)
	require.Equal(uint64(3), snap[addr2].Balance)
}

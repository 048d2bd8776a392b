// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
)

var (
	addrA = codec.Address{1}
	addrB = codec.Address{2}
	addrC = codec.Address{3}
)

func TestPermissionsHas(t *testing.T) {
	tests := []struct {
		name    string
		perm    Permissions
		require Permissions
		has     bool
	}{
		{"read has read", Read, Read, true},
		{"write has read", Write, Read, true},
		{"read lacks write", Read, Write, false},
		{"allocate lacks write", Allocate, Write, false},
		{"all has everything", All, Allocate | Write, true},
		{"none has none", None, None, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.has, tt.perm.Has(tt.require))
		})
	}
}

func TestKeysAddUnions(t *testing.T) {
	require := require.New(t)

	keys := Keys{}
	keys.Add(addrB, Write)
	keys.Add(addrA, Read)
	keys.Add(addrB, Allocate)
	require.Equal(Write|Allocate, keys[addrB])
	require.Equal([]codec.Address{addrA, addrB}, keys.Sorted())
}

func TestMemoryStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	m := NewMemory()
	_, err := m.Get(ctx, addrA)
	require.ErrorIs(err, ErrAccountNotFound)

	require.NoError(m.Set(ctx, addrA, &account.Account{}))
	a, err := m.Get(ctx, addrA)
	require.NoError(err)
	require.Zero(a.Balance)

	// returned accounts are copies
	a.Balance = 10
	a, err = m.Get(ctx, addrA)
	require.NoError(err)
	require.Zero(a.Balance)
}

type countingReader struct {
	store *Memory
	calls map[codec.Address]int
	err   error
}

func (c *countingReader) Get(ctx context.Context, addr codec.Address) (*account.Account, error) {
	c.calls[addr]++
	if c.err != nil {
		return nil, c.err
	}
	return c.store.Get(ctx, addr)
}

func TestVirtualCopyOnFirstTouch(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	live := NewMemoryFrom(map[codec.Address]*account.Account{
		addrA: {Balance: 100},
	})
	reader := &countingReader{store: live, calls: map[codec.Address]int{}}
	v := NewVirtual(reader)

	a, err := v.Get(ctx, addrA)
	require.NoError(err)
	require.Equal(uint64(100), a.Balance)
	_, err = v.Get(ctx, addrA)
	require.NoError(err)
	require.Equal(1, reader.calls[addrA])

	_, err = v.Get(ctx, addrB)
	require.ErrorIs(err, ErrAccountNotFound)
	_, err = v.Get(ctx, addrB)
	require.ErrorIs(err, ErrAccountNotFound)
	require.Equal(1, reader.calls[addrB])

	// writes stay in the overlay
	require.NoError(v.Set(ctx, addrA, &account.Account{Balance: 60}))
	require.NoError(v.Set(ctx, addrB, &account.Account{Balance: 40}))
	la, err := live.Get(ctx, addrA)
	require.NoError(err)
	require.Equal(uint64(100), la.Balance)

	b, err := v.Get(ctx, addrB)
	require.NoError(err)
	require.Equal(uint64(40), b.Balance)

	changes := v.Changed()
	require.Len(changes, 2)
	require.Equal(addrA, changes[0].Address)
	require.Equal(addrB, changes[1].Address)

	snap, err := v.Snapshot(ctx)
	require.NoError(err)
	total, err := Total(snap)
	require.NoError(err)
	require.Equal(uint64(100), total)

	v.Discard()
	require.Empty(v.Changed())
}

func TestVirtualFallbackErrorNotCached(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	errIO := errors.New("io")
	reader := &countingReader{store: NewMemory(), calls: map[codec.Address]int{}, err: errIO}
	v := NewVirtual(reader)

	_, err := v.Get(ctx, addrC)
	require.ErrorIs(err, errIO)
	reader.err = nil
	_, err = v.Get(ctx, addrC)
	require.ErrorIs(err, ErrAccountNotFound)
	require.Equal(2, reader.calls[addrC])
}

func TestVirtualSeed(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	reader := &countingReader{store: NewMemory(), calls: map[codec.Address]int{}}
	v := NewVirtual(reader)
	v.Seed(addrA, &account.Account{Balance: 5})
	v.Seed(addrB, nil)

	a, err := v.Get(ctx, addrA)
	require.NoError(err)
	require.Equal(uint64(5), a.Balance)
	_, err = v.Get(ctx, addrB)
	require.ErrorIs(err, ErrAccountNotFound)
	require.Empty(reader.calls)
	require.Empty(v.Changed())
}

func TestLiveStore(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	db := memdb.New()
	live, err := NewLive(db, 2)
	require.NoError(err)

	_, err = live.Get(ctx, addrA)
	require.ErrorIs(err, ErrAccountNotFound)

	require.NoError(live.Commit(ctx, []Change{
		{Address: addrA, Account: &account.Account{Balance: 1}},
		{Address: addrB, Account: &account.Account{Balance: 2}},
		{Address: addrC, Account: &account.Account{Balance: 3, Data: []byte{1}}},
	}))

	// reopen over the same database to bypass the cache
	reopened, err := NewLive(db, 2)
	require.NoError(err)
	c, err := reopened.Get(ctx, addrC)
	require.NoError(err)
	require.Equal(uint64(3), c.Balance)
	require.Equal([]byte{1}, c.Data)

	snap, err := reopened.Snapshot(ctx)
	require.NoError(err)
	require.Len(snap, 3)
	total, err := Total(snap)
	require.NoError(err)
	require.Equal(uint64(6), total)

	require.NoError(live.Set(ctx, addrA, &account.Account{Balance: 10}))
	a, err := reopened.Get(ctx, addrA)
	require.NoError(err)
	require.Equal(uint64(10), a.Balance)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
	"github.com/ava-labs/paytube/programs"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

type recordingAllocator struct {
	accts map[codec.Address]*account.Account
}

func (r *recordingAllocator) Allocate(_ context.Context, accts map[codec.Address]*account.Account) error {
	r.accts = accts
	return nil
}

func TestParseDefaults(t *testing.T) {
	require := require.New(t)

	alice := codec.Address{1}
	b, err := json.Marshal(map[string]any{
		"customAllocation": []map[string]any{
			{"address": codec.MustAddressBech32(alice), "balance": 10_000_000},
		},
	})
	require.NoError(err)

	g, err := Parse(b)
	require.NoError(err)
	require.Equal(chain.DefaultRules(), g.Rules)
	require.Len(g.CustomAllocation, 1)
	require.Equal(alice, g.CustomAllocation[0].Address)
	require.Equal(uint64(10_000_000), g.CustomAllocation[0].Balance)
}

func TestAccounts(t *testing.T) {
	require := require.New(t)

	alice, bob, mint := codec.Address{1}, codec.Address{2}, codec.Address{3}
	g := NewDefaultGenesis([]*CustomAllocation{
		{Address: alice, Balance: 100},
		{Address: bob, Balance: 50},
	})
	g.Mints = []*MintAllocation{{
		Address:   mint,
		Authority: alice,
		Decimals:  6,
		Holders: []*TokenAllocation{
			{Owner: alice, Amount: 700},
			{Owner: bob, Amount: 300},
		},
	}}

	rec := &recordingAllocator{}
	require.NoError(g.InitializeState(context.Background(), trace.Noop, rec))
	require.Len(rec.accts, 5)
	require.Equal(uint64(100), rec.accts[alice].Balance)

	m, err := programs.ReadMint(rec.accts[mint])
	require.NoError(err)
	require.Equal(uint64(1_000), m.Supply)
	require.Equal(alice, m.MintAuthority)

	ta, err := programs.ReadTokenAccount(rec.accts[programs.AssociatedTokenAddress(bob, mint)])
	require.NoError(err)
	require.Equal(uint64(300), ta.Amount)
	require.Equal(bob, ta.Owner)
}

func TestAccountsErrors(t *testing.T) {
	alice := codec.Address{1}
	tests := []struct {
		name string
		g    *Genesis
		err  error
	}{
		{
			name: "duplicate",
			g: NewDefaultGenesis([]*CustomAllocation{
				{Address: alice, Balance: 1},
				{Address: alice, Balance: 2},
			}),
			err: ErrDuplicateAllocation,
		},
		{
			name: "overflow",
			g: NewDefaultGenesis([]*CustomAllocation{
				{Address: alice, Balance: consts.MaxUint64},
				{Address: codec.Address{2}, Balance: 1},
			}),
			err: safemath.ErrOverflow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.g.Accounts()
			require.ErrorIs(t, err, tt.err)
		})
	}
}

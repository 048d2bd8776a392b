// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/channel"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/crypto/ed25519"
	"github.com/ava-labs/paytube/ledger"
	"github.com/ava-labs/paytube/lockmap"
	"github.com/ava-labs/paytube/programs"
)

var (
	testChainID = ids.ID{0xa}

	aliceKey = ed25519.DeterministicPrivateKey("alice")
	bobKey   = ed25519.DeterministicPrivateKey("bob")
	alice    = auth.NewED25519Factory(aliceKey)
	bob      = auth.NewED25519Factory(bobKey)
)

func newTestClient(t *testing.T) (*JSONRPCClient, *ledger.Local) {
	require := require.New(t)

	clk := &mockable.Clock{}
	clk.Set(time.UnixMilli(1_700_000_000_000))
	metrics, err := channel.NewMetrics(prometheus.NewRegistry())
	require.NoError(err)

	l, err := ledger.NewLocal(logging.NoLog{}, trace.Noop, metrics.Processor(), memdb.New(), ledger.Config{
		ChainID:   testChainID,
		Rules:     chain.DefaultRules(),
		CacheSize: 16,
	}, clk)
	require.NoError(err)
	require.NoError(l.Allocate(context.Background(), map[codec.Address]*account.Account{
		alice.Address(): account.New(1_000, 0, programs.SystemProgramID),
		bob.Address():   account.New(1_000, 0, programs.SystemProgramID),
	}))

	m := channel.NewManager(&channel.Backend{
		Log:     logging.NoLog{},
		Tracer:  trace.Noop,
		Metrics: metrics,
		Clock:   clk,
		Ledger:  l,
		Locks:   lockmap.New(8),
	}, chain.DefaultRules(), channel.DefaultSettlementTTL)

	h, err := NewHandler(logging.NoLog{}, m)
	require.NoError(err)
	require.Equal(Endpoint, h.Path)
	srv := httptest.NewServer(h.Handler)
	t.Cleanup(srv.Close)
	return NewJSONRPCClient(srv.URL), l
}

func TestClientNetwork(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	cli, _ := newTestClient(t)
	ok, err := cli.Ping(ctx)
	require.NoError(err)
	require.True(ok)

	chainID, rules, err := cli.Network(ctx)
	require.NoError(err)
	require.Equal(testChainID, chainID)
	require.Equal(chain.DefaultRules(), rules)
}

func TestClientChannelLifecycle(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	cli, l := newTestClient(t)

	opened, err := cli.OpenChannel(ctx, []ed25519.PrivateKey{aliceKey, bobKey}, nil)
	require.NoError(err)
	require.Len(opened.Locked, 2)
	require.Equal(uint64(1_000), opened.Opening[alice.Address()].Balance)

	channels, err := cli.Channels(ctx)
	require.NoError(err)
	require.Equal([]ids.ID{opened.Channel}, channels)

	reply, err := cli.Transfer(ctx, opened.Channel, &channel.TransferRequest{
		From:   alice.Address(),
		To:     bob.Address(),
		Amount: 300,
	})
	require.NoError(err)
	require.True(reply.Success)
	require.Empty(reply.Error)
	require.NotZero(reply.ComputeUnits)

	// Overdraft executes and fails without affecting the channel.
	reply, err = cli.Transfer(ctx, opened.Channel, &channel.TransferRequest{
		From:   bob.Address(),
		To:     alice.Address(),
		Amount: 5_000,
	})
	require.NoError(err)
	require.False(reply.Success)
	require.NotEmpty(reply.Error)
	require.Zero(reply.FailedInstruction)

	a, err := cli.Account(ctx, bob.Address(), &opened.Channel)
	require.NoError(err)
	require.Equal(uint64(1_300), a.Balance)
	a, err = cli.Account(ctx, bob.Address(), nil)
	require.NoError(err)
	require.Equal(uint64(1_000), a.Balance)

	status, err := cli.ChannelStatus(ctx, opened.Channel)
	require.NoError(err)
	require.Equal(channel.StateOpen, status.State)
	require.Len(status.Transactions, 2)
	require.Equal(uint64(700), status.Balances[alice.Address()].Balance)

	closed, err := cli.CloseChannel(ctx, opened.Channel)
	require.NoError(err)
	require.Len(closed.Transfers, 1)
	require.Equal(uint64(300), closed.Transfers[0].Amount)
	require.NotNil(closed.Confirmation)
	require.Equal(closed.TxID, closed.Confirmation.TxID)

	onLedger, err := l.ReadAccount(ctx, bob.Address())
	require.NoError(err)
	require.Equal(uint64(1_300), onLedger.Balance)

	status, err = cli.ChannelStatus(ctx, opened.Channel)
	require.NoError(err)
	require.Equal(channel.StateClosed, status.State)
	require.Nil(status.Balances)

	_, err = cli.Transfer(ctx, opened.Channel, &channel.TransferRequest{
		From:   alice.Address(),
		To:     bob.Address(),
		Amount: 1,
	})
	require.ErrorContains(err, channel.ErrChannelNotOpen.Error())
}

func TestClientSubmitTx(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	cli, _ := newTestClient(t)
	opened, err := cli.OpenChannel(ctx, []ed25519.PrivateKey{aliceKey, bobKey}, nil)
	require.NoError(err)

	tx, err := chain.NewTx(
		&chain.Base{Timestamp: time.UnixMilli(1_700_000_000_000).UnixMilli() + 1_000, ChainID: opened.Channel},
		[]*chain.Instruction{programs.NewTransferInstruction(alice.Address(), bob.Address(), 10)},
	).Sign(alice)
	require.NoError(err)

	reply, err := cli.SubmitTx(ctx, opened.Channel, tx)
	require.NoError(err)
	require.True(reply.Success)
	require.Equal(tx.ID(), reply.TxID)
}

func TestClientErrors(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	cli, _ := newTestClient(t)

	_, err := cli.OpenChannel(ctx, nil, nil)
	require.ErrorContains(err, ErrNoSigners.Error())

	_, err = cli.ChannelStatus(ctx, ids.GenerateTestID())
	require.ErrorContains(err, channel.ErrChannelNotFound.Error())

	_, err = cli.Account(ctx, codec.Address{0x9}, nil)
	require.Error(err)
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/ava-labs/paytube/api"
	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/channel"
	"github.com/ava-labs/paytube/config"
	"github.com/ava-labs/paytube/crypto/ed25519"
	"github.com/ava-labs/paytube/genesis"
)

func TestNodeRun(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	var b bytes.Buffer
	require.NoError(writeGenesis(&b, []string{"alice", "bob"}, 1_000))
	g, err := genesis.Parse(b.Bytes())
	require.NoError(err)
	require.Len(g.CustomAllocation, 2)
	genesisPath := filepath.Join(dir, "genesis.json")
	require.NoError(os.WriteFile(genesisPath, b.Bytes(), 0o600))

	cfg, err := config.New([]byte(fmt.Sprintf(`{"httpPort":0,"genesisFile":%q}`, genesisPath)))
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	n, err := newNode(ctx, cfg, logging.NoLog{})
	require.NoError(err)
	done := make(chan error, 1)
	go func() { done <- n.run(ctx) }()

	aliceKey := ed25519.DeterministicPrivateKey("alice")
	bobKey := ed25519.DeterministicPrivateKey("bob")
	alice := auth.NewED25519Factory(aliceKey).Address()
	bob := auth.NewED25519Factory(bobKey).Address()

	cli := api.NewJSONRPCClient("http://" + n.server.Addr().String())
	opened, err := cli.OpenChannel(ctx, []ed25519.PrivateKey{aliceKey, bobKey}, nil)
	require.NoError(err)
	reply, err := cli.Transfer(ctx, opened.Channel, &channel.TransferRequest{From: alice, To: bob, Amount: 250})
	require.NoError(err)
	require.True(reply.Success)

	// Shutdown settles the open channel.
	cancel()
	require.NoError(<-done)
	a, err := n.ledger.ReadAccount(context.Background(), bob)
	require.NoError(err)
	require.Equal(uint64(1_250), a.Balance)
	ch, err := n.manager.Get(opened.Channel)
	require.NoError(err)
	require.Equal(channel.StateClosed, ch.State())
}

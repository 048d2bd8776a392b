// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/crypto/ed25519"
	"github.com/ava-labs/paytube/genesis"
)

func newGenesisCommand() *cobra.Command {
	var (
		labels  []string
		balance uint64
	)
	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Prints a genesis funding deterministic development keys",
		RunE: func(*cobra.Command, []string) error {
			return writeGenesis(os.Stdout, labels, balance)
		},
	}
	cmd.Flags().StringSliceVar(&labels, "key", []string{"alice", "bob", "will"}, "labels of development keys to fund")
	cmd.Flags().Uint64Var(&balance, "balance", 10_000_000, "balance of each funded key")
	return cmd
}

func writeGenesis(w io.Writer, labels []string, balance uint64) error {
	allocs := make([]*genesis.CustomAllocation, len(labels))
	for i, label := range labels {
		priv := ed25519.DeterministicPrivateKey(label)
		allocs[i] = &genesis.CustomAllocation{
			Address: auth.NewED25519Factory(priv).Address(),
			Balance: balance,
		}
		fmt.Fprintf(os.Stderr, "%s: %s %s\n", label, allocs[i].Address, priv.Hex())
	}
	b, err := json.MarshalIndent(genesis.NewDefaultGenesis(allocs), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

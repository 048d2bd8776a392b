// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/trace"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/programs"

	safemath "github.com/ava-labs/avalanchego/utils/math"
)

var ErrDuplicateAllocation = errors.New("duplicate allocation")

type CustomAllocation struct {
	Address codec.Address `json:"address"`
	Balance uint64        `json:"balance"`
}

type TokenAllocation struct {
	Owner  codec.Address `json:"owner"`
	Amount uint64        `json:"amount"`
}

// MintAllocation creates a token mint and an associated token account for
// every holder.
type MintAllocation struct {
	Address   codec.Address      `json:"address"`
	Authority codec.Address      `json:"authority"`
	Decimals  uint8              `json:"decimals"`
	Holders   []*TokenAllocation `json:"holders"`
}

type Genesis struct {
	CustomAllocation []*CustomAllocation `json:"customAllocation"`
	Mints            []*MintAllocation   `json:"mints"`
	Rules            chain.Rules         `json:"initialRules"`
}

func NewDefaultGenesis(customAllocations []*CustomAllocation) *Genesis {
	return &Genesis{
		CustomAllocation: customAllocations,
		Rules:            chain.DefaultRules(),
	}
}

// Parse decodes a genesis over the default rules.
func Parse(b []byte) (*Genesis, error) {
	g := NewDefaultGenesis(nil)
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	return g, nil
}

func Load(path string) (*Genesis, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// Accounts returns every account the genesis allocates.
func (g *Genesis) Accounts() (map[codec.Address]*account.Account, error) {
	accts := map[codec.Address]*account.Account{}
	add := func(addr codec.Address, a *account.Account) error {
		if _, ok := accts[addr]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateAllocation, addr)
		}
		accts[addr] = a
		return nil
	}

	supply := uint64(0)
	for _, alloc := range g.CustomAllocation {
		var err error
		supply, err = safemath.Add64(supply, alloc.Balance)
		if err != nil {
			return nil, err
		}
		if err := add(alloc.Address, account.New(alloc.Balance, 0, programs.SystemProgramID)); err != nil {
			return nil, err
		}
	}
	for _, mint := range g.Mints {
		tokenSupply := uint64(0)
		for _, holder := range mint.Holders {
			var err error
			tokenSupply, err = safemath.Add64(tokenSupply, holder.Amount)
			if err != nil {
				return nil, fmt.Errorf("%w: mint=%s", err, mint.Address)
			}
			ata := programs.AssociatedTokenAddress(holder.Owner, mint.Address)
			if err := add(ata, programs.NewTokenAccount(mint.Address, holder.Owner, holder.Amount, 0)); err != nil {
				return nil, err
			}
		}
		if err := add(mint.Address, programs.NewMintAccount(mint.Authority, tokenSupply, mint.Decimals, 0)); err != nil {
			return nil, err
		}
	}
	return accts, nil
}

// Allocator is a ledger that can be seeded directly.
type Allocator interface {
	Allocate(ctx context.Context, accts map[codec.Address]*account.Account) error
}

func (g *Genesis) InitializeState(ctx context.Context, tracer trace.Tracer, ledger Allocator) error {
	ctx, span := tracer.Start(ctx, "Genesis.InitializeState")
	defer span.End()

	accts, err := g.Accounts()
	if err != nil {
		return err
	}
	return ledger.Allocate(ctx, accts)
}

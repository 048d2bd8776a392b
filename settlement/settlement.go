// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package settlement

import (
	"fmt"
	"slices"

	"github.com/ava-labs/avalanchego/ids"
	"golang.org/x/exp/maps"

	smath "github.com/ava-labs/avalanchego/utils/math"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/programs"
)

// NetTransfer moves Amount from From to To. A nil Mint denotes the native
// balance. For tokens, From and To are token accounts and Authority is
// the owner of From.
type NetTransfer struct {
	Mint      *codec.Address `json:"mint,omitempty"`
	From      codec.Address  `json:"from"`
	To        codec.Address  `json:"to"`
	Authority codec.Address  `json:"authority"`
	Amount    uint64         `json:"amount"`
}

func (n *NetTransfer) Instruction() *chain.Instruction {
	if n.Mint == nil {
		return programs.NewTransferInstruction(n.From, n.To, n.Amount)
	}
	return programs.NewTokenTransferInstruction(n.From, n.To, n.Authority, n.Amount)
}

// ledger tracks the signed movement of one asset.
type ledger struct {
	mint      *codec.Address
	credits   map[codec.Address]uint64
	debits    map[codec.Address]uint64
	authority map[codec.Address]codec.Address
}

func newLedger(mint *codec.Address) *ledger {
	return &ledger{
		mint:      mint,
		credits:   map[codec.Address]uint64{},
		debits:    map[codec.Address]uint64{},
		authority: map[codec.Address]codec.Address{},
	}
}

func (l *ledger) record(addr codec.Address, before, after uint64) {
	switch {
	case after > before:
		l.credits[addr] = after - before
	case before > after:
		l.debits[addr] = before - after
	}
}

// pair matches debtors to creditors in address order until both sides are
// exhausted.
func (l *ledger) pair() ([]*NetTransfer, error) {
	var credited, debited uint64
	for _, v := range l.credits {
		var err error
		credited, err = smath.Add(credited, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnbalancedSettlement, err)
		}
	}
	for _, v := range l.debits {
		var err error
		debited, err = smath.Add(debited, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnbalancedSettlement, err)
		}
	}
	if credited != debited {
		return nil, fmt.Errorf("%w: %s credited %d, debited %d", ErrUnbalancedSettlement, l.asset(), credited, debited)
	}

	debtors := maps.Keys(l.debits)
	slices.SortFunc(debtors, codec.Address.Compare)
	creditors := maps.Keys(l.credits)
	slices.SortFunc(creditors, codec.Address.Compare)

	transfers := []*NetTransfer{}
	for i, j := 0, 0; i < len(debtors) && j < len(creditors); {
		from, to := debtors[i], creditors[j]
		amount := min(l.debits[from], l.credits[to])
		transfers = append(transfers, &NetTransfer{
			Mint:      l.mint,
			From:      from,
			To:        to,
			Authority: l.authority[from],
			Amount:    amount,
		})
		l.debits[from] -= amount
		l.credits[to] -= amount
		if l.debits[from] == 0 {
			i++
		}
		if l.credits[to] == 0 {
			j++
		}
	}
	return transfers, nil
}

func (l *ledger) asset() string {
	if l.mint == nil {
		return "native"
	}
	return l.mint.String()
}

// Diff computes the transfers that move every account from its [opening]
// state to its [closing] state. An address missing from either side is
// treated as empty. Native balances and each token mint are settled
// separately, and each must conserve value or ErrUnbalancedSettlement is
// returned. The result is deterministic: native transfers come first,
// then mints in address order.
func Diff(opening, closing map[codec.Address]*account.Account) ([]*NetTransfer, error) {
	addrs := maps.Keys(opening)
	for addr := range closing {
		if _, ok := opening[addr]; !ok {
			addrs = append(addrs, addr)
		}
	}

	nativeLedger := newLedger(nil)
	tokens := map[codec.Address]*ledger{}
	for _, addr := range addrs {
		pre, post := opening[addr], closing[addr]
		nativeLedger.record(addr, balance(pre), balance(post))
		nativeLedger.authority[addr] = addr

		preToken, _ := programs.ReadTokenAccount(pre)
		postToken, _ := programs.ReadTokenAccount(post)
		if preToken == nil && postToken == nil {
			continue
		}
		ref := postToken
		if ref == nil {
			ref = preToken
		}
		if preToken != nil && postToken != nil && preToken.Mint != postToken.Mint {
			return nil, fmt.Errorf("%w: %s changed mint", ErrUnbalancedSettlement, addr)
		}
		l, ok := tokens[ref.Mint]
		if !ok {
			mint := ref.Mint
			l = newLedger(&mint)
			tokens[ref.Mint] = l
		}
		l.record(addr, amount(preToken), amount(postToken))
		l.authority[addr] = ref.Owner
	}

	transfers, err := nativeLedger.pair()
	if err != nil {
		return nil, err
	}
	mints := maps.Keys(tokens)
	slices.SortFunc(mints, codec.Address.Compare)
	for _, mint := range mints {
		t, err := tokens[mint].pair()
		if err != nil {
			return nil, err
		}
		transfers = append(transfers, t...)
	}
	return transfers, nil
}

func balance(a *account.Account) uint64 {
	if a == nil {
		return 0
	}
	return a.Balance
}

func amount(t *programs.TokenAccount) uint64 {
	if t == nil {
		return 0
	}
	return t.Amount
}

// Build packs [transfers] into a single unsigned transaction with one
// instruction per transfer.
func Build(transfers []*NetTransfer, chainID ids.ID, expiry int64) (*chain.Transaction, error) {
	if len(transfers) == 0 {
		return nil, ErrNoTransfers
	}
	ixs := make([]*chain.Instruction, len(transfers))
	for i, t := range transfers {
		ixs[i] = t.Instruction()
	}
	return chain.NewTx(&chain.Base{Timestamp: expiry, ChainID: chainID}, ixs), nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
)

var ErrTransactionFailed = errors.New("transaction failed")

// Confirmation is returned once a transaction has been committed to the
// ledger.
type Confirmation struct {
	TxID         ids.ID   `json:"txId"`
	Timestamp    int64    `json:"timestamp"`
	Logs         []string `json:"logs"`
	ComputeUnits uint64   `json:"computeUnits"`
}

// Ledger is the canonical account ledger that channels open against and
// settle into. Implementations surface failures verbatim and never retry.
type Ledger interface {
	ChainID() ids.ID

	// ReadAccount returns state.ErrAccountNotFound if [addr] does not exist.
	ReadAccount(ctx context.Context, addr codec.Address) (*account.Account, error)

	SubmitTransaction(ctx context.Context, tx *chain.Transaction) (*Confirmation, error)
}

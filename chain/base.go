// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
)

const BaseSize = consts.Uint64Len + consts.IDLen + consts.Uint64Len

// Base is the recent-validity marker of a transaction.
type Base struct {
	// Timestamp is the expiry of the transaction (inclusive, in ms). Once
	// this time passes the transaction can no longer execute and it is safe
	// to regenerate it.
	Timestamp int64 `json:"timestamp"`

	// ChainID binds the transaction to one ledger. Channels use their own
	// ID here so off-chain transfers cannot be replayed on the live ledger.
	ChainID ids.ID `json:"chainId"`

	// Nonce distinguishes otherwise identical transactions that share an
	// expiry. It carries no ordering meaning.
	Nonce uint64 `json:"nonce"`
}

// Execute checks the marker against the ledger's [chainID] and the current
// time [timestamp].
func (b *Base) Execute(chainID ids.ID, r Rules, timestamp int64) error {
	switch {
	case b.ChainID != chainID:
		return fmt.Errorf("%w: expected %s, found %s", ErrInvalidChainID, chainID, b.ChainID)
	case b.Timestamp < timestamp:
		return fmt.Errorf("%w: expiry=%d now=%d", ErrTransactionExpired, b.Timestamp, timestamp)
	case b.Timestamp > timestamp+r.ValidityWindow:
		return fmt.Errorf("%w: expiry=%d now=%d", ErrTransactionTooEarly, b.Timestamp, timestamp)
	default:
		return nil
	}
}

func (*Base) Size() int {
	return BaseSize
}

func (b *Base) Marshal(p *codec.Packer) {
	p.PackInt64(b.Timestamp)
	p.PackID(b.ChainID)
	p.PackUint64(b.Nonce)
}

func UnmarshalBase(p *codec.Packer) (*Base, error) {
	var base Base
	base.Timestamp = p.UnpackInt64(true)
	p.UnpackID(true, &base.ChainID)
	base.Nonce = p.UnpackUint64(false)
	return &base, p.Err()
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package auth

import (
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/crypto"
	"github.com/ava-labs/paytube/crypto/ed25519"
)

var _ Signer = (*ED25519Factory)(nil)

// Signer produces signatures on behalf of a single account. Key custody is
// left to the implementation: wallets, HSMs and remote signers all fit.
type Signer interface {
	Address() codec.Address
	Sign(msg []byte) (ed25519.Signature, error)
}

// NewED25519Address returns the account address controlled by pk.
func NewED25519Address(pk ed25519.PublicKey) codec.Address {
	return codec.Address(pk)
}

// VerifyED25519 checks that sig is a signature of msg by the key behind addr.
func VerifyED25519(msg []byte, addr codec.Address, sig ed25519.Signature) error {
	if !ed25519.Verify(msg, ed25519.PublicKey(addr), sig) {
		return crypto.ErrInvalidSignature
	}
	return nil
}

// ED25519Factory signs with an in-process private key.
type ED25519Factory struct {
	priv ed25519.PrivateKey
}

func NewED25519Factory(priv ed25519.PrivateKey) *ED25519Factory {
	return &ED25519Factory{priv}
}

func (d *ED25519Factory) Address() codec.Address {
	return NewED25519Address(d.priv.PublicKey())
}

func (d *ED25519Factory) Sign(msg []byte) (ed25519.Signature, error) {
	return ed25519.Sign(msg, d.priv), nil
}

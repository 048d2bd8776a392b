// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ed25519

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/hdevalence/ed25519consensus"

	"github.com/ava-labs/paytube/crypto"
)

type (
	PublicKey  [ed25519.PublicKeySize]byte
	PrivateKey [ed25519.PrivateKeySize]byte
	Signature  [ed25519.SignatureSize]byte
)

// Signatures are checked with ZIP-215 rules (https://zips.z.cash/zip-0215)
// so that single and batch verification always agree on validity.
const (
	PublicKeyLen      = ed25519.PublicKeySize
	PrivateKeyLen     = ed25519.PrivateKeySize
	PrivateKeySeedLen = ed25519.SeedSize
	SignatureLen      = ed25519.SignatureSize

	// MinBatchSize is the smallest number of signatures worth handing to
	// the batch verifier.
	MinBatchSize = 4
)

var (
	EmptyPublicKey  = [ed25519.PublicKeySize]byte{}
	EmptyPrivateKey = [ed25519.PrivateKeySize]byte{}
	EmptySignature  = [ed25519.SignatureSize]byte{}
)

// GeneratePrivateKey returns a random Ed25519 PrivateKey.
func GeneratePrivateKey() (PrivateKey, error) {
	_, k, err := ed25519.GenerateKey(nil)
	if err != nil {
		return EmptyPrivateKey, err
	}
	return PrivateKey(k), nil
}

// PrivateKeyFromSeed expands a 32 byte seed into a PrivateKey.
func PrivateKeyFromSeed(seed []byte) (PrivateKey, error) {
	if len(seed) != PrivateKeySeedLen {
		return EmptyPrivateKey, fmt.Errorf("%w: seed must be %d bytes", crypto.ErrInvalidPrivateKey, PrivateKeySeedLen)
	}
	return PrivateKey(ed25519.NewKeyFromSeed(seed)), nil
}

// DeterministicPrivateKey derives a key from an arbitrary label. It is only
// meant for local genesis files and tests.
func DeterministicPrivateKey(label string) PrivateKey {
	seed := hashing.ComputeHash256Array([]byte(label))
	return PrivateKey(ed25519.NewKeyFromSeed(seed[:]))
}

// HexToPrivateKey parses a hex-encoded PrivateKey.
func HexToPrivateKey(s string) (PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return EmptyPrivateKey, err
	}
	if len(b) != PrivateKeyLen {
		return EmptyPrivateKey, crypto.ErrInvalidPrivateKey
	}
	return PrivateKey(b), nil
}

// PublicKey returns the PublicKey associated with p. It is the last 32
// bytes of p.
func (p PrivateKey) PublicKey() PublicKey {
	return PublicKey(p[PrivateKeySeedLen:])
}

func (p PrivateKey) Hex() string {
	return hex.EncodeToString(p[:])
}

// Sign returns a valid signature for msg using pk.
func Sign(msg []byte, pk PrivateKey) Signature {
	return Signature(ed25519.Sign(pk[:], msg))
}

// Verify returns whether s is a valid signature of msg by p.
func Verify(msg []byte, p PublicKey, s Signature) bool {
	return ed25519consensus.Verify(p[:], msg, s[:])
}

type Batch struct {
	bv ed25519consensus.BatchVerifier
}

func NewBatch(size int) *Batch {
	return &Batch{bv: ed25519consensus.NewPreallocatedBatchVerifier(size)}
}

func (b *Batch) Add(msg []byte, p PublicKey, s Signature) {
	b.bv.Add(p[:], msg, s[:])
}

func (b *Batch) Verify() error {
	if !b.bv.Verify() {
		return crypto.ErrInvalidSignature
	}
	return nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"

	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
	"github.com/ava-labs/paytube/crypto/ed25519"
	"github.com/ava-labs/paytube/emap"
)

var _ emap.Item = (*Transaction)(nil)

const (
	SignatureSize = codec.AddressLen + ed25519.SignatureLen

	// MaxTxAccounts and MaxTxInstructions bound decoding before any rules
	// are applied.
	MaxTxAccounts     = 256
	MaxTxInstructions = 256
)

// Signature is a signature over the transaction digest by the key behind
// Signer.
type Signature struct {
	Signer codec.Address     `json:"signer"`
	Value  ed25519.Signature `json:"value"`
}

type Transaction struct {
	Base *Base `json:"base"`

	// Accounts is the declared account list. Every account referenced by an
	// instruction must appear here with at least the same privileges.
	Accounts     []*AccountMeta `json:"accounts"`
	Instructions []*Instruction `json:"instructions"`
	Signatures   []*Signature   `json:"signatures"`

	digest []byte
	bytes  []byte
	size   int
	id     ids.ID
}

// NewTx builds an unsigned transaction whose declared account list is the
// union of every instruction's references, in first-seen order. Flags are
// merged so an account that is writable or a signer anywhere is declared
// as such.
func NewTx(base *Base, instructions []*Instruction) *Transaction {
	var (
		accounts []*AccountMeta
		index    = map[codec.Address]int{}
	)
	for _, ix := range instructions {
		for _, m := range ix.Accounts {
			i, ok := index[m.Address]
			if !ok {
				index[m.Address] = len(accounts)
				accounts = append(accounts, &AccountMeta{Address: m.Address, IsSigner: m.IsSigner, IsWritable: m.IsWritable})
				continue
			}
			accounts[i].IsSigner = accounts[i].IsSigner || m.IsSigner
			accounts[i].IsWritable = accounts[i].IsWritable || m.IsWritable
		}
	}
	return &Transaction{
		Base:         base,
		Accounts:     accounts,
		Instructions: instructions,
	}
}

func (t *Transaction) digestSize() int {
	size := t.Base.Size() + consts.IntLen + len(t.Accounts)*AccountMetaSize + consts.IntLen
	for _, ix := range t.Instructions {
		size += ix.Size()
	}
	return size
}

func (t *Transaction) marshalDigest(p *codec.Packer) {
	t.Base.Marshal(p)
	p.PackInt(len(t.Accounts))
	for _, m := range t.Accounts {
		m.Marshal(p)
	}
	p.PackInt(len(t.Instructions))
	for _, ix := range t.Instructions {
		ix.Marshal(p)
	}
}

// Digest is the message every signer signs. It covers everything except
// the signatures.
func (t *Transaction) Digest() ([]byte, error) {
	if len(t.digest) > 0 {
		return t.digest, nil
	}
	p := codec.NewWriter(t.digestSize(), consts.NetworkSizeLimit)
	t.marshalDigest(p)
	return p.Bytes(), p.Err()
}

// Signers returns the declared signer accounts in declaration order.
func (t *Transaction) Signers() []codec.Address {
	signers := []codec.Address{}
	for _, m := range t.Accounts {
		if m.IsSigner {
			signers = append(signers, m.Address)
		}
	}
	return signers
}

// Sign signs the digest with every factory and returns the reloaded
// transaction. Factories are matched to declared signers by address and
// must cover all of them.
func (t *Transaction) Sign(factories ...auth.Signer) (*Transaction, error) {
	msg, err := t.Digest()
	if err != nil {
		return nil, err
	}
	byAddr := make(map[codec.Address]auth.Signer, len(factories))
	for _, f := range factories {
		byAddr[f.Address()] = f
	}
	signers := t.Signers()
	t.Signatures = make([]*Signature, 0, len(signers))
	for _, signer := range signers {
		f, ok := byAddr[signer]
		if !ok {
			return nil, fmt.Errorf("%w: no signer for %s", ErrMissingSignature, signer)
		}
		sig, err := f.Sign(msg)
		if err != nil {
			return nil, err
		}
		t.Signatures = append(t.Signatures, &Signature{Signer: signer, Value: sig})
	}

	// Ensure transaction is fully initialized and correct by reloading it from
	// bytes
	p := codec.NewWriter(len(msg)+consts.IntLen+len(t.Signatures)*SignatureSize, consts.NetworkSizeLimit)
	if err := t.Marshal(p); err != nil {
		return nil, err
	}
	p = codec.NewReader(p.Bytes(), consts.NetworkSizeLimit)
	return UnmarshalTx(p)
}

func (t *Transaction) Bytes() []byte { return t.bytes }

func (t *Transaction) Size() int { return t.size }

func (t *Transaction) ID() ids.ID { return t.id }

func (t *Transaction) Expiry() int64 { return t.Base.Timestamp }

func (t *Transaction) Marshal(p *codec.Packer) error {
	if len(t.bytes) > 0 {
		p.PackFixedBytes(t.bytes)
		return p.Err()
	}
	t.marshalDigest(p)
	p.PackInt(len(t.Signatures))
	for _, sig := range t.Signatures {
		p.PackAddress(sig.Signer)
		p.PackFixedBytes(sig.Value[:])
	}
	return p.Err()
}

func UnmarshalTx(p *codec.Packer) (*Transaction, error) {
	start := p.Offset()
	base, err := UnmarshalBase(p)
	if err != nil {
		return nil, fmt.Errorf("%w: could not unmarshal base", err)
	}
	numAccounts := p.UnpackInt(false)
	if numAccounts > MaxTxAccounts {
		return nil, fmt.Errorf("%w: %d accounts", ErrTooManyAccounts, numAccounts)
	}
	accounts := make([]*AccountMeta, 0, numAccounts)
	for i := 0; i < numAccounts; i++ {
		accounts = append(accounts, UnmarshalAccountMeta(p))
	}
	numInstructions := p.UnpackInt(false)
	if numInstructions > MaxTxInstructions {
		return nil, fmt.Errorf("%w: %d instructions", ErrTooManyInstructions, numInstructions)
	}
	instructions := make([]*Instruction, 0, numInstructions)
	for i := 0; i < numInstructions; i++ {
		ix, err := UnmarshalInstruction(p, MaxTxAccounts)
		if err != nil {
			return nil, fmt.Errorf("%w: could not unmarshal instruction %d", err, i)
		}
		instructions = append(instructions, ix)
	}
	digest := p.Offset()
	numSignatures := p.UnpackInt(false)
	if numSignatures > MaxTxAccounts {
		return nil, fmt.Errorf("%w: %d signatures", ErrUnexpectedSignature, numSignatures)
	}
	signatures := make([]*Signature, 0, numSignatures)
	for i := 0; i < numSignatures; i++ {
		var sig Signature
		p.UnpackAddress(&sig.Signer)
		raw := make([]byte, ed25519.SignatureLen)
		p.UnpackFixedBytes(ed25519.SignatureLen, &raw)
		copy(sig.Value[:], raw)
		signatures = append(signatures, &sig)
	}
	if err := p.Err(); err != nil {
		return nil, err
	}

	tx := &Transaction{
		Base:         base,
		Accounts:     accounts,
		Instructions: instructions,
		Signatures:   signatures,
	}
	codecBytes := p.Bytes()
	tx.digest = codecBytes[start:digest]
	tx.bytes = codecBytes[start:p.Offset()]
	tx.size = len(tx.bytes)
	tx.id = ids.ID(hashing.ComputeHash256Array(tx.bytes))
	return tx, nil
}

// ParseTx decodes a single transaction and rejects trailing bytes.
func ParseTx(b []byte) (*Transaction, error) {
	p := codec.NewReader(b, consts.NetworkSizeLimit)
	tx, err := UnmarshalTx(p)
	if err != nil {
		return nil, err
	}
	if !p.Empty() {
		return nil, ErrInvalidObject
	}
	return tx, nil
}

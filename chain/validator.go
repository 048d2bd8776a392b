// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package chain

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"

	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/crypto/ed25519"
	"github.com/ava-labs/paytube/emap"
)

// Validator checks that a transaction is well formed, fully signed and
// fresh. It never looks at balances: whether a transaction can execute
// is only known once it runs.
type Validator struct {
	tracer  trace.Tracer
	chainID ids.ID
	rules   Rules
	clock   *mockable.Clock

	seen *emap.EMap[*Transaction]
}

func NewValidator(tracer trace.Tracer, chainID ids.ID, rules Rules, clock *mockable.Clock) *Validator {
	return &Validator{
		tracer:  tracer,
		chainID: chainID,
		rules:   rules,
		clock:   clock,
		seen:    emap.NewEMap[*Transaction](),
	}
}

func (v *Validator) ChainID() ids.ID { return v.chainID }

func (v *Validator) Rules() Rules { return v.rules }

// Validate runs, in order: structural checks, account reference coverage,
// signature checks and validity marker checks.
func (v *Validator) Validate(ctx context.Context, tx *Transaction) (*SanitizedTransaction, error) {
	_, span := v.tracer.Start(ctx, "Validator.Validate")
	defer span.End()

	if err := v.verifyStructure(tx); err != nil {
		return nil, err
	}
	if err := verifyReferences(tx); err != nil {
		return nil, err
	}
	if err := verifySignatures(tx); err != nil {
		return nil, err
	}
	now := v.clock.Time().UnixMilli()
	if err := tx.Base.Execute(v.chainID, v.rules, now); err != nil {
		return nil, err
	}

	// Drop IDs that can no longer be replayed before checking.
	v.seen.SetMin(now)
	if v.seen.Any([]*Transaction{tx}) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, tx.ID())
	}
	return newSanitizedTransaction(tx), nil
}

// MarkSeen records executed transactions so they are rejected as
// duplicates until they expire.
func (v *Validator) MarkSeen(txs ...*Transaction) {
	v.seen.Add(txs)
}

func (v *Validator) verifyStructure(tx *Transaction) error {
	switch {
	case len(tx.Instructions) == 0:
		return ErrNoInstructions
	case len(tx.Instructions) > v.rules.MaxInstructions:
		return fmt.Errorf("%w: %d > %d", ErrTooManyInstructions, len(tx.Instructions), v.rules.MaxInstructions)
	case len(tx.Accounts) > v.rules.MaxAccounts:
		return fmt.Errorf("%w: %d > %d", ErrTooManyAccounts, len(tx.Accounts), v.rules.MaxAccounts)
	}
	declared := set.NewSet[codec.Address](len(tx.Accounts))
	for _, m := range tx.Accounts {
		if declared.Contains(m.Address) {
			return fmt.Errorf("%w: %s", ErrDuplicateAccount, m.Address)
		}
		declared.Add(m.Address)
	}
	return nil
}

func verifyReferences(tx *Transaction) error {
	declared := make(map[codec.Address]*AccountMeta, len(tx.Accounts))
	for _, m := range tx.Accounts {
		declared[m.Address] = m
	}
	for i, ix := range tx.Instructions {
		for _, ref := range ix.Accounts {
			m, ok := declared[ref.Address]
			if !ok {
				return fmt.Errorf("%w: instruction %d references %s", ErrAccountNotFound, i, ref.Address)
			}
			if (ref.IsSigner && !m.IsSigner) || (ref.IsWritable && !m.IsWritable) {
				return fmt.Errorf("%w: instruction %d account %s", ErrPrivilegeEscalation, i, ref.Address)
			}
		}
	}
	return nil
}

func verifySignatures(tx *Transaction) error {
	required := set.Of(tx.Signers()...)
	provided := set.NewSet[codec.Address](len(tx.Signatures))
	for _, sig := range tx.Signatures {
		if provided.Contains(sig.Signer) {
			return fmt.Errorf("%w: %s", ErrDuplicateSignature, sig.Signer)
		}
		if !required.Contains(sig.Signer) {
			return fmt.Errorf("%w: %s", ErrUnexpectedSignature, sig.Signer)
		}
		provided.Add(sig.Signer)
	}
	for signer := range required {
		if !provided.Contains(signer) {
			return fmt.Errorf("%w: %s", ErrMissingSignature, signer)
		}
	}

	msg, err := tx.Digest()
	if err != nil {
		return err
	}
	if len(tx.Signatures) >= ed25519.MinBatchSize {
		batch := ed25519.NewBatch(len(tx.Signatures))
		for _, sig := range tx.Signatures {
			batch.Add(msg, ed25519.PublicKey(sig.Signer), sig.Value)
		}
		if err := batch.Verify(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
		}
		return nil
	}
	for _, sig := range tx.Signatures {
		if !ed25519.Verify(msg, ed25519.PublicKey(sig.Signer), sig.Value) {
			return fmt.Errorf("%w: %s", ErrInvalidSignature, sig.Signer)
		}
	}
	return nil
}

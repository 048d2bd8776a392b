// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	smath "github.com/ava-labs/avalanchego/utils/math"
	"go.uber.org/zap"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/programs"
	"github.com/ava-labs/paytube/state"
	"github.com/ava-labs/paytube/tstate"
)

// Processor executes ordered batches of validated transactions against an
// AccountStore. Each transaction is loaded, executed and committed before
// the next one is loaded, so later transactions observe the effects of
// earlier ones. Batches run through the same Processor never interleave.
type Processor struct {
	log      logging.Logger
	tracer   trace.Tracer
	metrics  *Metrics
	programs *programs.Registry
	rules    chain.Rules

	batchLock sync.Mutex
}

func New(
	log logging.Logger,
	tracer trace.Tracer,
	metrics *Metrics,
	registry *programs.Registry,
	rules chain.Rules,
) *Processor {
	return &Processor{
		log:      log,
		tracer:   tracer,
		metrics:  metrics,
		programs: registry,
		rules:    rules,
	}
}

func (p *Processor) Rules() chain.Rules { return p.rules }

// Execute runs [txs] in order against [store] and returns one Result per
// transaction. A failing transaction never aborts the batch. The returned
// error is reserved for a store that fails while committing, in which case
// the results of the transactions committed so far are returned with it.
func (p *Processor) Execute(
	ctx context.Context,
	store state.AccountStore,
	txs []*chain.SanitizedTransaction,
) ([]*Result, error) {
	ctx, span := p.tracer.Start(ctx, "Processor.Execute")
	defer span.End()

	p.batchLock.Lock()
	defer p.batchLock.Unlock()

	start := time.Now()
	defer func() {
		p.metrics.executeBatch.Observe(float64(time.Since(start)))
	}()

	results := make([]*Result, 0, len(txs))
	for _, stx := range txs {
		r, ts := p.executeTx(ctx, store, stx)
		p.metrics.txsProcessed.Inc()
		if !r.Success {
			p.metrics.txsFailed.Inc()
			p.log.Debug("transaction failed",
				zap.Stringer("txID", r.TxID),
				zap.Int("instruction", r.FailedInstruction),
				zap.Error(r.Err),
			)
			results = append(results, r)
			continue
		}
		if err := ts.Commit(ctx, store); err != nil {
			return results, fmt.Errorf("%w: unable to commit %s", err, r.TxID)
		}
		p.metrics.txsSucceeded.Inc()
		p.metrics.computeUnits.Add(float64(r.ComputeUnits))
		p.metrics.stateChanges.Add(float64(len(r.Changes)))
		p.log.Debug("transaction committed",
			zap.Stringer("txID", r.TxID),
			zap.Int("changes", len(r.Changes)),
			zap.Uint64("computeUnits", r.ComputeUnits),
		)
		results = append(results, r)
	}
	return results, nil
}

// executeTx runs a single transaction to completion without touching
// [store] beyond reads. On success the returned view holds the pending
// changes.
func (p *Processor) executeTx(
	ctx context.Context,
	store state.Reader,
	stx *chain.SanitizedTransaction,
) (*Result, *tstate.TState) {
	r := &Result{
		TxID:              stx.ID(),
		FailedInstruction: NoFailedInstruction,
		Logs:              []string{},
	}
	fail := func(instruction int, err error) (*Result, *tstate.TState) {
		r.Err = err
		r.FailedInstruction = instruction
		return r, nil
	}

	// Load phase
	keys := make(state.Keys)
	for i, ix := range stx.Instructions() {
		ixKeys, err := p.programs.StateKeys(ix)
		if err != nil {
			return fail(i, err)
		}
		for addr, perm := range ixKeys {
			keys.Add(addr, perm)
		}
	}
	storage := make(map[codec.Address]*account.Account, len(keys))
	for _, addr := range keys.Sorted() {
		a, err := store.Get(ctx, addr)
		switch {
		case errors.Is(err, state.ErrAccountNotFound):
			if !keys[addr].Has(state.Allocate) {
				return fail(NoFailedInstruction, fmt.Errorf("%w: %s", state.ErrAccountNotFound, addr))
			}
		case err != nil:
			return fail(NoFailedInstruction, err)
		default:
			storage[addr] = a
		}
	}

	// Execute phase
	ts := tstate.New(keys, storage)
	for i, ix := range stx.Instructions() {
		units, err := p.executeInstruction(ctx, ts, ix, r)
		r.ComputeUnits += units
		if err == nil && r.ComputeUnits > p.rules.MaxComputeUnits {
			err = fmt.Errorf("%w: %d > %d", ErrComputeBudgetExceeded, r.ComputeUnits, p.rules.MaxComputeUnits)
		}
		if err != nil {
			ts.Rollback(ctx, 0)
			r.Logs = append(r.Logs, fmt.Sprintf("Program %s failed: %v", ix.ProgramID, err))
			return fail(i, err)
		}
	}

	changes := ts.Changes()
	if err := p.verifyTransaction(storage, changes); err != nil {
		ts.Rollback(ctx, 0)
		return fail(NoFailedInstruction, err)
	}
	r.Success = true
	r.Changes = changes
	return r, ts
}

func (p *Processor) executeInstruction(
	ctx context.Context,
	ts *tstate.TState,
	ix *chain.Instruction,
	r *Result,
) (uint64, error) {
	r.Logs = append(r.Logs, fmt.Sprintf("Program %s invoke", ix.ProgramID))

	inputs := make([]*programs.InstructionAccount, len(ix.Accounts))
	pre := make(map[codec.Address]*account.Account, len(ix.Accounts))
	writable := make(map[codec.Address]bool, len(ix.Accounts))
	for i, m := range ix.Accounts {
		a, err := ts.GetAccount(ctx, m.Address)
		if err != nil && !errors.Is(err, state.ErrAccountNotFound) {
			return 0, err
		}
		inputs[i] = &programs.InstructionAccount{
			Address:    m.Address,
			IsSigner:   m.IsSigner,
			IsWritable: m.IsWritable,
			Account:    a,
		}
		pre[m.Address] = a.Clone()
		writable[m.Address] = writable[m.Address] || m.IsWritable
	}

	out, err := p.programs.Dispatch(ix.ProgramID, inputs, ix.Data)
	if err != nil {
		return 0, err
	}
	for _, l := range out.Logs {
		r.Logs = append(r.Logs, "Program log: "+l)
	}
	for _, d := range out.Deltas {
		before, ok := pre[d.Address]
		if !ok {
			return out.ComputeUnits, fmt.Errorf("%w: %s", ErrUnreferencedAccount, d.Address)
		}
		if err := verifyDelta(ix.ProgramID, before, d.Account, writable[d.Address]); err != nil {
			return out.ComputeUnits, fmt.Errorf("%w: %s", err, d.Address)
		}
		if err := ts.PutAccount(ctx, d.Address, d.Account); err != nil {
			return out.ComputeUnits, err
		}
	}
	r.Logs = append(r.Logs,
		fmt.Sprintf("Program %s consumed %d compute units", ix.ProgramID, out.ComputeUnits),
		fmt.Sprintf("Program %s success", ix.ProgramID),
	)
	return out.ComputeUnits, nil
}

// verifyDelta enforces what a program may do to an account: only the
// owner may debit it, change its data or hand it to another owner, and
// readonly accounts may not change at all. An account that does not exist
// yet is treated as an empty system-owned account.
func verifyDelta(programID codec.Address, pre, post *account.Account, writable bool) error {
	if pre == nil {
		pre = account.New(0, 0, programs.SystemProgramID)
	}
	if pre.Equal(post) {
		return nil
	}
	switch {
	case !writable:
		return ErrReadonlyAccountModified
	case post.Executable != pre.Executable:
		return ErrModifiedOwner
	case pre.Owner != programID && post.Owner != pre.Owner:
		return ErrModifiedOwner
	case pre.Owner != programID && post.Balance < pre.Balance:
		return ErrExternalAccountDebit
	case pre.Owner != programID && !bytes.Equal(pre.Data, post.Data):
		return ErrExternalAccountDataModified
	default:
		return nil
	}
}

// verifyTransaction checks the transaction-wide invariants: no native
// balance is created or destroyed and no account is left rent-paying
// unless it already was.
func (p *Processor) verifyTransaction(storage map[codec.Address]*account.Account, changes []state.Change) error {
	var (
		before, after uint64
		err           error
	)
	for _, c := range changes {
		if pre, ok := storage[c.Address]; ok {
			before, err = smath.Add(before, pre.Balance)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrUnbalancedTransaction, err)
			}
		}
		after, err = smath.Add(after, c.Account.Balance)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrUnbalancedTransaction, err)
		}
	}
	if before != after {
		return fmt.Errorf("%w: before=%d after=%d", ErrUnbalancedTransaction, before, after)
	}
	for _, c := range changes {
		pre := p.rules.Rent.Status(storage[c.Address])
		post := p.rules.Rent.Status(c.Account)
		if !account.TransitionAllowed(pre, post) {
			return fmt.Errorf("%w: %s", ErrInsufficientFundsForRent, c.Address)
		}
	}
	return nil
}

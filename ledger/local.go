// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"go.uber.org/zap"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/processor"
	"github.com/ava-labs/paytube/programs"
	"github.com/ava-labs/paytube/state"
)

var _ Ledger = (*Local)(nil)

type Config struct {
	ChainID   ids.ID
	Rules     chain.Rules
	CacheSize int
}

// Local is an in-process ledger over a database. It validates and executes
// submitted transactions with the same engine channels use and commits
// each successful transaction in a single database batch.
type Local struct {
	log    logging.Logger
	tracer trace.Tracer
	clock  *mockable.Clock

	store     *state.Live
	validator *chain.Validator
	processor *processor.Processor

	l sync.Mutex
}

func NewLocal(
	log logging.Logger,
	tracer trace.Tracer,
	metrics *processor.Metrics,
	db database.Database,
	cfg Config,
	clock *mockable.Clock,
) (*Local, error) {
	store, err := state.NewLive(db, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Local{
		log:       log,
		tracer:    tracer,
		clock:     clock,
		store:     store,
		validator: chain.NewValidator(tracer, cfg.ChainID, cfg.Rules, clock),
		processor: processor.New(log, tracer, metrics, programs.NewRegistry(), cfg.Rules),
	}, nil
}

func (l *Local) ChainID() ids.ID { return l.validator.ChainID() }

func (l *Local) ReadAccount(ctx context.Context, addr codec.Address) (*account.Account, error) {
	return l.store.Get(ctx, addr)
}

// Allocate writes [accts] directly, bypassing execution. It is used to
// seed the ledger from genesis.
func (l *Local) Allocate(ctx context.Context, accts map[codec.Address]*account.Account) error {
	l.l.Lock()
	defer l.l.Unlock()

	changes := make([]state.Change, 0, len(accts))
	for addr, a := range accts {
		changes = append(changes, state.Change{Address: addr, Account: a})
	}
	state.SortChanges(changes)
	return l.store.Commit(ctx, changes)
}

// Snapshot returns every account on the ledger.
func (l *Local) Snapshot(ctx context.Context) (map[codec.Address]*account.Account, error) {
	return l.store.Snapshot(ctx)
}

func (l *Local) SubmitTransaction(ctx context.Context, tx *chain.Transaction) (*Confirmation, error) {
	ctx, span := l.tracer.Start(ctx, "Local.SubmitTransaction")
	defer span.End()

	l.l.Lock()
	defer l.l.Unlock()

	stx, err := l.validator.Validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	staged := state.NewVirtual(l.store)
	results, err := l.processor.Execute(ctx, staged, []*chain.SanitizedTransaction{stx})
	if err != nil {
		return nil, err
	}
	r := results[0]
	if !r.Success {
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, r.Err)
	}
	if err := l.store.Commit(ctx, staged.Changed()); err != nil {
		return nil, err
	}
	l.validator.MarkSeen(tx)
	l.log.Info("committed transaction",
		zap.Stringer("txID", r.TxID),
		zap.Int("instructions", len(tx.Instructions)),
		zap.Int("changes", len(r.Changes)),
	)
	return &Confirmation{
		TxID:         r.TxID,
		Timestamp:    l.clock.Time().UnixMilli(),
		Logs:         r.Logs,
		ComputeUnits: r.ComputeUnits,
	}, nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/ledger"
	"github.com/ava-labs/paytube/lockmap"
	"github.com/ava-labs/paytube/processor"
	"github.com/ava-labs/paytube/programs"
	"github.com/ava-labs/paytube/settlement"
	"github.com/ava-labs/paytube/state"
)

type State uint32

const (
	StateOpen State = iota
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "open":
		*s = StateOpen
	case "closing":
		*s = StateClosing
	case "closed":
		*s = StateClosed
	default:
		return fmt.Errorf("%w: %q", ErrUnknownState, b)
	}
	return nil
}

const DefaultSettlementTTL = 30 * time.Second

type Config struct {
	ID    ids.ID
	Rules chain.Rules

	// SettlementTTL is how long a settlement transaction stays valid on
	// the ledger.
	SettlementTTL time.Duration
}

// Backend holds the collaborators shared by every channel.
type Backend struct {
	Log     logging.Logger
	Tracer  trace.Tracer
	Metrics *Metrics
	Clock   *mockable.Clock
	Ledger  ledger.Ledger
	Locks   *lockmap.Lockmap
}

// TransferRequest moves Amount from From to To. A nil Mint moves native
// balance. Otherwise the transfer is between the associated token
// accounts of From and To for Mint.
type TransferRequest struct {
	Mint   *codec.Address `json:"mint,omitempty"`
	From   codec.Address  `json:"from"`
	To     codec.Address  `json:"to"`
	Amount uint64         `json:"amount"`
}

// Entry is one executed transaction of the channel log.
type Entry struct {
	Tx     *chain.Transaction `json:"tx"`
	Result *processor.Result  `json:"result"`
}

// Settlement records how a channel was closed. Tx and Confirmation are nil
// when nothing changed.
type Settlement struct {
	Transfers    []*settlement.NetTransfer `json:"transfers"`
	Tx           *chain.Transaction        `json:"tx,omitempty"`
	Confirmation *ledger.Confirmation      `json:"confirmation,omitempty"`
}

// Channel executes transfers between a fixed set of locked accounts
// against a private copy of their state and settles the net result on the
// ledger when closed.
type Channel struct {
	cfg     Config
	backend *Backend

	signers map[codec.Address]auth.Signer
	locked  []codec.Address
	lockSet set.Set[codec.Address]
	opening map[codec.Address]*account.Account

	store     *state.Virtual
	validator *chain.Validator
	processor *processor.Processor

	state atomic.Uint32

	// l serializes submissions and close so no two transactions of the
	// channel interleave.
	l          sync.Mutex
	sequence   uint64
	entries    []*Entry
	settlement *Settlement
}

// Open locks every participant and every account in [lockedAccounts] on
// the ledger and captures their current state. Locking never blocks: if
// any account is held by another channel, or cannot be read, nothing is
// held and state.ErrAccountLockFailed is returned.
func Open(
	ctx context.Context,
	backend *Backend,
	cfg Config,
	participants []auth.Signer,
	lockedAccounts []codec.Address,
) (*Channel, error) {
	ctx, span := backend.Tracer.Start(ctx, "Channel.Open")
	defer span.End()

	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}
	if cfg.SettlementTTL == 0 {
		cfg.SettlementTTL = DefaultSettlementTTL
	}
	c := &Channel{
		cfg:     cfg,
		backend: backend,
		signers: make(map[codec.Address]auth.Signer, len(participants)),
		lockSet: set.NewSet[codec.Address](len(participants) + len(lockedAccounts)),
	}
	for _, p := range participants {
		c.signers[p.Address()] = p
		c.lockSet.Add(p.Address())
	}
	c.lockSet.Add(lockedAccounts...)
	c.locked = c.lockSet.List()
	slices.SortFunc(c.locked, codec.Address.Compare)

	if err := backend.Locks.TryLock(cfg.ID, c.locked); err != nil {
		backend.Metrics.openFailures.Inc()
		return nil, fmt.Errorf("%w: %w", state.ErrAccountLockFailed, err)
	}
	c.opening = make(map[codec.Address]*account.Account, len(c.locked))
	for _, addr := range c.locked {
		a, err := backend.Ledger.ReadAccount(ctx, addr)
		if err != nil {
			_ = backend.Locks.Unlock(cfg.ID, c.locked)
			backend.Metrics.openFailures.Inc()
			return nil, fmt.Errorf("%w: unable to read %s: %w", state.ErrAccountLockFailed, addr, err)
		}
		c.opening[addr] = a
	}

	c.store = state.NewVirtual(state.ReaderFunc(backend.Ledger.ReadAccount))
	for addr, a := range c.opening {
		c.store.Seed(addr, a.Clone())
	}
	c.validator = chain.NewValidator(backend.Tracer, cfg.ID, cfg.Rules, backend.Clock)
	c.processor = processor.New(backend.Log, backend.Tracer, backend.Metrics.processor, programs.NewRegistry(), cfg.Rules)
	c.state.Store(uint32(StateOpen))

	backend.Metrics.opened.Inc()
	backend.Metrics.active.Inc()
	backend.Log.Info("opened channel",
		zap.Stringer("channelID", cfg.ID),
		zap.Int("participants", len(participants)),
		zap.Int("locked", len(c.locked)),
	)
	return c, nil
}

func (c *Channel) ID() ids.ID { return c.cfg.ID }

func (c *Channel) State() State { return State(c.state.Load()) }

// Locked returns the accounts held by the channel in address order.
func (c *Channel) Locked() []codec.Address { return slices.Clone(c.locked) }

// Opening returns the state of every locked account when the channel was
// opened.
func (c *Channel) Opening() map[codec.Address]*account.Account {
	out := make(map[codec.Address]*account.Account, len(c.opening))
	for addr, a := range c.opening {
		out[addr] = a.Clone()
	}
	return out
}

// Account returns the current channel-local state of [addr].
func (c *Channel) Account(ctx context.Context, addr codec.Address) (*account.Account, error) {
	c.l.Lock()
	defer c.l.Unlock()

	if c.State() == StateClosed {
		return nil, ErrChannelNotOpen
	}
	return c.store.Get(ctx, addr)
}

// Balances returns the channel-local state of every locked account.
func (c *Channel) Balances(ctx context.Context) (map[codec.Address]*account.Account, error) {
	c.l.Lock()
	defer c.l.Unlock()

	if c.State() == StateClosed {
		return nil, ErrChannelNotOpen
	}
	return c.closing(ctx)
}

// Transactions returns the executed transactions in execution order.
func (c *Channel) Transactions() []*Entry {
	c.l.Lock()
	defer c.l.Unlock()

	return slices.Clone(c.entries)
}

// Settlement returns the recorded settlement once the channel is closed.
func (c *Channel) Settlement() (*Settlement, bool) {
	c.l.Lock()
	defer c.l.Unlock()

	return c.settlement, c.settlement != nil
}

// nextBase returns the validity marker of the next transfer. The expiry
// sits halfway into the validity window and the per-channel sequence
// keeps otherwise identical transfers from sharing an ID.
func (c *Channel) nextBase() *chain.Base {
	c.sequence++
	return &chain.Base{
		Timestamp: c.backend.Clock.Time().UnixMilli() + c.cfg.Rules.ValidityWindow/2,
		ChainID:   c.cfg.ID,
		Nonce:     c.sequence,
	}
}

// Submit builds, signs and executes a single transfer.
func (c *Channel) Submit(ctx context.Context, req *TransferRequest) (*Entry, error) {
	ctx, span := c.backend.Tracer.Start(ctx, "Channel.Submit")
	defer span.End()

	c.l.Lock()
	defer c.l.Unlock()

	if c.State() != StateOpen {
		return nil, ErrChannelNotOpen
	}
	signer, ok := c.signers[req.From]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, req.From)
	}
	if req.From == req.To {
		return nil, fmt.Errorf("%w: sender is recipient", ErrInvalidTransfer)
	}
	var ix *chain.Instruction
	if req.Mint == nil {
		ix = programs.NewTransferInstruction(req.From, req.To, req.Amount)
	} else {
		ix = programs.NewTokenTransferInstruction(
			programs.AssociatedTokenAddress(req.From, *req.Mint),
			programs.AssociatedTokenAddress(req.To, *req.Mint),
			req.From,
			req.Amount,
		)
	}
	tx, err := chain.NewTx(c.nextBase(), []*chain.Instruction{ix}).Sign(signer)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, tx)
}

// SubmitTransaction executes a transaction signed by its sender. Every
// signer must be a participant and every account it writes must be locked
// by the channel.
func (c *Channel) SubmitTransaction(ctx context.Context, tx *chain.Transaction) (*Entry, error) {
	ctx, span := c.backend.Tracer.Start(ctx, "Channel.SubmitTransaction")
	defer span.End()

	c.l.Lock()
	defer c.l.Unlock()

	if c.State() != StateOpen {
		return nil, ErrChannelNotOpen
	}
	return c.execute(ctx, tx)
}

func (c *Channel) execute(ctx context.Context, tx *chain.Transaction) (*Entry, error) {
	stx, err := c.validator.Validate(ctx, tx)
	if err != nil {
		c.backend.Metrics.rejected.Inc()
		return nil, err
	}
	// Settlement must be signed by every debtor, so only participants may
	// sign channel transactions.
	for _, addr := range tx.Signers() {
		if _, ok := c.signers[addr]; !ok {
			c.backend.Metrics.rejected.Inc()
			return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, addr)
		}
	}
	for _, addr := range stx.WritableAccounts() {
		if !c.lockSet.Contains(addr) {
			c.backend.Metrics.rejected.Inc()
			return nil, fmt.Errorf("%w: %s", ErrAccountNotLocked, addr)
		}
	}
	results, err := c.processor.Execute(ctx, c.store, []*chain.SanitizedTransaction{stx})
	if err != nil {
		return nil, err
	}
	c.validator.MarkSeen(tx)
	entry := &Entry{Tx: tx, Result: results[0]}
	c.entries = append(c.entries, entry)
	c.backend.Metrics.transfers.Inc()
	return entry, nil
}

// closing reads the channel-local state of every locked account.
func (c *Channel) closing(ctx context.Context) (map[codec.Address]*account.Account, error) {
	out := make(map[codec.Address]*account.Account, len(c.locked))
	for _, addr := range c.locked {
		a, err := c.store.Get(ctx, addr)
		switch {
		case errors.Is(err, state.ErrAccountNotFound):
		case err != nil:
			return nil, err
		default:
			out[addr] = a
		}
	}
	return out, nil
}

// Close settles the net effect of the channel on the ledger in a single
// transaction, then releases every lock. If settlement fails the channel
// stays in StateClosing with its state intact and Close may be retried. Once
// closed, Close returns the recorded settlement without submitting again.
func (c *Channel) Close(ctx context.Context) (*Settlement, error) {
	ctx, span := c.backend.Tracer.Start(ctx, "Channel.Close")
	defer span.End()

	c.l.Lock()
	defer c.l.Unlock()

	if c.State() == StateClosed {
		return c.settlement, nil
	}
	c.state.Store(uint32(StateClosing))

	s, err := c.settle(ctx)
	if err != nil {
		c.backend.Metrics.settlementFailures.Inc()
		c.backend.Log.Warn("settlement failed",
			zap.Stringer("channelID", c.cfg.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrSettlementFailed, err)
	}

	c.settlement = s
	c.state.Store(uint32(StateClosed))
	c.store.Discard()
	if err := c.backend.Locks.Unlock(c.cfg.ID, c.locked); err != nil {
		c.backend.Log.Error("unable to release locks",
			zap.Stringer("channelID", c.cfg.ID),
			zap.Error(err),
		)
	}
	c.backend.Metrics.closed.Inc()
	c.backend.Metrics.active.Dec()
	c.backend.Log.Info("closed channel",
		zap.Stringer("channelID", c.cfg.ID),
		zap.Int("transactions", len(c.entries)),
		zap.Int("transfers", len(s.Transfers)),
	)
	return s, nil
}

func (c *Channel) settle(ctx context.Context) (*Settlement, error) {
	closing, err := c.closing(ctx)
	if err != nil {
		return nil, err
	}
	transfers, err := settlement.Diff(c.opening, closing)
	if err != nil {
		return nil, err
	}
	s := &Settlement{Transfers: transfers}
	if len(transfers) == 0 {
		return s, nil
	}

	expiry := c.backend.Clock.Time().Add(c.cfg.SettlementTTL).UnixMilli()
	utx, err := settlement.Build(transfers, c.backend.Ledger.ChainID(), expiry)
	if err != nil {
		return nil, err
	}
	signers := make([]auth.Signer, 0, len(c.signers))
	for _, addr := range utx.Signers() {
		signer, ok := c.signers[addr]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownParticipant, addr)
		}
		signers = append(signers, signer)
	}
	tx, err := utx.Sign(signers...)
	if err != nil {
		return nil, err
	}
	conf, err := c.backend.Ledger.SubmitTransaction(ctx, tx)
	if err != nil {
		return nil, err
	}
	s.Tx = tx
	s.Confirmation = conf
	return s, nil
}

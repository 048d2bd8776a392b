// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package channel

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/wrappers"

	"github.com/ava-labs/paytube/auth"
	"github.com/ava-labs/paytube/chain"
	"github.com/ava-labs/paytube/codec"
	"github.com/ava-labs/paytube/consts"
	"github.com/ava-labs/paytube/ledger"
)

// Manager opens channels over a shared ledger and lock table and keeps
// them addressable by ID.
type Manager struct {
	backend       *Backend
	rules         chain.Rules
	settlementTTL time.Duration

	l        sync.RWMutex
	nonce    uint64
	channels map[ids.ID]*Channel
}

func NewManager(backend *Backend, rules chain.Rules, settlementTTL time.Duration) *Manager {
	return &Manager{
		backend:       backend,
		rules:         rules,
		settlementTTL: settlementTTL,
		channels:      map[ids.ID]*Channel{},
	}
}

func (m *Manager) Ledger() ledger.Ledger { return m.backend.Ledger }

func (m *Manager) Rules() chain.Rules { return m.rules }

// nextID derives a channel ID unique to this manager and ledger.
func (m *Manager) nextID() ids.ID {
	m.l.Lock()
	defer m.l.Unlock()

	m.nonce++
	chainID := m.backend.Ledger.ChainID()
	p := wrappers.Packer{Bytes: make([]byte, 0, ids.IDLen+consts.Uint64Len+consts.Uint64Len), MaxSize: consts.NetworkSizeLimit}
	p.PackFixedBytes(chainID[:])
	p.PackLong(m.nonce)
	p.PackLong(uint64(m.backend.Clock.Time().UnixNano()))
	return ids.ID(hashing.ComputeHash256Array(p.Bytes))
}

func (m *Manager) Open(ctx context.Context, participants []auth.Signer, lockedAccounts []codec.Address) (*Channel, error) {
	c, err := Open(ctx, m.backend, Config{
		ID:            m.nextID(),
		Rules:         m.rules,
		SettlementTTL: m.settlementTTL,
	}, participants, lockedAccounts)
	if err != nil {
		return nil, err
	}

	m.l.Lock()
	m.channels[c.ID()] = c
	m.l.Unlock()
	return c, nil
}

func (m *Manager) Get(id ids.ID) (*Channel, error) {
	m.l.RLock()
	defer m.l.RUnlock()

	c, ok := m.channels[id]
	if !ok {
		return nil, ErrChannelNotFound
	}
	return c, nil
}

func (m *Manager) Close(ctx context.Context, id ids.ID) (*Settlement, error) {
	c, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	return c.Close(ctx)
}

// Channels returns the IDs of every channel opened by the manager,
// including closed ones, in byte order.
func (m *Manager) Channels() []ids.ID {
	m.l.RLock()
	defer m.l.RUnlock()

	out := make([]ids.ID, 0, len(m.channels))
	for id := range m.channels {
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b ids.ID) int { return a.Compare(b) })
	return out
}

// CloseAll attempts to settle every open channel and returns the first
// error encountered.
func (m *Manager) CloseAll(ctx context.Context) error {
	var firstErr error
	for _, id := range m.Channels() {
		c, err := m.Get(id)
		if err != nil {
			continue
		}
		if c.State() == StateClosed {
			continue
		}
		if _, err := c.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

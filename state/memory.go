// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"sync"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
)

var _ AccountStore = (*Memory)(nil)

// Memory is a map-backed AccountStore that is safe for concurrent use.
type Memory struct {
	l     sync.RWMutex
	accts map[codec.Address]*account.Account
}

func NewMemory() *Memory {
	return &Memory{accts: make(map[codec.Address]*account.Account)}
}

// NewMemoryFrom copies accts into a new Memory store.
func NewMemoryFrom(accts map[codec.Address]*account.Account) *Memory {
	m := &Memory{accts: make(map[codec.Address]*account.Account, len(accts))}
	for addr, a := range accts {
		m.accts[addr] = a.Clone()
	}
	return m
}

func (m *Memory) Get(_ context.Context, addr codec.Address) (*account.Account, error) {
	m.l.RLock()
	defer m.l.RUnlock()

	a, ok := m.accts[addr]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a.Clone(), nil
}

func (m *Memory) Set(_ context.Context, addr codec.Address, acct *account.Account) error {
	m.l.Lock()
	defer m.l.Unlock()

	m.accts[addr] = acct.Clone()
	return nil
}

func (m *Memory) Snapshot(context.Context) (map[codec.Address]*account.Account, error) {
	m.l.RLock()
	defer m.l.RUnlock()

	snap := make(map[codec.Address]*account.Account, len(m.accts))
	for addr, a := range m.accts {
		snap[addr] = a.Clone()
	}
	return snap, nil
}

// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lockmap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/ids"

	"github.com/ava-labs/paytube/codec"
)

var (
	ErrLocked    = errors.New("account locked")
	ErrNotHolder = errors.New("not lock holder")
)

// Lockmap hands out exclusive, per-account locks to holders. Acquisition
// never blocks: a holder either takes every account it asks for or none
// of them.
type Lockmap struct {
	l sync.Mutex
	m map[codec.Address]ids.ID
}

func New(initSize int) *Lockmap {
	return &Lockmap{
		m: make(map[codec.Address]ids.ID, initSize),
	}
}

// TryLock locks every address in [addrs] for [holder]. If any of them is
// already held, including by [holder] itself, nothing is locked and
// ErrLocked is returned.
func (l *Lockmap) TryLock(holder ids.ID, addrs []codec.Address) error {
	l.l.Lock()
	defer l.l.Unlock()

	for _, addr := range addrs {
		if h, ok := l.m[addr]; ok {
			return fmt.Errorf("%w: %s held by %s", ErrLocked, addr, h)
		}
	}
	for _, addr := range addrs {
		l.m[addr] = holder
	}
	return nil
}

// Unlock releases the addresses in [addrs] held by [holder]. It fails
// without releasing anything if [holder] does not hold all of them.
func (l *Lockmap) Unlock(holder ids.ID, addrs []codec.Address) error {
	l.l.Lock()
	defer l.l.Unlock()

	for _, addr := range addrs {
		if h, ok := l.m[addr]; !ok || h != holder {
			return fmt.Errorf("%w: %s", ErrNotHolder, addr)
		}
	}
	for _, addr := range addrs {
		delete(l.m, addr)
	}
	return nil
}

// Holder returns the holder of [addr], if any.
func (l *Lockmap) Holder(addr codec.Address) (ids.ID, bool) {
	l.l.Lock()
	defer l.l.Unlock()

	h, ok := l.m[addr]
	return h, ok
}

func (l *Lockmap) Locks() int {
	l.l.Lock()
	defer l.l.Unlock()

	return len(l.m)
}

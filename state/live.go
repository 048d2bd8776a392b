// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/hashicorp/golang-lru/v2"

	"github.com/ava-labs/paytube/account"
	"github.com/ava-labs/paytube/codec"
)

const accountPrefix byte = 0x0

var _ AccountStore = (*Live)(nil)

// Live persists accounts in a database.Database and keeps recently decoded
// accounts in an LRU cache. Commit is the only path that writes more than a
// single account and does so in one database batch.
type Live struct {
	l     sync.RWMutex
	db    database.Database
	cache *lru.Cache[codec.Address, *account.Account]
}

func NewLive(db database.Database, cacheSize int) (*Live, error) {
	cache, err := lru.New[codec.Address, *account.Account](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Live{db: db, cache: cache}, nil
}

func accountKey(addr codec.Address) []byte {
	k := make([]byte, 1+codec.AddressLen)
	k[0] = accountPrefix
	copy(k[1:], addr[:])
	return k
}

func (l *Live) Get(_ context.Context, addr codec.Address) (*account.Account, error) {
	l.l.RLock()
	defer l.l.RUnlock()

	if a, ok := l.cache.Get(addr); ok {
		return a.Clone(), nil
	}
	v, err := l.db.Get(accountKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	a, err := account.Unmarshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt account %s", err, addr)
	}
	l.cache.Add(addr, a)
	return a.Clone(), nil
}

func (l *Live) Set(ctx context.Context, addr codec.Address, acct *account.Account) error {
	return l.Commit(ctx, []Change{{Address: addr, Account: acct}})
}

// Commit writes all changes atomically. Either every account is updated or,
// if the batch write fails, none are.
func (l *Live) Commit(_ context.Context, changes []Change) error {
	l.l.Lock()
	defer l.l.Unlock()

	batch := l.db.NewBatch()
	for _, c := range changes {
		if err := batch.Put(accountKey(c.Address), c.Account.Marshal()); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}
	for _, c := range changes {
		l.cache.Add(c.Address, c.Account.Clone())
	}
	return nil
}

func (l *Live) Snapshot(context.Context) (map[codec.Address]*account.Account, error) {
	l.l.RLock()
	defer l.l.RUnlock()

	it := l.db.NewIteratorWithPrefix([]byte{accountPrefix})
	defer it.Release()

	snap := make(map[codec.Address]*account.Account)
	for it.Next() {
		addr, err := codec.ToAddress(it.Key()[1:])
		if err != nil {
			return nil, err
		}
		a, err := account.Unmarshal(it.Value())
		if err != nil {
			return nil, err
		}
		snap[addr] = a
	}
	return snap, it.Error()
}

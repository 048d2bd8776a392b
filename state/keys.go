// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"slices"

	"golang.org/x/exp/maps"

	"github.com/ava-labs/paytube/codec"
)

const (
	Read     Permissions = 1
	Allocate             = 1<<1 | Read
	Write                = 1<<2 | Read

	None Permissions = 0
	All              = Read | Allocate | Write
)

// Permissions describe what a transaction may do with an account. Allocate
// marks an account that may be absent when the transaction is loaded.
type Permissions byte

// Has returns true if [p] has all the permissions that are contained in require
func (p Permissions) Has(require Permissions) bool {
	return require&^p == 0
}

// Keys is the set of accounts a transaction touches and what it may do
// with each of them.
type Keys map[codec.Address]Permissions

// Add unions [permission] into the existing permissions for [addr] so that
// declaring an account twice never narrows access.
func (k Keys) Add(addr codec.Address, permission Permissions) {
	k[addr] |= permission
}

// Sorted returns the addresses in k in byte order.
func (k Keys) Sorted() []codec.Address {
	addrs := maps.Keys(k)
	slices.SortFunc(addrs, codec.Address.Compare)
	return addrs
}

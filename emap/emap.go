// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emap

import (
	"container/heap"
	"sync"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/set"
)

type bucket struct {
	t     int64    // Timestamp
	items []ids.ID // Array of AvalancheGo ids
}

// bucketHeap orders buckets by timestamp, oldest first.
type bucketHeap struct {
	buckets []*bucket
}

var _ heap.Interface = (*bucketHeap)(nil)

func (bh bucketHeap) Len() int { return len(bh.buckets) }

func (bh bucketHeap) Less(i, j int) bool { return bh.buckets[i].t < bh.buckets[j].t }

func (bh bucketHeap) Swap(i, j int) { bh.buckets[i], bh.buckets[j] = bh.buckets[j], bh.buckets[i] }

func (bh *bucketHeap) Push(x any) {
	bh.buckets = append(bh.buckets, x.(*bucket))
}

func (bh *bucketHeap) Pop() any {
	n := len(bh.buckets)
	b := bh.buckets[n-1]
	bh.buckets[n-1] = nil
	bh.buckets = bh.buckets[:n-1]
	return b
}

// Item defines an interface accepted by EMap
type Item interface {
	ID() ids.ID    // method for returning an id of the item
	Expiry() int64 // method for returning this item's expiry
}

// EMap is an eviction map that remembers item IDs until their expiry
// passes. It is used to reject replays of transactions that are still
// inside their validity window.
type EMap[T Item] struct {
	mu sync.RWMutex

	bh    *bucketHeap
	seen  set.Set[ids.ID]   // Stores a set of unique item ids
	times map[int64]*bucket // Uses timestamp as keys to map to buckets of ids.
}

func NewEMap[T Item]() *EMap[T] {
	return &EMap[T]{
		seen:  set.Set[ids.ID]{},
		times: make(map[int64]*bucket),
		bh:    &bucketHeap{},
	}
}

// Add adds a list of items to the EMap.
func (e *EMap[T]) Add(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, item := range items {
		e.add(item.ID(), item.Expiry())
	}
}

func (e *EMap[T]) add(id ids.ID, t int64) {
	if e.seen.Contains(id) {
		return
	}
	e.seen.Add(id)

	if b, ok := e.times[t]; ok {
		b.items = append(b.items, id)
		return
	}
	b := &bucket{
		t:     t,
		items: []ids.ID{id},
	}
	e.times[t] = b
	heap.Push(e.bh, b)
}

// SetMin removes all items with an expiry lower than [t] and returns their
// ids.
func (e *EMap[T]) SetMin(t int64) []ids.ID {
	e.mu.Lock()
	defer e.mu.Unlock()

	evicted := []ids.ID{}
	for e.bh.Len() > 0 {
		b := e.bh.buckets[0]
		if b.t >= t {
			break
		}
		heap.Pop(e.bh)
		for _, id := range b.items {
			e.seen.Remove(id)
			evicted = append(evicted, id)
		}
		delete(e.times, b.t)
	}
	return evicted
}

// Any returns true if any items have been seen by EMap.
func (e *EMap[T]) Any(items []T) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, item := range items {
		if e.seen.Contains(item.ID()) {
			return true
		}
	}
	return false
}

func (e *EMap[T]) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.seen.Len()
}

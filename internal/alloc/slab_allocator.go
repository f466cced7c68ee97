// Package alloc provides a tiered slice allocator used by the partial-path
// database for its per-node candidate index slices. Stitching interns many
// short-lived small slices (most nodes have a handful of outgoing paths),
// so recycling fixed-capacity backing arrays through sync.Pool tiers keeps
// GC pressure flat across large queries.
package alloc

import (
	"sync"
	"sync/atomic"
)

// SlabAllocator hands out zero-length slices with pre-sized capacity from
// a ladder of pools, one per capacity tier.
type SlabAllocator[T any] struct {
	tiers []*poolTier[T]

	hits   atomic.Int64
	misses atomic.Int64
}

type poolTier[T any] struct {
	capacity int
	pool     sync.Pool
}

// Candidate-index slices follow the same skew as node out-degrees: almost
// all are tiny, a few fan out wide. The tier ladder doubles up to 256;
// anything larger is allocated directly and never pooled.
var defaultTierCapacities = []int{8, 16, 32, 64, 128, 256}

// NewSlabAllocator builds an allocator with one pool per capacity.
func NewSlabAllocator[T any](capacities []int) *SlabAllocator[T] {
	sa := &SlabAllocator[T]{tiers: make([]*poolTier[T], len(capacities))}
	for i, c := range capacities {
		c := c
		sa.tiers[i] = &poolTier[T]{
			capacity: c,
			pool: sync.Pool{
				New: func() any { return make([]T, 0, c) },
			},
		}
	}
	return sa
}

// NewSlabAllocatorWithDefaults builds an allocator with the default tier
// ladder.
func NewSlabAllocatorWithDefaults[T any]() *SlabAllocator[T] {
	return NewSlabAllocator[T](defaultTierCapacities)
}

// Get returns a length-0 slice with capacity >= the request, from the
// smallest tier that fits, falling back to a direct allocation when the
// request exceeds every tier.
func (sa *SlabAllocator[T]) Get(capacity int) []T {
	if capacity <= 0 {
		return make([]T, 0)
	}
	for _, tier := range sa.tiers {
		if tier.capacity >= capacity {
			sa.hits.Add(1)
			return tier.pool.Get().([]T)
		}
	}
	sa.misses.Add(1)
	return make([]T, 0, capacity)
}

// Put returns a slice to its tier for reuse. Slices whose capacity matches
// no tier (including direct allocations from Get) are left to the GC.
func (sa *SlabAllocator[T]) Put(slice []T) {
	c := cap(slice)
	if c == 0 {
		return
	}
	for _, tier := range sa.tiers {
		if tier.capacity == c {
			tier.pool.Put(slice[:0])
			return
		}
	}
}

// Stats reports pooled vs direct allocations since construction.
func (sa *SlabAllocator[T]) Stats() (hits, misses int64) {
	return sa.hits.Load(), sa.misses.Load()
}

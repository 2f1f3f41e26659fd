// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sbf

import (
	"fmt"
	"hash"
	"math"

	"github.com/dchest/siphash"
	"github.com/decred/dcrd/crypto/rand"
)

// References:
//   [SBF] Approximately Detecting Duplicates for Streaming Data using Stable
//     Bloom Filters (Deng, Rafiei)
//     https://webdocs.cs.ualberta.ca/~drafiei/papers/DupDet06Sigmod.pdf
//
//   [LHSP] Less Hashing, Same Performance: Building a Better Bloom Filter
//     (Kirsch, Mitzenmacher)

// Filter describes the membership testing capabilities shared by the filter
// variants provided by this package.
type Filter interface {
	// Test returns the result of a probabilistic membership test for the
	// provided data.
	Test(data []byte) bool

	// Add inserts the provided data into the filter.
	Add(data []byte)

	// TestAndAdd is equivalent to calling Test followed by Add and returns
	// the result of the membership test.
	TestAndAdd(data []byte) bool
}

// StableFilter implements a Stable Bloom Filter (SBF) as described in [SBF].
//
// An SBF is a probabilistic data structure suitable for approximate
// membership queries over unbounded data streams within a fixed amount of
// memory.  Classic Bloom filters require a priori knowledge of the data set
// size in order to allocate an appropriately sized bit array, and once enough
// items have been added, their false positive rate climbs until every query
// is a false positive.  An SBF instead continuously evicts stale information
// by decrementing a few randomly chosen cells before every insertion, which
// causes its false positive rate to asymptotically approach a configurable
// fixed constant, at the cost of introducing a bounded non-zero rate of false
// negatives.
//
// A classic Bloom filter is the degenerate case of an SBF where the eviction
// rate is zero, so this package supports them as well via NewUnstableFilter.
//
// StableFilter is NOT safe for concurrent access and is intended to be owned
// by a single caller at a time.  Callers that require concurrent use must
// provide external synchronization or shard across independent filters.
type StableFilter struct {
	// cells is the array of counters that backs the filter.
	cells *Buckets

	// hash is the kernel from which all k per-operation indexes are derived
	// via double hashing.
	hash hash.Hash64

	// m is the number of cells.
	m uint

	// k is the number of cells set or tested per operation.
	k uint

	// p is the number of cells decremented per eviction pass.  It is zero
	// only for the classic, non-evicting variant.
	p uint

	// max is the maximum cell value, mirroring the bucket array.
	max uint8

	// indexBuffer caches the derived cell indexes between the test and add
	// phases of a combined operation.
	indexBuffer []uint64

	// uniform returns a uniform random integer in [0, n) and is used to
	// choose the starting offset of each eviction pass.
	uniform func(n uint64) uint64
}

// Ensure StableFilter implements the Filter interface.
var _ Filter = (*StableFilter)(nil)

// optimalK returns the optimal number of hash functions for a classic Bloom
// filter with the desired rate of false positives.
func optimalK(fpRate float64) uint {
	return uint(math.Ceil(math.Log2(1 / fpRate)))
}

// optimalStableP returns the number of cells to decrement per eviction pass,
// p, such that the asymptotic false positive rate of an SBF with the given
// number of cells, hash functions, and bits per cell equals the target rate.
// It inverts the stable-point equation from [SBF].
//
// The result is clamped to [1, m].  The lower clamp ensures eviction always
// occurs for a stable configuration and the upper clamp bounds the cost of an
// eviction pass for extreme parameter combinations that drive the denominator
// of the closed formula toward zero.
func optimalStableP(m, k uint, d uint8, fpRate float64) uint {
	cellMax := float64(uint64(1)<<d - 1)
	subDenom := math.Pow(1-math.Pow(fpRate, 1/float64(k)), 1/cellMax)
	denom := (1/subDenom - 1) * (1/float64(k) - 1/float64(m))

	pf := 1 / denom
	if !(pf >= 1) {
		return 1
	}
	if pf >= float64(m) {
		return m
	}
	return uint(pf)
}

// defaultHash returns the default hash capability for a new filter.  Each
// filter is keyed with random bytes so that independently created filters
// produce independent sets of false positives.
func defaultHash() hash.Hash64 {
	var key [16]byte
	rand.Read(key[:])
	return siphash.New(key[:])
}

// checkFPRate returns an error with kind ErrInvalidFPRate when the provided
// target false positive rate is not in the interval (0, 1).
func checkFPRate(fpRate float64) error {
	if !(fpRate > 0 && fpRate < 1) {
		str := fmt.Sprintf("false positive rate %v is not in the interval "+
			"(0, 1)", fpRate)
		return makeError(ErrInvalidFPRate, str)
	}
	return nil
}

// NewFilter returns a Stable Bloom Filter with m cells of d bits each whose
// eviction rate is tuned so that the asymptotic false positive rate matches
// the provided target.  Use NewDefaultFilter to avoid choosing d.
//
// The number of cells set and tested per operation is half the optimal count
// for a classic filter with the same target rate, clamped to [1, m], since
// eviction contributes noise of its own that a full-sized count would
// overcompensate for.  See section 5 of [SBF].
//
// The returned error will have the kind ErrInvalidBucketSize when d is zero
// or greater than 8, the kind ErrInvalidCellCount when m is zero, and the
// kind ErrInvalidFPRate when the target rate is not in (0, 1).
func NewFilter(m uint, d uint8, fpRate float64) (*StableFilter, error) {
	if err := checkFPRate(fpRate); err != nil {
		return nil, err
	}
	cells, err := NewBuckets(m, d)
	if err != nil {
		return nil, err
	}

	k := optimalK(fpRate) / 2
	if k > m {
		k = m
	} else if k == 0 {
		k = 1
	}

	return &StableFilter{
		cells:       cells,
		hash:        defaultHash(),
		m:           m,
		k:           k,
		p:           optimalStableP(m, k, d, fpRate),
		max:         cells.MaxBucketValue(),
		indexBuffer: make([]uint64, k),
		uniform:     rand.Uint64N,
	}, nil
}

// NewDefaultFilter returns a Stable Bloom Filter with m 1-bit cells which is
// optimized for cases where there is no prior knowledge of the input data
// stream while maintaining an upper bound on false positives using the
// provided target rate.
func NewDefaultFilter(m uint, fpRate float64) (*StableFilter, error) {
	return NewFilter(m, 1, fpRate)
}

// NewUnstableFilter returns a special case of a Stable Bloom Filter that is a
// classic Bloom filter with m bits and the optimal number of hash functions
// for the provided target false positive rate.  Unlike the stable variant,
// data is never evicted, so the filter is free of false negatives, but its
// false positive rate climbs to 1 as items are added.
func NewUnstableFilter(m uint, fpRate float64) (*StableFilter, error) {
	if err := checkFPRate(fpRate); err != nil {
		return nil, err
	}
	cells, err := NewBuckets(m, 1)
	if err != nil {
		return nil, err
	}

	k := optimalK(fpRate)
	if k > m {
		k = m
	}

	return &StableFilter{
		cells:       cells,
		hash:        defaultHash(),
		m:           m,
		k:           k,
		p:           0,
		max:         cells.MaxBucketValue(),
		indexBuffer: make([]uint64, k),
		uniform:     rand.Uint64N,
	}, nil
}

// SetHash replaces the hash capability used to derive cell indexes.  Any
// adequately distributed 64-bit hash satisfies the contract.  Replacing the
// default keyed hash with a fixed one such as fnv.New64 makes the cells
// touched by each operation reproducible across filter instances.
//
// It must only be called before any data is added to the filter.
func (f *StableFilter) SetHash(h hash.Hash64) {
	f.hash = h
}

// SetUniform replaces the source of uniform random integers used to choose
// the starting offset of each eviction pass.  The provided function must
// return values in [0, n).  This is primarily useful to make eviction
// deterministic under test.
func (f *StableFilter) SetUniform(fn func(n uint64) uint64) {
	f.uniform = fn
}

// Cells returns the number of cells in the filter.
func (f *StableFilter) Cells() uint {
	return f.m
}

// K returns the number of cells set and tested per operation.
func (f *StableFilter) K() uint {
	return f.k
}

// P returns the number of cells decremented per eviction pass.
func (f *StableFilter) P() uint {
	return f.p
}

// Max returns the maximum value a cell can store.
func (f *StableFilter) Max() uint8 {
	return f.max
}

// StablePoint returns the limit of the expected fraction of zero cells in the
// filter as the number of operations goes to infinity.  Once this limit is
// reached the filter is considered stable.
//
// The classic, non-evicting variant has no stable point and returns zero.
func (f *StableFilter) StablePoint() float64 {
	if f.p == 0 {
		return 0
	}

	subDenom := float64(f.p) * (1/float64(f.k) - 1/float64(f.m))
	denom := 1 + 1/subDenom
	base := 1 / denom
	return math.Pow(base, float64(f.max))
}

// FalsePositiveRate returns the upper bound on false positives once the
// filter has become stable.
//
// For the classic, non-evicting variant, cells are never cleared, so once the
// filter is saturated every query is a false positive and the rate is exactly
// 1.
func (f *StableFilter) FalsePositiveRate() float64 {
	if f.p == 0 {
		return 1
	}
	return math.Pow(1-f.StablePoint(), float64(f.k))
}

// hashKernel returns the lower and upper halves of a single 64-bit digest of
// the provided data.  The halves serve as the double-hashing kernel from
// which all k cell indexes are derived, which amortizes the cost of k
// independent hash functions into one digest computation per [LHSP].
func (f *StableFilter) hashKernel(data []byte) (uint32, uint32) {
	f.hash.Write(data)
	sum := f.hash.Sum64()
	f.hash.Reset()
	return uint32(sum), uint32(sum >> 32)
}

// decrement performs an eviction pass by decrementing a randomly chosen cell
// and the p-1 cells that follow it, wrapping around the end of the array.
// This is faster than drawing p independent random indexes, and while the
// chosen cells are not independent within a single pass, each cell still has
// probability p/m of being chosen on any given pass, which is the property
// the stable-point derivation depends on.
func (f *StableFilter) decrement() {
	m := uint64(f.m)
	r := f.uniform(m)
	for i := uint64(0); i < uint64(f.p); i++ {
		f.cells.Decrease(uint((r+i)%m), 1)
	}
}

// Test returns the result of a probabilistic membership test for the provided
// data.  A false result means the data is definitely not a member, while a
// true result means it probably is: false positives occur at up to the
// stable rate of the filter, and prior evictions may cause false negatives
// for data that was added.
func (f *StableFilter) Test(data []byte) bool {
	lower, upper := f.hashKernel(data)
	m := uint64(f.m)

	// The data is not a member if any of the k cells is zero.
	for i := uint64(0); i < uint64(f.k); i++ {
		idx := (uint64(lower) + uint64(upper)*i) % m
		if f.cells.Get(uint(idx)) == 0 {
			return false
		}
	}
	return true
}

// Add inserts the provided data into the filter.
func (f *StableFilter) Add(data []byte) {
	// Decrement p random cells to make room for the new data.
	f.decrement()

	lower, upper := f.hashKernel(data)
	m := uint64(f.m)
	for i := uint64(0); i < uint64(f.k); i++ {
		idx := (uint64(lower) + uint64(upper)*i) % m
		f.cells.Set(uint(idx), f.max)
	}
}

// TestAndAdd is equivalent to calling Test followed by Add and returns the
// result of the membership test.  The membership result reflects the state of
// the filter before any mutation by this call.
func (f *StableFilter) TestAndAdd(data []byte) bool {
	lower, upper := f.hashKernel(data)
	m := uint64(f.m)

	// The data is not a member if any of the k cells is zero.
	member := true
	for i := uint64(0); i < uint64(f.k); i++ {
		idx := (uint64(lower) + uint64(upper)*i) % m
		f.indexBuffer[i] = idx
		if f.cells.Get(uint(idx)) == 0 {
			member = false
		}
	}

	// Decrement p random cells to make room for the new data.  Note that the
	// eviction pass is intentionally independent of the membership result and
	// may clear cells that were just inspected.
	f.decrement()

	for _, idx := range f.indexBuffer {
		f.cells.Set(uint(idx), f.max)
	}

	return member
}

// Reset restores the filter to its original empty state.  It returns the
// filter to allow for chaining.
func (f *StableFilter) Reset() *StableFilter {
	f.cells.Reset()
	return f
}

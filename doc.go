// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package sbf implements a Stable Bloom Filter (SBF).

A Stable Bloom Filter is a probabilistic data structure for testing set
membership over continuous, unbounded data streams within a fixed amount of
memory.  It continuously evicts stale information so that it has room for
more recent elements.  Like traditional Bloom filters, an SBF has a non-zero
probability of false positives, which is controlled by several parameters.
Unlike the classic Bloom filter, whose false positive rate eventually reaches
1 so that every query results in a false positive, an SBF places a tight
upper bound on the rate of false positives while introducing a non-zero rate
of false negatives.  The asymptotic false positive rate is characterized by
the stable point, which is the expected fraction of zero cells once eviction
and insertion reach statistical equilibrium.

A classic Bloom filter is actually a special case of an SBF where the
eviction rate is zero, so this package provides support for them as well via
NewUnstableFilter.

Stable Bloom Filters are useful for cases where the size of the data set is
not known a priori and memory is bounded.  For example, an SBF can be used to
deduplicate events from an unbounded event stream with a specified upper
bound on false positives and minimal false negatives.

The filter derives all of its per-operation cell indexes from a single 64-bit
digest via double hashing, so only one hash computation is performed per
operation regardless of how many cells it touches.  The hash is pluggable:
any adequately distributed hash.Hash64 satisfies the contract.

The filters provided by this package are NOT safe for concurrent access.
Callers that share a filter between goroutines must provide their own
synchronization or shard the stream across independent filters.

# Errors

Errors returned by this package are of type sbf.Error and fully support the
errors.Is and errors.As functions.  This allows the caller to programmatically
determine the specific reason for an error.  Errors are only possible at
construction; all per-element operations are total and clamp out-of-range
values rather than rejecting them.
*/
package sbf

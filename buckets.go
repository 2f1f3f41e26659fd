// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sbf

import "fmt"

// Buckets is a fast, space-efficient array of counters ("buckets") where each
// bucket is a fixed number of bits wide, from 1 to 8, and stores values up to
// the maximum that fits in that width.  The buckets are packed contiguously
// into a byte buffer with bit-level addressing, so the total footprint is
// ceil(count*bucketSize/8) bytes regardless of the configured width.
//
// All mutating operations saturate rather than fail, so every operation aside
// from creation is total.  Buckets is not safe for concurrent access and is
// intended to be owned exclusively by a single caller such as a filter built
// on top of it.
type Buckets struct {
	data       []byte
	bucketSize uint8
	max        uint8
	count      uint
}

// NewBuckets returns a zero-filled array of the provided number of buckets
// where each bucket is the specified number of bits wide.
//
// The returned error will have the kind ErrInvalidBucketSize when the bucket
// size is zero or greater than 8 bits and the kind ErrInvalidCellCount when
// the count is zero.
func NewBuckets(count uint, bucketSize uint8) (*Buckets, error) {
	if bucketSize == 0 || bucketSize > 8 {
		str := fmt.Sprintf("bucket size %d is not in the range [1, 8]",
			bucketSize)
		return nil, makeError(ErrInvalidBucketSize, str)
	}
	if count == 0 {
		return nil, makeError(ErrInvalidCellCount, "bucket count must be "+
			"greater than zero")
	}

	return &Buckets{
		count:      count,
		bucketSize: bucketSize,
		data:       make([]byte, (uint64(count)*uint64(bucketSize)+7)/8),
		max:        uint8(uint16(1)<<bucketSize - 1),
	}, nil
}

// MaxBucketValue returns the maximum value that can be stored in a bucket.
func (b *Buckets) MaxBucketValue() uint8 {
	return b.max
}

// Count returns the number of buckets.
func (b *Buckets) Count() uint {
	return b.count
}

// getBits returns the value stored in the bits at the specified absolute bit
// offset and length.  Ranges that straddle a byte boundary are read in per
// byte sub-ranges that are recombined via shift and OR.
func (b *Buckets) getBits(offset, length uint64) uint8 {
	var result, shift uint8
	for length > 0 {
		byteIdx := offset >> 3
		bitOff := offset & 7
		n := length
		if bitOff+n > 8 {
			n = 8 - bitOff
		}
		mask := byte(uint16(1)<<n - 1)
		result |= (b.data[byteIdx] >> bitOff & mask) << shift
		shift += uint8(n)
		offset += n
		length -= n
	}
	return result
}

// setBits writes the value to the bits at the specified absolute bit offset
// and length.  Each affected sub-range is cleared before the relevant bits
// are ORed in, so neighboring buckets that share a byte are preserved.
func (b *Buckets) setBits(offset, length uint64, bits uint8) {
	for length > 0 {
		byteIdx := offset >> 3
		bitOff := offset & 7
		n := length
		if bitOff+n > 8 {
			n = 8 - bitOff
		}
		mask := byte(uint16(1)<<n - 1)
		b.data[byteIdx] &^= mask << bitOff
		b.data[byteIdx] |= (bits & mask) << bitOff
		bits >>= n
		offset += n
		length -= n
	}
}

// Get returns the value stored in the specified bucket.
func (b *Buckets) Get(bucket uint) uint8 {
	size := uint64(b.bucketSize)
	return b.getBits(uint64(bucket)*size, size)
}

// Set sets the value of the specified bucket.  Values that exceed the
// maximum bucket value are clamped to it.
func (b *Buckets) Set(bucket uint, value uint8) {
	if value > b.max {
		value = b.max
	}
	size := uint64(b.bucketSize)
	b.setBits(uint64(bucket)*size, size, value)
}

// Increment increases the value of the specified bucket by the provided
// delta.  The result saturates at the maximum bucket value.
func (b *Buckets) Increment(bucket uint, delta uint8) {
	val := uint16(b.Get(bucket)) + uint16(delta)
	if val > uint16(b.max) {
		val = uint16(b.max)
	}
	size := uint64(b.bucketSize)
	b.setBits(uint64(bucket)*size, size, uint8(val))
}

// Decrease reduces the value of the specified bucket by the provided delta.
// The result saturates at zero.
func (b *Buckets) Decrease(bucket uint, delta uint8) {
	val := b.Get(bucket)
	if delta > val {
		val = 0
	} else {
		val -= delta
	}
	size := uint64(b.bucketSize)
	b.setBits(uint64(bucket)*size, size, val)
}

// Reset restores every bucket to zero.
func (b *Buckets) Reset() {
	for i := range b.data {
		b.data[i] = 0
	}
}

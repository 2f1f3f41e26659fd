// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sbf

import (
	"encoding/binary"
	"fmt"
	"testing"
)

// BenchmarkBucketsSet benchmarks setting bucket values for every supported
// bucket size.
func BenchmarkBucketsSet(b *testing.B) {
	for bucketSize := uint8(1); bucketSize <= 8; bucketSize++ {
		b.Run(fmt.Sprintf("bucketsize=%d", bucketSize), func(b *testing.B) {
			const count = 10000
			buckets, err := NewBuckets(count, bucketSize)
			if err != nil {
				b.Fatalf("unexpected error creating buckets: %v", err)
			}

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buckets.Set(uint(i)%count, uint8(i))
			}
		})
	}
}

// BenchmarkBucketsGet benchmarks reading bucket values for every supported
// bucket size.
func BenchmarkBucketsGet(b *testing.B) {
	for bucketSize := uint8(1); bucketSize <= 8; bucketSize++ {
		b.Run(fmt.Sprintf("bucketsize=%d", bucketSize), func(b *testing.B) {
			const count = 10000
			buckets, err := NewBuckets(count, bucketSize)
			if err != nil {
				b.Fatalf("unexpected error creating buckets: %v", err)
			}
			for i := uint(0); i < count; i++ {
				buckets.Set(i, uint8(i))
			}

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				buckets.Get(uint(i) % count)
			}
		})
	}
}

// BenchmarkAdd benchmarks adding items to a stable filter for various cell
// counts and false positive rates.
func BenchmarkAdd(b *testing.B) {
	benches := []struct {
		cells  uint    // number of cells
		fpRate float64 // target false positive rate
	}{{
		cells:  10000,
		fpRate: 0.01,
	}, {
		cells:  10000,
		fpRate: 0.001,
	}, {
		cells:  100000,
		fpRate: 0.01,
	}, {
		cells:  100000,
		fpRate: 0.0001,
	}}

	for benchIdx := range benches {
		bench := benches[benchIdx]
		benchName := fmt.Sprintf("cells=%d/fprate=%0.4f", bench.cells,
			bench.fpRate)
		b.Run(benchName, func(b *testing.B) {
			filter, err := NewDefaultFilter(bench.cells, bench.fpRate)
			if err != nil {
				b.Fatalf("unexpected error creating filter: %v", err)
			}

			b.ResetTimer()
			b.ReportAllocs()
			var data [4]byte
			for i := 0; i < b.N; i++ {
				binary.LittleEndian.PutUint32(data[:], uint32(i))
				filter.Add(data[:])
			}
		})
	}
}

// BenchmarkTest benchmarks membership queries against a loaded stable filter
// for various cell counts and false positive rates.
func BenchmarkTest(b *testing.B) {
	benches := []struct {
		cells  uint    // number of cells
		fpRate float64 // target false positive rate
	}{{
		cells:  10000,
		fpRate: 0.01,
	}, {
		cells:  10000,
		fpRate: 0.001,
	}, {
		cells:  100000,
		fpRate: 0.01,
	}, {
		cells:  100000,
		fpRate: 0.0001,
	}}

	for benchIdx := range benches {
		bench := benches[benchIdx]
		benchName := fmt.Sprintf("cells=%d/fprate=%0.4f", bench.cells,
			bench.fpRate)
		b.Run(benchName, func(b *testing.B) {
			// Load the filter so the benchmark runs against a stable filter
			// rather than an empty one.
			filter, err := NewDefaultFilter(bench.cells, bench.fpRate)
			if err != nil {
				b.Fatalf("unexpected error creating filter: %v", err)
			}
			var data [4]byte
			for i := uint(0); i < bench.cells; i++ {
				binary.LittleEndian.PutUint32(data[:], uint32(i))
				filter.Add(data[:])
			}
			binary.LittleEndian.PutUint32(data[:], uint32(bench.cells/2))

			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				filter.Test(data[:])
			}
		})
	}
}

// BenchmarkTestAndAdd benchmarks the combined membership test and insertion
// for various cell counts and false positive rates.
func BenchmarkTestAndAdd(b *testing.B) {
	benches := []struct {
		cells  uint    // number of cells
		fpRate float64 // target false positive rate
	}{{
		cells:  10000,
		fpRate: 0.01,
	}, {
		cells:  100000,
		fpRate: 0.01,
	}, {
		cells:  100000,
		fpRate: 0.0001,
	}}

	for benchIdx := range benches {
		bench := benches[benchIdx]
		benchName := fmt.Sprintf("cells=%d/fprate=%0.4f", bench.cells,
			bench.fpRate)
		b.Run(benchName, func(b *testing.B) {
			filter, err := NewDefaultFilter(bench.cells, bench.fpRate)
			if err != nil {
				b.Fatalf("unexpected error creating filter: %v", err)
			}

			b.ResetTimer()
			b.ReportAllocs()
			var data [4]byte
			for i := 0; i < b.N; i++ {
				binary.LittleEndian.PutUint32(data[:], uint32(i))
				filter.TestAndAdd(data[:])
			}
		})
	}
}

// BenchmarkNewFilter benchmarks creating stable filters for various cell
// counts and false positive rates.
func BenchmarkNewFilter(b *testing.B) {
	benches := []struct {
		cells  uint    // number of cells
		fpRate float64 // target false positive rate
	}{{
		cells:  10000,
		fpRate: 0.01,
	}, {
		cells:  100000,
		fpRate: 0.01,
	}, {
		cells:  1000000,
		fpRate: 0.0001,
	}}

	var noElide *StableFilter
	for benchIdx := range benches {
		bench := benches[benchIdx]
		benchName := fmt.Sprintf("cells=%d/fprate=%0.4f", bench.cells,
			bench.fpRate)
		b.Run(benchName, func(b *testing.B) {
			b.ResetTimer()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				noElide, _ = NewDefaultFilter(bench.cells, bench.fpRate)
			}
		})
	}
	_ = noElide
}

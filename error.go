// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package sbf

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidBucketSize indicates an attempt to create a bucket array
	// with a per-bucket bit width of zero or more than 8 bits.
	ErrInvalidBucketSize = ErrorKind("ErrInvalidBucketSize")

	// ErrInvalidCellCount indicates an attempt to create a bucket array or
	// filter with zero cells.
	ErrInvalidCellCount = ErrorKind("ErrInvalidCellCount")

	// ErrInvalidFPRate indicates an attempt to create a filter with a
	// target false positive rate that is not in the interval (0, 1).
	ErrInvalidFPRate = ErrorKind("ErrInvalidFPRate")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to creating a bucket array or filter.  It
// has full support for errors.Is and errors.As, so the caller can ascertain
// the specific reason for the error by checking the underlying error.
type Error struct {
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

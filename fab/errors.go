// SPDX-License-Identifier: MIT

package fab

import "errors"

// Sentinel errors for fab operations. Callers match them with errors.Is.
var (
	// ErrBadShape indicates a non-positive component count, a negative ghost
	// depth or an empty box at construction time.
	ErrBadShape = errors.New("fab: invalid shape")

	// ErrDimensionMismatch indicates incompatible component ranges or box arrays
	// between source and destination.
	ErrDimensionMismatch = errors.New("fab: dimension mismatch")

	// ErrOutOfRange indicates a checked access outside the allocated box.
	ErrOutOfRange = errors.New("fab: index out of range")

	// ErrBadWorkers indicates a non-positive worker count.
	ErrBadWorkers = errors.New("fab: worker count must be > 0")
)

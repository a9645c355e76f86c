// SPDX-License-Identifier: MIT

package interp

import "errors"

var (
	// ErrBadRatio indicates a refinement ratio below 1.
	ErrBadRatio = errors.New("interp: refinement ratio must be >= 1")

	// ErrCoarseTooSmall indicates coarse data that does not cover the
	// stencil of the requested fine region.
	ErrCoarseTooSmall = errors.New("interp: coarse data does not cover stencil")

	// ErrTimeOrder indicates an inverted time bracket.
	ErrTimeOrder = errors.New("interp: old time after new time")
)

// SPDX-License-Identifier: MIT

package box

import "errors"

var (
	// ErrEmptyBox indicates an operation that needs at least one cell got an empty box.
	ErrEmptyBox = errors.New("box: empty box")

	// ErrBadChop indicates a non-positive maximum size passed to Chop.
	ErrBadChop = errors.New("box: max size must be > 0")
)

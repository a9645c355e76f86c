// SPDX-License-Identifier: MIT

package bc

import "errors"

var (
	// ErrUnknownType indicates an unrecognized boundary condition name.
	ErrUnknownType = errors.New("bc: unknown boundary type")

	// ErrBadValues indicates a value list that does not match the field.
	ErrBadValues = errors.New("bc: value count must be 1 or ncomp")
)

// SPDX-License-Identifier: MIT

package mesh

import "errors"

// Sentinel errors for mesh operations.
var (
	// ErrBadGeometry indicates an empty index domain or a degenerate physical box.
	ErrBadGeometry = errors.New("mesh: invalid geometry")

	// ErrBadClusterOptions indicates unusable clustering parameters.
	ErrBadClusterOptions = errors.New("mesh: invalid cluster options")
)

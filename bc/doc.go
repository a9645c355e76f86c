// SPDX-License-Identifier: MIT

// Package bc fills ghost cells that lie outside the physical domain.
//
// Constant applies one condition per domain face (XLo, XHi, YLo, YHi):
//
//   - Dirichlet: every ghost cell takes the face value.
//   - Neumann:   ghost cells mirror the interior across the face and add
//     value × distance, so value is the outward normal derivative
//     (zero gives a reflecting wall).
//
// X faces are filled first over the domain's j-range, then Y faces over
// the full i-range of the box, so corner ghosts are consistent.
//
// Errors:
//
//   - ErrUnknownType: unrecognized condition name.
//   - ErrBadValues:   value list length is neither 1 nor the component count.
package bc

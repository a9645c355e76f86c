// SPDX-License-Identifier: MIT

// Package interp moves field data between refinement levels.
//
// What:
//
//   - Interpolator fills fine cells from coarse data. PiecewiseConstant
//     injects the covering coarse value; CellConservativeLinear
//     reconstructs monotonized-central limited slopes, so the mean of the
//     fine cells inside a coarse cell equals the coarse value.
//   - AverageDown replaces covered coarse cells by the mean of the fine
//     cells above them.
//   - TimeInterp blends two generations of a field linearly in time.
//
// Interpolators read coarse data over CoarseBox(region); callers must
// provide it, ghost cells included.
//
// Complexity:
//
//   - Interp:      O(fine cells × n).
//   - AverageDown: O(fine cells × n) plus O(N·M) box pairing.
//   - TimeInterp:  O(cells).
//
// Errors:
//
//   - ErrBadRatio:     refinement ratio < 1.
//   - ErrCoarseTooSmall: the coarse box does not cover CoarseBox(region).
//   - ErrTimeOrder:    tOld > tNew.
package interp

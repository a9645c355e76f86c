// SPDX-License-Identifier: MIT

// Package fab provides ghost-cell-aware field storage for a refinement level.
//
// What:
//
//   - FArrayBox stores ncomp float64 components over one box grown by
//     nghost ghost cells, flat and component-major (all cells of component 0,
//     then component 1, ...), each component row-major with i fastest.
//   - MultiFab is one FArrayBox per box of a grid partition (box.Array),
//     with a DistributionMapping assigning boxes to workers.
//   - TagBox / TagMask are the byte-valued refinement markers produced by a
//     physics module during regridding.
//
// Parallelism:
//
//	MultiFab.ForEach runs one goroutine per worker of the distribution
//	mapping; each worker visits its own boxes in order. Callbacks must only
//	write into the FArrayBox they are handed. Reading other boxes' valid
//	regions is safe as long as no callback writes valid data in the same
//	pass (FillBoundary and ParallelCopy only write ghost or foreign regions).
//
// Complexity:
//
//   - NewMultiFab:    O(total cells × ncomp).
//   - FillBoundary:   O(N² + ghost cells) for N boxes.
//   - ParallelCopy:   O(N·M + copied cells).
//
// Errors:
//
//   - ErrBadShape:          non-positive component count, negative ghost depth, empty box.
//   - ErrDimensionMismatch: incompatible component ranges or box arrays.
//   - ErrOutOfRange:        checked access outside the allocated box.
package fab

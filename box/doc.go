// SPDX-License-Identifier: MIT

// Package box provides the 2D integer index space used by the AMR
// hierarchy: cell coordinates (IntVect), inclusive rectangular regions
// (Box) and unordered collections of disjoint boxes (Array).
//
// What:
//
//   - IntVect is a cell index (i, j); negative values are legal and appear
//     in ghost regions around the physical domain.
//   - Box is an inclusive [Lo, Hi] cell range. A Box with Hi < Lo in any
//     direction is empty.
//   - Array is a grid partition: a slice of boxes that are expected to be
//     pairwise disjoint.
//
// Refinement maps a coarse cell c to the fine cells [c*r, c*r+r-1];
// coarsening uses floor division so negative indices round toward -inf.
//
// Complexity:
//
//   - Box arithmetic:     O(1).
//   - Box.Index/Coordinate: O(1), row-major (i fastest).
//   - Array.Intersections: O(N) per query box.
//   - Diff:               O(1) per pair, at most 4 output boxes.
package box

// SPDX-License-Identifier: MIT

// Package mesh describes where a refinement level lives and how its grids
// are chosen.
//
// What:
//
//   - Geometry maps a level's index-space domain onto the physical
//     rectangle [ProbLo, ProbHi] and reports cell sizes and centers.
//   - MakeBaseGrids chops the coarsest domain into a partition obeying
//     the maximum grid size and blocking factor.
//   - Cluster turns the cells tagged on level k into the box partition of
//     level k+1: tags are buffered, restricted to the properly nested part
//     of level k, grouped into 8-connected clusters, split until each box
//     is efficient enough, aligned, made disjoint, refined and chopped.
//
// Complexity:
//
//   - MakeBaseGrids: O(k) for k output boxes.
//   - Cluster:       O(D·(2b+1)² + T log T) for a level domain of D cells,
//     buffer width b and T tagged cells.
//
// Errors:
//
//   - ErrBadGeometry: empty domain or ProbHi <= ProbLo.
//   - ErrBadClusterOptions: non-positive ratio, blocking factor or grid size,
//     efficiency outside (0, 1].
package mesh

// SPDX-License-Identifier: MIT

// Package ic provides initial conditions for cell-centered fields.
//
// Every IC fills all components of every cell of a MultiFab, ghost cells
// included, evaluated at cell centers of the level geometry.
//
//   - Constant: one value for all components or one value per component.
//   - Sphere:   Inside within Radius of Center, Outside elsewhere. With
//     Dim = 1 only the x distance counts (a slab).
//   - Ellipsoid: an axis-aligned ellipse with semi-axes Radii; Eps > 0
//     blends Inside into Outside through an erf interface.
package ic

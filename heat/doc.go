// SPDX-License-Identifier: MIT

// Package heat is an explicit heat-conduction physics module for the
// integrator engine.
//
// It evolves one conserved field Temp with
//
//	T_new = T_old + dt·α·∇²T_old
//
// using the five-point Laplacian, keeping the previous generation in
// Temp_old (swapped in place each step). Cells whose gradient times the
// cell diagonal exceeds RefinementThreshold are tagged for refinement.
// StableDt reports min(dx²)/(4α).
//
// Errors:
//
//   - ErrBadParams: non-positive diffusivity or negative threshold.
//   - ErrNoIC:      nil initial condition.
package heat

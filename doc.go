// SPDX-License-Identifier: MIT

// Package amr is a block-structured adaptive mesh refinement toolkit for
// explicit, subcycled time integration on 2D cell-centered grids.
//
// 🚀 What is amr?
//
//	A small, concurrent, pure-Go engine that brings together:
//		• Substrate: index boxes, box arrays, multi-component patch data
//		• Hierarchy: levels of nested grids refined by a fixed ratio
//		• Stepping: Berger–Oliger subcycling, coarse level first
//		• Ghost fill: same-level copy, coarse-fine interpolation in space and time
//		• Regridding: tag, buffer, cluster, nest, and re-fill without losing data
//		• Physics: a reference heat-equation module built on the engine hooks
//
// Under the hood, everything is organized in subpackages:
//
//	box/          IntVect, Box, Array: index-space geometry
//	fab/          FArrayBox, MultiFab, TagMask, worker distribution
//	mesh/         physical Geometry, base grids, tag clustering
//	interp/       coarse-to-fine interpolators, average-down, time interpolation
//	bc/           per-face Dirichlet/Neumann ghost filling
//	ic/           initial conditions (constant, sphere, ellipsoid)
//	integrator/   the AMR engine: field registry, levels, stepping, regrid
//	heat/         explicit heat equation physics module
//	config/       TOML and HCL input files
//	logging/      zerolog setup with AMR_LOG_* overrides
//	plotfile/     SQLite snapshot store
//	cmd/amrheat   command-line driver
//
// Quick ASCII picture of a two-level hierarchy (ratio 2):
//
//	level 0  ┌───────────────┐
//	         │   ┌───────┐   │
//	level 1  │   │ ▒▒▒▒▒ │   │   fine patch steps twice per coarse step,
//	         │   │ ▒▒▒▒▒ │   │   then averages down onto the cells it covers
//	         │   └───────┘   │
//	         └───────────────┘
//
// See integrator.Physics for the hooks a physics module implements.
package amr

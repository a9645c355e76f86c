// SPDX-License-Identifier: MIT

// Package integrator is a generic engine for explicit, subcycled time
// integration on a hierarchy of block-structured refinement levels.
//
// What:
//
//   - Field registry: physics modules register the fields they evolve
//     (RegisterField). The engine allocates, fills, remaps and frees their
//     per-level storage.
//   - Level hierarchy: level 0 covers the domain; level L+1 refines part of
//     level L by RefRatio and takes NSubsteps(L+1) steps per step of level L.
//   - Synchronizer (FillPatch): ghost cells are filled from same-level
//     neighbors, then from the next coarser level (interpolated in time and
//     space), then from the field's Boundary outside the physical domain.
//   - Subcycled stepper (TimeStep): Berger-Oliger recursion, coarse level
//     first, conservative average-down after the last fine substep.
//   - Regridder (Regrid): physics tags cells, tags become new grids, changed
//     levels are rebuilt from a staged generation committed all at once.
//   - Run loop (InitData, Evolve): initialization, timestep policy, plot and
//     regrid cadence.
//
// Physics modules implement Physics and, optionally, TimeStepBeginner,
// TimeStepCompleter and StableTimestepper. The engine discovers the optional
// hooks by type assertion.
//
// Parallelism:
//
//	Levels are processed strictly one after another. Within a level, box
//	loops run on the workers of the level's fab.DistributionMapping. The
//	engine holds no locks; an Integrator must be driven from one goroutine.
//
// Errors:
//
//   - ErrDuplicateField, ErrBadComponents, ErrBadGhost, ErrNilField,
//     ErrEmptyName, ErrRegistryClosed: registration errors.
//   - ErrBadConfig: Config.Validate failures.
//   - ErrTimeBracket: data requested outside a level's [TOld, TNew].
//   - ErrLevelNotActive: operation on a level that does not exist.
//   - ErrNoCoarseData: a cell inside the domain is covered by no level.
//   - ErrNoPhysics, ErrNotInitialized: lifecycle misuse.
//
// Physics errors are returned wrapped with level and hook name and abort the run.
package integrator

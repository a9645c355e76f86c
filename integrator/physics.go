// SPDX-License-Identifier: MIT

package integrator

import (
	"context"

	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

// Physics is the set of hooks every physics module implements.
type Physics interface {
	// Initialize fills the registered fields of a level created from scratch.
	Initialize(lev int) error
	// Advance moves the fields of lev from time to time+dt. Ghost cells of
	// every registered field are filled at TNew(lev) before the call.
	Advance(lev int, time, dt float64) error
	// TagCellsForRefinement marks cells of lev that need a finer level.
	// Ghost cells are filled; ngrow is the buffer the regridder will add.
	TagCellsForRefinement(lev int, tags *fab.TagMask, time float64, ngrow int) error
}

// TimeStepBeginner is called before every coarse step.
type TimeStepBeginner interface {
	TimeStepBegin(time float64, iter int) error
}

// TimeStepCompleter is called after every coarse step.
type TimeStepCompleter interface {
	TimeStepComplete(time float64, iter int) error
}

// StableTimestepper reports the largest stable timestep of a level.
type StableTimestepper interface {
	StableDt(lev int) float64
}

// Boundary fills the ghost cells of f that lie outside geom.Domain.
// One Boundary may serve several fields.
type Boundary interface {
	FillBoundary(f *fab.FArrayBox, geom mesh.Geometry, time float64) error
}

// PlotWriter persists snapshots.
type PlotWriter interface {
	WritePlot(ctx context.Context, s *Snapshot) error
}

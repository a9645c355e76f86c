package integrator

import (
	"fmt"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

// LevelStatus is the lifecycle stage of a level.
type LevelStatus int

const (
	// Uninitialized levels have never existed.
	Uninitialized LevelStatus = iota
	// Active levels hold data and take part in time stepping.
	Active
	// Remade levels were rebuilt by the last regrid and have not stepped
	// since. They are otherwise treated as active.
	Remade
	// Destroyed levels existed once and were removed.
	Destroyed
)

var statusNames = [...]string{"uninitialized", "active", "remade", "destroyed"}

// String implements fmt.Stringer.
func (s LevelStatus) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("LevelStatus(%d)", int(s))
}

// LevelState is the read-only view of one level's timing and lifecycle.
type LevelState struct {
	Status    LevelStatus
	TNew      float64
	TOld      float64
	Dt        float64
	Step      int
	NSubsteps int
}

// live reports whether the level holds data.
func (s LevelState) live() bool {
	return s.Status == Active || s.Status == Remade
}

// level is the engine's record of one refinement level.
type level struct {
	LevelState
	ba  box.Array
	dm  fab.DistributionMapping
	old []*fab.MultiFab // per field: data at TOld, nil until first needed
}

// validLevel returns ErrLevelNotActive unless lev holds data.
func (it *Integrator) validLevel(lev int) error {
	if lev < 0 || lev > it.finest || !it.levels[lev].live() {
		return fmt.Errorf("level %d (finest %d): %w", lev, it.finest, ErrLevelNotActive)
	}
	return nil
}

// Level returns the state of lev. Levels outside [0, MaxLevel] report Uninitialized.
func (it *Integrator) Level(lev int) LevelState {
	if lev < 0 || lev >= len(it.levels) {
		return LevelState{}
	}
	return it.levels[lev].LevelState
}

// Geom returns the geometry of lev. Levels outside [0, MaxLevel] report
// the zero Geometry.
func (it *Integrator) Geom(lev int) mesh.Geometry {
	if lev < 0 || lev >= len(it.geom) {
		return mesh.Geometry{}
	}
	return it.geom[lev]
}

// BoxArray returns the grid partition of lev (nil if the level has no data).
func (it *Integrator) BoxArray(lev int) box.Array {
	if it.validLevel(lev) != nil {
		return nil
	}
	return it.levels[lev].ba
}

// DistributionMap returns the worker assignment of lev (zero if the level
// has no data).
func (it *Integrator) DistributionMap(lev int) fab.DistributionMapping {
	if it.validLevel(lev) != nil {
		return fab.DistributionMapping{}
	}
	return it.levels[lev].dm
}

// The clock accessors below read through Level, so they report zero for
// levels outside [0, MaxLevel].

// TNew returns the time of the newest data of lev.
func (it *Integrator) TNew(lev int) float64 { return it.Level(lev).TNew }

// TOld returns the time of the previous data of lev.
func (it *Integrator) TOld(lev int) float64 { return it.Level(lev).TOld }

// Dt returns the timestep of lev.
func (it *Integrator) Dt(lev int) float64 { return it.Level(lev).Dt }

// Step returns the number of steps lev has taken.
func (it *Integrator) Step(lev int) int { return it.Level(lev).Step }

// NSubsteps returns the steps lev takes per step of lev-1 (1 for level 0).
func (it *Integrator) NSubsteps(lev int) int { return it.Level(lev).NSubsteps }

// FinestLevel returns the finest level holding data.
func (it *Integrator) FinestLevel() int { return it.finest }

// MaxLevel returns the finest level allowed.
func (it *Integrator) MaxLevel() int { return it.cfg.MaxLevel }

// RefRatio returns the refinement ratio between lev and lev+1.
func (it *Integrator) RefRatio(int) int { return it.cfg.RefRatio }

// CountCells returns the number of valid cells of lev (0 if it has no data).
func (it *Integrator) CountCells(lev int) int {
	return it.BoxArray(lev).NumPts()
}

// allocate builds storage for every field over ba.
func (it *Integrator) allocate(ba box.Array, dm fab.DistributionMapping) ([]*fab.MultiFab, error) {
	out := make([]*fab.MultiFab, len(it.fields))
	for i, e := range it.fields {
		mf, err := fab.NewMultiFab(ba, dm, e.ncomp, e.nghost)
		if err != nil {
			return nil, fmt.Errorf("allocate %q: %w", e.name, err)
		}
		out[i] = mf
	}
	return out, nil
}

// install makes data the storage of lev and marks the level live.
func (it *Integrator) install(lev int, ba box.Array, dm fab.DistributionMapping, data []*fab.MultiFab, status LevelStatus) {
	l := &it.levels[lev]
	l.ba, l.dm = ba, dm
	l.old = make([]*fab.MultiFab, len(it.fields))
	l.Status = status
	for i, e := range it.fields {
		e.f.mf[lev] = data[i]
	}
}

// destroy releases the storage of lev.
func (it *Integrator) destroy(lev int) {
	l := &it.levels[lev]
	for _, e := range it.fields {
		e.f.mf[lev] = nil
	}
	l.ba, l.old = nil, nil
	l.dm = fab.DistributionMapping{}
	l.Status = Destroyed
	it.log.Info().Int("level", lev).Msg("level destroyed")
}

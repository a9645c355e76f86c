// SPDX-License-Identifier: MIT

package integrator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/mesh"
)

// Integrator drives a hierarchy of refinement levels through time.
type Integrator struct {
	cfg    Config
	phys   Physics
	opts   options
	log    zerolog.Logger
	nsub   []int
	geom   []mesh.Geometry // per level 0..MaxLevel
	levels []level         // per level 0..MaxLevel

	fields []*entry
	byName map[string]*entry
	closed bool // registry closed by InitData

	finest   int
	step     int
	time     float64
	lastPlot int // coarse step of the last snapshot, -1 if none
}

// New validates cfg and returns an Integrator driving phys. Fields are
// registered afterwards; InitData builds the hierarchy.
// Complexity: O(MaxLevel).
func New(cfg Config, phys Physics, opts ...Option) (*Integrator, error) {
	if phys == nil {
		return nil, ErrNoPhysics
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	domain := box.FromSize(box.IntVect{0, 0}, cfg.NCell[0], cfg.NCell[1])
	g0, err := mesh.NewGeometry(domain, cfg.ProbLo, cfg.ProbHi)
	if err != nil {
		return nil, fmt.Errorf("New: %w", err)
	}
	geom := make([]mesh.Geometry, cfg.MaxLevel+1)
	geom[0] = g0
	for lev := 1; lev <= cfg.MaxLevel; lev++ {
		geom[lev] = geom[lev-1].Refine(cfg.RefRatio)
	}

	it := &Integrator{
		cfg:      cfg,
		phys:     phys,
		opts:     o,
		log:      o.log,
		nsub:     cfg.substeps(),
		geom:     geom,
		levels:   make([]level, cfg.MaxLevel+1),
		byName:   make(map[string]*entry),
		finest:   -1,
		lastPlot: -1,
	}
	for lev := range it.levels {
		it.levels[lev].NSubsteps = it.nsub[lev]
	}
	return it, nil
}

// Config returns the run configuration.
func (it *Integrator) Config() Config { return it.cfg }

// Logger returns the engine's logger so physics modules can share it.
func (it *Integrator) Logger() zerolog.Logger { return it.log }

// Time returns the current coarse simulation time.
func (it *Integrator) Time() float64 { return it.time }

// CurrentStep returns the number of completed coarse steps.
func (it *Integrator) CurrentStep() int { return it.step }

// Close releases the storage of every level. The Integrator must not be
// used afterwards.
func (it *Integrator) Close() error {
	for lev := it.finest; lev >= 0; lev-- {
		it.destroy(lev)
	}
	it.finest = -1
	return nil
}

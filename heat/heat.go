package heat

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/ic"
	"github.com/katalvlaran/amr/integrator"
)

var (
	// ErrBadParams indicates invalid physical parameters.
	ErrBadParams = errors.New("heat: invalid parameters")

	// ErrNoIC indicates a nil initial condition.
	ErrNoIC = errors.New("heat: initial condition is nil")
)

// Field names as registered with the engine.
const (
	TempName    = "Temp"
	TempOldName = "Temp_old"
)

// Params are the physical parameters.
type Params struct {
	Alpha               float64 // thermal diffusivity
	RefinementThreshold float64 // tag when |∇T|·|dx| exceeds this
}

// DefaultParams returns α = 1 and threshold 0.01.
func DefaultParams() Params {
	return Params{Alpha: 1, RefinementThreshold: 0.01}
}

// Validate reports invalid parameters.
func (p Params) Validate() error {
	if !(p.Alpha > 0) || math.IsInf(p.Alpha, 0) {
		return fmt.Errorf("alpha %g must be positive and finite: %w", p.Alpha, ErrBadParams)
	}
	if !(p.RefinementThreshold >= 0) {
		return fmt.Errorf("refinement_threshold %g must be >= 0: %w", p.RefinementThreshold, ErrBadParams)
	}
	return nil
}

// Heat is the physics module. Temp and TempOld are owned by the engine.
type Heat struct {
	it     *integrator.Integrator
	params Params
	init   ic.IC

	Temp    integrator.Field
	TempOld integrator.Field
}

// New builds the engine around a Heat module and registers Temp and
// Temp_old with bndry (nil leaves physical ghosts untouched).
func New(cfg integrator.Config, p Params, init ic.IC, bndry integrator.Boundary, opts ...integrator.Option) (*Heat, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if init == nil {
		return nil, ErrNoIC
	}
	h := &Heat{params: p, init: init}
	it, err := integrator.New(cfg, h, opts...)
	if err != nil {
		return nil, err
	}
	if err := it.RegisterField(&h.Temp, bndry, 1, 1, TempName, true); err != nil {
		return nil, err
	}
	if err := it.RegisterField(&h.TempOld, bndry, 1, 1, TempOldName, false); err != nil {
		return nil, err
	}
	h.it = it
	return h, nil
}

// Integrator returns the engine driving h.
func (h *Heat) Integrator() *integrator.Integrator { return h.it }

// Params returns the physical parameters.
func (h *Heat) Params() Params { return h.params }

// Initialize fills Temp and Temp_old of lev from the initial condition.
func (h *Heat) Initialize(lev int) error {
	geom := h.it.Geom(lev)
	if err := h.init.Fill(h.Temp.Level(lev), geom); err != nil {
		return err
	}
	return h.init.Fill(h.TempOld.Level(lev), geom)
}

// Advance swaps the generations and takes one forward Euler step.
func (h *Heat) Advance(lev int, _, dt float64) error {
	cur, old := h.Temp.Level(lev), h.TempOld.Level(lev)
	fab.Swap(cur, old)

	dx := h.it.Geom(lev).CellSize()
	idx2, idy2 := 1/(dx[0]*dx[0]), 1/(dx[1]*dx[1])
	k := dt * h.params.Alpha
	return cur.ForEach(func(b int, t *fab.FArrayBox) error {
		to := old.Fab(b)
		v := t.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				c := to.At(box.IntVect{i, j}, 0)
				lap := (to.At(box.IntVect{i + 1, j}, 0)+to.At(box.IntVect{i - 1, j}, 0)-2*c)*idx2 +
					(to.At(box.IntVect{i, j + 1}, 0)+to.At(box.IntVect{i, j - 1}, 0)-2*c)*idy2
				t.Set(box.IntVect{i, j}, 0, c+k*lap)
			}
		}
		return nil
	})
}

// TagCellsForRefinement tags cells with a steep central-difference gradient.
func (h *Heat) TagCellsForRefinement(lev int, tags *fab.TagMask, _ float64, _ int) error {
	temp := h.Temp.Level(lev)
	dx := h.it.Geom(lev).CellSize()
	dr := math.Hypot(dx[0], dx[1])
	return tags.ForEach(func(b int, tb *fab.TagBox) error {
		t := temp.Fab(b)
		v := t.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				gx := (t.At(box.IntVect{i + 1, j}, 0) - t.At(box.IntVect{i - 1, j}, 0)) / (2 * dx[0])
				gy := (t.At(box.IntVect{i, j + 1}, 0) - t.At(box.IntVect{i, j - 1}, 0)) / (2 * dx[1])
				if math.Hypot(gx, gy)*dr > h.params.RefinementThreshold {
					tb.Set(box.IntVect{i, j})
				}
			}
		}
		return nil
	})
}

// StableDt implements integrator.StableTimestepper.
func (h *Heat) StableDt(lev int) float64 {
	dx := h.it.Geom(lev).CellSize()
	return math.Min(dx[0]*dx[0], dx[1]*dx[1]) / (4 * h.params.Alpha)
}

// TimeStepComplete logs the temperature range of level 0.
func (h *Heat) TimeStepComplete(time float64, iter int) error {
	t := h.Temp.Level(0)
	log := h.it.Logger()
	log.Debug().Int("step", iter).Float64("time", time).
		Float64("tmin", t.Min(0)).Float64("tmax", t.Max(0)).Int("finest", h.it.FinestLevel()).Msg("heat step")
	return nil
}

package integrator

import (
	"fmt"

	"github.com/katalvlaran/amr/interp"
)

// TimeStep advances lev by Dt(lev) starting at time, then recursively
// subcycles every finer level up to the same time.
//
// Stage 1 (Validate): lev holds data.
// Stage 2 (Snapshot): if finer levels exist, keep the current data as the
// TOld generation they interpolate against; the finest level keeps none.
// Stage 3 (Advance): fill ghosts at TNew, call Advance, shift the clock.
// Stage 4 (Subcycle): NSubsteps(lev+1) steps of lev+1, then average the
// fine data of every conserved field down onto lev.
//
// iteration is the 1-based substep index within the parent step.
func (it *Integrator) TimeStep(lev int, time float64, iteration int) error {
	if err := it.validLevel(lev); err != nil {
		return fmt.Errorf("TimeStep: %w", err)
	}
	l := &it.levels[lev]

	for i, e := range it.fields {
		if lev == it.finest {
			l.old[i] = nil
			continue
		}
		cur := e.f.mf[lev]
		if l.old[i] == nil || l.old[i].Copy(cur) != nil {
			l.old[i] = cur.Clone()
		}
	}

	if err := it.fillGhosts(lev); err != nil {
		return err
	}
	l.Status = Active

	it.log.Debug().Int("level", lev).Int("iteration", iteration).Int("step", l.Step).
		Float64("time", time).Float64("dt", l.Dt).Int("cells", l.ba.NumPts()).Msg("advance")
	if err := it.phys.Advance(lev, time, l.Dt); err != nil {
		return fmt.Errorf("level %d: Advance: %w", lev, err)
	}
	l.TOld = l.TNew
	l.TNew += l.Dt
	l.Step++

	if lev < it.finest {
		fine := lev + 1
		dtf := it.levels[fine].Dt
		for i := 1; i <= it.nsub[fine]; i++ {
			if err := it.TimeStep(fine, time+float64(i-1)*dtf, i); err != nil {
				return err
			}
		}
		// Substeps sum to Dt(lev) up to rounding; keep the clocks identical.
		it.levels[fine].TNew = l.TNew
		if err := it.averageDown(lev); err != nil {
			return err
		}
	}
	return nil
}

// averageDown replaces covered cells of lev by the mean of lev+1 for every
// conserved field.
func (it *Integrator) averageDown(lev int) error {
	it.log.Debug().Int("level", lev).Msg("average down")
	for _, e := range it.fields {
		if !e.conserve {
			continue
		}
		if err := interp.AverageDown(e.f.mf[lev+1], e.f.mf[lev], it.cfg.RefRatio, 0, e.ncomp); err != nil {
			return fmt.Errorf("average down %q onto level %d: %w", e.name, lev, err)
		}
	}
	return nil
}

// setTimesteps sets Dt of every level from the coarse timestep.
func (it *Integrator) setTimesteps(dt0 float64) {
	it.levels[0].Dt = dt0
	for lev := 1; lev <= it.cfg.MaxLevel; lev++ {
		it.levels[lev].Dt = it.levels[lev-1].Dt / float64(it.nsub[lev])
	}
}

package integrator

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

// InitData closes the field registry and builds the initial hierarchy:
// level 0 over the whole domain, then finer levels created from tags on
// the level below, each initialized from scratch by the physics module.
// A step-0 snapshot is written when plotting is enabled.
func (it *Integrator) InitData(ctx context.Context) error {
	if it.closed {
		return fmt.Errorf("InitData: %w", ErrRegistryClosed)
	}
	it.closed = true

	ba, err := mesh.MakeBaseGrids(it.geom[0].Domain, it.cfg.MaxGridSize, it.cfg.BlockingFactor)
	if err != nil {
		return fmt.Errorf("InitData: %w", err)
	}
	if err := it.makeFromScratch(0, ba); err != nil {
		return fmt.Errorf("InitData: %w", err)
	}

	for lev := 0; lev < it.cfg.MaxLevel; lev++ {
		fine, err := it.tagAndCluster(lev, it.levels[lev].ba, 0)
		if err != nil {
			return fmt.Errorf("InitData: %w", err)
		}
		if len(fine) == 0 {
			break
		}
		if err := it.makeFromScratch(lev+1, fine); err != nil {
			return fmt.Errorf("InitData: %w", err)
		}
	}

	it.log.Info().Int("finest", it.finest).Int("fields", len(it.fields)).Int("cells0", it.CountCells(0)).Msg("hierarchy initialized")
	if it.cfg.PlotInt > 0 {
		return it.writePlot(ctx)
	}
	return nil
}

// makeFromScratch creates lev over ba and calls Initialize.
func (it *Integrator) makeFromScratch(lev int, ba box.Array) error {
	dm, err := fab.NewDistributionMapping(ba, it.cfg.Workers)
	if err != nil {
		return err
	}
	data, err := it.allocate(ba, dm)
	if err != nil {
		return err
	}
	it.install(lev, ba, dm, data, Active)
	l := &it.levels[lev]
	l.TNew, l.TOld, l.Step = 0, 0, 0
	it.finest = max(it.finest, lev)
	if err := it.phys.Initialize(lev); err != nil {
		return fmt.Errorf("level %d: Initialize: %w", lev, err)
	}
	it.log.Info().Int("level", lev).Int("boxes", len(ba)).Int("cells", ba.NumPts()).Msg("level created")
	return nil
}

// Evolve runs coarse steps until MaxStep steps are done or StopTime is
// reached. Every step: TimeStepBegin, timestep selection, TimeStep(0),
// TimeStepComplete, plot and regrid on their cadence. A final snapshot is
// written if plotting is enabled and the last step was not plotted.
// ctx is handed to the PlotWriter.
func (it *Integrator) Evolve(ctx context.Context) error {
	if it.finest < 0 {
		return fmt.Errorf("Evolve: %w", ErrNotInitialized)
	}
	for it.step < it.cfg.MaxStep && it.time < it.cfg.StopTime && !near(it.time, it.cfg.StopTime) {
		if b, ok := it.phys.(TimeStepBeginner); ok {
			if err := b.TimeStepBegin(it.time, it.step); err != nil {
				return fmt.Errorf("step %d: TimeStepBegin: %w", it.step, err)
			}
		}

		dt := it.coarseTimestep()
		it.setTimesteps(dt)
		it.log.Debug().Int("step", it.step).Float64("time", it.time).Float64("dt", dt).Msg("coarse step")
		if err := it.TimeStep(0, it.time, 1); err != nil {
			return fmt.Errorf("step %d: %w", it.step, err)
		}

		if c, ok := it.phys.(TimeStepCompleter); ok {
			if err := c.TimeStepComplete(it.time, it.step); err != nil {
				return fmt.Errorf("step %d: TimeStepComplete: %w", it.step, err)
			}
		}
		it.step++
		it.time = it.levels[0].TNew

		if it.cfg.PlotInt > 0 && it.step%it.cfg.PlotInt == 0 {
			if err := it.writePlot(ctx); err != nil {
				return err
			}
		}
		if it.cfg.RegridInt > 0 && it.step%it.cfg.RegridInt == 0 && it.cfg.MaxLevel > 0 {
			if err := it.Regrid(0, it.time); err != nil {
				return fmt.Errorf("step %d: %w", it.step, err)
			}
		}
	}

	if it.cfg.PlotInt > 0 && it.lastPlot != it.step {
		return it.writePlot(ctx)
	}
	return nil
}

// coarseTimestep returns Timestep, limited by the physics module's stable
// timesteps scaled to level 0 and clipped so the step ends at StopTime.
func (it *Integrator) coarseTimestep() float64 {
	dt := it.cfg.Timestep
	if s, ok := it.phys.(StableTimestepper); ok {
		scale := 1.0
		for lev := 0; lev <= it.finest; lev++ {
			if lev > 0 {
				scale *= float64(it.nsub[lev])
			}
			if sd := s.StableDt(lev); sd > 0 && !math.IsInf(sd, 0) {
				dt = math.Min(dt, sd*scale)
			}
		}
	}
	if rem := it.cfg.StopTime - it.time; rem > 0 && dt > rem {
		dt = rem
	}
	return dt
}

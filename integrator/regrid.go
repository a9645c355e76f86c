package integrator

import (
	"fmt"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

// Regrid rebuilds levels lbase+1 and finer from fresh refinement tags.
//
// Stage 1 (Tag): every live level k in [lbase, min(finest, MaxLevel-1)]
// gets its ghosts filled and its cells tagged by the physics module; the
// tags become the grids of level k+1 (see mesh.Cluster). The first level
// with no tags ends the hierarchy.
// Stage 2 (Stage): levels with unchanged grids are left alone. Changed
// levels get new storage filled from their old data and the coarser level;
// new levels are filled from the coarser level only.
// Stage 3 (Commit): staged levels replace the old ones and levels above
// the new finest are destroyed. Nothing changes if any fill fails.
//
// Regrid never changes simulation time.
func (it *Integrator) Regrid(lbase int, time float64) error {
	if err := it.validLevel(lbase); err != nil {
		return fmt.Errorf("Regrid: %w", err)
	}
	if lbase >= it.cfg.MaxLevel {
		return nil
	}

	grids, newFinest, err := it.makeNewGrids(lbase, time)
	if err != nil {
		return fmt.Errorf("Regrid: %w", err)
	}

	v := &view{it: it, stage: make(map[int]*staged)}
	for lev := lbase + 1; lev <= newFinest; lev++ {
		existing := lev <= it.finest
		if existing && grids[lev].Equal(it.levels[lev].ba) {
			continue
		}
		s, err := it.stageLevel(v, lev, grids[lev], existing)
		if err != nil {
			return fmt.Errorf("Regrid: %w", err)
		}
		v.stage[lev] = s
	}

	it.commit(v.stage, newFinest)
	ev := it.log.Info().Int("lbase", lbase).Int("finest", it.finest).Float64("time", time)
	for lev := 0; lev <= it.finest; lev++ {
		ev = ev.Int(fmt.Sprintf("cells%d", lev), it.CountCells(lev))
	}
	ev.Msg("regrid")
	return nil
}

// makeNewGrids tags levels lbase.. and clusters the tags. grids[k] holds
// the partition of level k for k <= newFinest.
func (it *Integrator) makeNewGrids(lbase int, time float64) (grids []box.Array, newFinest int, err error) {
	grids = make([]box.Array, it.cfg.MaxLevel+1)
	for k := 0; k <= lbase; k++ {
		grids[k] = it.levels[k].ba
	}
	newFinest = lbase
	top := min(it.finest, it.cfg.MaxLevel-1)

	for k := lbase; k <= top; k++ {
		ba, err := it.tagAndCluster(k, grids[k], time)
		if err != nil {
			return nil, 0, err
		}
		if len(ba) == 0 {
			break
		}
		grids[k+1] = ba
		newFinest = k + 1
	}
	return grids, newFinest, nil
}

// tagAndCluster asks the physics module for tags on level k and returns
// the level k+1 grids nested in nest.
func (it *Integrator) tagAndCluster(k int, nest box.Array, time float64) (box.Array, error) {
	if err := it.fillGhosts(k); err != nil {
		return nil, err
	}
	l := &it.levels[k]
	tags, err := fab.NewTagMask(l.ba, l.dm)
	if err != nil {
		return nil, err
	}
	if err := it.phys.TagCellsForRefinement(k, tags, time, it.cfg.NErrorBuf); err != nil {
		return nil, fmt.Errorf("level %d: TagCellsForRefinement: %w", k, err)
	}
	ba, err := mesh.Cluster(tags.Collate(), mesh.ClusterOptions{
		Domain:         it.geom[k].Domain,
		Nest:           nest,
		NProper:        it.cfg.NProper,
		NErrorBuf:      it.cfg.NErrorBuf,
		RefRatio:       it.cfg.RefRatio,
		BlockingFactor: it.cfg.BlockingFactor,
		MaxGridSize:    it.cfg.MaxGridSize,
		GridEff:        it.cfg.GridEff,
	})
	if err != nil {
		return nil, fmt.Errorf("level %d: %w", k, err)
	}
	it.log.Debug().Int("level", k).Int("tagged", tags.NumTagged()).Int("boxes", len(ba)).Msg("tagged")
	return ba, nil
}

// stageLevel allocates and fills a new generation of lev over ba.
// Existing levels fill from their old data first; new levels inherit
// their time from the coarser level.
func (it *Integrator) stageLevel(v *view, lev int, ba box.Array, existing bool) (*staged, error) {
	dm, err := fab.NewDistributionMapping(ba, it.cfg.Workers)
	if err != nil {
		return nil, err
	}
	data, err := it.allocate(ba, dm)
	if err != nil {
		return nil, err
	}
	t := it.levels[lev-1].TNew
	if existing {
		t = it.levels[lev].TNew
	}
	for fi, mf := range data {
		if err := it.fill(v, lev, t, fi, mf); err != nil {
			return nil, fmt.Errorf("stage level %d %q: %w", lev, it.fields[fi].name, err)
		}
	}
	return &staged{ba: ba, dm: dm, data: data}, nil
}

// commit installs staged levels in ascending order and destroys levels
// above newFinest.
func (it *Integrator) commit(stage map[int]*staged, newFinest int) {
	for lev := 1; lev <= it.cfg.MaxLevel; lev++ {
		s, ok := stage[lev]
		if !ok {
			continue
		}
		if lev <= it.finest {
			it.install(lev, s.ba, s.dm, s.data, Remade)
			it.log.Info().Int("level", lev).Int("boxes", len(s.ba)).Int("cells", s.ba.NumPts()).Msg("level remade")
			continue
		}
		c := &it.levels[lev-1]
		l := &it.levels[lev]
		it.install(lev, s.ba, s.dm, s.data, Active)
		l.TNew, l.TOld = c.TNew, c.TOld
		l.Step = c.Step * it.nsub[lev]
		l.Dt = c.Dt / float64(it.nsub[lev])
		it.log.Info().Int("level", lev).Int("boxes", len(s.ba)).Int("cells", s.ba.NumPts()).Msg("level created")
	}
	for lev := it.finest; lev > newFinest; lev-- {
		it.destroy(lev)
	}
	it.finest = newFinest
}

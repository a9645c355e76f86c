package integrator

import (
	"fmt"
	"math"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/interp"
)

// staged is a level generation built by Regrid but not yet committed.
type staged struct {
	ba   box.Array
	dm   fab.DistributionMapping
	data []*fab.MultiFab // per field
}

// view is the hierarchy seen by a fill: committed levels, optionally
// overridden by staged generations.
type view struct {
	it    *Integrator
	stage map[int]*staged
}

// committed returns a view of the committed hierarchy only.
func (it *Integrator) committed() *view { return &view{it: it} }

// grids returns the partition of lev in v, nil if lev has no data.
func (v *view) grids(lev int) box.Array {
	if s, ok := v.stage[lev]; ok {
		return s.ba
	}
	if v.it.validLevel(lev) != nil {
		return nil
	}
	return v.it.levels[lev].ba
}

// within reports whether t lies in [lo, hi] up to rounding.
func within(t, lo, hi float64) bool {
	tol := 1e-12 * math.Max(1, math.Max(math.Abs(lo), math.Abs(hi)))
	return t >= lo-tol && t <= hi+tol
}

// near reports whether a and b agree up to rounding.
func near(a, b float64) bool {
	return within(a, b, b)
}

// source returns field fi of lev at time t, time-interpolated if needed.
// It returns nil when lev has no data in v. Times before TNew need the
// TOld generation, which only levels below the finest keep.
func (v *view) source(lev, fi int, t float64) (*fab.MultiFab, error) {
	if s, ok := v.stage[lev]; ok {
		return s.data[fi], nil
	}
	if v.it.validLevel(lev) != nil {
		return nil, nil
	}
	l := &v.it.levels[lev]
	cur := v.it.fields[fi].f.mf[lev]
	if !within(t, l.TOld, l.TNew) {
		return nil, fmt.Errorf("level %d: time %.17g outside [%.17g, %.17g]: %w", lev, t, l.TOld, l.TNew, ErrTimeBracket)
	}
	old := l.old[fi]
	switch {
	case near(t, l.TNew):
		return cur, nil
	case old == nil:
		return nil, fmt.Errorf("level %d: time %.17g before TNew %.17g and no TOld data kept: %w", lev, t, l.TNew, ErrTimeBracket)
	case near(t, l.TOld):
		return old, nil
	}
	tmp := cur.Clone()
	if err := interp.TimeInterp(tmp, old, cur, l.TOld, l.TNew, t); err != nil {
		return nil, fmt.Errorf("level %d: %w", lev, err)
	}
	return tmp, nil
}

// FillPatch returns a copy of field f on lev at time with every ghost
// layer filled. time must lie in [TOld(lev), TNew(lev)]; on the finest
// level only TNew is available.
// Complexity: O(cells of lev and of the coarse patches it reads).
func (it *Integrator) FillPatch(lev int, time float64, f *Field) (*fab.MultiFab, error) {
	if f == nil || f.e == nil || it.byName[f.e.name] != f.e {
		return nil, fmt.Errorf("FillPatch: %w", ErrUnknownField)
	}
	if err := it.validLevel(lev); err != nil {
		return nil, fmt.Errorf("FillPatch: %w", err)
	}
	src := f.mf[lev]
	dst, err := fab.NewMultiFab(src.BoxArray(), src.DistributionMap(), src.NComp(), src.NGhost())
	if err != nil {
		return nil, fmt.Errorf("FillPatch: %w", err)
	}
	if err := it.fill(it.committed(), lev, time, f.e.index, dst); err != nil {
		return nil, fmt.Errorf("FillPatch(level %d, %q): %w", lev, f.e.name, err)
	}
	return dst, nil
}

// fillGhosts fills the ghost cells of every field of lev in place at TNew.
func (it *Integrator) fillGhosts(lev int) error {
	t := it.levels[lev].TNew
	for _, e := range it.fields {
		if err := it.fill(it.committed(), lev, t, e.index, e.f.mf[lev]); err != nil {
			return fmt.Errorf("fill ghosts (level %d, %q): %w", lev, e.name, err)
		}
	}
	return nil
}

// patch is a fine region of one destination box to interpolate from coarse.
type patch struct {
	dst    int
	region box.Box
}

// fill writes field fi at time t into every cell (valid and ghost) of dst,
// whose boxes live in lev's index space. dst may be the level's own storage,
// in which case only ghost cells change.
//
// Stage 1 (Same level): copy valid data of lev.
// Stage 2 (Coarse): cells inside the domain still uncovered are
// interpolated from a coarse patch, itself filled recursively at lev-1.
// Stage 3 (Boundary): cells outside the domain come from the Boundary.
func (it *Integrator) fill(v *view, lev int, t float64, fi int, dst *fab.MultiFab) error {
	e := it.fields[fi]
	geom := it.geom[lev]
	ng := dst.NGhost()

	src, err := v.source(lev, fi, t)
	if err != nil {
		return err
	}
	var srcBA box.Array
	if src != nil {
		srcBA = src.BoxArray()
		if err := dst.ParallelCopy(src, 0, 0, e.ncomp, ng); err != nil {
			return fmt.Errorf("level %d same-level copy: %w", lev, err)
		}
	}

	// Uncovered in-domain regions, box by box.
	var patches []patch
	for i := 0; i < dst.Len(); i++ {
		region := dst.Fab(i).Box().Intersect(geom.Domain)
		var cover []box.Box
		for _, j := range srcBA.Intersections(region) {
			cover = append(cover, srcBA[j])
		}
		for _, r := range box.DiffAll(region, cover) {
			patches = append(patches, patch{dst: i, region: r})
		}
	}
	if len(patches) > 0 {
		if lev == 0 {
			return fmt.Errorf("level 0 region %v: %w", patches[0].region, ErrNoCoarseData)
		}
		if err := it.fillFromCoarse(v, lev, t, fi, dst, patches); err != nil {
			return err
		}
	}

	if e.bndry == nil {
		return nil
	}
	return dst.ForEach(func(_ int, f *fab.FArrayBox) error {
		if geom.Domain.ContainsBox(f.Box()) {
			return nil
		}
		return e.bndry.FillBoundary(f, geom, t)
	})
}

// fillFromCoarse interpolates patches of dst from lev-1.
func (it *Integrator) fillFromCoarse(v *view, lev int, t float64, fi int, dst *fab.MultiFab, patches []patch) error {
	e := it.fields[fi]
	ratio := it.cfg.RefRatio
	ip := it.opts.interp

	cba := make(box.Array, len(patches))
	for k, p := range patches {
		cba[k] = ip.CoarseBox(p.region, ratio)
	}
	cdm, err := fab.NewDistributionMapping(cba, it.cfg.Workers)
	if err != nil {
		return err
	}
	crse, err := fab.NewMultiFab(cba, cdm, e.ncomp, 0)
	if err != nil {
		return err
	}
	if err := it.fill(v, lev-1, t, fi, crse); err != nil {
		return err
	}

	byDst := make(map[int][]int, dst.Len())
	for k, p := range patches {
		byDst[p.dst] = append(byDst[p.dst], k)
	}
	return dst.ForEach(func(i int, f *fab.FArrayBox) error {
		for _, k := range byDst[i] {
			if err := ip.Interp(crse.Fab(k), f, patches[k].region, 0, e.ncomp, ratio); err != nil {
				return fmt.Errorf("level %d interpolation: %w", lev, err)
			}
		}
		return nil
	})
}

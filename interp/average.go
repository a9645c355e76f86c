package interp

import (
	"fmt"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
)

// AverageDown overwrites components [comp, comp+n) of every coarse valid
// cell fully covered by fine valid data with the mean of its ratio² fine
// cells. Coarse cells not covered are left unchanged.
//
// Stage 1 (Validate): ratio >= 1, component ranges fit both sides.
// Stage 2 (Execute): per coarse box, in parallel over coarse workers.
// Complexity: O(N·M + fine cells × n).
func AverageDown(fine, crse *fab.MultiFab, ratio, comp, n int) error {
	if ratio < 1 {
		return fmt.Errorf("AverageDown(ratio=%d): %w", ratio, ErrBadRatio)
	}
	if comp < 0 || comp+n > fine.NComp() || comp+n > crse.NComp() {
		return fmt.Errorf("AverageDown(comp=%d, n=%d): %w", comp, n, fab.ErrDimensionMismatch)
	}
	inv := 1 / float64(ratio*ratio)
	fba := fine.BoxArray()

	return crse.ForEach(func(_ int, cf *fab.FArrayBox) error {
		cv := cf.ValidBox()
		for _, k := range fba.Intersections(cv.Refine(ratio)) {
			ff := fine.Fab(k)
			cover := coveredCoarse(ff.ValidBox(), ratio).Intersect(cv)
			for c := comp; c < comp+n; c++ {
				for j := cover.Lo[1]; j <= cover.Hi[1]; j++ {
					for i := cover.Lo[0]; i <= cover.Hi[0]; i++ {
						cc := box.IntVect{i, j}
						fb := box.New(cc, cc).Refine(ratio)
						sum := 0.0
						for fj := fb.Lo[1]; fj <= fb.Hi[1]; fj++ {
							for fi := fb.Lo[0]; fi <= fb.Hi[0]; fi++ {
								sum += ff.At(box.IntVect{fi, fj}, c)
							}
						}
						cf.Set(cc, c, sum*inv)
					}
				}
			}
		}
		return nil
	})
}

// coveredCoarse returns the coarse cells whose whole refinement lies in fb.
func coveredCoarse(fb box.Box, ratio int) box.Box {
	lo := fb.Lo.Add(box.IntVect{ratio - 1, ratio - 1}).Coarsen(ratio)
	hi := fb.Hi.Add(box.IntVect{1, 1}).Coarsen(ratio).Add(box.IntVect{-1, -1})
	return box.New(lo, hi)
}

// TimeInterp sets dst = old + (t-tOld)/(tNew-tOld) * (new-old) over every
// allocated cell. At either end of the bracket the matching generation is
// copied exactly; a zero-width bracket copies new. All three must share
// one layout. Callers check that t lies in the bracket.
func TimeInterp(dst, old, cur *fab.MultiFab, tOld, tNew, t float64) error {
	if tOld > tNew {
		return fmt.Errorf("TimeInterp(%g > %g): %w", tOld, tNew, ErrTimeOrder)
	}
	switch {
	case t == tNew || tNew == tOld:
		return dst.Copy(cur)
	case t == tOld:
		return dst.Copy(old)
	}
	a := (t - tOld) / (tNew - tOld)
	return dst.LinComb(1-a, old, a, cur)
}

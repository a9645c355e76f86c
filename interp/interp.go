package interp

import (
	"fmt"
	"math"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
)

// Interpolator fills fine cells from coarse data.
type Interpolator interface {
	// CoarseBox returns the coarse cells read when filling fine region.
	CoarseBox(region box.Box, ratio int) box.Box
	// Interp writes components [comp, comp+n) of fine over region
	// (∩ fine.Box()) from the same components of crse.
	Interp(crse, fine *fab.FArrayBox, region box.Box, comp, n, ratio int) error
}

// checkStencil validates ratio and coverage shared by every interpolator.
func checkStencil(it Interpolator, crse *fab.FArrayBox, region box.Box, ratio int) error {
	if ratio < 1 {
		return fmt.Errorf("ratio %d: %w", ratio, ErrBadRatio)
	}
	if need := it.CoarseBox(region, ratio); !crse.Box().ContainsBox(need) {
		return fmt.Errorf("need %v, have %v: %w", need, crse.Box(), ErrCoarseTooSmall)
	}
	return nil
}

// PiecewiseConstant copies each coarse value into all fine cells it covers.
type PiecewiseConstant struct{}

// CoarseBox implements Interpolator.
func (PiecewiseConstant) CoarseBox(region box.Box, ratio int) box.Box {
	return region.Coarsen(ratio)
}

// Interp implements Interpolator.
// Complexity: O(region cells × n).
func (p PiecewiseConstant) Interp(crse, fine *fab.FArrayBox, region box.Box, comp, n, ratio int) error {
	r := region.Intersect(fine.Box())
	if r.Empty() {
		return nil
	}
	if err := checkStencil(p, crse, r, ratio); err != nil {
		return fmt.Errorf("PiecewiseConstant: %w", err)
	}
	for c := comp; c < comp+n; c++ {
		for j := r.Lo[1]; j <= r.Hi[1]; j++ {
			for i := r.Lo[0]; i <= r.Hi[0]; i++ {
				f := box.IntVect{i, j}
				fine.Set(f, c, crse.At(f.Coarsen(ratio), c))
			}
		}
	}
	return nil
}

// CellConservativeLinear reconstructs a limited linear profile in every
// coarse cell. Slopes are monotonized-central, so no new extrema appear and
// the fine average of each coarse cell equals the coarse value.
type CellConservativeLinear struct{}

// CoarseBox implements Interpolator: one extra coarse cell on every side.
func (CellConservativeLinear) CoarseBox(region box.Box, ratio int) box.Box {
	return region.Coarsen(ratio).Grow(1)
}

// Interp implements Interpolator.
// Complexity: O(region cells × n).
func (l CellConservativeLinear) Interp(crse, fine *fab.FArrayBox, region box.Box, comp, n, ratio int) error {
	r := region.Intersect(fine.Box())
	if r.Empty() {
		return nil
	}
	if err := checkStencil(l, crse, r, ratio); err != nil {
		return fmt.Errorf("CellConservativeLinear: %w", err)
	}
	cb := r.Coarsen(ratio)
	ex, ey := box.IntVect{1, 0}, box.IntVect{0, 1}
	for c := comp; c < comp+n; c++ {
		for cj := cb.Lo[1]; cj <= cb.Hi[1]; cj++ {
			for ci := cb.Lo[0]; ci <= cb.Hi[0]; ci++ {
				cc := box.IntVect{ci, cj}
				u := crse.At(cc, c)
				sx := mcSlope(crse.At(cc.Add(box.IntVect{-1, 0}), c), u, crse.At(cc.Add(ex), c))
				sy := mcSlope(crse.At(cc.Add(box.IntVect{0, -1}), c), u, crse.At(cc.Add(ey), c))

				// Fine cells of this coarse cell, clipped to the region.
				fb := box.New(cc, cc).Refine(ratio).Intersect(r)
				for j := fb.Lo[1]; j <= fb.Hi[1]; j++ {
					yo := offset(j, cj, ratio)
					for i := fb.Lo[0]; i <= fb.Hi[0]; i++ {
						fine.Set(box.IntVect{i, j}, c, u+sx*offset(i, ci, ratio)+sy*yo)
					}
				}
			}
		}
	}
	return nil
}

// offset is the position of fine index f inside coarse cell c, in coarse
// cell widths relative to the coarse center: (f-c*r+0.5)/r - 0.5.
func offset(f, c, r int) float64 {
	return (float64(f-c*r)+0.5)/float64(r) - 0.5
}

// mcSlope returns the monotonized-central slope from three consecutive values.
func mcSlope(um, u, up float64) float64 {
	dl, dr := u-um, up-u
	if dl*dr <= 0 {
		return 0
	}
	dc := 0.5 * (dl + dr)
	s := math.Min(math.Abs(dc), 2*math.Min(math.Abs(dl), math.Abs(dr)))
	return math.Copysign(s, dc)
}

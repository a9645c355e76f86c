// SPDX-License-Identifier: MIT

package fab

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/amr/box"
)

// MultiFab is the per-level storage of one field: an FArrayBox for every
// box of the level's partition.
type MultiFab struct {
	ba     box.Array
	dm     DistributionMapping
	ncomp  int
	nghost int
	fabs   []*FArrayBox
}

// NewMultiFab allocates zeroed storage over ba with ncomp components and
// nghost ghost cells per box.
// Stage 1 (Validate): shape and mapping agree with ba.
// Stage 2 (Prepare): allocate one FArrayBox per box.
// Complexity: O(total cells × ncomp).
func NewMultiFab(ba box.Array, dm DistributionMapping, ncomp, nghost int) (*MultiFab, error) {
	if ncomp < 1 || nghost < 0 {
		return nil, fmt.Errorf("NewMultiFab(ncomp=%d, nghost=%d): %w", ncomp, nghost, ErrBadShape)
	}
	if dm.Len() != len(ba) {
		return nil, fmt.Errorf("NewMultiFab: %d boxes, mapping covers %d: %w", len(ba), dm.Len(), ErrDimensionMismatch)
	}
	fabs := make([]*FArrayBox, len(ba))
	for i, b := range ba {
		f, err := NewFArrayBox(b, nghost, ncomp)
		if err != nil {
			return nil, err
		}
		fabs[i] = f
	}
	return &MultiFab{ba: ba, dm: dm, ncomp: ncomp, nghost: nghost, fabs: fabs}, nil
}

// BoxArray returns the partition the storage is built on.
func (mf *MultiFab) BoxArray() box.Array { return mf.ba }

// DistributionMap returns the worker assignment.
func (mf *MultiFab) DistributionMap() DistributionMapping { return mf.dm }

// NComp returns the number of components.
func (mf *MultiFab) NComp() int { return mf.ncomp }

// NGhost returns the ghost depth.
func (mf *MultiFab) NGhost() int { return mf.nghost }

// Len returns the number of boxes.
func (mf *MultiFab) Len() int { return len(mf.fabs) }

// Fab returns the storage of box i.
func (mf *MultiFab) Fab(i int) *FArrayBox { return mf.fabs[i] }

// ForEach calls fn for every box, one goroutine per worker. The first
// error stops the workers after their current box and is returned wrapped
// with the box index.
func (mf *MultiFab) ForEach(fn func(i int, f *FArrayBox) error) error {
	var g errgroup.Group
	for w := 0; w < mf.dm.Workers(); w++ {
		owned := mf.dm.Boxes(w)
		if len(owned) == 0 {
			continue
		}
		g.Go(func() error {
			for _, i := range owned {
				if err := fn(i, mf.fabs[i]); err != nil {
					return fmt.Errorf("box %d %v: %w", i, mf.ba[i], err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// SetVal assigns v to every component of every cell, ghosts included.
func (mf *MultiFab) SetVal(v float64) {
	_ = mf.ForEach(func(_ int, f *FArrayBox) error {
		f.SetVal(v, f.Box(), 0, f.NComp())
		return nil
	})
}

// FillBoundary copies valid data of neighboring boxes into each box's
// ghost cells (same-level halo exchange). Ghost cells not overlapped by any
// other box's valid region are left untouched.
// Complexity: O(N² + ghost cells).
func (mf *MultiFab) FillBoundary() error {
	return mf.ForEach(func(i int, f *FArrayBox) error {
		grown := f.Box()
		for _, j := range mf.ba.Intersections(grown) {
			if j == i {
				continue
			}
			src := mf.fabs[j]
			if err := f.CopyFrom(src, src.ValidBox(), 0, 0, mf.ncomp); err != nil {
				return err
			}
		}
		return nil
	})
}

// ParallelCopy copies n components of src's valid regions into mf over each
// destination box grown by dstGhost. src and mf may have different
// partitions; when src == mf the self-overlap of each box is skipped.
// Complexity: O(N·M + copied cells).
func (mf *MultiFab) ParallelCopy(src *MultiFab, srcComp, dstComp, n, dstGhost int) error {
	if dstGhost > mf.nghost {
		return fmt.Errorf("ParallelCopy(dstGhost=%d > nghost=%d): %w", dstGhost, mf.nghost, ErrDimensionMismatch)
	}
	same := src == mf
	return mf.ForEach(func(i int, f *FArrayBox) error {
		region := f.ValidBox().Grow(dstGhost)
		for _, j := range src.ba.Intersections(region) {
			if same && j == i {
				continue
			}
			s := src.fabs[j]
			if err := f.CopyFrom(s, s.ValidBox().Intersect(region), srcComp, dstComp, n); err != nil {
				return err
			}
		}
		return nil
	})
}

// Copy copies every component from src, which must share mf's partition and
// ghost depth, over the whole allocated region.
func (mf *MultiFab) Copy(src *MultiFab) error {
	if err := mf.sameLayout(src); err != nil {
		return err
	}
	return mf.ForEach(func(i int, f *FArrayBox) error {
		copy(f.data, src.fabs[i].data)
		return nil
	})
}

// LinComb sets mf = a*x + b*y over the whole allocated region. x and y must
// share mf's layout.
func (mf *MultiFab) LinComb(a float64, x *MultiFab, b float64, y *MultiFab) error {
	if err := mf.sameLayout(x); err != nil {
		return err
	}
	if err := mf.sameLayout(y); err != nil {
		return err
	}
	return mf.ForEach(func(i int, f *FArrayBox) error {
		xd, yd := x.fabs[i].data, y.fabs[i].data
		for k := range f.data {
			f.data[k] = a*xd[k] + b*yd[k]
		}
		return nil
	})
}

// Clone returns a deep copy sharing the (immutable) partition and mapping.
func (mf *MultiFab) Clone() *MultiFab {
	out := &MultiFab{ba: mf.ba, dm: mf.dm, ncomp: mf.ncomp, nghost: mf.nghost, fabs: make([]*FArrayBox, len(mf.fabs))}
	for i, f := range mf.fabs {
		out.fabs[i] = f.Clone()
	}
	return out
}

// Sum returns the sum of component comp over valid cells.
func (mf *MultiFab) Sum(comp int) float64 {
	s := 0.0
	for _, f := range mf.fabs {
		v := f.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				s += f.At(box.IntVect{i, j}, comp)
			}
		}
	}
	return s
}

// Max returns the maximum of component comp over valid cells.
func (mf *MultiFab) Max(comp int) float64 {
	m := math.Inf(-1)
	for _, f := range mf.fabs {
		v := f.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				m = math.Max(m, f.At(box.IntVect{i, j}, comp))
			}
		}
	}
	return m
}

// Min returns the minimum of component comp over valid cells.
func (mf *MultiFab) Min(comp int) float64 {
	m := math.Inf(1)
	for _, f := range mf.fabs {
		v := f.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				m = math.Min(m, f.At(box.IntVect{i, j}, comp))
			}
		}
	}
	return m
}

// HasNaN reports whether any cell within ghost layers of the valid boxes is NaN.
func (mf *MultiFab) HasNaN(ghost int) bool {
	for _, f := range mf.fabs {
		if f.HasNaN(f.ValidBox().Grow(ghost)) {
			return true
		}
	}
	return false
}

// Swap exchanges the contents of a and b. Pointers held by callers keep
// pointing at the same MultiFab values.
func Swap(a, b *MultiFab) {
	*a, *b = *b, *a
}

// sameLayout checks that o has the same boxes, components and ghost depth.
func (mf *MultiFab) sameLayout(o *MultiFab) error {
	if o.ncomp != mf.ncomp || o.nghost != mf.nghost || len(o.ba) != len(mf.ba) {
		return fmt.Errorf("layout (ncomp=%d nghost=%d boxes=%d) vs (ncomp=%d nghost=%d boxes=%d): %w",
			mf.ncomp, mf.nghost, len(mf.ba), o.ncomp, o.nghost, len(o.ba), ErrDimensionMismatch)
	}
	for i := range mf.ba {
		if mf.ba[i] != o.ba[i] {
			return fmt.Errorf("box %d: %v vs %v: %w", i, mf.ba[i], o.ba[i], ErrDimensionMismatch)
		}
	}
	return nil
}

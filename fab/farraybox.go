package fab

import (
	"fmt"
	"math"

	"github.com/katalvlaran/amr/box"
)

// fabErrorf wraps an underlying error with FArrayBox method context.
func fabErrorf(method string, p box.IntVect, comp int, err error) error {
	return fmt.Errorf("FArrayBox.%s(%v,%d): %w", method, p, comp, err)
}

// FArrayBox holds ncomp components over a valid box grown by nghost cells.
type FArrayBox struct {
	valid  box.Box   // cells owned by this box
	bx     box.Box   // valid grown by nghost, the allocated region
	nghost int       // ghost depth
	ncomp  int       // number of components
	npts   int       // cells per component
	data   []float64 // len == ncomp*npts, component-major
}

// NewFArrayBox allocates zeroed storage for valid grown by nghost.
// Stage 1 (Validate): ncomp >= 1, nghost >= 0, valid non-empty.
// Stage 2 (Prepare): allocate the flat backing slice.
// Complexity: O(cells*ncomp) time and memory.
func NewFArrayBox(valid box.Box, nghost, ncomp int) (*FArrayBox, error) {
	if ncomp < 1 || nghost < 0 || valid.Empty() {
		return nil, fmt.Errorf("NewFArrayBox(%v, nghost=%d, ncomp=%d): %w", valid, nghost, ncomp, ErrBadShape)
	}
	bx := valid.Grow(nghost)
	npts := bx.NumPts()

	return &FArrayBox{
		valid:  valid,
		bx:     bx,
		nghost: nghost,
		ncomp:  ncomp,
		npts:   npts,
		data:   make([]float64, ncomp*npts),
	}, nil
}

// Box returns the allocated region (valid box plus ghost cells).
func (f *FArrayBox) Box() box.Box { return f.bx }

// ValidBox returns the cells owned by this box.
func (f *FArrayBox) ValidBox() box.Box { return f.valid }

// NComp returns the number of components.
func (f *FArrayBox) NComp() int { return f.ncomp }

// NGhost returns the ghost depth.
func (f *FArrayBox) NGhost() int { return f.nghost }

// offset computes the flat index of (p, comp). No bounds checks.
func (f *FArrayBox) offset(p box.IntVect, comp int) int {
	return comp*f.npts + f.bx.Index(p)
}

// At returns the value at (p, comp). p must lie in Box() and comp in [0, NComp).
// This is the kernel accessor; use Get for a checked read.
// Complexity: O(1).
func (f *FArrayBox) At(p box.IntVect, comp int) float64 {
	return f.data[f.offset(p, comp)]
}

// Set writes v at (p, comp). Same preconditions as At.
// Complexity: O(1).
func (f *FArrayBox) Set(p box.IntVect, comp int, v float64) {
	f.data[f.offset(p, comp)] = v
}

// Get is the bounds-checked form of At.
func (f *FArrayBox) Get(p box.IntVect, comp int) (float64, error) {
	if !f.bx.Contains(p) || comp < 0 || comp >= f.ncomp {
		return 0, fabErrorf("Get", p, comp, ErrOutOfRange)
	}
	return f.At(p, comp), nil
}

// Component returns the raw row-major slice of one component over Box().
// Writes through the slice modify the box.
func (f *FArrayBox) Component(comp int) []float64 {
	return f.data[comp*f.npts : (comp+1)*f.npts]
}

// SetVal assigns v to components [comp, comp+n) over region ∩ Box().
func (f *FArrayBox) SetVal(v float64, region box.Box, comp, n int) {
	r := region.Intersect(f.bx)
	if r.Empty() {
		return
	}
	for c := comp; c < comp+n; c++ {
		for j := r.Lo[1]; j <= r.Hi[1]; j++ {
			for i := r.Lo[0]; i <= r.Hi[0]; i++ {
				f.data[f.offset(box.IntVect{i, j}, c)] = v
			}
		}
	}
}

// CopyFrom copies n components from src (starting at srcComp) into f
// (starting at dstComp) over region ∩ src.Box() ∩ f.Box().
// Complexity: O(cells*n).
func (f *FArrayBox) CopyFrom(src *FArrayBox, region box.Box, srcComp, dstComp, n int) error {
	if srcComp < 0 || dstComp < 0 || srcComp+n > src.ncomp || dstComp+n > f.ncomp {
		return fmt.Errorf("CopyFrom(src=%d..%d, dst=%d..%d): %w",
			srcComp, srcComp+n, dstComp, dstComp+n, ErrDimensionMismatch)
	}
	r := region.Intersect(src.bx).Intersect(f.bx)
	if r.Empty() {
		return nil
	}
	for c := 0; c < n; c++ {
		for j := r.Lo[1]; j <= r.Hi[1]; j++ {
			// Rows are contiguous in both boxes, copy them as slices.
			lo := box.IntVect{r.Lo[0], j}
			w := r.Hi[0] - r.Lo[0] + 1
			so := src.offset(lo, srcComp+c)
			do := f.offset(lo, dstComp+c)
			copy(f.data[do:do+w], src.data[so:so+w])
		}
	}
	return nil
}

// Clone returns a deep copy.
func (f *FArrayBox) Clone() *FArrayBox {
	data := make([]float64, len(f.data))
	copy(data, f.data)
	out := *f
	out.data = data
	return &out
}

// HasNaN reports whether any component is NaN inside region ∩ Box().
func (f *FArrayBox) HasNaN(region box.Box) bool {
	r := region.Intersect(f.bx)
	if r.Empty() {
		return false
	}
	for c := 0; c < f.ncomp; c++ {
		for j := r.Lo[1]; j <= r.Hi[1]; j++ {
			for i := r.Lo[0]; i <= r.Hi[0]; i++ {
				if math.IsNaN(f.data[f.offset(box.IntVect{i, j}, c)]) {
					return true
				}
			}
		}
	}
	return false
}

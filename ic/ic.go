package ic

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

var (
	// ErrBadValues indicates a value list that does not match the field.
	ErrBadValues = errors.New("ic: value count must be 1 or ncomp")

	// ErrBadRadius indicates a negative sphere radius.
	ErrBadRadius = errors.New("ic: radius must be >= 0")

	// ErrBadEps indicates a negative ellipsoid interface width.
	ErrBadEps = errors.New("ic: eps must be >= 0")
)

// IC fills a level's field with initial data.
type IC interface {
	Fill(mf *fab.MultiFab, geom mesh.Geometry) error
}

// Constant assigns fixed values.
type Constant struct {
	Values []float64
}

// Fill implements IC.
func (c Constant) Fill(mf *fab.MultiFab, _ mesh.Geometry) error {
	n := len(c.Values)
	if n != 1 && n != mf.NComp() {
		return fmt.Errorf("Constant: %d values for %d components: %w", n, mf.NComp(), ErrBadValues)
	}
	return mf.ForEach(func(_ int, f *fab.FArrayBox) error {
		for comp := 0; comp < f.NComp(); comp++ {
			v := c.Values[0]
			if n > 1 {
				v = c.Values[comp]
			}
			f.SetVal(v, f.Box(), comp, 1)
		}
		return nil
	})
}

// Sphere marks a disk (or slab) inclusion.
type Sphere struct {
	Center  [2]float64
	Radius  float64
	Inside  float64
	Outside float64
	Dim     int // number of directions in the distance, 1 or 2 (0 means 2)
}

// Fill implements IC. Cells with center distance strictly below Radius are inside.
// Complexity: O(cells × ncomp).
func (s Sphere) Fill(mf *fab.MultiFab, geom mesh.Geometry) error {
	if s.Radius < 0 {
		return fmt.Errorf("Sphere(radius=%g): %w", s.Radius, ErrBadRadius)
	}
	dim := s.Dim
	if dim <= 0 || dim > box.SpaceDim {
		dim = box.SpaceDim
	}
	r2 := s.Radius * s.Radius
	return mf.ForEach(func(_ int, f *fab.FArrayBox) error {
		bx := f.Box()
		for j := bx.Lo[1]; j <= bx.Hi[1]; j++ {
			for i := bx.Lo[0]; i <= bx.Hi[0]; i++ {
				p := box.IntVect{i, j}
				x := geom.CellCenter(p)
				d2 := 0.0
				for d := 0; d < dim; d++ {
					d2 += (x[d] - s.Center[d]) * (x[d] - s.Center[d])
				}
				v := s.Outside
				if d2 < r2 {
					v = s.Inside
				}
				for comp := 0; comp < f.NComp(); comp++ {
					f.Set(p, comp, v)
				}
			}
		}
		return nil
	})
}

// Ellipsoid marks an axis-aligned ellipse inclusion with semi-axes Radii.
// Eps > 0 smears the interface with an erf profile of that width; Eps = 0
// gives a sharp step.
type Ellipsoid struct {
	Center  [2]float64
	Radii   [2]float64
	Eps     float64
	Inside  float64
	Outside float64
}

// Fill implements IC. With q = Σ((x-c)/r)², the weight toward Outside is
// 0.5 + 0.5·erf((q-1) / (Eps·|A(x-c)|)), A = diag(1/r²), clamped to [0, 1].
// Complexity: O(cells × ncomp).
func (e Ellipsoid) Fill(mf *fab.MultiFab, geom mesh.Geometry) error {
	for d, r := range e.Radii {
		if !(r > 0) {
			return fmt.Errorf("Ellipsoid(radii[%d]=%g): %w", d, r, ErrBadRadius)
		}
	}
	if e.Eps < 0 || math.IsNaN(e.Eps) {
		return fmt.Errorf("Ellipsoid(eps=%g): %w", e.Eps, ErrBadEps)
	}
	return mf.ForEach(func(_ int, f *fab.FArrayBox) error {
		bx := f.Box()
		for j := bx.Lo[1]; j <= bx.Hi[1]; j++ {
			for i := bx.Lo[0]; i <= bx.Hi[0]; i++ {
				p := box.IntVect{i, j}
				v := e.Inside + (e.Outside-e.Inside)*e.weight(geom.CellCenter(p))
				for comp := 0; comp < f.NComp(); comp++ {
					f.Set(p, comp, v)
				}
			}
		}
		return nil
	})
}

// weight is 0 deep inside and 1 far outside.
func (e Ellipsoid) weight(x [2]float64) float64 {
	q, norm2 := 0.0, 0.0
	for d := 0; d < box.SpaceDim; d++ {
		a := 1 / (e.Radii[d] * e.Radii[d])
		dx := x[d] - e.Center[d]
		q += a * dx * dx
		norm2 += a * a * dx * dx
	}
	if e.Eps == 0 || norm2 == 0 {
		if q < 1 {
			return 0
		}
		return 1
	}
	w := 0.5 + 0.5*math.Erf((q-1)/(e.Eps*math.Sqrt(norm2)))
	return math.Min(1, math.Max(0, w))
}

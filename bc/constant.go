package bc

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

// Type is a boundary condition kind.
type Type int

const (
	// Dirichlet fixes ghost values.
	Dirichlet Type = iota
	// Neumann fixes the outward normal derivative.
	Neumann
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case Dirichlet:
		return "dirichlet"
	case Neumann:
		return "neumann"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType accepts "dirichlet" or "neumann", case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dirichlet":
		return Dirichlet, nil
	case "neumann":
		return Neumann, nil
	}
	return 0, fmt.Errorf("ParseType(%q): %w", s, ErrUnknownType)
}

// Face indexes the four domain faces.
type Face int

// Domain faces in fill order.
const (
	XLo Face = iota
	XHi
	YLo
	YHi
	NumFaces
)

var faceNames = [NumFaces]string{"xlo", "xhi", "ylo", "yhi"}

// String implements fmt.Stringer.
func (f Face) String() string {
	if f >= 0 && f < NumFaces {
		return faceNames[f]
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// Constant is a time-independent boundary object. Values[f] holds either
// one value for all components or one per component.
type Constant struct {
	Types  [NumFaces]Type
	Values [NumFaces][]float64
}

// NewConstant returns a Constant with every face set to t and value v.
func NewConstant(t Type, v float64) *Constant {
	c := &Constant{}
	for f := XLo; f < NumFaces; f++ {
		c.Types[f] = t
		c.Values[f] = []float64{v}
	}
	return c
}

// SetFace configures one face.
func (c *Constant) SetFace(f Face, t Type, values ...float64) *Constant {
	c.Types[f] = t
	c.Values[f] = values
	return c
}

// value returns the face value for component comp.
func (c *Constant) value(f Face, comp int) float64 {
	v := c.Values[f]
	switch {
	case len(v) == 0:
		return 0
	case len(v) == 1:
		return v[0]
	}
	return v[comp]
}

// Validate checks the value lists against a component count.
func (c *Constant) Validate(ncomp int) error {
	for f := XLo; f < NumFaces; f++ {
		if n := len(c.Values[f]); n > 1 && n != ncomp {
			return fmt.Errorf("face %v has %d values for %d components: %w", f, n, ncomp, ErrBadValues)
		}
	}
	return nil
}

// FillBoundary fills every cell of f.Box() outside geom.Domain.
// Complexity: O(ghost cells × ncomp).
func (c *Constant) FillBoundary(f *fab.FArrayBox, geom mesh.Geometry, _ float64) error {
	if err := c.Validate(f.NComp()); err != nil {
		return err
	}
	dom, bx := geom.Domain, f.Box()
	if dom.ContainsBox(bx) {
		return nil
	}
	dx := geom.CellSize()

	for d := 0; d < box.SpaceDim; d++ {
		// X faces only over the domain's j-range, Y faces over everything.
		span := bx
		if d == 0 {
			span.Lo[1] = max(span.Lo[1], dom.Lo[1])
			span.Hi[1] = min(span.Hi[1], dom.Hi[1])
		}
		for side := 0; side < 2; side++ {
			face := Face(2*d + side)
			ghost := span
			if side == 0 {
				ghost.Hi[d] = dom.Lo[d] - 1
			} else {
				ghost.Lo[d] = dom.Hi[d] + 1
			}
			if ghost.Empty() {
				continue
			}
			c.fillFace(f, face, d, side, ghost, dom, dx[d])
		}
	}
	return nil
}

// fillFace writes the ghost slab of one face.
func (c *Constant) fillFace(f *fab.FArrayBox, face Face, d, side int, ghost, dom box.Box, h float64) {
	bx := f.Box()
	for comp := 0; comp < f.NComp(); comp++ {
		v := c.value(face, comp)
		for j := ghost.Lo[1]; j <= ghost.Hi[1]; j++ {
			for i := ghost.Lo[0]; i <= ghost.Hi[0]; i++ {
				p := box.IntVect{i, j}
				if c.Types[face] == Dirichlet {
					f.Set(p, comp, v)
					continue
				}
				// Depth k >= 1 outside the face mirrors the k-th interior cell.
				var k int
				m := p
				if side == 0 {
					k = dom.Lo[d] - p[d]
					m[d] = dom.Lo[d] + k - 1
				} else {
					k = p[d] - dom.Hi[d]
					m[d] = dom.Hi[d] - k + 1
				}
				m[d] = min(max(m[d], bx.Lo[d]), bx.Hi[d])
				f.Set(p, comp, f.At(m, comp)+v*float64(2*k-1)*h)
			}
		}
	}
}

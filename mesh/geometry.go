package mesh

import (
	"fmt"

	"github.com/katalvlaran/amr/box"
)

// Geometry is the physical description of one level.
type Geometry struct {
	Domain box.Box    // index-space domain of the level
	ProbLo [2]float64 // physical lower corner
	ProbHi [2]float64 // physical upper corner
	dx     [2]float64 // cell widths
}

// NewGeometry validates the domain and physical extent and precomputes cell sizes.
func NewGeometry(domain box.Box, lo, hi [2]float64) (Geometry, error) {
	if domain.Empty() || hi[0] <= lo[0] || hi[1] <= lo[1] {
		return Geometry{}, fmt.Errorf("NewGeometry(%v, %v, %v): %w", domain, lo, hi, ErrBadGeometry)
	}
	g := Geometry{Domain: domain, ProbLo: lo, ProbHi: hi}
	s := domain.Size()
	for d := 0; d < box.SpaceDim; d++ {
		g.dx[d] = (hi[d] - lo[d]) / float64(s[d])
	}
	return g, nil
}

// CellSize returns the cell widths (dx, dy).
func (g Geometry) CellSize() [2]float64 { return g.dx }

// CellCenter returns the physical coordinates of the center of cell p.
// p may lie outside Domain (ghost cells).
func (g Geometry) CellCenter(p box.IntVect) [2]float64 {
	var c [2]float64
	for d := 0; d < box.SpaceDim; d++ {
		c[d] = g.ProbLo[d] + (float64(p[d]-g.Domain.Lo[d])+0.5)*g.dx[d]
	}
	return c
}

// Refine returns the geometry of the next finer level with ratio r.
func (g Geometry) Refine(r int) Geometry {
	out := Geometry{Domain: g.Domain.Refine(r), ProbLo: g.ProbLo, ProbHi: g.ProbHi}
	s := out.Domain.Size()
	for d := 0; d < box.SpaceDim; d++ {
		out.dx[d] = (g.ProbHi[d] - g.ProbLo[d]) / float64(s[d])
	}
	return out
}

// String implements fmt.Stringer.
func (g Geometry) String() string {
	return fmt.Sprintf("%v on [%g,%g]x[%g,%g]", g.Domain, g.ProbLo[0], g.ProbHi[0], g.ProbLo[1], g.ProbHi[1])
}

// MakeBaseGrids chops domain into boxes of at most maxGridSize cells per
// direction. maxGridSize must be a positive multiple of blockingFactor,
// and the domain size a multiple of blockingFactor.
func MakeBaseGrids(domain box.Box, maxGridSize, blockingFactor int) (box.Array, error) {
	if maxGridSize <= 0 || blockingFactor <= 0 || maxGridSize%blockingFactor != 0 {
		return nil, fmt.Errorf("MakeBaseGrids(max=%d, bf=%d): %w", maxGridSize, blockingFactor, ErrBadClusterOptions)
	}
	s := domain.Size()
	if domain.Empty() || s[0]%blockingFactor != 0 || s[1]%blockingFactor != 0 {
		return nil, fmt.Errorf("MakeBaseGrids(%v, bf=%d): %w", domain, blockingFactor, ErrBadGeometry)
	}
	pieces, err := domain.Chop(maxGridSize)
	if err != nil {
		return nil, err
	}
	return box.Array(pieces), nil
}

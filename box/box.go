// SPDX-License-Identifier: MIT

package box

import "fmt"

// SpaceDim is the number of spatial dimensions handled by the hierarchy.
const SpaceDim = 2

// IntVect is a cell index in a level's index space.
type IntVect [SpaceDim]int

// Add returns p+q componentwise.
func (p IntVect) Add(q IntVect) IntVect {
	return IntVect{p[0] + q[0], p[1] + q[1]}
}

// Scale returns p*r componentwise.
func (p IntVect) Scale(r int) IntVect {
	return IntVect{p[0] * r, p[1] * r}
}

// Coarsen returns p/r with floor division (toward -inf).
func (p IntVect) Coarsen(r int) IntVect {
	return IntVect{floorDiv(p[0], r), floorDiv(p[1], r)}
}

// String implements fmt.Stringer.
func (p IntVect) String() string {
	return fmt.Sprintf("(%d,%d)", p[0], p[1])
}

// floorDiv divides a by b rounding toward negative infinity. b must be > 0.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}

// Box is an inclusive cell range [Lo, Hi].
type Box struct {
	Lo, Hi IntVect
}

// New constructs the box [lo, hi].
func New(lo, hi IntVect) Box {
	return Box{Lo: lo, Hi: hi}
}

// FromSize constructs the box with lower corner lo and nx×ny cells.
func FromSize(lo IntVect, nx, ny int) Box {
	return Box{Lo: lo, Hi: IntVect{lo[0] + nx - 1, lo[1] + ny - 1}}
}

// Empty reports whether b contains no cells.
// Complexity: O(1).
func (b Box) Empty() bool {
	return b.Hi[0] < b.Lo[0] || b.Hi[1] < b.Lo[1]
}

// Size returns the number of cells in each direction (zero for empty boxes).
func (b Box) Size() IntVect {
	if b.Empty() {
		return IntVect{}
	}
	return IntVect{b.Hi[0] - b.Lo[0] + 1, b.Hi[1] - b.Lo[1] + 1}
}

// NumPts returns the total number of cells.
func (b Box) NumPts() int {
	s := b.Size()
	return s[0] * s[1]
}

// LongestDir returns the direction with the most cells (0 on ties).
func (b Box) LongestDir() int {
	s := b.Size()
	if s[1] > s[0] {
		return 1
	}
	return 0
}

// Contains reports whether cell p lies inside b.
// Complexity: O(1).
func (b Box) Contains(p IntVect) bool {
	return p[0] >= b.Lo[0] && p[0] <= b.Hi[0] && p[1] >= b.Lo[1] && p[1] <= b.Hi[1]
}

// ContainsBox reports whether every cell of o lies inside b.
// An empty o is contained in any box.
func (b Box) ContainsBox(o Box) bool {
	if o.Empty() {
		return true
	}
	return b.Contains(o.Lo) && b.Contains(o.Hi)
}

// Intersect returns the overlap of b and o (possibly empty).
func (b Box) Intersect(o Box) Box {
	return Box{
		Lo: IntVect{max(b.Lo[0], o.Lo[0]), max(b.Lo[1], o.Lo[1])},
		Hi: IntVect{min(b.Hi[0], o.Hi[0]), min(b.Hi[1], o.Hi[1])},
	}
}

// Intersects reports whether b and o share at least one cell.
func (b Box) Intersects(o Box) bool {
	return !b.Intersect(o).Empty()
}

// Grow enlarges b by n cells on every side (n may be negative).
func (b Box) Grow(n int) Box {
	return Box{
		Lo: IntVect{b.Lo[0] - n, b.Lo[1] - n},
		Hi: IntVect{b.Hi[0] + n, b.Hi[1] + n},
	}
}

// GrowDir enlarges b by n cells on both sides of direction dir.
func (b Box) GrowDir(dir, n int) Box {
	b.Lo[dir] -= n
	b.Hi[dir] += n
	return b
}

// Shift translates b by d.
func (b Box) Shift(d IntVect) Box {
	return Box{Lo: b.Lo.Add(d), Hi: b.Hi.Add(d)}
}

// Refine maps b to the finer index space with ratio r.
// Coarse cell c covers fine cells [c*r, c*r+r-1].
func (b Box) Refine(r int) Box {
	return Box{
		Lo: b.Lo.Scale(r),
		Hi: IntVect{(b.Hi[0]+1)*r - 1, (b.Hi[1]+1)*r - 1},
	}
}

// Coarsen maps b to the coarser index space with ratio r.
// The result is the smallest coarse box whose refinement covers b.
func (b Box) Coarsen(r int) Box {
	return Box{Lo: b.Lo.Coarsen(r), Hi: b.Hi.Coarsen(r)}
}

// Align expands b outward so that Lo is a multiple of bf and Hi+1 is a
// multiple of bf in every direction.
func (b Box) Align(bf int) Box {
	if bf <= 1 {
		return b
	}
	return b.Coarsen(bf).Refine(bf)
}

// Index maps cell p to its row-major offset inside b (i fastest).
// p must lie in b.
// Complexity: O(1).
func (b Box) Index(p IntVect) int {
	w := b.Hi[0] - b.Lo[0] + 1
	return (p[1]-b.Lo[1])*w + (p[0] - b.Lo[0])
}

// Coordinate converts a row-major offset back to a cell index.
// Complexity: O(1).
func (b Box) Coordinate(idx int) IntVect {
	w := b.Hi[0] - b.Lo[0] + 1
	return IntVect{b.Lo[0] + idx%w, b.Lo[1] + idx/w}
}

// Less orders boxes by Lo (j first, then i), then by Hi.
// It gives partitions a deterministic order.
func (b Box) Less(o Box) bool {
	if b.Lo[1] != o.Lo[1] {
		return b.Lo[1] < o.Lo[1]
	}
	if b.Lo[0] != o.Lo[0] {
		return b.Lo[0] < o.Lo[0]
	}
	if b.Hi[1] != o.Hi[1] {
		return b.Hi[1] < o.Hi[1]
	}
	return b.Hi[0] < o.Hi[0]
}

// String implements fmt.Stringer.
func (b Box) String() string {
	return fmt.Sprintf("[%v..%v]", b.Lo, b.Hi)
}

// Chop splits b into boxes of at most maxSize cells per direction.
// The pieces tile b exactly and are returned in row-major order.
// Returns ErrBadChop if maxSize <= 0.
// Complexity: O(k) for k output boxes.
func (b Box) Chop(maxSize int) ([]Box, error) {
	if maxSize <= 0 {
		return nil, ErrBadChop
	}
	if b.Empty() {
		return nil, nil
	}
	var out []Box
	for j := b.Lo[1]; j <= b.Hi[1]; j += maxSize {
		for i := b.Lo[0]; i <= b.Hi[0]; i += maxSize {
			out = append(out, Box{
				Lo: IntVect{i, j},
				Hi: IntVect{min(i+maxSize-1, b.Hi[0]), min(j+maxSize-1, b.Hi[1])},
			})
		}
	}
	return out, nil
}

// Diff returns b minus o as up to four disjoint boxes.
// If o does not intersect b, the result is {b}.
func Diff(b, o Box) []Box {
	if b.Empty() {
		return nil
	}
	is := b.Intersect(o)
	if is.Empty() {
		return []Box{b}
	}
	var out []Box
	rest := b
	// Slabs below and above the overlap in j take the full width.
	if rest.Lo[1] < is.Lo[1] {
		out = append(out, Box{Lo: rest.Lo, Hi: IntVect{rest.Hi[0], is.Lo[1] - 1}})
		rest.Lo[1] = is.Lo[1]
	}
	if rest.Hi[1] > is.Hi[1] {
		out = append(out, Box{Lo: IntVect{rest.Lo[0], is.Hi[1] + 1}, Hi: rest.Hi})
		rest.Hi[1] = is.Hi[1]
	}
	// What is left shares the overlap's j-range.
	if rest.Lo[0] < is.Lo[0] {
		out = append(out, Box{Lo: rest.Lo, Hi: IntVect{is.Lo[0] - 1, rest.Hi[1]}})
	}
	if rest.Hi[0] > is.Hi[0] {
		out = append(out, Box{Lo: IntVect{is.Hi[0] + 1, rest.Lo[1]}, Hi: rest.Hi})
	}
	return out
}

// DiffAll returns the cells of b not covered by any box in cover,
// as a list of disjoint boxes.
func DiffAll(b Box, cover []Box) []Box {
	pieces := []Box{b}
	for _, c := range cover {
		if len(pieces) == 0 {
			break
		}
		next := pieces[:0:0]
		for _, p := range pieces {
			next = append(next, Diff(p, c)...)
		}
		pieces = next
	}
	return pieces
}

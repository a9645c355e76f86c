package box

import (
	"slices"
	"strings"
)

// Array is a grid partition: an ordered list of pairwise-disjoint boxes.
// The hierarchy owns every Array; field storage only mirrors it.
type Array []Box

// NumPts returns the total number of cells covered by the array.
// Complexity: O(N).
func (a Array) NumPts() int {
	n := 0
	for _, b := range a {
		n += b.NumPts()
	}
	return n
}

// Contains reports whether cell p lies in some box of the array.
func (a Array) Contains(p IntVect) bool {
	for _, b := range a {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// Intersections returns the indices of boxes that overlap q.
// Complexity: O(N).
func (a Array) Intersections(q Box) []int {
	var idx []int
	for i, b := range a {
		if b.Intersects(q) {
			idx = append(idx, i)
		}
	}
	return idx
}

// MinimalBox returns the bounding box of the array (empty for an empty array).
func (a Array) MinimalBox() Box {
	if len(a) == 0 {
		return Box{Lo: IntVect{0, 0}, Hi: IntVect{-1, -1}}
	}
	out := a[0]
	for _, b := range a[1:] {
		out.Lo = IntVect{min(out.Lo[0], b.Lo[0]), min(out.Lo[1], b.Lo[1])}
		out.Hi = IntVect{max(out.Hi[0], b.Hi[0]), max(out.Hi[1], b.Hi[1])}
	}
	return out
}

// Refine refines every box by r.
func (a Array) Refine(r int) Array {
	out := make(Array, len(a))
	for i, b := range a {
		out[i] = b.Refine(r)
	}
	return out
}

// Coarsen coarsens every box by r. The result may overlap.
func (a Array) Coarsen(r int) Array {
	out := make(Array, len(a))
	for i, b := range a {
		out[i] = b.Coarsen(r)
	}
	return out
}

// Sorted returns a copy ordered by Box.Less.
func (a Array) Sorted() Array {
	out := slices.Clone(a)
	slices.SortFunc(out, func(x, y Box) int {
		switch {
		case x.Less(y):
			return -1
		case y.Less(x):
			return 1
		}
		return 0
	})
	return out
}

// Equal reports whether a and o describe the same set of boxes,
// independent of order.
func (a Array) Equal(o Array) bool {
	if len(a) != len(o) {
		return false
	}
	return slices.Equal(a.Sorted(), o.Sorted())
}

// Disjoint reports whether no two boxes overlap.
// Complexity: O(N²).
func (a Array) Disjoint() bool {
	for i := range a {
		for j := i + 1; j < len(a); j++ {
			if a[i].Intersects(a[j]) {
				return false
			}
		}
	}
	return true
}

// Complement returns the cells of b not covered by the array.
func (a Array) Complement(b Box) []Box {
	return DiffAll(b, a)
}

// String implements fmt.Stringer.
func (a Array) String() string {
	parts := make([]string, len(a))
	for i, b := range a {
		parts[i] = b.String()
	}
	return "{" + strings.Join(parts, " ") + "}"
}

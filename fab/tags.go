package fab

import (
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/amr/box"
)

// Tag values stored in a TagBox.
const (
	TagClear byte = 0
	TagSet   byte = 1
)

// TagBox marks cells of one box for refinement.
type TagBox struct {
	bx   box.Box
	data []byte
}

// Box returns the tagged region.
func (t *TagBox) Box() box.Box { return t.bx }

// Set marks p for refinement. Cells outside Box() are ignored.
func (t *TagBox) Set(p box.IntVect) {
	if t.bx.Contains(p) {
		t.data[t.bx.Index(p)] = TagSet
	}
}

// Clear removes the mark at p. Cells outside Box() are ignored.
func (t *TagBox) Clear(p box.IntVect) {
	if t.bx.Contains(p) {
		t.data[t.bx.Index(p)] = TagClear
	}
}

// IsSet reports whether p is marked.
func (t *TagBox) IsSet(p box.IntVect) bool {
	return t.bx.Contains(p) && t.data[t.bx.Index(p)] == TagSet
}

// TagMask is the ephemeral per-level tag container handed to
// TagCellsForRefinement. It mirrors the level's partition box for box.
type TagMask struct {
	ba   box.Array
	dm   DistributionMapping
	tags []*TagBox
}

// NewTagMask allocates a cleared mask over ba.
func NewTagMask(ba box.Array, dm DistributionMapping) (*TagMask, error) {
	if dm.Len() != len(ba) {
		return nil, fmt.Errorf("NewTagMask: %d boxes, mapping covers %d: %w", len(ba), dm.Len(), ErrDimensionMismatch)
	}
	tags := make([]*TagBox, len(ba))
	for i, b := range ba {
		tags[i] = &TagBox{bx: b, data: make([]byte, b.NumPts())}
	}
	return &TagMask{ba: ba, dm: dm, tags: tags}, nil
}

// BoxArray returns the tagged partition.
func (m *TagMask) BoxArray() box.Array { return m.ba }

// Len returns the number of boxes.
func (m *TagMask) Len() int { return len(m.tags) }

// Tag returns the tags of box i.
func (m *TagMask) Tag(i int) *TagBox { return m.tags[i] }

// Set marks p in whichever box contains it.
func (m *TagMask) Set(p box.IntVect) {
	for _, t := range m.tags {
		if t.bx.Contains(p) {
			t.Set(p)
			return
		}
	}
}

// ForEach calls fn for every box, one goroutine per worker.
func (m *TagMask) ForEach(fn func(i int, t *TagBox) error) error {
	var g errgroup.Group
	for w := 0; w < m.dm.Workers(); w++ {
		owned := m.dm.Boxes(w)
		if len(owned) == 0 {
			continue
		}
		g.Go(func() error {
			for _, i := range owned {
				if err := fn(i, m.tags[i]); err != nil {
					return fmt.Errorf("tag box %d %v: %w", i, m.ba[i], err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// NumTagged returns the number of marked cells.
func (m *TagMask) NumTagged() int {
	n := 0
	for _, t := range m.tags {
		for _, v := range t.data {
			if v == TagSet {
				n++
			}
		}
	}
	return n
}

// Collate returns every marked cell, ordered by (j, i).
func (m *TagMask) Collate() []box.IntVect {
	var out []box.IntVect
	for _, t := range m.tags {
		for idx, v := range t.data {
			if v == TagSet {
				out = append(out, t.bx.Coordinate(idx))
			}
		}
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a][1] != out[b][1] {
			return out[a][1] < out[b][1]
		}
		return out[a][0] < out[b][0]
	})
	return out
}

package mesh

import (
	"fmt"

	"github.com/katalvlaran/amr/box"
)

// ClusterOptions controls how the tags of level k become the grids of level k+1.
// Domain, Nest, NProper and NErrorBuf are in level-k index space;
// BlockingFactor and MaxGridSize apply to the new level.
type ClusterOptions struct {
	Domain         box.Box   // level-k index domain
	Nest           box.Array // level-k grids the new level must nest inside
	NProper        int       // level-k cells kept between new grids and the edge of Nest
	NErrorBuf      int       // level-k cells added around every tag
	RefRatio       int       // refinement ratio between level k and k+1
	BlockingFactor int       // new boxes are multiples of this on level k+1
	MaxGridSize    int       // longest side of a new box on level k+1
	GridEff        float64   // minimum fraction of tagged cells per box
}

// validate checks ClusterOptions for consistency.
func (o ClusterOptions) validate() error {
	switch {
	case o.Domain.Empty():
		return fmt.Errorf("empty domain %v: %w", o.Domain, ErrBadClusterOptions)
	case o.RefRatio < 1:
		return fmt.Errorf("ref ratio %d: %w", o.RefRatio, ErrBadClusterOptions)
	case o.BlockingFactor < 1 || o.MaxGridSize < o.BlockingFactor:
		return fmt.Errorf("blocking factor %d, max grid size %d: %w", o.BlockingFactor, o.MaxGridSize, ErrBadClusterOptions)
	case o.NProper < 0 || o.NErrorBuf < 0:
		return fmt.Errorf("nproper %d, nerrorbuf %d: %w", o.NProper, o.NErrorBuf, ErrBadClusterOptions)
	case o.GridEff <= 0 || o.GridEff > 1:
		return fmt.Errorf("grid efficiency %g: %w", o.GridEff, ErrBadClusterOptions)
	}
	return nil
}

// Cluster computes the level k+1 partition covering tags (level-k cells).
//
// Stage 1 (Validate): options are consistent.
// Stage 2 (Buffer): every tag is grown by NErrorBuf and restricted to the
// cells of Nest that keep NProper covered cells around them (the physical
// domain edge counts as covered).
// Stage 3 (Group): 8-connected clusters are split along holes or
// inflection points of their signatures until GridEff is met.
// Stage 4 (Finalize): boxes are aligned to the blocking factor, made
// disjoint, refined, chopped to MaxGridSize and clipped to the refined Nest.
//
// The result is sorted by box.Box.Less; it is empty when no tag survives.
// Identical inputs always give identical output.
// Complexity: O(D·(2p+1)² + D·(2b+1)²) for D domain cells.
func Cluster(tags []box.IntVect, opts ClusterOptions) (box.Array, error) {
	if err := opts.validate(); err != nil {
		return nil, fmt.Errorf("Cluster: %w", err)
	}
	if len(tags) == 0 {
		return nil, nil
	}

	allowed := properRegion(opts.Domain, opts.Nest, opts.NProper)
	marked := newCellMask(opts.Domain)
	for _, p := range tags {
		grown := box.New(p, p).Grow(opts.NErrorBuf).Intersect(opts.Domain)
		for j := grown.Lo[1]; j <= grown.Hi[1]; j++ {
			for i := grown.Lo[0]; i <= grown.Hi[0]; i++ {
				c := box.IntVect{i, j}
				if allowed.isSet(c) {
					marked.set(c)
				}
			}
		}
	}

	var coarse []box.Box
	for _, comp := range marked.components() {
		coarse = append(coarse, splitCluster(comp, opts.GridEff)...)
	}
	if len(coarse) == 0 {
		return nil, nil
	}

	bfc := max(1, opts.BlockingFactor/opts.RefRatio)
	var disjoint []box.Box
	for _, b := range coarse {
		a := b.Align(bfc).Intersect(opts.Domain)
		disjoint = append(disjoint, box.DiffAll(a, disjoint)...)
	}

	nest := opts.Nest.Refine(opts.RefRatio)
	var out box.Array
	for _, b := range disjoint {
		pieces, err := b.Refine(opts.RefRatio).Chop(opts.MaxGridSize)
		if err != nil {
			return nil, fmt.Errorf("Cluster: %w", err)
		}
		for _, p := range pieces {
			for _, n := range nest {
				if is := p.Intersect(n); !is.Empty() {
					out = append(out, is)
				}
			}
		}
	}
	return out.Sorted(), nil
}

// properRegion marks the cells of domain whose NProper neighborhood
// (clipped to domain) is covered by nest.
func properRegion(domain box.Box, nest box.Array, nproper int) cellMask {
	covered := newCellMask(domain)
	for _, b := range nest {
		r := b.Intersect(domain)
		for j := r.Lo[1]; j <= r.Hi[1]; j++ {
			for i := r.Lo[0]; i <= r.Hi[0]; i++ {
				covered.set(box.IntVect{i, j})
			}
		}
	}
	if nproper == 0 {
		return covered
	}

	allowed := newCellMask(domain)
	for idx, v := range covered.bits {
		if !v {
			continue
		}
		c := domain.Coordinate(idx)
		hood := box.New(c, c).Grow(nproper).Intersect(domain)
		ok := true
		for j := hood.Lo[1]; ok && j <= hood.Hi[1]; j++ {
			for i := hood.Lo[0]; i <= hood.Hi[0]; i++ {
				if !covered.isSet(box.IntVect{i, j}) {
					ok = false
					break
				}
			}
		}
		if ok {
			allowed.bits[idx] = true
		}
	}
	return allowed
}

// cellMask is a boolean mask over one box.
type cellMask struct {
	bx   box.Box
	bits []bool
}

func newCellMask(b box.Box) cellMask {
	return cellMask{bx: b, bits: make([]bool, b.NumPts())}
}

func (m cellMask) set(p box.IntVect) {
	if m.bx.Contains(p) {
		m.bits[m.bx.Index(p)] = true
	}
}

func (m cellMask) isSet(p box.IntVect) bool {
	return m.bx.Contains(p) && m.bits[m.bx.Index(p)]
}

// neighbors8 lists the 8-connected offsets: N, NE, E, SE, S, SW, W, NW.
var neighbors8 = [8]box.IntVect{{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}}

// components returns the 8-connected groups of set cells, each discovered
// by BFS in row-major scan order.
// Complexity: O(D·8) time, O(D) memory.
func (m cellMask) components() [][]box.IntVect {
	seen := make([]bool, len(m.bits))
	var comps [][]box.IntVect

	for i0, v := range m.bits {
		if !v || seen[i0] {
			continue
		}
		queue := []int{i0}
		seen[i0] = true
		var comp []box.IntVect

		for qi := 0; qi < len(queue); qi++ {
			u := m.bx.Coordinate(queue[qi])
			comp = append(comp, u)
			for _, d := range neighbors8 {
				w := u.Add(d)
				if !m.isSet(w) {
					continue
				}
				wi := m.bx.Index(w)
				if !seen[wi] {
					seen[wi] = true
					queue = append(queue, wi)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// splitCluster bounds cells by one box, or recursively splits them until
// every box holds at least eff of its cells tagged.
func splitCluster(cells []box.IntVect, eff float64) []box.Box {
	bb := bounding(cells)
	if float64(len(cells)) >= eff*float64(bb.NumPts()) {
		return []box.Box{bb}
	}
	dir, cut, ok := findCut(cells, bb)
	if !ok {
		return []box.Box{bb}
	}
	var lo, hi []box.IntVect
	for _, p := range cells {
		if p[dir] < cut {
			lo = append(lo, p)
		} else {
			hi = append(hi, p)
		}
	}
	return append(splitCluster(lo, eff), splitCluster(hi, eff)...)
}

// bounding returns the smallest box containing cells (non-empty input).
func bounding(cells []box.IntVect) box.Box {
	bb := box.New(cells[0], cells[0])
	for _, p := range cells[1:] {
		bb.Lo = box.IntVect{min(bb.Lo[0], p[0]), min(bb.Lo[1], p[1])}
		bb.Hi = box.IntVect{max(bb.Hi[0], p[0]), max(bb.Hi[1], p[1])}
	}
	return bb
}

// findCut picks the split plane of a cluster: cells with p[dir] < cut go
// to the lower half. Preference order: a hole in the signature closest to
// the middle, the strongest inflection of the signature's Laplacian, the
// midpoint of the longest side. ok is false for a single cell.
func findCut(cells []box.IntVect, bb box.Box) (dir, cut int, ok bool) {
	size := bb.Size()
	var sig [box.SpaceDim][]int
	for d := 0; d < box.SpaceDim; d++ {
		sig[d] = make([]int, size[d])
	}
	for _, p := range cells {
		for d := 0; d < box.SpaceDim; d++ {
			sig[d][p[d]-bb.Lo[d]]++
		}
	}

	order := [2]int{bb.LongestDir(), 1 - bb.LongestDir()}

	// Holes. The bounding box is tight, so a hole is never at either end.
	for _, d := range order {
		best, bestDist := -1, size[d]
		mid := size[d] / 2
		for k, n := range sig[d] {
			if n == 0 {
				if dist := abs(k - mid); dist < bestDist {
					best, bestDist = k, dist
				}
			}
		}
		if best >= 0 {
			return d, bb.Lo[d] + best, true
		}
	}

	// Inflection points of the second difference.
	bestDir, bestK, bestJump := -1, 0, 0
	for _, d := range order {
		s := sig[d]
		if len(s) < 4 {
			continue
		}
		lap := make([]int, len(s))
		for k := 1; k < len(s)-1; k++ {
			lap[k] = s[k-1] - 2*s[k] + s[k+1]
		}
		for k := 1; k < len(s)-2; k++ {
			if lap[k]*lap[k+1] < 0 {
				if jump := abs(lap[k] - lap[k+1]); jump > bestJump {
					bestDir, bestK, bestJump = d, k+1, jump
				}
			}
		}
	}
	if bestDir >= 0 {
		return bestDir, bb.Lo[bestDir] + bestK, true
	}

	d := order[0]
	if size[d] < 2 {
		return 0, 0, false
	}
	return d, bb.Lo[d] + size[d]/2, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

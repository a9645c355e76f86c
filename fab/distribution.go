package fab

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/amr/box"
)

// DistributionMapping assigns every box of a partition to one worker.
type DistributionMapping struct {
	owner   []int   // owner[i] is the worker of box i
	workers int     // number of workers
	boxes   [][]int // boxes[w] lists the boxes of worker w in ascending order
}

// NewDistributionMapping balances ba over workers by cell count:
// boxes are taken largest first and handed to the least-loaded worker.
// Ties go to the lower worker index, so the mapping is deterministic.
// Complexity: O(N log N + N·W).
func NewDistributionMapping(ba box.Array, workers int) (DistributionMapping, error) {
	if workers <= 0 {
		return DistributionMapping{}, fmt.Errorf("NewDistributionMapping(workers=%d): %w", workers, ErrBadWorkers)
	}
	order := make([]int, len(ba))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ba[order[a]].NumPts() > ba[order[b]].NumPts()
	})

	owner := make([]int, len(ba))
	load := make([]int, workers)
	for _, i := range order {
		w := 0
		for k := 1; k < workers; k++ {
			if load[k] < load[w] {
				w = k
			}
		}
		owner[i] = w
		load[w] += ba[i].NumPts()
	}

	boxes := make([][]int, workers)
	for i, w := range owner {
		boxes[w] = append(boxes[w], i)
	}
	return DistributionMapping{owner: owner, workers: workers, boxes: boxes}, nil
}

// Owner returns the worker assigned to box i.
func (dm DistributionMapping) Owner(i int) int { return dm.owner[i] }

// Workers returns the number of workers.
func (dm DistributionMapping) Workers() int { return dm.workers }

// Len returns the number of mapped boxes.
func (dm DistributionMapping) Len() int { return len(dm.owner) }

// Boxes returns the indices of boxes owned by worker w.
func (dm DistributionMapping) Boxes(w int) []int { return dm.boxes[w] }

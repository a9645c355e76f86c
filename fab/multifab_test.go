package fab_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoBoxes returns a 8×4 domain split into two 4×4 boxes side by side.
func twoBoxes(t *testing.T, workers, ncomp, nghost int) *fab.MultiFab {
	t.Helper()
	ba := box.Array{
		box.New(box.IntVect{0, 0}, box.IntVect{3, 3}),
		box.New(box.IntVect{4, 0}, box.IntVect{7, 3}),
	}
	dm, err := fab.NewDistributionMapping(ba, workers)
	require.NoError(t, err)
	mf, err := fab.NewMultiFab(ba, dm, ncomp, nghost)
	require.NoError(t, err)
	return mf
}

//----------------------------------------------------------------------------//
// Construction
//----------------------------------------------------------------------------//

// TestNewMultiFab_Errors verifies shape validation.
func TestNewMultiFab_Errors(t *testing.T) {
	ba := box.Array{box.New(box.IntVect{0, 0}, box.IntVect{1, 1})}
	dm, err := fab.NewDistributionMapping(ba, 1)
	require.NoError(t, err)

	cases := []struct {
		name          string
		ncomp, nghost int
		want          error
	}{
		{"ZeroComp", 0, 1, fab.ErrBadShape},
		{"NegativeGhost", 1, -1, fab.ErrBadShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fab.NewMultiFab(ba, dm, tc.ncomp, tc.nghost)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	other, err := fab.NewDistributionMapping(append(ba, ba[0]), 1)
	require.NoError(t, err)
	_, err = fab.NewMultiFab(ba, other, 1, 0)
	assert.ErrorIs(t, err, fab.ErrDimensionMismatch)

	_, err = fab.NewDistributionMapping(ba, 0)
	assert.ErrorIs(t, err, fab.ErrBadWorkers)
}

// TestDistributionMapping_Balances checks largest-first greedy balancing.
func TestDistributionMapping_Balances(t *testing.T) {
	ba := box.Array{
		box.FromSize(box.IntVect{0, 0}, 8, 8),  // 64
		box.FromSize(box.IntVect{8, 0}, 4, 4),  // 16
		box.FromSize(box.IntVect{12, 0}, 4, 4), // 16
		box.FromSize(box.IntVect{16, 0}, 2, 2), // 4
	}
	dm, err := fab.NewDistributionMapping(ba, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, dm.Owner(0))
	assert.Equal(t, 1, dm.Owner(1))
	assert.Equal(t, 1, dm.Owner(2))
	assert.Equal(t, 1, dm.Owner(3))
	assert.Equal(t, []int{1, 2, 3}, dm.Boxes(1))
}

//----------------------------------------------------------------------------//
// Halo exchange and copies
//----------------------------------------------------------------------------//

// TestFillBoundary fills the shared face from the neighbor's valid cells
// and leaves the outer ghost ring untouched.
func TestFillBoundary(t *testing.T) {
	mf := twoBoxes(t, 2, 1, 1)
	mf.SetVal(math.NaN())
	for i := 0; i < mf.Len(); i++ {
		f := mf.Fab(i)
		f.SetVal(float64(i+1), f.ValidBox(), 0, 1)
	}
	require.NoError(t, mf.FillBoundary())

	left, right := mf.Fab(0), mf.Fab(1)
	for j := 0; j <= 3; j++ {
		assert.Equal(t, 2.0, left.At(box.IntVect{4, j}, 0), "left ghost column takes right valid data")
		assert.Equal(t, 1.0, right.At(box.IntVect{3, j}, 0), "right ghost column takes left valid data")
	}
	assert.True(t, math.IsNaN(left.At(box.IntVect{-1, 0}, 0)), "domain-edge ghosts are not same-level data")
}

// TestParallelCopy_DifferentPartitions copies between unrelated layouts.
func TestParallelCopy_DifferentPartitions(t *testing.T) {
	src := twoBoxes(t, 1, 2, 0)
	require.NoError(t, src.ForEach(func(i int, f *fab.FArrayBox) error {
		v := f.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for k := v.Lo[0]; k <= v.Hi[0]; k++ {
				f.Set(box.IntVect{k, j}, 0, float64(k))
				f.Set(box.IntVect{k, j}, 1, float64(j))
			}
		}
		return nil
	}))

	ba := box.Array{box.New(box.IntVect{2, 1}, box.IntVect{5, 2})}
	dm, err := fab.NewDistributionMapping(ba, 1)
	require.NoError(t, err)
	dst, err := fab.NewMultiFab(ba, dm, 1, 1)
	require.NoError(t, err)
	dst.SetVal(-1)

	require.NoError(t, dst.ParallelCopy(src, 1, 0, 1, 1))
	f := dst.Fab(0)
	assert.Equal(t, 1.0, f.At(box.IntVect{3, 1}, 0))
	assert.Equal(t, 0.0, f.At(box.IntVect{1, 0}, 0), "ghost corner inside src is copied")
	assert.Equal(t, 3.0, f.At(box.IntVect{6, 3}, 0))

	require.NoError(t, dst.ParallelCopy(src, 0, 0, 1, 0))
	assert.Equal(t, 5.0, f.At(box.IntVect{5, 2}, 0))
	assert.Equal(t, 3.0, f.At(box.IntVect{6, 3}, 0), "ghosts untouched when dstGhost is 0")
}

// TestParallelCopy_Errors checks component and ghost validation.
func TestParallelCopy_Errors(t *testing.T) {
	a := twoBoxes(t, 1, 1, 0)
	b := twoBoxes(t, 1, 1, 0)
	err := a.ParallelCopy(b, 0, 0, 2, 0)
	assert.True(t, errors.Is(err, fab.ErrDimensionMismatch))
	err = a.ParallelCopy(b, 0, 0, 1, 1)
	assert.ErrorIs(t, err, fab.ErrDimensionMismatch)
}

// TestLinCombAndReductions covers LinComb, Sum, Min, Max and Clone.
func TestLinCombAndReductions(t *testing.T) {
	x := twoBoxes(t, 2, 1, 1)
	y := twoBoxes(t, 2, 1, 1)
	x.SetVal(2)
	y.SetVal(4)
	out := x.Clone()
	require.NoError(t, out.LinComb(0.25, x, 0.75, y))
	assert.InDelta(t, 3.5*32, out.Sum(0), 1e-12)
	assert.Equal(t, 3.5, out.Min(0))
	assert.Equal(t, 3.5, out.Max(0))
	assert.Equal(t, 2.0*32, x.Sum(0), "clone must not alias the source")

	fab.Swap(x, y)
	assert.Equal(t, 4.0*32, x.Sum(0))
}

// TestForEach_PropagatesError checks the first error is returned with context.
func TestForEach_PropagatesError(t *testing.T) {
	mf := twoBoxes(t, 2, 1, 0)
	boom := errors.New("boom")
	err := mf.ForEach(func(i int, _ *fab.FArrayBox) error {
		if i == 1 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "box 1")
}

//----------------------------------------------------------------------------//
// Tags
//----------------------------------------------------------------------------//

// TestTagMask collects tags across boxes in (j,i) order.
func TestTagMask(t *testing.T) {
	mf := twoBoxes(t, 2, 1, 0)
	tags, err := fab.NewTagMask(mf.BoxArray(), mf.DistributionMap())
	require.NoError(t, err)
	require.NoError(t, tags.ForEach(func(i int, tb *fab.TagBox) error {
		if i == 1 {
			tb.Set(box.IntVect{5, 2})
			tb.Set(box.IntVect{0, 0}) // outside, ignored
		}
		return nil
	}))
	tags.Set(box.IntVect{1, 0})
	assert.Equal(t, 2, tags.NumTagged())
	assert.Equal(t, []box.IntVect{{1, 0}, {5, 2}}, tags.Collate())
	assert.True(t, tags.Tag(0).IsSet(box.IntVect{1, 0}))

	tags.Tag(0).Clear(box.IntVect{1, 0})
	assert.Equal(t, 1, tags.NumTagged())
}

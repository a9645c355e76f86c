package bc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amr/bc"
	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/mesh"
)

// setup returns a 4×4 unit-square geometry and a box covering it with two
// ghost layers, valid cells holding i + 10*j.
func setup(t *testing.T) (mesh.Geometry, *fab.FArrayBox) {
	t.Helper()
	domain := box.FromSize(box.IntVect{0, 0}, 4, 4)
	geom, err := mesh.NewGeometry(domain, [2]float64{0, 0}, [2]float64{1, 1})
	require.NoError(t, err)
	f, err := fab.NewFArrayBox(domain, 2, 1)
	require.NoError(t, err)
	f.SetVal(-99, f.Box(), 0, 1)
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			f.Set(box.IntVect{i, j}, 0, float64(i+10*j))
		}
	}
	return geom, f
}

// TestConstant_Dirichlet sets every outside ghost, corners included.
func TestConstant_Dirichlet(t *testing.T) {
	geom, f := setup(t)
	require.NoError(t, bc.NewConstant(bc.Dirichlet, 5).FillBoundary(f, geom, 0))

	for _, p := range []box.IntVect{{-1, 0}, {-2, 3}, {4, 1}, {5, 2}, {0, -1}, {3, 5}, {-2, -2}, {5, 5}} {
		assert.Equal(t, 5.0, f.At(p, 0), "ghost %v", p)
	}
	assert.Equal(t, 11.0, f.At(box.IntVect{1, 1}, 0), "valid cells untouched")
}

// TestConstant_Neumann mirrors the interior and adds the outward gradient.
func TestConstant_Neumann(t *testing.T) {
	geom, f := setup(t)
	c := bc.NewConstant(bc.Neumann, 0).SetFace(bc.XHi, bc.Neumann, 2)
	require.NoError(t, c.FillBoundary(f, geom, 0))

	assert.Equal(t, 0.0, f.At(box.IntVect{-1, 0}, 0))
	assert.Equal(t, 1.0, f.At(box.IntVect{-2, 0}, 0))
	assert.Equal(t, 2.0, f.At(box.IntVect{2, -1}, 0), "reflect across ylo")
	assert.Equal(t, 12.0, f.At(box.IntVect{2, -2}, 0))
	// XHi: depth 1 mirrors i=3 plus 2*0.25, depth 2 mirrors i=2 plus 2*0.75.
	assert.InDelta(t, 3.5, f.At(box.IntVect{4, 0}, 0), 1e-12)
	assert.InDelta(t, 3.5, f.At(box.IntVect{5, 0}, 0), 1e-12)
	// Corner: reflected across ylo from the already filled x ghost.
	assert.Equal(t, f.At(box.IntVect{-1, 0}, 0), f.At(box.IntVect{-1, -1}, 0))
}

// TestConstant_InteriorBoxUntouched leaves boxes away from the boundary alone.
func TestConstant_InteriorBoxUntouched(t *testing.T) {
	geom, _ := setup(t)
	f, err := fab.NewFArrayBox(box.FromSize(box.IntVect{1, 1}, 2, 2), 1, 1)
	require.NoError(t, err)
	f.SetVal(7, f.Box(), 0, 1)
	require.NoError(t, bc.NewConstant(bc.Dirichlet, 0).FillBoundary(f, geom, 0))
	assert.Equal(t, 7.0*16, sum(f))
}

func sum(f *fab.FArrayBox) float64 {
	s := 0.0
	for _, v := range f.Component(0) {
		s += v
	}
	return s
}

// TestParseTypeAndValidate covers names and value-count checks.
func TestParseTypeAndValidate(t *testing.T) {
	cases := []struct {
		in   string
		want bc.Type
		err  error
	}{
		{"Dirichlet", bc.Dirichlet, nil},
		{" neumann ", bc.Neumann, nil},
		{"periodic", 0, bc.ErrUnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := bc.ParseType(tc.in)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, must(bc.ParseType(got.String())))
		})
	}

	c := bc.NewConstant(bc.Dirichlet, 0).SetFace(bc.YLo, bc.Dirichlet, 1, 2)
	assert.NoError(t, c.Validate(2))
	assert.ErrorIs(t, c.Validate(3), bc.ErrBadValues)
	assert.Equal(t, "ylo", bc.YLo.String())
}

func must(t bc.Type, err error) bc.Type {
	if err != nil {
		panic(err)
	}
	return t
}

package plotfile_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amr/bc"
	"github.com/katalvlaran/amr/heat"
	"github.com/katalvlaran/amr/ic"
	"github.com/katalvlaran/amr/integrator"
	"github.com/katalvlaran/amr/plotfile"
)

var disk = ic.Sphere{Center: [2]float64{0.5, 0.5}, Radius: 0.25, Inside: 1, Outside: 0}

func openStore(t *testing.T, path, label string) *plotfile.Store {
	t.Helper()
	s, err := plotfile.Open(context.Background(), path, label)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// twoLevelHeat runs a refined heat problem, handing snapshots to w when
// w is non-nil.
func twoLevelHeat(t *testing.T, steps int, opts ...integrator.Option) *heat.Heat {
	t.Helper()
	cfg := integrator.DefaultConfig()
	cfg.NCell = [2]int{16, 16}
	cfg.MaxGridSize = 8
	cfg.Timestep = 1
	cfg.Workers = 2
	cfg.MaxLevel = 1
	cfg.MaxStep = steps
	cfg.RegridInt = 2
	cfg.PlotInt = 2
	cfg.PlotFile = "heat"
	h, err := heat.New(cfg, heat.DefaultParams(), disk, bc.NewConstant(bc.Neumann, 0), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Integrator().Close() })

	ctx := context.Background()
	require.NoError(t, h.Integrator().InitData(ctx))
	require.NoError(t, h.Integrator().Evolve(ctx))
	return h
}

//-------------------------------------------------------//
//                         Open                          //
//-------------------------------------------------------//

func TestOpen_NewRunPerStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots.db")
	a := openStore(t, path, "first")
	require.NoError(t, a.Close())
	b := openStore(t, path, "second")

	assert.NotEqual(t, uuid.Nil, b.RunID())
	assert.NotEqual(t, a.RunID(), b.RunID())
	assert.Equal(t, "second", b.Label())

	runs, err := b.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, a.RunID(), runs[0].ID)
	assert.Equal(t, "first", runs[0].Label)
	assert.Equal(t, b.RunID(), runs[1].ID)
	assert.Equal(t, 0, runs[1].Plots)
	assert.NotEmpty(t, runs[1].StartedAt)
}

func TestOpen_BadPath(t *testing.T) {
	_, err := plotfile.Open(context.Background(), filepath.Join(t.TempDir(), "missing", "plots.db"), "x")
	assert.Error(t, err)
}

//-------------------------------------------------------//
//                      Round trip                       //
//-------------------------------------------------------//

func TestWritePlot_RoundTrip(t *testing.T) {
	h := twoLevelHeat(t, 3)
	snap, err := h.Integrator().Snapshot()
	require.NoError(t, err)
	require.Equal(t, 1, snap.FinestLevel)
	require.Len(t, snap.Fields, 2)

	s := openStore(t, ":memory:", "roundtrip")
	ctx := context.Background()
	require.NoError(t, s.WritePlot(ctx, snap))

	got, err := s.ReadPlot(ctx, s.RunID(), snap.Name)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
	assert.Equal(t, snap.Levels[1].Geom.CellSize(), got.Levels[1].Geom.CellSize())
}

func TestWritePlot_DuplicateName(t *testing.T) {
	h := twoLevelHeat(t, 1)
	snap, err := h.Integrator().Snapshot()
	require.NoError(t, err)

	s := openStore(t, ":memory:", "dup")
	ctx := context.Background()
	require.NoError(t, s.WritePlot(ctx, snap))
	assert.Error(t, s.WritePlot(ctx, snap))

	plots, err := s.Plots(ctx, s.RunID())
	require.NoError(t, err)
	assert.Len(t, plots, 1, "failed write leaves nothing behind")
}

func TestReadPlot_NotFound(t *testing.T) {
	s := openStore(t, ":memory:", "empty")
	_, err := s.ReadPlot(context.Background(), s.RunID(), "heat00000")
	assert.ErrorIs(t, err, plotfile.ErrNotFound)

	_, err = s.ReadPlot(context.Background(), uuid.New(), "heat00000")
	assert.ErrorIs(t, err, plotfile.ErrNotFound)
}

//-------------------------------------------------------//
//                 Integrator PlotWriter                 //
//-------------------------------------------------------//

func TestStore_AsPlotWriter(t *testing.T) {
	s := openStore(t, filepath.Join(t.TempDir(), "plots.db"), "evolve")
	h := twoLevelHeat(t, 5, integrator.WithPlotWriter(s))
	ctx := context.Background()

	plots, err := s.Plots(ctx, s.RunID())
	require.NoError(t, err)
	names := make([]string, len(plots))
	for i, p := range plots {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"heat00000", "heat00002", "heat00004", "heat00005"}, names)
	assert.Equal(t, 0.0, plots[0].Time)

	last, err := s.ReadPlot(ctx, s.RunID(), "heat00005")
	require.NoError(t, err)
	now, err := h.Integrator().Snapshot()
	require.NoError(t, err)
	assert.Equal(t, now, last)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 4, runs[0].Plots)
}

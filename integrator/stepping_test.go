package integrator_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/integrator"
)

// valueAt reads component 0 of mf at p from whichever box owns it.
func valueAt(t *testing.T, mf *fab.MultiFab, p box.IntVect) float64 {
	t.Helper()
	for i := 0; i < mf.Len(); i++ {
		if f := mf.Fab(i); f.ValidBox().Contains(p) {
			return f.At(p, 0)
		}
	}
	t.Fatalf("no box owns %v", p)
	return 0
}

// twoLevelRecorder builds a hierarchy refined around coarse cell (5,5).
func twoLevelRecorder(t *testing.T, mutate func(c *integrator.Config), opts ...integrator.Option) *recorder {
	t.Helper()
	cfg := testConfig()
	cfg.MaxLevel = 1
	if mutate != nil {
		mutate(&cfg)
	}
	r := newRecorder(t, cfg, opts...)
	r.tagged[0] = []box.IntVect{{5, 5}}
	return r
}

//-------------------------------------------------------//
//                      Single level                     //
//-------------------------------------------------------//

func TestEvolve_SingleLevel(t *testing.T) {
	cfg := testConfig()
	cfg.MaxStep = 10
	r := newRecorder(t, cfg)
	ctx := context.Background()

	require.NoError(t, r.it.InitData(ctx))
	storage := r.U.Level(0)
	require.NoError(t, r.it.Evolve(ctx))

	assert.Equal(t, 10, r.it.CurrentStep())
	assert.InDelta(t, 1.0, r.it.Time(), 1e-12)
	assert.Equal(t, 10, r.it.Step(0))
	assert.Equal(t, 0, r.it.FinestLevel())
	assert.Equal(t, 10, r.count("advance", 0))
	assert.Zero(t, r.count("tag", -1), "no finer level allowed, no tagging")
	assert.Same(t, storage, r.U.Level(0), "level 0 is never reallocated")

	for k, c := range r.advances() {
		assert.InDelta(t, 0.1*float64(k), c.time, 1e-12)
		assert.InDelta(t, 0.1, c.dt, 1e-15)
	}
}

func TestEvolve_StopTimeClipsLastStep(t *testing.T) {
	cfg := testConfig()
	cfg.StopTime = 0.25
	r := newRecorder(t, cfg)
	ctx := context.Background()

	require.NoError(t, r.it.InitData(ctx))
	require.NoError(t, r.it.Evolve(ctx))

	adv := r.advances()
	require.Len(t, adv, 3)
	assert.InDelta(t, 0.05, adv[2].dt, 1e-12)
	assert.InDelta(t, 0.25, r.it.Time(), 1e-12)
	assert.Equal(t, 3, r.it.CurrentStep())
}

// stableRecorder caps the coarse timestep.
type stableRecorder struct {
	*recorder
	stable []float64
}

func (s *stableRecorder) StableDt(lev int) float64 { return s.stable[lev] }

func TestEvolve_StableTimestep(t *testing.T) {
	cfg := testConfig()
	cfg.MaxStep = 2
	base := &recorder{tagged: map[int][]box.IntVect{}}
	s := &stableRecorder{recorder: base, stable: []float64{0.04}}
	it, err := integrator.New(cfg, s)
	require.NoError(t, err)
	require.NoError(t, it.RegisterField(&base.U, nil, 1, 0, "U", true))
	base.it = it
	ctx := context.Background()

	require.NoError(t, it.InitData(ctx))
	require.NoError(t, it.Evolve(ctx))

	for _, c := range base.advances() {
		assert.InDelta(t, 0.04, c.dt, 1e-15)
	}
	assert.InDelta(t, 0.08, it.Time(), 1e-12)
}

// hookRecorder records the per-step hooks.
type hookRecorder struct {
	*recorder
	begin, complete []int
	failAt          int
}

var errHook = errors.New("hook failed")

func (h *hookRecorder) TimeStepBegin(_ float64, iter int) error {
	h.begin = append(h.begin, iter)
	return nil
}

func (h *hookRecorder) TimeStepComplete(_ float64, iter int) error {
	h.complete = append(h.complete, iter)
	if iter == h.failAt {
		return errHook
	}
	return nil
}

func TestEvolve_StepHooks(t *testing.T) {
	cfg := testConfig()
	cfg.MaxStep = 5
	base := &recorder{tagged: map[int][]box.IntVect{}}
	h := &hookRecorder{recorder: base, failAt: 3}
	it, err := integrator.New(cfg, h)
	require.NoError(t, err)
	require.NoError(t, it.RegisterField(&base.U, nil, 1, 0, "U", true))
	ctx := context.Background()

	require.NoError(t, it.InitData(ctx))
	err = it.Evolve(ctx)

	require.ErrorIs(t, err, errHook)
	assert.Contains(t, err.Error(), "TimeStepComplete")
	assert.Equal(t, []int{0, 1, 2, 3}, h.begin)
	assert.Equal(t, []int{0, 1, 2, 3}, h.complete)
	assert.Equal(t, 3, it.CurrentStep())
}

func TestEvolve_AdvanceError(t *testing.T) {
	r := newRecorder(t, testConfig())
	r.advErr = errors.New("solver diverged")
	ctx := context.Background()

	require.NoError(t, r.it.InitData(ctx))
	err := r.it.Evolve(ctx)

	require.ErrorIs(t, err, r.advErr)
	assert.Contains(t, err.Error(), "level 0: Advance")
	assert.Zero(t, r.it.CurrentStep())
}

func TestEvolve_BeforeInit(t *testing.T) {
	r := newRecorder(t, testConfig())
	assert.ErrorIs(t, r.it.Evolve(context.Background()), integrator.ErrNotInitialized)
	_, err := r.it.Snapshot()
	assert.ErrorIs(t, err, integrator.ErrNotInitialized)
}

func TestTimeStep_LevelNotActive(t *testing.T) {
	r := twoLevelRecorder(t, nil)
	r.tagged = map[int][]box.IntVect{}
	require.NoError(t, r.it.InitData(context.Background()))

	assert.ErrorIs(t, r.it.TimeStep(1, 0, 1), integrator.ErrLevelNotActive)
	assert.ErrorIs(t, r.it.TimeStep(-1, 0, 1), integrator.ErrLevelNotActive)
	assert.ErrorIs(t, r.it.Regrid(3, 0), integrator.ErrLevelNotActive)
	_, err := r.it.FillPatch(2, 0, &r.U)
	assert.ErrorIs(t, err, integrator.ErrLevelNotActive)
}

//-------------------------------------------------------//
//                      Subcycling                       //
//-------------------------------------------------------//

func TestEvolve_TwoLevelSubcycle(t *testing.T) {
	log, buf := debugLogger()
	cfg := func(c *integrator.Config) { c.MaxStep = 1 }
	r := twoLevelRecorder(t, cfg, integrator.WithLogger(log))
	r.advanceFn = func(r *recorder, lev int, _, _ float64) error {
		if lev == 0 {
			return r.setValid(0, 100)
		}
		return r.setValid(1, float64(r.count("advance", 1)))
	}
	ctx := context.Background()

	require.NoError(t, r.it.InitData(ctx))
	require.Equal(t, 1, r.it.FinestLevel())
	require.Equal(t, box.Array{box.New(box.IntVect{8, 8}, box.IntVect{13, 13})}, r.it.BoxArray(1))
	require.NoError(t, r.it.Evolve(ctx))

	adv := r.advances()
	require.Len(t, adv, 3)
	assert.Equal(t, []int{0, 1, 1}, []int{adv[0].lev, adv[1].lev, adv[2].lev}, "coarse first, then two fine substeps")
	assert.InDelta(t, 0.1, adv[0].dt, 1e-15)
	assert.InDelta(t, 0.05, adv[1].dt, 1e-15)
	assert.InDelta(t, 0.0, adv[1].time, 1e-15)
	assert.InDelta(t, 0.05, adv[2].time, 1e-15)

	assert.Equal(t, 1, countMessages(buf, "average down"))
	assert.Equal(t, r.it.TNew(0), r.it.TNew(1))
	assert.Equal(t, 1, r.it.Step(0))
	assert.Equal(t, 2, r.it.Step(1))

	crse := r.U.Level(0)
	assert.Equal(t, 2.0, valueAt(t, crse, box.IntVect{5, 5}), "covered cell holds the fine average")
	assert.Equal(t, 2.0, valueAt(t, crse, box.IntVect{4, 6}))
	assert.Equal(t, 100.0, valueAt(t, crse, box.IntVect{3, 5}), "uncovered cell keeps the coarse update")
	assert.Equal(t, 100.0, valueAt(t, crse, box.IntVect{15, 0}))
}

func TestEvolve_ClockInvariants(t *testing.T) {
	cases := []struct {
		name      string
		substeps  []int
		regridInt int
	}{
		{"RatioSubsteps", nil, 0},
		{"ThreeSubsteps", []int{3}, 0},
		{"RegridEveryStep", nil, 1},
		{"SevenSubstepsRegrid", []int{7}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := twoLevelRecorder(t, func(c *integrator.Config) {
				c.MaxStep = 4
				c.Timestep = 0.1
				c.NSubsteps = tc.substeps
				c.RegridInt = tc.regridInt
			})
			ctx := context.Background()
			require.NoError(t, r.it.InitData(ctx))
			require.NoError(t, r.it.Evolve(ctx))

			nsub := r.it.NSubsteps(1)
			assert.Equal(t, r.it.TNew(0), r.it.TNew(1), "fine clock equals coarse clock exactly")
			assert.Equal(t, r.it.Step(0)*nsub, r.it.Step(1))
			assert.Equal(t, 4*nsub, r.count("advance", 1))
			assert.InDelta(t, r.it.Dt(0)/float64(nsub), r.it.Dt(1), 1e-15)
		})
	}
}

func TestTimeStep_FineGhostsInterpolatedInTime(t *testing.T) {
	r := twoLevelRecorder(t, func(c *integrator.Config) { c.MaxStep = 1 })
	r.initFn = func(int, box.IntVect) float64 { return 0 }

	var ghostSeen []float64
	r.advanceFn = func(r *recorder, lev int, _, _ float64) error {
		if lev == 0 {
			return r.setValid(0, 10)
		}
		// Fine ghost (7,10) lies over uncovered coarse cell (3,5).
		ghostSeen = append(ghostSeen, valueAt(t, ghostView(r.U.Level(1)), box.IntVect{7, 10}))
		return nil
	}
	ctx := context.Background()
	require.NoError(t, r.it.InitData(ctx))
	require.NoError(t, r.it.Evolve(ctx))

	require.Len(t, ghostSeen, 2)
	assert.InDelta(t, 0.0, ghostSeen[0], 1e-12, "first substep sees the old coarse data")
	assert.InDelta(t, 5.0, ghostSeen[1], 1e-12, "second substep sees the half-way blend")
}

// ghostView exposes the ghost cells of mf as valid cells of a one-box MultiFab.
func ghostView(mf *fab.MultiFab) *fab.MultiFab {
	f := mf.Fab(0)
	ba := box.Array{f.Box()}
	dm, _ := fab.NewDistributionMapping(ba, 1)
	out, _ := fab.NewMultiFab(ba, dm, mf.NComp(), 0)
	_ = out.Fab(0).CopyFrom(f, f.Box(), 0, 0, mf.NComp())
	return out
}

//-------------------------------------------------------//
//                         Plot                          //
//-------------------------------------------------------//

func TestEvolve_PlotCadence(t *testing.T) {
	cfg := testConfig()
	cfg.MaxStep = 5
	cfg.PlotInt = 2
	cfg.PlotFile = "heat"
	sink := &plotSink{}
	r := newRecorder(t, cfg, integrator.WithPlotWriter(sink))
	ctx := context.Background()

	require.NoError(t, r.it.InitData(ctx))
	require.NoError(t, r.it.Evolve(ctx))

	assert.Equal(t, []string{"heat00000", "heat00002", "heat00004", "heat00005"}, sink.names)
	last := sink.snaps[3]
	assert.Equal(t, 5, last.Step)
	assert.InDelta(t, 0.5, last.Time, 1e-12)
	require.Len(t, last.Levels, 1)
	require.Len(t, last.Levels[0].Data, 1)
	assert.Len(t, last.Levels[0].Data[0], 4, "one slice per box")
	assert.Len(t, last.Levels[0].Data[0][0], 64)
	assert.Equal(t, []integrator.FieldInfo{{Name: "U", NComp: 1, Conserve: true}}, last.Fields)
}

func TestEvolve_PlotDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MaxStep = 3
	sink := &plotSink{}
	r := newRecorder(t, cfg, integrator.WithPlotWriter(sink))
	ctx := context.Background()

	require.NoError(t, r.it.InitData(ctx))
	require.NoError(t, r.it.Evolve(ctx))
	assert.Empty(t, sink.names)
}

func TestSnapshot_TwoLevels(t *testing.T) {
	r := twoLevelRecorder(t, nil)
	r.initFn = func(lev int, _ box.IntVect) float64 { return float64(lev + 1) }
	require.NoError(t, r.it.InitData(context.Background()))

	s, err := r.it.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "plt00000", s.Name)
	assert.Equal(t, 1, s.FinestLevel)
	require.Len(t, s.Levels, 2)
	assert.Equal(t, r.it.BoxArray(1), s.Levels[1].Boxes)
	fine := s.Levels[1].Data[0][0]
	assert.Len(t, fine, 36)
	for _, v := range fine {
		assert.Equal(t, 2.0, v)
	}
	assert.False(t, math.IsNaN(s.Levels[0].Data[0][0][0]))
}

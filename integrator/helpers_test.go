package integrator_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amr/bc"
	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/fab"
	"github.com/katalvlaran/amr/integrator"
	"github.com/katalvlaran/amr/mesh"
)

// call records one hook invocation.
type call struct {
	hook string
	lev  int
	time float64
	dt   float64
}

// recorder is a scriptable physics module with one field U.
type recorder struct {
	it    *integrator.Integrator
	U     integrator.Field
	calls []call

	initFn    func(lev int, p box.IntVect) float64            // default: 1
	advanceFn func(r *recorder, lev int, time, dt float64) error // default: no-op
	tagged    map[int][]box.IntVect                            // cells to tag per level
	advErr    error
}

func (r *recorder) Initialize(lev int) error {
	r.calls = append(r.calls, call{hook: "init", lev: lev})
	return r.U.Level(lev).ForEach(func(_ int, f *fab.FArrayBox) error {
		v := f.ValidBox()
		for j := v.Lo[1]; j <= v.Hi[1]; j++ {
			for i := v.Lo[0]; i <= v.Hi[0]; i++ {
				p := box.IntVect{i, j}
				val := 1.0
				if r.initFn != nil {
					val = r.initFn(lev, p)
				}
				f.Set(p, 0, val)
			}
		}
		return nil
	})
}

func (r *recorder) Advance(lev int, time, dt float64) error {
	r.calls = append(r.calls, call{hook: "advance", lev: lev, time: time, dt: dt})
	if r.advErr != nil {
		return r.advErr
	}
	if r.advanceFn != nil {
		return r.advanceFn(r, lev, time, dt)
	}
	return nil
}

func (r *recorder) TagCellsForRefinement(lev int, tags *fab.TagMask, time float64, _ int) error {
	r.calls = append(r.calls, call{hook: "tag", lev: lev, time: time})
	for _, p := range r.tagged[lev] {
		tags.Set(p)
	}
	return nil
}

// count returns how many calls of hook hit lev (-1 for any level).
func (r *recorder) count(hook string, lev int) int {
	n := 0
	for _, c := range r.calls {
		if c.hook == hook && (lev < 0 || c.lev == lev) {
			n++
		}
	}
	return n
}

// advances returns the recorded Advance calls.
func (r *recorder) advances() []call {
	var out []call
	for _, c := range r.calls {
		if c.hook == "advance" {
			out = append(out, c)
		}
	}
	return out
}

// setValid assigns v to the valid cells of U on lev.
func (r *recorder) setValid(lev int, v float64) error {
	return r.U.Level(lev).ForEach(func(_ int, f *fab.FArrayBox) error {
		f.SetVal(v, f.ValidBox(), 0, 1)
		return nil
	})
}

// testConfig is a 16×16 unit square split into four 8×8 boxes.
func testConfig() integrator.Config {
	cfg := integrator.DefaultConfig()
	cfg.NCell = [2]int{16, 16}
	cfg.MaxGridSize = 8
	cfg.Timestep = 0.1
	cfg.Workers = 2
	cfg.RegridInt = 0
	return cfg
}

// newRecorder registers U (1 component, 2 ghosts, conserved, zero-gradient
// walls) on a fresh integrator.
func newRecorder(t *testing.T, cfg integrator.Config, opts ...integrator.Option) *recorder {
	t.Helper()
	return newRecorderWith(t, cfg, bc.NewConstant(bc.Neumann, 0), opts...)
}

func newRecorderWith(t *testing.T, cfg integrator.Config, bndry integrator.Boundary, opts ...integrator.Option) *recorder {
	t.Helper()
	r := &recorder{tagged: map[int][]box.IntVect{}}
	it, err := integrator.New(cfg, r, opts...)
	require.NoError(t, err)
	require.NoError(t, it.RegisterField(&r.U, bndry, 1, 2, "U", true))
	r.it = it
	t.Cleanup(func() { _ = it.Close() })
	return r
}

// debugLogger captures JSON log lines.
func debugLogger() (zerolog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return zerolog.New(&buf).Level(zerolog.DebugLevel), &buf
}

// countMessages counts log lines with the given message.
func countMessages(buf *bytes.Buffer, msg string) int {
	return strings.Count(buf.String(), fmt.Sprintf(`"message":%q`, msg))
}

// plotSink is an in-memory PlotWriter.
type plotSink struct {
	names []string
	snaps []*integrator.Snapshot
}

func (p *plotSink) WritePlot(_ context.Context, s *integrator.Snapshot) error {
	p.names = append(p.names, s.Name)
	p.snaps = append(p.snaps, s)
	return nil
}

// flakyBoundary wraps a boundary and fails on geometries other than allow.
type flakyBoundary struct {
	inner integrator.Boundary
	allow box.Box
	armed bool
}

var errBoundary = errors.New("boundary exploded")

func (b *flakyBoundary) FillBoundary(f *fab.FArrayBox, geom mesh.Geometry, time float64) error {
	if b.armed && geom.Domain != b.allow {
		return errBoundary
	}
	return b.inner.FillBoundary(f, geom, time)
}

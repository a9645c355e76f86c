package integrator

import (
	"context"
	"fmt"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/mesh"
)

// Snapshot is a copy of the valid data of every level at one coarse step.
type Snapshot struct {
	Name        string // PlotFile prefix plus zero-padded step
	Step        int
	Time        float64
	FinestLevel int
	RefRatio    int
	Fields      []FieldInfo
	Levels      []LevelSnapshot
}

// FieldInfo describes one registered field.
type FieldInfo struct {
	Name     string
	NComp    int
	Conserve bool
}

// LevelSnapshot holds one level of a Snapshot.
type LevelSnapshot struct {
	Level int
	Geom  mesh.Geometry
	Boxes box.Array
	Time  float64
	Step  int
	// Data[f][b] holds field f on box b: valid cells only, component-major,
	// row-major inside a component.
	Data [][][]float64
}

// Snapshot captures the current hierarchy.
// Complexity: O(valid cells × components).
func (it *Integrator) Snapshot() (*Snapshot, error) {
	if it.finest < 0 {
		return nil, fmt.Errorf("Snapshot: %w", ErrNotInitialized)
	}
	s := &Snapshot{
		Name:        fmt.Sprintf("%s%05d", it.cfg.PlotFile, it.step),
		Step:        it.step,
		Time:        it.time,
		FinestLevel: it.finest,
		RefRatio:    it.cfg.RefRatio,
	}
	for _, e := range it.fields {
		s.Fields = append(s.Fields, FieldInfo{Name: e.name, NComp: e.ncomp, Conserve: e.conserve})
	}
	for lev := 0; lev <= it.finest; lev++ {
		l := &it.levels[lev]
		ls := LevelSnapshot{Level: lev, Geom: it.geom[lev], Boxes: l.ba, Time: l.TNew, Step: l.Step}
		for _, e := range it.fields {
			mf := e.f.mf[lev]
			perBox := make([][]float64, mf.Len())
			for b := 0; b < mf.Len(); b++ {
				f := mf.Fab(b)
				v := f.ValidBox()
				out := make([]float64, 0, v.NumPts()*e.ncomp)
				for c := 0; c < e.ncomp; c++ {
					for j := v.Lo[1]; j <= v.Hi[1]; j++ {
						for i := v.Lo[0]; i <= v.Hi[0]; i++ {
							out = append(out, f.At(box.IntVect{i, j}, c))
						}
					}
				}
				perBox[b] = out
			}
			ls.Data = append(ls.Data, perBox)
		}
		s.Levels = append(s.Levels, ls)
	}
	return s, nil
}

// writePlot snapshots the hierarchy and hands it to the PlotWriter.
func (it *Integrator) writePlot(ctx context.Context) error {
	it.lastPlot = it.step
	if it.opts.plot == nil {
		return nil
	}
	s, err := it.Snapshot()
	if err != nil {
		return err
	}
	if err := it.opts.plot.WritePlot(ctx, s); err != nil {
		return fmt.Errorf("write plot %s: %w", s.Name, err)
	}
	it.log.Info().Str("plot", s.Name).Int("step", s.Step).Float64("time", s.Time).Msg("plot written")
	return nil
}

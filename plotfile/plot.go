package plotfile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/katalvlaran/amr/box"
	"github.com/katalvlaran/amr/integrator"
	"github.com/katalvlaran/amr/mesh"
)

// fieldRecord is the packed form of integrator.FieldInfo.
type fieldRecord struct {
	Name     string `msgpack:"name"`
	NComp    int    `msgpack:"ncomp"`
	Conserve bool   `msgpack:"conserve"`
}

// patchRecord holds the valid data of every field on one box.
type patchRecord struct {
	Fields [][]float64 `msgpack:"fields"`
}

// PlotInfo is the metadata of one stored snapshot.
type PlotInfo struct {
	Name        string
	Step        int
	Time        float64
	FinestLevel int
}

// WritePlot stores s under the current run. It implements
// integrator.PlotWriter. Writing the same name twice fails.
func (s *Store) WritePlot(ctx context.Context, snap *integrator.Snapshot) error {
	fields := make([]fieldRecord, len(snap.Fields))
	for i, f := range snap.Fields {
		fields[i] = fieldRecord{Name: f.Name, NComp: f.NComp, Conserve: f.Conserve}
	}
	packedFields, err := msgpack.Marshal(fields)
	if err != nil {
		return fmt.Errorf("pack fields: %w", err)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO plots (run_id, name, step, time, finest_level, ref_ratio, fields)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, s.run.String(), snap.Name, snap.Step, snap.Time, snap.FinestLevel, snap.RefRatio, packedFields)
		if err != nil {
			return fmt.Errorf("insert plot %s: %w", snap.Name, err)
		}
		plotID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		levelStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO levels (plot_id, level, step, time, dom_lo_i, dom_lo_j, dom_hi_i, dom_hi_j,
				prob_lo_x, prob_lo_y, prob_hi_x, prob_hi_y)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer levelStmt.Close()
		patchStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO patches (plot_id, level, box, lo_i, lo_j, hi_i, hi_j, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer patchStmt.Close()

		for _, l := range snap.Levels {
			g := l.Geom
			if _, err := levelStmt.ExecContext(ctx, plotID, l.Level, l.Step, l.Time,
				g.Domain.Lo[0], g.Domain.Lo[1], g.Domain.Hi[0], g.Domain.Hi[1],
				g.ProbLo[0], g.ProbLo[1], g.ProbHi[0], g.ProbHi[1]); err != nil {
				return fmt.Errorf("insert level %d: %w", l.Level, err)
			}
			for b, bx := range l.Boxes {
				rec := patchRecord{Fields: make([][]float64, len(l.Data))}
				for f := range l.Data {
					rec.Fields[f] = l.Data[f][b]
				}
				data, err := msgpack.Marshal(&rec)
				if err != nil {
					return fmt.Errorf("pack level %d box %d: %w", l.Level, b, err)
				}
				if _, err := patchStmt.ExecContext(ctx, plotID, l.Level, b,
					bx.Lo[0], bx.Lo[1], bx.Hi[0], bx.Hi[1], data); err != nil {
					return fmt.Errorf("insert level %d box %d: %w", l.Level, b, err)
				}
			}
		}
		return nil
	})
}

// Plots lists the snapshots of run in step order.
func (s *Store) Plots(ctx context.Context, run uuid.UUID) ([]PlotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, step, time, finest_level FROM plots
		WHERE run_id = ? ORDER BY step, id
	`, run.String())
	if err != nil {
		return nil, fmt.Errorf("list plots: %w", err)
	}
	defer rows.Close()

	var out []PlotInfo
	for rows.Next() {
		var p PlotInfo
		if err := rows.Scan(&p.Name, &p.Step, &p.Time, &p.FinestLevel); err != nil {
			return nil, fmt.Errorf("scan plot: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ReadPlot loads the snapshot name of run.
func (s *Store) ReadPlot(ctx context.Context, run uuid.UUID, name string) (*integrator.Snapshot, error) {
	snap := &integrator.Snapshot{Name: name}
	var plotID int64
	var packedFields []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, step, time, finest_level, ref_ratio, fields FROM plots
		WHERE run_id = ? AND name = ?
	`, run.String(), name).Scan(&plotID, &snap.Step, &snap.Time, &snap.FinestLevel, &snap.RefRatio, &packedFields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("plot %s of run %s: %w", name, run, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read plot %s: %w", name, err)
	}

	var fields []fieldRecord
	if err := msgpack.Unmarshal(packedFields, &fields); err != nil {
		return nil, fmt.Errorf("plot %s fields: %v: %w", name, err, ErrCorrupt)
	}
	for _, f := range fields {
		snap.Fields = append(snap.Fields, integrator.FieldInfo{Name: f.Name, NComp: f.NComp, Conserve: f.Conserve})
	}

	if err := s.readLevels(ctx, plotID, snap); err != nil {
		return nil, fmt.Errorf("plot %s: %w", name, err)
	}
	if err := s.readPatches(ctx, plotID, snap); err != nil {
		return nil, fmt.Errorf("plot %s: %w", name, err)
	}
	return snap, nil
}

func (s *Store) readLevels(ctx context.Context, plotID int64, snap *integrator.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, step, time, dom_lo_i, dom_lo_j, dom_hi_i, dom_hi_j,
			prob_lo_x, prob_lo_y, prob_hi_x, prob_hi_y
		FROM levels WHERE plot_id = ? ORDER BY level
	`, plotID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var l integrator.LevelSnapshot
		var lo, hi box.IntVect
		var plo, phi [2]float64
		if err := rows.Scan(&l.Level, &l.Step, &l.Time, &lo[0], &lo[1], &hi[0], &hi[1],
			&plo[0], &plo[1], &phi[0], &phi[1]); err != nil {
			return err
		}
		if l.Level != len(snap.Levels) {
			return fmt.Errorf("level %d out of order: %w", l.Level, ErrCorrupt)
		}
		if l.Geom, err = mesh.NewGeometry(box.New(lo, hi), plo, phi); err != nil {
			return fmt.Errorf("level %d: %v: %w", l.Level, err, ErrCorrupt)
		}
		l.Data = make([][][]float64, len(snap.Fields))
		snap.Levels = append(snap.Levels, l)
	}
	return rows.Err()
}

func (s *Store) readPatches(ctx context.Context, plotID int64, snap *integrator.Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT level, box, lo_i, lo_j, hi_i, hi_j, data
		FROM patches WHERE plot_id = ? ORDER BY level, box
	`, plotID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var lev, b int
		var lo, hi box.IntVect
		var data []byte
		if err := rows.Scan(&lev, &b, &lo[0], &lo[1], &hi[0], &hi[1], &data); err != nil {
			return err
		}
		if lev < 0 || lev >= len(snap.Levels) || b != len(snap.Levels[lev].Boxes) {
			return fmt.Errorf("level %d box %d out of order: %w", lev, b, ErrCorrupt)
		}
		l := &snap.Levels[lev]
		bx := box.New(lo, hi)

		var rec patchRecord
		if err := msgpack.Unmarshal(data, &rec); err != nil {
			return fmt.Errorf("level %d box %d: %v: %w", lev, b, err, ErrCorrupt)
		}
		if len(rec.Fields) != len(snap.Fields) {
			return fmt.Errorf("level %d box %d: %d fields, want %d: %w", lev, b, len(rec.Fields), len(snap.Fields), ErrCorrupt)
		}
		for f, vals := range rec.Fields {
			if want := bx.NumPts() * snap.Fields[f].NComp; len(vals) != want {
				return fmt.Errorf("level %d box %d field %q: %d values, want %d: %w",
					lev, b, snap.Fields[f].Name, len(vals), want, ErrCorrupt)
			}
			l.Data[f] = append(l.Data[f], vals)
		}
		l.Boxes = append(l.Boxes, bx)
	}
	return rows.Err()
}

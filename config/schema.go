package config

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/amr/bc"
	"github.com/katalvlaran/amr/ic"
	"github.com/katalvlaran/amr/logging"
)

// rawFile mirrors the input schema. Pointers and nil slices mark keys the
// file leaves out.
type rawFile struct {
	AMR  *rawAMR  `toml:"amr" hcl:"amr,block"`
	Heat *rawHeat `toml:"heat" hcl:"heat,block"`
	IC   *rawIC   `toml:"ic" hcl:"ic,block"`
	BC   *rawBC   `toml:"bc" hcl:"bc,block"`
	Log  *rawLog  `toml:"log" hcl:"log,block"`
	Plot *rawPlot `toml:"plot" hcl:"plot,block"`
}

type rawAMR struct {
	MaxStep        *int      `toml:"max_step" hcl:"max_step,optional"`
	StopTime       *float64  `toml:"stop_time" hcl:"stop_time,optional"`
	Timestep       *float64  `toml:"timestep" hcl:"timestep,optional"`
	RegridInt      *int      `toml:"regrid_int" hcl:"regrid_int,optional"`
	PlotInt        *int      `toml:"plot_int" hcl:"plot_int,optional"`
	PlotFile       *string   `toml:"plot_file" hcl:"plot_file,optional"`
	NSubsteps      []int     `toml:"nsubsteps" hcl:"nsubsteps,optional"`
	MaxLevel       *int      `toml:"max_level" hcl:"max_level,optional"`
	RefRatio       *int      `toml:"ref_ratio" hcl:"ref_ratio,optional"`
	NErrorBuf      *int      `toml:"n_error_buf" hcl:"n_error_buf,optional"`
	NProper        *int      `toml:"n_proper" hcl:"n_proper,optional"`
	BlockingFactor *int      `toml:"blocking_factor" hcl:"blocking_factor,optional"`
	MaxGridSize    *int      `toml:"max_grid_size" hcl:"max_grid_size,optional"`
	GridEff        *float64  `toml:"grid_eff" hcl:"grid_eff,optional"`
	NCell          []int     `toml:"n_cell" hcl:"n_cell,optional"`
	ProbLo         []float64 `toml:"prob_lo" hcl:"prob_lo,optional"`
	ProbHi         []float64 `toml:"prob_hi" hcl:"prob_hi,optional"`
	Workers        *int      `toml:"workers" hcl:"workers,optional"`
}

type rawHeat struct {
	Alpha               *float64 `toml:"alpha" hcl:"alpha,optional"`
	RefinementThreshold *float64 `toml:"refinement_threshold" hcl:"refinement_threshold,optional"`
}

type rawIC struct {
	Type    *string   `toml:"type" hcl:"type,optional"`
	Center  []float64 `toml:"center" hcl:"center,optional"`
	Radius  *float64  `toml:"radius" hcl:"radius,optional"`
	Radii   []float64 `toml:"radii" hcl:"radii,optional"`
	Eps     *float64  `toml:"eps" hcl:"eps,optional"`
	Inside  *float64  `toml:"inside" hcl:"inside,optional"`
	Outside *float64  `toml:"outside" hcl:"outside,optional"`
	Dim     *int      `toml:"dim" hcl:"dim,optional"`
	Value   *float64  `toml:"value" hcl:"value,optional"`
}

type rawBC struct {
	Type  *string   `toml:"type" hcl:"type,optional"`
	Value *float64  `toml:"value" hcl:"value,optional"`
	Faces []rawFace `toml:"face" hcl:"face,block"`
}

type rawFace struct {
	Name  string   `toml:"name" hcl:"name,label"`
	Type  string   `toml:"type" hcl:"type"`
	Value *float64 `toml:"value" hcl:"value,optional"`
}

type rawLog struct {
	Level     *string `toml:"level" hcl:"level,optional"`
	JSON      *bool   `toml:"json" hcl:"json,optional"`
	NoColor   *bool   `toml:"no_color" hcl:"no_color,optional"`
	Timestamp *bool   `toml:"timestamp" hcl:"timestamp,optional"`
}

type rawPlot struct {
	DB *string `toml:"db" hcl:"db,optional"`
}

// set copies *src into *dst when src is non-nil.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// pair copies a two-element list into dst.
func pair[T any](key string, dst *[2]T, src []T) error {
	if src == nil {
		return nil
	}
	if len(src) != 2 {
		return fmt.Errorf("%s has %d values, want 2: %w", key, len(src), ErrBadValue)
	}
	*dst = [2]T{src[0], src[1]}
	return nil
}

// resolve applies the file over Default.
func (r rawFile) resolve() (File, error) {
	out := Default()
	if a := r.AMR; a != nil {
		c := &out.Integrator
		set(&c.MaxStep, a.MaxStep)
		set(&c.StopTime, a.StopTime)
		set(&c.Timestep, a.Timestep)
		set(&c.RegridInt, a.RegridInt)
		set(&c.PlotInt, a.PlotInt)
		set(&c.PlotFile, a.PlotFile)
		set(&c.MaxLevel, a.MaxLevel)
		set(&c.RefRatio, a.RefRatio)
		set(&c.NErrorBuf, a.NErrorBuf)
		set(&c.NProper, a.NProper)
		set(&c.BlockingFactor, a.BlockingFactor)
		set(&c.MaxGridSize, a.MaxGridSize)
		set(&c.GridEff, a.GridEff)
		set(&c.Workers, a.Workers)
		if a.NSubsteps != nil {
			c.NSubsteps = a.NSubsteps
		}
		if err := pair("amr.n_cell", &c.NCell, a.NCell); err != nil {
			return File{}, err
		}
		if err := pair("amr.prob_lo", &c.ProbLo, a.ProbLo); err != nil {
			return File{}, err
		}
		if err := pair("amr.prob_hi", &c.ProbHi, a.ProbHi); err != nil {
			return File{}, err
		}
	}
	if h := r.Heat; h != nil {
		set(&out.Heat.Alpha, h.Alpha)
		set(&out.Heat.RefinementThreshold, h.RefinementThreshold)
	}
	if r.IC != nil {
		init, err := r.IC.resolve(out.IC.(ic.Sphere))
		if err != nil {
			return File{}, err
		}
		out.IC = init
	}
	if r.BC != nil {
		b, err := r.BC.resolve()
		if err != nil {
			return File{}, err
		}
		out.BC = b
	}
	if l := r.Log; l != nil {
		if l.Level != nil {
			lvl, err := logging.ParseLevel(*l.Level)
			if err != nil {
				return File{}, fmt.Errorf("log.level: %v: %w", err, ErrBadValue)
			}
			out.Log.Level = lvl
		}
		set(&out.Log.JSON, l.JSON)
		set(&out.Log.NoColor, l.NoColor)
		set(&out.Log.Timestamp, l.Timestamp)
	}
	if p := r.Plot; p != nil {
		set(&out.PlotDB, p.DB)
	}
	return out, nil
}

// resolve builds the initial condition, starting from the default sphere.
func (r *rawIC) resolve(s ic.Sphere) (ic.IC, error) {
	kind := "sphere"
	if r.Type != nil {
		kind = strings.ToLower(strings.TrimSpace(*r.Type))
	}
	switch kind {
	case "sphere":
		if err := pair("ic.center", &s.Center, r.Center); err != nil {
			return nil, err
		}
		set(&s.Radius, r.Radius)
		set(&s.Inside, r.Inside)
		set(&s.Outside, r.Outside)
		set(&s.Dim, r.Dim)
		return s, nil
	case "ellipsoid":
		e := ic.Ellipsoid{Center: s.Center, Radii: [2]float64{s.Radius, s.Radius}, Inside: s.Inside, Outside: s.Outside}
		if err := pair("ic.center", &e.Center, r.Center); err != nil {
			return nil, err
		}
		if r.Radius != nil {
			e.Radii = [2]float64{*r.Radius, *r.Radius}
		}
		if err := pair("ic.radii", &e.Radii, r.Radii); err != nil {
			return nil, err
		}
		set(&e.Eps, r.Eps)
		set(&e.Inside, r.Inside)
		set(&e.Outside, r.Outside)
		return e, nil
	case "constant":
		v := 0.0
		set(&v, r.Value)
		return ic.Constant{Values: []float64{v}}, nil
	}
	return nil, fmt.Errorf("ic.type %q (want sphere, ellipsoid or constant): %w", kind, ErrBadValue)
}

var faceByName = map[string]bc.Face{"xlo": bc.XLo, "xhi": bc.XHi, "ylo": bc.YLo, "yhi": bc.YHi}

// resolve builds the boundary condition: the section-wide type and value,
// then per-face overrides.
func (r *rawBC) resolve() (*bc.Constant, error) {
	t := bc.Neumann
	if r.Type != nil {
		parsed, err := bc.ParseType(*r.Type)
		if err != nil {
			return nil, fmt.Errorf("bc.type: %w", err)
		}
		t = parsed
	}
	v := 0.0
	set(&v, r.Value)
	out := bc.NewConstant(t, v)

	for _, f := range r.Faces {
		face, ok := faceByName[strings.ToLower(f.Name)]
		if !ok {
			return nil, fmt.Errorf("bc.face %q (want xlo, xhi, ylo or yhi): %w", f.Name, ErrBadValue)
		}
		ft, err := bc.ParseType(f.Type)
		if err != nil {
			return nil, fmt.Errorf("bc.face %q: %w", f.Name, err)
		}
		fv := 0.0
		set(&fv, f.Value)
		out.SetFace(face, ft, fv)
	}
	return out, nil
}

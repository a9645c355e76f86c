// SPDX-License-Identifier: MIT

// Package config loads run input files for the amr tools.
//
// Two formats carry the same schema: TOML (.toml) and HCL (.hcl). Every
// section is optional; absent keys keep the defaults of the owning package.
//
//	amr   integrator.Config     (max_step, timestep, max_level, n_cell, ...)
//	heat  heat.Params           (alpha, refinement_threshold)
//	ic    initial condition     (type = "sphere" | "ellipsoid" | "constant", ...)
//	bc    boundary condition    (type, value, per-face "face" blocks)
//	log   logging.Options       (level, json, no_color, timestamp)
//	plot  snapshot database     (db)
//
// Unknown keys are rejected in both formats.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/katalvlaran/amr/bc"
	"github.com/katalvlaran/amr/heat"
	"github.com/katalvlaran/amr/ic"
	"github.com/katalvlaran/amr/integrator"
	"github.com/katalvlaran/amr/logging"
)

var (
	// ErrUnknownFormat indicates a file extension other than .toml or .hcl.
	ErrUnknownFormat = errors.New("config: unknown file format")

	// ErrSyntax indicates a file that does not parse.
	ErrSyntax = errors.New("config: syntax error")

	// ErrUnknownKey indicates keys the schema does not define.
	ErrUnknownKey = errors.New("config: unknown key")

	// ErrBadValue indicates a value outside its allowed set.
	ErrBadValue = errors.New("config: invalid value")
)

// App is the default "app" field of run loggers.
const App = "amrheat"

// File is a decoded and validated input file.
type File struct {
	Integrator integrator.Config
	Heat       heat.Params
	IC         ic.IC
	BC         *bc.Constant
	Log        logging.Options
	PlotDB     string // SQLite snapshot database, "" disables snapshots
}

// Default returns the configuration used for keys a file leaves out.
// Timestep has no default and must be given.
func Default() File {
	return File{
		Integrator: integrator.DefaultConfig(),
		Heat:       heat.DefaultParams(),
		IC:         ic.Sphere{Center: [2]float64{0.5, 0.5}, Radius: 0.25, Inside: 1, Outside: 0},
		BC:         bc.NewConstant(bc.Neumann, 0),
		Log:        logging.DefaultOptions(App),
	}
}

// Load reads and validates the input file at path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("config: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes data in the format given by name's extension.
func Parse(name string, data []byte) (File, error) {
	var raw rawFile
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".toml":
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return File{}, fmt.Errorf("%s: %v: %w", name, err, ErrSyntax)
		}
		if und := meta.Undecoded(); len(und) > 0 {
			keys := make([]string, len(und))
			for i, k := range und {
				keys[i] = k.String()
			}
			return File{}, fmt.Errorf("%s: %s: %w", name, strings.Join(keys, ", "), ErrUnknownKey)
		}
	case ".hcl":
		f, diags := hclparse.NewParser().ParseHCL(data, name)
		if diags.HasErrors() {
			return File{}, fmt.Errorf("%s: %v: %w", name, diags, ErrSyntax)
		}
		if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
			return File{}, fmt.Errorf("%s: %v: %w", name, diags, ErrUnknownKey)
		}
	default:
		return File{}, fmt.Errorf("%s: extension %q: %w", name, ext, ErrUnknownFormat)
	}

	out, err := raw.resolve()
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", name, err)
	}
	if err := out.Validate(); err != nil {
		return File{}, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Validate checks every section.
func (f File) Validate() error {
	if err := f.Integrator.Validate(); err != nil {
		return err
	}
	if err := f.Heat.Validate(); err != nil {
		return err
	}
	if f.IC == nil {
		return fmt.Errorf("ic: %w", heat.ErrNoIC)
	}
	if s, ok := f.IC.(ic.Sphere); ok && s.Radius < 0 {
		return fmt.Errorf("ic: radius %g: %w", s.Radius, ic.ErrBadRadius)
	}
	if e, ok := f.IC.(ic.Ellipsoid); ok {
		if !(e.Radii[0] > 0) || !(e.Radii[1] > 0) {
			return fmt.Errorf("ic: radii %v: %w", e.Radii, ic.ErrBadRadius)
		}
		if e.Eps < 0 || math.IsNaN(e.Eps) {
			return fmt.Errorf("ic: eps %g: %w", e.Eps, ic.ErrBadEps)
		}
	}
	if c, ok := f.IC.(ic.Constant); ok && len(c.Values) != 1 {
		return fmt.Errorf("ic: %d values for 1 component: %w", len(c.Values), ic.ErrBadValues)
	}
	if f.BC == nil {
		return fmt.Errorf("bc: missing: %w", ErrBadValue)
	}
	return f.BC.Validate(1)
}

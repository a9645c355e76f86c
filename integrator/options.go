// SPDX-License-Identifier: MIT

package integrator

import (
	"github.com/rs/zerolog"

	"github.com/katalvlaran/amr/interp"
)

const (
	panicNilPlotWriter   = "integrator: WithPlotWriter: writer is nil"
	panicNilInterpolator = "integrator: WithInterpolator: interpolator is nil"
)

// Option configures an Integrator at construction.
// Constructors panic only on nonsensical arguments (programmer error).
type Option func(*options)

// options is the resolved construction state.
type options struct {
	log    zerolog.Logger
	plot   PlotWriter
	interp interp.Interpolator
}

// defaultOptions: silent logger, no plot output, conservative linear interpolation.
func defaultOptions() options {
	return options{
		log:    zerolog.Nop(),
		interp: interp.CellConservativeLinear{},
	}
}

// WithLogger sets the structured logger. Level events log at Info, per-step
// events at Debug.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithPlotWriter enables snapshot output on the plot cadence.
func WithPlotWriter(w PlotWriter) Option {
	if w == nil {
		panic(panicNilPlotWriter)
	}
	return func(o *options) { o.plot = w }
}

// WithInterpolator replaces the coarse-to-fine spatial interpolator.
func WithInterpolator(it interp.Interpolator) Option {
	if it == nil {
		panic(panicNilInterpolator)
	}
	return func(o *options) { o.interp = it }
}

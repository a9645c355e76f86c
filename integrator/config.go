package integrator

import (
	"fmt"
	"math"
	"runtime"

	"github.com/katalvlaran/amr/box"
)

// Defaults for Config.
const (
	DefaultMaxStep        = math.MaxInt32
	DefaultRegridInt      = 2
	DefaultPlotInt        = -1
	DefaultPlotFile       = "plt"
	DefaultMaxLevel       = 0
	DefaultRefRatio       = 2
	DefaultNErrorBuf      = 1
	DefaultNProper        = 1
	DefaultBlockingFactor = 2
	DefaultMaxGridSize    = 32
	DefaultGridEff        = 0.7
)

// Config holds the run parameters of an Integrator.
type Config struct {
	MaxStep   int     // stop after this many coarse steps
	StopTime  float64 // stop once the simulation time reaches this
	Timestep  float64 // requested coarse timestep
	RegridInt int     // regrid every RegridInt coarse steps (<= 0 disables)
	PlotInt   int     // plot every PlotInt coarse steps (<= 0 disables)
	PlotFile  string  // snapshot name prefix

	// NSubsteps is empty (use RefRatio everywhere), one value for every
	// level, or one value per level 1..MaxLevel.
	NSubsteps []int

	MaxLevel       int     // finest level allowed
	RefRatio       int     // refinement ratio between consecutive levels
	NErrorBuf      int     // coarse cells added around each tag
	NProper        int     // proper nesting width in coarse cells
	BlockingFactor int     // fine grids are multiples of this
	MaxGridSize    int     // longest grid side
	GridEff        float64 // minimum tagged fraction of a new grid

	NCell  [2]int     // level-0 cells per direction
	ProbLo [2]float64 // physical lower corner
	ProbHi [2]float64 // physical upper corner

	Workers int // parallel workers per level
}

// DefaultConfig returns a Config on a 32×32 unit square with one level.
// Timestep must still be set by the caller.
func DefaultConfig() Config {
	return Config{
		MaxStep:        DefaultMaxStep,
		StopTime:       math.MaxFloat64,
		RegridInt:      DefaultRegridInt,
		PlotInt:        DefaultPlotInt,
		PlotFile:       DefaultPlotFile,
		MaxLevel:       DefaultMaxLevel,
		RefRatio:       DefaultRefRatio,
		NErrorBuf:      DefaultNErrorBuf,
		NProper:        DefaultNProper,
		BlockingFactor: DefaultBlockingFactor,
		MaxGridSize:    DefaultMaxGridSize,
		GridEff:        DefaultGridEff,
		NCell:          [2]int{32, 32},
		ProbLo:         [2]float64{0, 0},
		ProbHi:         [2]float64{1, 1},
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// configErrorf wraps ErrBadConfig with a formatted reason.
func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrBadConfig)
}

// Validate reports the first inconsistency in c.
// Complexity: O(MaxLevel).
func (c Config) Validate() error {
	switch {
	case c.MaxStep < 0:
		return configErrorf("max_step %d < 0", c.MaxStep)
	case !(c.Timestep > 0) || math.IsInf(c.Timestep, 0):
		return configErrorf("timestep %g must be positive and finite", c.Timestep)
	case math.IsNaN(c.StopTime):
		return configErrorf("stop_time is NaN")
	case c.MaxLevel < 0:
		return configErrorf("max_level %d < 0", c.MaxLevel)
	case c.RefRatio < 2:
		return configErrorf("ref_ratio %d < 2", c.RefRatio)
	case c.NErrorBuf < 0 || c.NProper < 0:
		return configErrorf("n_error_buf %d, n_proper %d must be >= 0", c.NErrorBuf, c.NProper)
	case c.BlockingFactor < 1 || c.MaxGridSize < c.BlockingFactor || c.MaxGridSize%c.BlockingFactor != 0:
		return configErrorf("max_grid_size %d must be a multiple of blocking_factor %d", c.MaxGridSize, c.BlockingFactor)
	case c.MaxLevel > 0 && c.BlockingFactor%c.RefRatio != 0:
		return configErrorf("blocking_factor %d must be a multiple of ref_ratio %d", c.BlockingFactor, c.RefRatio)
	case c.GridEff <= 0 || c.GridEff > 1:
		return configErrorf("grid_eff %g outside (0, 1]", c.GridEff)
	case c.Workers < 1:
		return configErrorf("workers %d < 1", c.Workers)
	case c.PlotInt > 0 && c.PlotFile == "":
		return configErrorf("plot_file is empty")
	}
	for d := 0; d < box.SpaceDim; d++ {
		if c.NCell[d] < 1 || c.NCell[d]%c.BlockingFactor != 0 {
			return configErrorf("n_cell[%d] = %d must be a positive multiple of blocking_factor %d", d, c.NCell[d], c.BlockingFactor)
		}
		if !(c.ProbHi[d] > c.ProbLo[d]) {
			return configErrorf("prob_hi[%d] = %g must exceed prob_lo[%d] = %g", d, c.ProbHi[d], d, c.ProbLo[d])
		}
	}
	if n := len(c.NSubsteps); n > 1 && n != c.MaxLevel {
		return configErrorf("nsubsteps has %d values, want 1 or max_level=%d", n, c.MaxLevel)
	}
	for i, s := range c.NSubsteps {
		if s < 1 {
			return configErrorf("nsubsteps[%d] = %d < 1", i, s)
		}
	}
	return nil
}

// substeps expands NSubsteps to one entry per level; entry 0 is 1.
func (c Config) substeps() []int {
	out := make([]int, c.MaxLevel+1)
	out[0] = 1
	for lev := 1; lev <= c.MaxLevel; lev++ {
		switch len(c.NSubsteps) {
		case 0:
			out[lev] = c.RefRatio
		case 1:
			out[lev] = c.NSubsteps[0]
		default:
			out[lev] = c.NSubsteps[lev-1]
		}
	}
	return out
}

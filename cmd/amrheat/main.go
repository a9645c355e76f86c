// SPDX-License-Identifier: MIT

// Command amrheat runs the adaptive heat equation solver from an input file.
//
//	amrheat -config heat.toml [-max-step N] [-plot-db path] [-label name] [-interp linear|constant]
//
// Snapshots go to the SQLite database named by -plot-db or the plot.db key
// of the input file. Logging follows the log section and the AMR_LOG_*
// environment variables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/katalvlaran/amr/config"
	"github.com/katalvlaran/amr/heat"
	"github.com/katalvlaran/amr/integrator"
	"github.com/katalvlaran/amr/interp"
	"github.com/katalvlaran/amr/logging"
	"github.com/katalvlaran/amr/plotfile"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "amrheat:", err)
		}
		os.Exit(2)
	}
}

// run parses args, runs the problem and prints a per-level summary to out.
// Logs go to logOut.
func run(ctx context.Context, args []string, out, logOut io.Writer) error {
	fs := flag.NewFlagSet("amrheat", flag.ContinueOnError)
	fs.SetOutput(logOut)
	path := fs.String("config", "", "input file (.toml or .hcl)")
	maxStep := fs.Int("max-step", -1, "override amr.max_step")
	plotDB := fs.String("plot-db", "", "override plot.db")
	label := fs.String("label", "", "run label stored with snapshots (default: input file name)")
	interpName := fs.String("interp", "linear", "coarse-to-fine interpolation: linear|constant")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *path == "" {
		fs.Usage()
		return errUsage
	}

	file, err := config.Load(*path)
	if err != nil {
		return err
	}
	if *maxStep >= 0 {
		file.Integrator.MaxStep = *maxStep
	}
	if *plotDB != "" {
		file.PlotDB = *plotDB
	}
	if *label == "" {
		*label = *path
	}

	logOpts, err := logging.ApplyEnv(file.Log)
	if err != nil {
		return err
	}
	logOpts.Out = logOut
	log := logging.New(logOpts)

	opts := []integrator.Option{integrator.WithLogger(log)}
	switch *interpName {
	case "linear":
	case "constant":
		opts = append(opts, integrator.WithInterpolator(interp.PiecewiseConstant{}))
	default:
		return fmt.Errorf("-interp %q (want linear or constant): %w", *interpName, errUsage)
	}

	var store *plotfile.Store
	if file.PlotDB != "" {
		if store, err = plotfile.Open(ctx, file.PlotDB, *label); err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, integrator.WithPlotWriter(store))
		log.Info().Str("db", file.PlotDB).Str("run", store.RunID().String()).Msg("plot store opened")
	}

	h, err := heat.New(file.Integrator, file.Heat, file.IC, file.BC, opts...)
	if err != nil {
		return err
	}
	it := h.Integrator()
	defer it.Close()

	if err := it.InitData(ctx); err != nil {
		return err
	}
	if err := it.Evolve(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "step %d time %g finest level %d\n", it.CurrentStep(), it.Time(), it.FinestLevel())
	for lev := 0; lev <= it.FinestLevel(); lev++ {
		temp := h.Temp.Level(lev)
		fmt.Fprintf(out, "level %d: %d boxes %d cells min %.6g max %.6g\n",
			lev, len(it.BoxArray(lev)), it.CountCells(lev), temp.Min(0), temp.Max(0))
	}
	if store != nil {
		fmt.Fprintf(out, "run %s\n", store.RunID())
	}
	return nil
}

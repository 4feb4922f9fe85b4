package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	plt "github.com/phil-mansfield/pyplot"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/phil-mansfield/gogrid"
	"github.com/phil-mansfield/gogrid/errs"
	"github.com/phil-mansfield/gogrid/io"
	"github.com/phil-mansfield/gogrid/render"
	"github.com/phil-mansfield/gogrid/shade"
)

const version = "0.1.0"

var (
	verbose     bool
	quiet       bool
	profileFile string
)

func main() {
	root := &cobra.Command{
		Use:           "gogrid",
		Short:         "Resamples scattered measurements onto regular grids.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetHandler(cli.Default)
			if verbose { log.SetLevel(log.DebugLevel) }
		},
	}
	root.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "Enable debug log output.",
	)

	grid := &cobra.Command{
		Use:   "grid run.cfg",
		Short: "Resample the samples described by a run file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return gridMain(cmd.Context(), args[0])
		},
	}
	grid.Flags().BoolVarP(&quiet, "quiet", "q", false, "Hide the progress bar.")
	grid.Flags().StringVar(
		&profileFile, "cpuprofile", "", "Write a CPU profile to this file.",
	)

	example := &cobra.Command{
		Use:   "example-config",
		Short: "Print an annotated example run file.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), io.ExampleConfig)
		},
	}

	ver := &cobra.Command{
		Use:   "version",
		Short: "Print the version number.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gogrid %s\n", version)
		},
	}

	root.AddCommand(grid, example, ver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		log.WithError(err).Error("gogrid failed")
		stop()
		os.Exit(1)
	}
}

func gridMain(ctx context.Context, fname string) error {
	if profileFile != "" {
		prof, err := os.Create(profileFile)
		if err != nil { return errors.Wrap(err, "creating profile file") }
		defer prof.Close()
		if err := pprof.StartCPUProfile(prof); err != nil {
			return errors.Wrap(err, "starting CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	con, err := io.ReadConfig(fname)
	if err != nil { return err }

	g, err := con.Grid.Grid()
	if err != nil { return err }
	intr, err := con.Interpolator.Interpolator()
	if err != nil { return err }

	t0 := time.Now()
	s, err := io.ReadSamples(con.Input)
	if err != nil { return err }
	log.WithFields(log.Fields{
		"file":    con.Input.File,
		"records": s.Len(),
		"valid":   s.ValidLen(),
		"elapsed": time.Since(t0).Round(time.Millisecond),
	}).Info("read samples")

	r, err := gogrid.NewResampler(g, intr)
	if err != nil { return err }
	r.SetWorkers(con.Resample.Workers)
	r.SetChunkSize(con.Resample.ChunkSize)
	if !quiet {
		bar := progressbar.NewOptions64(
			int64(g.Len()),
			progressbar.OptionSetDescription("resampling"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprint(os.Stderr, "\n") }),
			progressbar.OptionSetWriter(os.Stderr),
		)
		r.SetProgress(func(done, total int) { bar.Set(done) })
	}

	f, err := r.ResampleContext(ctx, s)
	if err != nil { return err }

	m, err := gogrid.Classify(f, con.Quality.MinConfidence)
	if err != nil { return err }
	log.WithFields(log.Fields{
		"valid":        m.Count(gogrid.Valid),
		"extrapolated": m.Count(gogrid.Extrapolated),
		"empty":        m.Count(gogrid.Empty),
	}).Info("classified cells")

	for c := 0; c < f.Components(); c++ {
		logSummary(f, m, c)
	}

	var extra []io.Plane
	if con.Output.HillShade {
		hs, err := shade.FieldHillShade(f, 0, con.Output.ShadeOptions())
		if err != nil { return err }
		extra = append(extra,
			io.Plane{Name: "smooth", Values: hs.Smooth},
			io.Plane{Name: "hillshade", Values: hs.Bumps},
		)
		log.WithFields(log.Fields{
			"left": hs.Extent.Left, "right": hs.Extent.Right,
			"bottom": hs.Extent.Bottom, "top": hs.Extent.Top,
		}).Debug("hill shade extent")
	}

	if err := writeOutput(con.Output.File, f, m, extra); err != nil {
		return err
	}
	log.WithField("file", con.Output.File).Info("wrote field")

	return plotMain(con, f, m)
}

func logSummary(f *gogrid.Field, m *gogrid.Mask, c int) {
	sum, err := gogrid.Summarize(f, m, c)
	if errors.Is(err, errs.ErrEmptyInput) {
		log.WithField("component", c).Warn("no valid cells to summarize")
		return
	} else if err != nil {
		log.WithError(err).WithField("component", c).Warn("summary failed")
		return
	}

	log.WithFields(log.Fields{
		"component": c,
		"count":     sum.Count,
		"min":       sum.Min,
		"max":       sum.Max,
		"mean":      sum.Mean,
		"median":    sum.Median,
		"stddev":    sum.StdDev,
		"p5":        sum.Percentile5,
		"p95":       sum.Percentile95,
	}).Info("summary")
}

func writeOutput(
	fname string, f *gogrid.Field, m *gogrid.Mask, extra []io.Plane,
) error {
	out, err := os.Create(fname)
	if err != nil { return errors.Wrap(err, "creating output file") }

	if err := io.WriteField(out, f, m, extra...); err != nil {
		out.Close()
		return err
	}
	return errors.Wrap(out.Close(), "closing output file")
}

func plotMain(con *io.RunConfig, f *gogrid.Field, m *gogrid.Mask) error {
	out := &con.Output
	if out.ProfilePlot == "" && out.HistPlot == "" { return nil }

	if out.ProfilePlot != "" {
		cell := out.ProfileCell
		if len(cell) == 0 {
			shape := f.Grid().Shape()
			cell = make([]int, len(shape))
			for i := range shape { cell[i] = shape[i] / 2 }
		}

		p, err := render.NewProfile(f, m, out.ProfileAxis, cell, 0)
		if err != nil { return err }
		render.PlotProfile(
			p, fmt.Sprintf("axis %d", out.ProfileAxis), "value",
			fmt.Sprintf("profile through %v", cell), out.ProfilePlot,
		)
	}

	if out.HistPlot != "" {
		h, err := render.NewHist(f, m, 0, render.HistInfo{
			Min: out.HistMin, Max: out.HistMax,
			Bins: out.HistBins, Scale: out.HistScale,
		})
		if err != nil { return err }
		render.PlotHist(h, "value", "valid cells", out.HistPlot)
	}

	plt.Execute()
	return nil
}

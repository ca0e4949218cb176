package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rqnt/internal/config"
	"github.com/san-kum/rqnt/internal/export"
	"github.com/san-kum/rqnt/internal/gui"
	"github.com/san-kum/rqnt/internal/knot"
	"github.com/san-kum/rqnt/internal/lattice"
	"github.com/san-kum/rqnt/internal/loop"
	"github.com/san-kum/rqnt/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	configFile string
	preset     string
	logFile    string

	outPath  string
	format   string
	atMs     int64
	frames   int
	stepMs   int
	row      float64
	samples  int
	spectrum bool
	duration time.Duration
	interval time.Duration
)

var logger = log.New(io.Discard, "", 0)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rqnt",
		Short: "knot lattice laboratory",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return viz.Run(cfg, logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset scene")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write diagnostics to this file")

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render one frame to png or svg",
		RunE:  renderFrame,
	}
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "lattice.png", "output file")
	renderCmd.Flags().StringVar(&format, "format", "", "png or svg (default from extension)")
	renderCmd.Flags().Int64Var(&atMs, "at", 0, "frame timestamp in ms")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record the pulse animation as a gif",
		RunE:  recordGIF,
	}
	recordCmd.Flags().StringVarP(&outPath, "out", "o", "lattice.gif", "output file")
	recordCmd.Flags().IntVar(&frames, "frames", 60, "number of frames")
	recordCmd.Flags().IntVar(&stepMs, "step", 50, "ms between frames")

	probeCmd := &cobra.Command{
		Use:   "probe x y [x y ...]",
		Short: "show where lattice points end up",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("expected pairs of pixel coordinates")
			}
			return nil
		},
		RunE: probe,
	}

	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "plot displacement magnitude along a row",
		RunE:  profile,
	}
	profileCmd.Flags().Float64Var(&row, "y", -1, "row in pixels (default: middle)")
	profileCmd.Flags().IntVar(&samples, "samples", 80, "sample count")
	profileCmd.Flags().BoolVar(&spectrum, "spectrum", false, "also plot the spatial frequency spectrum")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset scenes",
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "run the render loop headless and report frame stats",
		RunE:  bench,
	}
	benchCmd.Flags().DurationVar(&duration, "time", 2*time.Second, "how long to run")
	benchCmd.Flags().DurationVar(&interval, "interval", time.Second/60, "frame interval")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "open the lattice in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return gui.Run(cfg, logger)
		},
	}

	rootCmd.AddCommand(renderCmd, recordCmd, probeCmd, profileCmd, presetsCmd, benchCmd, guiCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging sends diagnostics to --log. Without it they are dropped, since
// the interactive views own the terminal.
func setupLogging() error {
	if logFile == "" {
		return nil
	}
	f, err := tea.LogToFile(logFile, "rqnt")
	if err != nil {
		return err
	}
	logger = log.New(f, "rqnt ", log.LstdFlags|log.Lmicroseconds)
	return nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" && preset != "" {
		return nil, fmt.Errorf("--config and --preset are mutually exclusive")
	}
	if preset != "" {
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
		}
		return cfg, nil
	}
	if configFile != "" {
		return config.Load(configFile)
	}
	return config.DefaultConfig(), nil
}

func renderFrame(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := cfg.Scene()
	if err != nil {
		return err
	}

	f := format
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(outPath)), ".")
	}
	at := time.UnixMilli(atMs)
	r := cfg.Renderer()

	var data []byte
	switch f {
	case "svg":
		s := export.NewSVG(cfg.Viewport.Width, cfg.Viewport.Height)
		if err := r.Draw(s, snap, at); err != nil {
			return err
		}
		data = []byte(s.String())
	case "png":
		ras := export.NewRaster(cfg.Viewport.Width, cfg.Viewport.Height)
		if err := r.Draw(ras, snap, at); err != nil {
			return err
		}
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := ras.WritePNG(out); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%dx%d, %d knots)\n", outPath, cfg.Viewport.Width, cfg.Viewport.Height, snap.Len())
		return nil
	default:
		return fmt.Errorf("unsupported format %q", f)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%dx%d, %d knots)\n", outPath, cfg.Viewport.Width, cfg.Viewport.Height, snap.Len())
	return nil
}

func recordGIF(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := cfg.Scene()
	if err != nil {
		return err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	err = export.RecordGIF(out, cfg.Renderer(), snap, export.Recording{
		Width:  cfg.Viewport.Width,
		Height: cfg.Viewport.Height,
		Frames: frames,
		Step:   time.Duration(stepMs) * time.Millisecond,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", outPath, frames)
	return nil
}

func probe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := cfg.Scene()
	if err != nil {
		return err
	}
	vp, p := cfg.ViewportValue(), cfg.LatticeParams()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "X\tY\tX'\tY'\tDX\tDY\t|D|")
	for i := 0; i < len(args); i += 2 {
		x, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return fmt.Errorf("bad x %q: %w", args[i], err)
		}
		y, err := strconv.ParseFloat(args[i+1], 64)
		if err != nil {
			return fmt.Errorf("bad y %q: %w", args[i+1], err)
		}
		pr := lattice.ProbeAt(r2.Vec{X: x, Y: y}, vp, snap, p)
		fmt.Fprintf(w, "%.2f\t%.2f\t%.4f\t%.4f\t%+.4f\t%+.4f\t%.4f\n",
			pr.Sample.X, pr.Sample.Y, pr.Displaced.X, pr.Displaced.Y, pr.Offset.X, pr.Offset.Y, pr.Magnitude)
	}
	return w.Flush()
}

func profile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := cfg.Scene()
	if err != nil {
		return err
	}
	vp := cfg.ViewportValue()
	y := row
	if y < 0 {
		y = vp.Height / 2
	}

	data := lattice.Profile(y, samples, vp, snap, cfg.LatticeParams())
	fmt.Printf("knots: %d\n", snap.Len())
	for i := 0; i < snap.Len(); i++ {
		k := snap.At(i)
		fmt.Printf("  %-8s %-9s %.4f eV  %s\n", k.Category(), k.ID(), k.Mass(), k.Chirality())
	}
	fmt.Println()
	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("|displacement| along y=%.0f", y)),
	)
	fmt.Println(graph)
	if !spectrum || snap.Len() == 0 {
		return nil
	}

	ps := lattice.Spectrum(data)
	fmt.Println()
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("spatial spectrum"),
	))
	if k := lattice.Dominant(ps); k > 0 {
		// bins count cycles across the zero-padded span
		step := vp.Width / float64(len(data)-1)
		span := step * float64(2*len(ps))
		fmt.Printf("dominant wavelength: %.1f px\n", span/float64(k))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKNOTS\tBRANCH\tSIZE\tCATEGORIES")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		cats := make([]string, 0, len(cfg.Knots))
		for _, k := range cfg.Knots {
			cats = append(cats, k.Category)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%s\n", name, len(cfg.Knots), cfg.Branch, cfg.Size, strings.Join(cats, ","))
	}
	return w.Flush()
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	snap, err := cfg.Scene()
	if err != nil {
		return err
	}
	store := knot.NewStore(snap)
	r := cfg.Renderer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	l := loop.Attach(
		func() (*export.Raster, error) {
			return export.NewRaster(cfg.Viewport.Width, cfg.Viewport.Height), nil
		},
		func(s *export.Raster, now time.Time) error {
			return r.Draw(s, store.Load(), now)
		},
		loop.WithLogger(logger),
	)

	start := time.Now()
	err = l.Run(ctx, interval)
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FRAMES\tFAILURES\tELAPSED\tFPS\tKNOTS\tSTATE")
	fmt.Fprintf(w, "%d\t%d\t%s\t%.1f\t%d\t%s\n",
		l.Frames(), l.Failures(), elapsed.Round(time.Millisecond),
		float64(l.Frames())/elapsed.Seconds(), snap.Len(), l.State())
	return w.Flush()
}

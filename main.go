package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-satellite-raytracer/internal/config"
	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/internal/observability"
	"github.com/df07/go-satellite-raytracer/pkg/camera"
	"github.com/df07/go-satellite-raytracer/pkg/kepler"
	"github.com/df07/go-satellite-raytracer/pkg/recorder"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	Frames     int
	DT         float64
	Seed       uint64
	SeedSet    bool
	Scene      string
	OutputDir  string
	ConfigPath string
	Kepler     bool
	TimeScale  float64
}

func main() {
	// Parse command line flags
	frames := flag.Int("frames", 1, "Number of frames to render")
	dt := flag.Float64("dt", 1.0/30.0, "Simulated seconds between frames")
	seed := flag.Uint64("seed", 0, "Planet seed (overrides config)")
	sceneType := flag.String("scene", "", "Scene preset: "+fmt.Sprint(scene.SceneIDs()))
	out := flag.String("out", "", "Output directory for frame_NNNNN.png files")
	configPath := flag.String("config", "", "Path to a JSON config file")
	keplerMode := flag.Bool("kepler", false, "Run the 2-D Kepler simulator and print an orbit summary")
	timeScale := flag.Float64("timescale", 60, "Kepler mode: simulated seconds per -dt")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Satellite Raytracer")
		fmt.Println("Usage: satellite-raytracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Frames are saved to <out>/frame_00000.png, frame_00001.png, ...")
		return
	}

	opts := options{
		Frames:     *frames,
		DT:         *dt,
		Seed:       *seed,
		Scene:      *sceneType,
		OutputDir:  *out,
		ConfigPath: *configPath,
		Kepler:     *keplerMode,
		TimeScale:  *timeScale,
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.SeedSet = true
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if opts.Kepler {
		err = runKepler(opts, os.Stdout)
	} else {
		err = run(ctx, opts, os.Stdout)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveConfig layers the config file, environment and flags
func resolveConfig(opts options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}
	if opts.SeedSet {
		cfg.Seed = opts.Seed
	}
	if opts.Scene != "" {
		cfg.Scene = opts.Scene
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// run renders opts.Frames frames headlessly, advancing the orbit by opts.DT each frame
func run(ctx context.Context, opts options, stdout io.Writer) error {
	if opts.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", opts.Frames)
	}
	if opts.DT < 0 {
		return fmt.Errorf("dt must not be negative, got %g", opts.DT)
	}

	cfg, err := resolveConfig(opts)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg.Logging())

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), logger)
	if err != nil {
		return fmt.Errorf("initialising tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown, logger)

	sceneOpts, err := cfg.SceneOptions()
	if err != nil {
		return err
	}
	sc := scene.NewScene(sceneOpts)

	rt := renderer.NewRaytracer(sc, cfg.RendererConfig(), renderer.WithLogger(logger))
	defer rt.Close()

	rec := recorder.New(cfg.OutputDir)
	if err := rec.Start(); err != nil {
		return err
	}
	defer rec.Stop()

	fmt.Fprintf(stdout, "Rendering %d frame(s) of scene %q (seed %d) at %dx%d...\n",
		opts.Frames, cfg.Scene, cfg.Seed, cfg.Render.Width, cfg.Render.Height)

	cam := camera.New()
	settings := cfg.RenderSettings()
	startTime := time.Now()
	var total renderer.RenderStats
	for i := 0; i < opts.Frames; i++ {
		frame, stats, err := rt.Render(ctx, cam, settings, opts.DT)
		if err != nil {
			return fmt.Errorf("rendering frame %d: %w", i, err)
		}
		if _, err := rec.Save(frame); err != nil {
			return err
		}
		total.TotalPixels += stats.TotalPixels
		total.ShadowedPixels += stats.ShadowedPixels
		total.MarchSteps += stats.MarchSteps
	}

	fmt.Fprintf(stdout, "Render completed in %v\n", time.Since(startTime).Round(time.Millisecond))
	fmt.Fprintf(stdout, "Pixels: %d, shadowed: %d, march steps: %d\n",
		total.TotalPixels, total.ShadowedPixels, total.MarchSteps)
	fmt.Fprintf(stdout, "Frames saved to %s\n", rec.Dir())
	return nil
}

// runKepler steps the 2-D simulator and prints its orbit summary
func runKepler(opts options, stdout io.Writer) error {
	if opts.Frames < 0 {
		return errors.New("frames must not be negative")
	}

	settings := kepler.DefaultSettings()
	if opts.SeedSet {
		settings.Randomize(rand.New(rand.NewPCG(opts.Seed, opts.Seed)))
	}
	sim := kepler.NewSimulatorFromSettings(settings)

	step := opts.DT * opts.TimeScale
	for i := 0; i < opts.Frames; i++ {
		sim.Step(step)
	}

	state := sim.CurrentState()
	fmt.Fprintf(stdout, "%s around %s after %s\n",
		settings.SatelliteName, settings.BodyName, kepler.FormatSeconds(state.Time))
	for _, line := range kepler.StateSummary(sim.Mu, state.Position, state.Velocity) {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

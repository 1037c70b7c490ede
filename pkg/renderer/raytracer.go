package renderer

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/pkg/camera"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
)

const tracerName = "github.com/df07/go-satellite-raytracer/pkg/renderer"

// DefaultTileSize is the edge length of a render tile in pixels
const DefaultTileSize = 32

// FrameObserver receives the statistics of every completed frame
type FrameObserver interface {
	ObserveFrame(stats RenderStats)
}

// Config controls how frames are split across workers
type Config struct {
	TileSize   int // Size of each tile (32x32 default)
	NumWorkers int // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		TileSize:   DefaultTileSize,
		NumWorkers: 0, // Auto-detect CPU count
	}
}

// Option customises a Raytracer
type Option func(*Raytracer)

// WithLogger sets the logger used for per-frame diagnostics
func WithLogger(l logging.Logger) Option {
	return func(rt *Raytracer) {
		if l != nil {
			rt.logger = l
		}
	}
}

// WithObserver registers a FrameObserver, typically a metrics collector
func WithObserver(o FrameObserver) Option {
	return func(rt *Raytracer) {
		rt.observer = o
	}
}

// Raytracer renders frames of a scene on a persistent worker pool
type Raytracer struct {
	scene    *scene.Scene
	config   Config
	pool     *WorkerPool
	logger   logging.Logger
	observer FrameObserver
	tracer   trace.Tracer
}

// NewRaytracer creates a raytracer for scene. Call Close to stop its workers.
func NewRaytracer(s *scene.Scene, config Config, opts ...Option) *Raytracer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultTileSize
	}

	rt := &Raytracer{
		scene:  s,
		config: config,
		pool:   NewWorkerPool(config.NumWorkers),
		logger: logging.Noop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.pool.Start()
	return rt
}

// Scene returns the scene being rendered
func (rt *Raytracer) Scene() *scene.Scene {
	return rt.scene
}

// NumWorkers returns the size of the worker pool
func (rt *Raytracer) NumWorkers() int {
	return rt.pool.GetNumWorkers()
}

// Close stops the worker pool
func (rt *Raytracer) Close() {
	rt.pool.Stop()
}

// Render traces one frame from cam and then advances the satellite by dt.
// The frame shows the satellite where it was before the advance.
func (rt *Raytracer) Render(ctx context.Context, cam camera.Camera, settings Settings, dt float64) (*Frame, RenderStats, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return nil, RenderStats{}, fmt.Errorf("invalid image size %dx%d", settings.Width, settings.Height)
	}

	ctx, span := rt.tracer.Start(ctx, "render.frame", trace.WithAttributes(
		attribute.Int("render.width", settings.Width),
		attribute.Int("render.height", settings.Height),
		attribute.Int("render.max_steps", settings.MaxSteps),
	))
	defer span.End()

	startTime := time.Now()

	snapshot := newFrameSnapshot(rt.scene, cam, settings)
	rt.scene.Orbit.Advance(dt)

	frame := NewFrame(settings.Width, settings.Height)
	tiles := NewTileGrid(settings.Width, settings.Height, rt.config.TileSize)

	// Buffered for every tile so workers never block on an abandoned render
	results := make(chan TileResult, len(tiles))

	submitted := 0
	for _, tile := range tiles {
		if err := ctx.Err(); err != nil {
			break
		}
		rt.pool.SubmitTask(TileTask{Tile: tile, snapshot: snapshot, frame: frame, results: results})
		submitted++
	}

	var stats RenderStats
	for i := 0; i < submitted; i++ {
		select {
		case result := <-results:
			stats.Merge(result.Stats)
		case <-ctx.Done():
			span.RecordError(ctx.Err())
			span.SetStatus(codes.Error, "render cancelled")
			return nil, RenderStats{}, fmt.Errorf("render cancelled after %d of %d tiles: %w", i, len(tiles), ctx.Err())
		}
	}
	if submitted < len(tiles) {
		span.SetStatus(codes.Error, "render cancelled")
		return nil, RenderStats{}, fmt.Errorf("render cancelled before dispatch: %w", ctx.Err())
	}

	stats.Duration = time.Since(startTime)

	span.SetAttributes(
		attribute.Int("render.pixels.planet", stats.PlanetPixels),
		attribute.Int("render.pixels.satellite", stats.SatellitePixels),
		attribute.Int("render.pixels.background", stats.BackgroundPixels),
		attribute.Int("render.march_steps", stats.MarchSteps),
	)
	rt.logger.Debug(ctx, "frame rendered",
		logging.Int("width", settings.Width),
		logging.Int("height", settings.Height),
		logging.Int("tiles", stats.Tiles),
		logging.Int("workers", rt.pool.GetNumWorkers()),
		logging.Int("march_steps", stats.MarchSteps),
		logging.Duration("elapsed", stats.Duration),
	)
	if rt.observer != nil {
		rt.observer.ObserveFrame(stats)
	}

	return frame, stats, nil
}

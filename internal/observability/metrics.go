package observability

import (
	"fmt"
	"net/http"

	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RenderCollector bundles Prometheus metrics for the render loop and the
// front ends. It satisfies renderer.FrameObserver.
type RenderCollector struct {
	gatherer prometheus.Gatherer

	Frames         prometheus.Counter
	FrameDurations prometheus.Histogram
	Pixels         *prometheus.CounterVec
	ShadowedPixels prometheus.Counter
	MarchSteps     prometheus.Counter

	Regenerations  prometheus.Counter
	RecordedFrames prometheus.Counter
	StreamClients  prometheus.Gauge
}

// NewRenderCollector registers render metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
// Registering twice against the same registry reuses the existing collectors.
func NewRenderCollector(reg prometheus.Registerer) (*RenderCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "render_frames_total",
		Help: "Total number of rendered frames.",
	}), "render_frames_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "render_frame_duration_seconds",
		Help:    "Wall time spent rendering one frame.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}), "render_frame_duration_seconds")
	if err != nil {
		return nil, err
	}

	pixels := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "render_pixels_total",
		Help: "Rendered pixels, labeled by what the primary ray hit.",
	}, []string{"kind"})
	pixels, err = registerCounterVec(reg, pixels, "render_pixels_total")
	if err != nil {
		return nil, err
	}

	shadowed, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "render_shadowed_pixels_total",
		Help: "Lit-side pixels occluded by the other body.",
	}), "render_shadowed_pixels_total")
	if err != nil {
		return nil, err
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "render_march_steps_total",
		Help: "Sphere-marching iterations across primary and shadow rays.",
	}), "render_march_steps_total")
	if err != nil {
		return nil, err
	}

	regenerations, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surface_regenerations_total",
		Help: "Number of planet surfaces generated from a new seed.",
	}), "surface_regenerations_total")
	if err != nil {
		return nil, err
	}

	recorded, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recorded_frames_total",
		Help: "Frames written to disk by the recorder.",
	}), "recorded_frames_total")
	if err != nil {
		return nil, err
	}

	clients, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stream_clients",
		Help: "Currently connected websocket viewers.",
	}), "stream_clients")
	if err != nil {
		return nil, err
	}

	return &RenderCollector{
		gatherer:       gatherer,
		Frames:         frames,
		FrameDurations: durations,
		Pixels:         pixels,
		ShadowedPixels: shadowed,
		MarchSteps:     steps,
		Regenerations:  regenerations,
		RecordedFrames: recorded,
		StreamClients:  clients,
	}, nil
}

// ObserveFrame records the statistics of one rendered frame
func (c *RenderCollector) ObserveFrame(stats renderer.RenderStats) {
	if c == nil {
		return
	}
	c.Frames.Inc()
	c.FrameDurations.Observe(stats.Duration.Seconds())
	for kind, n := range stats.PixelsByKind() {
		c.Pixels.WithLabelValues(kind).Add(float64(n))
	}
	c.ShadowedPixels.Add(float64(stats.ShadowedPixels))
	c.MarchSteps.Add(float64(stats.MarchSteps))
}

// ObserveRegeneration counts a new planet surface
func (c *RenderCollector) ObserveRegeneration() {
	if c == nil {
		return
	}
	c.Regenerations.Inc()
}

// ObserveRecordedFrame counts a frame saved to disk
func (c *RenderCollector) ObserveRecordedFrame() {
	if c == nil {
		return
	}
	c.RecordedFrames.Inc()
}

// SetStreamClients sets the connected viewer gauge
func (c *RenderCollector) SetStreamClients(n int) {
	if c == nil {
		return
	}
	c.StreamClients.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RenderCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

// Package session owns the interactive state of one visualiser: the camera,
// the scene, the render settings and the recorder. Frame steps and user
// commands are serialized so a command never lands in the middle of a frame.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/pkg/camera"
	"github.com/df07/go-satellite-raytracer/pkg/orbit"
	"github.com/df07/go-satellite-raytracer/pkg/recorder"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
)

// MaxStep caps the simulated time between two frames, in seconds
const MaxStep = 0.05

// ErrInvalidSettings is returned by SetSettings for unusable render settings
var ErrInvalidSettings = errors.New("invalid render settings")

// Metrics receives session-level events
type Metrics interface {
	ObserveRegeneration()
	ObserveRecordedFrame()
}

// FrameListener is called after every stepped frame, outside the session lock
type FrameListener func(frame *renderer.Frame, stats renderer.RenderStats)

// Option customises a Session
type Option func(*Session)

// WithLogger sets the session logger
func WithLogger(l logging.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the receiver for regeneration and recording events
func WithMetrics(m Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithCamera replaces the default camera
func WithCamera(c camera.Camera) Option {
	return func(s *Session) {
		s.camera = c
	}
}

// Session drives frames of one scene
type Session struct {
	mu sync.Mutex

	id        string
	camera    camera.Camera
	scene     *scene.Scene
	settings  renderer.Settings
	raytracer *renderer.Raytracer
	recorder  *recorder.Recorder

	logger  logging.Logger
	metrics Metrics

	last   time.Time
	frames uint64

	listenersMu sync.RWMutex
	listeners   []FrameListener
}

// New creates a session rendering rt's scene. The time of the first step is
// measured from the moment New returns.
func New(rt *renderer.Raytracer, rec *recorder.Recorder, settings renderer.Settings, opts ...Option) *Session {
	s := &Session{
		id:        logging.NewID(),
		camera:    camera.New(),
		scene:     rt.Scene(),
		settings:  settings,
		raytracer: rt,
		recorder:  rec,
		logger:    logging.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logging.String("session_id", s.id))
	s.last = time.Now()
	return s
}

// ID returns the session identifier used in logs
func (s *Session) ID() string {
	return s.id
}

// AddFrameListener registers fn for every subsequent frame
func (s *Session) AddFrameListener(fn FrameListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Step renders one frame at wall time now and advances the satellite by the
// elapsed time since the previous step, capped at MaxStep. When recording,
// the frame is also saved; a save failure is returned alongside the frame.
func (s *Session) Step(ctx context.Context, now time.Time) (*renderer.Frame, renderer.RenderStats, error) {
	s.mu.Lock()

	dt := min(now.Sub(s.last).Seconds(), MaxStep)
	if dt < 0 {
		dt = 0
	}
	s.last = now

	frame, stats, err := s.raytracer.Render(ctx, s.camera, s.settings, dt)
	if err != nil {
		s.mu.Unlock()
		return nil, renderer.RenderStats{}, fmt.Errorf("rendering frame %d: %w", s.frames, err)
	}
	s.frames++

	var saveErr error
	if s.recorder != nil && s.recorder.Active() {
		path, err := s.recorder.Save(frame)
		if err != nil {
			saveErr = fmt.Errorf("saving frame: %w", err)
			s.logger.Warn(ctx, "frame not recorded", logging.Err(err))
		} else {
			s.logger.Debug(ctx, "frame recorded", logging.String("path", path))
			if s.metrics != nil {
				s.metrics.ObserveRecordedFrame()
			}
		}
	}
	s.mu.Unlock()

	s.listenersMu.RLock()
	listeners := s.listeners
	s.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(frame, stats)
	}

	return frame, stats, saveErr
}

// Render traces the current state with settings without advancing the
// satellite or touching the recorder.
func (s *Session) Render(ctx context.Context, settings renderer.Settings) (*renderer.Frame, error) {
	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	frame, _, err := s.raytracer.Render(ctx, s.camera, settings, 0)
	if err != nil {
		return nil, fmt.Errorf("rendering still: %w", err)
	}
	return frame, nil
}

// Inspect reports what the primary ray through pixel (x, y) of the current
// view hits
func (s *Session) Inspect(x, y int) (renderer.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.raytracer.Inspect(s.camera, s.settings, x, y)
}

// Orbit turns the camera around its target, in radians
func (s *Session) Orbit(dYaw, dPitch float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Orbit(dYaw, dPitch)
}

// Zoom scales the camera distance
func (s *Session) Zoom(factor float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Zoom(factor)
}

// Pan moves the camera target in the view plane
func (s *Session) Pan(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Pan(dx, dy)
}

// Lift moves the camera target along world z
func (s *Session) Lift(dz float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Lift(dz)
}

// SetOrbit changes the satellite's orbit radius and angular velocity
func (s *Session) SetOrbit(radius, speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Orbit.SetRadius(radius)
	s.scene.Orbit.SetSpeed(speed)
}

// SetOrbitRadius changes only the orbit radius
func (s *Session) SetOrbitRadius(radius float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Orbit.SetRadius(radius)
}

// SetOrbitSpeed changes only the angular velocity
func (s *Session) SetOrbitSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.Orbit.SetSpeed(speed)
}

// Regenerate replaces the planet surface with one generated from seed
func (s *Session) Regenerate(ctx context.Context, seed uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.scene.Surface.Regenerate(seed)
	s.logger.Info(ctx, "surface regenerated",
		logging.Uint64("seed", seed),
		logging.Duration("elapsed", time.Since(start)),
	)
	if s.metrics != nil {
		s.metrics.ObserveRegeneration()
	}
}

// SetRecording starts or stops saving frames. Starting restarts numbering.
func (s *Session) SetRecording(ctx context.Context, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recorder == nil {
		return fmt.Errorf("recording unavailable: %w", recorder.ErrNotRecording)
	}
	if !active {
		s.recorder.Stop()
		s.logger.Info(ctx, "recording stopped", logging.Int("frames", s.recorder.FrameIndex()))
		return nil
	}
	if err := s.recorder.Start(); err != nil {
		return err
	}
	s.logger.Info(ctx, "recording started", logging.String("dir", s.recorder.Dir()))
	return nil
}

// SetSettings replaces the render settings for subsequent steps
func (s *Session) SetSettings(settings renderer.Settings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}

// Settings returns the current render settings
func (s *Session) Settings() renderer.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func validateSettings(settings renderer.Settings) error {
	if settings.Width <= 0 || settings.Height <= 0 {
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidSettings, settings.Width, settings.Height)
	}
	if settings.FOV <= 0 || settings.MaxSteps <= 0 || settings.MaxDistance <= 0 || settings.Tolerance <= 0 {
		return fmt.Errorf("%w: fov, steps, distance and tolerance must be positive", ErrInvalidSettings)
	}
	return nil
}

// CameraState is the JSON view of the camera
type CameraState struct {
	Distance float64    `json:"distance"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
	Target   [3]float64 `json:"target"`
}

// OrbitState is the JSON view of the satellite orbit
type OrbitState struct {
	Radius   float64    `json:"radius"`
	Speed    float64    `json:"speed"`
	Angle    float64    `json:"angle"`
	Position [3]float64 `json:"position"`
}

// State is a consistent copy of the session for front ends
type State struct {
	ID        string      `json:"id"`
	Camera    CameraState `json:"camera"`
	Orbit     OrbitState  `json:"orbit"`
	Seed      uint64      `json:"seed"`
	Recording bool        `json:"recording"`
	Frames    uint64      `json:"frames"`
	Width     int         `json:"width"`
	Height    int         `json:"height"`
}

// Snapshot returns the current state
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		ID: s.id,
		Camera: CameraState{
			Distance: s.camera.Distance,
			Yaw:      s.camera.Yaw,
			Pitch:    s.camera.Pitch,
			Target:   [3]float64{s.camera.Target.X, s.camera.Target.Y, s.camera.Target.Z},
		},
		Orbit:     orbitState(s.scene.Orbit),
		Seed:      s.scene.Surface.Seed(),
		Recording: s.recorder != nil && s.recorder.Active(),
		Frames:    s.frames,
		Width:     s.settings.Width,
		Height:    s.settings.Height,
	}
}

// Camera returns a copy of the camera
func (s *Session) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func orbitState(b *orbit.Body) OrbitState {
	radius, speed, angle := b.Parameters()
	p := b.Position()
	return OrbitState{
		Radius:   radius,
		Speed:    speed,
		Angle:    angle,
		Position: [3]float64{p.X, p.Y, p.Z},
	}
}

// Package config loads application settings from defaults, an optional JSON
// file and SATVIZ_* environment variables, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
)

// ErrInvalid is wrapped by every validation and parse failure
var ErrInvalid = errors.New("invalid config")

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "SATVIZ_"

// Config is the full application configuration
type Config struct {
	Seed  uint64 `json:"seed"`
	Scene string `json:"scene"`

	// Zero keeps the scene preset's value
	OrbitRadius float64 `json:"orbitRadius,omitempty"`
	OrbitSpeed  float64 `json:"orbitSpeed,omitempty"`

	Render RenderConfig `json:"render"`
	Server ServerConfig `json:"server"`
	Log    LogConfig    `json:"log"`

	OutputDir string `json:"outputDir"`
}

// RenderConfig controls image size and the march budget
type RenderConfig struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	FOVDeg      float64 `json:"fovDeg"`
	MaxDistance float64 `json:"maxDistance"`
	Tolerance   float64 `json:"tolerance"`
	MaxSteps    int     `json:"maxSteps"`
	TileSize    int     `json:"tileSize"`
	Workers     int     `json:"workers"` // 0 uses every CPU
}

// ServerConfig controls the web front end
type ServerConfig struct {
	Addr          string  `json:"addr"`
	Domain        string  `json:"domain"` // enables autocert HTTPS when set
	CertCache     string  `json:"certCache"`
	StaticDir     string  `json:"staticDir"`
	FrameRate     float64 `json:"frameRate"` // /api/frame requests per second per client
	FrameBurst    int     `json:"frameBurst"`
	FrameInterval int     `json:"frameIntervalMs"` // websocket push interval
	StreamWidth   int     `json:"streamWidth"`
	StreamHeight  int     `json:"streamHeight"`
}

// LogConfig mirrors logging.Config
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns the built-in configuration
func Default() Config {
	rs := renderer.DefaultSettings()
	return Config{
		Seed:  1,
		Scene: "default",
		Render: RenderConfig{
			Width:       rs.Width,
			Height:      rs.Height,
			FOVDeg:      60,
			MaxDistance: rs.MaxDistance,
			Tolerance:   rs.Tolerance,
			MaxSteps:    rs.MaxSteps,
			TileSize:    renderer.DefaultTileSize,
			Workers:     0,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			CertCache:     "certs",
			StaticDir:     "web/static",
			FrameRate:     5,
			FrameBurst:    10,
			FrameInterval: 30,
			StreamWidth:   480,
			StreamHeight:  360,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		OutputDir: "frames",
	}
}

// Load reads a JSON file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays SATVIZ_* environment variables
func (c *Config) ApplyEnv() error {
	var errs []error
	setString := func(name string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, name, v))
				return
			}
			*dst = n
		}
	}
	setFloat := func(name string, dst *float64) {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s%s=%q", ErrInvalid, EnvPrefix, name, v))
				return
			}
			*dst = f
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %sSEED=%q", ErrInvalid, EnvPrefix, v))
		} else {
			c.Seed = seed
		}
	}
	setString("SCENE", &c.Scene)
	setFloat("ORBIT_RADIUS", &c.OrbitRadius)
	setFloat("ORBIT_SPEED", &c.OrbitSpeed)
	setString("OUTPUT_DIR", &c.OutputDir)

	setInt("WIDTH", &c.Render.Width)
	setInt("HEIGHT", &c.Render.Height)
	setFloat("FOV", &c.Render.FOVDeg)
	setFloat("MAX_DISTANCE", &c.Render.MaxDistance)
	setFloat("TOLERANCE", &c.Render.Tolerance)
	setInt("MAX_STEPS", &c.Render.MaxSteps)
	setInt("TILE_SIZE", &c.Render.TileSize)
	setInt("WORKERS", &c.Render.Workers)

	setString("ADDR", &c.Server.Addr)
	setString("DOMAIN", &c.Server.Domain)
	setString("CERT_CACHE", &c.Server.CertCache)
	setString("STATIC_DIR", &c.Server.StaticDir)
	setFloat("FRAME_RATE", &c.Server.FrameRate)
	setInt("FRAME_BURST", &c.Server.FrameBurst)
	setInt("FRAME_INTERVAL_MS", &c.Server.FrameInterval)

	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

// Validate rejects settings the renderer or server cannot use
func (c Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		fail("image size %dx%d must be positive", c.Render.Width, c.Render.Height)
	}
	if c.Render.FOVDeg <= 0 || c.Render.FOVDeg >= 180 {
		fail("fov %g must be in (0, 180) degrees", c.Render.FOVDeg)
	}
	if c.Render.MaxSteps <= 0 {
		fail("max steps %d must be positive", c.Render.MaxSteps)
	}
	if c.Render.MaxDistance <= 0 {
		fail("max distance %g must be positive", c.Render.MaxDistance)
	}
	if c.Render.Tolerance <= 0 {
		fail("tolerance %g must be positive", c.Render.Tolerance)
	}
	if c.Render.TileSize < 0 || c.Render.Workers < 0 {
		fail("tile size and workers must not be negative")
	}
	if c.OrbitRadius < 0 {
		fail("orbit radius %g must not be negative", c.OrbitRadius)
	}
	if _, err := scene.OptionsFor(c.Scene, scene.DefaultOptions()); err != nil {
		fail("%v", err)
	}
	if c.Server.FrameRate <= 0 || c.Server.FrameBurst <= 0 {
		fail("frame rate limit %g/%d must be positive", c.Server.FrameRate, c.Server.FrameBurst)
	}
	if c.Server.FrameInterval <= 0 {
		fail("frame interval %dms must be positive", c.Server.FrameInterval)
	}
	if c.Server.StreamWidth <= 0 || c.Server.StreamHeight <= 0 {
		fail("stream size %dx%d must be positive", c.Server.StreamWidth, c.Server.StreamHeight)
	}
	return errors.Join(errs...)
}

// RenderSettings converts the render section for the renderer
func (c Config) RenderSettings() renderer.Settings {
	return renderer.Settings{
		Width:       c.Render.Width,
		Height:      c.Render.Height,
		FOV:         c.Render.FOVDeg * math.Pi / 180,
		MaxDistance: c.Render.MaxDistance,
		Tolerance:   c.Render.Tolerance,
		MaxSteps:    c.Render.MaxSteps,
	}
}

// RendererConfig returns the worker pool configuration
func (c Config) RendererConfig() renderer.Config {
	return renderer.Config{
		TileSize:   c.Render.TileSize,
		NumWorkers: c.Render.Workers,
	}
}

// SceneOptions resolves the scene preset, seed and orbit overrides
func (c Config) SceneOptions() (scene.Options, error) {
	base := scene.DefaultOptions()
	opts, err := scene.OptionsFor(c.Scene, base)
	if err != nil {
		return base, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	opts.Seed = c.Seed
	if c.OrbitRadius > 0 {
		opts.OrbitRadius = c.OrbitRadius
	}
	if c.OrbitSpeed != 0 {
		opts.OrbitSpeed = c.OrbitSpeed
	}
	return opts, nil
}

// FrameInterval returns the websocket push interval
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.Server.FrameInterval) * time.Millisecond
}

// Logging returns the logger configuration
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}

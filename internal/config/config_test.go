package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Expected default config to be valid, got %v", err)
	}

	rs := cfg.RenderSettings()
	if rs.Width != 640 || rs.Height != 480 {
		t.Errorf("Expected 640x480, got %dx%d", rs.Width, rs.Height)
	}
	if math.Abs(rs.FOV-math.Pi/3) > 1e-12 {
		t.Errorf("Expected FOV pi/3, got %f", rs.FOV)
	}
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"seed": 42, "scene": "retrograde", "render": {"width": 320, "maxSteps": 64}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Seed != 42 || cfg.Scene != "retrograde" {
		t.Errorf("Expected seed 42 and retrograde, got %d and %s", cfg.Seed, cfg.Scene)
	}
	if cfg.Render.Width != 320 || cfg.Render.MaxSteps != 64 {
		t.Errorf("Expected width 320 and 64 steps, got %d and %d", cfg.Render.Width, cfg.Render.MaxSteps)
	}
	// Fields missing from the file keep their defaults
	if cfg.Render.Height != 480 || cfg.Server.Addr != ":8080" {
		t.Errorf("Expected defaults preserved, got height %d addr %s", cfg.Render.Height, cfg.Server.Addr)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Error("Expected defaults for empty path")
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(bad); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for malformed file, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected ErrNotExist for missing file, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("SATVIZ_SEED", "7")
	t.Setenv("SATVIZ_SCENE", "eclipse")
	t.Setenv("SATVIZ_WIDTH", "200")
	t.Setenv("SATVIZ_FOV", "45")
	t.Setenv("SATVIZ_DOMAIN", "sat.example.com")
	t.Setenv("SATVIZ_LOG_LEVEL", "debug")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}

	if cfg.Seed != 7 || cfg.Scene != "eclipse" {
		t.Errorf("Expected seed 7 and eclipse, got %d and %s", cfg.Seed, cfg.Scene)
	}
	if cfg.Render.Width != 200 || cfg.Render.FOVDeg != 45 {
		t.Errorf("Expected width 200 and fov 45, got %d and %f", cfg.Render.Width, cfg.Render.FOVDeg)
	}
	if cfg.Server.Domain != "sat.example.com" {
		t.Errorf("Expected domain override, got %q", cfg.Server.Domain)
	}
	if cfg.Logging().Level != "debug" {
		t.Errorf("Expected debug log level, got %q", cfg.Logging().Level)
	}
}

func TestApplyEnv_ParseErrors(t *testing.T) {
	t.Setenv("SATVIZ_SEED", "-1")
	t.Setenv("SATVIZ_HEIGHT", "tall")

	cfg := Default()
	err := cfg.ApplyEnv()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Expected ErrInvalid, got %v", err)
	}
	if cfg.Seed != 1 || cfg.Render.Height != 480 {
		t.Error("Expected unparsable values to leave fields unchanged")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Render.Width = 0 }},
		{"negative height", func(c *Config) { c.Render.Height = -5 }},
		{"zero steps", func(c *Config) { c.Render.MaxSteps = 0 }},
		{"zero tolerance", func(c *Config) { c.Render.Tolerance = 0 }},
		{"flat fov", func(c *Config) { c.Render.FOVDeg = 180 }},
		{"unknown scene", func(c *Config) { c.Scene = "nowhere" }},
		{"negative workers", func(c *Config) { c.Render.Workers = -1 }},
		{"zero frame rate", func(c *Config) { c.Server.FrameRate = 0 }},
		{"zero interval", func(c *Config) { c.Server.FrameInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestSceneOptions(t *testing.T) {
	cfg := Default()
	cfg.Seed = 99
	cfg.Scene = "low-orbit"

	opts, err := cfg.SceneOptions()
	if err != nil {
		t.Fatalf("SceneOptions failed: %v", err)
	}
	if opts.Seed != 99 {
		t.Errorf("Expected seed 99, got %d", opts.Seed)
	}
	if opts.OrbitRadius != 2.8 {
		t.Errorf("Expected preset radius 2.8, got %f", opts.OrbitRadius)
	}

	cfg.OrbitRadius = 6
	cfg.OrbitSpeed = -0.2
	opts, _ = cfg.SceneOptions()
	if opts.OrbitRadius != 6 || opts.OrbitSpeed != -0.2 {
		t.Errorf("Expected overrides 6 and -0.2, got %f and %f", opts.OrbitRadius, opts.OrbitSpeed)
	}

	cfg.Scene = "missing"
	if _, err := cfg.SceneOptions(); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for unknown scene, got %v", err)
	}
}

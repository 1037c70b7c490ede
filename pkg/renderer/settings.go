package renderer

import (
	"math"

	"github.com/df07/go-satellite-raytracer/pkg/geometry"
)

// Settings controls a single render call
type Settings struct {
	Width       int     // Image width in pixels
	Height      int     // Image height in pixels
	FOV         float64 // Vertical field of view in radians
	MaxDistance float64 // Rays marching past this are misses
	Tolerance   float64 // Planet surface hit threshold
	MaxSteps    int     // Planet march step budget
}

// DefaultSettings returns the standard 640x480 view
func DefaultSettings() Settings {
	return Settings{
		Width:       640,
		Height:      480,
		FOV:         60 * math.Pi / 180,
		MaxDistance: 100.0,
		Tolerance:   0.005,
		MaxSteps:    128,
	}
}

// AspectRatio returns width / height
func (s Settings) AspectRatio() float64 {
	return float64(s.Width) / float64(s.Height)
}

// MarchLimits returns the planet march budget
func (s Settings) MarchLimits() geometry.MarchLimits {
	return geometry.MarchLimits{
		MaxDistance: s.MaxDistance,
		Tolerance:   s.Tolerance,
		MaxSteps:    s.MaxSteps,
	}
}

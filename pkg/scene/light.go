package scene

import "github.com/df07/go-satellite-raytracer/pkg/core"

// Light is a distant directional light. Direction points from the light into
// the scene and need not be unit length.
type Light struct {
	Direction core.Vec3
	Color     core.Vec3
	Intensity float64
}

// NewDefaultLight returns the warm key light used by every preset
func NewDefaultLight() Light {
	return Light{
		Direction: core.NewVec3(0.6, -0.8, -0.4),
		Color:     core.NewVec3(1.0, 0.95, 0.9),
		Intensity: 1.2,
	}
}

// ToLight returns the unit vector from a surface towards the light
func (l Light) ToLight() core.Vec3 {
	return l.Direction.Negate().Normalize()
}

package geometry

import "github.com/df07/go-satellite-raytracer/pkg/core"

// originNudge advances a ray that passes through the world origin, where the
// surface direction is undefined
const originNudge = 0.1

// RadiusField reports the surface radius of a star-shaped body centred on the
// world origin
type RadiusField interface {
	RadiusAtDirection(direction core.Vec3) float64
}

// MarchLimits bounds a sphere-marching query
type MarchLimits struct {
	MaxDistance float64
	Tolerance   float64
	MaxSteps    int
}

// HeightField is the implicit surface |p| = RadiusAtDirection(p)
type HeightField struct {
	Field RadiusField
}

// NewHeightField wraps a radius field as a marchable surface
func NewHeightField(field RadiusField) HeightField {
	return HeightField{Field: field}
}

// March sphere-marches ray against the surface. It returns the hit, if any,
// and the number of steps taken.
func (h HeightField) March(ray core.Ray, limits MarchLimits) (Hit, int, bool) {
	t := 0.0
	for step := 0; step < limits.MaxSteps; step++ {
		p := ray.At(t)
		radial := p.Length()
		if radial < 1e-5 {
			t += originNudge
			continue
		}

		signed := radial - h.Field.RadiusAtDirection(p)
		if signed < limits.Tolerance {
			return Hit{T: t, Point: p}, step + 1, true
		}

		// Under-relaxed so thin ridges are not stepped over
		t += max(0.7*signed, 0.5*limits.Tolerance)
		if t > limits.MaxDistance {
			return Hit{}, step + 1, false
		}
	}
	return Hit{}, limits.MaxSteps, false
}

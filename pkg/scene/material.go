package scene

import (
	"math"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

// Material is a Phong surface description
type Material struct {
	BaseColor core.Vec3
	Specular  float64 // Specular coefficient
	Shininess float64 // Phong exponent
}

// NewPlanetMaterial returns the green-grey terrain material
func NewPlanetMaterial() Material {
	return Material{BaseColor: core.NewVec3(0.4, 0.55, 0.35), Specular: 0.2, Shininess: 32}
}

// NewSatelliteMaterial returns the bright metallic satellite material
func NewSatelliteMaterial() Material {
	return Material{BaseColor: core.NewVec3(0.8, 0.8, 0.85), Specular: 0.4, Shininess: 64}
}

// Lighting holds the per-hit terms Shade combines
type Lighting struct {
	Diffuse  float64
	Specular float64
}

// Illuminate computes the Lambert and Phong terms for a lit point. All
// vectors are unit length and point away from the surface.
func (m Material) Illuminate(normal, toLight, toViewer core.Vec3) Lighting {
	reflected := core.Reflect(toLight, normal)
	return Lighting{
		Diffuse:  math.Max(normal.Dot(toLight), 0),
		Specular: math.Pow(math.Max(reflected.Dot(toViewer), 0), m.Shininess),
	}
}

// Shade returns base·(ambient + diffuse·I) + specular·spec·I
func (m Material) Shade(l Lighting, ambient, intensity float64) core.Vec3 {
	return m.BaseColor.Multiply(ambient + l.Diffuse*intensity).
		AddScalar(m.Specular * l.Specular * intensity)
}

package scene

import (
	"github.com/df07/go-satellite-raytracer/pkg/core"
	"github.com/df07/go-satellite-raytracer/pkg/orbit"
	"github.com/df07/go-satellite-raytracer/pkg/surface"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Surface *surface.Store // Planet height field, swapped on regeneration
	Orbit   *orbit.Body    // Satellite orbit, advanced once per frame
	Light   Light

	SatelliteRadius   float64
	PlanetMaterial    Material
	SatelliteMaterial Material
	PlanetAmbient     float64
	SatelliteAmbient  float64

	SpaceColor core.Vec3 // Background for rays that hit nothing
	SkyColor   core.Vec3 // Haze tint blended into high terrain
}

// Options controls the parts of a scene that differ between presets
type Options struct {
	Surface         surface.Config
	Seed            uint64
	OrbitRadius     float64
	OrbitSpeed      float64
	OrbitAngle      float64
	SatelliteRadius float64
	Light           Light
}

// DefaultOptions returns the standard planet, orbit and light
func DefaultOptions() Options {
	return Options{
		Surface:         surface.DefaultConfig(),
		Seed:            1,
		OrbitRadius:     4.0,
		OrbitSpeed:      0.8,
		OrbitAngle:      0.0,
		SatelliteRadius: 0.25,
		Light:           NewDefaultLight(),
	}
}

// NewScene generates the planet and places the satellite
func NewScene(opts Options) *Scene {
	body := orbit.NewBody(opts.OrbitRadius, opts.OrbitSpeed)
	body.SetAngle(opts.OrbitAngle)

	return &Scene{
		Surface:           surface.NewStore(opts.Surface, opts.Seed),
		Orbit:             body,
		Light:             opts.Light,
		SatelliteRadius:   opts.SatelliteRadius,
		PlanetMaterial:    NewPlanetMaterial(),
		SatelliteMaterial: NewSatelliteMaterial(),
		PlanetAmbient:     0.08,
		SatelliteAmbient:  0.05,
		SpaceColor:        core.NewVec3(0.02, 0.02, 0.05),
		SkyColor:          core.NewVec3(0.1, 0.2, 0.4),
	}
}

// NewDefaultScene creates the default scene for seed
func NewDefaultScene(seed uint64) *Scene {
	opts := DefaultOptions()
	opts.Seed = seed
	return NewScene(opts)
}

// Package kepler is a planar two-body orbit simulator. It is independent of
// the ray-traced view and works in kilometres and seconds.
package kepler

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// EarthMu is Earth's standard gravitational parameter in km^3/s^2
const EarthMu = 398600.4418

// Settings describes the initial orbit setup
type Settings struct {
	Mu               float64 `json:"mu"`
	BodyRadiusKm     float64 `json:"bodyRadiusKm"`
	BodyName         string  `json:"bodyName"`
	SatelliteName    string  `json:"satelliteName"`
	DistanceKm       float64 `json:"distanceKm"`
	VelocityFactor   float64 `json:"velocityFactor"`
	PlaneRotationDeg float64 `json:"planeRotationDeg"`
}

// DefaultSettings returns a geostationary-distance circular orbit around Earth
func DefaultSettings() Settings {
	return Settings{
		Mu:               EarthMu,
		BodyRadiusKm:     6378.137,
		BodyName:         "Earth",
		SatelliteName:    "Satellite",
		DistanceKm:       42164.0,
		VelocityFactor:   1.0,
		PlaneRotationDeg: 0.0,
	}
}

// CircularVelocity returns the speed of a circular orbit at DistanceKm
func (s Settings) CircularVelocity() float64 {
	return math.Sqrt(s.Mu / s.DistanceKm)
}

// InitialState places the satellite at DistanceKm along +x, moving along +y
// at VelocityFactor times circular speed, with both vectors rotated
// counter-clockwise by PlaneRotationDeg.
func (s Settings) InitialState() (position, velocity mgl64.Vec2) {
	rot := mgl64.Rotate2D(mgl64.DegToRad(s.PlaneRotationDeg))
	position = rot.Mul2x1(mgl64.Vec2{s.DistanceKm, 0})
	velocity = rot.Mul2x1(mgl64.Vec2{0, s.VelocityFactor * s.CircularVelocity()})
	return position, velocity
}

// Randomize draws a new distance, velocity factor and plane rotation from rng
func (s *Settings) Randomize(rng *rand.Rand) {
	s.DistanceKm = uniform(rng, s.BodyRadiusKm+500.0, 70000.0)
	s.VelocityFactor = uniform(rng, 0.6, 1.4)
	s.PlaneRotationDeg = uniform(rng, 0.0, 360.0)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

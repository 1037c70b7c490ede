package renderer

import (
	"math"

	"github.com/df07/go-satellite-raytracer/pkg/camera"
	"github.com/df07/go-satellite-raytracer/pkg/core"
	"github.com/df07/go-satellite-raytracer/pkg/geometry"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
	"github.com/df07/go-satellite-raytracer/pkg/surface"
)

// shadowBias lifts shadow rays off the surface they start on
const shadowBias = 0.01

// Sample is the result of tracing one primary ray
type Sample struct {
	Color    core.Vec3
	Kind     HitKind
	T        float64
	Point    core.Vec3
	Normal   core.Vec3
	Diffuse  float64 // Lambert term after shadowing
	Shadowed bool
	Steps    int // Planet march steps spent on this pixel
}

// frameSnapshot freezes everything a frame reads. Tracing only reads it, so
// tiles can be traced in any order on any number of goroutines.
type frameSnapshot struct {
	settings Settings
	origin   core.Vec3
	forward  core.Vec3
	right    core.Vec3
	up       core.Vec3
	tanHalf  float64
	aspect   float64

	field     *surface.Field
	planet    geometry.HeightField
	satellite geometry.Sphere

	toLight       core.Vec3
	intensity     float64
	planetMat     scene.Material
	satelliteMat  scene.Material
	planetAmbient float64
	satAmbient    float64
	spaceColor    core.Vec3
	skyColor      core.Vec3
	shadowLimits  geometry.MarchLimits // stock budget, independent of settings
}

// newFrameSnapshot captures the camera basis, the current surface and the
// satellite's position. It does not advance the orbit.
func newFrameSnapshot(s *scene.Scene, cam camera.Camera, settings Settings) *frameSnapshot {
	pos, forward, right, up := cam.Basis()
	field := s.Surface.Load()

	return &frameSnapshot{
		settings: settings,
		origin:   pos,
		forward:  forward,
		right:    right,
		up:       up,
		tanHalf:  math.Tan(settings.FOV / 2),
		aspect:   settings.AspectRatio(),

		field:     field,
		planet:    geometry.NewHeightField(field),
		satellite: geometry.NewSphere(s.Orbit.Position(), s.SatelliteRadius),

		toLight:       s.Light.ToLight(),
		intensity:     s.Light.Intensity,
		planetMat:     s.PlanetMaterial,
		satelliteMat:  s.SatelliteMaterial,
		planetAmbient: s.PlanetAmbient,
		satAmbient:    s.SatelliteAmbient,
		spaceColor:    s.SpaceColor,
		skyColor:      s.SkyColor,
		shadowLimits:  DefaultSettings().MarchLimits(),
	}
}

// primaryRay returns the camera ray through the centre of pixel (x, y)
func (fs *frameSnapshot) primaryRay(x, y int) core.Ray {
	w := float64(fs.settings.Width)
	h := float64(fs.settings.Height)
	ndcY := (1 - 2*(float64(y)+0.5)/h) * fs.tanHalf
	ndcX := (2*(float64(x)+0.5)/w - 1) * fs.tanHalf * fs.aspect

	direction := fs.forward.
		Add(fs.right.Multiply(ndcX)).
		Add(fs.up.Multiply(ndcY)).
		Normalize()
	return core.NewRay(fs.origin, direction)
}

// trace resolves the nearest of the two bodies along ray and shades it
func (fs *frameSnapshot) trace(ray core.Ray) Sample {
	satHit, satOK := fs.satellite.Hit(ray)
	planetHit, steps, planetOK := fs.planet.March(ray, fs.settings.MarchLimits())

	var sample Sample
	switch {
	case satOK && (!planetOK || satHit.T < planetHit.T):
		sample = fs.shadeSatellite(ray, satHit)
	case planetOK:
		sample = fs.shadePlanet(ray, planetHit)
	default:
		sample = Sample{Color: fs.spaceColor, Kind: HitNone}
	}
	sample.Steps += steps
	return sample
}

// shadePlanet lights a terrain hit, testing the satellite for occlusion
func (fs *frameSnapshot) shadePlanet(ray core.Ray, hit geometry.Hit) Sample {
	normal := fs.field.NormalAtDirection(hit.Point)
	shadowRay := core.NewRay(hit.Point.Add(fs.toLight.Multiply(shadowBias)), fs.toLight)
	_, shadowed := fs.satellite.Hit(shadowRay)

	var lighting scene.Lighting
	if !shadowed {
		lighting = fs.planetMat.Illuminate(normal, fs.toLight, ray.Direction.Negate())
	}
	color := fs.planetMat.Shade(lighting, fs.planetAmbient, fs.intensity)
	color = fs.applyHaze(hit.Point, color)

	return Sample{
		Color:    color,
		Kind:     HitPlanet,
		T:        hit.T,
		Point:    hit.Point,
		Normal:   normal,
		Diffuse:  lighting.Diffuse,
		Shadowed: shadowed,
	}
}

// shadeSatellite lights a satellite hit, marching the planet for occlusion
func (fs *frameSnapshot) shadeSatellite(ray core.Ray, hit geometry.Hit) Sample {
	normal := fs.satellite.Normal(hit.Point)
	shadowRay := core.NewRay(hit.Point.Add(fs.toLight.Multiply(shadowBias)), fs.toLight)
	_, steps, shadowed := fs.planet.March(shadowRay, fs.shadowLimits)

	var lighting scene.Lighting
	if !shadowed {
		lighting = fs.satelliteMat.Illuminate(normal, fs.toLight, ray.Direction.Negate())
	}

	return Sample{
		Color:    fs.satelliteMat.Shade(lighting, fs.satAmbient, fs.intensity),
		Kind:     HitSatellite,
		T:        hit.T,
		Point:    hit.Point,
		Normal:   normal,
		Diffuse:  lighting.Diffuse,
		Shadowed: shadowed,
		Steps:    steps,
	}
}

// applyHaze fades high terrain toward the sky colour
func (fs *frameSnapshot) applyHaze(point, color core.Vec3) core.Vec3 {
	baseRadius := fs.field.Config().BaseRadius
	altitude := point.Length() - baseRadius
	haze := core.Clip(altitude/(0.5*baseRadius), 0.0, 1.0)
	return color.Multiply(1 - 0.3*haze).Add(fs.skyColor.Multiply(0.15 * haze))
}

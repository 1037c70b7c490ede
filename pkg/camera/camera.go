package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

const (
	MinDistance = 1.5
	MaxDistance = 50.0

	// MaxPitch is the turntable elevation limit in radians (80°)
	MaxPitch = 80 * math.Pi / 180
)

// worldUp is the turntable axis
var worldUp = core.NewVec3(0, 0, 1)

// Camera is a turntable viewpoint looking at Target from Distance away.
// Yaw spins around world Z, Pitch tilts towards it. The basis is derived on
// demand from these four fields.
type Camera struct {
	Distance float64
	Yaw      float64
	Pitch    float64
	Target   core.Vec3
}

// New returns the default view: 6 units out, 20° above the equator
func New() Camera {
	return Camera{
		Distance: 6.0,
		Yaw:      0.0,
		Pitch:    20 * math.Pi / 180,
		Target:   core.Vec3{},
	}
}

// Forward returns the unit view direction
func (c Camera) Forward() core.Vec3 {
	cosPitch := math.Cos(c.Pitch)
	return core.NewVec3(
		math.Cos(c.Yaw)*cosPitch,
		math.Sin(c.Yaw)*cosPitch,
		math.Sin(c.Pitch),
	)
}

// Right returns Forward × world up. Its length is cos(Pitch), not 1.
func (c Camera) Right() core.Vec3 {
	return c.Forward().Cross(worldUp)
}

// Up returns Right × Forward
func (c Camera) Up() core.Vec3 {
	return c.Right().Cross(c.Forward())
}

// Position returns the eye point
func (c Camera) Position() core.Vec3 {
	return c.Target.Subtract(c.Forward().Multiply(c.Distance))
}

// Orbit rotates the camera around its target
func (c *Camera) Orbit(dYaw, dPitch float64) {
	c.Yaw = core.WrapAngle(c.Yaw + dYaw)
	c.Pitch = core.Clip(c.Pitch+dPitch, -MaxPitch, MaxPitch)
}

// Zoom scales the distance to the target
func (c *Camera) Zoom(factor float64) {
	c.Distance = core.Clip(c.Distance*factor, MinDistance, MaxDistance)
}

// Pan slides the target in the current view plane
func (c *Camera) Pan(dx, dy float64) {
	right := c.Right()
	up := c.Up()
	c.Target = c.Target.Add(right.Multiply(dx)).Add(up.Multiply(dy))
}

// Lift moves the target along world Z
func (c *Camera) Lift(dz float64) {
	c.Target.Z += dz
}

// ViewMatrix returns the world-to-view transform. Rows hold right, up and
// -forward; the translation column is -R·position.
func (c Camera) ViewMatrix() mgl64.Mat4 {
	pos := c.Position()
	fwd := c.Forward()
	right := c.Right()
	up := c.Up()

	rows := [3]core.Vec3{right, up, fwd.Negate()}
	var t [3]float64
	for i, r := range rows {
		t[i] = -r.Dot(pos)
	}

	return mgl64.Mat4FromRows(
		mgl64.Vec4{right.X, right.Y, right.Z, t[0]},
		mgl64.Vec4{up.X, up.Y, up.Z, t[1]},
		mgl64.Vec4{-fwd.X, -fwd.Y, -fwd.Z, t[2]},
		mgl64.Vec4{0, 0, 0, 1},
	)
}

// Basis returns position, forward, right and up in one call
func (c Camera) Basis() (pos, forward, right, up core.Vec3) {
	forward = c.Forward()
	right = forward.Cross(worldUp)
	up = right.Cross(forward)
	pos = c.Target.Subtract(forward.Multiply(c.Distance))
	return pos, forward, right, up
}

package orbit

import (
	"math"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

// MinRadius keeps the orbit clear of the planet surface
const MinRadius = 1.5

// Body moves on a circle of Radius in the XY plane
type Body struct {
	Radius          float64
	AngularVelocity float64 // rad/s, negative reverses direction
	Angle           float64 // [0, 2π)
}

// NewBody returns a body at angle 0. The radius is clamped like SetRadius.
func NewBody(radius, angularVelocity float64) *Body {
	b := &Body{AngularVelocity: angularVelocity}
	b.SetRadius(radius)
	return b
}

// Advance moves the body dt seconds along its orbit
func (b *Body) Advance(dt float64) {
	b.Angle = core.WrapAngle(b.Angle + b.AngularVelocity*dt)
}

// SetRadius sets the orbit radius, never below MinRadius
func (b *Body) SetRadius(r float64) {
	b.Radius = math.Max(r, MinRadius)
}

// SetSpeed sets the angular velocity
func (b *Body) SetSpeed(omega float64) {
	b.AngularVelocity = omega
}

// SetAngle places the body at angle a (wrapped)
func (b *Body) SetAngle(a float64) {
	b.Angle = core.WrapAngle(a)
}

// Position returns (r cos a, r sin a, 0)
func (b *Body) Position() core.Vec3 {
	return core.NewVec3(b.Radius*math.Cos(b.Angle), b.Radius*math.Sin(b.Angle), 0)
}

// Velocity returns the tangential velocity
func (b *Body) Velocity() core.Vec3 {
	return core.NewVec3(
		-b.Radius*math.Sin(b.Angle)*b.AngularVelocity,
		b.Radius*math.Cos(b.Angle)*b.AngularVelocity,
		0,
	)
}

// Parameters returns radius, angular velocity and angle
func (b *Body) Parameters() (radius, angularVelocity, angle float64) {
	return b.Radius, b.AngularVelocity, b.Angle
}

package geometry

import (
	"math"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

// hitEpsilon rejects roots at or just in front of the ray origin
const hitEpsilon = 1e-4

// Hit is a ray intersection
type Hit struct {
	T     float64
	Point core.Vec3
}

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Hit tests a ray with a unit-length direction against the sphere and returns
// the nearest intersection in front of the origin
func (s Sphere) Hit(ray core.Ray) (Hit, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// t² + 2bt + c = 0 for a unit direction
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - c
	if discriminant < 0 {
		return Hit{}, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := -b - sqrtD
	if root <= hitEpsilon {
		// Origin is inside or past the near side
		root = -b + sqrtD
		if root <= hitEpsilon {
			return Hit{}, false
		}
	}

	return Hit{T: root, Point: ray.At(root)}, true
}

// Normal returns the outward unit normal at a point on the sphere
func (s Sphere) Normal(point core.Vec3) core.Vec3 {
	return point.Subtract(s.Center).Multiply(1.0 / s.Radius)
}

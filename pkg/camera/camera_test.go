package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

func vecNear(a, b core.Vec3, tol float64) bool {
	return a.Subtract(b).Length() <= tol
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	if c.Distance != 6 {
		t.Errorf("Expected distance 6, got %f", c.Distance)
	}
	if math.Abs(c.Pitch-20*math.Pi/180) > 1e-12 {
		t.Errorf("Expected pitch 20°, got %f rad", c.Pitch)
	}
	if c.Target != (core.Vec3{}) {
		t.Errorf("Expected target at origin, got %v", c.Target)
	}
}

func TestZoom_Clamps(t *testing.T) {
	tests := []struct {
		name     string
		factor   float64
		expected float64
	}{
		{"zoom in clamps", 0.01, MinDistance},
		{"zoom out clamps", 100, MaxDistance},
		{"inside range", 0.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			c.Zoom(tt.factor)
			if math.Abs(c.Distance-tt.expected) > 1e-12 {
				t.Errorf("Expected distance %f, got %f", tt.expected, c.Distance)
			}
		})
	}
}

func TestOrbit_WrapsYawClampsPitch(t *testing.T) {
	c := New()
	c.Orbit(3*math.Pi, math.Pi)

	if math.Abs(c.Yaw-math.Pi) > 1e-12 {
		t.Errorf("Expected yaw π, got %f", c.Yaw)
	}
	if math.Abs(c.Pitch-MaxPitch) > 1e-12 {
		t.Errorf("Expected pitch clamped to %f, got %f", MaxPitch, c.Pitch)
	}

	c.Orbit(-2*math.Pi, -10)
	if c.Yaw < 0 || c.Yaw >= 2*math.Pi {
		t.Errorf("Yaw %f outside [0, 2π)", c.Yaw)
	}
	if math.Abs(c.Pitch+MaxPitch) > 1e-12 {
		t.Errorf("Expected pitch clamped to %f, got %f", -MaxPitch, c.Pitch)
	}
}

func TestBasis(t *testing.T) {
	c := Camera{Distance: 5, Yaw: 0, Pitch: 0}

	if f := c.Forward(); !vecNear(f, core.NewVec3(1, 0, 0), 1e-12) {
		t.Errorf("Expected forward (1,0,0), got %v", f)
	}
	// (1,0,0) × (0,0,1) = (0,-1,0)
	if r := c.Right(); !vecNear(r, core.NewVec3(0, -1, 0), 1e-12) {
		t.Errorf("Expected right (0,-1,0), got %v", r)
	}
	if u := c.Up(); !vecNear(u, core.NewVec3(0, 0, 1), 1e-12) {
		t.Errorf("Expected up (0,0,1), got %v", u)
	}
	if p := c.Position(); !vecNear(p, core.NewVec3(-5, 0, 0), 1e-12) {
		t.Errorf("Expected position (-5,0,0), got %v", p)
	}

	pos, fwd, right, up := c.Basis()
	if pos != c.Position() || fwd != c.Forward() || right != c.Right() || up != c.Up() {
		t.Error("Basis disagrees with individual accessors")
	}
}

func TestBasis_RightShrinksWithPitch(t *testing.T) {
	c := Camera{Distance: 6, Yaw: 0.7, Pitch: math.Pi / 3}

	// Right is not renormalized: |F × Z| = cos(pitch)
	if got := c.Right().Length(); math.Abs(got-math.Cos(c.Pitch)) > 1e-12 {
		t.Errorf("Expected |right| = %f, got %f", math.Cos(c.Pitch), got)
	}
	if d := c.Right().Dot(c.Forward()); math.Abs(d) > 1e-12 {
		t.Errorf("Expected right ⟂ forward, got dot %f", d)
	}
	if d := c.Up().Dot(c.Forward()); math.Abs(d) > 1e-12 {
		t.Errorf("Expected up ⟂ forward, got dot %f", d)
	}
}

func TestPan_UsesCurrentBasis(t *testing.T) {
	c := Camera{Distance: 5, Yaw: 0, Pitch: 0}
	c.Pan(2, 3)

	// right (0,-1,0)·2 + up (0,0,1)·3
	expected := core.NewVec3(0, -2, 3)
	if !vecNear(c.Target, expected, 1e-12) {
		t.Errorf("Expected target %v, got %v", expected, c.Target)
	}
}

func TestMaxPitchLimit(t *testing.T) {
	const limit = MaxPitch
	if math.Abs(limit*180/math.Pi-80) > 1e-12 {
		t.Errorf("Expected 80 degree pitch limit, got %f", limit*180/math.Pi)
	}
}

func TestLift(t *testing.T) {
	c := New()
	c.Lift(0.5)
	c.Lift(-0.2)
	if math.Abs(c.Target.Z-0.3) > 1e-12 {
		t.Errorf("Expected target z 0.3, got %f", c.Target.Z)
	}
}

func TestViewMatrix(t *testing.T) {
	c := Camera{Distance: 7, Yaw: 1.1, Pitch: -0.4, Target: core.NewVec3(0.5, -1, 2)}
	m := c.ViewMatrix()

	pos := c.Position()
	eye := m.Mul4x1(mgl64.Vec4{pos.X, pos.Y, pos.Z, 1})
	if !vec4Near(eye, mgl64.Vec4{0, 0, 0, 1}, 1e-9) {
		t.Errorf("Expected eye to map to origin, got %v", eye)
	}

	target := m.Mul4x1(mgl64.Vec4{c.Target.X, c.Target.Y, c.Target.Z, 1})
	if !vec4Near(target, mgl64.Vec4{0, 0, -c.Distance, 1}, 1e-9) {
		t.Errorf("Expected target on -Z at distance %f, got %v", c.Distance, target)
	}
}

// vec4Near reports whether got lies within absolute distance tol of want
func vec4Near(got, want mgl64.Vec4, tol float64) bool {
	return got.Sub(want).Len() < tol
}

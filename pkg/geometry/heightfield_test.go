package geometry

import (
	"testing"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

// constantRadius is a perfect sphere about the origin
type constantRadius float64

func (r constantRadius) RadiusAtDirection(core.Vec3) float64 { return float64(r) }

var testLimits = MarchLimits{MaxDistance: 100, Tolerance: 0.005, MaxSteps: 128}

func TestHeightField_March(t *testing.T) {
	surface := NewHeightField(constantRadius(2))

	tests := []struct {
		name    string
		ray     core.Ray
		wantHit bool
		minT    float64
		maxT    float64
	}{
		{
			name:    "head on",
			ray:     core.NewRay(core.NewVec3(0, 0, -10), core.NewVec3(0, 0, 1)),
			wantHit: true,
			minT:    8 - testLimits.Tolerance,
			maxT:    8,
		},
		{
			name:    "passes beside",
			ray:     core.NewRay(core.NewVec3(5, 0, -10), core.NewVec3(0, 0, 1)),
			wantHit: false,
		},
		{
			name:    "pointing away",
			ray:     core.NewRay(core.NewVec3(0, 0, -10), core.NewVec3(0, 0, -1)),
			wantHit: false,
		},
		{
			name:    "starts inside",
			ray:     core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1)),
			wantHit: true,
			minT:    0,
			maxT:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, steps, ok := surface.March(tt.ray, testLimits)
			if ok != tt.wantHit {
				t.Fatalf("Expected hit=%v, got %v", tt.wantHit, ok)
			}
			if steps < 1 || steps > testLimits.MaxSteps {
				t.Errorf("Step count %d outside [1, %d]", steps, testLimits.MaxSteps)
			}
			if !ok {
				return
			}
			if hit.T < tt.minT || hit.T > tt.maxT {
				t.Errorf("Expected t in [%f, %f], got %f", tt.minT, tt.maxT, hit.T)
			}
		})
	}
}

func TestHeightField_March_OriginNudge(t *testing.T) {
	surface := NewHeightField(constantRadius(2))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0))

	hit, steps, ok := surface.March(ray, testLimits)
	if !ok {
		t.Fatal("Expected hit after nudging off the origin")
	}
	if hit.T != originNudge {
		t.Errorf("Expected t=%f, got %f", originNudge, hit.T)
	}
	if steps != 2 {
		t.Errorf("Expected 2 steps, got %d", steps)
	}
}

func TestHeightField_March_StepBudget(t *testing.T) {
	surface := NewHeightField(constantRadius(2))
	ray := core.NewRay(core.NewVec3(0, 0, -50), core.NewVec3(0, 0, 1))

	limits := testLimits
	limits.MaxSteps = 3
	if _, steps, ok := surface.March(ray, limits); ok || steps != 3 {
		t.Errorf("Expected miss after 3 steps, got hit=%v after %d", ok, steps)
	}
}

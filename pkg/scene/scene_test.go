package scene

import (
	"math"
	"testing"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

func TestNewDefaultScene(t *testing.T) {
	s := NewDefaultScene(7)

	if s.Surface.Seed() != 7 {
		t.Errorf("Expected seed 7, got %d", s.Surface.Seed())
	}
	r, w, a := s.Orbit.Parameters()
	if r != 4.0 || w != 0.8 || a != 0 {
		t.Errorf("Expected orbit (4, 0.8, 0), got (%f, %f, %f)", r, w, a)
	}
	if s.SatelliteRadius != 0.25 {
		t.Errorf("Expected satellite radius 0.25, got %f", s.SatelliteRadius)
	}
	if s.PlanetAmbient != 0.08 || s.SatelliteAmbient != 0.05 {
		t.Errorf("Expected ambient 0.08/0.05, got %f/%f", s.PlanetAmbient, s.SatelliteAmbient)
	}
	if s.Light.Intensity != 1.2 {
		t.Errorf("Expected light intensity 1.2, got %f", s.Light.Intensity)
	}
}

func TestLight_ToLight(t *testing.T) {
	l := Light{Direction: core.NewVec3(0, 0, -4)}
	got := l.ToLight()
	if got != core.NewVec3(0, 0, 1) {
		t.Errorf("Expected (0,0,1), got %v", got)
	}
}

func TestMaterial_Illuminate(t *testing.T) {
	m := Material{BaseColor: core.NewVec3(1, 1, 1), Specular: 0.5, Shininess: 8}
	normal := core.NewVec3(0, 0, 1)

	tests := []struct {
		name             string
		toLight          core.Vec3
		toViewer         core.Vec3
		expectedDiffuse  float64
		expectedSpecular float64
	}{
		{"overhead light, overhead viewer", core.NewVec3(0, 0, 1), core.NewVec3(0, 0, 1), 1, 1},
		{"light below horizon", core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), 0, 0},
		{"grazing light", core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), 0, 0},
		{"mirror direction", core.NewVec3(1, 0, 1).Normalize(), core.NewVec3(-1, 0, 1).Normalize(), math.Sqrt(0.5), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := m.Illuminate(normal, tt.toLight, tt.toViewer)
			if math.Abs(l.Diffuse-tt.expectedDiffuse) > 1e-9 {
				t.Errorf("Expected diffuse %f, got %f", tt.expectedDiffuse, l.Diffuse)
			}
			if math.Abs(l.Specular-tt.expectedSpecular) > 1e-9 {
				t.Errorf("Expected specular %f, got %f", tt.expectedSpecular, l.Specular)
			}
		})
	}
}

func TestMaterial_Shade(t *testing.T) {
	m := Material{BaseColor: core.NewVec3(0.5, 0.25, 1), Specular: 0.4}

	got := m.Shade(Lighting{Diffuse: 0.5, Specular: 0.25}, 0.1, 2)
	// base·(0.1 + 0.5·2) + 0.4·0.25·2
	expected := core.NewVec3(0.5*1.1+0.2, 0.25*1.1+0.2, 1.1+0.2)
	if got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	unlit := m.Shade(Lighting{}, 0.05, 1.2)
	if unlit.Subtract(m.BaseColor.Multiply(0.05)).Length() > 1e-12 {
		t.Errorf("Expected ambient-only colour, got %v", unlit)
	}
}

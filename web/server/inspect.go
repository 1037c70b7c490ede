package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for pixel inspection
type InspectResponse struct {
	Hit        bool                   `json:"hit"`
	Body       string                 `json:"body"` // planet | satellite | background
	Point      [3]float64             `json:"point"`
	Normal     [3]float64             `json:"normal"`
	Distance   float64                `json:"distance"`
	Shadowed   bool                   `json:"shadowed"`
	Diffuse    float64                `json:"diffuse"`
	MarchSteps int                    `json:"marchSteps"`
	Color      string                 `json:"color"`
	Properties map[string]interface{} `json:"properties"`
}

// materialProperties describes the material of the body that was hit
func materialProperties(s *scene.Scene, kind renderer.HitKind, sample renderer.Sample) map[string]interface{} {
	properties := make(map[string]interface{})

	var mat scene.Material
	switch kind {
	case renderer.HitPlanet:
		mat = s.PlanetMaterial
		properties["ambient"] = s.PlanetAmbient
		field := s.Surface.Load()
		properties["altitude"] = sample.Point.Length() - field.Config().BaseRadius
		properties["seed"] = field.Seed()
	case renderer.HitSatellite:
		mat = s.SatelliteMaterial
		properties["ambient"] = s.SatelliteAmbient
		properties["radius"] = s.SatelliteRadius
	default:
		return properties
	}

	properties["baseColor"] = [3]float64{mat.BaseColor.X, mat.BaseColor.Y, mat.BaseColor.Z}
	properties["specular"] = mat.Specular
	properties["shininess"] = mat.Shininess
	return properties
}

// handleInspect reports what lies under pixel (x, y) of the current view
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	x, errX := strconv.Atoi(r.URL.Query().Get("x"))
	y, errY := strconv.Atoi(r.URL.Query().Get("y"))
	if errX != nil || errY != nil {
		writeJSONError(w, http.StatusBadRequest, "x and y must be integers")
		return
	}

	sample, err := s.session.Inspect(x, y)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := sample.Color.Clamp(0, 1)
	response := InspectResponse{
		Hit:        sample.Kind != renderer.HitNone,
		Body:       sample.Kind.String(),
		Point:      [3]float64{sample.Point.X, sample.Point.Y, sample.Point.Z},
		Normal:     [3]float64{sample.Normal.X, sample.Normal.Y, sample.Normal.Z},
		Distance:   sample.T,
		Shadowed:   sample.Shadowed,
		Diffuse:    sample.Diffuse,
		MarchSteps: sample.Steps,
		Color:      fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255)),
		Properties: materialProperties(s.scene, sample.Kind, sample),
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

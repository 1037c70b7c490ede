package renderer

import "time"

// HitKind identifies what a primary ray resolved to
type HitKind int

const (
	HitNone HitKind = iota
	HitPlanet
	HitSatellite
)

// String returns the metric label for the hit kind
func (k HitKind) String() string {
	switch k {
	case HitPlanet:
		return "planet"
	case HitSatellite:
		return "satellite"
	default:
		return "background"
	}
}

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels      int           // Total number of pixels rendered
	PlanetPixels     int           // Pixels whose nearest hit is the planet
	SatellitePixels  int           // Pixels whose nearest hit is the satellite
	BackgroundPixels int           // Pixels that hit nothing
	ShadowedPixels   int           // Hit pixels occluded from the light by the other body
	MarchSteps       int           // Planet march steps, primary and shadow rays
	Tiles            int           // Tiles dispatched to the worker pool
	Duration         time.Duration // Wall time of the render call
}

// addSample accumulates one traced pixel
func (s *RenderStats) addSample(sample Sample) {
	s.TotalPixels++
	switch sample.Kind {
	case HitPlanet:
		s.PlanetPixels++
	case HitSatellite:
		s.SatellitePixels++
	default:
		s.BackgroundPixels++
	}
	if sample.Shadowed {
		s.ShadowedPixels++
	}
	s.MarchSteps += sample.Steps
}

// Merge adds the counts of another set of statistics
func (s *RenderStats) Merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.PlanetPixels += other.PlanetPixels
	s.SatellitePixels += other.SatellitePixels
	s.BackgroundPixels += other.BackgroundPixels
	s.ShadowedPixels += other.ShadowedPixels
	s.MarchSteps += other.MarchSteps
	s.Tiles += other.Tiles
}

// PixelsByKind returns the hit counts keyed by HitKind label
func (s RenderStats) PixelsByKind() map[string]int {
	return map[string]int{
		HitPlanet.String():    s.PlanetPixels,
		HitSatellite.String(): s.SatellitePixels,
		HitNone.String():      s.BackgroundPixels,
	}
}

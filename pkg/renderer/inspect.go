package renderer

import (
	"fmt"

	"github.com/df07/go-satellite-raytracer/pkg/camera"
)

// Inspect traces the single primary ray through pixel (x, y) and returns its
// sample. The orbit is not advanced.
func (rt *Raytracer) Inspect(cam camera.Camera, settings Settings, x, y int) (Sample, error) {
	if settings.Width <= 0 || settings.Height <= 0 {
		return Sample{}, fmt.Errorf("invalid image size %dx%d", settings.Width, settings.Height)
	}
	if x < 0 || x >= settings.Width || y < 0 || y >= settings.Height {
		return Sample{}, fmt.Errorf("pixel (%d, %d) outside %dx%d image", x, y, settings.Width, settings.Height)
	}

	fs := newFrameSnapshot(rt.scene, cam, settings)
	return fs.trace(fs.primaryRay(x, y)), nil
}

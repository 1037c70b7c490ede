package renderer

import (
	"image"
	"image/color"

	"github.com/df07/go-satellite-raytracer/pkg/core"
)

// Frame is an 8-bit RGB image, row-major with the top row first
type Frame struct {
	Width  int
	Height int
	Pix    []uint8 // Height × Width × 3
}

// NewFrame allocates a black frame
func NewFrame(width, height int) *Frame {
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// Shape returns the buffer dimensions as (rows, columns, channels)
func (f *Frame) Shape() [3]int {
	return [3]int{f.Height, f.Width, 3}
}

// At returns the colour of pixel (x, y)
func (f *Frame) At(x, y int) (r, g, b uint8) {
	i := (y*f.Width + x) * 3
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// set writes a linear colour to pixel (x, y)
func (f *Frame) set(x, y int, c core.Vec3) {
	rgb := vec3ToColor(c)
	i := (y*f.Width + x) * 3
	f.Pix[i] = rgb.R
	f.Pix[i+1] = rgb.G
	f.Pix[i+2] = rgb.B
}

// RGBA converts the frame for image encoders and front ends
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// vec3ToColor clamps to [0, 1] and truncates to 8 bits
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

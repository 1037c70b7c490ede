package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/df07/go-satellite-raytracer/pkg/session"
)

// ErrUnknownCommand is returned for command types the server does not handle
var ErrUnknownCommand = errors.New("unknown command")

// Command is a viewer request received over the websocket
type Command struct {
	Type string `json:"type"` // orbit | zoom | pan | lift | orbitParams | seed | record

	Yaw    float64 `json:"yaw,omitempty"`
	Pitch  float64 `json:"pitch,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	DZ     float64 `json:"dz,omitempty"`

	Radius *float64 `json:"radius,omitempty"`
	Speed  *float64 `json:"speed,omitempty"`
	Seed   *uint64  `json:"seed,omitempty"`
	Active bool     `json:"active,omitempty"`
}

// Apply runs the command against sess
func (c Command) Apply(ctx context.Context, sess *session.Session) error {
	switch c.Type {
	case "orbit":
		sess.Orbit(c.Yaw, c.Pitch)
	case "zoom":
		if c.Factor <= 0 {
			return fmt.Errorf("zoom factor must be positive, got %g", c.Factor)
		}
		sess.Zoom(c.Factor)
	case "pan":
		sess.Pan(c.DX, c.DY)
	case "lift":
		sess.Lift(c.DZ)
	case "orbitParams":
		if c.Radius == nil && c.Speed == nil {
			return errors.New("orbitParams command needs a radius or a speed")
		}
		if c.Radius != nil {
			sess.SetOrbitRadius(*c.Radius)
		}
		if c.Speed != nil {
			sess.SetOrbitSpeed(*c.Speed)
		}
	case "seed":
		if c.Seed == nil {
			return errors.New("seed command needs a seed")
		}
		sess.Regenerate(ctx, *c.Seed)
	case "record":
		return sess.SetRecording(ctx, c.Active)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}

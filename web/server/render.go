package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"math"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/session"
)

// FrameMessage is pushed to every viewer after each stepped frame
type FrameMessage struct {
	Type      string        `json:"type"`      // always "frame"
	ImageData string        `json:"imageData"` // Base64 encoded PNG
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Stats     Stats         `json:"stats"`
	State     session.State `json:"state"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int   `json:"totalPixels"`
	PlanetPixels     int   `json:"planetPixels"`
	SatellitePixels  int   `json:"satellitePixels"`
	BackgroundPixels int   `json:"backgroundPixels"`
	ShadowedPixels   int   `json:"shadowedPixels"`
	MarchSteps       int   `json:"marchSteps"`
	ElapsedMs        int64 `json:"elapsedMs"`
}

// StateMessage answers a viewer command with the resulting state
type StateMessage struct {
	Type  string        `json:"type"` // always "state"
	State session.State `json:"state"`
}

// ErrorMessage reports a rejected command
type ErrorMessage struct {
	Type    string `json:"type"` // always "error"
	Message string `json:"message"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1 << 16,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// frameRequest holds the parsed /api/frame parameters
type frameRequest struct {
	Width    int
	Height   int
	FOVDeg   float64
	MaxSteps int
}

// parseFrameRequest parses request parameters, defaulting to the session's settings
func (s *Server) parseFrameRequest(r *http.Request) (renderer.Settings, error) {
	settings := s.session.Settings()
	q := r.URL.Query()

	var req frameRequest
	var err error
	if req.Width, err = parseIntParam(q, "width", settings.Width, 16, 2000); err != nil {
		return settings, err
	}
	if req.Height, err = parseIntParam(q, "height", settings.Height, 16, 2000); err != nil {
		return settings, err
	}
	if req.FOVDeg, err = parseFloatParam(q, "fovDeg", settings.FOV*180/math.Pi, 1, 170); err != nil {
		return settings, err
	}
	if req.MaxSteps, err = parseIntParam(q, "steps", settings.MaxSteps, 1, 1024); err != nil {
		return settings, err
	}

	settings.Width = req.Width
	settings.Height = req.Height
	settings.FOV = req.FOVDeg * math.Pi / 180
	settings.MaxSteps = req.MaxSteps
	return settings, nil
}

// handleFrame renders one still PNG of the current state
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(r) {
		writeJSONError(w, http.StatusTooManyRequests, "frame rate limit exceeded")
		return
	}

	settings, err := s.parseFrameRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	frame, err := s.session.Render(r.Context(), settings)
	if err != nil {
		s.logger.Warn(r.Context(), "still render failed", logging.Err(err))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame.RGBA()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// streamFrame is the session frame listener; it pushes frames to viewers
func (s *Server) streamFrame(frame *renderer.Frame, stats renderer.RenderStats) {
	if s.hub.Count() == 0 {
		return
	}

	imageData, err := imageToBase64PNG(frame.RGBA())
	if err != nil {
		s.logger.Error(context.Background(), "encoding stream frame", logging.Err(err))
		return
	}

	s.hub.BroadcastJSON(FrameMessage{
		Type:      "frame",
		ImageData: imageData,
		Width:     frame.Width,
		Height:    frame.Height,
		Stats: Stats{
			TotalPixels:      stats.TotalPixels,
			PlanetPixels:     stats.PlanetPixels,
			SatellitePixels:  stats.SatellitePixels,
			BackgroundPixels: stats.BackgroundPixels,
			ShadowedPixels:   stats.ShadowedPixels,
			MarchSteps:       stats.MarchSteps,
			ElapsedMs:        stats.Duration.Milliseconds(),
		},
		State: s.session.Snapshot(),
	})
}

// handleWebSocket registers a viewer and applies its commands until it disconnects
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn(r.Context(), "websocket upgrade failed", logging.Err(err))
		return
	}
	conn.SetReadLimit(maxCommandSize)

	ctx, id := logging.EnsureRequestID(context.Background())
	c := &client{
		id:   id,
		conn: conn,
		send: make(chan []byte, clientSendSize),
	}
	s.hub.add(c)
	go c.writeLoop()
	defer s.hub.remove(c)

	s.hub.sendTo(c, StateMessage{Type: "state", State: s.session.Snapshot()})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.hub.sendTo(c, ErrorMessage{Type: "error", Message: "invalid command: " + err.Error()})
			continue
		}
		if err := cmd.Apply(ctx, s.session); err != nil {
			s.hub.sendTo(c, ErrorMessage{Type: "error", Message: err.Error()})
			continue
		}
		s.hub.sendTo(c, StateMessage{Type: "state", State: s.session.Snapshot()})
	}
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

package recorder

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
)

// DefaultDir is where recordings are written when no directory is configured
const DefaultDir = "frames"

// ErrNotRecording is returned by Save while the recorder is stopped
var ErrNotRecording = errors.New("recorder: not recording")

// Imager is anything that can be encoded as a PNG frame
type Imager interface {
	RGBA() *image.RGBA
}

// Recorder writes successive frames to dir/frame_00000.png, dir/frame_00001.png, ...
type Recorder struct {
	mu     sync.Mutex
	dir    string
	active bool
	index  int
}

// New creates a stopped recorder writing into dir
func New(dir string) *Recorder {
	if dir == "" {
		dir = DefaultDir
	}
	return &Recorder{dir: dir}
}

// Dir returns the output directory
func (r *Recorder) Dir() string {
	return r.dir
}

// Start begins a recording. The frame index restarts at zero, so a new
// recording overwrites the files of the previous one.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("creating recording directory: %w", err)
	}
	r.active = true
	r.index = 0
	return nil
}

// Stop ends the recording
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}

// Active reports whether frames are being recorded
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// FrameIndex returns the index the next saved frame will use
func (r *Recorder) FrameIndex() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Save encodes frame as the next PNG of the recording and returns its path
func (r *Recorder) Save(frame Imager) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.active {
		return "", ErrNotRecording
	}

	filename := filepath.Join(r.dir, fmt.Sprintf("frame_%05d.png", r.index))
	if err := writePNG(filename, frame.RGBA()); err != nil {
		return "", err
	}
	r.index++
	return filename, nil
}

// writePNG encodes img to filename
func writePNG(filename string, img image.Image) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating frame file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding %s: %w", filename, err)
	}
	return file.Close()
}

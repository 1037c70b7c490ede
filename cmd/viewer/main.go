// Command viewer is the desktop front end: a raylib window showing the live
// render with keyboard and mouse camera controls.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/df07/go-satellite-raytracer/internal/config"
	"github.com/df07/go-satellite-raytracer/internal/logging"
	"github.com/df07/go-satellite-raytracer/pkg/recorder"
	"github.com/df07/go-satellite-raytracer/pkg/renderer"
	"github.com/df07/go-satellite-raytracer/pkg/scene"
	"github.com/df07/go-satellite-raytracer/pkg/session"
)

const (
	orbitRate = 1.5 // radians per second while an arrow key is held
	panRate   = 1.0 // world units per second
	liftRate  = 1.0
	zoomStep  = 0.9 // distance factor per wheel notch
)

func main() {
	configPath := flag.String("config", "", "Path to a JSON config file")
	sceneType := flag.String("scene", "", "Scene preset")
	scale := flag.Int("scale", 2, "Window pixels per rendered pixel")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyEnv()
	}
	if err == nil && *sceneType != "" {
		cfg.Scene = *sceneType
	}
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *scale); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, scale int) error {
	logger := logging.New(cfg.Logging())
	ctx := logging.ContextWithLogger(context.Background(), logger)

	opts, err := cfg.SceneOptions()
	if err != nil {
		return err
	}
	rt := renderer.NewRaytracer(scene.NewScene(opts), cfg.RendererConfig(), renderer.WithLogger(logger))
	defer rt.Close()

	settings := cfg.RenderSettings()
	sess := session.New(rt, recorder.New(cfg.OutputDir), settings, session.WithLogger(logger))

	if scale < 1 {
		scale = 1
	}
	rl.InitWindow(int32(settings.Width*scale), int32(settings.Height*scale), "Satellite Raytracer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	blank := rl.GenImageColor(settings.Width, settings.Height, rl.Black)
	texture := rl.LoadTextureFromImage(blank)
	rl.UnloadImage(blank)
	defer rl.UnloadTexture(texture)

	pixels := make([]color.RGBA, settings.Width*settings.Height)
	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), cfg.Seed))

	var last renderer.RenderStats
	for !rl.WindowShouldClose() {
		handleInput(ctx, sess, rng, rl.GetFrameTime())

		frame, stats, err := sess.Step(ctx, time.Now())
		if err != nil {
			logger.Error(ctx, "frame step failed", logging.Err(err))
		}
		if frame != nil {
			copyPixels(pixels, frame)
			rl.UpdateTexture(texture, pixels)
			last = stats
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		src := rl.NewRectangle(0, 0, float32(settings.Width), float32(settings.Height))
		dst := rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
		rl.DrawTexturePro(texture, src, dst, rl.NewVector2(0, 0), 0, rl.White)
		drawOverlay(sess.Snapshot(), last)
		rl.EndDrawing()
	}
	return nil
}

// handleInput turns held keys and the mouse wheel into session commands
func handleInput(ctx context.Context, sess *session.Session, rng *rand.Rand, frameTime float32) {
	dt := float64(frameTime)

	var yaw, pitch float64
	if rl.IsKeyDown(rl.KeyLeft) {
		yaw -= orbitRate * dt
	}
	if rl.IsKeyDown(rl.KeyRight) {
		yaw += orbitRate * dt
	}
	if rl.IsKeyDown(rl.KeyUp) {
		pitch += orbitRate * dt
	}
	if rl.IsKeyDown(rl.KeyDown) {
		pitch -= orbitRate * dt
	}
	if yaw != 0 || pitch != 0 {
		sess.Orbit(yaw, pitch)
	}

	var dx, dy float64
	if rl.IsKeyDown(rl.KeyA) {
		dx -= panRate * dt
	}
	if rl.IsKeyDown(rl.KeyD) {
		dx += panRate * dt
	}
	if rl.IsKeyDown(rl.KeyW) {
		dy += panRate * dt
	}
	if rl.IsKeyDown(rl.KeyS) {
		dy -= panRate * dt
	}
	if dx != 0 || dy != 0 {
		sess.Pan(dx, dy)
	}

	if rl.IsKeyDown(rl.KeyQ) {
		sess.Lift(liftRate * dt)
	}
	if rl.IsKeyDown(rl.KeyE) {
		sess.Lift(-liftRate * dt)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		sess.Zoom(math.Pow(zoomStep, float64(wheel)))
	}

	if rl.IsKeyPressed(rl.KeyR) {
		if err := sess.SetRecording(ctx, !sess.Snapshot().Recording); err != nil {
			logging.LoggerFromContext(ctx).Error(ctx, "toggling recording", logging.Err(err))
		}
	}
	if rl.IsKeyPressed(rl.KeyN) {
		sess.Regenerate(ctx, rng.Uint64())
	}
}

// copyPixels fills dst, row-major, from frame
func copyPixels(dst []color.RGBA, frame *renderer.Frame) {
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			r, g, b := frame.At(x, y)
			dst[y*frame.Width+x] = color.RGBA{R: r, G: g, B: b, A: 255}
		}
	}
}

func drawOverlay(state session.State, stats renderer.RenderStats) {
	rl.DrawFPS(10, 10)
	lines := []string{
		fmt.Sprintf("seed %d  frame %d", state.Seed, state.Frames),
		fmt.Sprintf("distance %.2f  yaw %.2f  pitch %.2f", state.Camera.Distance, state.Camera.Yaw, state.Camera.Pitch),
		fmt.Sprintf("render %v  steps %d", stats.Duration.Round(time.Millisecond), stats.MarchSteps),
	}
	if state.Recording {
		lines = append(lines, "REC")
	}
	for i, line := range lines {
		rl.DrawText(line, 10, int32(34+18*i), 16, rl.RayWhite)
	}
	rl.DrawText("arrows orbit  wheel zoom  WASD pan  Q/E lift  R record  N new planet", 10, int32(rl.GetScreenHeight()-22), 14, rl.LightGray)
}

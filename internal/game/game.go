// Package game drives the viewer: it owns the rotation controller, the
// animation machine and the render pipeline and advances them once per
// frame.
package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/icebead/internal/engine/animation"
	"github.com/Faultbox/icebead/internal/engine/arcball"
	"github.com/Faultbox/icebead/internal/engine/debug"
	"github.com/Faultbox/icebead/internal/engine/input"
	"github.com/Faultbox/icebead/internal/engine/pipeline"
	"github.com/Faultbox/icebead/internal/logger"
)

// MaxFrameDelta caps the milliseconds a single frame may advance.
const MaxFrameDelta = 16

// Host is the window the game runs in.
type Host interface {
	PollEvents(in *input.Input)
	SwapBuffers()
}

// ScreenReader reads back the window framebuffer as bottom-up RGBA rows.
type ScreenReader interface {
	ReadScreen(width, height int) []byte
}

// Config holds game configuration.
type Config struct {
	// Window size in screen coordinates; pointer events use this space.
	Width  int
	Height int
	// Drawable size in pixels. Zero means the same as the window size.
	PixelWidth  int
	PixelHeight int

	Animation animation.Options

	// Screenshots and Screen enable F12 capture when both are set.
	Screenshots *debug.ScreenshotCapture
	Screen      ScreenReader

	ShowFPS bool
}

// Game is the main viewer instance. It is not safe for concurrent use.
type Game struct {
	config     Config
	controller *arcball.Controller
	machine    *animation.Machine
	pipeline   *pipeline.Orchestrator
	input      *input.Input

	running bool
	pixelW  int
	pixelH  int

	ticked    bool
	startTick float64
	lastTick  float64

	screenshotPending bool
}

// New creates a game rendering through orch. The orchestrator is resized to
// the configured drawable size.
func New(orch *pipeline.Orchestrator, cfg Config) (*Game, error) {
	if cfg.PixelWidth <= 0 || cfg.PixelHeight <= 0 {
		cfg.PixelWidth, cfg.PixelHeight = cfg.Width, cfg.Height
	}

	g := &Game{
		config:     cfg,
		controller: arcball.New(cfg.Width, cfg.Height),
		machine:    animation.New(cfg.Animation),
		pipeline:   orch,
		input:      input.New(),
		running:    true,
		pixelW:     cfg.PixelWidth,
		pixelH:     cfg.PixelHeight,
	}
	if err := orch.Resize(g.pixelW, g.pixelH); err != nil {
		return nil, fmt.Errorf("failed to size pipeline: %w", err)
	}

	logger.Info("game initialized",
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("pixel_width", g.pixelW),
		zap.Int("pixel_height", g.pixelH),
		zap.Stringer("scale_integrator", cfg.Animation.Integrator),
	)
	return g, nil
}

// Running reports whether the loop should continue.
func (g *Game) Running() bool {
	return g.running
}

// Stop ends the loop after the current frame.
func (g *Game) Stop() {
	g.running = false
}

// Controller returns the rotation controller.
func (g *Game) Controller() *arcball.Controller {
	return g.controller
}

// Machine returns the animation state machine.
func (g *Game) Machine() *animation.Machine {
	return g.machine
}

// HandleEvent applies one input event. Resize errors come from the render
// targets and are returned.
func (g *Game) HandleEvent(e input.Event) error {
	switch e.Type {
	case input.EventQuit:
		g.running = false
	case input.EventPointerDown:
		g.controller.PointerDown(e.X, e.Y)
	case input.EventPointerMove:
		g.controller.PointerMove(e.X, e.Y)
	case input.EventPointerUp:
		g.controller.PointerUp()
	case input.EventPointerLeave:
		g.controller.PointerLeave()
	case input.EventResize:
		return g.resize(e)
	case input.EventKeyDown:
		g.handleKey(e.Key)
	}
	return nil
}

func (g *Game) resize(e input.Event) error {
	pw, ph := e.PixelWidth, e.PixelHeight
	if pw <= 0 || ph <= 0 {
		pw, ph = e.Width, e.Height
	}
	g.controller.SetViewport(e.Width, e.Height)
	g.pixelW, g.pixelH = pw, ph
	if err := g.pipeline.Resize(pw, ph); err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	logger.Debug("viewport resized",
		zap.Int("width", e.Width),
		zap.Int("height", e.Height),
		zap.Int("pixel_width", pw),
		zap.Int("pixel_height", ph),
	)
	return nil
}

func (g *Game) handleKey(key input.Key) {
	switch key {
	case input.KeyEscape:
		g.running = false
	case input.KeyF12:
		g.screenshotPending = true
	case input.KeyF3:
		on := !g.pipeline.Diagnostic()
		g.pipeline.SetDiagnostic(on)
		logger.Info("diagnostic view", zap.Bool("enabled", on))
	}
}

// Tick advances one frame at time now, in milliseconds, and renders it.
// The frame delta is capped at MaxFrameDelta; the first tick counts as a
// full frame.
func (g *Game) Tick(now float64) error {
	dt := float64(MaxFrameDelta)
	if !g.ticked {
		g.ticked = true
		g.startTick = now
	} else {
		dt = min(MaxFrameDelta, max(0, now-g.lastTick))
	}
	g.lastTick = now

	g.controller.Update(float32(dt))
	g.machine.Update(float32(dt), g.controller.IsPointerDown())

	frame := pipeline.Frame{
		Rotation:  g.controller.Rotation(),
		Animation: g.machine.Snapshot(),
		Time:      float32((now - g.startTick) / 1000),
	}
	if err := g.pipeline.Render(frame); err != nil {
		return err
	}

	if g.screenshotPending {
		g.screenshotPending = false
		g.captureScreenshot()
	}
	return nil
}

// captureScreenshot saves the frame just rendered. Failures are logged.
func (g *Game) captureScreenshot() {
	if g.config.Screenshots == nil || g.config.Screen == nil {
		logger.Warn("screenshot requested but capture is not configured")
		return
	}
	pixels := g.config.Screen.ReadScreen(g.pixelW, g.pixelH)
	if _, err := g.config.Screenshots.CaptureFromPixels(pixels, g.pixelW, g.pixelH); err != nil {
		logger.Error("screenshot failed", zap.Error(err))
	}
}

// Run polls host events and ticks until quit, ctx cancellation or a render
// error.
func (g *Game) Run(ctx context.Context, host Host) error {
	start := time.Now()
	frameCount := 0
	fpsTimer := start

	logger.Info("starting frame loop")

	for g.running {
		if err := ctx.Err(); err != nil {
			return nil
		}

		g.input.Begin()
		host.PollEvents(g.input)
		for _, e := range g.input.Events() {
			if err := g.HandleEvent(e); err != nil {
				return err
			}
		}
		if !g.running {
			break
		}

		now := float64(time.Since(start).Microseconds()) / 1000
		if err := g.Tick(now); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		host.SwapBuffers()

		frameCount++
		if g.config.ShowFPS && time.Since(fpsTimer) >= time.Second {
			snap := g.machine.Snapshot()
			logger.Debug("fps",
				zap.Int("count", frameCount),
				zap.Stringer("phase", snap.Phase),
				zap.Float32("progress", snap.Progress),
			)
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	logger.Info("frame loop stopped")
	return nil
}

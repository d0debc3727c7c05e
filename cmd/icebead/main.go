// Package main is the entry point for the ice bead viewer.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/icebead/internal/assets"
	"github.com/Faultbox/icebead/internal/config"
	"github.com/Faultbox/icebead/internal/engine/animation"
	"github.com/Faultbox/icebead/internal/engine/audio"
	"github.com/Faultbox/icebead/internal/engine/debug"
	"github.com/Faultbox/icebead/internal/engine/gpu"
	"github.com/Faultbox/icebead/internal/engine/lighting"
	"github.com/Faultbox/icebead/internal/engine/pipeline"
	"github.com/Faultbox/icebead/internal/engine/window"
	"github.com/Faultbox/icebead/internal/game"
	"github.com/Faultbox/icebead/internal/logger"
)

const windowTitle = "Ice Bead"

func init() {
	runtime.LockOSThread()
}

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logOpts := logger.Options{
		Level:   cfg.Logging.Level,
		Console: true,
		Session: uuid.NewString(),
	}
	if cfg.Logging.LogFile != "" {
		logOpts.File = logger.DefaultFileConfig(cfg.Logging.LogFile)
	}
	if err := logger.InitWithOptions(logOpts); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Ice Bead ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			logger.Error("saving config", zap.Error(err))
			logger.Sync()
			os.Exit(1)
		}
		logger.Info("config saved", zap.String("path", config.UserConfigPath()))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("viewer error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}

func run(ctx context.Context, cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      windowTitle,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// The device needs the GL context the window just made current.
	dev, err := gpu.New()
	if err != nil {
		return err
	}
	defer dev.Release()

	manager := assets.NewManager(cfg.Assets.SearchPaths...)
	defer manager.Close()

	player := setupAudio(cfg, manager)
	defer player.Close()

	width, height := win.GetSize()
	pixelW, pixelH := win.DrawableSize()

	orch := pipeline.New(dev, pipeline.Options{
		Width:          pixelW,
		Height:         pixelH,
		MeshURI:        cfg.Assets.Mesh,
		OverlayURI:     cfg.Assets.Overlay,
		ParticleCount:  cfg.Graphics.ParticleCount,
		ParticleSeed:   cfg.Animation.Seed,
		BloomThreshold: cfg.Graphics.BloomThreshold,
		BloomStrength:  cfg.Graphics.BloomStrength,
		BlurRadius:     cfg.Graphics.BlurRadius,
		LightDir:       lighting.SunDirection(cfg.Graphics.SunLongitude, cfg.Graphics.SunLatitude),
		Diagnostic:     cfg.Debug.Diagnostic,
	})
	if err := orch.Load(ctx, assets.NewLoader(manager)); err != nil {
		return fmt.Errorf("failed to load pipeline: %w", err)
	}

	g, err := game.New(orch, game.Config{
		Width:       width,
		Height:      height,
		PixelWidth:  pixelW,
		PixelHeight: pixelH,
		Animation: animation.Options{
			Integrator: animation.ParseScaleIntegrator(cfg.Animation.ScaleIntegrator),
			Cues:       player,
			Seed:       cfg.Animation.Seed,
		},
		Screenshots: debug.NewScreenshotCapture(cfg.Debug.ScreenshotDir, "icebead"),
		Screen:      dev,
		ShowFPS:     cfg.Debug.ShowFPS,
	})
	if err != nil {
		return err
	}

	return g.Run(ctx, win)
}

// setupAudio opens the speaker and registers the crack cue, synthesizing it
// when the configured file is unavailable. Audio failures leave the viewer
// silent instead of stopping it.
func setupAudio(cfg *config.Config, manager *assets.Manager) *audio.Player {
	player := audio.New(cfg.Audio.Volume)
	player.SetMuted(cfg.Audio.Muted)

	if err := player.Init(); err != nil {
		logger.Warn("audio disabled", zap.Error(err))
		return player
	}

	data, err := manager.Load(cfg.Audio.CrackCue)
	if err == nil {
		err = player.LoadCue(animation.CueCrack, data)
	}
	if err != nil {
		if !errors.Is(err, assets.ErrNotFound) {
			logger.Warn("crack cue unreadable, synthesizing", zap.String("path", cfg.Audio.CrackCue), zap.Error(err))
		}
		player.SynthesizeCrack(animation.CueCrack, cfg.Animation.Seed)
	}
	return player
}

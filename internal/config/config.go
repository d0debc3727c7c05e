// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Audio     AudioConfig     `yaml:"audio"`
	Assets    AssetsConfig    `yaml:"assets"`
	Animation AnimationConfig `yaml:"animation"`
	Debug     DebugConfig     `yaml:"debug"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	Fullscreen     bool    `yaml:"fullscreen"`
	VSync          bool    `yaml:"vsync"`
	ParticleCount  int     `yaml:"particle_count"`
	BloomThreshold float32 `yaml:"bloom_threshold"`
	BloomStrength  float32 `yaml:"bloom_strength"`
	BlurRadius     float32 `yaml:"blur_radius"`
	SunLongitude   float32 `yaml:"sun_longitude"` // degrees around Y from +Z
	SunLatitude    float32 `yaml:"sun_latitude"`  // degrees above the horizon
}

// AudioConfig holds audio settings.
type AudioConfig struct {
	Volume   float64 `yaml:"volume"`
	Muted    bool    `yaml:"muted"`
	CrackCue string  `yaml:"crack_cue"` // WAV asset; synthesized when missing
}

// AssetsConfig holds asset locations.
type AssetsConfig struct {
	SearchPaths []string `yaml:"search_paths"` // later entries win
	Mesh        string   `yaml:"mesh"`
	Overlay     string   `yaml:"overlay"`
}

// AnimationConfig holds animation tuning.
type AnimationConfig struct {
	ScaleIntegrator string `yaml:"scale_integrator"` // "momentum" or "second_order"
	Seed            int64  `yaml:"seed"`             // 0 picks a time-based seed
}

// DebugConfig holds developer options.
type DebugConfig struct {
	Diagnostic    bool   `yaml:"diagnostic"`
	ShowFPS       bool   `yaml:"show_fps"`
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:          1280,
			Height:         720,
			Fullscreen:     false,
			VSync:          true,
			ParticleCount:  4000,
			BloomThreshold: 0.6,
			BloomStrength:  1.2,
			BlurRadius:     1.5,
			SunLongitude:   33.7,
			SunLatitude:    48,
		},
		Audio: AudioConfig{
			Volume:   0.8,
			Muted:    false,
			CrackCue: "sounds/crack.wav",
		},
		Assets: AssetsConfig{
			SearchPaths: []string{"assets"},
			Mesh:        "procedural://icosphere?detail=5",
			Overlay:     "procedural://vignette?size=512",
		},
		Animation: AnimationConfig{
			ScaleIntegrator: "momentum",
		},
		Debug: DebugConfig{
			ScreenshotDir: "screenshots",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate reports settings the viewer cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		errs = append(errs, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.ParticleCount < 0 {
		errs = append(errs, fmt.Errorf("graphics: negative particle_count %d", c.Graphics.ParticleCount))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio: volume %.2f outside [0, 1]", c.Audio.Volume))
	}
	switch c.Animation.ScaleIntegrator {
	case "", "momentum", "second_order":
	default:
		errs = append(errs, fmt.Errorf("animation: unknown scale_integrator %q", c.Animation.ScaleIntegrator))
	}
	return errors.Join(errs...)
}

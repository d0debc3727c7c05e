// Package pipeline sequences the fixed render pass chain that draws the bead:
// a one-time bake of the ice textures, then per frame geometry, particles,
// a highpass and blur bloom chain, and the final composite onto the window.
//
// The Orchestrator owns every GPU resource the chain needs and moves through
// Uninitialized, Loading, Ready and Running. It never touches rotation or
// animation state; each Render receives an immutable Frame.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	gomath "math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/icebead/internal/engine/animation"
	"github.com/Faultbox/icebead/internal/engine/camera"
	"github.com/Faultbox/icebead/internal/engine/lighting"
	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/internal/engine/shaders"
	"github.com/Faultbox/icebead/internal/logger"
	"github.com/Faultbox/icebead/pkg/math"
)

// ErrNotReady is returned by Render before Load has succeeded.
var ErrNotReady = errors.New("pipeline: not ready")

// State is the orchestrator lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateReady
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Pass names, in execution order.
const (
	PassBake       = "bake"
	PassGeometry   = "geometry"
	PassParticle   = "particle"
	PassHighpass   = "highpass"
	PassBlur       = "blur"
	PassComposite  = "composite"
	PassDiagnostic = "diagnostic"
)

// Fixed pipeline constants.
const (
	// BloomScale is the size of the bloom targets relative to the viewport.
	BloomScale = 0.2

	BakeWidth  = 2048
	BakeHeight = 1024

	DefaultParticleCount = 4000
)

const (
	DefaultMeshURI    = "procedural://icosphere?detail=5"
	DefaultOverlayURI = "procedural://vignette?size=512"
)

// Options configures an Orchestrator. Zero values take defaults.
type Options struct {
	Width  int
	Height int

	MeshURI    string
	OverlayURI string

	ParticleCount int
	ParticleSeed  int64

	BloomThreshold float32
	BloomStrength  float32
	BlurRadius     float32

	// LightDir points toward the sun. Zero selects lighting.DefaultSun.
	LightDir math.Vec3

	// Diagnostic draws the baked normal map into the lower-left corner.
	Diagnostic bool
}

func (o Options) withDefaults() Options {
	if o.Width < 1 {
		o.Width = 1
	}
	if o.Height < 1 {
		o.Height = 1
	}
	if o.MeshURI == "" {
		o.MeshURI = DefaultMeshURI
	}
	if o.OverlayURI == "" {
		o.OverlayURI = DefaultOverlayURI
	}
	if o.ParticleCount <= 0 {
		o.ParticleCount = DefaultParticleCount
	}
	if o.ParticleSeed == 0 {
		o.ParticleSeed = 1
	}
	if o.BloomThreshold == 0 {
		o.BloomThreshold = 0.6
	}
	if o.BloomStrength == 0 {
		o.BloomStrength = 1.2
	}
	if o.BlurRadius == 0 {
		o.BlurRadius = 1.5
	}
	if o.LightDir == (math.Vec3{}) {
		o.LightDir = lighting.DefaultSun()
	}
	o.LightDir = o.LightDir.Normalize()
	return o
}

// Frame is the immutable per-frame input to Render.
type Frame struct {
	Rotation  math.Quat
	Animation animation.Snapshot
	Time      float32 // seconds since start
}

// BloomSize returns the bloom target size for a viewport: floor(v * scale),
// at least 1 on each axis.
func BloomSize(width, height int, scale float64) (int, int) {
	w := int(gomath.Floor(float64(width) * scale))
	h := int(gomath.Floor(float64(height) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

type programs struct {
	bake, geometry, particle, highpass, blur, composite, diagnostic Program
}

type targets struct {
	bake, scene, highpass, blur RenderTarget
}

// Orchestrator runs the render pass chain.
type Orchestrator struct {
	dev  Device
	opts Options

	state  State
	width  int
	height int
	baked  bool

	camera *camera.LookAtCamera

	programs programs
	targets  targets
	sphere   Mesh
	swarm    Mesh
	quad     Mesh
	overlay  Texture
}

// New creates an orchestrator in the Uninitialized state.
func New(dev Device, opts Options) *Orchestrator {
	opts = opts.withDefaults()
	return &Orchestrator{
		dev:    dev,
		opts:   opts,
		width:  opts.Width,
		height: opts.Height,
		camera: camera.New(opts.Width, opts.Height),
	}
}

// State returns the lifecycle state.
func (o *Orchestrator) State() State {
	return o.state
}

// Camera returns the camera the geometry passes render through.
func (o *Orchestrator) Camera() *camera.LookAtCamera {
	return o.camera
}

// Viewport returns the current window size in pixels.
func (o *Orchestrator) Viewport() (int, int) {
	return o.width, o.height
}

// Load fetches the mesh and overlay concurrently, then compiles programs,
// creates targets and uploads resources. On failure the orchestrator stays
// in Loading and Load may be retried.
func (o *Orchestrator) Load(ctx context.Context, loader AssetLoader) error {
	if o.state == StateReady || o.state == StateRunning {
		return nil
	}
	o.state = StateLoading

	var (
		sphereData *mesh.Data
		overlayImg image.Image
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := loader.LoadMesh(gctx, o.opts.MeshURI)
		if err != nil {
			return fmt.Errorf("loading mesh %s: %w", o.opts.MeshURI, err)
		}
		sphereData = d
		return nil
	})
	g.Go(func() error {
		img, err := loader.LoadImage(gctx, o.opts.OverlayURI)
		if err != nil {
			return fmt.Errorf("loading overlay %s: %w", o.opts.OverlayURI, err)
		}
		overlayImg = img
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := o.compilePrograms(); err != nil {
		return err
	}
	if err := o.createTargets(); err != nil {
		return err
	}

	var err error
	if o.sphere, err = o.dev.NewMesh(sphereData); err != nil {
		return fmt.Errorf("uploading mesh: %w", err)
	}
	if o.swarm, err = o.dev.NewMesh(mesh.ParticleSwarm(o.opts.ParticleCount, o.opts.ParticleSeed)); err != nil {
		return fmt.Errorf("uploading particles: %w", err)
	}
	if o.quad, err = o.dev.NewMesh(mesh.FullscreenQuad()); err != nil {
		return fmt.Errorf("uploading quad: %w", err)
	}
	if o.overlay, err = o.dev.NewTexture("overlay", overlayImg); err != nil {
		return fmt.Errorf("uploading overlay: %w", err)
	}

	o.baked = false
	o.state = StateReady
	logger.Info("pipeline ready",
		zap.Int("width", o.width),
		zap.Int("height", o.height),
		zap.Int("particles", o.opts.ParticleCount),
	)
	return nil
}

func (o *Orchestrator) compilePrograms() error {
	specs := []struct {
		dst    *Program
		name   string
		vs, fs string
	}{
		{&o.programs.bake, PassBake, shaders.FullscreenVertexShader, shaders.BakeFragmentShader},
		{&o.programs.geometry, PassGeometry, shaders.GeometryVertexShader, shaders.GeometryFragmentShader},
		{&o.programs.particle, PassParticle, shaders.ParticleVertexShader, shaders.ParticleFragmentShader},
		{&o.programs.highpass, PassHighpass, shaders.FullscreenVertexShader, shaders.HighpassFragmentShader},
		{&o.programs.blur, PassBlur, shaders.FullscreenVertexShader, shaders.BlurFragmentShader},
		{&o.programs.composite, PassComposite, shaders.FullscreenVertexShader, shaders.CompositeFragmentShader},
		{&o.programs.diagnostic, PassDiagnostic, shaders.FullscreenVertexShader, shaders.DiagnosticFragmentShader},
	}
	for _, s := range specs {
		p, err := o.dev.NewProgram(s.name, s.vs, s.fs)
		if err != nil {
			return fmt.Errorf("compiling %s program: %w", s.name, err)
		}
		*s.dst = p
	}
	return nil
}

func (o *Orchestrator) createTargets() error {
	bw, bh := BloomSize(o.width, o.height, BloomScale)
	specs := []struct {
		dst  *RenderTarget
		spec TargetSpec
	}{
		{&o.targets.bake, TargetSpec{Name: PassBake, Width: BakeWidth, Height: BakeHeight, Attachments: 2}},
		{&o.targets.scene, TargetSpec{Name: "scene", Width: o.width, Height: o.height, Attachments: 1, Depth: true}},
		{&o.targets.highpass, TargetSpec{Name: PassHighpass, Width: bw, Height: bh, Attachments: 1}},
		{&o.targets.blur, TargetSpec{Name: PassBlur, Width: bw, Height: bh, Attachments: 1}},
	}
	for _, s := range specs {
		t, err := o.dev.NewTarget(s.spec)
		if err != nil {
			return fmt.Errorf("creating %s target: %w", s.spec.Name, err)
		}
		*s.dst = t
	}
	return nil
}

// Resize sets the window size. Full-resolution targets follow 1:1 and the
// bloom chain follows at BloomScale before Resize returns. Repeating the
// current size is a no-op.
func (o *Orchestrator) Resize(width, height int) error {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == o.width && height == o.height {
		return nil
	}
	if o.targets.scene == nil {
		o.commitSize(width, height)
		return nil
	}
	// The size is committed only once every target matches it, so a failed
	// resize is retried by the next call with the same size.
	if err := o.targets.scene.Resize(width, height); err != nil {
		return fmt.Errorf("resizing scene target: %w", err)
	}
	bw, bh := BloomSize(width, height, BloomScale)
	if err := o.targets.highpass.Resize(bw, bh); err != nil {
		return fmt.Errorf("resizing highpass target: %w", err)
	}
	if err := o.targets.blur.Resize(bw, bh); err != nil {
		return fmt.Errorf("resizing blur target: %w", err)
	}
	o.commitSize(width, height)

	logger.Debug("pipeline resized",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("bloom_width", bw),
		zap.Int("bloom_height", bh),
	)
	return nil
}

func (o *Orchestrator) commitSize(width, height int) {
	o.width, o.height = width, height
	o.camera.SetViewport(width, height)
}

// Render draws one frame. The first call after Load bakes the ice textures.
// Any pass failure aborts the frame and is returned.
func (o *Orchestrator) Render(f Frame) error {
	switch o.state {
	case StateReady:
		o.state = StateRunning
	case StateRunning:
	default:
		return ErrNotReady
	}

	for _, call := range o.frameCalls(f) {
		if err := o.dev.Draw(call); err != nil {
			return fmt.Errorf("%s pass: %w", call.Pass, err)
		}
		if call.Pass == PassBake {
			o.baked = true
		}
	}
	return nil
}

// frameCalls builds the ordered draw calls for one frame.
func (o *Orchestrator) frameCalls(f Frame) []DrawCall {
	anim := f.Animation
	world := f.Rotation.ToMat4()
	view := o.camera.ViewMatrix()
	proj := o.camera.ProjectionMatrix()

	calls := make([]DrawCall, 0, 7)
	if !o.baked {
		calls = append(calls, DrawCall{
			Pass:    PassBake,
			Program: o.programs.bake,
			Mesh:    o.quad,
			Target:  o.targets.bake,
			Params: BakeParams{
				Resolution: math.Vec2{X: BakeWidth, Y: BakeHeight},
				Seed:       float32(o.opts.ParticleSeed%97) / 97,
			},
		})
	}

	cracked := float32(0)
	if anim.Cracked {
		cracked = 1
	}
	calls = append(calls, DrawCall{
		Pass:    PassGeometry,
		Program: o.programs.geometry,
		Mesh:    o.sphere,
		Target:  o.targets.scene,
		Raster: RasterState{
			DepthTest:  true,
			CullBack:   true,
			Clear:      true,
			ClearColor: [4]float32{0.02, 0.03, 0.05, 1},
		},
		Params: GeometryParams{
			World:                 world,
			View:                  view,
			Projection:            proj,
			WorldInverseTranspose: world.InverseTranspose(),
			CameraPos:             o.camera.Eye,
			LightDir:              o.opts.LightDir,
			Time:                  f.Time,
			Scale:                 anim.Scale,
			Wobble:                anim.Wobble,
			Dissolve:              anim.Dissolve,
			Dim:                   anim.Dim,
			Recover:               anim.Recover,
			Cracked:               cracked,
			IceTexture:            o.targets.bake.Color(0),
			IceNormal:             o.targets.bake.Color(1),
		},
	})

	visible := float32(0)
	if anim.ParticleStart && anim.ParticleTime > 0 {
		visible = 1
	}
	calls = append(calls, DrawCall{
		Pass:    PassParticle,
		Program: o.programs.particle,
		Mesh:    o.swarm,
		Target:  o.targets.scene,
		Raster:  RasterState{Blend: BlendAdditive},
		Params: ParticleParams{
			World:        world,
			View:         view,
			Projection:   proj,
			Scale:        anim.Scale,
			ParticleEase: anim.ParticleEase,
			ParticleTime: anim.ParticleTime,
			Visible:      visible,
		},
	})

	calls = append(calls, DrawCall{
		Pass:    PassHighpass,
		Program: o.programs.highpass,
		Mesh:    o.quad,
		Target:  o.targets.highpass,
		Params: HighpassParams{
			Source:    o.targets.scene.Color(0),
			Threshold: o.opts.BloomThreshold,
		},
	})

	bw, bh := o.targets.highpass.Size()
	calls = append(calls, DrawCall{
		Pass:    PassBlur,
		Program: o.programs.blur,
		Mesh:    o.quad,
		Target:  o.targets.blur,
		Params: BlurParams{
			Source: o.targets.highpass.Color(0),
			Texel:  math.Vec2{X: 1 / float32(bw), Y: 1 / float32(bh)},
			Radius: o.opts.BlurRadius,
		},
	})

	calls = append(calls, DrawCall{
		Pass:     PassComposite,
		Program:  o.programs.composite,
		Mesh:     o.quad,
		Viewport: Rect{W: o.width, H: o.height},
		Raster:   RasterState{Clear: true, ClearColor: [4]float32{0, 0, 0, 1}},
		Params: CompositeParams{
			Scene:         o.targets.scene.Color(0),
			Bloom:         o.targets.blur.Color(0),
			Overlay:       o.overlay,
			BloomStrength: o.opts.BloomStrength,
			Dim:           anim.Dim,
		},
	})

	if o.opts.Diagnostic {
		calls = append(calls, DrawCall{
			Pass:     PassDiagnostic,
			Program:  o.programs.diagnostic,
			Mesh:     o.quad,
			Viewport: DiagnosticViewport(o.width, o.height),
			Params:   DiagnosticParams{Source: o.targets.bake.Color(1)},
		})
	}
	return calls
}

// SetDiagnostic toggles the diagnostic view.
func (o *Orchestrator) SetDiagnostic(on bool) {
	o.opts.Diagnostic = on
}

// Diagnostic reports whether the diagnostic view is drawn.
func (o *Orchestrator) Diagnostic() bool {
	return o.opts.Diagnostic
}

// DiagnosticViewport is the lower-left half-width, quarter-height corner of
// the window.
func DiagnosticViewport(width, height int) Rect {
	r := Rect{W: width / 2, H: height / 4}
	if r.W < 1 {
		r.W = 1
	}
	if r.H < 1 {
		r.H = 1
	}
	return r
}

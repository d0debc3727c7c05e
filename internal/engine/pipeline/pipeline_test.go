package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/icebead/internal/engine/animation"
	"github.com/Faultbox/icebead/internal/engine/lighting"
	"github.com/Faultbox/icebead/pkg/math"
)

func loadedOrchestrator(t *testing.T, opts Options) (*Orchestrator, *fakeDevice) {
	t.Helper()
	dev := newFakeDevice()
	o := New(dev, opts)
	require.NoError(t, o.Load(context.Background(), &fakeLoader{}))
	require.Equal(t, StateReady, o.State())
	return o, dev
}

func testFrame() Frame {
	return Frame{
		Rotation: math.QuatIdentity(),
		Animation: animation.Snapshot{
			Scale:  1,
			Wobble: 1,
		},
	}
}

func TestRenderBeforeLoadIsNotReady(t *testing.T) {
	dev := newFakeDevice()
	o := New(dev, Options{Width: 800, Height: 600})

	assert.Equal(t, StateUninitialized, o.State())
	assert.ErrorIs(t, o.Render(testFrame()), ErrNotReady)
	assert.Empty(t, dev.draws)
}

func TestLoadFailureStaysLoading(t *testing.T) {
	tests := []struct {
		name   string
		loader *fakeLoader
		dev    *fakeDevice
	}{
		{"mesh", &fakeLoader{meshErr: errors.New("no such file")}, newFakeDevice()},
		{"image", &fakeLoader{imageErr: errors.New("bad png")}, newFakeDevice()},
		{"program", &fakeLoader{}, &fakeDevice{targets: map[string]*fakeTarget{}, failProgram: PassBlur}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New(tt.dev, Options{Width: 800, Height: 600})
			err := o.Load(context.Background(), tt.loader)
			require.Error(t, err)
			assert.Equal(t, StateLoading, o.State())
			assert.ErrorIs(t, o.Render(testFrame()), ErrNotReady)
			assert.Empty(t, tt.dev.draws)
		})
	}
}

func TestLoadCancelsSiblingFetchOnError(t *testing.T) {
	loader := &fakeLoader{meshErr: errors.New("boom"), blockImg: true}
	o := New(newFakeDevice(), Options{Width: 800, Height: 600})

	err := o.Load(context.Background(), loader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, 1, loader.imgCalls)
}

func TestLoadCreatesTargets(t *testing.T) {
	_, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})

	bake := dev.targets[PassBake]
	require.NotNil(t, bake)
	assert.Equal(t, TargetSpec{Name: PassBake, Width: 2048, Height: 1024, Attachments: 2}, bake.spec)

	scene := dev.targets["scene"]
	require.NotNil(t, scene)
	assert.True(t, scene.spec.Depth)
	assert.Equal(t, [2]int{800, 600}, [2]int{scene.spec.Width, scene.spec.Height})

	for _, name := range []string{PassHighpass, PassBlur} {
		tg := dev.targets[name]
		require.NotNil(t, tg, name)
		assert.False(t, tg.spec.Depth, name)
		assert.Equal(t, [2]int{160, 120}, [2]int{tg.spec.Width, tg.spec.Height}, name)
	}

	assert.Len(t, dev.programs, 7)
	require.Len(t, dev.meshes, 3)
	assert.Equal(t, DefaultParticleCount, dev.meshes[1].data.VertexCount())
	require.Len(t, dev.textures, 1)
}

func TestRenderPassOrder(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})

	require.NoError(t, o.Render(testFrame()))
	assert.Equal(t, StateRunning, o.State())
	assert.Equal(t, []string{PassBake, PassGeometry, PassParticle, PassHighpass, PassBlur, PassComposite}, dev.passes())

	dev.draws = nil
	require.NoError(t, o.Render(testFrame()))
	assert.Equal(t, []string{PassGeometry, PassParticle, PassHighpass, PassBlur, PassComposite}, dev.passes(), "bake runs once")
	assert.Equal(t, StateRunning, o.State())
}

func TestRenderWiresPassInputs(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})
	require.NoError(t, o.Render(testFrame()))

	bake := dev.targets[PassBake]
	scene := dev.targets["scene"]
	highpass := dev.targets[PassHighpass]
	blur := dev.targets[PassBlur]

	geo := dev.lastDraw(PassGeometry)
	require.NotNil(t, geo)
	assert.Same(t, scene, geo.call.Target)
	assert.Same(t, bake.colors[0], geo.uniforms.textures["u_iceTexture"])
	assert.Same(t, bake.colors[1], geo.uniforms.textures["u_iceNormal"])
	assert.Equal(t, math.Vec3{Z: 3}, geo.uniforms.vec3s["u_cameraPos"])

	particle := dev.lastDraw(PassParticle)
	require.NotNil(t, particle)
	assert.Same(t, scene, particle.call.Target)

	hp := dev.lastDraw(PassHighpass)
	require.NotNil(t, hp)
	assert.Same(t, highpass, hp.call.Target)
	assert.Same(t, scene.colors[0], hp.uniforms.textures["u_source"])

	bl := dev.lastDraw(PassBlur)
	require.NotNil(t, bl)
	assert.Same(t, blur, bl.call.Target)
	assert.Same(t, highpass.colors[0], bl.uniforms.textures["u_source"])
	assert.Equal(t, math.Vec2{X: 1.0 / 160, Y: 1.0 / 120}, bl.uniforms.vec2s["u_texel"])

	comp := dev.lastDraw(PassComposite)
	require.NotNil(t, comp)
	assert.Nil(t, comp.call.Target)
	assert.Equal(t, Rect{W: 800, H: 600}, comp.call.Viewport)
	assert.Same(t, scene.colors[0], comp.uniforms.textures["u_scene"])
	assert.Same(t, blur.colors[0], comp.uniforms.textures["u_bloom"])
	assert.Same(t, dev.textures[0], comp.uniforms.textures["u_overlay"])
	assert.Equal(t, 2, comp.uniforms.units["u_overlay"])
}

func TestRenderRasterStates(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})
	require.NoError(t, o.Render(testFrame()))

	geo := dev.lastDraw(PassGeometry).call.Raster
	assert.True(t, geo.DepthTest)
	assert.True(t, geo.CullBack)
	assert.Equal(t, BlendNone, geo.Blend)

	particle := dev.lastDraw(PassParticle).call.Raster
	assert.False(t, particle.DepthTest)
	assert.False(t, particle.CullBack)
	assert.NotEqual(t, BlendNone, particle.Blend)

	for _, pass := range []string{PassHighpass, PassBlur, PassComposite} {
		r := dev.lastDraw(pass).call.Raster
		assert.False(t, r.DepthTest, pass)
		assert.False(t, r.CullBack, pass)
	}
}

func TestResizeUpdatesTargetsSynchronously(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})

	require.NoError(t, o.Resize(1600, 1200))

	scene := dev.targets["scene"]
	assert.Equal(t, [2]int{1600, 1200}, [2]int{scene.spec.Width, scene.spec.Height})
	for _, name := range []string{PassHighpass, PassBlur} {
		tg := dev.targets[name]
		assert.Equal(t, [2]int{320, 240}, [2]int{tg.spec.Width, tg.spec.Height}, name)
	}
	bake := dev.targets[PassBake]
	assert.Equal(t, [2]int{2048, 1024}, [2]int{bake.spec.Width, bake.spec.Height})
	assert.Equal(t, 0, bake.resizes)
	assert.InDelta(t, 4.0/3.0, o.Camera().Aspect, 1e-6)

	// Same size again does nothing.
	require.NoError(t, o.Resize(1600, 1200))
	assert.Equal(t, 1, scene.resizes)

	require.NoError(t, o.Render(testFrame()))
	comp := dev.lastDraw(PassComposite)
	assert.Equal(t, Rect{W: 1600, H: 1200}, comp.call.Viewport)
	assert.Equal(t, math.Vec2{X: 1.0 / 320, Y: 1.0 / 240}, dev.lastDraw(PassBlur).uniforms.vec2s["u_texel"])
}

func TestResizeRetriesAfterTargetFailure(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})
	blur := dev.targets[PassBlur]
	blur.failResize = errors.New("incomplete framebuffer")

	err := o.Resize(1600, 1200)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blur")
	w, h := o.Viewport()
	assert.Equal(t, [2]int{800, 600}, [2]int{w, h})

	blur.failResize = nil
	require.NoError(t, o.Resize(1600, 1200))
	assert.Equal(t, [2]int{320, 240}, [2]int{blur.spec.Width, blur.spec.Height})
	w, h = o.Viewport()
	assert.Equal(t, [2]int{1600, 1200}, [2]int{w, h})
}

func TestResizeBeforeLoad(t *testing.T) {
	dev := newFakeDevice()
	o := New(dev, Options{Width: 800, Height: 600})
	require.NoError(t, o.Resize(1024, 768))
	require.NoError(t, o.Load(context.Background(), &fakeLoader{}))

	scene := dev.targets["scene"]
	assert.Equal(t, [2]int{1024, 768}, [2]int{scene.spec.Width, scene.spec.Height})
	hp := dev.targets[PassHighpass]
	assert.Equal(t, [2]int{204, 153}, [2]int{hp.spec.Width, hp.spec.Height})
}

func TestBloomSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{800, 600, 160, 120},
		{1600, 1200, 320, 240},
		{801, 599, 160, 119},
		{4, 4, 1, 1},
		{0, 0, 1, 1},
		{-10, 7, 1, 1},
	}
	for _, tt := range tests {
		w, h := BloomSize(tt.w, tt.h, BloomScale)
		assert.Equal(t, tt.wantW, w, "%dx%d", tt.w, tt.h)
		assert.Equal(t, tt.wantH, h, "%dx%d", tt.w, tt.h)
	}
}

func TestDiagnosticView(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600, Diagnostic: true})
	require.NoError(t, o.Render(testFrame()))

	passes := dev.passes()
	require.NotEmpty(t, passes)
	assert.Equal(t, PassDiagnostic, passes[len(passes)-1])

	diag := dev.lastDraw(PassDiagnostic)
	assert.Equal(t, Rect{W: 400, H: 150}, diag.call.Viewport)
	assert.Same(t, dev.targets[PassBake].colors[1], diag.uniforms.textures["u_source"])

	o.SetDiagnostic(false)
	dev.draws = nil
	require.NoError(t, o.Render(testFrame()))
	assert.Nil(t, dev.lastDraw(PassDiagnostic))
}

func TestDrawErrorFailsFast(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})
	dev.failDraw = PassHighpass

	err := o.Render(testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), PassHighpass)
	assert.Equal(t, []string{PassBake, PassGeometry, PassParticle}, dev.passes())

	// The bake succeeded and is not repeated.
	dev.failDraw = ""
	dev.draws = nil
	require.NoError(t, o.Render(testFrame()))
	assert.Equal(t, PassGeometry, dev.passes()[0])
}

func TestParticlesHiddenUntilBurst(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})

	require.NoError(t, o.Render(testFrame()))
	assert.Equal(t, float32(0), dev.lastDraw(PassParticle).uniforms.floats["u_visible"])

	f := testFrame()
	f.Animation.ParticleStart = true
	f.Animation.ParticleTime = 0.5
	f.Animation.ParticleEase = 0.97
	require.NoError(t, o.Render(f))
	u := dev.lastDraw(PassParticle).uniforms
	assert.Equal(t, float32(1), u.floats["u_visible"])
	assert.Equal(t, float32(0.97), u.floats["u_particleEase"])
}

func TestGeometryUsesRotation(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 800, Height: 600})

	f := testFrame()
	f.Rotation = math.QuatFromAxisAngle(math.Vec3{Y: 1}, 0.5)
	require.NoError(t, o.Render(f))

	u := dev.lastDraw(PassGeometry).uniforms
	assert.Equal(t, f.Rotation.ToMat4(), u.mat4s["u_worldMatrix"])
	assert.Equal(t, []string{
		"u_worldMatrix", "u_viewMatrix", "u_projectionMatrix", "u_worldInverseTransposeMatrix",
		"u_cameraPos", "u_lightDir", "u_time", "u_scale", "u_wobble", "u_dissolve", "u_dim", "u_recover",
		"u_cracked", "u_iceTexture", "u_iceNormal",
	}, u.order)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "running", StateRunning.String())
}

func TestGeometryLightDirection(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 64, Height: 64})
	require.NoError(t, o.Render(testFrame()))
	got := dev.lastDraw(PassGeometry).uniforms.vec3s["u_lightDir"]
	assert.Equal(t, lighting.DefaultSun().Normalize(), got)

	o, dev = loadedOrchestrator(t, Options{Width: 64, Height: 64, LightDir: math.Vec3{Y: 5}})
	require.NoError(t, o.Render(testFrame()))
	assert.Equal(t, math.Vec3{Y: 1}, dev.lastDraw(PassGeometry).uniforms.vec3s["u_lightDir"])
}

func TestBoundUniformsAreDeclared(t *testing.T) {
	o, dev := loadedOrchestrator(t, Options{Width: 64, Height: 64, Diagnostic: true})
	require.NoError(t, o.Render(testFrame()))

	for _, d := range dev.draws {
		prog := d.call.Program.(*fakeProgram)
		src := prog.vs + prog.fs
		for _, name := range d.uniforms.order {
			assert.True(t, strings.Contains(src, " "+name+";"),
				"%s pass binds %s but its shaders do not declare it", d.call.Pass, name)
		}
	}
}

package pipeline

import "github.com/Faultbox/icebead/pkg/math"

// BakeParams feeds the one-time ice texture bake.
type BakeParams struct {
	Resolution math.Vec2
	Seed       float32
}

func (p BakeParams) Bind(u UniformBinder) {
	u.Vec2("u_resolution", p.Resolution)
	u.Float("u_seed", p.Seed)
}

// GeometryParams feeds the bead draw.
type GeometryParams struct {
	World                 math.Mat4
	View                  math.Mat4
	Projection            math.Mat4
	WorldInverseTranspose math.Mat4
	CameraPos             math.Vec3
	LightDir              math.Vec3
	Time                  float32

	Scale    float32
	Wobble   float32
	Dissolve float32
	Dim      float32
	Recover  float32
	Cracked  float32

	IceTexture Texture
	IceNormal  Texture
}

func (p GeometryParams) Bind(u UniformBinder) {
	u.Mat4("u_worldMatrix", p.World)
	u.Mat4("u_viewMatrix", p.View)
	u.Mat4("u_projectionMatrix", p.Projection)
	u.Mat4("u_worldInverseTransposeMatrix", p.WorldInverseTranspose)
	u.Vec3("u_cameraPos", p.CameraPos)
	u.Vec3("u_lightDir", p.LightDir)
	u.Float("u_time", p.Time)
	u.Float("u_scale", p.Scale)
	u.Float("u_wobble", p.Wobble)
	u.Float("u_dissolve", p.Dissolve)
	u.Float("u_dim", p.Dim)
	u.Float("u_recover", p.Recover)
	u.Float("u_cracked", p.Cracked)
	u.Texture("u_iceTexture", 0, p.IceTexture)
	u.Texture("u_iceNormal", 1, p.IceNormal)
}

// ParticleParams feeds the burst particle draw.
type ParticleParams struct {
	World      math.Mat4
	View       math.Mat4
	Projection math.Mat4

	Scale        float32
	ParticleEase float32
	ParticleTime float32
	Visible      float32 // 1 once a burst started, else 0
}

func (p ParticleParams) Bind(u UniformBinder) {
	u.Mat4("u_worldMatrix", p.World)
	u.Mat4("u_viewMatrix", p.View)
	u.Mat4("u_projectionMatrix", p.Projection)
	u.Float("u_scale", p.Scale)
	u.Float("u_particleEase", p.ParticleEase)
	u.Float("u_particleTime", p.ParticleTime)
	u.Float("u_visible", p.Visible)
}

// HighpassParams feeds the bright-pass filter.
type HighpassParams struct {
	Source    Texture
	Threshold float32
}

func (p HighpassParams) Bind(u UniformBinder) {
	u.Texture("u_source", 0, p.Source)
	u.Float("u_threshold", p.Threshold)
}

// BlurParams feeds the bloom blur.
type BlurParams struct {
	Source Texture
	Texel  math.Vec2 // 1 / source size
	Radius float32
}

func (p BlurParams) Bind(u UniformBinder) {
	u.Texture("u_source", 0, p.Source)
	u.Vec2("u_texel", p.Texel)
	u.Float("u_radius", p.Radius)
}

// CompositeParams feeds the final combine onto the window.
type CompositeParams struct {
	Scene         Texture
	Bloom         Texture
	Overlay       Texture
	BloomStrength float32
	Dim           float32
}

func (p CompositeParams) Bind(u UniformBinder) {
	u.Texture("u_scene", 0, p.Scene)
	u.Texture("u_bloom", 1, p.Bloom)
	u.Texture("u_overlay", 2, p.Overlay)
	u.Float("u_bloomStrength", p.BloomStrength)
	u.Float("u_dim", p.Dim)
}

// DiagnosticParams feeds the debug texture view.
type DiagnosticParams struct {
	Source Texture
}

func (p DiagnosticParams) Bind(u UniformBinder) {
	u.Texture("u_source", 0, p.Source)
}

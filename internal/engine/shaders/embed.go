// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// FullscreenVertexShader draws the fullscreen quad for every post pass.
//
//go:embed fullscreen.vert
var FullscreenVertexShader string

// BakeFragmentShader renders the ice albedo and normal map.
//
//go:embed bake.frag
var BakeFragmentShader string

// GeometryVertexShader deforms and transforms the bead.
//
//go:embed geometry.vert
var GeometryVertexShader string

// GeometryFragmentShader shades the bead and applies the dissolve.
//
//go:embed geometry.frag
var GeometryFragmentShader string

// ParticleVertexShader moves the burst particles.
//
//go:embed particle.vert
var ParticleVertexShader string

// ParticleFragmentShader draws round, fading points.
//
//go:embed particle.frag
var ParticleFragmentShader string

// HighpassFragmentShader keeps the bright parts of the scene.
//
//go:embed highpass.frag
var HighpassFragmentShader string

// BlurFragmentShader blurs the highpass output.
//
//go:embed blur.frag
var BlurFragmentShader string

// CompositeFragmentShader combines scene, bloom and overlay.
//
//go:embed composite.frag
var CompositeFragmentShader string

// DiagnosticFragmentShader shows a texture as-is.
//
//go:embed diagnostic.frag
var DiagnosticFragmentShader string

package pipeline

import (
	"context"
	"image"

	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/pkg/math"
)

// Texture is a sampled GPU image.
type Texture interface {
	Size() (width, height int)
}

// RenderTarget is an offscreen framebuffer with one or more color
// attachments.
type RenderTarget interface {
	Size() (width, height int)
	Color(i int) Texture
	Resize(width, height int) error
}

// Program is a linked shader program.
type Program interface {
	Name() string
}

// Mesh is uploaded vertex data.
type Mesh interface {
	Name() string
}

// TargetSpec describes a render target to create.
type TargetSpec struct {
	Name        string
	Width       int
	Height      int
	Attachments int // color attachments, at least 1
	Depth       bool
}

// Rect is a viewport rectangle in pixels, origin bottom-left.
type Rect struct {
	X, Y, W, H int
}

// Blend selects the color blend equation.
type Blend int

const (
	BlendNone Blend = iota
	BlendAdditive
	BlendAlpha
)

// RasterState is the fixed-function state a draw runs with.
type RasterState struct {
	DepthTest  bool
	CullBack   bool
	Blend      Blend
	Clear      bool
	ClearColor [4]float32
}

// DrawCall is one pass submission.
type DrawCall struct {
	Pass     string
	Program  Program
	Mesh     Mesh
	Target   RenderTarget // nil draws to the window
	Viewport Rect         // zero covers the whole target
	Raster   RasterState
	Params   Params
}

// UniformBinder receives uniform values for the program being drawn.
// Uniforms a program does not use are ignored.
type UniformBinder interface {
	Float(name string, v float32)
	Vec2(name string, v math.Vec2)
	Vec3(name string, v math.Vec3)
	Mat4(name string, m math.Mat4)
	Texture(name string, unit int, tex Texture)
}

// Params binds one pass's uniforms in a fixed order.
type Params interface {
	Bind(u UniformBinder)
}

// Device creates GPU resources and executes draw calls.
type Device interface {
	NewProgram(name, vertexSrc, fragmentSrc string) (Program, error)
	NewTarget(spec TargetSpec) (RenderTarget, error)
	NewMesh(data *mesh.Data) (Mesh, error)
	NewTexture(name string, img image.Image) (Texture, error)
	Draw(call DrawCall) error
}

// AssetLoader fetches the pipeline's external assets. Implementations must
// be safe for concurrent use.
type AssetLoader interface {
	LoadMesh(ctx context.Context, uri string) (*mesh.Data, error)
	LoadImage(ctx context.Context, uri string) (image.Image, error)
}

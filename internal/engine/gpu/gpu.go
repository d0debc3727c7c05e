// Package gpu implements the render pipeline's Device on OpenGL 4.1 core.
// Every method must run on the thread that owns the GL context.
package gpu

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/icebead/internal/engine/framebuffer"
	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/internal/engine/pipeline"
	"github.com/Faultbox/icebead/internal/engine/shader"
	"github.com/Faultbox/icebead/internal/engine/texture"
	"github.com/Faultbox/icebead/internal/logger"
	"github.com/Faultbox/icebead/pkg/math"
)

// Device owns every GL object the pipeline creates.
type Device struct {
	programs []*shader.Program
	targets  []*Target
	meshes   []*Mesh
	textures []*Texture
}

// New loads GL function pointers. Must be called after the context is
// current.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)

	gl.Enable(gl.PROGRAM_POINT_SIZE)
	gl.DepthFunc(gl.LESS)
	return &Device{}, checkError("init")
}

// Release deletes every GL object created through the device.
func (d *Device) Release() {
	for _, p := range d.programs {
		p.Delete()
	}
	for _, t := range d.targets {
		t.fb.Destroy()
	}
	for _, m := range d.meshes {
		m.delete()
	}
	for _, t := range d.textures {
		gl.DeleteTextures(1, &t.id)
	}
	d.programs, d.targets, d.meshes, d.textures = nil, nil, nil, nil
	logger.Debug("gpu resources released")
}

// NewProgram compiles and links a shader pair.
func (d *Device) NewProgram(name, vertexSrc, fragmentSrc string) (pipeline.Program, error) {
	p, err := shader.Compile(name, vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	d.programs = append(d.programs, p)
	logger.Debug("shader program created", zap.String("name", name), zap.Uint32("program", p.ID()))
	return p, nil
}

// Texture is a GL 2D texture.
type Texture struct {
	id            uint32
	width, height int
}

// Size returns the texture size in pixels.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// ID returns the GL texture name.
func (t *Texture) ID() uint32 { return t.id }

// NewTexture uploads img as an RGBA8 texture with bottom-up rows.
func (d *Device) NewTexture(name string, img image.Image) (pipeline.Texture, error) {
	rgba := texture.FlipVertical(texture.ToRGBA(img))
	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()

	t := &Texture{width: w, height: h}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := checkError("texture " + name); err != nil {
		gl.DeleteTextures(1, &t.id)
		return nil, err
	}
	d.textures = append(d.textures, t)
	return t, nil
}

// Target adapts a framebuffer to pipeline.RenderTarget.
type Target struct {
	name   string
	fb     *framebuffer.Framebuffer
	colors []*attachment
}

type attachment struct {
	target *Target
	index  int
}

func (a *attachment) Size() (int, int) { return a.target.Size() }

func (a *attachment) id() uint32 { return a.target.fb.ColorTexture(a.index) }

// NewTarget creates an offscreen framebuffer.
func (d *Device) NewTarget(spec pipeline.TargetSpec) (pipeline.RenderTarget, error) {
	fb, err := framebuffer.New(framebuffer.Spec{
		Width:       int32(spec.Width),
		Height:      int32(spec.Height),
		Attachments: spec.Attachments,
		Depth:       spec.Depth,
	})
	if err != nil {
		return nil, fmt.Errorf("target %s: %w", spec.Name, err)
	}
	t := &Target{name: spec.Name, fb: fb}
	for i := 0; i < fb.Attachments(); i++ {
		t.colors = append(t.colors, &attachment{target: t, index: i})
	}
	d.targets = append(d.targets, t)
	logger.Debug("render target created",
		zap.String("name", spec.Name),
		zap.Int("width", spec.Width),
		zap.Int("height", spec.Height),
		zap.Int("attachments", fb.Attachments()),
		zap.Bool("depth", spec.Depth),
	)
	return t, nil
}

// Size returns the target size in pixels.
func (t *Target) Size() (int, int) {
	w, h := t.fb.Size()
	return int(w), int(h)
}

// Color returns color attachment i as a texture.
func (t *Target) Color(i int) pipeline.Texture {
	if i < 0 || i >= len(t.colors) {
		return nil
	}
	return t.colors[i]
}

// Resize reallocates the target storage.
func (t *Target) Resize(width, height int) error {
	if err := t.fb.Resize(int32(width), int32(height)); err != nil {
		return fmt.Errorf("target %s: %w", t.name, err)
	}
	return nil
}

// Mesh is an uploaded vertex array.
type Mesh struct {
	name      string
	vao       uint32
	vbo       uint32
	ebo       uint32
	count     int32
	indexed   bool
	primitive uint32
}

// Name returns the mesh name.
func (m *Mesh) Name() string { return m.name }

func (m *Mesh) delete() {
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
	}
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
}

// NewMesh uploads interleaved vertex data. Attribute i binds to location i.
func (d *Device) NewMesh(data *mesh.Data) (pipeline.Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", data.Name, err)
	}

	m := &Mesh{
		name:      data.Name,
		count:     int32(data.ElementCount()),
		indexed:   len(data.Indices) > 0,
		primitive: gl.TRIANGLES,
	}
	if data.Primitive == mesh.Points {
		m.primitive = gl.POINTS
	}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data.Vertices)*4, gl.Ptr(data.Vertices), gl.STATIC_DRAW)

	stride := int32(data.Stride() * 4)
	offset := 0
	for i, attr := range data.Attributes {
		gl.VertexAttribPointerWithOffset(uint32(i), int32(attr.Size), gl.FLOAT, false, stride, uintptr(offset*4))
		gl.EnableVertexAttribArray(uint32(i))
		offset += attr.Size
	}

	if m.indexed {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data.Indices)*4, gl.Ptr(data.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if err := checkError("mesh " + data.Name); err != nil {
		m.delete()
		return nil, err
	}
	d.meshes = append(d.meshes, m)
	logger.Debug("mesh uploaded",
		zap.String("name", data.Name),
		zap.Int("vertices", data.VertexCount()),
		zap.Int32("elements", m.count),
	)
	return m, nil
}

// Draw runs one pass: binds its target and state, binds uniforms, submits
// the mesh and reports any GL error.
func (d *Device) Draw(call pipeline.DrawCall) error {
	prog, ok := call.Program.(*shader.Program)
	if !ok {
		return fmt.Errorf("program %T is not a GL program", call.Program)
	}
	m, ok := call.Mesh.(*Mesh)
	if !ok {
		return fmt.Errorf("mesh %T is not a GL mesh", call.Mesh)
	}

	vp := call.Viewport
	if call.Target != nil {
		t, ok := call.Target.(*Target)
		if !ok {
			return fmt.Errorf("target %T is not a GL target", call.Target)
		}
		t.fb.Bind()
		if vp != (pipeline.Rect{}) {
			gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
		}
	} else {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	}

	applyRaster(call.Raster, vp, call.Target == nil)

	prog.Use()
	binder := &uniformBinder{prog: prog}
	if call.Params != nil {
		call.Params.Bind(binder)
	}
	if binder.err != nil {
		return binder.err
	}

	gl.BindVertexArray(m.vao)
	if m.indexed {
		gl.DrawElementsWithOffset(m.primitive, m.count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(m.primitive, 0, m.count)
	}
	gl.BindVertexArray(0)

	for i := 0; i < binder.units; i++ {
		gl.ActiveTexture(uint32(gl.TEXTURE0 + i))
		gl.BindTexture(gl.TEXTURE_2D, 0)
	}
	gl.ActiveTexture(gl.TEXTURE0)

	return checkError(call.Pass)
}

func applyRaster(r pipeline.RasterState, vp pipeline.Rect, window bool) {
	if r.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	if r.CullBack {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	switch r.Blend {
	case pipeline.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	case pipeline.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Disable(gl.BLEND)
	}

	if r.Clear {
		// Clearing a window sub-rectangle must not wipe the rest.
		if window && vp != (pipeline.Rect{}) {
			gl.Enable(gl.SCISSOR_TEST)
			gl.Scissor(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
			defer gl.Disable(gl.SCISSOR_TEST)
		}
		gl.ClearColor(r.ClearColor[0], r.ClearColor[1], r.ClearColor[2], r.ClearColor[3])
		mask := uint32(gl.COLOR_BUFFER_BIT)
		if r.DepthTest {
			mask |= gl.DEPTH_BUFFER_BIT
		}
		gl.Clear(mask)
	}
}

// uniformBinder writes uniforms into the current program.
type uniformBinder struct {
	prog  *shader.Program
	units int
	err   error
}

func (b *uniformBinder) Float(name string, v float32) {
	if loc := b.prog.Uniform(name); loc >= 0 {
		gl.Uniform1f(loc, v)
	}
}

func (b *uniformBinder) Vec2(name string, v math.Vec2) {
	if loc := b.prog.Uniform(name); loc >= 0 {
		gl.Uniform2f(loc, v.X, v.Y)
	}
}

func (b *uniformBinder) Vec3(name string, v math.Vec3) {
	if loc := b.prog.Uniform(name); loc >= 0 {
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	}
}

func (b *uniformBinder) Mat4(name string, m math.Mat4) {
	if loc := b.prog.Uniform(name); loc >= 0 {
		gl.UniformMatrix4fv(loc, 1, false, m.Ptr())
	}
}

func (b *uniformBinder) Texture(name string, unit int, tex pipeline.Texture) {
	var id uint32
	switch t := tex.(type) {
	case *Texture:
		id = t.id
	case *attachment:
		id = t.id()
	case nil:
	default:
		if b.err == nil {
			b.err = fmt.Errorf("uniform %s: texture %T is not a GL texture", name, tex)
		}
		return
	}
	gl.ActiveTexture(uint32(gl.TEXTURE0 + unit))
	gl.BindTexture(gl.TEXTURE_2D, id)
	if loc := b.prog.Uniform(name); loc >= 0 {
		gl.Uniform1i(loc, int32(unit))
	}
	if unit+1 > b.units {
		b.units = unit + 1
	}
}

// checkError drains the GL error queue and reports the first error.
func checkError(op string) error {
	first := uint32(gl.NO_ERROR)
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == gl.NO_ERROR {
			first = code
		}
	}
	if first != gl.NO_ERROR {
		return fmt.Errorf("%s: GL error %s", op, errorName(first))
	}
	return nil
}

func errorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return fmt.Sprintf("0x%x", code)
	}
}

// ReadScreen reads the window framebuffer as bottom-up RGBA rows.
func (d *Device) ReadScreen(width, height int) []byte {
	pixels := make([]byte, width*height*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadBuffer(gl.BACK)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

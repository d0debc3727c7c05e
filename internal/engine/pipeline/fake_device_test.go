package pipeline

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/pkg/math"
)

type fakeProgram struct{ name, vs, fs string }

func (p *fakeProgram) Name() string { return p.name }

type fakeMesh struct{ data *mesh.Data }

func (m *fakeMesh) Name() string { return m.data.Name }

type fakeTexture struct {
	name string
	w, h int
}

func (t *fakeTexture) Size() (int, int) { return t.w, t.h }

type fakeAttachment struct {
	target *fakeTarget
	index  int
}

func (a *fakeAttachment) Size() (int, int) { return a.target.Size() }

type fakeTarget struct {
	spec    TargetSpec
	colors  []*fakeAttachment
	resizes int

	failResize error
}

func (t *fakeTarget) Size() (int, int) { return t.spec.Width, t.spec.Height }

func (t *fakeTarget) Color(i int) Texture {
	if i < 0 || i >= len(t.colors) {
		return nil
	}
	return t.colors[i]
}

func (t *fakeTarget) Resize(w, h int) error {
	if t.failResize != nil {
		return t.failResize
	}
	t.spec.Width, t.spec.Height = w, h
	t.resizes++
	return nil
}

// uniformLog records bound uniforms by name.
type uniformLog struct {
	order    []string
	floats   map[string]float32
	vec2s    map[string]math.Vec2
	vec3s    map[string]math.Vec3
	mat4s    map[string]math.Mat4
	textures map[string]Texture
	units    map[string]int
}

func newUniformLog() *uniformLog {
	return &uniformLog{
		floats:   map[string]float32{},
		vec2s:    map[string]math.Vec2{},
		vec3s:    map[string]math.Vec3{},
		mat4s:    map[string]math.Mat4{},
		textures: map[string]Texture{},
		units:    map[string]int{},
	}
}

func (u *uniformLog) Float(name string, v float32) {
	u.order = append(u.order, name)
	u.floats[name] = v
}

func (u *uniformLog) Vec2(name string, v math.Vec2) {
	u.order = append(u.order, name)
	u.vec2s[name] = v
}

func (u *uniformLog) Vec3(name string, v math.Vec3) {
	u.order = append(u.order, name)
	u.vec3s[name] = v
}

func (u *uniformLog) Mat4(name string, m math.Mat4) {
	u.order = append(u.order, name)
	u.mat4s[name] = m
}

func (u *uniformLog) Texture(name string, unit int, tex Texture) {
	u.order = append(u.order, name)
	u.textures[name] = tex
	u.units[name] = unit
}

type recordedDraw struct {
	call     DrawCall
	uniforms *uniformLog
}

// fakeDevice records every resource and draw without a GPU.
type fakeDevice struct {
	programs []*fakeProgram
	targets  map[string]*fakeTarget
	meshes   []*fakeMesh
	textures []*fakeTexture
	draws    []recordedDraw

	failProgram string
	failDraw    string
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{targets: map[string]*fakeTarget{}}
}

func (d *fakeDevice) NewProgram(name, vs, fs string) (Program, error) {
	if name == d.failProgram {
		return nil, errors.New("0:12: syntax error")
	}
	p := &fakeProgram{name: name, vs: vs, fs: fs}
	d.programs = append(d.programs, p)
	return p, nil
}

func (d *fakeDevice) NewTarget(spec TargetSpec) (RenderTarget, error) {
	t := &fakeTarget{spec: spec}
	for i := 0; i < spec.Attachments; i++ {
		t.colors = append(t.colors, &fakeAttachment{target: t, index: i})
	}
	d.targets[spec.Name] = t
	return t, nil
}

func (d *fakeDevice) NewMesh(data *mesh.Data) (Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	m := &fakeMesh{data: data}
	d.meshes = append(d.meshes, m)
	return m, nil
}

func (d *fakeDevice) NewTexture(name string, img image.Image) (Texture, error) {
	b := img.Bounds()
	t := &fakeTexture{name: name, w: b.Dx(), h: b.Dy()}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDevice) Draw(call DrawCall) error {
	if call.Pass == d.failDraw {
		return errors.New("GL_INVALID_OPERATION")
	}
	u := newUniformLog()
	if call.Params != nil {
		call.Params.Bind(u)
	}
	d.draws = append(d.draws, recordedDraw{call: call, uniforms: u})
	return nil
}

func (d *fakeDevice) passes() []string {
	names := make([]string, len(d.draws))
	for i, dr := range d.draws {
		names[i] = dr.call.Pass
	}
	return names
}

func (d *fakeDevice) lastDraw(pass string) *recordedDraw {
	for i := len(d.draws) - 1; i >= 0; i-- {
		if d.draws[i].call.Pass == pass {
			return &d.draws[i]
		}
	}
	return nil
}

// fakeLoader serves procedural assets and can fail or block on demand.
type fakeLoader struct {
	mu        sync.Mutex
	meshErr   error
	imageErr  error
	blockImg  bool
	meshCalls int
	imgCalls  int
}

func (l *fakeLoader) LoadMesh(ctx context.Context, uri string) (*mesh.Data, error) {
	l.mu.Lock()
	l.meshCalls++
	l.mu.Unlock()
	if l.meshErr != nil {
		return nil, l.meshErr
	}
	return mesh.Icosphere(1), nil
}

func (l *fakeLoader) LoadImage(ctx context.Context, uri string) (image.Image, error) {
	l.mu.Lock()
	l.imgCalls++
	l.mu.Unlock()
	if l.blockImg {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if l.imageErr != nil {
		return nil, l.imageErr
	}
	return image.NewGray(image.Rect(0, 0, 64, 64)), nil
}

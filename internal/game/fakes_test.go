package game

import (
	"errors"
	"image"

	"github.com/Faultbox/icebead/internal/engine/input"
	"github.com/Faultbox/icebead/internal/engine/mesh"
	"github.com/Faultbox/icebead/internal/engine/pipeline"
	"github.com/Faultbox/icebead/pkg/math"
)

type stubProgram string

func (p stubProgram) Name() string { return string(p) }

type stubMesh string

func (m stubMesh) Name() string { return string(m) }

type stubTexture struct{ w, h int }

func (t stubTexture) Size() (int, int) { return t.w, t.h }

type stubTarget struct{ w, h, attachments int }

func (t *stubTarget) Size() (int, int) { return t.w, t.h }

func (t *stubTarget) Color(i int) pipeline.Texture {
	if i < 0 || i >= t.attachments {
		return nil
	}
	return stubTexture{t.w, t.h}
}

func (t *stubTarget) Resize(w, h int) error {
	t.w, t.h = w, h
	return nil
}

// worldCapture keeps the world matrix bound by a draw.
type worldCapture struct {
	world math.Mat4
	set   bool
}

func (w *worldCapture) Float(string, float32) {}
func (w *worldCapture) Vec2(string, math.Vec2) {}
func (w *worldCapture) Vec3(string, math.Vec3) {}
func (w *worldCapture) Texture(string, int, pipeline.Texture) {}
func (w *worldCapture) Mat4(name string, m math.Mat4) {
	if name == "u_worldMatrix" {
		w.world, w.set = m, true
	}
}

// recordingDevice records pass names and the last geometry world matrix.
type recordingDevice struct {
	targets  map[string]*stubTarget
	passes   []string
	world    math.Mat4
	failPass string
}

func newRecordingDevice() *recordingDevice {
	return &recordingDevice{targets: map[string]*stubTarget{}}
}

func (d *recordingDevice) NewProgram(name, _, _ string) (pipeline.Program, error) {
	return stubProgram(name), nil
}

func (d *recordingDevice) NewTarget(spec pipeline.TargetSpec) (pipeline.RenderTarget, error) {
	t := &stubTarget{w: spec.Width, h: spec.Height, attachments: spec.Attachments}
	d.targets[spec.Name] = t
	return t, nil
}

func (d *recordingDevice) NewMesh(data *mesh.Data) (pipeline.Mesh, error) {
	return stubMesh(data.Name), data.Validate()
}

func (d *recordingDevice) NewTexture(_ string, img image.Image) (pipeline.Texture, error) {
	return stubTexture{img.Bounds().Dx(), img.Bounds().Dy()}, nil
}

func (d *recordingDevice) Draw(call pipeline.DrawCall) error {
	if call.Pass == d.failPass {
		return errors.New("GL_OUT_OF_MEMORY")
	}
	d.passes = append(d.passes, call.Pass)
	if call.Pass == pipeline.PassGeometry && call.Params != nil {
		var w worldCapture
		call.Params.Bind(&w)
		if w.set {
			d.world = w.world
		}
	}
	return nil
}

func (d *recordingDevice) framePasses() []string {
	var out []string
	for _, p := range d.passes {
		if p != pipeline.PassBake {
			out = append(out, p)
		}
	}
	return out
}

// scriptedHost feeds one batch of events per poll and counts swaps.
type scriptedHost struct {
	batches [][]input.Event
	polls   int
	swaps   int
}

func (h *scriptedHost) PollEvents(in *input.Input) {
	if h.polls < len(h.batches) {
		for _, e := range h.batches[h.polls] {
			in.Push(e)
		}
	}
	h.polls++
}

func (h *scriptedHost) SwapBuffers() { h.swaps++ }

// solidScreen returns an opaque buffer of the requested size.
type solidScreen struct{ reads int }

func (s *solidScreen) ReadScreen(width, height int) []byte {
	s.reads++
	px := make([]byte, width*height*4)
	for i := 3; i < len(px); i += 4 {
		px[i] = 255
	}
	return px
}

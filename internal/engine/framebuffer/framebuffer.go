// Package framebuffer provides OpenGL framebuffers for offscreen rendering.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// MaxAttachments caps color attachments; GL 4.1 guarantees at least 8.
const MaxAttachments = 8

// Spec describes a framebuffer.
type Spec struct {
	Width       int32
	Height      int32
	Attachments int // color attachments, clamped to [1, MaxAttachments]
	Depth       bool
}

// Framebuffer is an offscreen render target with RGBA8 color textures and an
// optional 24-bit depth renderbuffer.
type Framebuffer struct {
	fbo      uint32
	colors   []uint32
	depthRBO uint32
	width    int32
	height   int32
}

// New creates a framebuffer. Sizes below one pixel count as one.
func New(spec Spec) (*Framebuffer, error) {
	if spec.Attachments < 1 {
		spec.Attachments = 1
	}
	if spec.Attachments > MaxAttachments {
		spec.Attachments = MaxAttachments
	}

	fb := &Framebuffer{
		colors: make([]uint32, spec.Attachments),
		width:  max(spec.Width, 1),
		height: max(spec.Height, 1),
	}
	if err := fb.create(spec.Depth); err != nil {
		return nil, fmt.Errorf("creating framebuffer: %w", err)
	}
	return fb, nil
}

func (fb *Framebuffer) create(depth bool) error {
	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.GenTextures(int32(len(fb.colors)), &fb.colors[0])
	drawBuffers := make([]uint32, len(fb.colors))
	for i, tex := range fb.colors {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex, 0)
		drawBuffers[i] = attachment
	}
	gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if depth {
		gl.GenRenderbuffers(1, &fb.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depthRBO)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return nil
}

// Bind makes this framebuffer the current render target with a full viewport.
func (fb *Framebuffer) Bind() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)
}

// ColorTexture returns the texture of color attachment i, or 0 when out of
// range.
func (fb *Framebuffer) ColorTexture(i int) uint32 {
	if i < 0 || i >= len(fb.colors) {
		return 0
	}
	return fb.colors[i]
}

// Attachments returns the number of color attachments.
func (fb *Framebuffer) Attachments() int {
	return len(fb.colors)
}

// Size returns the framebuffer dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates storage when the size changes and re-checks
// completeness.
func (fb *Framebuffer) Resize(width, height int32) error {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return nil
	}
	fb.width = width
	fb.height = height

	for _, tex := range fb.colors {
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if fb.depthRBO != 0 {
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depthRBO)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete after resize to %dx%d: 0x%x", width, height, status)
	}
	return nil
}

// Destroy releases all OpenGL resources.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if len(fb.colors) > 0 && fb.colors[0] != 0 {
		gl.DeleteTextures(int32(len(fb.colors)), &fb.colors[0])
		for i := range fb.colors {
			fb.colors[i] = 0
		}
	}
	if fb.depthRBO != 0 {
		gl.DeleteRenderbuffers(1, &fb.depthRBO)
		fb.depthRBO = 0
	}
}

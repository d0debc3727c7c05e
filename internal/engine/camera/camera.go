// Package camera provides the fixed look-at camera the bead is viewed
// through.
package camera

import (
	gomath "math"

	"github.com/Faultbox/icebead/pkg/math"
)

// LookAtCamera looks from Eye toward Target with a perspective lens.
type LookAtCamera struct {
	Eye    math.Vec3
	Target math.Vec3
	Up     math.Vec3

	FovY   float32 // vertical field of view, radians
	Near   float32
	Far    float32
	Aspect float32 // width / height
}

// New creates the default bead camera: three units back on +Z, looking at
// the origin with a 60 degree lens.
func New(width, height int) *LookAtCamera {
	c := &LookAtCamera{
		Eye:  math.Vec3{Z: 3},
		Up:   math.Vec3{Y: 1},
		FovY: gomath.Pi / 3,
		Near: 0.1,
		Far:  6,
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the aspect ratio. Sizes below one pixel count as one.
func (c *LookAtCamera) SetViewport(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c.Aspect = float32(width) / float32(height)
}

// ViewMatrix returns the world-to-view transform.
func (c *LookAtCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Eye, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection.
func (c *LookAtCamera) ProjectionMatrix() math.Mat4 {
	return math.Perspective(c.FovY, c.Aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *LookAtCamera) ViewProjection() math.Mat4 {
	return c.ProjectionMatrix().Mul(c.ViewMatrix())
}

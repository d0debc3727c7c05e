// Package arcball turns pointer drags into a continuously updated rotation.
//
// Pointer positions are projected onto a virtual unit hemisphere; outside
// its silhouette the surface continues as a hyperbolic sheet so the mapping
// has no seam. While the pointer is held the rotation follows the drag, and
// after release it keeps spinning about the last axis with decaying speed.
package arcball

import (
	gomath "math"

	"github.com/Faultbox/icebead/pkg/math"
)

const (
	// TargetFrameDuration is the frame time in milliseconds the tuning
	// constants were chosen for.
	TargetFrameDuration = 16

	// FollowDamping divides the pointer-to-follower gap each frame.
	FollowDamping = 10

	// AngleGain scales the measured drag angle.
	AngleGain = 3

	// SpinDecay is the per-frame velocity multiplier after release.
	SpinDecay = 0.97

	// SpinFloor is the velocity at or below which free spin stops decaying.
	SpinFloor = 0.002

	// MaxAngularVelocity bounds the per-frame rotation angle in radians.
	MaxAngularVelocity = 0.5

	// degenerateAxis is the cross-product length under which two projected
	// points are treated as the same point.
	degenerateAxis = 1e-6
)

// State is the rotation the controller produces.
type State struct {
	Rotation math.Quat
	Axis     math.Vec3
	Velocity float32
}

// Controller converts pointer samples into a unit rotation quaternion.
type Controller struct {
	width, height float32

	// Latest pointer sample, written by input events.
	pointerDown bool
	pointerPos  math.Vec2

	// Smoothed pointer and its value on the previous frame.
	followPos     math.Vec2
	prevFollowPos math.Vec2

	state     State
	increment math.Quat
}

// New creates a controller for a viewport of the given size, spinning
// slowly about +Y.
func New(width, height int) *Controller {
	c := &Controller{
		state: State{
			Rotation: math.QuatIdentity(),
			Axis:     math.Vec3{Y: 1},
			Velocity: SpinFloor,
		},
		increment: math.QuatIdentity(),
	}
	c.SetViewport(width, height)
	return c
}

// SetViewport updates the size used to normalize pointer coordinates.
func (c *Controller) SetViewport(width, height int) {
	c.width = float32(max(width, 1))
	c.height = float32(max(height, 1))
}

// PointerDown starts a drag at (x, y) and cancels any free spin.
func (c *Controller) PointerDown(x, y float32) {
	p := math.Vec2{X: x, Y: y}
	c.pointerPos = p
	c.followPos = p
	c.prevFollowPos = p
	c.pointerDown = true
}

// PointerMove records the pointer position while a drag is active.
func (c *Controller) PointerMove(x, y float32) {
	if c.pointerDown {
		c.pointerPos = math.Vec2{X: x, Y: y}
	}
}

// PointerUp ends the drag.
func (c *Controller) PointerUp() {
	c.pointerDown = false
}

// PointerLeave ends the drag when the pointer exits the viewport.
func (c *Controller) PointerLeave() {
	c.pointerDown = false
}

// IsPointerDown reports whether a drag is active.
func (c *Controller) IsPointerDown() bool {
	return c.pointerDown
}

// Rotation returns the current unit rotation.
func (c *Controller) Rotation() math.Quat {
	return c.state.Rotation
}

// State returns a copy of the rotation state.
func (c *Controller) State() State {
	return c.state
}

// Increment returns the rotation applied by the last Update.
func (c *Controller) Increment() math.Quat {
	return c.increment
}

// Update advances the rotation by one frame of deltaTime milliseconds.
func (c *Controller) Update(deltaTime float32) {
	if !(deltaTime > 0) || gomath.IsInf(float64(deltaTime), 0) {
		deltaTime = 0
	}
	// Longer steps would push the follower past the pointer.
	deltaTime = min(deltaTime, TargetFrameDuration)
	timeScale := TargetFrameDuration / (deltaTime + 0.01)

	damping := FollowDamping * timeScale
	c.followPos = c.followPos.Lerp(c.pointerPos, 1/damping)

	var inc math.Quat
	if c.pointerDown {
		p := c.project(c.followPos)
		q := c.project(c.prevFollowPos)
		axis, angle, ok := rotationBetween(p, q)
		if ok {
			velocity := math.Clamp(angle*timeScale*AngleGain, 0, MaxAngularVelocity)
			c.state.Axis = axis
			c.state.Velocity = velocity
			inc = math.QuatFromAxisAngle(axis, velocity)
		} else {
			c.state.Velocity = 0
			inc = math.QuatIdentity()
		}
	} else {
		if c.state.Velocity > SpinFloor {
			c.state.Velocity *= SpinDecay
		}
		c.state.Velocity = math.Clamp(c.state.Velocity, 0, MaxAngularVelocity)
		inc = math.QuatFromAxisAngle(c.state.Axis, c.state.Velocity)
	}

	// Renormalized every frame; float drift compounds otherwise.
	c.increment = inc
	c.state.Rotation = inc.Mul(c.state.Rotation).Normalize()
	c.prevFollowPos = c.followPos
}

// project maps a pointer position to canonical [-1, 1] coordinates using the
// larger viewport dimension and lifts it onto the arcball surface, or onto a
// hyperbolic sheet outside the ball.
// See https://www.xarg.org/2021/07/trackball-rotation-using-quaternions/.
func (c *Controller) project(pos math.Vec2) math.Vec3 {
	const rSq = 1 // unit arcball radius, squared

	s := max(c.width, c.height) - 1
	if s <= 0 {
		s = 1
	}
	x := (2*pos.X - c.width - 1) / s
	y := (2*pos.Y - c.height - 1) / s

	xySq := x*x + y*y
	var z float32
	if xySq <= rSq/2.0 {
		z = float32(gomath.Sqrt(float64(rSq - xySq)))
	} else {
		z = (rSq / 2.0) / float32(gomath.Sqrt(float64(xySq)))
	}
	return math.Vec3{X: -x, Y: y, Z: z}
}

// rotationBetween returns the unit axis and angle turning q into p. ok is
// false when the points are too close for the axis to be defined.
func rotationBetween(p, q math.Vec3) (axis math.Vec3, angle float32, ok bool) {
	cross := p.Cross(q)
	if cross.Length() < degenerateAxis || !cross.IsFinite() {
		return math.Vec3{}, 0, false
	}
	np := p.Normalize()
	nq := q.Normalize()
	d := math.Clamp(np.Dot(nq), -1, 1)
	return cross.Normalize(), float32(gomath.Acos(float64(d))), true
}

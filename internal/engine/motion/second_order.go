// Package motion provides procedural motion primitives: a second-order
// system for springy target following, and the easing curves the render
// passes apply to animation progress.
package motion

import "math"

// SecondOrder follows a moving target with configurable frequency, damping
// and initial response. See https://www.youtube.com/watch?v=KPoeNZZ6H4s.
//
//   - f: natural frequency in Hz (f > 0), how fast the system reacts.
//   - z: damping. 0 oscillates forever, 0 < z < 1 vibrates, z >= 1 settles
//     without overshoot.
//   - r: response. 0 eases in, 0 < r < 1 reacts immediately, r > 1
//     overshoots, r < 0 winds up before moving.
type SecondOrder struct {
	y  float64 // current value
	yd float64 // current velocity
	xp float64 // previous target

	k1, k2, k3 float64
}

// NewSecondOrder creates a system resting at x0.
func NewSecondOrder(f, z, r, x0 float64) *SecondOrder {
	if f <= 0 {
		f = 1
	}
	w := 2 * math.Pi * f
	return &SecondOrder{
		y:  x0,
		xp: x0,
		k1: z / (math.Pi * f),
		k2: 1 / (w * w),
		k3: r * z / w,
	}
}

// Update advances the system by dt seconds toward target x, estimating the
// target velocity from the previous target.
func (s *SecondOrder) Update(dt, x float64) float64 {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return s.y
	}
	xd := (x - s.xp) / dt
	s.xp = x
	return s.integrate(dt, x, xd)
}

// UpdateWithVelocity advances the system with a known target velocity.
func (s *SecondOrder) UpdateWithVelocity(dt, x, xd float64) float64 {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return s.y
	}
	s.xp = x
	return s.integrate(dt, x, xd)
}

func (s *SecondOrder) integrate(dt, x, xd float64) float64 {
	s.y += s.yd * dt

	// k2 is clamped so large steps cannot make the integration explode.
	k2 := math.Max(s.k2, 1.1*(dt*dt/4+dt*s.k1/2))
	ydd := (x + s.k3*xd - s.y - s.k1*s.yd) / k2
	s.yd += ydd * dt
	return s.y
}

// Value returns the current value.
func (s *SecondOrder) Value() float64 {
	return s.y
}

// Velocity returns the current velocity.
func (s *SecondOrder) Velocity() float64 {
	return s.yd
}

// Reset puts the system at rest on x.
func (s *SecondOrder) Reset(x float64) {
	s.y = x
	s.xp = x
	s.yd = 0
}

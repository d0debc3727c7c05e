package animation

import "github.com/Faultbox/icebead/internal/engine/motion"

// Snapshot is an immutable view of the animation for one frame, with the
// eased curves the render passes consume.
type Snapshot struct {
	Phase         Phase
	Progress      float32
	Direction     float32
	Scale         float32 // s + sa
	Wobble        float32
	Cracked       bool
	ParticleStart bool
	ParticleTime  float32

	// ParticleEase is the eased burst displacement, EaseOutExpo(1-particleTime).
	ParticleEase float32

	// Three curves over progress so the shell effects move at different
	// speeds: Dissolve eats the surface late, Dim darkens it through the
	// second half, Recover brings the fragments' glow back after a burst.
	Dissolve float32
	Dim      float32
	Recover  float32
}

// Snapshot returns the current frame's animation view.
func (m *Machine) Snapshot() Snapshot {
	s := m.state
	p := s.Progress
	return Snapshot{
		Phase:         m.phase,
		Progress:      float32(p),
		Direction:     float32(s.Direction),
		Scale:         float32(s.Scale + s.ScaleBoost),
		Wobble:        float32(s.Wobble),
		Cracked:       s.Cracked,
		ParticleStart: s.ParticleStart,
		ParticleTime:  float32(s.ParticleTime),
		ParticleEase:  float32(motion.EaseOutExpo(1 - s.ParticleTime)),
		Dissolve:      float32(motion.EaseInExpo(p)),
		Dim:           float32(motion.EaseInOutCubic(motion.Clamp01(motion.MapRange(p, 0.5, 1, 0, 1)))),
		Recover:       float32(motion.EaseOutQuint(motion.Clamp01(motion.MapRange(p, ResetThreshold, 1, 0, 1)))),
	}
}

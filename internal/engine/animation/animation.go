// Package animation drives the crack-and-burst timeline of the bead from a
// single pointer-held signal.
//
// Holding the pointer pulls progress down slowly and squeezes the bead;
// releasing lets progress climb faster toward the crack and burst events.
// Crack and burst each fire once per excursion: they re-arm only after
// progress falls back below ResetThreshold while decreasing.
package animation

import (
	gomath "math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/icebead/internal/engine/motion"
	"github.com/Faultbox/icebead/internal/logger"
)

// Progress thresholds. ResetThreshold sits below BurstThreshold so progress
// hovering around the burst point cannot refire it.
const (
	CrackThreshold = 0.77
	ResetThreshold = 0.85
	BurstThreshold = 0.90
)

const (
	// ProgressRate converts milliseconds into progress units.
	ProgressRate = 0.00025

	// HoldRate and ReleaseRate are the signed progress speeds while the
	// pointer is held and released.
	HoldRate    = -1.0
	ReleaseRate = 2.5

	// JitterLow and JitterHigh bound the progress band in which the bead
	// trembles on its way to cracking.
	JitterLow  = 0.7
	JitterHigh = 0.9

	// ScaleJitter is the amplitude of the trembling scale boost.
	ScaleJitter = 0.015

	// ParticleDecay is the particle timeline decrease per millisecond.
	ParticleDecay = 0.0004

	// MaxDeltaTime caps a single step in milliseconds, so a resume after a
	// long suspend behaves like one slow frame.
	MaxDeltaTime = 100

	minScale = 0.25
	maxScale = 2.0
)

// CueCrack is the audio cue played when the bead cracks.
const CueCrack = "crack"

// CuePlayer plays fire-and-forget audio cues.
type CuePlayer interface {
	PlayOnce(cueID string)
}

// Phase is the state of the crack timeline.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCracking
	PhaseBursting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCracking:
		return "cracking"
	case PhaseBursting:
		return "bursting"
	default:
		return "unknown"
	}
}

// State holds the animation scalars.
type State struct {
	Progress      float64 // p in [0, 1]
	PrevProgress  float64 // p on the previous step
	Direction     int     // +1 rising, -1 falling
	Scale         float64 // s
	ScaleMomentum float64 // sm
	ScaleBoost    float64 // sa, trembling before the crack
	Wobble        float64 // 1 - p
	Cracked       bool
	ParticleTime  float64 // 1 at burst, decays to 0
	ParticleStart bool
}

// Options configures a Machine.
type Options struct {
	// Integrator selects how the scale follows its target.
	Integrator ScaleIntegrator

	// Cues receives the crack cue. Nil disables audio.
	Cues CuePlayer

	// Seed seeds the trembling jitter. Zero seeds from the clock.
	Seed int64
}

// Machine advances the animation state once per frame.
type Machine struct {
	state State
	phase Phase

	scale scaleDriver
	cues  CuePlayer
	rng   *rand.Rand
}

// New creates a machine at rest: progress 0, unit scale, rising.
func New(opts Options) *Machine {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Machine{
		state: State{
			Direction: 1,
			Scale:     1,
			Wobble:    1,
		},
		phase: PhaseIdle,
		scale: newScaleDriver(opts.Integrator),
		cues:  opts.Cues,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Update advances the timeline by deltaTime milliseconds.
func (m *Machine) Update(deltaTime float32, pointerDown bool) {
	dt := clampDelta(float64(deltaTime))

	rate := ReleaseRate
	if pointerDown {
		rate = HoldRate
	}

	if m.state.ParticleTime > 0 {
		m.state.ParticleTime = motion.Clamp01(m.state.ParticleTime - dt*ParticleDecay)
	}

	m.applyProgress(m.state.Progress + rate*dt*ProgressRate)
	m.scale.step(&m.state, dt, pointerDown)
	m.state.Scale = clamp(m.state.Scale, minScale, maxScale)
}

// applyProgress moves p to next and runs the guarded transitions.
func (m *Machine) applyProgress(next float64) {
	s := &m.state
	if gomath.IsNaN(next) {
		next = s.Progress
	}
	next = motion.Clamp01(next)

	s.PrevProgress = s.Progress
	s.Progress = next
	switch {
	case next > s.PrevProgress:
		s.Direction = 1
	case next < s.PrevProgress:
		s.Direction = -1
	}
	s.Wobble = 1 - next

	m.transition()

	if s.Direction == 1 && next > JitterLow && next < JitterHigh {
		s.ScaleBoost = (m.rng.Float64()*2 - 1) * ScaleJitter
	} else {
		s.ScaleBoost = 0
	}
}

func (m *Machine) transition() {
	s := &m.state

	if s.Direction == -1 && s.Progress < ResetThreshold {
		if s.Cracked || s.ParticleStart {
			m.enter(PhaseIdle)
		}
		return
	}
	if s.Direction != 1 {
		return
	}

	if !s.Cracked && s.Progress >= CrackThreshold {
		m.enter(PhaseCracking)
	}
	// A new burst waits for the previous particle swarm to finish.
	if s.Cracked && !s.ParticleStart && s.Progress >= BurstThreshold && s.ParticleTime <= 0 {
		m.enter(PhaseBursting)
	}
}

func (m *Machine) enter(next Phase) {
	s := &m.state
	switch next {
	case PhaseIdle:
		s.Cracked = false
		s.ParticleStart = false
	case PhaseCracking:
		s.Cracked = true
		if m.cues != nil {
			m.cues.PlayOnce(CueCrack)
		}
	case PhaseBursting:
		s.ParticleStart = true
		s.ParticleTime = 1
	}

	logger.Debug("animation phase",
		zap.Stringer("from", m.phase),
		zap.Stringer("to", next),
		zap.Float64("progress", s.Progress),
	)
	m.phase = next
}

// State returns a copy of the animation scalars.
func (m *Machine) State() State {
	return m.state
}

// Phase returns the current timeline phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

func clampDelta(dt float64) float64 {
	if !(dt > 0) {
		return 0
	}
	if dt > MaxDeltaTime {
		return MaxDeltaTime
	}
	return dt
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

package animation

import "github.com/Faultbox/icebead/internal/engine/motion"

// ScaleIntegrator selects how the bead scale chases its target.
type ScaleIntegrator int

const (
	// ScaleMomentum is the hand-tuned momentum integrator.
	ScaleMomentum ScaleIntegrator = iota

	// ScaleSecondOrder drives the scale with a motion.SecondOrder system.
	ScaleSecondOrder
)

func (i ScaleIntegrator) String() string {
	if i == ScaleSecondOrder {
		return "second_order"
	}
	return "momentum"
}

// ParseScaleIntegrator maps a config name to an integrator, defaulting to
// ScaleMomentum.
func ParseScaleIntegrator(name string) ScaleIntegrator {
	if name == "second_order" {
		return ScaleSecondOrder
	}
	return ScaleMomentum
}

// springRegime is one set of scale constants: the target scale, the
// stiffness divisor d1 and the per-frame momentum retention d2.
type springRegime struct {
	target float64
	d1, d2 float64
}

var (
	// Held: soft, compresses.
	heldRegime = springRegime{target: 0.82, d1: 32, d2: 0.86}
	// Released: firm, rebounds past 1 before settling.
	releasedRegime = springRegime{target: 1.0, d1: 9, d2: 0.78}
)

// Second-order constants for the alternative integrator.
const (
	secondOrderFrequency = 2.2
	secondOrderDamping   = 0.35
	secondOrderResponse  = 1.5
)

type scaleDriver interface {
	step(s *State, dt float64, held bool)
}

func newScaleDriver(kind ScaleIntegrator) scaleDriver {
	if kind == ScaleSecondOrder {
		return &secondOrderScale{
			sys: motion.NewSecondOrder(secondOrderFrequency, secondOrderDamping, secondOrderResponse, 1),
		}
	}
	return momentumScale{}
}

type momentumScale struct{}

func (momentumScale) step(s *State, dt float64, held bool) {
	if dt <= 0 {
		return
	}
	r := releasedRegime
	if held {
		r = heldRegime
	}
	s.ScaleMomentum += -((s.Scale - r.target) / r.d1)
	s.ScaleMomentum *= r.d2
	s.Scale += s.ScaleMomentum
}

type secondOrderScale struct {
	sys *motion.SecondOrder
}

func (d *secondOrderScale) step(s *State, dt float64, held bool) {
	target := releasedRegime.target
	if held {
		target = heldRegime.target
	}
	prev := d.sys.Value()
	s.Scale = d.sys.Update(dt/1000, target)
	s.ScaleMomentum = s.Scale - prev
}

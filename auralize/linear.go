package auralize

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-speaker/driver"
)

// Linear is the time-invariant sibling of [Solver]. It derives the excursion
// filter coefficients exactly once from a fixed parameter set and runs the
// same recursion without per-sample parameter feedback.
//
// For a parameter function that ignores excursion and velocity, [Solver]
// produces the same output as Linear for the same input.
type Linear struct {
	sampleRate float64
	params     driver.Parameters
	cfg        config

	coeffs       Coefficients
	bilinear     float64
	damping      float64
	pressureGain float64
}

// NewLinear constructs a linear, time-invariant solver for a fixed driver
// parameter set. Degenerate parameter sets (zero force factor or vanishing
// b0) are rejected here, since the coefficients never change afterwards.
func NewLinear(sampleRate float64, params driver.Parameters, opts ...Option) (*Linear, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	k, err := BilinearConstant(sampleRate, cfg.warpFrequency)
	if err != nil {
		return nil, err
	}

	q := 1.0 - cfg.regularization

	if params.ForceFactor == 0 {
		return nil, fmt.Errorf("auralize: degenerate driver model: force factor = 0")
	}

	coeffs := Derive(params, k, q)
	if coeffs.B[0] == 0 || !coeffs.finite() {
		return nil, fmt.Errorf("auralize: degenerate driver model: b0 = %g", coeffs.B[0])
	}

	return &Linear{
		sampleRate:   sampleRate,
		params:       params,
		cfg:          cfg,
		coeffs:       coeffs,
		bilinear:     k,
		damping:      q,
		pressureGain: cfg.mediumDensity / (4.0 * math.Pi * cfg.listenerDistance),
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (l *Linear) SampleRate() float64 { return l.sampleRate }

// Coefficients returns the fixed direct-form filter coefficients.
func (l *Linear) Coefficients() Coefficients { return l.coeffs }

// Process solves one block of voltage samples with the fixed coefficient
// set. The block and snapshot contract is identical to [Solver.Process].
func (l *Linear) Process(voltage [][]float64, prev *Snapshot) (*Result, error) {
	return solveBlock(voltage, prev, l.cfg.workers, l.solveChannel)
}

func (l *Linear) solveChannel(ch int, voltage []float64, t *tail, out channelOut) error {
	k := l.bilinear
	q := l.damping
	c := l.coeffs

	v1, v2, v3 := t.voltage[2], t.voltage[1], t.voltage[0]
	x1, x2, x3 := t.excursion[2], t.excursion[1], t.excursion[0]
	vel1 := t.velocity[2]
	acc1 := t.acceleration[2]

	for i, v0 := range voltage {
		x0 := (c.A[0]*v0 + c.A[1]*v1 + c.A[2]*v2 + c.A[3]*v3 -
			c.B[1]*x1 - c.B[2]*x2 - c.B[3]*x3) / c.B[0]
		vel0 := k*(x0-x1) - q*vel1
		acc0 := k*(vel0-vel1) - q*acc1
		cur0 := (l.params.Stiffness*x0 + l.params.Damping*vel0 + l.params.Mass*acc0) / l.params.ForceFactor
		spl0 := acc0 * l.params.Area * l.pressureGain

		if name, value, ok := firstNonFinite(x0, vel0, acc0, cur0, spl0); !ok {
			return &DegeneracyError{Channel: ch, Sample: i, Quantity: name, Value: value}
		}

		out.excursion[i] = x0
		out.velocity[i] = vel0
		out.acceleration[i] = acc0
		out.current[i] = cur0
		out.soundPressure[i] = spl0

		v3, v2, v1 = v2, v1, v0
		x3, x2, x1 = x2, x1, x0
		vel1 = vel0
		acc1 = acc0
	}

	finishTail(t, voltage, out)

	return nil
}

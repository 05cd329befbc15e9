package auralize

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-speaker/driver"
)

// Solver is the nonlinear recursive block solver.
//
// At every sample it re-evaluates the driver's physical parameters with the
// previous sample's excursion and velocity, re-derives the direct-form
// coefficients of the discrete excursion filter, advances the recursion one
// sample, and derives velocity, acceleration, coil current and sound
// pressure from the solved excursion.
type Solver struct {
	sampleRate float64
	params     driver.ParameterFunc
	cfg        config

	bilinear     float64 // K
	damping      float64 // q = 1 - regularization
	pressureGain float64 // mediumDensity / (4*pi*listenerDistance)
}

// New constructs a nonlinear solver for the given sample rate in Hz and
// parameter function.
func New(sampleRate float64, params driver.ParameterFunc, opts ...Option) (*Solver, error) {
	if params == nil {
		return nil, ErrNilParameterFunc
	}

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

	return &Solver{
		sampleRate:   sampleRate,
		params:       params,
		cfg:          cfg,
		bilinear:     k,
		damping:      1.0 - cfg.regularization,
		pressureGain: cfg.mediumDensity / (4.0 * math.Pi * cfg.listenerDistance),
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Solver) SampleRate() float64 { return s.sampleRate }

// ListenerDistance returns the sound pressure evaluation distance in meters.
func (s *Solver) ListenerDistance() float64 { return s.cfg.listenerDistance }

// MediumDensity returns the radiation medium density in kg/m³.
func (s *Solver) MediumDensity() float64 { return s.cfg.mediumDensity }

// Regularization returns the pole damping regularization.
func (s *Solver) Regularization() float64 { return s.cfg.regularization }

// WarpFrequency returns the prewarp frequency in Hz, zero when disabled.
func (s *Solver) WarpFrequency() float64 { return s.cfg.warpFrequency }

// Process solves one block of voltage samples, one row per channel. All
// rows must have the same length.
//
// prev optionally continues from the snapshot of the previous block; nil
// means cold start. A snapshot whose channel count does not match the block
// is not an error: the solver falls back to a cold start and reports it via
// Result.Resumed, since losing three samples of history is preferable to
// aborting a long offline run.
//
// A block either completes fully or fails atomically: on error no partial
// outputs are returned.
func (s *Solver) Process(voltage [][]float64, prev *Snapshot) (*Result, error) {
	return solveBlock(voltage, prev, s.cfg.workers, s.solveChannel)
}

//nolint:funlen
func (s *Solver) solveChannel(ch int, voltage []float64, t *tail, out channelOut) error {
	k := s.bilinear
	q := s.damping

	// Trailing history, most recent first.
	v1, v2, v3 := t.voltage[2], t.voltage[1], t.voltage[0]
	x1, x2, x3 := t.excursion[2], t.excursion[1], t.excursion[0]
	vel1 := t.velocity[2]
	acc1 := t.acceleration[2]

	for i, v0 := range voltage {
		p, err := s.params(s.cfg.frequency, x1, vel1, s.cfg.temperature)
		if err != nil {
			return fmt.Errorf("auralize: channel %d, sample %d: parameter function: %w", ch, i, err)
		}

		if p.ForceFactor == 0 {
			return &DegeneracyError{Channel: ch, Sample: i, Quantity: "force factor", Value: 0}
		}

		c := Derive(p, k, q)
		if c.B[0] == 0 || !c.finite() {
			return &DegeneracyError{Channel: ch, Sample: i, Quantity: "filter coefficient b0", Value: c.B[0]}
		}

		x0 := (c.A[0]*v0 + c.A[1]*v1 + c.A[2]*v2 + c.A[3]*v3 -
			c.B[1]*x1 - c.B[2]*x2 - c.B[3]*x3) / c.B[0]
		vel0 := k*(x0-x1) - q*vel1
		acc0 := k*(vel0-vel1) - q*acc1
		cur0 := (p.Stiffness*x0 + p.Damping*vel0 + p.Mass*acc0) / p.ForceFactor
		spl0 := acc0 * p.Area * s.pressureGain

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

var quantityNames = [5]string{"excursion", "velocity", "acceleration", "current", "sound pressure"}

func firstNonFinite(values ...float64) (string, float64, bool) {
	for i, v := range values {
		if !isFinite(v) {
			return quantityNames[i], v, false
		}
	}

	return "", 0, true
}

func finishTail(t *tail, voltage []float64, out channelOut) {
	t.voltage = advanceTail(t.voltage, voltage)
	t.excursion = advanceTail(t.excursion, out.excursion)
	t.velocity = advanceTail(t.velocity, out.velocity)
	t.acceleration = advanceTail(t.acceleration, out.acceleration)
	t.current = advanceTail(t.current, out.current)
	t.pressure = advanceTail(t.pressure, out.soundPressure)
}

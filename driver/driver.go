// Package driver models the lumped physical parameters of an
// electro-dynamic loudspeaker driver (Thiele-Small parameters).
//
// A driver is described either by a fixed [Parameters] value or, for
// large-signal behavior, by a [ParameterFunc] that re-evaluates the
// parameters for the instantaneous diaphragm excursion and velocity.
package driver

// Reference operating state used when a parameter value does not depend on
// the corresponding quantity.
const (
	// DefaultFrequency is the reference evaluation frequency in Hz.
	DefaultFrequency = 1000.0
	// DefaultTemperature is the reference voice coil temperature in °C.
	DefaultTemperature = 20.0
)

// Parameters holds the lumped physical coefficients of a loudspeaker driver.
//
// The values are the ones that substitute directly into the voltage and
// force-balance equations of the electro-mechanical model. Parameter sets
// published by manufacturers often use equivalent representations (compliance,
// Q factors, equivalent volume); see the derived getters for conversions.
type Parameters struct {
	Resistance  float64 // voice coil resistance in Ohm
	Inductance  float64 // voice coil inductance in Henry
	ForceFactor float64 // force factor (Bl product) in Tesla*meter
	Stiffness   float64 // suspension stiffness in Newton/meter
	Damping     float64 // mechanical damping in Newton*second/meter
	Mass        float64 // moving mass incl. coil and acoustic load in kilogram
	Area        float64 // effective diaphragm area in square meter
}

// Default returns the reference driver used throughout the examples and
// tests: a generic midwoofer with a resonance near 112 Hz.
func Default() Parameters {
	return Parameters{
		Resistance:  6.5,
		Inductance:  0.7e-3,
		ForceFactor: 10.0,
		Stiffness:   5000.0,
		Damping:     2.0,
		Mass:        0.01,
		Area:        0.0233,
	}
}

// ParameterFunc yields the physical coefficients of a driver for a given
// operating state.
//
// Implementations must be deterministic for fixed inputs and safe to call
// concurrently; the auralization kernel invokes the function once per sample
// per channel, potentially millions of times per block.
type ParameterFunc func(frequency, excursion, velocity, temperature float64) (Parameters, error)

// Constant adapts a fixed parameter set into a ParameterFunc that ignores
// the operating state. A driver described this way behaves as a linear,
// time-invariant system.
func Constant(p Parameters) ParameterFunc {
	return func(_, _, _, _ float64) (Parameters, error) {
		return p, nil
	}
}

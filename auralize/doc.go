// Package auralize synthesizes the physical response of a loudspeaker driver
// to an arbitrary input voltage signal.
//
// The simulated responses are the diaphragm excursion, velocity and
// acceleration, the voice coil current, and the far-field sound pressure at a
// configurable listener distance. The driver model is supplied as a
// [github.com/cwbudde/algo-speaker/driver.ParameterFunc]; when the returned
// parameters depend on the instantaneous excursion or velocity, the
// simulation becomes nonlinear and time-varying.
//
// The kernel discretizes the continuous 3rd-order voltage-to-excursion
// transfer function with the bilinear transform (optionally frequency
// prewarped) and re-derives the resulting direct-form IIR coefficients at
// every sample, feeding back the previous sample's excursion and velocity
// into the parameter evaluation. A [Snapshot] carries the trailing three
// samples of every quantity across block boundaries, so long signals can be
// processed in successive blocks without discontinuity.
//
// Two processors are provided:
//   - [Solver]: the nonlinear per-sample recursive solver.
//   - [Linear]: a time-invariant sibling that derives the filter
//     coefficients once from a fixed parameter set.
//
// The package is designed for offline processing. Channels are mutually
// independent and can be solved in parallel (see [WithParallel]); within a
// channel the recursion is strictly sequential.
package auralize

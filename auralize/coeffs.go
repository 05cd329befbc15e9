package auralize

import (
	"math"

	"github.com/cwbudde/algo-speaker/driver"
)

// Coefficients holds the direct-form coefficients of the discrete 3rd-order
// voltage-to-excursion filter. A are the numerator (voltage) taps and B the
// denominator (excursion) taps. B[0] is kept unnormalized so that degenerate
// driver models can be detected before the division.
type Coefficients struct {
	A [4]float64
	B [4]float64
}

// Derive computes the direct-form coefficients of the discrete excursion
// filter for one set of physical driver parameters.
//
// k is the bilinear transform constant (see [BilinearConstant]) and q the
// pole damping factor, 1 minus the regularization setting. The continuous
// transfer function M / (Lm·s³ + (Lw+Rm)·s² + (Lk+M²+Rw)·s + Rk) is
// discretized via the bilinear transform with q folded into the pole
// placement; q < 1 pulls the poles towards the origin, which keeps the
// recursion stable when the physical model places them close to the unit
// circle.
//
// The function is pure: no validation, no side effects. Callers are
// responsible for rejecting parameter sets that produce a zero or non-finite
// B[0].
func Derive(p driver.Parameters, k, q float64) Coefficients {
	lm := p.Inductance * p.Mass
	lwRm := p.Inductance*p.Damping + p.Resistance*p.Mass
	lkM2Rw := p.Inductance*p.Stiffness + p.ForceFactor*p.ForceFactor + p.Resistance*p.Damping
	rk := p.Resistance * p.Stiffness

	k2 := k * k
	k3 := k2 * k
	q2 := q * q
	q3 := q2 * q

	var c Coefficients

	c.A[0] = p.ForceFactor
	c.A[1] = 3.0 * p.ForceFactor * q
	c.A[2] = 3.0 * p.ForceFactor * q2
	c.A[3] = p.ForceFactor * q3

	c.B[0] = lm*k3 + lwRm*k2 + lkM2Rw*k + rk
	c.B[1] = -3.0*lm*k3 + lwRm*k2*(q-2.0) + lkM2Rw*k*(2.0*q-1.0) + 3.0*rk*q
	c.B[2] = 3.0*lm*k3 + lwRm*k2*(1.0-2.0*q) + lkM2Rw*k*q*(q-2.0) + 3.0*rk*q2
	c.B[3] = -lm*k3 + lwRm*k2*q - lkM2Rw*k*q2 + rk*q3

	return c
}

// BilinearConstant returns the bilinear transform constant K for the given
// sampling rate in Hz.
//
// With warpFrequency zero, K = 2·sampleRate. A nonzero warp frequency
// prewarps the transform so the discrete filter matches the analog model
// exactly at that frequency; it must lie below the Nyquist frequency.
func BilinearConstant(sampleRate, warpFrequency float64) (float64, error) {
	if !(sampleRate > 0) {
		return 0, ErrSampleRate
	}

	if warpFrequency < 0 || warpFrequency >= sampleRate/2 || math.IsNaN(warpFrequency) {
		return 0, ErrWarpFrequency
	}

	if warpFrequency == 0 {
		return 2.0 * sampleRate, nil
	}

	return 2.0 * math.Pi * warpFrequency / math.Tan(math.Pi*warpFrequency/sampleRate), nil
}

func (c Coefficients) finite() bool {
	for i := range c.A {
		if !isFinite(c.A[i]) || !isFinite(c.B[i]) {
			return false
		}
	}

	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

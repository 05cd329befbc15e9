package auralize

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/internal/testutil"
)

// referenceDerive recomputes the coefficient formulas term by term,
// independently of the production code.
func referenceDerive(p driver.Parameters, k, q float64) Coefficients {
	r, l, m := p.Resistance, p.Inductance, p.Mass
	bl := p.ForceFactor
	stiffness, w := p.Stiffness, p.Damping

	lm := l * m
	lwRm := l*w + r*m
	lkM2Rw := l*stiffness + bl*bl + r*w
	rk := r * stiffness

	return Coefficients{
		A: [4]float64{
			bl,
			bl * 3 * q,
			bl * 3 * q * q,
			bl * q * q * q,
		},
		B: [4]float64{
			lm*k*k*k + lwRm*k*k + lkM2Rw*k + rk,
			-lm*3*k*k*k + lwRm*k*k*(q-2) + lkM2Rw*k*(2*q-1) + rk*3*q,
			lm*3*k*k*k + lwRm*k*k*(1-2*q) + lkM2Rw*k*q*(q-2) + rk*3*q*q,
			-lm*k*k*k + lwRm*k*k*q - lkM2Rw*k*q*q + rk*q*q*q,
		},
	}
}

func TestDeriveMatchesReference(t *testing.T) {
	cases := []struct {
		name string
		p    driver.Parameters
		k, q float64
	}{
		{"default driver", driver.Default(), 96000, 1.0},
		{"default regularized", driver.Default(), 96000, 0.99},
		{"scenario driver", driver.Parameters{
			Resistance: 5, Inductance: 0.001, ForceFactor: 3,
			Stiffness: 2000, Damping: 1, Mass: 0.01, Area: 0.005,
		}, 96000, 0.99},
		{"prewarped", driver.Default(), 88000.5, 0.95},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Derive(tc.p, tc.k, tc.q)
			want := referenceDerive(tc.p, tc.k, tc.q)

			for i := range 4 {
				if !testutil.NearlyEqual(got.A[i], want.A[i], 1e-12) {
					t.Fatalf("A[%d] = %v, want %v", i, got.A[i], want.A[i])
				}

				if !testutil.NearlyEqual(got.B[i], want.B[i], 1e-12) {
					t.Fatalf("B[%d] = %v, want %v", i, got.B[i], want.B[i])
				}
			}
		})
	}
}

func TestDeriveUndampedReduction(t *testing.T) {
	// With q = 1 the numerator must reduce to the binomial pattern
	// M*{1,3,3,1} and the denominator DC sum to 8*R*k, the plain bilinear
	// transform of the continuous transfer function.
	p := driver.Default()
	c := Derive(p, 96000, 1.0)

	wantA := [4]float64{p.ForceFactor, 3 * p.ForceFactor, 3 * p.ForceFactor, p.ForceFactor}
	for i := range 4 {
		if c.A[i] != wantA[i] {
			t.Fatalf("A[%d] = %v, want %v", i, c.A[i], wantA[i])
		}
	}

	sum := c.B[0] + c.B[1] + c.B[2] + c.B[3]
	if want := 8 * p.Resistance * p.Stiffness; !testutil.NearlyEqual(sum, want, 1e-9) {
		t.Fatalf("sum(B) = %v, want %v", sum, want)
	}
}

func TestDeriveDCGainIndependentOfDamping(t *testing.T) {
	// The z=1 gain sum(A)/sum(B) must equal M/(R*k) for any q, since both
	// sums carry the same (1+q)^3 factor.
	p := driver.Default()

	for _, q := range []float64{1.0, 0.99, 0.9, 0.5} {
		c := Derive(p, 96000, q)

		gain := (c.A[0] + c.A[1] + c.A[2] + c.A[3]) / (c.B[0] + c.B[1] + c.B[2] + c.B[3])
		if want := p.ForceFactor / (p.Resistance * p.Stiffness); !testutil.NearlyEqual(gain, want, 1e-6) {
			t.Fatalf("q=%v: DC gain = %v, want %v", q, gain, want)
		}
	}
}

func TestBilinearConstant(t *testing.T) {
	k, err := BilinearConstant(48000, 0)
	if err != nil {
		t.Fatalf("BilinearConstant() error = %v", err)
	}

	if k != 96000 {
		t.Fatalf("K = %v, want 96000", k)
	}

	fw := 1000.0

	k, err = BilinearConstant(48000, fw)
	if err != nil {
		t.Fatalf("BilinearConstant() error = %v", err)
	}

	want := 2 * math.Pi * fw / math.Tan(math.Pi*fw/48000)
	if math.Abs(k-want) > 1e-9 {
		t.Fatalf("K = %v, want %v", k, want)
	}
}

func TestBilinearConstantLowWarpLimit(t *testing.T) {
	// For warp frequencies far below Nyquist the prewarped constant must
	// approach 2*fs.
	k, err := BilinearConstant(48000, 1e-3)
	if err != nil {
		t.Fatalf("BilinearConstant() error = %v", err)
	}

	if !testutil.NearlyEqual(k, 96000, 1e-9) {
		t.Fatalf("K = %v, want ~96000", k)
	}
}

func TestBilinearConstantValidation(t *testing.T) {
	if _, err := BilinearConstant(0, 0); !errors.Is(err, ErrSampleRate) {
		t.Fatalf("error = %v, want ErrSampleRate", err)
	}

	if _, err := BilinearConstant(-48000, 0); !errors.Is(err, ErrSampleRate) {
		t.Fatalf("error = %v, want ErrSampleRate", err)
	}

	if _, err := BilinearConstant(48000, -1); !errors.Is(err, ErrWarpFrequency) {
		t.Fatalf("error = %v, want ErrWarpFrequency", err)
	}

	if _, err := BilinearConstant(48000, 24000); !errors.Is(err, ErrWarpFrequency) {
		t.Fatalf("error = %v, want ErrWarpFrequency for Nyquist", err)
	}

	if _, err := BilinearConstant(48000, 30000); !errors.Is(err, ErrWarpFrequency) {
		t.Fatalf("error = %v, want ErrWarpFrequency above Nyquist", err)
	}
}

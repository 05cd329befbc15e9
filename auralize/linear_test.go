package auralize

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/internal/testutil"
)

func TestNewLinearValidation(t *testing.T) {
	if _, err := NewLinear(0, driver.Default()); err == nil {
		t.Fatal("expected error for zero sample rate")
	}

	p := driver.Default()
	p.ForceFactor = 0

	if _, err := NewLinear(48000, p); err == nil {
		t.Fatal("expected error for zero force factor")
	}

	p = driver.Default()
	p.Stiffness = math.NaN()

	if _, err := NewLinear(48000, p); err == nil {
		t.Fatal("expected error for non-finite parameters")
	}
}

func TestLinearCoefficients(t *testing.T) {
	p := driver.Default()

	l, err := NewLinear(48000, p, WithRegularization(0.01))
	if err != nil {
		t.Fatalf("NewLinear() error = %v", err)
	}

	if got, want := l.Coefficients(), Derive(p, 96000, 0.99); got != want {
		t.Fatalf("Coefficients() = %+v, want %+v", got, want)
	}
}

func TestLinearStepConvergence(t *testing.T) {
	// Driving a linear model with a long DC step must settle the excursion
	// at the static deflection M*V/(R*k).
	p := driver.Default()
	amplitude := 1.5

	l, err := NewLinear(48000, p)
	if err != nil {
		t.Fatalf("NewLinear() error = %v", err)
	}

	res, err := l.Process(testutil.Channels(testutil.Step(amplitude, 20000, 0)), nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	want := p.ForceFactor * amplitude / (p.Resistance * p.Stiffness)

	x := res.Excursion[0]
	if got := x[len(x)-1]; !testutil.NearlyEqual(got, want, 1e-3) {
		t.Fatalf("settled excursion = %v, want %v", got, want)
	}

	// Velocity, acceleration and pressure decay to zero; the coil current
	// settles at V/R.
	if got := res.Velocity[0][len(x)-1]; math.Abs(got) > 1e-6 {
		t.Fatalf("settled velocity = %v, want ~0", got)
	}

	if got, wantI := res.Current[0][len(x)-1], amplitude/p.Resistance; !testutil.NearlyEqual(got, wantI, 1e-3) {
		t.Fatalf("settled current = %v, want %v", got, wantI)
	}
}

func TestLinearBlockContinuation(t *testing.T) {
	p := driver.Default()
	voltage := testutil.Sine(150, 48000, 2.0, 300)

	l, err := NewLinear(48000, p, WithRegularization(0.005))
	if err != nil {
		t.Fatalf("NewLinear() error = %v", err)
	}

	full, err := l.Process(testutil.Channels(voltage), nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	head, tailPart := testutil.Split(voltage, 100)

	first, err := l.Process(testutil.Channels(head), nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	second, err := l.Process(testutil.Channels(tailPart), &first.Snapshot)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !second.Resumed {
		t.Fatal("continuation snapshot not consumed")
	}

	joined := append(append([]float64(nil), first.Excursion[0]...), second.Excursion[0]...)
	requireClose(t, joined, full.Excursion[0], 1e-12)

	joined = append(append([]float64(nil), first.SoundPressure[0]...), second.SoundPressure[0]...)
	requireClose(t, joined, full.SoundPressure[0], 1e-12)
}

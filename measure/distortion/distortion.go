// Package distortion quantifies the harmonic distortion of a simulated
// loudspeaker response. It measures how much of the signal energy the
// nonlinear driver model moved from the driving fundamental into its
// harmonics.
package distortion

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultRangeLowerHz = 20.0
	defaultRangeUpperHz = 20000.0

	// Width of the spectral capture around each harmonic bin. A Hann
	// window spreads a sinusoid over two bins to either side.
	captureBins = 2
)

// Config holds the analysis parameters.
type Config struct {
	SampleRate float64

	// FundamentalHz pins the fundamental to a known drive frequency.
	// Zero selects the strongest bin in the analysis range.
	FundamentalHz float64

	// MaxHarmonics limits how many harmonics above the fundamental are
	// accumulated. Zero means all harmonics below the range limit.
	MaxHarmonics int

	// FFTSize overrides the transform length. Zero rounds the signal
	// length up to the next power of two.
	FFTSize int

	// RangeLowerHz and RangeUpperHz bound the analysis band. Zero values
	// default to 20 Hz and 20 kHz.
	RangeLowerHz float64
	RangeUpperHz float64
}

// Result holds the harmonic analysis of one signal.
type Result struct {
	FundamentalHz    float64
	FundamentalLevel float64

	// THD is the ratio of the RMS sum of the harmonic levels to the
	// fundamental level. THDdB is the same ratio in decibels.
	THD   float64
	THDdB float64

	// Harmonics holds the per-harmonic level relative to the fundamental,
	// starting at the second harmonic.
	Harmonics []float64
}

// Analyze windows the signal with a Hann window, transforms it and
// accumulates the harmonic levels around multiples of the fundamental bin.
func Analyze(signal []float64, cfg Config) (Result, error) {
	if len(signal) == 0 {
		return Result{}, fmt.Errorf("distortion: empty signal")
	}

	if cfg.SampleRate <= 0 {
		return Result{}, fmt.Errorf("distortion: sample rate must be positive, got %g", cfg.SampleRate)
	}

	fftSize := cfg.FFTSize
	if fftSize <= 0 {
		fftSize = nextPowerOf2(len(signal))
	}

	if fftSize < len(signal) {
		return Result{}, fmt.Errorf("distortion: fft size %d shorter than signal length %d", fftSize, len(signal))
	}

	in := make([]complex128, fftSize)
	for i, v := range signal {
		in[i] = complex(v*hann(i, len(signal)), 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("distortion: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("distortion: fft: %w", err)
	}

	binCount := fftSize/2 + 1

	re := make([]float64, binCount)
	im := make([]float64, binCount)

	for i := range binCount {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, binCount)
	vecmath.Magnitude(mag, re, im)

	return analyzeMagnitude(mag, fftSize, cfg)
}

func analyzeMagnitude(mag []float64, fftSize int, cfg Config) (Result, error) {
	binHz := cfg.SampleRate / float64(fftSize)
	maxBin := len(mag) - 1

	lower := cfg.RangeLowerHz
	if lower <= 0 {
		lower = defaultRangeLowerHz
	}

	upper := cfg.RangeUpperHz
	if upper <= 0 {
		upper = defaultRangeUpperHz
	}

	lowerBin := clampInt(int(math.Round(lower/binHz)), 1, maxBin)
	upperBin := clampInt(int(math.Round(upper/binHz)), lowerBin, maxBin)

	fundamentalBin := findFundamentalBin(mag, lowerBin, upperBin, binHz, cfg.FundamentalHz)

	fundamentalLevel := binLevel(mag, fundamentalBin)
	if fundamentalLevel <= 0 {
		return Result{}, fmt.Errorf("distortion: no fundamental found near %g Hz", float64(fundamentalBin)*binHz)
	}

	var (
		harmonics []float64
		sumSq     float64
	)

	for k := 2; ; k++ {
		if cfg.MaxHarmonics > 0 && len(harmonics) >= cfg.MaxHarmonics {
			break
		}

		bin := k * fundamentalBin
		if bin > upperBin || bin > maxBin {
			break
		}

		level := binLevel(mag, bin)
		sumSq += level * level

		harmonics = append(harmonics, level/fundamentalLevel)
	}

	thd := math.Sqrt(sumSq) / fundamentalLevel

	return Result{
		FundamentalHz:    float64(fundamentalBin) * binHz,
		FundamentalLevel: fundamentalLevel,
		THD:              thd,
		THDdB:            ratioToDB(thd),
		Harmonics:        harmonics,
	}, nil
}

func findFundamentalBin(mag []float64, lowerBin, upperBin int, binHz, fundamentalHz float64) int {
	if fundamentalHz > 0 {
		return clampInt(int(math.Round(fundamentalHz/binHz)), lowerBin, upperBin)
	}

	bestBin := lowerBin
	bestVal := -1.0

	for i := lowerBin; i <= upperBin; i++ {
		if mag[i] > bestVal {
			bestVal = mag[i]
			bestBin = i
		}
	}

	return bestBin
}

// binLevel sums the magnitude in a small capture window around bin, so
// window leakage around a harmonic counts towards that harmonic.
func binLevel(mag []float64, bin int) float64 {
	lo := max(bin-captureBins, 0)
	hi := min(bin+captureBins, len(mag)-1)

	sum := 0.0
	for i := lo; i <= hi; i++ {
		sum += mag[i]
	}

	return sum
}

func hann(i, n int) float64 {
	if n <= 1 {
		return 1
	}

	return 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
}

func ratioToDB(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(v)
}

func clampInt(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}

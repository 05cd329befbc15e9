package testutil

import (
	"math"
	"math/rand"
)

// Sine generates a deterministic sine wave.
func Sine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}

	return out
}

// Noise generates white noise with a fixed seed for reproducibility.
func Noise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}

// Step generates a voltage step: zero before onset, amplitude from onset on.
func Step(amplitude float64, length, onset int) []float64 {
	out := make([]float64, length)

	for i := max(onset, 0); i < length; i++ {
		out[i] = amplitude
	}

	return out
}

// Channels wraps single-channel signals into a multi-channel block.
func Channels(rows ...[]float64) [][]float64 {
	out := make([][]float64, len(rows))
	copy(out, rows)

	return out
}

// Split cuts a single-channel signal into two blocks at index s.
func Split(data []float64, s int) ([]float64, []float64) {
	return data[:s], data[s:]
}

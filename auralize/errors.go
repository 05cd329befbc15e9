package auralize

import (
	"errors"
	"fmt"
)

// Errors reported before any sample is processed.
var (
	ErrSampleRate       = errors.New("auralize: sample rate must be positive")
	ErrWarpFrequency    = errors.New("auralize: warp frequency must be in [0, sampleRate/2)")
	ErrRaggedBlock      = errors.New("auralize: voltage channels must share the same length")
	ErrNilParameterFunc = errors.New("auralize: parameter function must not be nil")
)

// DegeneracyError reports a numerically degenerate driver model: a zero
// force factor, a vanishing b0 filter coefficient, or a non-finite value
// produced by the recursion. The block that triggered it is aborted without
// partial results.
type DegeneracyError struct {
	Channel  int
	Sample   int
	Quantity string
	Value    float64
}

func (e *DegeneracyError) Error() string {
	return fmt.Sprintf("auralize: degenerate driver model at channel %d, sample %d: %s = %g",
		e.Channel, e.Sample, e.Quantity, e.Value)
}

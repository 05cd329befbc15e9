package auralize

import (
	"fmt"

	"github.com/cwbudde/algo-speaker/driver"
)

const (
	defaultListenerDistance = 1.0
	defaultRegularization   = 0.0
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	warpFrequency    float64
	regularization   float64
	listenerDistance float64
	mediumDensity    float64
	frequency        float64
	temperature      float64
	workers          int
}

func defaultConfig() config {
	return config{
		warpFrequency:    0,
		regularization:   defaultRegularization,
		listenerDistance: defaultListenerDistance,
		mediumDensity:    driver.DefaultMediumDensity,
		frequency:        driver.DefaultFrequency,
		temperature:      driver.DefaultTemperature,
		workers:          1,
	}
}

// WithWarpFrequency enables bilinear-transform frequency prewarping so the
// discrete filter matches the analog model exactly at the given frequency in
// Hz. Zero (the default) disables prewarping. The value must lie in
// [0, sampleRate/2); the upper bound is checked against the sample rate at
// construction time.
func WithWarpFrequency(frequency float64) Option {
	return func(cfg *config) error {
		if frequency < 0 || !isFinite(frequency) {
			return fmt.Errorf("auralize: warp frequency must be >= 0 and finite: %f", frequency)
		}

		cfg.warpFrequency = frequency

		return nil
	}
}

// WithRegularization sets the pole damping regularization. Values in (0, 1)
// damp the discrete poles towards the origin; 0 (the default) reproduces the
// plain bilinear transform. Values outside (0, 1) are accepted but can make
// the recursion unstable.
func WithRegularization(regularization float64) Option {
	return func(cfg *config) error {
		if !isFinite(regularization) {
			return fmt.Errorf("auralize: regularization must be finite: %f", regularization)
		}

		cfg.regularization = regularization

		return nil
	}
}

// WithListenerDistance sets the distance in meters between the driver and
// the point where the radiated sound pressure is evaluated. Default 1 m.
func WithListenerDistance(distance float64) Option {
	return func(cfg *config) error {
		if !(distance > 0) || !isFinite(distance) {
			return fmt.Errorf("auralize: listener distance must be > 0 and finite: %f", distance)
		}

		cfg.listenerDistance = distance

		return nil
	}
}

// WithMediumDensity sets the density in kg/m³ of the medium the driver
// radiates into. Default is air at room temperature.
func WithMediumDensity(density float64) Option {
	return func(cfg *config) error {
		if !(density > 0) || !isFinite(density) {
			return fmt.Errorf("auralize: medium density must be > 0 and finite: %f", density)
		}

		cfg.mediumDensity = density

		return nil
	}
}

// WithReferenceFrequency sets the fixed frequency in Hz that is passed to
// the parameter function. Only the excursion and velocity arguments vary per
// sample.
func WithReferenceFrequency(frequency float64) Option {
	return func(cfg *config) error {
		if !isFinite(frequency) {
			return fmt.Errorf("auralize: reference frequency must be finite: %f", frequency)
		}

		cfg.frequency = frequency

		return nil
	}
}

// WithTemperature sets the fixed voice coil temperature in °C that is passed
// to the parameter function.
func WithTemperature(temperature float64) Option {
	return func(cfg *config) error {
		if !isFinite(temperature) {
			return fmt.Errorf("auralize: temperature must be finite: %f", temperature)
		}

		cfg.temperature = temperature

		return nil
	}
}

// WithParallel sets the number of worker goroutines used to solve channels
// concurrently. Channels share no mutable state, so any value >= 1 is safe;
// the parameter function must then be safe for concurrent calls. Default 1
// (sequential).
func WithParallel(workers int) Option {
	return func(cfg *config) error {
		if workers < 1 {
			return fmt.Errorf("auralize: worker count must be >= 1: %d", workers)
		}

		cfg.workers = workers

		return nil
	}
}

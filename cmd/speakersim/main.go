// Command speakersim simulates a loudspeaker driver's nonlinear response to
// a sine tone and prints excursion, current and sound pressure statistics
// together with the harmonic distortion of the radiated pressure.
//
// Usage:
//
//	speakersim [flags]
//
// Examples:
//
//	speakersim -freq 90 -amp 5
//	speakersim -freq 60 -amp 10 -knl 1e6 -wav out.wav
//	speakersim -linear -freq 1000 -duration 0.5
//	speakersim -driver
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-speaker/auralize"
	"github.com/cwbudde/algo-speaker/driver"
	"github.com/cwbudde/algo-speaker/measure/distortion"
)

func main() {
	rate := flag.Float64("rate", 48000, "sample rate in Hz")
	freq := flag.Float64("freq", 100, "drive frequency in Hz")
	amp := flag.Float64("amp", 2.83, "drive amplitude in volts")
	duration := flag.Float64("duration", 1.0, "simulated duration in seconds")
	blockSize := flag.Int("block", 4096, "processing block size in samples")
	distance := flag.Float64("distance", 1.0, "listener distance in meters")
	reg := flag.Float64("reg", 0.0, "pole damping regularization")
	warp := flag.Float64("warp", 0.0, "bilinear prewarp frequency in Hz (0 = off)")
	step := flag.Bool("step", false, "drive with a voltage step instead of a sine")
	linear := flag.Bool("linear", false, "use the time-invariant model")
	driverInfo := flag.Bool("driver", false, "print derived driver parameters and exit")
	wavPath := flag.String("wav", "", "write the sound pressure response to a WAV file")

	p := driver.Default()
	flag.Float64Var(&p.Resistance, "r", p.Resistance, "voice coil resistance in ohms")
	flag.Float64Var(&p.Inductance, "l", p.Inductance, "voice coil inductance in henry")
	flag.Float64Var(&p.ForceFactor, "bl", p.ForceFactor, "force factor in tesla meters")
	flag.Float64Var(&p.Stiffness, "k", p.Stiffness, "suspension stiffness in N/m")
	flag.Float64Var(&p.Damping, "w", p.Damping, "mechanical damping in N*s/m")
	flag.Float64Var(&p.Mass, "m", p.Mass, "moving mass in kg")
	flag.Float64Var(&p.Area, "s", p.Area, "diaphragm area in m^2")

	knl := flag.Float64("knl", 0, "stiffness hardening coefficient in 1/m^2")
	wnl := flag.Float64("wnl", 0, "velocity-dependent damping coefficient in s/m")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: speakersim [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Simulates a loudspeaker driver's response to a sine tone.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  speakersim -freq 90 -amp 5\n")
		fmt.Fprintf(os.Stderr, "  speakersim -freq 60 -amp 10 -knl 1e6 -wav out.wav\n")
		fmt.Fprintf(os.Stderr, "  speakersim -linear -freq 1000 -duration 0.5\n")
	}
	flag.Parse()

	if *driverInfo {
		printDriver(p)
		return
	}

	samples := int(*duration * *rate)
	if samples < 1 {
		fmt.Fprintf(os.Stderr, "error: duration too short for the sample rate\n")
		os.Exit(1)
	}

	pressure, err := simulate(p, simConfig{
		rate: *rate, freq: *freq, amp: *amp,
		samples: samples, blockSize: *blockSize,
		distance: *distance, reg: *reg, warp: *warp,
		step: *step, linear: *linear, knl: *knl, wnl: *wnl,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *wavPath != "" {
		if err := writeWAV(*wavPath, pressure.soundPressure, int(*rate)); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("wrote %s (%d samples)\n", *wavPath, len(pressure.soundPressure))
	}

	printSummary(pressure, *rate, *freq, !*step)
}

type simConfig struct {
	rate, freq, amp     float64
	samples, blockSize  int
	distance, reg, warp float64
	step, linear        bool
	knl, wnl            float64
}

type simOutput struct {
	excursion     []float64
	velocity      []float64
	current       []float64
	soundPressure []float64
}

// simulate runs the model block by block, carrying the continuation
// snapshot across block boundaries the way a streaming caller would.
func simulate(p driver.Parameters, cfg simConfig) (*simOutput, error) {
	opts := []auralize.Option{
		auralize.WithListenerDistance(cfg.distance),
		auralize.WithRegularization(cfg.reg),
	}
	if cfg.warp > 0 {
		opts = append(opts, auralize.WithWarpFrequency(cfg.warp))
	}

	var process func(block [][]float64, prev *auralize.Snapshot) (*auralize.Result, error)

	if cfg.linear {
		solver, err := auralize.NewLinear(cfg.rate, p, opts...)
		if err != nil {
			return nil, err
		}

		process = solver.Process
	} else {
		model := func(_, x, v, _ float64) (driver.Parameters, error) {
			out := p
			out.Stiffness *= 1 + cfg.knl*x*x
			out.Damping *= 1 + cfg.wnl*math.Abs(v)

			return out, nil
		}

		solver, err := auralize.New(cfg.rate, model, opts...)
		if err != nil {
			return nil, err
		}

		process = solver.Process
	}

	out := &simOutput{
		excursion:     make([]float64, 0, cfg.samples),
		velocity:      make([]float64, 0, cfg.samples),
		current:       make([]float64, 0, cfg.samples),
		soundPressure: make([]float64, 0, cfg.samples),
	}

	var snap *auralize.Snapshot

	for offset := 0; offset < cfg.samples; offset += cfg.blockSize {
		n := min(cfg.blockSize, cfg.samples-offset)

		block := make([]float64, n)
		for i := range block {
			if cfg.step {
				// Step onset one sample in, so the response starts
				// from silence.
				if offset+i >= 1 {
					block[i] = cfg.amp
				}

				continue
			}

			t := float64(offset+i) / cfg.rate
			block[i] = cfg.amp * math.Sin(2*math.Pi*cfg.freq*t)
		}

		res, err := process([][]float64{block}, snap)
		if err != nil {
			return nil, err
		}

		out.excursion = append(out.excursion, res.Excursion[0]...)
		out.velocity = append(out.velocity, res.Velocity[0]...)
		out.current = append(out.current, res.Current[0]...)
		out.soundPressure = append(out.soundPressure, res.SoundPressure[0]...)

		snap = &res.Snapshot
	}

	return out, nil
}

func printDriver(p driver.Parameters) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Parameter\tValue\tUnit\n")
	fmt.Fprintf(tw, "---------\t-----\t----\n")
	fmt.Fprintf(tw, "Resonance frequency\t%.2f\tHz\n", p.ResonanceFrequency())
	fmt.Fprintf(tw, "Electrical Q\t%.3f\t\n", p.ElectricalQ())
	fmt.Fprintf(tw, "Mechanical Q\t%.3f\t\n", p.MechanicalQ())
	fmt.Fprintf(tw, "Total Q\t%.3f\t\n", p.TotalQ())
	fmt.Fprintf(tw, "Compliance\t%.3e\tm/N\n", p.Compliance())
	fmt.Fprintf(tw, "Diaphragm radius\t%.4f\tm\n", p.DiaphragmRadius())
	fmt.Fprintf(tw, "Resonance impedance\t%.2f\tohm\n", p.ResonanceImpedance())
	fmt.Fprintf(tw, "EBP\t%.1f\tHz\n", p.EfficiencyBandwidthProduct())
	fmt.Fprintf(tw, "Equivalent volume\t%.1f\tl\n", 1000*p.EquivalentVolume(driver.DefaultMediumDensity, driver.DefaultSpeedOfSound))

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printSummary(out *simOutput, rate, freq float64, withTHD bool) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Quantity\tPeak\tRMS\tUnit\n")
	fmt.Fprintf(tw, "--------\t----\t---\t----\n")
	fmt.Fprintf(tw, "Excursion\t%.3f\t%.3f\tmm\n", 1000*peak(out.excursion), 1000*rms(out.excursion))
	fmt.Fprintf(tw, "Velocity\t%.3f\t%.3f\tm/s\n", peak(out.velocity), rms(out.velocity))
	fmt.Fprintf(tw, "Current\t%.3f\t%.3f\tA\n", peak(out.current), rms(out.current))
	fmt.Fprintf(tw, "Sound pressure\t%.3f\t%.3f\tPa\n", peak(out.soundPressure), rms(out.soundPressure))

	if withTHD {
		if res, err := distortion.Analyze(out.soundPressure, distortion.Config{
			SampleRate:    rate,
			FundamentalHz: freq,
			MaxHarmonics:  10,
		}); err == nil {
			fmt.Fprintf(tw, "THD\t%.3f\t\t%%\n", 100*res.THD)
			fmt.Fprintf(tw, "THD\t%.1f\t\tdB\n", res.THDdB)
		}
	}

	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

// writeWAV normalizes the signal to 16-bit full scale and writes a mono file.
func writeWAV(path string, signal []float64, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scale := peak(signal)
	if scale == 0 {
		scale = 1
	}

	data := make([]int, len(signal))
	for i, v := range signal {
		data[i] = int(math.Round(v / scale * 32767))
	}

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return enc.Close()
}

func peak(s []float64) float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}

	return m
}

func rms(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range s {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(s)))
}

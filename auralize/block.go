package auralize

import "sync"

// Snapshot carries the trailing three samples of the input voltage and of
// every simulated quantity for each channel. It is the minimal state needed
// to resume the recursion across a block boundary without discontinuity.
//
// A snapshot produced by one Process call and fed into the next reproduces
// the same output as processing both blocks as one, up to floating-point
// associativity. The zero value represents a cold start (all-zero history).
type Snapshot struct {
	tails []tail
}

// tail holds the last three samples of each quantity, oldest first.
type tail struct {
	voltage      [3]float64
	excursion    [3]float64
	velocity     [3]float64
	acceleration [3]float64
	current      [3]float64
	pressure     [3]float64
}

// Channels returns the number of channels captured in the snapshot.
func (s *Snapshot) Channels() int {
	if s == nil {
		return 0
	}

	return len(s.tails)
}

// Result holds the simulated responses for one voltage block. All output
// blocks have the same channel count and length as the input.
type Result struct {
	Excursion     [][]float64
	Velocity      [][]float64
	Acceleration  [][]float64
	Current       [][]float64
	SoundPressure [][]float64

	// Snapshot is the continuation state for the next block.
	Snapshot Snapshot

	// Resumed reports whether the supplied previous snapshot was actually
	// consumed. It is false when no snapshot was given or when the solver
	// fell back to a cold start because the snapshot's channel count did
	// not match the block.
	Resumed bool
}

// channelOut aliases one channel's output rows during the solve.
type channelOut struct {
	excursion     []float64
	velocity      []float64
	acceleration  []float64
	current       []float64
	soundPressure []float64
}

func validateBlock(voltage [][]float64) error {
	if len(voltage) == 0 {
		return nil
	}

	n := len(voltage[0])
	for _, ch := range voltage[1:] {
		if len(ch) != n {
			return ErrRaggedBlock
		}
	}

	return nil
}

// solveBlock runs fn once per channel over freshly allocated outputs,
// sequentially or on up to `workers` goroutines, and assembles the Result.
// On any channel error the whole block fails without partial results.
func solveBlock(voltage [][]float64, prev *Snapshot, workers int, fn func(ch int, voltage []float64, t *tail, out channelOut) error) (*Result, error) {
	if err := validateBlock(voltage); err != nil {
		return nil, err
	}

	channels := len(voltage)

	res := &Result{
		Excursion:     make([][]float64, channels),
		Velocity:      make([][]float64, channels),
		Acceleration:  make([][]float64, channels),
		Current:       make([][]float64, channels),
		SoundPressure: make([][]float64, channels),
		Snapshot:      Snapshot{tails: make([]tail, channels)},
	}

	if prev.Channels() == channels && channels > 0 {
		copy(res.Snapshot.tails, prev.tails)
		res.Resumed = true
	}

	var n int
	if channels > 0 {
		n = len(voltage[0])
	}

	for ch := range channels {
		res.Excursion[ch] = make([]float64, n)
		res.Velocity[ch] = make([]float64, n)
		res.Acceleration[ch] = make([]float64, n)
		res.Current[ch] = make([]float64, n)
		res.SoundPressure[ch] = make([]float64, n)
	}

	if n == 0 {
		return res, nil
	}

	run := func(ch int) error {
		return fn(ch, voltage[ch], &res.Snapshot.tails[ch], channelOut{
			excursion:     res.Excursion[ch],
			velocity:      res.Velocity[ch],
			acceleration:  res.Acceleration[ch],
			current:       res.Current[ch],
			soundPressure: res.SoundPressure[ch],
		})
	}

	if workers > channels {
		workers = channels
	}

	if workers <= 1 {
		for ch := range channels {
			if err := run(ch); err != nil {
				return nil, err
			}
		}

		return res, nil
	}

	errs := make([]error, channels)
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for ch := range channels {
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			errs[ch] = run(ch)
		}()
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// advanceTail returns the trailing three samples after appending data to the
// history represented by t, oldest first.
func advanceTail(t [3]float64, data []float64) [3]float64 {
	var out [3]float64

	n := len(data)
	for j := range 3 {
		if idx := n - 3 + j; idx >= 0 {
			out[j] = data[idx]
		} else {
			out[j] = t[3+idx]
		}
	}

	return out
}

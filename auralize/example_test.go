package auralize_test

import (
	"fmt"
	"log"
	"math"

	"github.com/cwbudde/algo-speaker/auralize"
	"github.com/cwbudde/algo-speaker/driver"
)

// Simulate a driver whose suspension stiffens with excursion, processing the
// signal in two blocks connected by a continuation snapshot.
func Example() {
	model := func(_, x, _, _ float64) (driver.Parameters, error) {
		p := driver.Default()
		p.Stiffness *= 1 + 1e6*x*x

		return p, nil
	}

	solver, err := auralize.New(48000, model, auralize.WithRegularization(0.01))
	if err != nil {
		log.Fatal(err)
	}

	voltage := make([]float64, 96)
	for i := range voltage {
		voltage[i] = 2 * math.Sin(2*math.Pi*100*float64(i)/48000)
	}

	first, err := solver.Process([][]float64{voltage[:48]}, nil)
	if err != nil {
		log.Fatal(err)
	}

	second, err := solver.Process([][]float64{voltage[48:]}, &first.Snapshot)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("channels:", len(second.Excursion))
	fmt.Println("samples:", len(first.Excursion[0])+len(second.Excursion[0]))
	fmt.Println("resumed:", second.Resumed)
	// Output:
	// channels: 1
	// samples: 96
	// resumed: true
}

// A parameter function that ignores the operating state reduces the solver
// to a time-invariant filter.
func ExampleNewLinear() {
	p := driver.Default()

	linear, err := auralize.NewLinear(48000, p)
	if err != nil {
		log.Fatal(err)
	}

	res, err := linear.Process([][]float64{{1, 1, 1, 1}}, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("excursion rises:", res.Excursion[0][3] > res.Excursion[0][0])
	fmt.Println("static limit:", res.Excursion[0][3] < p.ForceFactor/(p.Resistance*p.Stiffness))
	// Output:
	// excursion rises: true
	// static limit: true
}

func ExampleSnapshot_Channels() {
	solver, err := auralize.New(48000, driver.Constant(driver.Default()))
	if err != nil {
		log.Fatal(err)
	}

	res, err := solver.Process([][]float64{{1, 0}, {0, 1}}, nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(res.Snapshot.Channels())
	// Output:
	// 2
}

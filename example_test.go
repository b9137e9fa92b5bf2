package photofit_test

import (
	"fmt"
	"log"

	"github.com/leafgas/photofit"
	"github.com/leafgas/photofit/fit"
	"github.com/leafgas/photofit/fvcb"
)

// Fitting one curve and reading the estimates.
func ExampleFitCurve() {
	ci := []float64{80, 150, 250, 400, 700, 1100, 1500}

	model := fvcb.NewModel(fvcb.DefaultConstants())
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 160, Rd: 1.2}
	a := make([]float64, len(ci))
	for i, c := range ci {
		a[i] = model.Assimilation(truth, c, fvcb.RefTempC, 1500)
	}

	curve, err := photofit.NewCurve("leaf-1", ci, a)
	if err != nil {
		log.Fatal(err)
	}

	result, err := photofit.FitCurve(curve)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("strategy=%s Vcmax=%.0f Jmax=%.0f Rd=%.1f\n",
		result.Strategy, result.Params.Vcmax, result.Params.Jmax, result.Params.Rd)
	// Output: strategy=nonlinear Vcmax=100 Jmax=160 Rd=1.2
}

// Fitting a batch with bounded concurrency and printing the summary header.
func ExampleFitBatch() {
	ci := []float64{60, 120, 200, 300, 450, 700, 1000, 1400}

	model := fvcb.NewModel(fvcb.DefaultConstants())
	var curves []*fit.Curve
	for i, p := range []fvcb.ParameterSet{
		{Vcmax: 90, Jmax: 150, Rd: 1.0},
		{Vcmax: 115, Jmax: 175, Rd: 1.4},
	} {
		a := make([]float64, len(ci))
		for j, c := range ci {
			a[j] = model.Assimilation(p, c, fvcb.RefTempC, 1500)
		}
		curve, err := photofit.NewCurve(fmt.Sprintf("leaf-%d", i+1), ci, a)
		if err != nil {
			log.Fatal(err)
		}
		curves = append(curves, curve)
	}

	batch, err := photofit.FitBatch(curves, fit.WithWorkers(2))
	if err != nil {
		log.Fatal(err)
	}

	rows := batch.Summary()
	fmt.Println(rows[0][0], rows[0][2], rows[0][4], rows[0][6])
	fmt.Println(len(rows)-1, "curves,", len(batch.FailedIDs), "failed")
	// Output:
	// id vcmax jmax rd
	// 2 curves, 0 failed
}

package fit

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// rSquared calculates the coefficient of determination.
//
// Formula: R² = 1 - (SS_res / SS_tot). Returns 0 for degenerate inputs
// (no points, or zero variance in the observations).
func rSquared(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	mean := stat.Mean(observed, nil)
	ssTot := 0.0
	ssRes := 0.0
	for i := range observed {
		ssTot += (observed[i] - mean) * (observed[i] - mean)
		ssRes += (observed[i] - predicted[i]) * (observed[i] - predicted[i])
	}

	if ssTot == 0 {
		return 0
	}

	return 1.0 - (ssRes / ssTot)
}

// rmse calculates the root mean square error of predictions.
func rmse(observed, predicted []float64) float64 {
	if len(observed) == 0 {
		return 0
	}

	sumSq := 0.0
	for i := range observed {
		diff := observed[i] - predicted[i]
		sumSq += diff * diff
	}

	return math.Sqrt(sumSq / float64(len(observed)))
}

// olsFit performs ordinary least squares y = alpha + beta*x and returns the
// coefficients with their standard errors. With origin=true the intercept is
// forced to zero and seAlpha is NaN.
func olsFit(x, y []float64, origin bool) (alpha, beta, seAlpha, seBeta float64) {
	n := len(x)
	alpha, beta = stat.LinearRegression(x, y, nil, origin)

	dof := n - 2
	if origin {
		dof = n - 1
	}
	if dof <= 0 {
		return alpha, beta, math.NaN(), math.NaN()
	}

	ssRes := 0.0
	for i := range x {
		r := y[i] - alpha - beta*x[i]
		ssRes += r * r
	}
	sigma2 := ssRes / float64(dof)

	if origin {
		sxx := 0.0
		for _, xi := range x {
			sxx += xi * xi
		}
		if sxx == 0 {
			return alpha, beta, math.NaN(), math.NaN()
		}

		return alpha, beta, math.NaN(), math.Sqrt(sigma2 / sxx)
	}

	meanX := stat.Mean(x, nil)
	sxx := 0.0
	sumX2 := 0.0
	for _, xi := range x {
		sxx += (xi - meanX) * (xi - meanX)
		sumX2 += xi * xi
	}
	if sxx == 0 {
		return alpha, beta, math.NaN(), math.NaN()
	}

	seBeta = math.Sqrt(sigma2 / sxx)
	seAlpha = math.Sqrt(sigma2 * sumX2 / (float64(n) * sxx))

	return alpha, beta, seAlpha, seBeta
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package fit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/leafgas/photofit/errs"
	"github.com/leafgas/photofit/internal/collision"
	"github.com/leafgas/photofit/internal/hash"
)

// BatchResult aggregates the fits of many curves. Results keeps one entry per
// input curve identifier; FailedIDs lists, in input order, the identifiers
// that could not be fit even after the bilinear fallback.
type BatchResult struct {
	// IDs preserves the input curve order.
	IDs []string
	// Results maps curve identifier to its fit.
	Results map[string]*FitResult
	// FailedIDs lists identifiers whose fit terminally failed.
	FailedIDs []string
	// GroupCollision reports that two distinct identifiers hash to the same
	// group_id, so joins on that column are ambiguous.
	GroupCollision bool
}

// Result returns the fit for one curve identifier.
func (b *BatchResult) Result(id string) (*FitResult, bool) {
	r, ok := b.Results[id]
	return r, ok
}

// FailureReport returns a consolidated operator-facing message naming every
// curve that could not be fit, or an empty string when all curves converged.
func (b *BatchResult) FailureReport() string {
	if len(b.FailedIDs) == 0 {
		return ""
	}

	var lines []string
	for _, id := range b.FailedIDs {
		lines = append(lines, fmt.Sprintf("  %s: %s", id, b.Results[id].FailReason))
	}

	return fmt.Sprintf("%d of %d curves could not be fit:\n%s", len(b.FailedIDs), len(b.IDs), strings.Join(lines, "\n"))
}

// summaryHeader is the column order of the coefficient summary table.
var summaryHeader = []string{
	"id", "group_id",
	"vcmax", "vcmax_se",
	"jmax", "jmax_se",
	"rd", "rd_se",
	"tpu", "tpu_se",
	"r_squared", "ci_transition",
	"method", "converged",
}

// Summary returns the coefficients-only table: a header row followed by one
// row per curve in input order. Unavailable values render as "NA".
func (b *BatchResult) Summary() [][]string {
	rows := make([][]string, 0, len(b.IDs)+1)
	rows = append(rows, summaryHeader)

	for _, id := range b.IDs {
		r := b.Results[id]
		if !r.Converged {
			rows = append(rows, []string{
				id, fmt.Sprintf("%016x", r.GroupID),
				"NA", "NA", "NA", "NA", "NA", "NA", "NA", "NA", "NA", "NA",
				r.Strategy.String(), "false",
			})

			continue
		}

		tpu, tpuSE := math.NaN(), math.NaN()
		if r.Params.TPU > 0 {
			tpu, tpuSE = r.Params.TPU, r.StdErrs.TPU
		}

		rows = append(rows, []string{
			id, fmt.Sprintf("%016x", r.GroupID),
			formatCoef(r.Params.Vcmax), formatCoef(r.StdErrs.Vcmax),
			formatCoef(r.Params.Jmax), formatCoef(r.StdErrs.Jmax),
			formatCoef(r.Params.Rd), formatCoef(r.StdErrs.Rd),
			formatCoef(tpu), formatCoef(tpuSE),
			formatCoef(r.RSquared), formatCoef(r.CiTransition),
			r.Strategy.String(), "true",
		})
	}

	return rows
}

func formatCoef(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NA"
	}

	return strconv.FormatFloat(v, 'g', 6, 64)
}

// BatchFitter fits many curves with shared options, isolating per-curve
// failures so one bad curve never aborts the batch.
type BatchFitter struct {
	fitter *Fitter
}

// NewBatchFitter creates a batch fitter from options. WithWorkers bounds how
// many curves are fit concurrently.
func NewBatchFitter(opts ...Option) (*BatchFitter, error) {
	fitter, err := NewFitter(opts...)
	if err != nil {
		return nil, err
	}

	return &BatchFitter{fitter: fitter}, nil
}

// FitAll fits every curve and assembles the batch result. Curves are
// independent, so they are dispatched to a bounded worker pool; each worker
// writes to its own result slot and no further synchronization is needed.
// Per-curve input problems and convergence failures degrade to flagged
// entries; FitAll itself errors only on an empty batch or on empty or
// duplicate curve identifiers.
func (bf *BatchFitter) FitAll(curves []*Curve) (*BatchResult, error) {
	if len(curves) == 0 {
		return nil, errs.ErrEmptyBatch
	}

	// Results are keyed by identifier; reject duplicates up front instead of
	// letting a later curve silently replace an earlier fit.
	tracker := collision.NewTracker()
	for _, curve := range curves {
		if err := tracker.Track(curve.ID, hash.GroupID(curve.ID)); err != nil {
			return nil, fmt.Errorf("%w: %q", err, curve.ID)
		}
	}

	slots := make([]*FitResult, len(curves))

	workers := bf.fitter.cfg.Workers
	if workers > len(curves) {
		workers = len(curves)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i] = bf.fitOne(curves[i])
			}
		}()
	}
	for i := range curves {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	batch := &BatchResult{
		Results:        make(map[string]*FitResult, len(curves)),
		GroupCollision: tracker.HasCollision(),
	}
	for i, curve := range curves {
		batch.IDs = append(batch.IDs, curve.ID)
		batch.Results[curve.ID] = slots[i]
		if !slots[i].Converged {
			batch.FailedIDs = append(batch.FailedIDs, curve.ID)
		}
	}

	return batch, nil
}

// fitOne runs a single fit, converting a panic in the numerical machinery
// into a failed entry so the rest of the batch survives.
func (bf *BatchFitter) fitOne(curve *Curve) (result *FitResult) {
	defer func() {
		if r := recover(); r != nil {
			result = failedResult(curve, bf.fitter.cfg.Method, fmt.Sprintf("panic during fit: %v", r))
		}
	}()

	result, _ = bf.fitter.Fit(curve)

	return result
}

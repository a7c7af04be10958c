// Package batch evaluates option records, one at a time or in parallel.
package batch

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/iv-calculator/internal/data"
	"github.com/contactkeval/iv-calculator/internal/logger"
	"github.com/contactkeval/iv-calculator/internal/metrics"
	"github.com/contactkeval/iv-calculator/internal/pricing"
)

// Summary counts the outcome of a batch run. Processed counts successful
// records only.
type Summary struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Evaluate fills in the missing field of rec.
//
// A record with a volatility is priced and its Price overwritten. A record with
// only a price has its implied volatility solved with method and the returned
// Solution describes the search; in price mode the Solution is zero. On
// success rec.Computed names the field that was filled in.
//
// Records that failed to parse, or fail validation, return an error wrapping
// pricing.ErrInvalidInput. Evaluate does not set rec.Error.
func Evaluate(rec *data.OptionRecord, method pricing.Method) (pricing.Solution, error) {
	if rec.Error != "" {
		return pricing.Solution{}, errors.Wrap(pricing.ErrInvalidInput, rec.Error)
	}
	if err := rec.Validate(); err != nil {
		return pricing.Solution{}, errors.Wrap(pricing.ErrInvalidInput, err.Error())
	}

	if rec.Mode() == data.ModePrice {
		p, err := rec.Spec(*rec.Volatility).Price()
		if err != nil {
			return pricing.Solution{}, err
		}
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return pricing.Solution{}, errors.Wrapf(pricing.ErrInvalidInput, "price is not finite for volatility %v", *rec.Volatility)
		}
		rec.Price = data.Float(p)
		rec.Computed = data.FieldPrice
		return pricing.Solution{}, nil
	}

	sol, err := rec.Observation(*rec.Price).Solve(method)
	if err != nil {
		return pricing.Solution{}, err
	}
	rec.Volatility = data.Float(sol.Volatility)
	rec.Computed = data.FieldVolatility
	return sol, nil
}

// Processor runs Evaluate over records with bounded parallelism and reports
// each evaluation to metrics.
type Processor struct {
	method  pricing.Method
	workers int
	metrics *metrics.Metrics
}

// NewProcessor returns a Processor. workers below one means one; m may be nil.
func NewProcessor(method pricing.Method, workers int, m *metrics.Metrics) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{method: method, workers: workers, metrics: m}
}

// Method returns the default solver method.
func (p *Processor) Method() pricing.Method {
	return p.method
}

// WithMethod returns a copy of p that solves with method.
func (p *Processor) WithMethod(method pricing.Method) *Processor {
	cp := *p
	cp.method = method
	return &cp
}

// Evaluate is the package level Evaluate with metrics attached. On failure
// rec.Error is set to the error text.
func (p *Processor) Evaluate(rec *data.OptionRecord, method pricing.Method) (pricing.Solution, error) {
	op, label := metrics.OpImpliedVol, method.String()
	if rec.Volatility != nil {
		op, label = metrics.OpPrice, "none"
	}

	start := time.Now()
	sol, err := Evaluate(rec, method)
	elapsed := time.Since(start)

	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
		if op == metrics.OpImpliedVol {
			label = sol.Method.String()
		}
	case pricing.IsInvalidInput(err):
		outcome = metrics.OutcomeInvalid
	case pricing.IsNonConvergence(err):
		outcome = metrics.OutcomeNoConverge
	default:
		outcome = metrics.OutcomeError
	}
	p.metrics.ObserveCalculation(op, label, outcome, elapsed)

	if err != nil {
		if rec.Error == "" {
			rec.Error = err.Error()
		}
		return sol, err
	}
	return sol, nil
}

// Process evaluates every record in place. A record that fails keeps its
// error in rec.Error and counts towards Summary.Errors; the run carries on.
//
// When ctx is cancelled no further records are scheduled, in-flight ones
// finish, and the context error is returned with the partial summary.
func (p *Processor) Process(ctx context.Context, records []data.OptionRecord) (Summary, error) {
	logger.Infof("batch: evaluating %d records with %d workers (%s)", len(records), p.workers, p.method)

	var (
		g         errgroup.Group
		failed    atomic.Int64
		scheduled int
	)
	g.SetLimit(p.workers)

	for i := range records {
		if ctx.Err() != nil {
			break
		}
		i := i
		rec := &records[i]
		scheduled++
		g.Go(func() error {
			if rec.Volatility != nil && rec.Price != nil {
				logger.Debugf("batch: record %d has both price and volatility, recomputing price", i)
			}
			if _, err := p.Evaluate(rec, p.method); err != nil {
				failed.Add(1)
				logger.Debugf("batch: record %d: %v", i, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	errs := int(failed.Load())
	summary := Summary{Processed: scheduled - errs, Errors: errs}
	p.metrics.ObserveBatch(scheduled)

	if err := ctx.Err(); err != nil {
		logger.Errorf("batch: cancelled after %d of %d records", scheduled, len(records))
		return summary, errors.Wrap(err, "batch cancelled")
	}
	logger.Infof("batch: processed %d records with %d errors", summary.Processed, summary.Errors)
	return summary, nil
}

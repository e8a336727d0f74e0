// Package calibration sweeps the starting margin of the downward walk and
// reports the smallest margin that meets a target relative error.
//
// The default margin stays fixed; calibration only reports.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/besselcalc/internal/bessel"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/orchestration"
	"github.com/agbru/besselcalc/internal/reference"
)

// ErrInvalidSweep is wrapped by the configuration errors of a sweep.
var ErrInvalidSweep = errors.New("invalid calibration sweep")

// Report is the outcome of a margin sweep at one argument.
type Report struct {
	X         float64
	LMax      int
	Tolerance float64
	// Errors[m-1] is the largest relative error over orders 0..LMax when the
	// walk starts at LMax+m. A margin whose walk failed records +Inf.
	Errors []float64
	// Margin is the smallest margin meeting Tolerance, 0 when none did.
	Margin int
}

// Met reports whether some margin met the tolerance.
func (r Report) Met() bool { return r.Margin > 0 }

// Sweeper runs margin sweeps.
type Sweeper struct {
	Oracle    reference.Oracle
	MaxMargin int
	Tolerance float64
	Anchor    bessel.Anchor
	// Workers bounds the margins evaluated concurrently; below 1 means 1.
	Workers int
}

// SweepMargins evaluates the downward walk at x for every margin
// 1..maxMargin with the j0 anchor.
func SweepMargins(ctx context.Context, x float64, lMax int, oracle reference.Oracle, maxMargin int, tol float64) (Report, error) {
	s := Sweeper{Oracle: oracle, MaxMargin: maxMargin, Tolerance: tol, Workers: 1}
	return s.Sweep(ctx, x, lMax)
}

// Sweep evaluates the downward walk at x for every margin 1..MaxMargin.
// The reference values are computed once and shared by every margin.
func (s Sweeper) Sweep(ctx context.Context, x float64, lMax int) (Report, error) {
	if s.Oracle == nil {
		return Report{}, apperrors.NewConfigErrorCause(ErrInvalidSweep, "calibration: no reference oracle")
	}
	if s.MaxMargin < 1 {
		return Report{}, apperrors.NewConfigErrorCause(ErrInvalidSweep, "calibration: max margin %d", s.MaxMargin)
	}
	if !(s.Tolerance > 0) {
		return Report{}, apperrors.NewConfigErrorCause(ErrInvalidSweep, "calibration: tolerance %g", s.Tolerance)
	}

	if lMax < 0 {
		return Report{}, apperrors.NewConfigErrorCause(bessel.ErrOrderOutOfRange, "calibration: l_max %d", lMax)
	}

	down, err := bessel.GlobalFactory().Get(bessel.MethodDown)
	if err != nil {
		return Report{}, err
	}
	evaluators := []bessel.Evaluator{down}

	refs := make(reference.Table, lMax+1)
	for l := 0; l <= lMax; l++ {
		ref, err := s.Oracle.Reference(l, x)
		if err != nil {
			err = fmt.Errorf("reference j_%d(%g): %w", l, x, err)
			if apperrors.IsConfigError(err) || apperrors.IsDomainError(err) {
				return Report{}, err
			}
			return Report{}, apperrors.CalculationError{Cause: err}
		}
		refs[reference.Key{L: l, X: x}] = ref
	}

	report := Report{X: x, LMax: lMax, Tolerance: s.Tolerance, Errors: make([]float64, s.MaxMargin)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Workers, 1))
	for m := 1; m <= s.MaxMargin; m++ {
		margin := m
		g.Go(func() error {
			t, err := orchestration.Compare(gctx, x, lMax, evaluators, refs, bessel.Options{Margin: margin, Anchor: s.Anchor})
			var calcErr apperrors.CalculationError
			switch {
			case err == nil:
				report.Errors[margin-1] = t.MaxError(bessel.MethodDown)
			case errors.As(err, &calcErr):
				// Degenerate or overflowing walk at this margin.
				report.Errors[margin-1] = math.Inf(1)
			default:
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	for i, e := range report.Errors {
		if e <= s.Tolerance {
			report.Margin = i + 1
			break
		}
	}
	return report, nil
}

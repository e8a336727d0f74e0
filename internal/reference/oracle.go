// Package reference provides the trusted collaborator the comparison harness
// measures the recurrence evaluators against.
//
// The harness only depends on the Oracle interface. Series is the default
// implementation; Func and Table let tests and callers inject their own
// values.
package reference

import (
	"errors"
	"fmt"
	"math"

	"github.com/agbru/besselcalc/internal/bessel"
	apperrors "github.com/agbru/besselcalc/internal/errors"
)

var (
	// ErrNoReference is returned by a Table that holds no value for (l, x).
	ErrNoReference = errors.New("no reference value")
	// ErrArgumentTooLarge is returned by Series for |x| > MaxArgument.
	ErrArgumentTooLarge = errors.New("argument too large for the power series")
	// ErrNoConvergence is returned by Series when the term budget runs out.
	ErrNoConvergence = errors.New("power series did not converge")
)

// Oracle returns a trusted value of j_l(x).
type Oracle interface {
	Reference(l int, x float64) (float64, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(l int, x float64) float64

// Reference calls f.
func (f Func) Reference(l int, x float64) (float64, error) {
	return f(l, x), nil
}

// Key identifies one table entry.
type Key struct {
	L int
	X float64
}

// Table is a fixed set of hand-computed reference values.
type Table map[Key]float64

// Reference looks (l, x) up.
func (t Table) Reference(l int, x float64) (float64, error) {
	v, ok := t[Key{L: l, X: x}]
	if !ok {
		return 0, fmt.Errorf("table: l=%d x=%g: %w", l, x, ErrNoReference)
	}
	return v, nil
}

// validate applies the domain shared with the evaluators.
func validate(op string, l int, x float64) error {
	if x == 0 {
		return apperrors.DomainError{Op: op, X: x, Cause: bessel.ErrSingularArgument}
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return apperrors.DomainError{Op: op, X: x, Cause: bessel.ErrNonFiniteArgument}
	}
	if l < 0 {
		return apperrors.NewConfigErrorCause(bessel.ErrOrderOutOfRange, "%s: l=%d", op, l)
	}
	return nil
}

package bessel

import (
	"errors"
	"fmt"
	"math"

	apperrors "github.com/agbru/besselcalc/internal/errors"
)

// Sentinel errors. Evaluators wrap them in apperrors.DomainError,
// apperrors.ConfigError or apperrors.CalculationError; use errors.Is to test
// for a specific condition.
var (
	// ErrSingularArgument is reported for x = 0.
	ErrSingularArgument = errors.New("singular argument: x must be non-zero")
	// ErrNonFiniteArgument is reported for x = ±Inf or NaN.
	ErrNonFiniteArgument = errors.New("argument must be finite")
	// ErrOrderOutOfRange is reported for a negative l_max or a kernel order below 1.
	ErrOrderOutOfRange = errors.New("order out of range")
	// ErrInvalidMargin is reported when the downward starting order does not exceed l_max.
	ErrInvalidMargin = errors.New("starting order must exceed l_max")
	// ErrZeroSeeds is reported when both downward seed values are zero.
	ErrZeroSeeds = errors.New("downward seeds must not both be zero")
	// ErrDegenerateNormalization is reported when the unnormalized anchor value is zero.
	ErrDegenerateNormalization = errors.New("unnormalized anchor value is zero")
	// ErrNonFiniteRecurrence is reported when the downward walk overflows.
	ErrNonFiniteRecurrence = errors.New("recurrence produced a non-finite value")
)

// Direction selects the traversal direction of the three-term recurrence.
type Direction int

const (
	// Forward walks from low to high order (j_{l+1} from j_l, j_{l-1}).
	Forward Direction = iota
	// Backward walks from high to low order (j_{l-1} from j_l, j_{l+1}).
	Backward
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// checkArgument rejects x = 0 and non-finite x for operation op.
func checkArgument(op string, x float64) error {
	if x == 0 {
		return apperrors.DomainError{Op: op, X: x, Cause: ErrSingularArgument}
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return apperrors.DomainError{Op: op, X: x, Cause: ErrNonFiniteArgument}
	}
	return nil
}

// recur is the recurrence primitive shared by both directions:
//
//	f_{l±1} = ((2l+1)/x)·f_l − f_{l∓1}
//
// The product is rounded to float64 before the subtraction so the compiler
// cannot fuse it into an FMA.
func recur(l int, x, fl, other float64) float64 {
	return float64(float64(2*l+1)/x*fl) - other
}

// Next returns j_{l+1}(x) from j_l(x) and j_{l-1}(x):
//
//	j_{l+1}(x) = ((2l+1)/x)·j_l(x) − j_{l−1}(x)
//
// It fails with a DomainError for x = 0 and a ConfigError for l < 1.
func Next(l int, x, jl, jlm1 float64) (float64, error) {
	return Step(Forward, l, x, jl, jlm1)
}

// Prev returns j_{l-1}(x) from j_l(x) and j_{l+1}(x), i.e. the same relation
// solved for the lower index.
func Prev(l int, x, jl, jlp1 float64) (float64, error) {
	return Step(Backward, l, x, jl, jlp1)
}

// Step applies one recurrence step in the given direction. neighbor is
// j_{l-1} when walking forward and j_{l+1} when walking backward.
func Step(dir Direction, l int, x, jl, neighbor float64) (float64, error) {
	op := "next"
	if dir == Backward {
		op = "prev"
	}
	if err := checkArgument(op, x); err != nil {
		return 0, err
	}
	if l < 1 {
		return 0, apperrors.NewConfigErrorCause(ErrOrderOutOfRange, "%s: l=%d", op, l)
	}
	if dir != Forward && dir != Backward {
		return 0, apperrors.NewConfigError("%s: unknown direction %v", op, dir)
	}
	return recur(l, x, jl, neighbor), nil
}

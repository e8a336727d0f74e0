package reference

import (
	"math"
	"math/big"

	apperrors "github.com/agbru/besselcalc/internal/errors"
)

const (
	// DefaultPrecision is the mantissa size in bits used when Series.Precision is zero.
	DefaultPrecision uint = 256
	// MaxArgument bounds |x|. The alternating series loses about 1.44·|x|
	// bits to cancellation, which the working precision has to absorb.
	MaxArgument = 1000.0
	// guardBits are carried on top of the requested precision.
	guardBits = 64
	maxTerms  = 100000
)

// Series evaluates the ascending power series
//
//	j_l(x) = x^l/(2l+1)!! · Σ_k (−x²/2)^k / (k! · (2l+3)(2l+5)…(2l+2k+1))
//
// in big.Float arithmetic and rounds the result to float64. The working
// precision grows with |x| so that the cancellation between terms never
// reaches the returned bits.
type Series struct {
	// Precision is the target precision in bits. Zero selects DefaultPrecision.
	Precision uint
}

// NewSeries returns a Series oracle with the given precision.
func NewSeries(precision uint) Series {
	return Series{Precision: precision}
}

// Reference returns j_l(x).
func (s Series) Reference(l int, x float64) (float64, error) {
	if err := validate("reference", l, x); err != nil {
		return 0, err
	}
	if math.Abs(x) > MaxArgument {
		return 0, apperrors.DomainError{Op: "reference", X: x, Cause: ErrArgumentTooLarge}
	}

	prec := s.Precision
	if prec == 0 {
		prec = DefaultPrecision
	}
	wp := prec + guardBits + uint(2*math.Ceil(math.Abs(x)))
	newFloat := func() *big.Float { return new(big.Float).SetPrec(wp) }

	bx := newFloat().SetFloat64(x)
	scale := newFloat().SetInt64(1)
	for i := 1; i <= l; i++ {
		scale.Mul(scale, bx)
		scale.Quo(scale, newFloat().SetInt64(int64(2*i+1)))
	}

	step := newFloat().Mul(bx, bx)
	step.Quo(step, newFloat().SetInt64(-2))
	x2 := x * x

	sum := newFloat().SetInt64(1)
	term := newFloat().SetInt64(1)
	den := newFloat()
	for k := 1; ; k++ {
		if k > maxTerms {
			return 0, apperrors.CalculationError{Cause: apperrors.WrapError(ErrNoConvergence, "reference: l=%d x=%g", l, x)}
		}
		d := int64(k) * int64(2*l+2*k+1)
		term.Mul(term, step)
		term.Quo(term, den.SetInt64(d))
		sum.Add(sum, term)

		// Terms only shrink once k(2l+2k+1) exceeds x²/2.
		if float64(d) > x2 && (term.Sign() == 0 || term.MantExp(nil) < sum.MantExp(nil)-int(prec)-8) {
			break
		}
	}

	v, _ := scale.Mul(scale, sum).Float64()
	return v, nil
}

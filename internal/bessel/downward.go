package bessel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/agbru/besselcalc/internal/errors"
)

// Anchor selects the closed-form value used to normalize the downward walk.
type Anchor int

const (
	// AnchorJ0 normalizes with j_0(x) = sin(x)/x.
	AnchorJ0 Anchor = iota
	// AnchorLarger normalizes with whichever of j_0(x), j_1(x) is larger in
	// magnitude. It avoids dividing by the near-zero j_0 at x ≈ nπ.
	AnchorLarger
)

// String returns the configuration name of the anchor.
func (a Anchor) String() string {
	switch a {
	case AnchorJ0:
		return "j0"
	case AnchorLarger:
		return "larger"
	default:
		return "unknown"
	}
}

// ParseAnchor maps a configuration name to an Anchor.
func ParseAnchor(name string) (Anchor, bool) {
	switch name {
	case "", "j0":
		return AnchorJ0, true
	case "larger":
		return AnchorLarger, true
	default:
		return AnchorJ0, false
	}
}

// Seeds are the two arbitrary unnormalized values placed at orders
// m_start+1 (High) and m_start (Low).
type Seeds struct {
	High float64
	Low  float64
}

// DefaultSeeds is the conventional (0, 1) start.
var DefaultSeeds = Seeds{High: 0, Low: 1}

// DownwardOptions tunes the downward walk. The zero value uses DefaultSeeds
// and AnchorJ0.
type DownwardOptions struct {
	// Seeds overrides DefaultSeeds when non-nil.
	Seeds *Seeds
	// Anchor selects the normalization value.
	Anchor Anchor
}

func (o DownwardOptions) seeds() Seeds {
	if o.Seeds != nil {
		return *o.Seeds
	}
	return DefaultSeeds
}

// StartOrder returns the starting order lMax + margin.
func StartOrder(lMax, margin int) int {
	return lMax + margin
}

// Downward evaluates j_0(x) … j_lmax(x) with Miller's algorithm.
//
// The walk starts from two arbitrary values at orders mStart+1 and mStart and
// applies the recurrence solved for the lower index down to order 0. Orders
// above lMax only damp the admixture of y_l and are discarded. The retained
// values are then scaled so that the anchor order matches its closed form.
//
// mStart must exceed lMax; otherwise Downward fails with a ConfigError before
// any step is taken.
func Downward(x float64, lMax, mStart int, opts DownwardOptions) (Sequence, error) {
	if err := checkArgument("downward", x); err != nil {
		return nil, err
	}
	if lMax < 0 {
		return nil, apperrors.NewConfigErrorCause(ErrOrderOutOfRange, "downward: l_max=%d", lMax)
	}
	if mStart <= lMax {
		return nil, apperrors.NewConfigErrorCause(ErrInvalidMargin, "downward: m_start=%d l_max=%d", mStart, lMax)
	}
	seeds := opts.seeds()
	if seeds.High == 0 && seeds.Low == 0 {
		return nil, apperrors.NewConfigErrorCause(ErrZeroSeeds, "downward")
	}

	seq := make(Sequence, lMax+1)
	upper, cur := seeds.High, seeds.Low
	for l := mStart; l >= 1; l-- {
		if l <= lMax {
			seq[l] = cur
		}
		upper, cur = cur, recur(l, x, cur, upper)
		if math.IsNaN(cur) || math.IsInf(cur, 0) {
			return nil, apperrors.CalculationError{Cause: apperrors.WrapError(ErrNonFiniteRecurrence, "downward: x=%g order=%d", x, l-1)}
		}
		if math.Abs(cur) > RenormalizeLimit {
			upper *= RenormalizeFactor
			cur *= RenormalizeFactor
			floats.Scale(RenormalizeFactor, seq)
		}
	}
	seq[0] = cur

	anchor, unnormalized := j0(x), cur
	if opts.Anchor == AnchorLarger {
		if v := j1(x); math.Abs(v) > math.Abs(anchor) {
			anchor, unnormalized = v, upper
		}
	}
	if unnormalized == 0 {
		return nil, apperrors.CalculationError{Cause: apperrors.WrapError(ErrDegenerateNormalization, "downward: x=%g anchor=%v", x, opts.Anchor)}
	}
	floats.Scale(anchor/unnormalized, seq)
	return seq, nil
}

package bessel

import apperrors "github.com/agbru/besselcalc/internal/errors"

// Upward evaluates j_0(x) … j_lmax(x) by forward recurrence.
//
// j_0 and j_1 come from their closed forms; every higher order is one Next
// step from the two below it. The result is accurate for l ≲ x. For l ≫ x the
// decaying j_l is swamped by the growing companion solution y_l excited by
// rounding error, and the relative error grows without bound. That loss is
// the behaviour under study and is returned as-is.
func Upward(x float64, lMax int) (Sequence, error) {
	if err := checkArgument("upward", x); err != nil {
		return nil, err
	}
	if lMax < 0 {
		return nil, apperrors.NewConfigErrorCause(ErrOrderOutOfRange, "upward: l_max=%d", lMax)
	}

	seq := make(Sequence, lMax+1)
	seq[0] = j0(x)
	if lMax == 0 {
		return seq, nil
	}
	seq[1] = j1(x)
	for l := 1; l < lMax; l++ {
		seq[l+1] = recur(l, x, seq[l], seq[l-1])
	}
	return seq, nil
}

package reference

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/besselcalc/internal/bessel"
	apperrors "github.com/agbru/besselcalc/internal/errors"
)

func TestSeriesKnownValues(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		l    int
		x    float64
		want float64
	}{
		{0, 1, math.Sin(1)},
		{1, 1, 0.3011686789397568},
		{8, 1, 2.8264988022147296e-08},
		{25, 0.1, 3.3551315322373083e-59},
		{10, 0.001, 7.273091787446731e-41},
		{0, math.Pi, 3.8981718325193755e-17},
		{5, math.Pi, 0.019935413383293576},
		{3, 10, -0.03949584498447033},
	}
	oracle := Series{}
	for _, tc := range testCases {
		got, err := oracle.Reference(tc.l, tc.x)
		require.NoError(t, err)
		assert.InEpsilon(t, tc.want, got, 1e-14, "l=%d x=%g", tc.l, tc.x)
	}
}

func TestSeriesParity(t *testing.T) {
	t.Parallel()
	oracle := NewSeries(128)
	for l := 0; l <= 6; l++ {
		pos, err := oracle.Reference(l, 2.5)
		require.NoError(t, err)
		neg, err := oracle.Reference(l, -2.5)
		require.NoError(t, err)
		if l%2 == 0 {
			assert.Equal(t, pos, neg, "l=%d", l)
		} else {
			assert.Equal(t, -pos, neg, "l=%d", l)
		}
	}
}

func TestSeriesPrecisionIsStable(t *testing.T) {
	t.Parallel()
	for _, x := range []float64{0.3, 4, 17.5, 60} {
		lo, err := NewSeries(128).Reference(7, x)
		require.NoError(t, err)
		hi, err := NewSeries(512).Reference(7, x)
		require.NoError(t, err)
		assert.Equal(t, hi, lo, "x=%g", x)
	}
}

func TestSeriesErrors(t *testing.T) {
	t.Parallel()
	oracle := Series{}

	_, err := oracle.Reference(0, 0)
	assert.ErrorIs(t, err, bessel.ErrSingularArgument)
	assert.True(t, apperrors.IsDomainError(err))

	_, err = oracle.Reference(0, math.NaN())
	assert.ErrorIs(t, err, bessel.ErrNonFiniteArgument)

	_, err = oracle.Reference(-1, 1)
	assert.ErrorIs(t, err, bessel.ErrOrderOutOfRange)
	assert.True(t, apperrors.IsConfigError(err))

	_, err = oracle.Reference(0, 2*MaxArgument)
	assert.ErrorIs(t, err, ErrArgumentTooLarge)
}

func TestTableAndFunc(t *testing.T) {
	t.Parallel()
	table := Table{{L: 0, X: 1}: 0.5}
	v, err := table.Reference(0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)

	_, err = table.Reference(1, 1)
	assert.True(t, errors.Is(err, ErrNoReference))

	var oracle Oracle = Func(func(l int, x float64) float64 { return float64(l) * x })
	v, err = oracle.Reference(3, 2)
	require.NoError(t, err)
	assert.Equal(t, 6.0, v)
}

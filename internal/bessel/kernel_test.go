package bessel

import (
	"errors"
	"math"
	"testing"

	apperrors "github.com/agbru/besselcalc/internal/errors"
)

func TestNextMatchesClosedForms(t *testing.T) {
	t.Parallel()
	// j_2(x) = (3/x² − 1)·sin(x)/x − 3cos(x)/x²
	for _, x := range []float64{0.5, 1, 2.5, 7, -3} {
		s, c := math.Sincos(x)
		want := (3/(x*x)-1)*s/x - 3*c/(x*x)
		got, err := Next(1, x, j1(x), j0(x))
		if err != nil {
			t.Fatalf("Next(1, %g) returned error: %v", x, err)
		}
		if diff := math.Abs(got - want); diff > 1e-14*math.Max(1, math.Abs(want)) {
			t.Errorf("Next(1, %g) = %.17g, want %.17g", x, got, want)
		}
	}
}

func TestNextPrevAreInverse(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		l int
		x float64
	}{
		{1, 1}, {2, 3.5}, {5, 10}, {3, -2}, {10, 20},
	}
	for _, tc := range testCases {
		jlm1, jl := 0.25, -0.75
		jlp1, err := Next(tc.l, tc.x, jl, jlm1)
		if err != nil {
			t.Fatalf("Next(%d, %g) returned error: %v", tc.l, tc.x, err)
		}
		back, err := Prev(tc.l, tc.x, jl, jlp1)
		if err != nil {
			t.Fatalf("Prev(%d, %g) returned error: %v", tc.l, tc.x, err)
		}
		if math.Abs(back-jlm1) > 1e-13 {
			t.Errorf("Prev(Next) for l=%d x=%g = %.17g, want %.17g", tc.l, tc.x, back, jlm1)
		}
	}
}

func TestKernelDomainErrors(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		x    float64
		want error
	}{
		{"zero", 0, ErrSingularArgument},
		{"negative zero", math.Copysign(0, -1), ErrSingularArgument},
		{"NaN", math.NaN(), ErrNonFiniteArgument},
		{"+Inf", math.Inf(1), ErrNonFiniteArgument},
		{"-Inf", math.Inf(-1), ErrNonFiniteArgument},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			for _, dir := range []Direction{Forward, Backward} {
				v, err := Step(dir, 1, tc.x, 1, 1)
				if !errors.Is(err, tc.want) {
					t.Errorf("Step(%v) error = %v, want %v", dir, err, tc.want)
				}
				if !apperrors.IsDomainError(err) {
					t.Errorf("Step(%v) error %T is not a DomainError", dir, err)
				}
				if v != 0 {
					t.Errorf("Step(%v) returned %g alongside an error", dir, v)
				}
			}
			if _, err := J0(tc.x); !errors.Is(err, tc.want) {
				t.Errorf("J0 error = %v, want %v", err, tc.want)
			}
			if _, err := J1(tc.x); !errors.Is(err, tc.want) {
				t.Errorf("J1 error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestKernelOrderOutOfRange(t *testing.T) {
	t.Parallel()
	for _, l := range []int{0, -1, -100} {
		_, err := Next(l, 1, 1, 1)
		if !errors.Is(err, ErrOrderOutOfRange) || !apperrors.IsConfigError(err) {
			t.Errorf("Next(l=%d) error = %v, want config error wrapping ErrOrderOutOfRange", l, err)
		}
		_, err = Prev(l, 1, 1, 1)
		if !errors.Is(err, ErrOrderOutOfRange) {
			t.Errorf("Prev(l=%d) error = %v, want ErrOrderOutOfRange", l, err)
		}
	}
}

func TestStepUnknownDirection(t *testing.T) {
	t.Parallel()
	_, err := Step(Direction(7), 1, 1, 1, 1)
	if !apperrors.IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if got := Direction(7).String(); got != "Direction(7)" {
		t.Errorf("String() = %q", got)
	}
	if Forward.String() != "forward" || Backward.String() != "backward" {
		t.Errorf("unexpected direction names %q, %q", Forward, Backward)
	}
}

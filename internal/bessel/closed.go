package bessel

import "math"

// J0 returns the closed form j_0(x) = sin(x)/x.
func J0(x float64) (float64, error) {
	if err := checkArgument("j0", x); err != nil {
		return 0, err
	}
	return j0(x), nil
}

// J1 returns the closed form j_1(x) = sin(x)/x² − cos(x)/x.
func J1(x float64) (float64, error) {
	if err := checkArgument("j1", x); err != nil {
		return 0, err
	}
	return j1(x), nil
}

func j0(x float64) float64 {
	return math.Sin(x) / x
}

func j1(x float64) float64 {
	s, c := math.Sincos(x)
	return s/(x*x) - c/x
}

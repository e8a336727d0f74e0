package calibration

import (
	"bytes"
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/logging"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/internal/testutil"
)

var series = reference.NewSeries(reference.DefaultPrecision)

func TestSweepMargins(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		x          float64
		lMax       int
		maxMargin  int
		wantMargin int
	}{
		{"Small argument", 1, 8, 10, 3},
		{"Default demonstration point", 10, 25, 20, 6},
		{"Argument beyond the default margin", 20, 10, 30, 24},
		{"No margin converges", 50, 10, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := SweepMargins(context.Background(), tt.x, tt.lMax, series, tt.maxMargin, 1e-10)
			require.NoError(t, err)
			require.Len(t, report.Errors, tt.maxMargin)
			assert.Equal(t, tt.wantMargin, report.Margin, "errors: %v", report.Errors)
			assert.Equal(t, tt.wantMargin > 0, report.Met())
			for m := 1; m < report.Margin; m++ {
				assert.Greater(t, report.Errors[m-1], 1e-10, "margin %d", m)
			}
		})
	}
}

func TestSweeperConcurrentMatchesSequential(t *testing.T) {
	t.Parallel()
	seq, err := SweepMargins(context.Background(), 10, 25, series, 12, 1e-10)
	require.NoError(t, err)
	par, err := Sweeper{Oracle: series, MaxMargin: 12, Tolerance: 1e-10, Workers: 4}.Sweep(context.Background(), 10, 25)
	require.NoError(t, err)
	assert.Equal(t, seq, par)
}

func TestSweepErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := SweepMargins(ctx, 0, 5, series, 10, 1e-10)
	assert.True(t, apperrors.IsDomainError(err), "x=0: %v", err)

	for _, s := range []Sweeper{
		{Oracle: nil, MaxMargin: 5, Tolerance: 1e-10},
		{Oracle: series, MaxMargin: 0, Tolerance: 1e-10},
		{Oracle: series, MaxMargin: 5, Tolerance: 0},
		{Oracle: series, MaxMargin: 5, Tolerance: math.NaN()},
	} {
		_, err := s.Sweep(ctx, 1, 5)
		assert.True(t, errors.Is(err, ErrInvalidSweep), "%+v: %v", s, err)
		assert.True(t, apperrors.IsConfigError(err))
	}

	_, err = SweepMargins(ctx, 1, -1, series, 5, 1e-10)
	assert.ErrorIs(t, err, bessel.ErrOrderOutOfRange)

	_, err = SweepMargins(ctx, 1, 3, reference.Table{}, 5, 1e-10)
	var calcErr apperrors.CalculationError
	assert.ErrorAs(t, err, &calcErr)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = SweepMargins(canceled, 1, 3, series, 5, 1e-10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOverflowingMarginRecordsInfinity(t *testing.T) {
	t.Parallel()
	// At x = 1e-300 the second downward step overflows even after
	// renormalization, at every margin; the sweep still completes.
	oracle := reference.Func(func(l int, x float64) float64 { return 1 })
	report, err := SweepMargins(context.Background(), 1e-300, 1, oracle, 3, 1e-10)
	require.NoError(t, err)
	for _, e := range report.Errors {
		assert.True(t, math.IsInf(e, 1), "errors: %v", report.Errors)
	}
	assert.False(t, report.Met())
}

func testConfig(xs ...float64) config.AppConfig {
	return config.AppConfig{
		Xs:        xs,
		LMax:      8,
		Tolerance: 1e-10,
		MaxMargin: 10,
		Workers:   2,
		Timeout:   time.Minute,
	}
}

func TestRunCalibration(t *testing.T) {
	t.Run("Recommendation", func(t *testing.T) {
		var out bytes.Buffer
		code := RunCalibration(context.Background(), testConfig(0.1, 1), series, &out, logging.NewNopLogger())
		got := testutil.StripAnsiCodes(out.String())
		assert.Equal(t, apperrors.ExitSuccess, code, got)
		assert.Contains(t, got, "Calibration at x = 1, l_max = 8")
		assert.Contains(t, got, "(Smallest)")
		assert.Contains(t, got, "Recommended setting: -margin 3")
	})

	t.Run("No margin converges", func(t *testing.T) {
		var out bytes.Buffer
		cfg := testConfig(50)
		cfg.LMax, cfg.MaxMargin = 10, 5
		code := RunCalibration(context.Background(), cfg, series, &out, nil)
		assert.Equal(t, apperrors.ExitErrorStability, code)
		assert.Contains(t, out.String(), "No margin met the tolerance")
	})

	t.Run("Report file", func(t *testing.T) {
		var out bytes.Buffer
		cfg := testConfig(1)
		cfg.OutputFile = filepath.Join(t.TempDir(), "reports", "margins.txt")
		code := RunCalibration(context.Background(), cfg, series, &out, nil)
		require.Equal(t, apperrors.ExitSuccess, code, out.String())
		assert.Contains(t, out.String(), "Report saved to")

		data, err := os.ReadFile(cfg.OutputFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# Spherical Bessel recurrence report")
		assert.Contains(t, string(data), "(Smallest)")
	})

	t.Run("Domain error", func(t *testing.T) {
		var out bytes.Buffer
		code := RunCalibration(context.Background(), testConfig(0), series, &out, nil)
		assert.Equal(t, apperrors.ExitErrorConfig, code)
	})
}

func TestReportOutput(t *testing.T) {
	t.Parallel()
	report := Report{X: 2, LMax: 4, Tolerance: 1e-10, Errors: []float64{1e-3, math.Inf(1), 1e-12}, Margin: 3}

	var buf bytes.Buffer
	require.NoError(t, WriteReports(&buf, []Report{report}))
	got := buf.String()
	assert.NotContains(t, got, "\x1b[")
	assert.Contains(t, got, "failed")
	assert.Contains(t, got, "1.00e-12 (Smallest)")
	assert.Equal(t, 1, strings.Count(got, "(Smallest)"))

	resp := report.ToResponse()
	assert.Equal(t, 3, resp.Margin)
	assert.Len(t, resp.Errors, 3)
	assert.True(t, math.IsInf(float64(resp.Errors[1]), 1))
}

package orchestration

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/goleak"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/cli"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/logging"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/internal/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// slowEvaluator records how many evaluations run at the same time.
type slowEvaluator struct {
	active  *atomic.Int32
	maxSeen *atomic.Int32
}

func (s slowEvaluator) Evaluate(ctx context.Context, x float64, lMax int, opts bessel.Options) (bessel.Sequence, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	seq := make(bessel.Sequence, lMax+1)
	for l := range seq {
		seq[l] = x
	}
	return seq, nil
}

func (slowEvaluator) Method() string { return "slow" }
func (slowEvaluator) Name() string   { return "Slow" }

func defaultConfig(xs ...float64) config.AppConfig {
	return config.AppConfig{
		Xs:        xs,
		LMax:      8,
		Method:    config.DefaultMethod,
		Orders:    config.DefaultOrders,
		Timeout:   time.Minute,
		Workers:   2,
		Precision: reference.DefaultPrecision,
	}
}

func TestCompareGridKeepsInputOrder(t *testing.T) {
	t.Parallel()
	var active, maxSeen atomic.Int32
	ev := slowEvaluator{active: &active, maxSeen: &maxSeen}
	xs := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	oracle := reference.Func(func(_ int, x float64) float64 { return x })

	results := CompareGrid(context.Background(), xs, 2, []bessel.Evaluator{ev}, oracle, bessel.Options{}, 3)

	if len(results) != len(xs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(xs))
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("point %d: %v", i, res.Err)
		}
		if res.X != xs[i] || res.Table.X != xs[i] {
			t.Errorf("result %d holds x=%v (table %v), want %v", i, res.X, res.Table.X, xs[i])
		}
		if got := res.Table.MaxError("slow"); got != 0 {
			t.Errorf("x=%v: max error %v, want 0", xs[i], got)
		}
	}
	if got := maxSeen.Load(); got > 3 {
		t.Errorf("%d evaluations ran concurrently, want at most 3", got)
	}
}

func TestCompareGridRecordsFailuresPerPoint(t *testing.T) {
	t.Parallel()
	results := CompareGrid(context.Background(), []float64{1, 0, 2}, 5, realEvaluators(t),
		reference.NewSeries(reference.DefaultPrecision), bessel.Options{}, 0)

	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("valid points failed: %v, %v", results[0].Err, results[2].Err)
	}
	if !apperrors.IsDomainError(results[1].Err) {
		t.Errorf("x=0: err = %v, want domain error", results[1].Err)
	}
	if results[1].Table.Cells != nil {
		t.Error("failed point must not carry a table")
	}
}

func TestCompareGridCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := CompareGrid(ctx, []float64{1, 2, 3}, 5, realEvaluators(t),
		reference.NewSeries(reference.DefaultPrecision), bessel.Options{}, 2)
	for i, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("point %d: err = %v, want context.Canceled", i, res.Err)
		}
	}
}

func TestCompareGridProgressAndLogging(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewLogger(zerolog.SyncWriter(&buf), "grid", "debug")
	xs := []float64{0.5, 0, 1.5}
	progress := make(chan cli.ProgressUpdate, len(xs))

	CompareGrid(context.Background(), xs, 4, realEvaluators(t), reference.NewSeries(reference.DefaultPrecision),
		bessel.Options{}, 2, WithProgress(progress), WithLogger(logger))
	close(progress)

	seen := make(map[int]bool)
	for u := range progress {
		if u.Value != 1 {
			t.Errorf("update %+v, want Value 1", u)
		}
		seen[u.Index] = true
	}
	if len(seen) != len(xs) {
		t.Errorf("progress for %d points, want %d", len(seen), len(xs))
	}
	logs := buf.String()
	if strings.Count(logs, "grid point done") != 2 || strings.Count(logs, "grid point failed") != 1 {
		t.Errorf("unexpected log events:\n%s", logs)
	}
	if !strings.Contains(logs, `"component":"grid"`) {
		t.Errorf("log events should carry the component:\n%s", logs)
	}
}

func TestExecuteComparisons(t *testing.T) {
	var out bytes.Buffer
	cfg := defaultConfig(0.1, 1, 10)
	results := ExecuteComparisons(context.Background(), realEvaluators(t),
		reference.NewSeries(cfg.Precision), cfg, &out, logging.NewNopLogger())

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("x=%v: %v", res.X, res.Err)
		}
	}
	if !strings.Contains(testutil.StripAnsiCodes(out.String()), "3/3 points") {
		t.Errorf("progress display missing final line: %q", out.String())
	}
}

func TestAnalyzeComparisonResults(t *testing.T) {
	t.Parallel()
	oracle := reference.NewSeries(reference.DefaultPrecision)

	t.Run("Success", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig(0.1, 1, 10)
		cfg.LMax = 25
		results := CompareGrid(context.Background(), cfg.Xs, cfg.LMax, realEvaluators(t), oracle, bessel.Options{}, 2)
		var out bytes.Buffer
		code := AnalyzeComparisonResults(results, cfg, &out)
		got := testutil.StripAnsiCodes(out.String())
		if code != apperrors.ExitSuccess {
			t.Fatalf("exit code = %d, want %d\n%s", code, apperrors.ExitSuccess, got)
		}
		for _, want := range []string{"--- x = 0.1", "up error", "down error", "Comparison Summary", "Global Status: Success"} {
			if !strings.Contains(got, want) {
				t.Errorf("output lacks %q:\n%s", want, got)
			}
		}
	})

	t.Run("Failed point", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig(1, 0)
		results := CompareGrid(context.Background(), cfg.Xs, cfg.LMax, realEvaluators(t), oracle, bessel.Options{}, 2)
		var out bytes.Buffer
		if code := AnalyzeComparisonResults(results, cfg, &out); code != apperrors.ExitErrorConfig {
			t.Errorf("exit code = %d, want %d", code, apperrors.ExitErrorConfig)
		}
		if !strings.Contains(out.String(), "Failure") {
			t.Errorf("output lacks failure line:\n%s", out.String())
		}
	})

	t.Run("Stability violation near a zero of j0", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig(math.Pi)
		cfg.LMax = 5
		results := CompareGrid(context.Background(), cfg.Xs, cfg.LMax, realEvaluators(t), oracle, bessel.Options{}, 1)
		var out bytes.Buffer
		if code := AnalyzeComparisonResults(results, cfg, &out); code != apperrors.ExitErrorStability {
			t.Errorf("exit code = %d, want %d\n%s", code, apperrors.ExitErrorStability, out.String())
		}
		if !strings.Contains(out.String(), "-anchor larger") {
			t.Errorf("output lacks the anchor hint:\n%s", out.String())
		}
	})
}

func TestWriteReportAndQuietResults(t *testing.T) {
	t.Parallel()
	cfg := defaultConfig(1, 0)
	cfg.LMax = 3
	results := CompareGrid(context.Background(), cfg.Xs, cfg.LMax, realEvaluators(t),
		reference.NewSeries(reference.DefaultPrecision), bessel.Options{}, 1)

	var report bytes.Buffer
	if err := WriteReport(&report, results, cfg); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	got := report.String()
	if strings.Contains(got, "\x1b[") {
		t.Error("report must not contain escape codes")
	}
	for _, want := range []string{"# l_max: 3, margin: 15, anchor: j0", "x = 1\n", "x = 0\nerror:"} {
		if !strings.Contains(got, want) {
			t.Errorf("report lacks %q:\n%s", want, got)
		}
	}

	var quiet bytes.Buffer
	DisplayQuietResults(&quiet, results)
	lines := strings.Split(strings.TrimSpace(quiet.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("quiet output has %d lines, want 2:\n%s", len(lines), quiet.String())
	}
	if !strings.HasPrefix(lines[0], "1 up=") || !strings.Contains(lines[0], " down=") {
		t.Errorf("quiet line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "0 error ") {
		t.Errorf("quiet line = %q", lines[1])
	}
}

func TestDisplayOrders(t *testing.T) {
	t.Parallel()
	if got := displayOrders([]int{3, 5, 8}, 5); len(got) != 2 || got[1] != 5 {
		t.Errorf("displayOrders = %v, want [3 5]", got)
	}
	if got := displayOrders(nil, 2); len(got) != 3 {
		t.Errorf("displayOrders(nil) = %v, want [0 1 2]", got)
	}
}


func TestNewComparisonResponse(t *testing.T) {
	t.Parallel()
	results := CompareGrid(context.Background(), []float64{0.1, 0}, 3, realEvaluators(t),
		reference.NewSeries(reference.DefaultPrecision), bessel.Options{}, 1)

	ok := NewComparisonResponse(results[0], 3, bessel.Options{})
	if ok.Error != "" || len(ok.Cells) != 8 {
		t.Fatalf("response = %+v, want 8 cells and no error", ok)
	}
	if ok.Margin != bessel.DefaultMargin || ok.Anchor != "j0" {
		t.Errorf("margin/anchor = %d/%s", ok.Margin, ok.Anchor)
	}
	if ok.Ratio == nil || len(ok.MaxError) != 2 {
		t.Errorf("missing summary: ratio=%v max=%v", ok.Ratio, ok.MaxError)
	}

	failed := NewComparisonResponse(results[1], 3, bessel.Options{Margin: 20, Anchor: bessel.AnchorLarger})
	if failed.Error == "" || failed.Cells != nil || failed.Margin != 20 || failed.Anchor != "larger" {
		t.Errorf("failed response = %+v", failed)
	}
}

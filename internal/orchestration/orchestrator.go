// Package orchestration runs the comparison harness over a grid of arguments
// and turns the resulting error tables into reports and exit codes.
package orchestration

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/cli"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/logging"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/internal/ui"
)

// StabilityTolerance is the downward error above which a grid point where
// the downward walk also loses to the upward walk is reported as a stability
// violation.
const StabilityTolerance = 1e-8

// GridResult is the outcome of Compare at one argument of the grid.
type GridResult struct {
	X        float64
	Table    ErrorTable
	Duration time.Duration
	// Err is set when the point failed; Table is then the zero value.
	Err error
}

// GridOption configures CompareGrid.
type GridOption func(*gridSettings)

type gridSettings struct {
	progress chan<- cli.ProgressUpdate
	logger   logging.Logger
}

// WithProgress sends one update per completed point to ch. The channel must
// be buffered for every point or drained concurrently.
func WithProgress(ch chan<- cli.ProgressUpdate) GridOption {
	return func(s *gridSettings) { s.progress = ch }
}

// WithLogger logs a debug event per point.
func WithLogger(l logging.Logger) GridOption {
	return func(s *gridSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// CompareGrid runs Compare for every x, at most workers at a time, and
// returns the results in the order of xs. A failing point does not stop the
// others. Once ctx is done no new point is started and the remaining results
// carry ctx.Err().
func CompareGrid(ctx context.Context, xs []float64, lMax int, evaluators []bessel.Evaluator, oracle reference.Oracle, opts bessel.Options, workers int, options ...GridOption) []GridResult {
	settings := gridSettings{logger: logging.NewNopLogger()}
	for _, o := range options {
		o(&settings)
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]GridResult, len(xs))
	for i, x := range xs {
		results[i].X = x
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range xs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(xs); j++ {
				results[j].Err = err
			}
			break
		}
		idx := i
		g.Go(func() error {
			start := time.Now()
			table, err := Compare(ctx, xs[idx], lMax, evaluators, oracle, opts)
			res := &results[idx]
			res.Table, res.Err, res.Duration = table, err, time.Since(start)

			fields := []logging.Field{
				logging.Float64("x", xs[idx]),
				logging.Int("lmax", lMax),
				logging.Duration("duration", res.Duration),
			}
			if err != nil {
				settings.logger.Debug("grid point failed", append(fields, logging.Err(err))...)
			} else {
				settings.logger.Debug("grid point done", fields...)
			}
			if settings.progress != nil {
				settings.progress <- cli.ProgressUpdate{Index: idx, Value: 1}
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ExecuteComparisons runs the grid described by cfg while the progress
// display runs on out.
func ExecuteComparisons(ctx context.Context, evaluators []bessel.Evaluator, oracle reference.Oracle, cfg config.AppConfig, out io.Writer, logger logging.Logger) []GridResult {
	progressChan := make(chan cli.ProgressUpdate, len(cfg.Xs))

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(cfg.Xs), out)

	results := CompareGrid(ctx, cfg.Xs, cfg.LMax, evaluators, oracle, cfg.ToEvaluationOptions(), cfg.Workers,
		WithProgress(progressChan), WithLogger(logger))

	close(progressChan)
	displayWg.Wait()
	return results
}

// displayOrders returns the configured orders that exist in a table of
// highest order lMax, or every order when none is configured.
func displayOrders(orders []int, lMax int) []int {
	if len(orders) == 0 {
		all := make([]int, lMax+1)
		for l := range all {
			all[l] = l
		}
		return all
	}
	shown := make([]int, 0, len(orders))
	for _, l := range orders {
		if l >= 0 && l <= lMax {
			shown = append(shown, l)
		}
	}
	return shown
}

// writeTable prints the rows of t for the given orders.
func writeTable(w io.Writer, t ErrorTable, orders []int, colored bool) error {
	paint := func(code string) string {
		if colored {
			return code
		}
		return ""
	}
	reset := paint(ui.ColorReset())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%sl%s\t%sreference%s", paint(ui.ColorUnderline()), reset, paint(ui.ColorUnderline()), reset)
	for _, m := range t.Methods {
		fmt.Fprintf(tw, "\t%s%s%s\t%s%s error%s", paint(ui.ColorUnderline()), m, reset, paint(ui.ColorUnderline()), m, reset)
	}
	fmt.Fprintln(tw)
	for _, l := range orders {
		var ref float64
		if c, ok := t.At(t.Methods[0], l); ok {
			ref = c.Reference
		}
		fmt.Fprintf(tw, "%d\t%s", l, cli.FormatValue(ref))
		for _, m := range t.Methods {
			c, _ := t.At(m, l)
			fmt.Fprintf(tw, "\t%s\t%s%s%s", cli.FormatValue(c.Value),
				paint(ui.ColorForError(c.Error)), cli.FormatError(c.Error, c.Absolute), reset)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

// violatesStability reports whether the downward walk is both inaccurate and
// worse than the upward walk at some order with a nonzero reference.
func violatesStability(t ErrorTable) bool {
	down, ok := t.Cells[bessel.MethodDown]
	if !ok {
		return false
	}
	up, ok := t.Cells[bessel.MethodUp]
	if !ok {
		return false
	}
	for l, cd := range down {
		if cd.Absolute {
			continue
		}
		if cd.Error > StabilityTolerance && cd.Error > up[l].Error {
			return true
		}
	}
	return false
}

// AnalyzeComparisonResults prints the error table of every grid point and a
// summary per method, and returns the exit code of the run.
//
// A failed point yields the exit code of its error class. A point where the
// downward walk is less accurate than the upward walk beyond
// StabilityTolerance yields apperrors.ExitErrorStability.
func AnalyzeComparisonResults(results []GridResult, cfg config.AppConfig, out io.Writer) int {
	var firstErr error
	var firstErrDuration time.Duration
	var unstable []float64

	for _, res := range results {
		fmt.Fprintf(out, "\n--- x = %s%g%s (%s) ---\n", ui.ColorMagenta(), res.X, ui.ColorReset(), cli.FormatExecutionDuration(res.Duration))
		if res.Err != nil {
			fmt.Fprintf(out, "%s❌ Failure: %v%s\n", ui.ColorRed(), res.Err, ui.ColorReset())
			if firstErr == nil {
				firstErr, firstErrDuration = res.Err, res.Duration
			}
			continue
		}
		if err := writeTable(out, res.Table, displayOrders(cfg.Orders, res.Table.LMax), true); err != nil {
			fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
		}
		if violatesStability(res.Table) {
			unstable = append(unstable, res.X)
		}
	}

	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sx%s\t%smax error up%s\t%smax error down%s\t%sup/down at l_max%s\n",
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset(), ui.ColorUnderline(), ui.ColorReset())
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(tw, "%g\t-\t-\t%sfailed%s\n", res.X, ui.ColorRed(), ui.ColorReset())
			continue
		}
		ratio := "-"
		if r, err := StabilityVerdict(res.Table, bessel.MethodUp, bessel.MethodDown, res.Table.LMax); err == nil {
			ratio = strconv.FormatFloat(r, 'e', 2, 64)
		}
		fmt.Fprintf(tw, "%g\t%s\t%s\t%s\n", res.X,
			summaryError(res.Table, bessel.MethodUp), summaryError(res.Table, bessel.MethodDown), ratio)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}

	if firstErr != nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. At least one grid point could not be evaluated.\n")
		return apperrors.HandleCalculationError(firstErr, firstErrDuration, out, cli.CLIColorProvider{})
	}
	if len(unstable) > 0 {
		fmt.Fprintf(out, "\n%sGlobal Status: Stability violation%s at x = %v: the downward walk lost to the upward walk.\n",
			ui.ColorRed(), ui.ColorReset(), unstable)
		fmt.Fprintf(out, "Try a larger -margin (see -calibrate) or -anchor larger near zeros of j_0.\n")
		return apperrors.ExitErrorStability
	}
	fmt.Fprintf(out, "\nGlobal Status: %sSuccess%s.\n", ui.ColorGreen(), ui.ColorReset())
	return apperrors.ExitSuccess
}

func summaryError(t ErrorTable, method string) string {
	e := t.MaxError(method)
	if math.IsNaN(e) {
		return "-"
	}
	return ui.ColorForError(e) + cli.FormatError(e, false) + ui.ColorReset()
}

// WriteReport writes every order of every grid point without colors.
func WriteReport(w io.Writer, results []GridResult, cfg config.AppConfig) error {
	opts := cfg.ToEvaluationOptions()
	margin := opts.Margin
	if margin == 0 {
		margin = bessel.DefaultMargin
	}
	fmt.Fprintf(w, "# l_max: %d, margin: %d, anchor: %s\n", cfg.LMax, margin, opts.Anchor)
	for _, res := range results {
		fmt.Fprintf(w, "\nx = %g\n", res.X)
		if res.Err != nil {
			fmt.Fprintf(w, "error: %v\n", res.Err)
			continue
		}
		if err := writeTable(w, res.Table, displayOrders(nil, res.Table.LMax), false); err != nil {
			return err
		}
	}
	return nil
}

// DisplayQuietResults prints one line per grid point: x followed by the
// maximum error of each method, or the error.
func DisplayQuietResults(out io.Writer, results []GridResult) {
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintf(out, "%g error %v\n", res.X, res.Err)
			continue
		}
		fmt.Fprintf(out, "%g", res.X)
		for _, m := range res.Table.Methods {
			fmt.Fprintf(out, " %s=%s", m, cli.FormatError(res.Table.MaxError(m), false))
		}
		fmt.Fprintln(out)
	}
}

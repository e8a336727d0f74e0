package calibration

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/cli"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/logging"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/pkg/models"
)

// ToResponse converts the report into its JSON representation.
func (r Report) ToResponse() models.CalibrationResponse {
	return models.CalibrationResponse{
		X:         r.X,
		LMax:      r.LMax,
		Tolerance: r.Tolerance,
		Margin:    r.Margin,
		Errors:    models.Floats(r.Errors),
	}
}

// RunAll sweeps every argument of cfg.Xs, one after the other, while the
// progress display runs on out. The first error aborts the run.
func RunAll(ctx context.Context, cfg config.AppConfig, oracle reference.Oracle, out io.Writer, logger logging.Logger) ([]Report, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	anchor, _ := bessel.ParseAnchor(cfg.Anchor)
	s := Sweeper{
		Oracle:    oracle,
		MaxMargin: cfg.MaxMargin,
		Tolerance: cfg.Tolerance,
		Anchor:    anchor,
		Workers:   cfg.Workers,
	}

	var wg sync.WaitGroup
	progressChan := make(chan cli.ProgressUpdate, len(cfg.Xs))
	wg.Add(1)
	go cli.DisplayProgress(&wg, progressChan, len(cfg.Xs), out)
	defer func() {
		close(progressChan)
		wg.Wait()
	}()

	reports := make([]Report, 0, len(cfg.Xs))
	for i, x := range cfg.Xs {
		start := time.Now()
		report, err := s.Sweep(ctx, x, cfg.LMax)
		if err != nil {
			logger.Error("calibration failed", err, logging.Float64("x", x), logging.Int("lmax", cfg.LMax))
			return reports, err
		}
		logger.Debug("calibration done",
			logging.Float64("x", x),
			logging.Int("margin", report.Margin),
			logging.Duration("duration", time.Since(start)))
		reports = append(reports, report)
		progressChan <- cli.ProgressUpdate{Index: i, Value: 1}
	}
	return reports, nil
}

// RunCalibration sweeps the margins for every argument of cfg.Xs, prints one
// table per argument and a recommendation, and returns the exit code.
//
// The run fails with apperrors.ExitErrorStability when no margin up to
// cfg.MaxMargin meets the tolerance at some argument.
func RunCalibration(ctx context.Context, cfg config.AppConfig, oracle reference.Oracle, out io.Writer, logger logging.Logger) int {
	fmt.Fprintf(out, "--- Calibration Mode: Finding the Smallest Downward Margin ---\n")
	fmt.Fprintf(out, "Target relative error %s%g%s over orders 0..%d, margins 1..%d.\n",
		cli.ColorYellow(), cfg.Tolerance, cli.ColorReset(), cfg.LMax, cfg.MaxMargin)

	start := time.Now()
	reports, err := RunAll(ctx, cfg, oracle, out, logger)
	if err != nil {
		fmt.Fprintf(out, "%s❌ Calibration failed%s\n", cli.ColorRed(), cli.ColorReset())
		return apperrors.HandleCalculationError(err, time.Since(start), out, cli.CLIColorProvider{})
	}

	for _, r := range reports {
		printReport(out, r, true)
	}
	code := printRecommendation(out, reports)

	if cfg.OutputFile != "" {
		if err := cli.WriteReportToFile(cfg.OutputFile, func(w io.Writer) error { return WriteReports(w, reports) }); err != nil {
			fmt.Fprintf(out, "%sError saving report: %v%s\n", cli.ColorRed(), err, cli.ColorReset())
			return apperrors.ExitErrorGeneric
		}
		cli.ConfirmSaved(out, cli.OutputConfig{OutputFile: cfg.OutputFile, Quiet: cfg.Quiet})
	}
	return code
}

// printReport prints the error of every margin of r, marking the smallest
// margin meeting the tolerance.
func printReport(out io.Writer, r Report, colored bool) {
	paint := func(code string) string {
		if colored {
			return code
		}
		return ""
	}
	fmt.Fprintf(out, "\n--- Calibration at x = %g, l_max = %d ---\n", r.X, r.LMax)
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "  %sMargin%s\t│ %sMax relative error%s\n",
		paint(cli.ColorUnderline()), paint(cli.ColorReset()), paint(cli.ColorUnderline()), paint(cli.ColorReset()))
	fmt.Fprintf(tw, "  %s\t┼%s\n", strings.Repeat("─", 8), strings.Repeat("─", 24))
	for i, e := range r.Errors {
		margin := i + 1
		label := cli.FormatError(e, false)
		if math.IsInf(e, 1) {
			label = "failed"
		}
		highlight := ""
		if margin == r.Margin {
			highlight = fmt.Sprintf(" %s(Smallest)%s", paint(cli.ColorGreen()), paint(cli.ColorReset()))
		}
		if margin == bessel.DefaultMargin {
			highlight += " (default)"
		}
		fmt.Fprintf(tw, "  %s%d%s\t│ %s%s\n",
			paint(cli.ColorCyan()), margin, paint(cli.ColorReset()), label, highlight)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
}

// printRecommendation prints the margin meeting the tolerance at every
// argument and returns the exit code.
func printRecommendation(out io.Writer, reports []Report) int {
	best := 0
	var missed []float64
	for _, r := range reports {
		if !r.Met() {
			missed = append(missed, r.X)
			continue
		}
		best = max(best, r.Margin)
	}
	if len(missed) > 0 {
		fmt.Fprintf(out, "\n%sNo margin met the tolerance at x = %v.%s Raise -max-margin or relax -tolerance.\n",
			cli.ColorRed(), missed, cli.ColorReset())
		return apperrors.ExitErrorStability
	}
	fmt.Fprintf(out, "\n%s✅ Recommended setting: %s-margin %d%s", cli.ColorGreen(), cli.ColorYellow(), best, cli.ColorReset())
	if best > bessel.DefaultMargin {
		fmt.Fprintf(out, " (the default %d is not enough for these arguments)", bessel.DefaultMargin)
	}
	fmt.Fprintln(out)
	return apperrors.ExitSuccess
}

// WriteReports writes the sweeps without colors.
func WriteReports(w io.Writer, reports []Report) error {
	for _, r := range reports {
		printReport(w, r, false)
	}
	return nil
}

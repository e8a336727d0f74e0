package cli

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/config"
)

// GetEvaluatorsToRun returns the evaluators selected by cfg.Method, in the
// factory's sorted key order when every method is requested.
func GetEvaluatorsToRun(cfg config.AppConfig, factory bessel.EvaluatorFactory) []bessel.Evaluator {
	if cfg.Method == config.DefaultMethod {
		keys := factory.List()
		evaluators := make([]bessel.Evaluator, 0, len(keys))
		for _, k := range keys {
			if ev, err := factory.Get(k); err == nil {
				evaluators = append(evaluators, ev)
			}
		}
		return evaluators
	}
	if ev, err := factory.Get(cfg.Method); err == nil {
		return []bessel.Evaluator{ev}
	}
	return nil
}

// fmaSupport describes whether the host can fuse multiply-adds. The
// recurrence rounds its product explicitly, so results do not depend on it,
// but it is worth knowing when comparing against other implementations.
func fmaSupport() string {
	switch runtime.GOARCH {
	case "amd64", "386":
		if cpu.X86.HasFMA {
			return "available"
		}
		return "unavailable"
	case "arm64", "ppc64", "ppc64le", "s390x":
		return "available"
	}
	return "unknown"
}

func formatXs(xs []float64) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return strings.Join(parts, ", ")
}

// PrintExecutionConfig displays the run parameters and the environment.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	writeOut(out, "--- Execution Configuration ---\n")
	writeOut(out, "Evaluating %sj_0..j_%d%s at x = %s%s%s with a timeout of %s%s%s.\n",
		ColorMagenta(), cfg.LMax, ColorReset(),
		ColorMagenta(), formatXs(cfg.Xs), ColorReset(),
		ColorYellow(), cfg.Timeout, ColorReset())
	margin := cfg.Margin
	if margin == 0 {
		margin = bessel.DefaultMargin
	}
	anchor := cfg.Anchor
	if anchor == "" {
		anchor = bessel.AnchorJ0.String()
	}
	writeOut(out, "Downward start: l_max + %s%d%s, normalization anchor %s%s%s, oracle precision %s%d%s bits.\n",
		ColorCyan(), margin, ColorReset(),
		ColorCyan(), anchor, ColorReset(),
		ColorCyan(), cfg.Precision, ColorReset())
	writeOut(out, "Environment: %s%d%s logical processors, Go %s%s%s, fused multiply-add %s%s%s.\n",
		ColorCyan(), runtime.NumCPU(), ColorReset(),
		ColorCyan(), runtime.Version(), ColorReset(),
		ColorCyan(), fmaSupport(), ColorReset())
}

// PrintExecutionMode displays whether one or both directions are evaluated.
func PrintExecutionMode(evaluators []bessel.Evaluator, out io.Writer) {
	var modeDesc string
	switch len(evaluators) {
	case 0:
		modeDesc = "No evaluator selected"
	case 1:
		modeDesc = fmt.Sprintf("Single evaluation with %s%s%s",
			ColorGreen(), evaluators[0].Name(), ColorReset())
	default:
		modeDesc = "Comparison of upward and downward recurrences against the reference"
	}
	writeOut(out, "Execution mode: %s.\n", modeDesc)
	writeOut(out, "\n--- Starting Execution ---\n")
}

func writeOut(out io.Writer, format string, a ...any) {
	fmt.Fprintf(out, format, a...)
}

// Package config provides the configuration management for the besselcalc
// application. It defines the data structure for the configuration, handles
// the parsing of command-line arguments, environment overrides and the
// optional YAML run file, and validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"
	"time"

	"github.com/agbru/besselcalc/internal/bessel"
	apperrors "github.com/agbru/besselcalc/internal/errors"
)

const (
	// EnvPrefix is the prefix for all environment variables used by besselcalc.
	EnvPrefix = "BESSELCALC_"
)

// Default configuration values.
// These can be overridden via the run file, environment variables or flags.
const (
	// DefaultLMax is the default highest order evaluated.
	DefaultLMax = 25
	// DefaultTimeout is the default evaluation timeout.
	DefaultTimeout = time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultMethod evaluates both directions.
	DefaultMethod = "all"
	// DefaultPrecision is the oracle mantissa size in bits.
	DefaultPrecision = 256
	// DefaultTolerance is the relative error the calibration sweep aims for.
	DefaultTolerance = 1e-10
	// DefaultMaxMargin bounds the calibration sweep.
	DefaultMaxMargin = 40
	// MinPrecision is the smallest oracle precision accepted; anything below
	// float64's 53-bit mantissa cannot serve as a reference.
	MinPrecision = 53
)

var (
	// DefaultXs are the arguments of the classic demonstration run.
	DefaultXs = []float64{0.1, 1, 10}
	// DefaultOrders are the orders printed in the comparison tables.
	DefaultOrders = []int{3, 5, 8}
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// Xs are the arguments x at which the sequences are evaluated.
	Xs []float64
	// LMax is the highest order evaluated.
	LMax int
	// Margin is the number of orders the downward walk starts above LMax.
	Margin int
	// Method selects "all", "up" or "down".
	Method string
	// Orders are the orders shown in the comparison tables.
	Orders []int
	// Timeout sets the maximum duration for the whole run.
	Timeout time.Duration
	// Workers bounds the number of grid points evaluated concurrently.
	Workers int
	// Precision is the oracle precision in bits.
	Precision uint
	// Anchor selects the downward normalization ("j0" or "larger").
	Anchor string
	// Tolerance is the target relative error for the calibration sweep.
	Tolerance float64
	// MaxMargin is the largest margin tried by the calibration sweep.
	MaxMargin int
	// Calibrate runs the margin sweep instead of the comparison.
	Calibrate bool
	// JSONOutput, if true, outputs the result in JSON format.
	JSONOutput bool
	// Quiet mode - one line per grid point, for scripting purposes.
	Quiet bool
	// OutputFile, if specified, saves the error tables to this file path.
	OutputFile string
	// NoColor, if true, disables all color output in the CLI.
	// Also respects the NO_COLOR environment variable.
	NoColor bool
	// ServerMode, if true, starts the application as an HTTP server.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string
	// ConfigFile is the path of the optional YAML run file.
	ConfigFile string
}

// ToEvaluationOptions converts the configuration into bessel.Options for use
// by the evaluators.
func (c AppConfig) ToEvaluationOptions() bessel.Options {
	anchor, _ := bessel.ParseAnchor(c.Anchor)
	return bessel.Options{
		Margin: c.Margin,
		Anchor: anchor,
	}
}

// Validate checks the semantic consistency of the configuration parameters.
// Arguments x are not checked here: x = 0 is a domain error reported by the
// evaluators for that grid point.
//
// Returns an error of type apperrors.ConfigError if the configuration is
// invalid, nil otherwise.
func (c AppConfig) Validate(availableMethods []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	if len(c.Xs) == 0 {
		return apperrors.NewConfigError("at least one argument x is required")
	}
	if c.LMax < 0 {
		return apperrors.NewConfigErrorCause(bessel.ErrOrderOutOfRange, "invalid lmax %d", c.LMax)
	}
	if c.Margin < 1 {
		return apperrors.NewConfigErrorCause(bessel.ErrInvalidMargin, "invalid margin %d", c.Margin)
	}
	for _, l := range c.Orders {
		if l < 0 {
			return apperrors.NewConfigErrorCause(bessel.ErrOrderOutOfRange, "invalid display order %d", l)
		}
	}
	if c.Workers < 1 {
		return apperrors.NewConfigError("workers must be at least 1: %d", c.Workers)
	}
	if c.Precision < MinPrecision {
		return apperrors.NewConfigError("oracle precision must be at least %d bits: %d", MinPrecision, c.Precision)
	}
	if _, ok := bessel.ParseAnchor(c.Anchor); !ok {
		return apperrors.NewConfigError("unrecognized anchor: '%s'. Valid anchors are: 'j0', 'larger'", c.Anchor)
	}
	if !(c.Tolerance > 0) || math.IsInf(c.Tolerance, 0) {
		return apperrors.NewConfigError("tolerance must be a positive number: %g", c.Tolerance)
	}
	if c.MaxMargin < 1 {
		return apperrors.NewConfigError("max-margin must be at least 1: %d", c.MaxMargin)
	}
	isMethodAvailable := false
	for _, m := range availableMethods {
		if m == c.Method {
			isMethodAvailable = true
			break
		}
	}
	if c.Method != DefaultMethod && !isMethodAvailable {
		return apperrors.NewConfigError("unrecognized method: '%s'. Valid methods are: 'all' or [%s]", c.Method, strings.Join(availableMethods, ", "))
	}
	return nil
}

// ParseConfig parses the command-line arguments and populates an AppConfig.
// Values are resolved with the priority flags > environment > run file >
// defaults, then validated.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage information are printed.
//   - availableMethods: The valid method keys for validation.
//
// Returns:
//   - AppConfig: The populated configuration struct.
//   - error: flag.ErrHelp, a parse error or an apperrors.ConfigError.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableMethods []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	methodHelp := fmt.Sprintf("Recurrence direction: 'all' (default) or one of [%s].", strings.Join(availableMethods, ", "))

	config := AppConfig{
		Xs:     append([]float64(nil), DefaultXs...),
		Orders: append([]int(nil), DefaultOrders...),
	}
	var precision uint64
	fs.Var((*floatList)(&config.Xs), "x", "Comma-separated arguments x.")
	fs.IntVar(&config.LMax, "lmax", DefaultLMax, "Highest order l_max evaluated.")
	fs.IntVar(&config.Margin, "margin", bessel.DefaultMargin, "Orders above l_max at which the downward walk starts.")
	fs.StringVar(&config.Method, "method", DefaultMethod, methodHelp)
	fs.Var((*intList)(&config.Orders), "orders", "Comma-separated orders shown in the tables.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.IntVar(&config.Workers, "workers", runtime.NumCPU(), "Grid points evaluated concurrently.")
	fs.Uint64Var(&precision, "precision", DefaultPrecision, "Reference oracle precision in bits.")
	fs.StringVar(&config.Anchor, "anchor", bessel.AnchorJ0.String(), "Downward normalization: 'j0' or 'larger'.")
	fs.Float64Var(&config.Tolerance, "tolerance", DefaultTolerance, "Target relative error for -calibrate.")
	fs.IntVar(&config.MaxMargin, "max-margin", DefaultMaxMargin, "Largest margin tried by -calibrate.")
	fs.BoolVar(&config.Calibrate, "calibrate", false, "Sweep the downward margin instead of comparing the methods.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output results in JSON format.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR env var).")
	fs.StringVar(&config.OutputFile, "output", "", "Output file path for the error tables.")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode - minimal output for scripts.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.StringVar(&config.ConfigFile, "config", "", "YAML run file.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	config.Precision = uint(precision)

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		if err := applyFileOverrides(&config, fs, config.ConfigFile); err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, err
		}
	}
	applyEnvOverrides(&config, fs)

	config.Method = strings.ToLower(config.Method)
	config.Anchor = strings.ToLower(config.Anchor)
	if err := config.Validate(availableMethods); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		return AppConfig{}, err
	}
	return config, nil
}

// IsHelp reports whether err is the flag package's help request.
func IsHelp(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

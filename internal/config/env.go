package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as int, or the default value if not set
// or invalid.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvUint returns the value of the environment variable with the given key
// parsed as uint, or the default value if not set or invalid.
func getEnvUint(key string, defaultVal uint) uint {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 0); err == nil {
			return uint(parsed)
		}
	}
	return defaultVal
}

// getEnvFloat returns the value of the environment variable with the given key
// parsed as float64, or the default value if not set or invalid.
func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvBool returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as bool, or the default value if not set.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultVal
}

// getEnvDuration returns the value of the environment variable with the given key
// (prefixed with EnvPrefix) parsed as time.Duration, or the default value if not
// set or invalid. Accepts formats like "5m", "30s", "1h30m".
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

// getEnvFloats returns the comma-separated list held by the environment
// variable, or the default list if not set or invalid.
func getEnvFloats(key string, defaultVal []float64) []float64 {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := parseFloatList(val); err == nil && len(parsed) > 0 {
			return parsed
		}
	}
	return defaultVal
}

// getEnvInts is the integer counterpart of getEnvFloats.
func getEnvInts(key string, defaultVal []int) []int {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		if parsed, err := parseIntList(val); err == nil && len(parsed) > 0 {
			return parsed
		}
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > run file > Defaults.
//
// Supported environment variables:
//   - BESSELCALC_X: Comma-separated arguments (floats)
//   - BESSELCALC_LMAX: Highest order (int)
//   - BESSELCALC_MARGIN: Downward starting margin (int)
//   - BESSELCALC_METHOD: all, up or down (string)
//   - BESSELCALC_ORDERS: Comma-separated display orders (ints)
//   - BESSELCALC_TIMEOUT: Run timeout (duration: "1m", "30s")
//   - BESSELCALC_WORKERS: Concurrent grid points (int)
//   - BESSELCALC_PRECISION: Oracle precision in bits (uint)
//   - BESSELCALC_ANCHOR: j0 or larger (string)
//   - BESSELCALC_TOLERANCE: Calibration tolerance (float)
//   - BESSELCALC_MAX_MARGIN: Calibration sweep bound (int)
//   - BESSELCALC_PORT: Port for server mode (string)
//   - BESSELCALC_OUTPUT: Output file path (string)
//   - BESSELCALC_CONFIG: YAML run file (string)
//   - BESSELCALC_SERVER, _JSON, _QUIET, _NO_COLOR, _CALIBRATE: (bool: true/false, 1/0, yes/no)
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	applyNumericOverrides(config, fs)
	applyDurationOverrides(config, fs)
	applyStringOverrides(config, fs)
	applyBooleanOverrides(config, fs)
}

func applyNumericOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "x") {
		config.Xs = getEnvFloats("X", config.Xs)
	}
	if !isFlagSet(fs, "orders") {
		config.Orders = getEnvInts("ORDERS", config.Orders)
	}
	if !isFlagSet(fs, "lmax") {
		config.LMax = getEnvInt("LMAX", config.LMax)
	}
	if !isFlagSet(fs, "margin") {
		config.Margin = getEnvInt("MARGIN", config.Margin)
	}
	if !isFlagSet(fs, "workers") {
		config.Workers = getEnvInt("WORKERS", config.Workers)
	}
	if !isFlagSet(fs, "precision") {
		config.Precision = getEnvUint("PRECISION", config.Precision)
	}
	if !isFlagSet(fs, "tolerance") {
		config.Tolerance = getEnvFloat("TOLERANCE", config.Tolerance)
	}
	if !isFlagSet(fs, "max-margin") {
		config.MaxMargin = getEnvInt("MAX_MARGIN", config.MaxMargin)
	}
}

func applyDurationOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "timeout") {
		config.Timeout = getEnvDuration("TIMEOUT", config.Timeout)
	}
}

func applyStringOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "method") {
		config.Method = getEnvString("METHOD", config.Method)
	}
	if !isFlagSet(fs, "anchor") {
		config.Anchor = getEnvString("ANCHOR", config.Anchor)
	}
	if !isFlagSet(fs, "port") {
		config.Port = getEnvString("PORT", config.Port)
	}
	if !isFlagSet(fs, "output") && !isFlagSet(fs, "o") {
		config.OutputFile = getEnvString("OUTPUT", config.OutputFile)
	}
}

func applyBooleanOverrides(config *AppConfig, fs *flag.FlagSet) {
	if !isFlagSet(fs, "server") {
		config.ServerMode = getEnvBool("SERVER", config.ServerMode)
	}
	if !isFlagSet(fs, "json") {
		config.JSONOutput = getEnvBool("JSON", config.JSONOutput)
	}
	if !isFlagSet(fs, "quiet") && !isFlagSet(fs, "q") {
		config.Quiet = getEnvBool("QUIET", config.Quiet)
	}
	if !isFlagSet(fs, "no-color") {
		config.NoColor = getEnvBool("NO_COLOR", config.NoColor)
	}
	if !isFlagSet(fs, "calibrate") {
		config.Calibrate = getEnvBool("CALIBRATE", config.Calibrate)
	}
}

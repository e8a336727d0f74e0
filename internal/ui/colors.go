package ui

import "math"

// Color functions return ANSI escape codes from the current theme.

// ColorReset returns the reset escape code from the current theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color from the current theme.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color from the current theme.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color from the current theme.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color from the current theme.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info color from the current theme.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary color from the current theme.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code from the current theme.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code from the current theme.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Relative error bands used to colour error cells.
const (
	// AccurateBelow marks an error as fully accurate.
	AccurateBelow = 1e-10
	// DegradedBelow marks an error as usable but degraded.
	DegradedBelow = 1e-6
)

// ColorForError picks the theme color for a relative error: success below
// AccurateBelow, warning below DegradedBelow, error otherwise (NaN and Inf
// included).
func ColorForError(relErr float64) string {
	switch {
	case math.IsNaN(relErr):
		return ColorRed()
	case relErr < AccurateBelow:
		return ColorGreen()
	case relErr < DegradedBelow:
		return ColorYellow()
	default:
		return ColorRed()
	}
}

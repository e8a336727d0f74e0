package cli

import apperrors "github.com/agbru/besselcalc/internal/errors"

// Ensure CLIColorProvider implements apperrors.ColorProvider at compile time.
var _ apperrors.ColorProvider = CLIColorProvider{}

// CLIColorProvider implements apperrors.ColorProvider with the current theme.
// It is exported for orchestration and calibration.
type CLIColorProvider struct{}

// Yellow returns the warning color.
func (c CLIColorProvider) Yellow() string { return ColorYellow() }

// Reset returns the reset code.
func (c CLIColorProvider) Reset() string { return ColorReset() }

// Command besselcalc evaluates spherical Bessel functions j_l(x) by upward and
// downward (Miller) recurrence and compares both against a high-precision
// reference.
package main

import (
	"context"
	"os"

	"github.com/agbru/besselcalc/internal/app"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	if len(args) > 1 && app.HasVersionFlag(args[1:]) {
		app.PrintVersion(stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(args, stderr)
	if err != nil {
		if config.IsHelp(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitErrorConfig
	}
	return application.Run(context.Background(), stdout)
}

package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/calibration"
	"github.com/agbru/besselcalc/internal/cli"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/logging"
	"github.com/agbru/besselcalc/internal/orchestration"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/internal/server"
	"github.com/agbru/besselcalc/internal/ui"
	"github.com/agbru/besselcalc/pkg/models"
)

// LogLevelEnv names the environment variable selecting the log level
// ("debug", "info", "warn", "error").
const LogLevelEnv = config.EnvPrefix + "LOG_LEVEL"

// Application represents a besselcalc run: the parsed configuration and the
// collaborators every run mode needs.
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides the recurrence evaluators.
	Factory bessel.EvaluatorFactory
	// Oracle supplies the high-precision reference values.
	Oracle reference.Oracle
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// Logger receives the structured run events.
	Logger logging.Logger
}

// New parses the command-line arguments (args[0] is the program name) and
// builds the Application. Parsing and validation failures are returned as
// they come from config.ParseConfig; config.IsHelp tells a help request apart.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := bessel.GlobalFactory()

	programName := "besselcalc"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	level := os.Getenv(LogLevelEnv)
	if level == "" {
		level = "warn"
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		Oracle:    reference.NewSeries(cfg.Precision),
		ErrWriter: errWriter,
		Logger:    logging.NewConsoleLogger(errWriter, level),
	}, nil
}

// Run executes the configured mode and returns the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if f, ok := out.(*os.File); ok {
		ui.InitThemeFor(f, a.Config.NoColor)
	} else {
		ui.InitTheme(a.Config.NoColor)
	}

	switch {
	case a.Config.ServerMode:
		return a.runServer()
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	default:
		return a.runCompare(ctx, out)
	}
}

func (a *Application) runServer() int {
	level := os.Getenv(LogLevelEnv)
	if level == "" {
		level = "info"
	}
	srv := server.NewServer(a.Factory, a.Oracle, a.Config,
		server.WithLogger(logging.NewLogger(os.Stdout, "server", level)),
		server.WithVersion(Version))
	if err := srv.Start(); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, lc := SetupLifecycle(ctx, a.Config.Timeout)
	defer lc.Cleanup()

	if !a.Config.JSONOutput {
		return calibration.RunCalibration(ctx, a.Config, a.Oracle, out, a.Logger)
	}

	start := time.Now()
	reports, err := calibration.RunAll(ctx, a.Config, a.Oracle, io.Discard, a.Logger)
	if err != nil {
		return apperrors.HandleCalculationError(err, time.Since(start), a.ErrWriter, cli.CLIColorProvider{})
	}
	responses := make([]models.CalibrationResponse, len(reports))
	code := apperrors.ExitSuccess
	for i, r := range reports {
		responses[i] = r.ToResponse()
		if !r.Met() {
			code = apperrors.ExitErrorStability
		}
	}
	if err := writeJSON(out, responses); err != nil {
		return apperrors.ExitErrorGeneric
	}
	return code
}

// runCompare evaluates the grid and reports it as tables, quiet lines or
// JSON, optionally saving the tables to a file.
func (a *Application) runCompare(ctx context.Context, out io.Writer) int {
	ctx, lc := SetupLifecycle(ctx, a.Config.Timeout)
	defer lc.Cleanup()

	evaluators := cli.GetEvaluatorsToRun(a.Config, a.Factory)
	if len(evaluators) == 0 {
		fmt.Fprintf(a.ErrWriter, "No evaluator registered for method %q.\n", a.Config.Method)
		return apperrors.ExitErrorConfig
	}

	verbose := !a.Config.JSONOutput && !a.Config.Quiet
	if verbose {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(evaluators, out)
	}

	progressOut := out
	if !verbose {
		progressOut = io.Discard
	}
	results := orchestration.ExecuteComparisons(ctx, evaluators, a.Oracle, a.Config, progressOut, a.Logger)

	if a.Config.JSONOutput {
		return a.printJSONResults(results, out)
	}

	var code int
	if a.Config.Quiet {
		orchestration.DisplayQuietResults(out, results)
		code = orchestration.AnalyzeComparisonResults(results, a.Config, io.Discard)
	} else {
		code = orchestration.AnalyzeComparisonResults(results, a.Config, out)
	}

	outputCfg := cli.OutputConfig{OutputFile: a.Config.OutputFile, Quiet: a.Config.Quiet}
	if outputCfg.OutputFile != "" {
		err := cli.WriteReportToFile(outputCfg.OutputFile, func(w io.Writer) error {
			return orchestration.WriteReport(w, results, a.Config)
		})
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		cli.ConfirmSaved(out, outputCfg)
	}
	return code
}

// printJSONResults writes one models.ComparisonResponse per grid point. The
// exit code follows the same rules as the table output.
func (a *Application) printJSONResults(results []orchestration.GridResult, out io.Writer) int {
	opts := a.Config.ToEvaluationOptions()
	responses := make([]models.ComparisonResponse, len(results))
	for i, res := range results {
		responses[i] = orchestration.NewComparisonResponse(res, a.Config.LMax, opts)
	}
	if err := writeJSON(out, responses); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error encoding JSON: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return orchestration.AnalyzeComparisonResults(results, a.Config, io.Discard)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

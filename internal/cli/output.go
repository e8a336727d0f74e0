package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// OutputConfig holds configuration for result output.
type OutputConfig struct {
	// OutputFile is the path to save the report (empty for no file output).
	OutputFile string
	// Quiet mode suppresses verbose output.
	Quiet bool
}

// WriteReportToFile creates the output file, writes a header and lets write
// fill in the body. Missing parent directories are created.
func WriteReportToFile(path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	fmt.Fprintf(file, "# Spherical Bessel recurrence report\n")
	fmt.Fprintf(file, "# Generated: %s\n\n", time.Now().Format(time.RFC3339))
	if err := write(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ConfirmSaved tells the user where the report went, unless quiet.
func ConfirmSaved(out io.Writer, cfg OutputConfig) {
	if cfg.OutputFile == "" || cfg.Quiet {
		return
	}
	fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n",
		ColorGreen(), ColorCyan(), cfg.OutputFile, ColorReset())
}

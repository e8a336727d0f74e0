// Command generate-golden writes the reference values of j_0(x)..j_lmax(x)
// used by the bessel package's golden tests.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/agbru/besselcalc/internal/reference"
)

// GoldenData is one entry of the golden file.
type GoldenData struct {
	X      float64   `json:"x"`
	LMax   int       `json:"lmax"`
	Values []float64 `json:"values"`
}

func main() {
	outputDir := flag.String("out", "internal/bessel/testdata", "Output directory for the golden file")
	lMax := flag.Int("lmax", 20, "Highest order written for every argument")
	precision := flag.Uint("precision", reference.DefaultPrecision, "Oracle precision in bits")
	flag.Parse()

	if err := run(*outputDir, *lMax, *precision); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(outputDir string, lMax int, precision uint) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	// Small arguments where the upward walk fails, the region around the
	// first zeros of j_0, and a negative argument for the parity rule.
	targets := []float64{0.1, 0.5, 1, 2.5, 5, 7.5, 10, -3}

	oracle := reference.NewSeries(precision)
	data := make([]GoldenData, 0, len(targets))
	fmt.Println("Generating golden data...")
	for _, x := range targets {
		values := make([]float64, lMax+1)
		for l := range values {
			v, err := oracle.Reference(l, x)
			if err != nil {
				return fmt.Errorf("j_%d(%g): %w", l, x, err)
			}
			values[l] = v
		}
		data = append(data, GoldenData{X: x, LMax: lMax, Values: values})
		fmt.Printf("Generated j_0..j_%d at x = %g\n", lMax, x)
	}

	filename := filepath.Join(outputDir, "bessel_golden.json")
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer file.Close()

	// One entry per line keeps diffs readable when the oracle changes.
	w := bufio.NewWriter(file)
	fmt.Fprintln(w, "[")
	for i, d := range data {
		line, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("encoding x = %g: %w", d.X, err)
		}
		sep := ","
		if i == len(data)-1 {
			sep = ""
		}
		fmt.Fprintf(w, "  %s%s\n", line, sep)
	}
	fmt.Fprintln(w, "]")
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("Successfully generated golden file at %s\n", filename)
	return nil
}

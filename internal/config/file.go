package config

import (
	"flag"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/agbru/besselcalc/internal/errors"
)

// RunFile is the schema of the YAML run file. Absent keys keep the value
// they had before the file was read.
//
//	x: [0.1, 1, 10]
//	lmax: 25
//	margin: 15
//	method: all
//	orders: [3, 5, 8]
//	timeout: 1m
//	anchor: j0
type RunFile struct {
	X         []float64 `yaml:"x"`
	LMax      *int      `yaml:"lmax"`
	Margin    *int      `yaml:"margin"`
	Method    *string   `yaml:"method"`
	Orders    []int     `yaml:"orders"`
	Timeout   *string   `yaml:"timeout"`
	Workers   *int      `yaml:"workers"`
	Precision *uint     `yaml:"precision"`
	Anchor    *string   `yaml:"anchor"`
	Tolerance *float64  `yaml:"tolerance"`
	MaxMargin *int      `yaml:"max_margin"`
	JSON      *bool     `yaml:"json"`
	Quiet     *bool     `yaml:"quiet"`
	Output    *string   `yaml:"output"`
	NoColor   *bool     `yaml:"no_color"`
	Port      *string   `yaml:"port"`
}

// LoadRunFile reads and strictly decodes a YAML run file. Unknown keys are
// rejected so that a typo does not silently fall back to a default.
func LoadRunFile(path string) (RunFile, error) {
	var rf RunFile
	f, err := os.Open(path)
	if err != nil {
		return rf, apperrors.NewConfigErrorCause(err, "cannot open run file")
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&rf); err != nil {
		return rf, apperrors.NewConfigErrorCause(err, "cannot parse run file %s", path)
	}
	return rf, nil
}

// applyFileOverrides copies the keys present in the run file into config,
// except for flags explicitly set on the command line.
func applyFileOverrides(config *AppConfig, fs *flag.FlagSet, path string) error {
	rf, err := LoadRunFile(path)
	if err != nil {
		return err
	}

	free := func(name string) bool { return !isFlagSet(fs, name) }
	if rf.X != nil && free("x") {
		config.Xs = rf.X
	}
	if rf.Orders != nil && free("orders") {
		config.Orders = rf.Orders
	}
	if rf.LMax != nil && free("lmax") {
		config.LMax = *rf.LMax
	}
	if rf.Margin != nil && free("margin") {
		config.Margin = *rf.Margin
	}
	if rf.Method != nil && free("method") {
		config.Method = *rf.Method
	}
	if rf.Timeout != nil && free("timeout") {
		d, err := time.ParseDuration(*rf.Timeout)
		if err != nil {
			return apperrors.NewConfigErrorCause(err, "invalid timeout in run file")
		}
		config.Timeout = d
	}
	if rf.Workers != nil && free("workers") {
		config.Workers = *rf.Workers
	}
	if rf.Precision != nil && free("precision") {
		config.Precision = *rf.Precision
	}
	if rf.Anchor != nil && free("anchor") {
		config.Anchor = *rf.Anchor
	}
	if rf.Tolerance != nil && free("tolerance") {
		config.Tolerance = *rf.Tolerance
	}
	if rf.MaxMargin != nil && free("max-margin") {
		config.MaxMargin = *rf.MaxMargin
	}
	if rf.JSON != nil && free("json") {
		config.JSONOutput = *rf.JSON
	}
	if rf.Quiet != nil && free("quiet") && free("q") {
		config.Quiet = *rf.Quiet
	}
	if rf.Output != nil && free("output") && free("o") {
		config.OutputFile = *rf.Output
	}
	if rf.NoColor != nil && free("no-color") {
		config.NoColor = *rf.NoColor
	}
	if rf.Port != nil && free("port") {
		config.Port = *rf.Port
	}
	return nil
}

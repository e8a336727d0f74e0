// Package models defines the JSON wire format shared by the CLI --json
// output and the HTTP API.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Float is a float64 that survives JSON encoding when it is not finite. The
// upward recurrence overflows for l ≫ x, and encoding/json rejects ±Inf and
// NaN, so those are written as the strings "+Inf", "-Inf" and "NaN".
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte(`"NaN"`), nil
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		switch s {
		case "NaN":
			*f = Float(math.NaN())
		case "+Inf", "Inf":
			*f = Float(math.Inf(1))
		case "-Inf":
			*f = Float(math.Inf(-1))
		default:
			return fmt.Errorf("models: invalid float %q", s)
		}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Floats converts a slice for encoding.
func Floats(values []float64) []Float {
	out := make([]Float, len(values))
	for i, v := range values {
		out[i] = Float(v)
	}
	return out
}

// Cell is one entry of a relative error table.
type Cell struct {
	Method    string `json:"method"`
	Order     int    `json:"order"`
	Value     Float  `json:"value"`
	Reference Float  `json:"reference"`
	Error     Float  `json:"error"`
	// Absolute is set when the reference value is exactly zero and Error
	// holds |value − reference| instead of the relative error.
	Absolute bool `json:"absolute,omitempty"`
}

// SequenceResponse is the result of a single evaluation.
type SequenceResponse struct {
	X        float64 `json:"x"`
	LMax     int     `json:"lmax"`
	Method   string  `json:"method"`
	Values   []Float `json:"values,omitempty"`
	Duration string  `json:"duration"`
	Error    string  `json:"error,omitempty"`
}

// ComparisonResponse is the relative error table of one argument x.
type ComparisonResponse struct {
	X        float64          `json:"x"`
	LMax     int              `json:"lmax"`
	Margin   int              `json:"margin"`
	Anchor   string           `json:"anchor"`
	Cells    []Cell           `json:"cells,omitempty"`
	MaxError map[string]Float `json:"max_error,omitempty"`
	// Ratio is the upward over downward error at order l_max.
	Ratio    *Float `json:"ratio,omitempty"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// MethodInfo describes one registered evaluator.
type MethodInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// MethodsResponse lists the registered evaluators.
type MethodsResponse struct {
	Methods []MethodInfo `json:"methods"`
}

// CalibrationResponse reports a margin sweep.
type CalibrationResponse struct {
	X         float64 `json:"x"`
	LMax      int     `json:"lmax"`
	Tolerance float64 `json:"tolerance"`
	// Margin is the smallest margin meeting the tolerance, 0 if none did.
	Margin int     `json:"margin"`
	Errors []Float `json:"errors"`
	Error  string  `json:"error,omitempty"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

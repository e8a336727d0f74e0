package orchestration

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/agbru/besselcalc/internal/bessel"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/reference"
)

// FlagThreshold is the relative error above which a cell is flagged.
const FlagThreshold = 1e-6

// ErrMissingCell is returned by StabilityVerdict when a method or order is
// absent from the table.
var ErrMissingCell = errors.New("no such cell in the error table")

// Cell is one (method, order) entry of an ErrorTable.
type Cell struct {
	Method    string
	Order     int
	Value     float64
	Reference float64
	// Error is |Value − Reference| / |Reference|, or |Value − Reference| when
	// Absolute is set. A non-finite Value yields +Inf.
	Error float64
	// Absolute marks a reference that is exactly zero.
	Absolute bool
}

// ErrorTable holds, for one argument x, the error of every evaluator at every
// order 0..LMax.
type ErrorTable struct {
	X       float64
	LMax    int
	Methods []string
	// Cells maps a method key to its cells, indexed by order.
	Cells map[string][]Cell
}

// At returns the cell for method at order l.
func (t ErrorTable) At(method string, l int) (Cell, bool) {
	cells, ok := t.Cells[method]
	if !ok || l < 0 || l >= len(cells) {
		return Cell{}, false
	}
	return cells[l], true
}

// Column returns the errors of method indexed by order, nil if the method is
// not in the table.
func (t ErrorTable) Column(method string) []float64 {
	cells, ok := t.Cells[method]
	if !ok {
		return nil
	}
	col := make([]float64, len(cells))
	for i, c := range cells {
		col[i] = c.Error
	}
	return col
}

// MaxError returns the largest error of method over all orders, NaN if the
// method is not in the table.
func (t ErrorTable) MaxError(method string) float64 {
	col := t.Column(method)
	if len(col) == 0 {
		return math.NaN()
	}
	return floats.Max(col)
}

// Flagged returns the cells whose error exceeds FlagThreshold, method by
// method in table order.
func (t ErrorTable) Flagged() []Cell {
	var flagged []Cell
	for _, m := range t.Methods {
		for _, c := range t.Cells[m] {
			if c.Error > FlagThreshold {
				flagged = append(flagged, c)
			}
		}
	}
	return flagged
}

// Compare evaluates every evaluator at x for orders 0..lMax and measures each
// value against the oracle.
//
// An evaluator failure is returned as is (wrapped with the method key) and no
// table is produced. Oracle failures other than configuration or domain
// errors are reported as apperrors.CalculationError.
func Compare(ctx context.Context, x float64, lMax int, evaluators []bessel.Evaluator, oracle reference.Oracle, opts bessel.Options) (ErrorTable, error) {
	if len(evaluators) == 0 {
		return ErrorTable{}, apperrors.NewConfigError("compare: no evaluator selected")
	}
	if oracle == nil {
		return ErrorTable{}, apperrors.NewConfigError("compare: no reference oracle")
	}

	seqs := make([]bessel.Sequence, len(evaluators))
	for i, ev := range evaluators {
		seq, err := ev.Evaluate(ctx, x, lMax, opts)
		if err != nil {
			return ErrorTable{}, fmt.Errorf("%s: %w", ev.Method(), err)
		}
		seqs[i] = seq
	}

	refs := make([]float64, lMax+1)
	for l := range refs {
		if err := ctx.Err(); err != nil {
			return ErrorTable{}, err
		}
		ref, err := oracle.Reference(l, x)
		if err != nil {
			err = fmt.Errorf("reference j_%d(%g): %w", l, x, err)
			if apperrors.IsConfigError(err) || apperrors.IsDomainError(err) {
				return ErrorTable{}, err
			}
			return ErrorTable{}, apperrors.CalculationError{Cause: err}
		}
		refs[l] = ref
	}

	table := ErrorTable{
		X:       x,
		LMax:    lMax,
		Methods: make([]string, len(evaluators)),
		Cells:   make(map[string][]Cell, len(evaluators)),
	}
	for i, ev := range evaluators {
		method := ev.Method()
		table.Methods[i] = method
		cells := make([]Cell, lMax+1)
		for l, ref := range refs {
			v := seqs[i][l]
			e, absolute := errorOf(v, ref)
			cells[l] = Cell{Method: method, Order: l, Value: v, Reference: ref, Error: e, Absolute: absolute}
		}
		table.Cells[method] = cells
	}
	return table, nil
}

func errorOf(v, ref float64) (float64, bool) {
	absolute := ref == 0
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return math.Inf(1), absolute
	}
	if absolute {
		return math.Abs(v), true
	}
	return math.Abs(v-ref) / math.Abs(ref), false
}

// StabilityVerdict returns the ratio of the up error to the down error at
// order l. Equal zero errors give 1; a zero down error with a nonzero up
// error gives +Inf.
func StabilityVerdict(t ErrorTable, up, down string, l int) (float64, error) {
	cu, ok := t.At(up, l)
	if !ok {
		return 0, fmt.Errorf("%s at order %d: %w", up, l, ErrMissingCell)
	}
	cd, ok := t.At(down, l)
	if !ok {
		return 0, fmt.Errorf("%s at order %d: %w", down, l, ErrMissingCell)
	}
	if cd.Error == 0 {
		if cu.Error == 0 {
			return 1, nil
		}
		return math.Inf(1), nil
	}
	return cu.Error / cd.Error, nil
}

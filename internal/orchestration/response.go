package orchestration

import (
	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/pkg/models"
)

// NewComparisonResponse converts a grid result into its JSON representation.
// opts are the evaluation options the result was computed with.
func NewComparisonResponse(res GridResult, lMax int, opts bessel.Options) models.ComparisonResponse {
	margin := opts.Margin
	if margin == 0 {
		margin = bessel.DefaultMargin
	}
	resp := models.ComparisonResponse{
		X:        res.X,
		LMax:     lMax,
		Margin:   margin,
		Anchor:   opts.Anchor.String(),
		Duration: res.Duration.String(),
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
		return resp
	}

	t := res.Table
	resp.MaxError = make(map[string]models.Float, len(t.Methods))
	for _, m := range t.Methods {
		resp.MaxError[m] = models.Float(t.MaxError(m))
		for _, c := range t.Cells[m] {
			resp.Cells = append(resp.Cells, models.Cell{
				Method:    c.Method,
				Order:     c.Order,
				Value:     models.Float(c.Value),
				Reference: models.Float(c.Reference),
				Error:     models.Float(c.Error),
				Absolute:  c.Absolute,
			})
		}
	}
	if r, err := StabilityVerdict(t, bessel.MethodUp, bessel.MethodDown, t.LMax); err == nil {
		ratio := models.Float(r)
		resp.Ratio = &ratio
	}
	return resp
}

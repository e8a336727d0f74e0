// Package bessel evaluates spherical Bessel functions j_l(x) for l = 0..l_max
// with the three-term recurrence
//
//	j_{l+1}(x) + j_{l-1}(x) = ((2l+1)/x)·j_l(x)
//
// walked in either direction. The upward walk is unstable for l ≳ x; the
// downward walk (Miller's algorithm) is stable there. Both are exposed behind
// the Evaluator interface so that their accuracy can be compared against a
// reference oracle.
package bessel

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	evaluationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bessel_evaluations_total",
			Help: "The total number of spherical Bessel sequence evaluations",
		},
		[]string{"method", "status"},
	)
	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bessel_evaluation_duration_seconds",
			Help:    "The duration of spherical Bessel sequence evaluations in seconds",
			Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
		},
		[]string{"method"},
	)
)

// Evaluator is the public interface of a recurrence strategy. It is the
// abstraction the comparison harness, the CLI and the HTTP service use.
type Evaluator interface {
	// Evaluate returns j_0(x) … j_lmax(x). It either returns the full
	// sequence or an error, never a partial sequence.
	Evaluate(ctx context.Context, x float64, lMax int, opts Options) (Sequence, error)

	// Method returns the registry key ("up", "down").
	Method() string

	// Name returns the display name of the strategy.
	Name() string
}

// coreEvaluator is a bare recurrence strategy without the cross-cutting
// concerns added by RecurrenceEvaluator.
type coreEvaluator interface {
	evaluateCore(x float64, lMax int, opts Options) (Sequence, error)
	Method() string
	Name() string
}

// RecurrenceEvaluator decorates a coreEvaluator with option defaults,
// context checks and metrics.
type RecurrenceEvaluator struct {
	core coreEvaluator
}

// NewEvaluator wraps a core strategy. It panics if core is nil.
func NewEvaluator(core coreEvaluator) Evaluator {
	if core == nil {
		panic("bessel: the `coreEvaluator` implementation cannot be nil")
	}
	return &RecurrenceEvaluator{core: core}
}

// Method delegates to the wrapped strategy.
func (e *RecurrenceEvaluator) Method() string { return e.core.Method() }

// Name delegates to the wrapped strategy.
func (e *RecurrenceEvaluator) Name() string { return e.core.Name() }

// Evaluate applies defaults, honours an already-cancelled context and
// records the outcome in the evaluation metrics and a trace span.
func (e *RecurrenceEvaluator) Evaluate(ctx context.Context, x float64, lMax int, opts Options) (Sequence, error) {
	_, span := otel.Tracer("bessel").Start(ctx, "Evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.String("bessel.method", e.Method()),
		attribute.Float64("bessel.x", x),
		attribute.Int("bessel.lmax", lMax),
	)

	if err := ctx.Err(); err != nil {
		evaluationsTotal.WithLabelValues(e.Method(), "canceled").Inc()
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	start := time.Now()
	seq, err := e.core.evaluateCore(x, lMax, normalizeOptions(opts))
	evaluationDuration.WithLabelValues(e.Method()).Observe(time.Since(start).Seconds())
	if err != nil {
		evaluationsTotal.WithLabelValues(e.Method(), "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	evaluationsTotal.WithLabelValues(e.Method(), "success").Inc()
	return seq, nil
}

// UpwardEvaluator is the forward-recurrence strategy.
type UpwardEvaluator struct{}

// Method returns MethodUp.
func (UpwardEvaluator) Method() string { return MethodUp }

// Name returns the display name.
func (UpwardEvaluator) Name() string { return "Upward recurrence" }

func (UpwardEvaluator) evaluateCore(x float64, lMax int, _ Options) (Sequence, error) {
	return Upward(x, lMax)
}

// DownwardEvaluator is Miller's backward-recurrence strategy.
type DownwardEvaluator struct{}

// Method returns MethodDown.
func (DownwardEvaluator) Method() string { return MethodDown }

// Name returns the display name.
func (DownwardEvaluator) Name() string { return "Downward recurrence (Miller)" }

func (DownwardEvaluator) evaluateCore(x float64, lMax int, opts Options) (Sequence, error) {
	return Downward(x, lMax, StartOrder(lMax, opts.Margin), opts.downwardOptions())
}

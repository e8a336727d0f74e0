// Package service holds the evaluation logic shared by the HTTP server: it
// validates requests, looks up evaluators and runs the comparison harness.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/orchestration"
	"github.com/agbru/besselcalc/internal/reference"
	"github.com/agbru/besselcalc/pkg/models"
)

// MaxLMax is the default upper bound on l_max per request.
const MaxLMax = 1000

var (
	// ErrMaxLMaxExceeded is returned when l_max exceeds the configured limit.
	ErrMaxLMaxExceeded = errors.New("maximum l_max exceeded")
	// ErrUnknownMethod is returned for a method key the factory does not know.
	ErrUnknownMethod = errors.New("unknown method")
)

// Service defines the evaluation operations exposed over HTTP.
type Service interface {
	// Evaluate returns j_0(x) … j_lmax(x) computed by one method.
	Evaluate(ctx context.Context, method string, x float64, lMax int) (bessel.Sequence, error)
	// Compare runs every registered method at x against the reference.
	Compare(ctx context.Context, x float64, lMax int) orchestration.GridResult
	// Methods lists the registered methods.
	Methods() []models.MethodInfo
	// Options returns the evaluation options applied to every request.
	Options() bessel.Options
}

// EvaluatorService implements Service on top of an EvaluatorFactory and a
// reference oracle.
type EvaluatorService struct {
	factory bessel.EvaluatorFactory
	oracle  reference.Oracle
	opts    bessel.Options
	maxLMax int
}

// Ensure EvaluatorService implements Service interface.
var _ Service = (*EvaluatorService)(nil)

// NewEvaluatorService creates a service. maxLMax <= 0 means no limit.
func NewEvaluatorService(factory bessel.EvaluatorFactory, oracle reference.Oracle, cfg config.AppConfig, maxLMax int) *EvaluatorService {
	return &EvaluatorService{
		factory: factory,
		oracle:  oracle,
		opts:    cfg.ToEvaluationOptions(),
		maxLMax: maxLMax,
	}
}

func (s *EvaluatorService) checkLMax(lMax int) error {
	if s.maxLMax > 0 && lMax > s.maxLMax {
		return fmt.Errorf("l_max=%d limit=%d: %w", lMax, s.maxLMax, ErrMaxLMaxExceeded)
	}
	return nil
}

// Evaluate looks the method up and evaluates it with the service options.
func (s *EvaluatorService) Evaluate(ctx context.Context, method string, x float64, lMax int) (bessel.Sequence, error) {
	if err := s.checkLMax(lMax); err != nil {
		return nil, err
	}
	ev, err := s.factory.Get(method)
	if err != nil {
		return nil, apperrors.NewConfigErrorCause(ErrUnknownMethod, "method %q", method)
	}
	return ev.Evaluate(ctx, x, lMax, s.opts)
}

// Compare runs every registered method at x against the oracle.
func (s *EvaluatorService) Compare(ctx context.Context, x float64, lMax int) orchestration.GridResult {
	res := orchestration.GridResult{X: x}
	if err := s.checkLMax(lMax); err != nil {
		res.Err = err
		return res
	}
	keys := s.factory.List()
	evaluators := make([]bessel.Evaluator, 0, len(keys))
	for _, k := range keys {
		if ev, err := s.factory.Get(k); err == nil {
			evaluators = append(evaluators, ev)
		}
	}
	start := time.Now()
	res.Table, res.Err = orchestration.Compare(ctx, x, lMax, evaluators, s.oracle, s.opts)
	res.Duration = time.Since(start)
	return res
}

// Methods lists the registered methods in key order.
func (s *EvaluatorService) Methods() []models.MethodInfo {
	keys := s.factory.List()
	methods := make([]models.MethodInfo, 0, len(keys))
	for _, k := range keys {
		if ev, err := s.factory.Get(k); err == nil {
			methods = append(methods, models.MethodInfo{Key: k, Name: ev.Name()})
		}
	}
	return methods
}

// Options returns the evaluation options applied to every request.
func (s *EvaluatorService) Options() bessel.Options { return s.opts }

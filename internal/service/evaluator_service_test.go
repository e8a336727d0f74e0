package service

import (
	"context"
	"errors"
	"testing"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/reference"
)

func newTestService(maxLMax int) *EvaluatorService {
	cfg := config.AppConfig{Anchor: "j0"}
	return NewEvaluatorService(bessel.NewDefaultFactory(), reference.NewSeries(reference.DefaultPrecision), cfg, maxLMax)
}

func TestNewEvaluatorService(t *testing.T) {
	svc := newTestService(50)
	if svc.factory == nil || svc.oracle == nil {
		t.Fatal("service dependencies should be set")
	}
	if svc.maxLMax != 50 {
		t.Errorf("expected maxLMax 50, got %d", svc.maxLMax)
	}
	if got := svc.Options(); got.Margin != 0 || got.Anchor != bessel.AnchorJ0 {
		t.Errorf("Options() = %+v", got)
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		x       float64
		lMax    int
		wantErr func(error) bool
	}{
		{"Upward", bessel.MethodUp, 1, 4, nil},
		{"Downward", bessel.MethodDown, 0.1, 25, nil},
		{"Unknown method", "sideways", 1, 4, func(err error) bool {
			return errors.Is(err, ErrUnknownMethod) && apperrors.IsConfigError(err)
		}},
		{"Limit exceeded", bessel.MethodUp, 1, 51, func(err error) bool { return errors.Is(err, ErrMaxLMaxExceeded) }},
		{"Singular argument", bessel.MethodDown, 0, 4, apperrors.IsDomainError},
	}
	svc := newTestService(50)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := svc.Evaluate(context.Background(), tt.method, tt.x, tt.lMax)
			if tt.wantErr != nil {
				if err == nil || !tt.wantErr(err) {
					t.Fatalf("unexpected error: %v", err)
				}
				if seq != nil {
					t.Error("no sequence expected on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate() error = %v", err)
			}
			if seq.LMax() != tt.lMax {
				t.Errorf("LMax() = %d, want %d", seq.LMax(), tt.lMax)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	svc := newTestService(50)

	res := svc.Compare(context.Background(), 1, 8)
	if res.Err != nil {
		t.Fatalf("Compare() error = %v", res.Err)
	}
	if len(res.Table.Methods) != 2 {
		t.Errorf("methods = %v, want both directions", res.Table.Methods)
	}
	if down := res.Table.MaxError(bessel.MethodDown); down > 1e-8 {
		t.Errorf("downward max error = %e", down)
	}

	if res := svc.Compare(context.Background(), 1, 100); !errors.Is(res.Err, ErrMaxLMaxExceeded) {
		t.Errorf("err = %v, want ErrMaxLMaxExceeded", res.Err)
	}
	if res := svc.Compare(context.Background(), 0, 3); !apperrors.IsDomainError(res.Err) {
		t.Errorf("err = %v, want domain error", res.Err)
	}
}

func TestMethods(t *testing.T) {
	methods := newTestService(0).Methods()
	if len(methods) != 2 {
		t.Fatalf("Methods() = %+v", methods)
	}
	if methods[0].Key != bessel.MethodDown || methods[0].Name != "Downward recurrence (Miller)" {
		t.Errorf("methods[0] = %+v", methods[0])
	}
	if methods[1].Key != bessel.MethodUp || methods[1].Name != "Upward recurrence" {
		t.Errorf("methods[1] = %+v", methods[1])
	}
}

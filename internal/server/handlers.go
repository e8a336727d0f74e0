package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/besselcalc/internal/bessel"
	"github.com/agbru/besselcalc/internal/config"
	apperrors "github.com/agbru/besselcalc/internal/errors"
	"github.com/agbru/besselcalc/internal/orchestration"
	"github.com/agbru/besselcalc/internal/service"
	"github.com/agbru/besselcalc/pkg/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Version:   s.version,
	})
}

func (s *Server) handleMethods(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.MethodsResponse{Methods: s.service.Methods()})
}

// handleEvaluate serves GET /evaluate?x=&lmax=&method=. The method defaults
// to the downward recurrence.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	x, lMax, err := s.parseArguments(r)
	if err != nil {
		s.writeParseError(w, err)
		return
	}
	method := r.URL.Query().Get("method")
	if method == "" {
		method = bessel.MethodDown
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	seq, err := s.service.Evaluate(ctx, method, x, lMax)
	resp := models.SequenceResponse{X: x, LMax: lMax, Method: method, Duration: time.Since(start).String()}
	if err != nil {
		if status, rejected := rejectionStatus(err); rejected {
			s.writeErrorResponse(w, status, err.Error())
			return
		}
		resp.Error = err.Error()
	} else {
		resp.Values = models.Floats(seq)
	}
	s.writeJSONResponse(w, http.StatusOK, resp)
}

// handleCompare serves GET /compare?x=&lmax=.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	x, lMax, err := s.parseArguments(r)
	if err != nil {
		s.writeParseError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	res := s.service.Compare(ctx, x, lMax)
	if res.Err != nil {
		if status, rejected := rejectionStatus(res.Err); rejected {
			s.writeErrorResponse(w, status, res.Err.Error())
			return
		}
	}
	s.writeJSONResponse(w, http.StatusOK, orchestration.NewComparisonResponse(res, lMax, s.service.Options()))
}

// rejectionStatus maps request errors to a 4xx status. Other failures are
// reported in the response body with 200, as numerical outcomes.
func rejectionStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrMaxLMaxExceeded),
		apperrors.IsConfigError(err),
		apperrors.IsDomainError(err):
		return http.StatusBadRequest, true
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, true
	}
	return 0, false
}

// parseArguments reads x (required, finite) and lmax (defaults to the
// configured l_max, capped by MaxLMax).
func (s *Server) parseArguments(r *http.Request) (x float64, lMax int, err error) {
	q := r.URL.Query()
	xStr := q.Get("x")
	if xStr == "" {
		return 0, 0, apperrors.NewValidationError("x", "Missing 'x' parameter", nil)
	}
	x, err = strconv.ParseFloat(xStr, 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, 0, apperrors.NewValidationError("x", "Invalid 'x' parameter: must be a finite number", xStr)
	}

	lMax = s.cfg.LMax
	if lMax <= 0 {
		lMax = config.DefaultLMax
	}
	if lStr := q.Get("lmax"); lStr != "" {
		lMax, err = strconv.Atoi(lStr)
		if err != nil || lMax < 0 {
			return 0, 0, apperrors.NewValidationError("lmax", "Invalid 'lmax' parameter: must be a non-negative integer", lStr)
		}
	}
	if limit := s.securityConfig.MaxLMax; limit > 0 && lMax > limit {
		return 0, 0, apperrors.NewValidationError("lmax",
			fmt.Sprintf("Value of 'lmax' exceeds maximum allowed (%d).", limit), lMax)
	}
	return x, lMax, nil
}

func (s *Server) writeParseError(w http.ResponseWriter, err error) {
	var valErr apperrors.ValidationError
	if errors.As(err, &valErr) {
		s.writeErrorResponse(w, http.StatusBadRequest, valErr.Message)
		return
	}
	s.writeErrorResponse(w, http.StatusBadRequest, err.Error())
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	s.writeJSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/engine"
)

const maxBodyBytes = 1 << 20

// Service is the engine surface served over HTTP.
type Service interface {
	ReadinessChecker
	EstimateYield(ctx context.Context, in domain.FarmInput) (domain.YieldPrediction, error)
	GetForecast(ctx context.Context) []domain.WeatherDay
	ClassifyRisk(ctx context.Context, forecast []domain.WeatherDay, crop domain.Crop) ([]domain.RiskAlert, error)
	Dashboard(ctx context.Context, crop domain.Crop) (engine.Dashboard, error)
	ListRecords(ctx context.Context) ([]domain.FarmRecord, error)
	AppendRecord(ctx context.Context, rec domain.FarmRecord) (domain.FarmRecord, error)
}

// ClassifyRequest is the body of POST /api/v1/risk/classify.
type ClassifyRequest struct {
	Forecast []domain.WeatherDay `json:"forecast"`
	Crop     domain.Crop         `json:"crop"`
}

type apiHandler struct {
	svc    Service
	logger *slog.Logger
}

func (h *apiHandler) estimateYield(w http.ResponseWriter, r *http.Request) {
	var in domain.FarmInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.svc.EstimateYield(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *apiHandler) forecast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.GetForecast(r.Context()))
}

func (h *apiHandler) classifyRisk(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !h.decode(w, r, &req) {
		return
	}
	alerts, err := h.svc.ClassifyRisk(r.Context(), req.Forecast, req.Crop)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *apiHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), domain.Crop(r.URL.Query().Get("crop")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *apiHandler) listRecords(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListRecords(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *apiHandler) appendRecord(w http.ResponseWriter, r *http.Request) {
	var rec domain.FarmRecord
	if !h.decode(w, r, &rec) {
		return
	}
	saved, err := h.svc.AppendRecord(r.Context(), rec)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// decode reads a single JSON value from the request body. On failure it
// writes a 400 response and returns false.
func (h *apiHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(v)
	if err == nil {
		if extra := dec.Decode(&json.RawMessage{}); !errors.Is(extra, io.EOF) {
			err = errors.New("unexpected data after JSON value")
		}
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("invalid request body: %v", err),
		})
		return false
	}
	return true
}

func (h *apiHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

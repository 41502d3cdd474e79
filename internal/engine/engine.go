// Package engine composes the estimator, weather source, risk classifier, and
// record store behind the service's external operations.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Estimator produces a yield prediction for one farm.
type Estimator interface {
	Estimate(ctx context.Context, in domain.FarmInput) (domain.YieldPrediction, error)
}

// Forecaster produces a 7-day forecast.
type Forecaster interface {
	Forecast() []domain.WeatherDay
}

// RecordStore persists historical farm records.
type RecordStore interface {
	List(ctx context.Context) ([]domain.FarmRecord, error)
	Append(ctx context.Context, rec domain.FarmRecord) (domain.FarmRecord, error)
	CheckReadiness(ctx context.Context) error
}

// Publisher emits engine results to downstream consumers.
type Publisher interface {
	PublishPrediction(ctx context.Context, in domain.FarmInput, p domain.YieldPrediction) error
	PublishAlerts(ctx context.Context, crop domain.Crop, alerts []domain.RiskAlert) error
}

// Dashboard is the combined forecast and risk view for one crop.
type Dashboard struct {
	Crop     domain.Crop         `json:"crop"`
	Forecast []domain.WeatherDay `json:"forecast"`
	Alerts   []domain.RiskAlert  `json:"alerts"`
}

// Engine serves yield, weather, risk, and record operations.
type Engine struct {
	estimator   Estimator
	forecaster  Forecaster
	records     RecordStore
	publisher   Publisher
	defaultCrop domain.Crop
	clock       clockwork.Clock
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher enables best-effort publishing of predictions and alerts.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithDefaultCrop sets the crop used by Dashboard when none is requested.
func WithDefaultCrop(c domain.Crop) Option {
	return func(e *Engine) {
		if c != "" {
			e.defaultCrop = c
		}
	}
}

// WithClock sets the clock used to time estimates.
func WithClock(c clockwork.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// New creates an Engine with the given components and observability.
func New(est Estimator, fc Forecaster, rs RecordStore, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Engine {
	e := &Engine{
		estimator:   est,
		forecaster:  fc,
		records:     rs,
		defaultCrop: domain.CropRice,
		clock:       clockwork.NewRealClock(),
		logger:      logger,
		metrics:     metrics,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CheckReadiness reports ready once the record store has been initialized.
func (e *Engine) CheckReadiness(ctx context.Context) error {
	return e.records.CheckReadiness(ctx)
}

// EstimateYield runs the estimator and publishes the result when a publisher is configured.
func (e *Engine) EstimateYield(ctx context.Context, in domain.FarmInput) (domain.YieldPrediction, error) {
	start := e.clock.Now()

	p, err := e.estimator.Estimate(ctx, in)
	if err != nil {
		e.metrics.PredictionErrors.Inc()
		if errors.Is(err, domain.ErrInvalidInput) {
			e.logger.Debug("estimate rejected", "crop", in.Crop, "error", err)
		} else {
			e.logger.Warn("estimate failed", "crop", in.Crop, "error", err)
		}
		return domain.YieldPrediction{}, err
	}

	e.metrics.Predictions.Inc()
	e.metrics.EstimateDuration.Observe(e.clock.Since(start).Seconds())
	e.metrics.PredictedYield.WithLabelValues(string(in.Crop)).Observe(float64(p.YieldKgPerHa))
	e.logger.Debug("yield estimated", "crop", in.Crop, "district", in.District, "yield_kg_per_ha", p.YieldKgPerHa)

	if e.publisher != nil {
		if err := e.publisher.PublishPrediction(ctx, in, p); err != nil {
			e.metrics.PublishErrors.WithLabelValues("predictions").Inc()
			e.logger.Warn("publish prediction failed", "crop", in.Crop, "error", err)
		}
	}
	return p, nil
}

// GetForecast returns a fresh 7-day forecast.
func (e *Engine) GetForecast(_ context.Context) []domain.WeatherDay {
	e.metrics.Forecasts.Inc()
	return e.forecaster.Forecast()
}

// ClassifyRisk derives alerts for the forecast and publishes them when a publisher is configured.
func (e *Engine) ClassifyRisk(ctx context.Context, forecast []domain.WeatherDay, crop domain.Crop) ([]domain.RiskAlert, error) {
	alerts, err := domain.ClassifyRisk(forecast, crop)
	if err != nil {
		return nil, err
	}

	for _, a := range alerts {
		e.metrics.RiskAlerts.WithLabelValues(a.Category, string(a.Severity)).Inc()
	}

	if e.publisher != nil {
		if err := e.publisher.PublishAlerts(ctx, crop, alerts); err != nil {
			e.metrics.PublishErrors.WithLabelValues("alerts").Inc()
			e.logger.Warn("publish alerts failed", "crop", crop, "error", err)
		}
	}
	return alerts, nil
}

// Dashboard generates a forecast and classifies it for crop, or for the
// default crop when crop is blank.
func (e *Engine) Dashboard(ctx context.Context, crop domain.Crop) (Dashboard, error) {
	crop = domain.Crop(strings.TrimSpace(string(crop)))
	if crop == "" {
		crop = e.defaultCrop
	}

	forecast := e.GetForecast(ctx)
	alerts, err := e.ClassifyRisk(ctx, forecast, crop)
	if err != nil {
		return Dashboard{}, err
	}
	return Dashboard{Crop: crop, Forecast: forecast, Alerts: alerts}, nil
}

// ListRecords returns stored farm records, most recent first.
func (e *Engine) ListRecords(ctx context.Context) ([]domain.FarmRecord, error) {
	return e.records.List(ctx)
}

// AppendRecord stores a new farm record ahead of existing ones.
func (e *Engine) AppendRecord(ctx context.Context, rec domain.FarmRecord) (domain.FarmRecord, error) {
	return e.records.Append(ctx, rec)
}

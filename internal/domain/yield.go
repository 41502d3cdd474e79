package domain

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Estimator turns farm parameters into a yield prediction. It holds no mutable
// state of its own and may be shared across goroutines.
type Estimator struct {
	rng     Random
	latency time.Duration
}

// EstimatorOption configures an Estimator.
type EstimatorOption func(*Estimator)

// WithRandom sets the noise source. Defaults to DefaultRandom.
func WithRandom(r Random) EstimatorOption {
	return func(e *Estimator) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithLatency adds a simulated computation delay before each estimate returns.
func WithLatency(d time.Duration) EstimatorOption {
	return func(e *Estimator) {
		e.latency = d
	}
}

// NewEstimator creates an Estimator.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{rng: DefaultRandom()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes a yield prediction for the given farm. Random draws happen
// in a fixed order: noise, district factor, accuracy, cost factor.
func (e *Estimator) Estimate(ctx context.Context, in FarmInput) (YieldPrediction, error) {
	if err := in.Validate(); err != nil {
		return YieldPrediction{}, err
	}
	if err := e.wait(ctx); err != nil {
		return YieldPrediction{}, err
	}

	base := BaseEstimate(in.Crop, in.RainfallMm, in.FertilizerKg, in.AreaHectares)
	noisy := base + (e.rng.Float64()-0.5)*2*NoiseAmplitudeKg
	yield := int(math.Round(noisy))

	districtFactor := uniform(e.rng, DistrictAvgMinFactor, DistrictAvgMaxFactor)
	accuracy := AccuracyBasePct + e.rng.IntN(AccuracySpreadPct+1)
	costFactor := uniform(e.rng, CostSavingMinFactor, CostSavingMaxFactor)

	return YieldPrediction{
		YieldKgPerHa:       yield,
		ConfidenceLow:      floorDiv(yield*(100-ConfidenceBandPct), 100),
		ConfidenceHigh:     ceilDiv(yield*(100+ConfidenceBandPct), 100),
		AccuracyPct:        accuracy,
		CostSavingInr:      int(math.Round(in.AreaHectares * CostSavingPerHectareInr * costFactor)),
		DistrictAvgKgPerHa: int(math.Round(noisy * districtFactor)),
	}, nil
}

// wait blocks for the configured latency on the package clock.
func (e *Estimator) wait(ctx context.Context) error {
	if e.latency <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-clock.After(e.latency):
		return nil
	}
}

// Validate reports whether the input can be evaluated. Area must be positive
// because fertilizer intensity divides by it, and bounded so the cost saving
// fits in an int.
func (in FarmInput) Validate() error {
	if math.IsNaN(in.AreaHectares) || math.IsInf(in.AreaHectares, 0) || in.AreaHectares <= 0 {
		return fmt.Errorf("%w: area must be a positive number of hectares, got %v", ErrInvalidInput, in.AreaHectares)
	}
	if in.AreaHectares > MaxAreaHectares {
		return fmt.Errorf("%w: area must not exceed %v hectares, got %v", ErrInvalidInput, MaxAreaHectares, in.AreaHectares)
	}
	if math.IsNaN(in.RainfallMm) || math.IsInf(in.RainfallMm, 0) || in.RainfallMm < 0 {
		return fmt.Errorf("%w: rainfall must be non-negative, got %v", ErrInvalidInput, in.RainfallMm)
	}
	if math.IsNaN(in.FertilizerKg) || math.IsInf(in.FertilizerKg, 0) || in.FertilizerKg < 0 {
		return fmt.Errorf("%w: fertilizer must be non-negative, got %v", ErrInvalidInput, in.FertilizerKg)
	}
	return nil
}

// BaseEstimate returns the pre-noise yield in kg/ha. The caller must ensure
// area is positive.
func BaseEstimate(crop Crop, rainfallMm, fertilizerKg, areaHectares float64) float64 {
	return BaseYield(crop) * RainfallFactor(rainfallMm) * FertilizerFactor(fertilizerKg/areaHectares)
}

// BaseYield returns the tabulated yield for a crop, or the default for unknown crops.
func BaseYield(crop Crop) float64 {
	if y, ok := baseYields[crop]; ok {
		return y
	}
	return DefaultBaseYieldKgPerHa
}

// RainfallFactor classifies seasonal rainfall into drought, optimal, or flood.
func RainfallFactor(rainfallMm float64) float64 {
	switch {
	case rainfallMm < DroughtRainfallMm:
		return DroughtFactor
	case rainfallMm > FloodRainfallMm:
		return FloodFactor
	default:
		return OptimalRainfallFactor
	}
}

// FertilizerFactor classifies fertilizer intensity (kg/ha).
func FertilizerFactor(intensityKgPerHa float64) float64 {
	switch {
	case intensityKgPerHa < UnderFertilizedKgPerHa:
		return UnderFertilizedFactor
	case intensityKgPerHa > OverFertilizedKgPerHa:
		return OverFertilizedFactor
	default:
		return OptimalFertilizerFactor
	}
}

func uniform(r Random, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// floorDiv and ceilDiv keep the confidence band exact in integer arithmetic.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) == (b < 0) {
		q++
	}
	return q
}

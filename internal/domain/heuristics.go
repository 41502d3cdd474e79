package domain

// Yield heuristic tables and band thresholds. See the package documentation
// for how they combine.
var baseYields = map[Crop]float64{
	CropRice:      4000,
	CropWheat:     3500,
	CropMaize:     5000,
	CropCotton:    2000,
	CropSugarcane: 80000,
	CropSoybean:   2500,
}

const (
	// DefaultBaseYieldKgPerHa applies to crops missing from the base table.
	DefaultBaseYieldKgPerHa = 3000.0

	DroughtRainfallMm     = 600.0
	FloodRainfallMm       = 1400.0
	DroughtFactor         = 0.70
	FloodFactor           = 0.85
	OptimalRainfallFactor = 1.10

	UnderFertilizedKgPerHa  = 50.0
	OverFertilizedKgPerHa   = 200.0
	UnderFertilizedFactor   = 0.80
	OverFertilizedFactor    = 0.95
	OptimalFertilizerFactor = 1.05

	// NoiseAmplitudeKg bounds the uniform noise added to the estimate.
	NoiseAmplitudeKg = 100.0

	DistrictAvgMinFactor = 0.9
	DistrictAvgMaxFactor = 1.1

	// ConfidenceBandPct is the half-width of the confidence band around the yield.
	ConfidenceBandPct = 8

	AccuracyBasePct   = 92
	AccuracySpreadPct = 5

	// MaxAreaHectares caps a single estimate so derived figures stay within int range.
	MaxAreaHectares = 1_000_000.0

	CostSavingPerHectareInr = 1500.0
	CostSavingMinFactor     = 0.5
	CostSavingMaxFactor     = 1.5
)

const (
	// DiseaseRainyDaysThreshold is the number of rainy days a forecast must
	// exceed to raise a disease alert.
	DiseaseRainyDaysThreshold = 3

	// HeatStressTempC is the temperature today must exceed to raise a heat alert.
	HeatStressTempC = 35
)

const (
	forecastBaseTempC       = 28
	forecastTempSpreadC     = 3
	forecastRainChance      = 0.3
	rainyRainProbabilityPct = 80
	dryRainProbabilityPct   = 10
)

// forecastDays labels the 7 forecast entries. Day 0 is always today.
var forecastDays = [...]string{"Today", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

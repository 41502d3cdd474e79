package domain

// Crop identifies a cultivated crop. Unrecognized values are accepted and use
// the default base yield.
type Crop string

const (
	CropRice      Crop = "Rice"
	CropWheat     Crop = "Wheat"
	CropMaize     Crop = "Maize"
	CropCotton    Crop = "Cotton"
	CropSugarcane Crop = "Sugarcane"
	CropSoybean   Crop = "Soybean"
)

// SoilType is informational; it does not change the estimate.
type SoilType string

const (
	SoilAlluvial SoilType = "Alluvial"
	SoilBlack    SoilType = "Black"
	SoilRed      SoilType = "Red"
	SoilLaterite SoilType = "Laterite"
)

// Season is one of India's cropping seasons. Informational only.
type Season string

const (
	SeasonKharif Season = "Kharif" // monsoon-sown
	SeasonRabi   Season = "Rabi"   // winter-sown
	SeasonZaid   Season = "Zaid"   // summer, between Rabi and Kharif
)

// FarmInput carries the parameters of a single yield estimation request.
type FarmInput struct {
	Crop         Crop     `json:"crop"`
	District     string   `json:"district"`
	SoilType     SoilType `json:"soil_type"`
	Season       Season   `json:"season"`
	AreaHectares float64  `json:"area_hectares"`
	RainfallMm   float64  `json:"rainfall_mm"`
	FertilizerKg float64  `json:"fertilizer_kg"`
}

// YieldPrediction is the estimator's result. All figures are rounded integers.
type YieldPrediction struct {
	YieldKgPerHa       int `json:"yield_kg_per_ha"`
	ConfidenceLow      int `json:"confidence_low"`
	ConfidenceHigh     int `json:"confidence_high"`
	AccuracyPct        int `json:"accuracy_pct"`
	CostSavingInr      int `json:"cost_saving_inr"`
	DistrictAvgKgPerHa int `json:"district_avg_kg_per_ha"`
}

// Condition is the sky condition of a forecast day.
type Condition string

const (
	ConditionSunny  Condition = "Sunny"
	ConditionCloudy Condition = "Cloudy"
	ConditionRainy  Condition = "Rainy"
	ConditionStorm  Condition = "Storm"
)

// WeatherDay is one entry of a 7-day forecast. Day 0 is "Today".
type WeatherDay struct {
	Day                string    `json:"day"`
	TempC              int       `json:"temp_c"`
	Condition          Condition `json:"condition"`
	RainProbabilityPct int       `json:"rain_probability_pct"`
}

// Severity grades a risk alert.
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// RiskAlert is a derived crop risk warning. Alerts are never persisted.
type RiskAlert struct {
	Category          string   `json:"category"`
	Severity          Severity `json:"severity"`
	Message           string   `json:"message"`
	RecommendedAction string   `json:"recommended_action"`
}

// FarmRecord is a historical harvest entry owned by the record store.
type FarmRecord struct {
	ID           string `json:"id"`
	Date         Date   `json:"date"`
	Crop         string `json:"crop"`
	YieldKgPerHa int    `json:"yield_kg_per_ha"`
	Season       string `json:"season"`
}

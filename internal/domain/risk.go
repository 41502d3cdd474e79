package domain

import "fmt"

var (
	diseaseAlert = RiskAlert{
		Category:          "Disease",
		Severity:          SeverityHigh,
		Message:           "High humidity detected. Risk of fungal infection.",
		RecommendedAction: "Apply fungicide immediately.",
	}
	heatAlert = RiskAlert{
		Category:          "Heat",
		Severity:          SeverityMedium,
		Message:           "Heat stress likely for young crops.",
		RecommendedAction: "Irrigate in evening.",
	}
	generalAlert = RiskAlert{
		Category:          "General",
		Severity:          SeverityLow,
		Message:           "Conditions are favorable for growth.",
		RecommendedAction: "Monitor soil moisture.",
	}
)

// ClassifyRisk derives ordered risk alerts from a forecast. The crop does not
// influence the current rules.
func ClassifyRisk(forecast []WeatherDay, _ Crop) ([]RiskAlert, error) {
	if len(forecast) == 0 {
		return nil, fmt.Errorf("%w: forecast is empty", ErrInvalidInput)
	}

	var alerts []RiskAlert
	if countCondition(forecast, ConditionRainy) > DiseaseRainyDaysThreshold {
		alerts = append(alerts, diseaseAlert)
	}
	if forecast[0].TempC > HeatStressTempC {
		alerts = append(alerts, heatAlert)
	}
	if len(alerts) == 0 {
		alerts = append(alerts, generalAlert)
	}
	return alerts, nil
}

func countCondition(forecast []WeatherDay, c Condition) int {
	n := 0
	for _, d := range forecast {
		if d.Condition == c {
			n++
		}
	}
	return n
}

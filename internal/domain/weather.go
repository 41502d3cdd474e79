package domain

// WeatherSource generates synthetic 7-day forecasts.
type WeatherSource struct {
	rng Random
}

// NewWeatherSource creates a WeatherSource. A nil source uses DefaultRandom.
func NewWeatherSource(rng Random) *WeatherSource {
	if rng == nil {
		rng = DefaultRandom()
	}
	return &WeatherSource{rng: rng}
}

// Forecast returns a fresh 7-day forecast, today first. Each day is drawn
// independently: rain flag, then temperature, then sky condition when dry.
func (w *WeatherSource) Forecast() []WeatherDay {
	days := make([]WeatherDay, 0, len(forecastDays))
	for _, label := range forecastDays {
		rainy := w.rng.Float64() < forecastRainChance
		temp := forecastBaseTempC + w.rng.IntN(2*forecastTempSpreadC+1) - forecastTempSpreadC

		day := WeatherDay{
			Day:                label,
			TempC:              temp,
			Condition:          ConditionRainy,
			RainProbabilityPct: rainyRainProbabilityPct,
		}
		if !rainy {
			day.RainProbabilityPct = dryRainProbabilityPct
			day.Condition = ConditionSunny
			if w.rng.Float64() < 0.5 {
				day.Condition = ConditionCloudy
			}
		}
		days = append(days, day)
	}
	return days
}

// Command validate checks the fixtures written by genmock against the model's
// invariants: prediction bands and ranges, forecast shape, alert derivation,
// and record ordering. Run it after regenerating fixtures.
//
// Usage:
//
//	go run ./cmd/validate -dir data/mock
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/couchcryptid/farm-yield-service/internal/domain"
	"github.com/couchcryptid/farm-yield-service/internal/engine"
	"github.com/couchcryptid/farm-yield-service/internal/records"
)

var dayLabels = []string{"Today", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

type predictionFixture struct {
	Input      domain.FarmInput       `json:"input"`
	Prediction domain.YieldPrediction `json:"prediction"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "directory containing genmock fixtures")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir); code != 0 {
		os.Exit(code)
	}
}

func run(dir string) int {
	fmt.Println("=== Farm Yield Fixture Validation ===")
	fmt.Println()

	predictions, err := loadJSON[predictionFixture](filepath.Join(dir, "predictions.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load predictions: %v\n", err)
		return 1
	}

	dashboards, err := loadJSON[engine.Dashboard](filepath.Join(dir, "dashboards.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dashboards: %v\n", err)
		return 1
	}

	recs, err := loadJSON[domain.FarmRecord](filepath.Join(dir, "records.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load records: %v\n", err)
		return 1
	}

	phases := []*phase{
		validatePredictions(predictions),
		validateForecasts(dashboards),
		validateAlerts(dashboards),
		validateRecords(recs),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Fixtures: %d predictions, %d dashboards, %d records\n",
		len(predictions), len(dashboards), len(recs))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ── Predictions ──

func validatePredictions(predictions []predictionFixture) *phase {
	p := &phase{name: "Prediction invariants"}
	if len(predictions) == 0 {
		p.errorf("no predictions")
	}
	for i, f := range predictions {
		checkPrediction(p, i, f)
	}
	return p
}

func checkPrediction(p *phase, i int, f predictionFixture) {
	in, pr := f.Input, f.Prediction
	if err := in.Validate(); err != nil {
		p.errorf("prediction %d: input invalid: %v", i, err)
		return
	}

	base := domain.BaseEstimate(in.Crop, in.RainfallMm, in.FertilizerKg, in.AreaHectares)
	lo, hi := round(base-domain.NoiseAmplitudeKg), round(base+domain.NoiseAmplitudeKg)
	if pr.YieldKgPerHa < lo || pr.YieldKgPerHa > hi {
		p.errorf("prediction %d (%s): yield %d outside noise band [%d,%d]", i, in.Crop, pr.YieldKgPerHa, lo, hi)
	}
	if pr.ConfidenceLow > pr.YieldKgPerHa || pr.YieldKgPerHa > pr.ConfidenceHigh {
		p.errorf("prediction %d (%s): confidence [%d,%d] does not contain yield %d",
			i, in.Crop, pr.ConfidenceLow, pr.ConfidenceHigh, pr.YieldKgPerHa)
	}
	if pr.AccuracyPct < domain.AccuracyBasePct || pr.AccuracyPct > domain.AccuracyBasePct+domain.AccuracySpreadPct {
		p.errorf("prediction %d (%s): accuracy %d out of range", i, in.Crop, pr.AccuracyPct)
	}

	dLo := int(math.Floor((base - domain.NoiseAmplitudeKg) * domain.DistrictAvgMinFactor))
	dHi := int(math.Ceil((base + domain.NoiseAmplitudeKg) * domain.DistrictAvgMaxFactor))
	if pr.DistrictAvgKgPerHa < dLo || pr.DistrictAvgKgPerHa > dHi {
		p.errorf("prediction %d (%s): district average %d outside [%d,%d]", i, in.Crop, pr.DistrictAvgKgPerHa, dLo, dHi)
	}

	cLo := round(in.AreaHectares * domain.CostSavingPerHectareInr * domain.CostSavingMinFactor)
	cHi := round(in.AreaHectares * domain.CostSavingPerHectareInr * domain.CostSavingMaxFactor)
	if pr.CostSavingInr < cLo || pr.CostSavingInr > cHi {
		p.errorf("prediction %d (%s): cost saving %d outside [%d,%d]", i, in.Crop, pr.CostSavingInr, cLo, cHi)
	}
}

// ── Forecasts ──

func validateForecasts(dashboards []engine.Dashboard) *phase {
	p := &phase{name: "Forecast shape"}
	if len(dashboards) == 0 {
		p.errorf("no dashboards")
	}
	for i, d := range dashboards {
		if len(d.Forecast) != len(dayLabels) {
			p.errorf("dashboard %d: forecast has %d days, want %d", i, len(d.Forecast), len(dayLabels))
			continue
		}
		for j, day := range d.Forecast {
			checkDay(p, i, j, day)
		}
	}
	return p
}

func checkDay(p *phase, i, j int, day domain.WeatherDay) {
	if day.Day != dayLabels[j] {
		p.errorf("dashboard %d day %d: label %q, want %q", i, j, day.Day, dayLabels[j])
	}
	if day.TempC < 25 || day.TempC > 31 {
		p.errorf("dashboard %d day %d: temperature %d outside [25,31]", i, j, day.TempC)
	}
	switch day.Condition {
	case domain.ConditionRainy:
		if day.RainProbabilityPct != 80 {
			p.errorf("dashboard %d day %d: rainy day with rain probability %d", i, j, day.RainProbabilityPct)
		}
	case domain.ConditionSunny, domain.ConditionCloudy:
		if day.RainProbabilityPct != 10 {
			p.errorf("dashboard %d day %d: dry day with rain probability %d", i, j, day.RainProbabilityPct)
		}
	default:
		p.errorf("dashboard %d day %d: unexpected condition %q", i, j, day.Condition)
	}
}

// ── Alerts ──

func validateAlerts(dashboards []engine.Dashboard) *phase {
	p := &phase{name: "Alerts match forecast"}
	for i, d := range dashboards {
		want, err := domain.ClassifyRisk(d.Forecast, d.Crop)
		if err != nil {
			p.errorf("dashboard %d: classify: %v", i, err)
			continue
		}
		if !slices.Equal(want, d.Alerts) {
			p.errorf("dashboard %d: alerts %v, want %v", i, categories(d.Alerts), categories(want))
		}
	}
	return p
}

func categories(alerts []domain.RiskAlert) []string {
	out := make([]string, len(alerts))
	for i, a := range alerts {
		out[i] = a.Category
	}
	return out
}

// ── Records ──

func validateRecords(recs []domain.FarmRecord) *phase {
	p := &phase{name: "Record history"}

	seen := make(map[string]bool, len(recs))
	for i, r := range recs {
		if r.ID == "" {
			p.errorf("record %d: empty id", i)
		} else if seen[r.ID] {
			p.errorf("record %d: duplicate id %q", i, r.ID)
		}
		seen[r.ID] = true
		if r.Date.IsZero() {
			p.errorf("record %d: missing date", i)
		}
		if r.Crop == "" {
			p.errorf("record %d: missing crop", i)
		}
		if r.YieldKgPerHa < 0 {
			p.errorf("record %d: negative yield %d", i, r.YieldKgPerHa)
		}
	}

	// Appends are prepended, so the seed must be the oldest suffix.
	seed := records.Seed()
	if len(recs) < len(seed) {
		p.errorf("history has %d records, fewer than the %d seed records", len(recs), len(seed))
		return p
	}
	for i, want := range seed {
		got := recs[len(recs)-len(seed)+i]
		if got.ID != want.ID || got.Crop != want.Crop || got.YieldKgPerHa != want.YieldKgPerHa || !got.Date.Equal(want.Date.Time) {
			p.errorf("seed record %s not found at position %d", want.ID, len(recs)-len(seed)+i)
		}
	}
	return p
}

func round(f float64) int {
	return int(math.Round(f))
}

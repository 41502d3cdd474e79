// Package domain models the farm yield and weather risk heuristics.
//
// # Yield Estimation
//
// The estimator is a deterministic heuristic, not a trained model. A per-crop
// base yield (kg/ha) is scaled by two banded multipliers and then perturbed by
// bounded noise:
//
//	Base yield (kg/ha):
//	  Rice 4000 | Wheat 3500 | Maize 5000 | Cotton 2000 | Sugarcane 80000 | Soybean 2500
//	  Any other crop falls back to 3000.
//
//	Rainfall (mm, season total):
//	  <600 drought x0.70 | 600-1400 optimal x1.10 | >1400 flood x0.85
//
//	Fertilizer intensity (kg/ha = fertilizer kg / area ha):
//	  <50 under-fertilized x0.80 | 50-200 optimal x1.05 | >200 burn x0.95
//
// Band edges belong to the optimal band: 600 mm and 1400 mm rainfall, and 50
// and 200 kg/ha fertilizer, all use the optimal multiplier.
//
// The product is perturbed by uniform noise in [-100, +100] kg/ha and rounded.
// Reported alongside the point estimate:
//
//	Confidence band:  floor(yield x 0.92) .. ceil(yield x 1.08)
//	District average: noisy yield x U[0.9, 1.1], rounded
//	Accuracy:         92 + U{0..5} percent
//	Cost saving:      area x 1500 INR x U[0.5, 1.5], rounded
//
// All randomness is drawn from an injected [Random], so tests and fixture
// generation can run with a seeded or scripted source.
//
// # Weather and Risk
//
// [WeatherSource] produces a synthetic 7-day forecast starting "Today". Each
// day is independently rainy with probability 0.3, with a temperature of
// 28 +/- 3 C.
//
// [ClassifyRisk] applies three rules in a fixed order:
//
//	Disease (High):  more than 3 rainy days in the forecast
//	Heat (Medium):   today's temperature above 35 C
//	General (Low):   emitted alone, only when neither rule above fired
//
// Disease and Heat can co-occur. The single calm alert is deliberate.
package domain

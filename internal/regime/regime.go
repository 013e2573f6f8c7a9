// Package regime implements the Markov market-regime process (spec.md
// §4.3): four states {bull, normal, bear, crisis}, sampled once per
// scenario from an unconditional initial distribution and transitioned at
// each year boundary from the current regime's transition row.
package regime

import (
	"github.com/areumfire/retirement-mc/internal/config"
	"github.com/areumfire/retirement-mc/internal/rng"
)

// AssetAdjustment scales a single asset class's mean and volatility while a
// given regime is active.
type AssetAdjustment struct {
	ReturnMultiplier float64
	VolMultiplier    float64
}

// Parameters is one regime's full parameter set (spec.md §3 RegimeParameters).
type Parameters struct {
	MeanReturn               float64
	Volatility               float64
	AvgDurationYears         float64
	TransitionProbabilities [4]float64 // order: bull, normal, bear, crisis
	AssetAdjustments        map[string]AssetAdjustment
}

var order = [4]config.MarketRegime{
	config.RegimeBull, config.RegimeNormal, config.RegimeBear, config.RegimeCrisis,
}

// unconditionalInitial is the fixed initial-regime distribution. It does
// NOT depend on years-to-retirement: spec.md §9 resolves the open question
// of regime-conditioning explicitly in favor of the unconditional
// distribution, so that sequence risk emerges from the sampled path itself
// rather than from a years-to-retirement-dependent prior.
var unconditionalInitial = [4]float64{0.30, 0.50, 0.15, 0.05}

// table is the process-wide, immutable regime parameter table.
var table = map[config.MarketRegime]Parameters{
	config.RegimeBull: {
		MeanReturn: 0.13, Volatility: 0.12, AvgDurationYears: 4.0,
		TransitionProbabilities: [4]float64{0.70, 0.25, 0.04, 0.01},
		AssetAdjustments: map[string]AssetAdjustment{
			"stocks":     {ReturnMultiplier: 1.30, VolMultiplier: 0.85},
			"intlStocks": {ReturnMultiplier: 1.25, VolMultiplier: 0.90},
			"bonds":      {ReturnMultiplier: 0.95, VolMultiplier: 0.90},
			"reits":      {ReturnMultiplier: 1.20, VolMultiplier: 0.90},
		},
	},
	config.RegimeNormal: {
		MeanReturn: 0.08, Volatility: 0.15, AvgDurationYears: 3.0,
		TransitionProbabilities: [4]float64{0.20, 0.60, 0.16, 0.04},
		AssetAdjustments: map[string]AssetAdjustment{
			"stocks":     {ReturnMultiplier: 1.00, VolMultiplier: 1.00},
			"intlStocks": {ReturnMultiplier: 1.00, VolMultiplier: 1.00},
			"bonds":      {ReturnMultiplier: 1.00, VolMultiplier: 1.00},
			"reits":      {ReturnMultiplier: 1.00, VolMultiplier: 1.00},
		},
	},
	config.RegimeBear: {
		MeanReturn: -0.05, Volatility: 0.20, AvgDurationYears: 1.5,
		TransitionProbabilities: [4]float64{0.10, 0.35, 0.40, 0.15},
		AssetAdjustments: map[string]AssetAdjustment{
			"stocks":     {ReturnMultiplier: 0.55, VolMultiplier: 1.30},
			"intlStocks": {ReturnMultiplier: 0.50, VolMultiplier: 1.35},
			"bonds":      {ReturnMultiplier: 1.10, VolMultiplier: 1.05},
			"reits":      {ReturnMultiplier: 0.60, VolMultiplier: 1.30},
		},
	},
	config.RegimeCrisis: {
		MeanReturn: -0.22, Volatility: 0.32, AvgDurationYears: 0.75,
		TransitionProbabilities: [4]float64{0.05, 0.25, 0.40, 0.30},
		AssetAdjustments: map[string]AssetAdjustment{
			"stocks":     {ReturnMultiplier: 0.25, VolMultiplier: 1.80},
			"intlStocks": {ReturnMultiplier: 0.20, VolMultiplier: 1.90},
			"bonds":      {ReturnMultiplier: 1.20, VolMultiplier: 1.20},
			"reits":      {ReturnMultiplier: 0.15, VolMultiplier: 1.90},
		},
	},
}

// Get returns the immutable parameters for a regime.
func Get(r config.MarketRegime) Parameters {
	return table[r]
}

// SampleInitial draws the scenario's starting regime from the unconditional
// distribution. r should be a sub-stream derived with label "regime" so
// regime draws never perturb market-return draws.
func SampleInitial(r rng.RNG) config.MarketRegime {
	return sampleFrom(r, unconditionalInitial)
}

// Transition draws the next year's regime from current's transition row.
func Transition(r rng.RNG, current config.MarketRegime) config.MarketRegime {
	return sampleFrom(r, table[current].TransitionProbabilities)
}

func sampleFrom(r rng.RNG, probs [4]float64) config.MarketRegime {
	u := r.Next()
	cum := 0.0
	for i, p := range probs {
		cum += p
		if u < cum {
			return order[i]
		}
	}
	return order[len(order)-1]
}

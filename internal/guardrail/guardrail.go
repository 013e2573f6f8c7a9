// Package guardrail implements the Guyton-Klinger withdrawal guardrail
// policy: graduated capital-preservation, prosperity, portfolio-management,
// and inflation rules applied to a year's essential/discretionary withdrawal
// split (spec.md §4.8).
package guardrail

import "math"

// Config carries the guardrail policy's tunable thresholds. Zero values
// are replaced by DefaultConfig's Guyton-Klinger constants (spec.md §4.8).
type Config struct {
	CutBand1        float64 // ratio above which a graduated 10-20% cut begins (1.1)
	CutBand2        float64 // ratio above which a graduated 20-40% cut begins (1.2)
	CutBand3        float64 // ratio above which the cut is flat 40% (1.3)
	RaiseBand1      float64 // ratio below which a graduated 10-30% raise begins (0.8)
	RaiseBand2      float64 // ratio below which the raise is flat 30% (0.7)
	MinHorizonYears int     // the band rules only fire when remaining horizon exceeds this (15)
	EssentialShare  float64 // floor on total withdrawal as a fraction of the previous year's (0.70)
	CeilingFactor   float64 // ceiling on total withdrawal as a multiple of the previous year's (1.5)
}

// DefaultConfig returns the conventional Guyton-Klinger parameterization
// from spec.md §4.8.
func DefaultConfig() Config {
	return Config{
		CutBand1:        1.1,
		CutBand2:        1.2,
		CutBand3:        1.3,
		RaiseBand1:      0.8,
		RaiseBand2:      0.7,
		MinHorizonYears: 15,
		EssentialShare:  0.70,
		CeilingFactor:   1.5,
	}
}

// State carries the policy's year-over-year memory: the essential and
// discretionary spending amounts in effect, and the initial withdrawal
// rate the guardrail bands are measured against.
type State struct {
	Essential             float64
	Discretionary         float64
	InitialWithdrawalRate float64
}

// Decision is the outcome of one year's guardrail evaluation.
type Decision struct {
	NewEssential     float64
	NewDiscretionary float64
	RuleApplied      string // "capital-preservation", "prosperity", "portfolio-management", "inflation"
}

// capitalPreservationCut returns the fractional cut to discretionary
// spending for a given withdrawal-rate ratio, continuous across the
// 1.1-1.2 and 1.2-1.3 bands and flat at 40% beyond 1.3 (spec.md §4.8).
func capitalPreservationCut(cfg Config, ratio float64) float64 {
	switch {
	case ratio > cfg.CutBand3:
		return 0.40
	case ratio > cfg.CutBand2:
		span := cfg.CutBand3 - cfg.CutBand2
		return 0.20 + (ratio-cfg.CutBand2)/span*0.20
	case ratio > cfg.CutBand1:
		span := cfg.CutBand2 - cfg.CutBand1
		return 0.10 + (ratio-cfg.CutBand1)/span*0.10
	default:
		return 0
	}
}

// prosperityRaise returns the fractional raise to discretionary spending,
// continuous across the 0.7-0.8 band and flat at 30% below 0.7.
func prosperityRaise(cfg Config, ratio float64) float64 {
	switch {
	case ratio < cfg.RaiseBand2:
		return 0.30
	case ratio < cfg.RaiseBand1:
		span := cfg.RaiseBand1 - cfg.RaiseBand2
		return 0.30 - (ratio-cfg.RaiseBand2)/span*0.20
	default:
		return 0
	}
}

// Evaluate applies the Guyton-Klinger rules in priority order (capital
// preservation and prosperity first, since they dominate the ordinary
// inflation adjustment), given the current portfolio value, the combined
// spending this would represent as a withdrawal rate, the prior year's
// portfolio real return, the current year's inflation rate, and the
// remaining years in the horizon (spec.md §4.8).
//
// The capital-preservation and prosperity bands only fire when
// remainingHorizonYears exceeds cfg.MinHorizonYears — close to the end of
// the plan there is no time left for a guardrail cut or raise to matter, so
// spending falls through to the ordinary portfolio-management/inflation
// rule. Every call is self-contained: no package-level state is read or
// mutated, so concurrent scenario workers never share guardrail state
// across goroutines.
func Evaluate(cfg Config, state State, portfolioValue, inflationRate, priorYearRealReturn float64, remainingHorizonYears int) Decision {
	if portfolioValue <= 0 {
		return Decision{NewEssential: state.Essential, NewDiscretionary: 0, RuleApplied: "portfolio-management"}
	}

	previousTotal := state.Essential + state.Discretionary
	currentRate := previousTotal / portfolioValue
	ratio := 1.0
	if state.InitialWithdrawalRate > 0 {
		ratio = currentRate / state.InitialWithdrawalRate
	}

	var decision Decision
	switch {
	case remainingHorizonYears > cfg.MinHorizonYears && ratio > cfg.CutBand1:
		cut := state.Discretionary * capitalPreservationCut(cfg, ratio)
		decision = Decision{
			NewEssential:     state.Essential,
			NewDiscretionary: math.Max(0, state.Discretionary-cut),
			RuleApplied:      "capital-preservation",
		}
	case remainingHorizonYears > cfg.MinHorizonYears && ratio < cfg.RaiseBand1:
		raise := state.Discretionary * prosperityRaise(cfg, ratio)
		decision = Decision{
			NewEssential:     state.Essential * (1 + inflationRate),
			NewDiscretionary: state.Discretionary + raise,
			RuleApplied:      "prosperity",
		}
	case priorYearRealReturn < 0:
		decision = Decision{
			NewEssential:     state.Essential,
			NewDiscretionary: state.Discretionary,
			RuleApplied:      "portfolio-management",
		}
	default:
		decision = Decision{
			NewEssential:     state.Essential * (1 + inflationRate),
			NewDiscretionary: state.Discretionary * (1 + inflationRate),
			RuleApplied:      "inflation",
		}
	}

	return clampToFloorAndCeiling(cfg, decision, previousTotal)
}

// clampToFloorAndCeiling enforces spec.md §4.8's final bound: the adjusted
// total withdrawal must stay within [essentialShare, ceilingFactor] times
// the previous year's total. Essential spending is never touched by the
// clamp; only discretionary spending absorbs it.
func clampToFloorAndCeiling(cfg Config, decision Decision, previousTotal float64) Decision {
	if previousTotal <= 0 {
		return decision
	}
	floor := cfg.EssentialShare * previousTotal
	ceiling := cfg.CeilingFactor * previousTotal
	total := decision.NewEssential + decision.NewDiscretionary

	switch {
	case total < floor:
		decision.NewDiscretionary = math.Max(0, floor-decision.NewEssential)
	case total > ceiling:
		decision.NewDiscretionary = math.Max(0, ceiling-decision.NewEssential)
	}
	return decision
}

package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// Bracket is one marginal-rate bracket of a progressive tax schedule.
// IncomeMax of math.Inf(1) marks the top bracket.
type Bracket struct {
	IncomeMin float64
	IncomeMax float64
	Rate      float64
}

// Progressive computes the tax owed on income under a progressive bracket
// schedule, stacking from bracket zero (spec.md §4.6 step 1, grounded in the
// teacher's calculateProgressiveTax).
func Progressive(income float64, brackets []Bracket) float64 {
	if income <= 0 {
		return 0
	}
	total := 0.0
	remaining := income
	for _, b := range brackets {
		if remaining <= 0 {
			break
		}
		bracketMax := b.IncomeMax
		if math.IsInf(bracketMax, 1) {
			bracketMax = remaining + b.IncomeMin
		}
		taxable := math.Min(remaining, bracketMax-b.IncomeMin)
		if taxable > 0 {
			total += taxable * b.Rate
			remaining -= taxable
		}
	}
	return total
}

// YearConfig bundles every year- and filing-status-dependent constant the
// federal tax kernel needs. TaxYearConfigProvider (spec.md §6 item 4) yields
// one of these per calendar year; DefaultYearConfig supplies the engine's
// built-in fallback when no provider is wired in.
type YearConfig struct {
	Year                 int
	StandardDeduction    map[config.FilingStatus]float64
	FederalBrackets      map[config.FilingStatus][]Bracket
	LTCGBrackets         map[config.FilingStatus][]Bracket
	AMTExemption         map[config.FilingStatus]float64
	AMTPhaseoutThreshold map[config.FilingStatus]float64
	SocialSecurityWageBase float64
	AdditionalMedicareThreshold map[config.FilingStatus]float64
	SSProvisionalThreshold1 map[config.FilingStatus]float64
	SSProvisionalThreshold2 map[config.FilingStatus]float64
	IRMAABrackets        map[config.FilingStatus][]IRMAABracket
	BasePartBPremium     float64
	BasePartDPremium     float64
}

const (
	ficaSocialSecurityRate   = 0.062
	ficaMedicareRate         = 0.0145
	additionalMedicareRate   = 0.009
	niitRate                 = 0.038
	niitThresholdSingle      = 200000
	niitThresholdMarried     = 250000
)

// TaxYearConfigProvider is the tax-year-configuration collaborator (spec.md
// §6 item 4): given a calendar year and filing status, it supplies the
// standard deduction, bracket tables, and IRMAA brackets that vary by year.
// NIIT thresholds are package constants and are not part of YearConfig, so
// a provider cannot change them. The engine falls back to DefaultYearConfig when none is
// wired in.
type TaxYearConfigProvider interface {
	LoadYearConfig(year int) (YearConfig, error)
}

// DefaultYearConfig returns the engine's built-in 2024-basis federal
// constants, used when no external TaxYearConfigProvider collaborator is
// wired in (spec.md §6 item 4), grounded in the teacher's tax.go hardcoded
// 2024 fallback values.
func DefaultYearConfig(year int) YearConfig {
	inf := math.Inf(1)
	return YearConfig{
		Year: year,
		StandardDeduction: map[config.FilingStatus]float64{
			config.FilingSingle:          14600,
			config.FilingHeadOfHousehold: 21900,
			config.FilingMarried:         29200,
		},
		FederalBrackets: map[config.FilingStatus][]Bracket{
			config.FilingSingle: {
				{0, 11600, 0.10}, {11600, 47150, 0.12}, {47150, 100525, 0.22},
				{100525, 191950, 0.24}, {191950, 243725, 0.32}, {243725, 609350, 0.35},
				{609350, inf, 0.37},
			},
			config.FilingHeadOfHousehold: {
				{0, 16550, 0.10}, {16550, 63100, 0.12}, {63100, 100500, 0.22},
				{100500, 191950, 0.24}, {191950, 243700, 0.32}, {243700, 609350, 0.35},
				{609350, inf, 0.37},
			},
			config.FilingMarried: {
				{0, 23200, 0.10}, {23200, 94300, 0.12}, {94300, 201050, 0.22},
				{201050, 383900, 0.24}, {383900, 487450, 0.32}, {487450, 731200, 0.35},
				{731200, inf, 0.37},
			},
		},
		LTCGBrackets: map[config.FilingStatus][]Bracket{
			config.FilingSingle: {
				{0, 47025, 0.00}, {47025, 518900, 0.15}, {518900, inf, 0.20},
			},
			config.FilingHeadOfHousehold: {
				{0, 63000, 0.00}, {63000, 551350, 0.15}, {551350, inf, 0.20},
			},
			config.FilingMarried: {
				{0, 94050, 0.00}, {94050, 583750, 0.15}, {583750, inf, 0.20},
			},
		},
		AMTExemption: map[config.FilingStatus]float64{
			config.FilingSingle: 85700, config.FilingHeadOfHousehold: 85700,
			config.FilingMarried: 133300,
		},
		AMTPhaseoutThreshold: map[config.FilingStatus]float64{
			config.FilingSingle: 609350, config.FilingHeadOfHousehold: 609350,
			config.FilingMarried: 1218700,
		},
		SocialSecurityWageBase: 168600,
		AdditionalMedicareThreshold: map[config.FilingStatus]float64{
			config.FilingSingle: 200000, config.FilingHeadOfHousehold: 200000,
			config.FilingMarried: 250000,
		},
		SSProvisionalThreshold1: map[config.FilingStatus]float64{
			config.FilingSingle: 25000, config.FilingHeadOfHousehold: 25000,
			config.FilingMarried: 32000,
		},
		SSProvisionalThreshold2: map[config.FilingStatus]float64{
			config.FilingSingle: 34000, config.FilingHeadOfHousehold: 34000,
			config.FilingMarried: 44000,
		},
		IRMAABrackets:    defaultIRMAABrackets(),
		BasePartBPremium: 174.70,
		BasePartDPremium: 34.70,
	}
}

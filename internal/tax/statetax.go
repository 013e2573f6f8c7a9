package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// StateConfig holds one state's income tax treatment (spec.md §10
// supplemented feature, grounded in the teacher's wasm/state_tax_calculator.go
// StateTaxConfig).
type StateConfig struct {
	Code                        string
	HasIncomeTax                bool
	IsFlatTax                   bool
	FlatRate                    float64
	SingleBrackets              []Bracket
	MarriedBrackets             []Bracket
	StandardDeduction           float64
	TaxesCapitalGainsAsOrdinary bool
	CapitalGainsRate            float64
}

// StateTaxConfigProvider is the state-tax-configuration collaborator
// (spec.md §6 item 5): a mapping from state abbreviation to its bracket
// tables, standard deduction, and capital-gains treatment. StateConfig
// carries no retiree or pension exemption rules. The engine ships
// DefaultStateConfigs as its built-in minimal set and may be handed an
// extended provider that loads more states or a newer year's brackets.
type StateTaxConfigProvider interface {
	LoadStateConfigs() (map[string]StateConfig, error)
}

// StateTax computes a state's income tax liability on taxable ordinary
// income plus any separately-rated capital gains (spec.md §4.6 step 13,
// grounded in the teacher's CalculateStateTax).
func StateTax(sc StateConfig, filing config.FilingStatus, ordinaryIncome, capitalGains float64) float64 {
	if !sc.HasIncomeTax {
		return 0
	}
	taxableOrdinary := math.Max(0, ordinaryIncome-sc.StandardDeduction)

	var ordinaryTax float64
	if sc.IsFlatTax {
		ordinaryTax = taxableOrdinary * sc.FlatRate
	} else {
		brackets := sc.SingleBrackets
		if filing == config.FilingMarried {
			brackets = sc.MarriedBrackets
		}
		ordinaryTax = Progressive(taxableOrdinary, brackets)
	}

	var gainsTax float64
	if capitalGains > 0 {
		if sc.TaxesCapitalGainsAsOrdinary || sc.CapitalGainsRate == 0 {
			if sc.IsFlatTax {
				gainsTax = capitalGains * sc.FlatRate
			} else {
				brackets := sc.SingleBrackets
				if filing == config.FilingMarried {
					brackets = sc.MarriedBrackets
				}
				gainsTax = Progressive(taxableOrdinary+capitalGains, brackets) - ordinaryTax
			}
		} else {
			gainsTax = capitalGains * sc.CapitalGainsRate
		}
	}
	return ordinaryTax + gainsTax
}

func flat(code string, rate, deduction float64) StateConfig {
	return StateConfig{Code: code, HasIncomeTax: rate > 0, IsFlatTax: true, FlatRate: rate, StandardDeduction: deduction}
}

func noTax(code string) StateConfig {
	return StateConfig{Code: code, HasIncomeTax: false}
}

// DefaultStateConfigs returns the engine's built-in state tax table, used
// when no external StateTaxConfigProvider collaborator is wired in (spec.md
// §6 item 5). CA and NY carry full progressive brackets; the no-income-tax
// states return zero liability; WA taxes only capital gains, at a separate
// rate; everything else falls back to a single representative flat rate
// (grounded in the teacher's
// getStateFlatTaxRate fallback map).
func DefaultStateConfigs() map[string]StateConfig {
	inf := math.Inf(1)
	m := map[string]StateConfig{
		"CA": {
			Code: "CA", HasIncomeTax: true, StandardDeduction: 5363,
			SingleBrackets: []Bracket{
				{0, 10099, 0.01}, {10099, 23942, 0.02}, {23942, 37788, 0.04},
				{37788, 52455, 0.06}, {52455, 66295, 0.08}, {66295, 338639, 0.093},
				{338639, 406364, 0.103}, {406364, 677278, 0.113}, {677278, inf, 0.123},
			},
			MarriedBrackets: []Bracket{
				{0, 23200, 0.01}, {23200, 55500, 0.02}, {55500, 87500, 0.04},
				{87500, 122000, 0.06}, {122000, 154500, 0.08}, {154500, 186600, 0.093},
				{186600, 318500, 0.103}, {318500, 638900, 0.113}, {638900, inf, 0.123},
			},
		},
		"NY": {
			Code: "NY", HasIncomeTax: true, StandardDeduction: 8000,
			SingleBrackets: []Bracket{
				{0, 8500, 0.04}, {8500, 11700, 0.045}, {11700, 13900, 0.0525},
				{13900, 80650, 0.059}, {80650, 215400, 0.0645}, {215400, 1077550, 0.0685},
				{1077550, inf, 0.103},
			},
			MarriedBrackets: []Bracket{
				{0, 17150, 0.04}, {17150, 23600, 0.045}, {23600, 27900, 0.0525},
				{27900, 161550, 0.059}, {161550, 323200, 0.0645}, {323200, 2155350, 0.0685},
				{2155350, inf, 0.103},
			},
		},
		"WA": {
			Code: "WA", HasIncomeTax: true, CapitalGainsRate: 0.07,
		},
	}
	for code, rate := range map[string]float64{
		"AL": 0.05, "AZ": 0.025, "AR": 0.055, "CO": 0.044, "CT": 0.055, "DE": 0.066,
		"GA": 0.0575, "HI": 0.0825, "ID": 0.058, "IL": 0.0495, "IN": 0.0323, "IA": 0.0853,
		"KS": 0.057, "KY": 0.05, "LA": 0.06, "ME": 0.075, "MD": 0.0575, "MA": 0.05,
		"MI": 0.0425, "MN": 0.0985, "MS": 0.05, "MO": 0.054, "MT": 0.0675, "NE": 0.0684,
		"NJ": 0.1075, "NM": 0.059, "NC": 0.049, "ND": 0.029, "OH": 0.0399, "OK": 0.05,
		"OR": 0.099, "PA": 0.0307, "RI": 0.0599, "SC": 0.07, "UT": 0.049, "VT": 0.0875,
		"VA": 0.0575, "WV": 0.065, "WI": 0.0765,
	} {
		m[code] = flat(code, rate, 0)
	}
	for _, code := range []string{"TX", "FL", "NV", "WY", "SD", "AK", "TN", "NH"} {
		m[code] = noTax(code)
	}
	m["NONE"] = noTax("NONE")
	return m
}

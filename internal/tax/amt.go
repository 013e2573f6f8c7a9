package tax

import (
	"math"

	"github.com/areumfire/retirement-mc/internal/config"
)

// AlternativeMinimumTax computes AMT liability, applying the exemption
// phaseout above the filing status's threshold (spec.md §4.6 step 8,
// grounded in the teacher's CalculateAlternativeMinimumTax). preferences
// captures AMT preference items (state tax addback, etc.) not otherwise
// folded into income.
func AlternativeMinimumTax(yc YearConfig, filing config.FilingStatus, income, preferences float64) float64 {
	exemption := yc.AMTExemption[filing]
	phaseoutThreshold := yc.AMTPhaseoutThreshold[filing]

	amtIncome := income + preferences
	if amtIncome > phaseoutThreshold {
		phaseout := (amtIncome - phaseoutThreshold) * 0.25
		exemption = math.Max(0, exemption-phaseout)
	}

	amtTaxableIncome := math.Max(0, amtIncome-exemption)

	const amtThreshold2024 = 232600
	var amtTax float64
	if amtTaxableIncome <= amtThreshold2024 {
		amtTax = amtTaxableIncome * 0.26
	} else {
		amtTax = amtThreshold2024*0.26 + (amtTaxableIncome-amtThreshold2024)*0.28
	}
	return math.Max(0, amtTax)
}
